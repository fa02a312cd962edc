package types

import (
	"sort"
	"strconv"
	"strings"
)

// Variation maps a variation type (e.g. "Size") to the chosen option.
type Variation map[string]string

// Key is the canonical, order-independent form used for cart identity.
// A nil and an empty variation share the empty key.
func (v Variation) Key() string {
	if len(v) == 0 {
		return ""
	}
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, strconv.Quote(k)+"="+strconv.Quote(v[k]))
	}
	return strings.Join(parts, ";")
}

func (v Variation) Equal(other Variation) bool {
	return v.Key() == other.Key()
}

// Clone returns nil for an empty variation.
func (v Variation) Clone() Variation {
	if len(v) == 0 {
		return nil
	}
	out := make(Variation, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Label renders "Size: M, Color: Blue" in canonical order for emails.
func (v Variation) Label() string {
	if len(v) == 0 {
		return ""
	}
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+v[k])
	}
	return strings.Join(parts, ", ")
}

// VariationOption lists the choices offered for one variation type.
type VariationOption struct {
	Type    string   `json:"type"`
	Options []string `json:"options"`
}
