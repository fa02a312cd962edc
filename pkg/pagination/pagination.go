package pagination

import (
	"strconv"
	"strings"
)

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 24
	// MaxLimit caps how many rows any listing can request.
	MaxLimit = 100
)

// Params holds offset pagination inputs from controllers or services.
type Params struct {
	Limit  int
	Offset int
}

// Page describes one slice of a listing for response metadata.
type Page struct {
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
	Total  int64 `json:"total"`
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Normalize clamps the limit and floors the offset at zero.
func (p Params) Normalize() Params {
	offset := p.Offset
	if offset < 0 {
		offset = 0
	}
	return Params{Limit: NormalizeLimit(p.Limit), Offset: offset}
}

// ParseParams reads limit and offset query values; malformed values fall
// back to defaults.
func ParseParams(limit, offset string) Params {
	l, _ := strconv.Atoi(strings.TrimSpace(limit))
	o, _ := strconv.Atoi(strings.TrimSpace(offset))
	return Params{Limit: l, Offset: o}.Normalize()
}
