package records

// Collections exposed by the record service.
const (
	CollectionProducts = "product_c"
	CollectionOrders   = "order_c"
	CollectionReviews  = "review_c"
)

// Operators understood by the record service's where clauses.
const (
	OpEqualTo              = "EqualTo"
	OpIn                   = "ExactMatch"
	OpNotIn                = "NotIn"
	OpContains             = "Contains"
	OpGreaterThanOrEqualTo = "GreaterThanOrEqualTo"
	OpLessThanOrEqualTo    = "LessThanOrEqualTo"
)

const (
	SortAsc  = "ASC"
	SortDesc = "DESC"
)

// Query is the fetch-by-query request body. Every Where condition must hold;
// when WhereAny is set at least one of its conditions must also hold.
type Query struct {
	Fields     []Field     `json:"fields,omitempty"`
	Where      []Condition `json:"where,omitempty"`
	WhereAny   []Condition `json:"whereAny,omitempty"`
	OrderBy    []OrderBy   `json:"orderBy,omitempty"`
	PagingInfo *Paging     `json:"pagingInfo,omitempty"`
}

type Field struct {
	Name string `json:"Name"`
}

type Condition struct {
	FieldName string `json:"FieldName"`
	Operator  string `json:"Operator"`
	Values    []any  `json:"Values"`
}

type OrderBy struct {
	FieldName string `json:"fieldName"`
	SortType  string `json:"sorttype"`
}

type Paging struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// Fields builds a field list from names.
func Fields(names ...string) []Field {
	out := make([]Field, 0, len(names))
	for _, n := range names {
		out = append(out, Field{Name: n})
	}
	return out
}

func Eq(field string, value any) Condition {
	return Condition{FieldName: field, Operator: OpEqualTo, Values: []any{value}}
}

func In(field string, values ...any) Condition {
	return Condition{FieldName: field, Operator: OpIn, Values: values}
}

func NotIn(field string, values ...any) Condition {
	return Condition{FieldName: field, Operator: OpNotIn, Values: values}
}

func Contains(field, value string) Condition {
	return Condition{FieldName: field, Operator: OpContains, Values: []any{value}}
}

func Gte(field string, value any) Condition {
	return Condition{FieldName: field, Operator: OpGreaterThanOrEqualTo, Values: []any{value}}
}

func Lte(field string, value any) Condition {
	return Condition{FieldName: field, Operator: OpLessThanOrEqualTo, Values: []any{value}}
}
