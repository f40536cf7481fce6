package models

// Filter operators understood by the backend's search endpoint
const (
	OperatorEqual              = "EQUAL"
	OperatorNotEqual           = "NOT_EQUAL"
	OperatorLike               = "LIKE"
	OperatorIn                 = "IN"
	OperatorBetween            = "BETWEEN"
	OperatorIsNull             = "IS_NULL"
	OperatorNotNull            = "NOT_NULL"
	OperatorLessThan           = "LESS_THAN"
	OperatorLessThanOrEqual    = "LESS_THAN_OR_EQUAL"
	OperatorGreaterThan        = "GREATER_THAN"
	OperatorGreaterThanOrEqual = "GREATER_THAN_OR_EQUAL"
)

// Field types used to parse filter values
const (
	FieldTypeString  = "STRING"
	FieldTypeLong    = "LONG"
	FieldTypeInteger = "INTEGER"
	FieldTypeBoolean = "BOOLEAN"
	FieldTypeDate    = "DATE"
)

// SearchRequest is the body of POST /api/emails/search
type SearchRequest struct {
	Filters         []SearchFilter `json:"filters,omitempty"`
	Sorts           []SearchSort   `json:"sorts,omitempty"`
	Page            int            `json:"page"`
	Size            int            `json:"size"`
	LogicalOperator string         `json:"logicalOperator,omitempty"`
}

// SearchFilter restricts one field
type SearchFilter struct {
	Key       string `json:"key"`
	Operator  string `json:"operator"`
	FieldType string `json:"fieldType"`
	Value     any    `json:"value,omitempty"`
	ValueTo   any    `json:"valueTo,omitempty"`
	Values    []any  `json:"values,omitempty"`
}

// SearchSort orders the result
type SearchSort struct {
	Key       string `json:"key"`
	Direction string `json:"direction"`
}
