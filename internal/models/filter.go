package models

import "strings"

// Logic is the combination logic joining the filters of a document.
type Logic string

const (
	LogicAnd Logic = "AND"
	LogicOr  Logic = "OR"
)

// NormalizeLogic maps any value other than AND or OR to AND.
func NormalizeLogic(l Logic) Logic {
	if l == LogicOr {
		return LogicOr
	}
	return LogicAnd
}

// Filter is a single predicate as the filter editor sets it.
type Filter struct {
	Target        string   `json:"target"`
	FieldPath     []string `json:"field_path,omitempty"`
	Operator      string   `json:"operator"`
	Value         string   `json:"value,omitempty"`
	CaseSensitive bool     `json:"cs,omitempty"`
}

// Path returns the dotted target and field path, e.g. "twitter.user.name".
func (f *Filter) Path() string {
	if len(f.FieldPath) == 0 {
		return f.Target
	}
	return f.Target + "." + strings.Join(f.FieldPath, ".")
}

// Equal reports whether two filters describe the same predicate.
func (f *Filter) Equal(o *Filter) bool {
	if f == nil || o == nil {
		return f == o
	}
	if f.Target != o.Target || f.Operator != o.Operator || f.Value != o.Value || f.CaseSensitive != o.CaseSensitive {
		return false
	}
	if len(f.FieldPath) != len(o.FieldPath) {
		return false
	}
	for i := range f.FieldPath {
		if f.FieldPath[i] != o.FieldPath[i] {
			return false
		}
	}
	return true
}
