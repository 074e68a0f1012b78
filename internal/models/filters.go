package models

import (
	"fmt"
	"strconv"
	"strings"
)

// FilterOperator selects how a metadata field is compared during search.
type FilterOperator string

const (
	FilterEquals      FilterOperator = "EQUALS"
	FilterContains    FilterOperator = "CONTAINS"
	FilterGreaterThan FilterOperator = "GREATER_THAN"
	FilterLessThan    FilterOperator = "LESS_THAN"
	FilterNotEquals   FilterOperator = "NOT_EQUALS"
	FilterIn          FilterOperator = "IN"
	FilterNotIn       FilterOperator = "NOT_IN"
)

// SearchFilter restricts search results on one metadata field. Multiple
// filters combine with logical AND. An empty operator means EQUALS.
type SearchFilter struct {
	Field    string         `json:"field" yaml:"field"`
	Value    string         `json:"value" yaml:"value"`
	Operator FilterOperator `json:"operator,omitempty" yaml:"operator,omitempty"`
}

// Match reports whether the stored metadata satisfies this filter.
// A missing field fails the filter regardless of operator.
func (f SearchFilter) Match(md Metadata) bool {
	stored, ok := md[f.Field]
	if !ok {
		return false
	}

	op := f.Operator
	if op == "" {
		op = FilterEquals
	}

	switch op {
	case FilterEquals:
		return matchEquals(stored, f.Value)
	case FilterNotEquals:
		return !matchEquals(stored, f.Value)
	case FilterContains:
		return strings.Contains(Stringify(stored), f.Value)
	case FilterGreaterThan:
		sv, fv, ok := numericPair(stored, f.Value)
		return ok && sv > fv
	case FilterLessThan:
		sv, fv, ok := numericPair(stored, f.Value)
		return ok && sv < fv
	case FilterIn:
		return matchIn(stored, f.Value)
	case FilterNotIn:
		return !matchIn(stored, f.Value)
	default:
		return false
	}
}

// MatchesFilters reports whether metadata satisfies all filters.
func MatchesFilters(md Metadata, filters []SearchFilter) bool {
	for _, f := range filters {
		if !f.Match(md) {
			return false
		}
	}
	return true
}

// matchEquals compares numerically when both sides are numbers, otherwise
// by string. A list-valued field matches when any element equals the
// filter value.
func matchEquals(stored any, value string) bool {
	if list, ok := stored.([]string); ok {
		for _, item := range list {
			if item == value {
				return true
			}
		}
		return false
	}
	if sv, ok := asNumber(stored); ok {
		if fv, err := strconv.ParseFloat(value, 64); err == nil {
			return sv == fv
		}
	}
	return Stringify(stored) == value
}

// matchIn treats the filter value as a comma-separated set. A list-valued
// field matches when any element is in the set.
func matchIn(stored any, value string) bool {
	set := make(map[string]struct{})
	for _, item := range strings.Split(value, ",") {
		set[strings.TrimSpace(item)] = struct{}{}
	}
	if list, ok := stored.([]string); ok {
		for _, item := range list {
			if _, found := set[item]; found {
				return true
			}
		}
		return false
	}
	_, found := set[Stringify(stored)]
	return found
}

// numericPair parses both sides as numbers. Entries with a non-numeric
// side are excluded rather than erroring the search.
func numericPair(stored any, value string) (float64, float64, bool) {
	sv, ok := asNumber(stored)
	if !ok {
		return 0, 0, false
	}
	fv, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, 0, false
	}
	return sv, fv, true
}

func asNumber(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case string:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Stringify renders a metadata value for comparison and display.
func Stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case []string:
		return strings.Join(val, ",")
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", val)
	}
}
