package domain

import "time"

// Condition is one predicate over a payload field. Exactly one of the
// match kinds is set.
type Condition struct {
	// Field is the payload field name.
	Field string

	// Equals matches when the field equals this value.
	Equals any

	// Contains matches when the field is a list containing this value
	// (tag membership).
	Contains string

	// After matches RFC 3339 datetime fields strictly after this instant.
	After *time.Time

	// Before matches RFC 3339 datetime fields strictly before this instant.
	Before *time.Time
}

// Filter is a conjunction of conditions over payload fields.
type Filter struct {
	Must []Condition
}

// Matches evaluates the filter against a payload.
// Adapters that push filtering into the index (qdrant) translate the
// conditions instead; the in-memory gateway evaluates them directly.
func (f *Filter) Matches(payload map[string]any) bool {
	if f == nil {
		return true
	}
	for _, c := range f.Must {
		if !c.matches(payload) {
			return false
		}
	}
	return true
}

func (c *Condition) matches(payload map[string]any) bool {
	val, ok := payload[c.Field]
	if !ok {
		return false
	}

	if c.Equals != nil {
		return val == c.Equals
	}

	if c.Contains != "" {
		switch list := val.(type) {
		case []string:
			for _, v := range list {
				if v == c.Contains {
					return true
				}
			}
		case []any:
			for _, v := range list {
				if s, ok := v.(string); ok && s == c.Contains {
					return true
				}
			}
		}
		return false
	}

	if c.After != nil || c.Before != nil {
		s, ok := val.(string)
		if !ok {
			return false
		}
		ts, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return false
		}
		if c.After != nil && !ts.After(*c.After) {
			return false
		}
		if c.Before != nil && !ts.Before(*c.Before) {
			return false
		}
		return true
	}

	return false
}
