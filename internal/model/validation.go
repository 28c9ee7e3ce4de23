package model

import (
	"sort"
	"strings"
)

// ValidationError describes a single rejected input field.  Validation
// errors are detected locally and never reach the content store.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string { return e.Field + ": " + e.Message }

// ValidationErrors collects every field error found in one input.
type ValidationErrors []ValidationError

func (es ValidationErrors) Error() string {
	parts := make([]string, 0, len(es))
	for _, e := range es {
		parts = append(parts, e.Error())
	}
	sort.Strings(parts)
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fields returns the errors keyed by field name, suitable for a JSON body.
func (es ValidationErrors) Fields() map[string]string {
	out := make(map[string]string, len(es))
	for _, e := range es {
		out[e.Field] = e.Message
	}
	return out
}

// Has reports whether field has an error.
func (es ValidationErrors) Has(field string) bool {
	for _, e := range es {
		if e.Field == field {
			return true
		}
	}
	return false
}

func (es *ValidationErrors) add(field, msg string) {
	*es = append(*es, ValidationError{Field: field, Message: msg})
}

// err returns nil when nothing was collected so callers can return it directly.
func (es ValidationErrors) err() error {
	if len(es) == 0 {
		return nil
	}
	return es
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }
