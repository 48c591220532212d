// Package validation evaluates ordered field rules against decoded JSON
// payloads and collects every failure instead of stopping at the first one.
package validation

import (
	"fmt"
	"math"
	"net/mail"
	"net/url"
	"sort"
	"strings"
	"time"
)

// Kind is the expected type of a field value.
type Kind string

const (
	KindAny     Kind = ""
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindInteger Kind = "integer"
	KindObject  Kind = "object"
	KindURL     Kind = "url"
	KindEmail   Kind = "email"
	KindISODate Kind = "iso-date"
)

// Rule checks a single field. Field is a dot separated path into the payload
// ("readTime.value"). A required nested field is only reported missing when
// its parent object is present or itself required.
type Rule struct {
	Field    string
	Required bool
	Kind     Kind
	Min      *float64
	Message  string
}

// FieldError describes one failed rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Result is the outcome of validating a payload.
type Result struct {
	Errors []FieldError
}

// Valid reports whether no rule failed.
func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

// Fields returns the distinct field paths that failed, in order.
func (r Result) Fields() []string {
	seen := make(map[string]bool, len(r.Errors))
	fields := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		if !seen[e.Field] {
			seen[e.Field] = true
			fields = append(fields, e.Field)
		}
	}
	return fields
}

// Ruleset is an ordered list of rules.
type Ruleset []Rule

// MinValue is a helper for Rule.Min.
func MinValue(v float64) *float64 {
	return &v
}

// Validate evaluates every rule against doc. doc is not modified.
func (rs Ruleset) Validate(doc map[string]any) Result {
	var result Result
	for _, rule := range rs {
		if fe, failed := rs.check(rule, doc); failed {
			result.Errors = append(result.Errors, fe)
		}
	}
	return result
}

// ValidateStrict behaves like Validate and additionally reports top-level
// keys that no rule names.
func (rs Ruleset) ValidateStrict(doc map[string]any) Result {
	result := rs.Validate(doc)
	known := make(map[string]bool, len(rs))
	for _, rule := range rs {
		known[strings.SplitN(rule.Field, ".", 2)[0]] = true
	}
	unknown := make([]string, 0)
	for key := range doc {
		if !known[key] {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		result.Errors = append(result.Errors, FieldError{Field: key, Message: "unknown field"})
	}
	return result
}

func (rs Ruleset) check(rule Rule, doc map[string]any) (FieldError, bool) {
	value, present := lookup(doc, rule.Field)
	fail := func(defaultMsg string) (FieldError, bool) {
		msg := rule.Message
		if msg == "" {
			msg = defaultMsg
		}
		fe := FieldError{Field: rule.Field, Message: msg}
		if present {
			fe.Value = value
		}
		return fe, true
	}

	if !present || value == nil {
		if !rule.Required || !rs.parentExpected(rule.Field, doc) {
			return FieldError{}, false
		}
		return fail("is required")
	}
	if isBlank(value) {
		if rule.Required {
			return fail("is required")
		}
		if rule.Kind == KindString || rule.Kind == KindAny {
			return FieldError{}, false
		}
	}

	if !matchesKind(rule.Kind, value) {
		return fail(fmt.Sprintf("must be a valid %s", rule.Kind))
	}
	if rule.Min != nil {
		if n, ok := toFloat(value); ok && n < *rule.Min {
			return fail(fmt.Sprintf("must be at least %v", *rule.Min))
		}
	}
	return FieldError{}, false
}

// parentExpected reports whether a missing nested field should be reported.
func (rs Ruleset) parentExpected(field string, doc map[string]any) bool {
	idx := strings.LastIndex(field, ".")
	if idx < 0 {
		return true
	}
	parent := field[:idx]
	if v, ok := lookup(doc, parent); ok && v != nil {
		return true
	}
	for _, r := range rs {
		if r.Field == parent {
			return r.Required
		}
	}
	return false
}

func lookup(doc map[string]any, path string) (any, bool) {
	var current any = doc
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func isBlank(v any) bool {
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func matchesKind(kind Kind, v any) bool {
	switch kind {
	case KindAny:
		return true
	case KindString:
		_, ok := v.(string)
		return ok
	case KindNumber:
		_, ok := toFloat(v)
		return ok
	case KindInteger:
		n, ok := toFloat(v)
		return ok && n == math.Trunc(n)
	case KindObject:
		_, ok := v.(map[string]any)
		return ok
	case KindURL:
		s, ok := v.(string)
		return ok && IsURL(s)
	case KindEmail:
		s, ok := v.(string)
		return ok && IsEmail(s)
	case KindISODate:
		s, ok := v.(string)
		return ok && IsISODate(s)
	default:
		return false
	}
}

// IsURL reports whether s is an absolute http(s) URL with a host.
func IsURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// IsEmail reports whether s is a bare email address.
func IsEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	return addr.Address == s && strings.Contains(s[strings.LastIndex(s, "@")+1:], ".")
}

var isoLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
}

// IsISODate reports whether s is an ISO 8601 date or date-time.
func IsISODate(s string) bool {
	for _, layout := range isoLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}
