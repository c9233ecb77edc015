package schema

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"unicode/utf8"
)

// validator walks normalized data against a *Schema and collects issues.
type validator struct {
	// patternCache caches compiled regex patterns (sync.Map[string, *regexp.Regexp])
	patternCache sync.Map

	// patternCount tracks the approximate number of cached patterns for size capping
	patternCount atomic.Int32

	// redactValues keeps actual values out of issue messages.
	redactValues bool
}

// validate reports every issue found in data. data must be normalized.
func (v *validator) validate(data any, s *Schema, path string) Issues {
	if s == nil {
		return nil
	}

	if data == nil {
		if s.IsNullable() || len(s.Types()) == 0 && len(s.Enum) == 0 && s.Const == nil {
			return nil
		}
		return Issues{{Path: path, Message: "value is required", Severity: SeverityError}}
	}

	typeIssues := v.validateType(data, s, path)
	if len(typeIssues) > 0 {
		return typeIssues
	}

	var issues Issues
	switch d := data.(type) {
	case string:
		issues = append(issues, v.validateString(d, s, path)...)
	case []any:
		issues = append(issues, v.validateArray(d, s, path)...)
	case map[string]any:
		issues = append(issues, v.validateObject(d, s, path)...)
	default:
		if n, ok := toFloat64(d); ok {
			issues = append(issues, v.validateNumber(n, s, path)...)
		}
	}

	if len(s.Enum) > 0 {
		issues = append(issues, v.validateEnum(data, s, path)...)
	}
	if s.Const != nil && !valuesEqual(data, Normalize(s.Const)) {
		issues = append(issues, Issue{Path: path, Message: v.describe("value does not match the constant", data), Severity: SeverityError})
	}

	issues = append(issues, v.validateComposition(data, s, path)...)
	return issues
}

// describe appends the offending value to msg unless values are redacted.
func (v *validator) describe(msg string, data any) string {
	if v.redactValues {
		return msg
	}
	return fmt.Sprintf("%s, got %v", msg, data)
}

func (v *validator) validateType(data any, s *Schema, path string) Issues {
	types := s.Types()
	if len(types) == 0 {
		return nil
	}

	dataType := dataTypeOf(data)
	for _, want := range types {
		if typeMatches(dataType, want) {
			return nil
		}
	}

	return Issues{{
		Path:     path,
		Message:  fmt.Sprintf("expected %s, received %s", strings.Join(types, " or "), dataType),
		Severity: SeverityError,
	}}
}

func (v *validator) validateString(str string, s *Schema, path string) Issues {
	var issues Issues
	length := utf8.RuneCountInString(str)

	if s.MinLength != nil && length < *s.MinLength {
		issues = append(issues, Issue{Path: path, Message: fmt.Sprintf("string length %d is less than minimum %d", length, *s.MinLength)})
	}
	if s.MaxLength != nil && length > *s.MaxLength {
		issues = append(issues, Issue{Path: path, Message: fmt.Sprintf("string length %d exceeds maximum %d", length, *s.MaxLength)})
	}

	if s.Pattern != "" {
		matched, err := v.matchPattern(s.Pattern, str)
		switch {
		case err != nil:
			issues = append(issues, Issue{Path: path, Message: fmt.Sprintf("invalid pattern %q: %v", s.Pattern, err)})
		case !matched:
			issues = append(issues, Issue{Path: path, Message: fmt.Sprintf("string does not match pattern %q", s.Pattern)})
		}
	}

	if s.Format != "" {
		if name, ok := checkFormat(s.Format, str); !ok {
			issues = append(issues, Issue{
				Path:     path,
				Message:  v.describe("value is not a valid "+name, fmt.Sprintf("%q", str)),
				Severity: SeverityWarning,
			})
		}
	}

	return issues
}

func (v *validator) validateNumber(n float64, s *Schema, path string) Issues {
	var issues Issues

	if s.Minimum != nil {
		if s.ExclusiveMinimum && n <= *s.Minimum {
			issues = append(issues, Issue{Path: path, Message: fmt.Sprintf("value %v must be greater than %v", n, *s.Minimum)})
		} else if !s.ExclusiveMinimum && n < *s.Minimum {
			issues = append(issues, Issue{Path: path, Message: fmt.Sprintf("value %v is less than minimum %v", n, *s.Minimum)})
		}
	}
	if s.Maximum != nil {
		if s.ExclusiveMaximum && n >= *s.Maximum {
			issues = append(issues, Issue{Path: path, Message: fmt.Sprintf("value %v must be less than %v", n, *s.Maximum)})
		} else if !s.ExclusiveMaximum && n > *s.Maximum {
			issues = append(issues, Issue{Path: path, Message: fmt.Sprintf("value %v exceeds maximum %v", n, *s.Maximum)})
		}
	}
	if s.MultipleOf != nil && *s.MultipleOf != 0 {
		q := n / *s.MultipleOf
		if math.Abs(q-math.Round(q)) > 1e-9 {
			issues = append(issues, Issue{Path: path, Message: fmt.Sprintf("value %v is not a multiple of %v", n, *s.MultipleOf)})
		}
	}

	return issues
}

func (v *validator) validateArray(arr []any, s *Schema, path string) Issues {
	var issues Issues

	if s.MinItems != nil && len(arr) < *s.MinItems {
		issues = append(issues, Issue{Path: path, Message: fmt.Sprintf("array has %d items, minimum is %d", len(arr), *s.MinItems)})
	}
	if s.MaxItems != nil && len(arr) > *s.MaxItems {
		issues = append(issues, Issue{Path: path, Message: fmt.Sprintf("array has %d items, maximum is %d", len(arr), *s.MaxItems)})
	}
	if s.UniqueItems && hasDuplicates(arr) {
		issues = append(issues, Issue{Path: path, Message: "array items must be unique"})
	}

	if s.Items != nil {
		for i, item := range arr {
			issues = append(issues, v.validate(item, s.Items, indexPath(path, i))...)
		}
	}

	return issues
}

func (v *validator) validateObject(obj map[string]any, s *Schema, path string) Issues {
	var issues Issues

	for _, name := range s.Required {
		if val, ok := obj[name]; !ok || val == nil && !propertyNullable(s, name) {
			issues = append(issues, Issue{Path: joinPath(path, name), Message: "required property is missing"})
		}
	}

	if s.MinProperties != nil && len(obj) < *s.MinProperties {
		issues = append(issues, Issue{Path: path, Message: fmt.Sprintf("object has %d properties, minimum is %d", len(obj), *s.MinProperties)})
	}
	if s.MaxProperties != nil && len(obj) > *s.MaxProperties {
		issues = append(issues, Issue{Path: path, Message: fmt.Sprintf("object has %d properties, maximum is %d", len(obj), *s.MaxProperties)})
	}

	// Sorted so messages are stable across runs.
	names := make([]string, 0, len(obj))
	for name := range obj {
		names = append(names, name)
	}
	sortStrings(names)

	closed := s.AdditionalProperties != nil && !*s.AdditionalProperties
	for _, name := range names {
		prop, declared := s.Properties[name]
		if !declared {
			if closed {
				issues = append(issues, Issue{Path: joinPath(path, name), Message: "additional property is not allowed"})
			}
			continue
		}
		if obj[name] == nil && isRequired(s, name) {
			continue // already reported
		}
		issues = append(issues, v.validate(obj[name], prop, joinPath(path, name))...)
	}

	return issues
}

func (v *validator) validateEnum(data any, s *Schema, path string) Issues {
	for _, allowed := range s.Enum {
		if valuesEqual(data, Normalize(allowed)) {
			return nil
		}
	}
	return Issues{{Path: path, Message: v.describe("value is not one of the allowed values", data)}}
}

func (v *validator) validateComposition(data any, s *Schema, path string) Issues {
	var issues Issues

	for i, sub := range s.AllOf {
		if subIssues := v.validate(data, sub, path); subIssues.HasErrors() {
			issues = append(issues, Issue{Path: path, Message: fmt.Sprintf("allOf[%d] validation failed", i)})
			issues = append(issues, subIssues...)
		}
	}

	if len(s.AnyOf) > 0 && v.countMatches(data, s.AnyOf, path, 1) == 0 {
		issues = append(issues, Issue{Path: path, Message: "value does not match any of the anyOf schemas"})
	}

	if len(s.OneOf) > 0 {
		switch n := v.countMatches(data, s.OneOf, path, 2); n {
		case 0:
			issues = append(issues, Issue{Path: path, Message: "value does not match any of the oneOf schemas"})
		case 1:
		default:
			issues = append(issues, Issue{Path: path, Message: "value matches more than one oneOf schema"})
		}
	}

	if s.Not != nil && !v.validate(data, s.Not, path).HasErrors() {
		issues = append(issues, Issue{Path: path, Message: "value must not match the 'not' schema"})
	}

	return issues
}

// countMatches counts the schemas data satisfies, stopping once limit is reached.
func (v *validator) countMatches(data any, schemas []*Schema, path string, limit int) int {
	n := 0
	for _, sub := range schemas {
		if !v.validate(data, sub, path).HasErrors() {
			n++
			if n >= limit {
				break
			}
		}
	}
	return n
}

// maxPatternCacheSize is the upper bound on cached compiled regex patterns.
// When exceeded, the cache is cleared and refilled.
const maxPatternCacheSize = 1000

func (v *validator) matchPattern(pattern, s string) (bool, error) {
	if cached, ok := v.patternCache.Load(pattern); ok {
		return cached.(*regexp.Regexp).MatchString(s), nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, err
	}

	// The count check and the clear are not atomic; a racing clear only costs
	// recompilation.
	if v.patternCount.Add(1) > maxPatternCacheSize {
		v.patternCache.Range(func(key, _ any) bool {
			v.patternCache.Delete(key)
			return true
		})
		v.patternCount.Store(1)
	}
	v.patternCache.Store(pattern, re)
	return re.MatchString(s), nil
}

func isRequired(s *Schema, name string) bool {
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

func propertyNullable(s *Schema, name string) bool {
	prop, ok := s.Properties[name]
	return ok && prop != nil && prop.IsNullable()
}

// dataTypeOf returns the JSON Schema type name of a normalized value.
func dataTypeOf(data any) string {
	switch d := data.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int64, uint64:
		return "integer"
	case float64:
		if d == math.Trunc(d) && !math.IsInf(d, 0) {
			return "integer"
		}
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", data)
}

func typeMatches(dataType, schemaType string) bool {
	switch {
	case dataType == schemaType:
		return true
	case schemaType == "number" && dataType == "integer":
		return true
	}
	return false
}

func hasDuplicates(arr []any) bool {
	for i := range arr {
		for j := i + 1; j < len(arr); j++ {
			if valuesEqual(arr[i], arr[j]) {
				return true
			}
		}
	}
	return false
}
