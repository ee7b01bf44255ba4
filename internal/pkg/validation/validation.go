// Package validation evaluates ordered field rules for form input.
package validation

import (
	"reflect"
	"regexp"
	"unicode/utf8"
)

// Kind identifies what a Rule checks.
type Kind int

const (
	KindRequired Kind = iota
	KindMinLength
	KindMaxLength
	KindMin
	KindMax
	KindPattern
	KindCustom
)

// Rule is a single check applied to a field value.
type Rule struct {
	Kind     Kind
	Required bool
	Length   int
	Bound    float64
	Pattern  *regexp.Regexp
	Check    func(value any) bool
	Message  string
}

// Required fails on nil, nil pointers and empty strings.
func Required(message string) Rule {
	return Rule{Kind: KindRequired, Required: true, Message: message}
}

// Optional marks a field as not required. Empty values then pass every other rule.
func Optional() Rule {
	return Rule{Kind: KindRequired, Required: false}
}

// MinLength fails on strings shorter than n runes.
func MinLength(n int, message string) Rule {
	return Rule{Kind: KindMinLength, Length: n, Message: message}
}

// MaxLength fails on strings longer than n runes.
func MaxLength(n int, message string) Rule {
	return Rule{Kind: KindMaxLength, Length: n, Message: message}
}

// Min fails on numbers below bound.
func Min(bound float64, message string) Rule {
	return Rule{Kind: KindMin, Bound: bound, Message: message}
}

// Max fails on numbers above bound.
func Max(bound float64, message string) Rule {
	return Rule{Kind: KindMax, Bound: bound, Message: message}
}

// Pattern fails on strings that do not match re.
func Pattern(re *regexp.Regexp, message string) Rule {
	return Rule{Kind: KindPattern, Pattern: re, Message: message}
}

// Custom fails when check returns false. It applies to values of any type.
func Custom(check func(value any) bool, message string) Rule {
	return Rule{Kind: KindCustom, Check: check, Message: message}
}

// Schema maps field names to their rules.
type Schema map[string][]Rule

// Errors maps field names to the message of their first failing rule.
type Errors map[string]string

// ValidateField runs rules in order and returns the first failing message, or "" when the value passes.
// An empty value only fails a required rule; every other rule is skipped for it.
func ValidateField(value any, rules []Rule) string {
	empty := isEmpty(value)
	for _, rule := range rules {
		if rule.Kind == KindRequired {
			if rule.Required && empty {
				return rule.Message
			}
			continue
		}
		if empty {
			continue
		}
		if failed(rule, value) {
			return rule.Message
		}
	}
	return ""
}

// ValidateForm validates every field of schema against data and returns only the failing ones.
func ValidateForm(data map[string]any, schema Schema) Errors {
	errs := Errors{}
	for field, rules := range schema {
		if msg := ValidateField(data[field], rules); msg != "" {
			errs[field] = msg
		}
	}
	return errs
}

func failed(rule Rule, value any) bool {
	switch rule.Kind {
	case KindMinLength:
		if s, ok := asString(value); ok {
			return utf8.RuneCountInString(s) < rule.Length
		}
	case KindMaxLength:
		if s, ok := asString(value); ok {
			return utf8.RuneCountInString(s) > rule.Length
		}
	case KindMin:
		if n, ok := asNumber(value); ok {
			return n < rule.Bound
		}
	case KindMax:
		if n, ok := asNumber(value); ok {
			return n > rule.Bound
		}
	case KindPattern:
		if s, ok := asString(value); ok && rule.Pattern != nil {
			return !rule.Pattern.MatchString(s)
		}
	case KindCustom:
		if rule.Check != nil {
			return !rule.Check(value)
		}
	}
	return false
}

func isEmpty(value any) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return true
		}
		return isEmpty(v.Elem().Interface())
	case reflect.String:
		return v.Len() == 0
	}
	return false
}

func asString(value any) (string, bool) {
	v := reflect.Indirect(reflect.ValueOf(value))
	if v.Kind() != reflect.String {
		return "", false
	}
	return v.String(), true
}

func asNumber(value any) (float64, bool) {
	v := reflect.Indirect(reflect.ValueOf(value))
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	}
	return 0, false
}
