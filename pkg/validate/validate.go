// Package validate provides struct-tag validation.
//
// Supported rules (comma-separated in the `validate` tag):
//
//	required            field must not be zero/empty
//	nullable            if empty or an explicit JSON null, skip remaining rules
//	email               valid email address
//	url                 valid http(s) URL
//	uuid                valid UUID
//	hexcolor            #rrggbb colour
//	alpha_dash          letters, digits, hyphens, underscores
//	numeric / integer   parseable number / whole number
//	min=N / max=N       string: char length | number: value | slice: length
//	size=N              string: exact length
//	gt, gte, lt, lte=N  numeric comparisons
//	between=lo,hi       number or string length within [lo, hi]
//	in=a,b,c            value must be one of the listed items
//	not_in=a,b,c        value must not be one of the listed items
//	regex=pattern       value must match (avoid commas in pattern)
//
// Fields of a type implementing Presence (see pkg/optional) are only
// validated when present in the payload; an explicit null is rejected unless
// the field is nullable.
package validate

import (
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Presence is implemented by optional payload fields.
type Presence interface {
	IsSet() bool
	IsNull() bool
	Interface() any
}

// FieldError is one failed field, in struct declaration order.
type FieldError struct {
	Field   string
	Message string
}

// Check validates all exported fields of v that carry a `validate` tag and
// returns the failures in declaration order, at most one per field.
func Check(v interface{}) []FieldError {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	var out []FieldError
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		tag := field.Tag.Get("validate")
		if tag == "" || !field.IsExported() {
			continue
		}

		name := jsonFieldName(field)
		rules := splitRules(tag)
		nullable := hasRule(rules, "nullable")
		value := rv.Field(i)

		if p, ok := value.Interface().(Presence); ok {
			if !p.IsSet() {
				continue
			}
			if p.IsNull() {
				if !nullable {
					out = append(out, FieldError{name, fmt.Sprintf("The %s field may not be null.", name)})
				}
				continue
			}
			value = reflect.ValueOf(p.Interface())
		}

		if value.Kind() == reflect.Ptr {
			if value.IsNil() {
				if hasRule(rules, "required") {
					out = append(out, FieldError{name, fmt.Sprintf("The %s field is required.", name)})
				}
				continue
			}
			value = value.Elem()
		}

		if nullable && isEmpty(value) {
			continue
		}

		for _, rule := range rules {
			if rule == "nullable" {
				continue
			}
			if msg := applyRule(rule, name, value); msg != "" {
				out = append(out, FieldError{name, msg})
				break
			}
		}
	}
	return out
}

// Struct is Check as a field → message map. An empty map means valid.
func Struct(v interface{}) map[string]string {
	errs := make(map[string]string)
	for _, fe := range Check(v) {
		errs[fe.Field] = fe.Message
	}
	return errs
}

// HasErrors returns true when the errs map is non-empty.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

func applyRule(rule, field string, v reflect.Value) string {
	raw := fmt.Sprintf("%v", v.Interface())
	key, param, _ := strings.Cut(rule, "=")

	switch key {
	case "required":
		if isEmpty(v) {
			return fmt.Sprintf("The %s field is required.", field)
		}

	case "email":
		if !emailRE.MatchString(raw) {
			return fmt.Sprintf("The %s must be a valid email address.", field)
		}
	case "url":
		u, err := url.ParseRequestURI(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Sprintf("The %s must be a valid URL.", field)
		}
	case "uuid":
		if !uuidRE.MatchString(raw) {
			return fmt.Sprintf("The %s must be a valid UUID.", field)
		}
	case "hexcolor":
		if !hexColorRE.MatchString(raw) {
			return fmt.Sprintf("The %s must be a colour like #f97316.", field)
		}
	case "alpha_dash":
		for _, c := range raw {
			if !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '-' && c != '_' {
				return fmt.Sprintf("The %s field may only contain letters, numbers, dashes, and underscores.", field)
			}
		}
	case "numeric":
		if _, err := strconv.ParseFloat(raw, 64); err != nil {
			return fmt.Sprintf("The %s field must be a number.", field)
		}
	case "integer":
		if _, err := strconv.ParseInt(raw, 10, 64); err != nil {
			return fmt.Sprintf("The %s field must be an integer.", field)
		}

	case "min":
		n := mustParseFloat(param)
		switch {
		case isNumericKind(v):
			if toFloat(v) < n {
				return fmt.Sprintf("The %s must be at least %s.", field, param)
			}
		case isCollection(v):
			if float64(v.Len()) < n {
				return fmt.Sprintf("The %s must have at least %s items.", field, param)
			}
		default:
			if float64(runeLen(raw)) < n {
				return fmt.Sprintf("The %s must be at least %s characters.", field, param)
			}
		}
	case "max":
		n := mustParseFloat(param)
		switch {
		case isNumericKind(v):
			if toFloat(v) > n {
				return fmt.Sprintf("The %s must not be greater than %s.", field, param)
			}
		case isCollection(v):
			if float64(v.Len()) > n {
				return fmt.Sprintf("The %s must not have more than %s items.", field, param)
			}
		default:
			if float64(runeLen(raw)) > n {
				return fmt.Sprintf("The %s must not be greater than %s characters.", field, param)
			}
		}
	case "size":
		if float64(runeLen(raw)) != mustParseFloat(param) {
			return fmt.Sprintf("The %s must be %s characters.", field, param)
		}
	case "gt":
		if toFloat(v) <= mustParseFloat(param) {
			return fmt.Sprintf("The %s must be greater than %s.", field, param)
		}
	case "gte":
		if toFloat(v) < mustParseFloat(param) {
			return fmt.Sprintf("The %s must be greater than or equal to %s.", field, param)
		}
	case "lt":
		if toFloat(v) >= mustParseFloat(param) {
			return fmt.Sprintf("The %s must be less than %s.", field, param)
		}
	case "lte":
		if toFloat(v) > mustParseFloat(param) {
			return fmt.Sprintf("The %s must be less than or equal to %s.", field, param)
		}
	case "between":
		lo, hi, ok := strings.Cut(param, ",")
		if !ok {
			break
		}
		l, h := mustParseFloat(lo), mustParseFloat(hi)
		if isNumericKind(v) {
			if f := toFloat(v); f < l || f > h {
				return fmt.Sprintf("The %s must be between %s and %s.", field, lo, hi)
			}
		} else if n := float64(runeLen(raw)); n < l || n > h {
			return fmt.Sprintf("The %s must be between %s and %s characters.", field, lo, hi)
		}

	case "in":
		for _, a := range strings.Split(param, ",") {
			if raw == strings.TrimSpace(a) {
				return ""
			}
		}
		return fmt.Sprintf("The selected %s is invalid.", field)
	case "not_in":
		for _, f := range strings.Split(param, ",") {
			if raw == strings.TrimSpace(f) {
				return fmt.Sprintf("The selected %s is invalid.", field)
			}
		}

	case "regex":
		re, err := regexp.Compile(param)
		if err != nil {
			return fmt.Sprintf("The %s has an invalid validation pattern.", field)
		}
		if !re.MatchString(raw) {
			return fmt.Sprintf("The %s format is invalid.", field)
		}
	}

	return ""
}

var (
	emailRE    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	uuidRE     = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	hexColorRE = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
)

func runeLen(s string) int { return len([]rune(s)) }

func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	case reflect.Bool:
		return false // false is a value, not an absence
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	}
	return false
}

func isCollection(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return true
	}
	return false
}

func isNumericKind(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func toFloat(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	case reflect.Float32, reflect.Float64:
		return v.Float()
	}
	f, _ := strconv.ParseFloat(fmt.Sprintf("%v", v.Interface()), 64)
	return f
}

func mustParseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return strings.ToLower(f.Name)
	}
	return name
}

// splitRules splits a tag on commas while keeping the comma-separated
// parameters of in=, not_in= and between= together:
//
//	"required,in=admin,user,max=100" → ["required", "in=admin,user", "max=100"]
func splitRules(tag string) []string {
	var rules []string
	var current strings.Builder
	inParam := false

	for i := 0; i < len(tag); i++ {
		ch := tag[i]
		if ch != ',' {
			current.WriteByte(ch)
			if !inParam {
				s := current.String()
				inParam = s == "in=" || s == "not_in=" || s == "between="
			}
			continue
		}
		if inParam && !looksLikeNewRule(tag[i+1:]) {
			current.WriteByte(ch)
			continue
		}
		rules = append(rules, current.String())
		current.Reset()
		inParam = false
	}
	if current.Len() > 0 {
		rules = append(rules, current.String())
	}
	return rules
}

var knownRules = []string{
	"required", "nullable", "email", "url", "uuid", "hexcolor", "alpha_dash",
	"numeric", "integer", "min=", "max=", "size=", "gt=", "gte=", "lt=",
	"lte=", "between=", "in=", "not_in=", "regex=",
}

func looksLikeNewRule(s string) bool {
	for _, k := range knownRules {
		if strings.HasPrefix(s, k) {
			return true
		}
	}
	return false
}

func hasRule(rules []string, target string) bool {
	for _, r := range rules {
		if strings.TrimSpace(r) == target {
			return true
		}
	}
	return false
}
