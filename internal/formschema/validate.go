package formschema

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// FieldErrors maps field names to a human-readable validation message.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	return "invalid fields: " + strings.Join(names, ", ")
}

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^\+?[0-9][0-9 \-]*$`)
	digitRe = regexp.MustCompile(`[0-9]`)
)

// Submission is the full set of submitted values: the built-in contact fields
// plus the custom field values keyed by schema field name.
type Submission struct {
	Name   string
	Email  string
	Phone  string
	Fields map[string]string
}

// Validate checks a submission against a schema and returns the normalized
// custom-field value map, or a field-indexed error set. Built-in fields are
// always required. Submitted keys not present in the schema are dropped, not
// rejected, to tolerate schema drift between form render and submission.
func Validate(schema Schema, sub Submission) (map[string]string, FieldErrors) {
	errs := make(FieldErrors)

	if strings.TrimSpace(sub.Name) == "" {
		errs["name"] = "Name is required"
	}
	if strings.TrimSpace(sub.Email) == "" {
		errs["email"] = "Email is required"
	} else if !emailRe.MatchString(sub.Email) {
		errs["email"] = "Email format is invalid"
	}
	if strings.TrimSpace(sub.Phone) == "" {
		errs["phone"] = "Phone is required"
	} else if !validPhone(sub.Phone) {
		errs["phone"] = "Phone must contain 6 to 15 digits"
	}

	normalized := make(map[string]string, len(schema))
	for _, f := range schema {
		if !knownTypes[f.Type] {
			continue
		}
		value, ok := sub.Fields[f.Name]
		trimmed := strings.TrimSpace(value)
		if !ok || trimmed == "" {
			if f.Required {
				errs[f.Name] = f.DisplayLabel() + " is required"
			}
			continue
		}
		if msg := checkField(f, value, trimmed); msg != "" {
			errs[f.Name] = msg
			continue
		}
		// Stored verbatim so the value round-trips unchanged.
		normalized[f.Name] = value
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return normalized, nil
}

func checkField(f Field, value, trimmed string) string {
	label := f.DisplayLabel()

	switch f.Type {
	case TypeEmail:
		if !emailRe.MatchString(trimmed) {
			return label + " format is invalid"
		}
	case TypeNumber:
		n, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return label + " must be a number"
		}
		if f.Validation != nil {
			if f.Validation.Min != nil && n < *f.Validation.Min {
				return fmt.Sprintf("%s must be at least %v", label, *f.Validation.Min)
			}
			if f.Validation.Max != nil && n > *f.Validation.Max {
				return fmt.Sprintf("%s must be no more than %v", label, *f.Validation.Max)
			}
		}
		return ""
	case TypeSelect:
		for _, opt := range f.Options {
			if opt.Value == trimmed {
				return ""
			}
		}
		return label + " has an invalid choice"
	}

	if f.Validation == nil {
		return ""
	}
	if f.Validation.MinLength > 0 && len(value) < f.Validation.MinLength {
		return fmt.Sprintf("%s must be at least %d characters", label, f.Validation.MinLength)
	}
	if f.Validation.MaxLength > 0 && len(value) > f.Validation.MaxLength {
		return fmt.Sprintf("%s must be no more than %d characters", label, f.Validation.MaxLength)
	}
	if f.Validation.Pattern != "" {
		re, err := regexp.Compile(f.Validation.Pattern)
		if err != nil {
			// Unparseable pattern in a stored schema: skip rather than block
			// every submission on an organizer mistake.
			return ""
		}
		if !re.MatchString(value) {
			return label + " format is invalid"
		}
	}
	return ""
}

// validPhone accepts 6 to 15 digits with optional leading + and common
// separators.
func validPhone(s string) bool {
	if !phoneRe.MatchString(strings.TrimSpace(s)) {
		return false
	}
	digits := len(digitRe.FindAllString(s, -1))
	return digits >= 6 && digits <= 15
}
