package validation

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Values is the flattened request payload a rule set runs against.
type Values map[string]any

// Errors maps field name to the ordered list of violation messages.
type Errors map[string][]string

type Constraint interface {
	// Check returns an empty string when the value passes.
	Check(db *gorm.DB, vals Values, field string, value any) string
}

type Field struct {
	Name     string
	Required bool
	Checks   []Constraint
}

type RuleSet []Field

// Validate evaluates a rule set against the payload. Optional fields that
// are absent or empty are skipped entirely; required fields that are absent
// fail with a single "required" message and skip the remaining checks.
func Validate(db *gorm.DB, rules RuleSet, vals Values) Errors {
	errs := Errors{}

	for _, f := range rules {
		value, present := vals[f.Name]
		if !present || isEmpty(value) {
			if f.Required {
				errs[f.Name] = append(errs[f.Name], fmt.Sprintf("The %s field is required.", label(f.Name)))
			}
			continue
		}

		for _, check := range f.Checks {
			if msg := check.Check(db, vals, f.Name, value); msg != "" {
				errs[f.Name] = append(errs[f.Name], msg)
			}
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case int:
		return t == 0
	case uint:
		return t == 0
	case float64:
		return t == 0
	}
	return false
}

func label(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case uint:
		return float64(t), true
	case float64:
		return t, true
	}
	return 0, false
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
