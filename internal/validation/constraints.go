package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"
)

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// MinLen enforces a minimum string length in runes.
type MinLen struct{ N int }

func (r MinLen) Check(_ *gorm.DB, _ Values, field string, value any) string {
	if utf8.RuneCountInString(toString(value)) < r.N {
		return fmt.Sprintf("The %s must be at least %d characters.", label(field), r.N)
	}
	return ""
}

// MaxLen enforces a maximum string length in runes.
type MaxLen struct{ N int }

func (r MaxLen) Check(_ *gorm.DB, _ Values, field string, value any) string {
	if utf8.RuneCountInString(toString(value)) > r.N {
		return fmt.Sprintf("The %s may not be greater than %d characters.", label(field), r.N)
	}
	return ""
}

// Min enforces a minimum numeric value.
type Min struct{ N float64 }

func (r Min) Check(_ *gorm.DB, _ Values, field string, value any) string {
	n, ok := toFloat(value)
	if !ok || n < r.N {
		return fmt.Sprintf("The %s must be at least %v.", label(field), r.N)
	}
	return ""
}

// Max enforces a maximum numeric value.
type Max struct{ N float64 }

func (r Max) Check(_ *gorm.DB, _ Values, field string, value any) string {
	n, ok := toFloat(value)
	if !ok || n > r.N {
		return fmt.Sprintf("The %s may not be greater than %v.", label(field), r.N)
	}
	return ""
}

// Numeric accepts numbers and numeric strings.
type Numeric struct{}

func (Numeric) Check(_ *gorm.DB, _ Values, field string, value any) string {
	if _, ok := toFloat(value); ok {
		return ""
	}
	if _, err := strconv.ParseFloat(toString(value), 64); err != nil {
		return fmt.Sprintf("The %s must be a number.", label(field))
	}
	return ""
}

type Email struct{}

func (Email) Check(_ *gorm.DB, _ Values, field string, value any) string {
	if !emailRe.MatchString(toString(value)) {
		return fmt.Sprintf("The %s must be a valid email address.", label(field))
	}
	return ""
}

// Date validates against a time layout, e.g. "2006-01-02".
type Date struct{ Layout string }

func (r Date) Check(_ *gorm.DB, _ Values, field string, value any) string {
	if _, err := time.Parse(r.Layout, toString(value)); err != nil {
		return fmt.Sprintf("The %s is not a valid date.", label(field))
	}
	return ""
}

// TimeOfDay validates the "15:04" wall-clock format.
type TimeOfDay struct{}

func (TimeOfDay) Check(_ *gorm.DB, _ Values, field string, value any) string {
	if _, err := time.Parse("15:04", toString(value)); err != nil {
		return fmt.Sprintf("The %s does not match the format 15:04.", label(field))
	}
	return ""
}

// In enforces enum membership.
type In struct{ Options []string }

func (r In) Check(_ *gorm.DB, _ Values, field string, value any) string {
	s := toString(value)
	for _, opt := range r.Options {
		if s == opt {
			return ""
		}
	}
	return fmt.Sprintf("The selected %s is invalid.", label(field))
}

// Unique checks the column against the persisted set, excluding ExceptID so
// a record can keep its own value on update.
type Unique struct {
	Table    string
	Column   string
	ExceptID uint
}

func (r Unique) Check(db *gorm.DB, _ Values, field string, value any) string {
	var count int64
	q := db.Table(r.Table).Where(r.Column+" = ?", value)
	if r.ExceptID != 0 {
		q = q.Where("id <> ?", r.ExceptID)
	}
	if err := q.Count(&count).Error; err != nil || count > 0 {
		return fmt.Sprintf("The %s has already been taken.", label(field))
	}
	return ""
}

// Exists checks that the value references an existing row id.
type Exists struct{ Table string }

func (r Exists) Check(db *gorm.DB, _ Values, field string, value any) string {
	var count int64
	if err := db.Table(r.Table).Where("id = ?", value).Count(&count).Error; err != nil || count == 0 {
		return fmt.Sprintf("The selected %s is invalid.", label(field))
	}
	return ""
}

// BeforeField requires this "15:04" time to be strictly before another field.
type BeforeField struct{ Other string }

func (r BeforeField) Check(_ *gorm.DB, vals Values, field string, value any) string {
	this, err1 := time.Parse("15:04", toString(value))
	other, err2 := time.Parse("15:04", toString(vals[r.Other]))
	if err1 != nil || err2 != nil {
		return ""
	}
	if !this.Before(other) {
		return fmt.Sprintf("The %s must be a time before %s.", label(field), label(r.Other))
	}
	return ""
}

// AfterField requires this "15:04" time to be strictly after another field.
type AfterField struct{ Other string }

func (r AfterField) Check(_ *gorm.DB, vals Values, field string, value any) string {
	this, err1 := time.Parse("15:04", toString(value))
	other, err2 := time.Parse("15:04", toString(vals[r.Other]))
	if err1 != nil || err2 != nil {
		return ""
	}
	if !this.After(other) {
		return fmt.Sprintf("The %s must be a time after %s.", label(field), label(r.Other))
	}
	return ""
}
