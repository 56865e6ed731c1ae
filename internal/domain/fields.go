package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FieldKind tells how a field value is parsed before it is bound.
type FieldKind int

const (
	KindText FieldKind = iota
	KindDate
	KindMoney
)

// Field is one entry of the single-field update allow-list.
type Field struct {
	Name   string
	Column string
	Kind   FieldKind
	// Required fields reject blank values.
	Required bool
	// AdminOnly fields cannot be changed by an employee on their own record.
	AdminOnly bool
}

var updatableFields = []Field{
	{Name: "first_name", Column: "first_name", Kind: KindText, Required: true},
	{Name: "last_name", Column: "last_name", Kind: KindText, Required: true},
	{Name: "email", Column: "email", Kind: KindText},
	{Name: "phone", Column: "phone_number", Kind: KindText},
	{Name: "gender", Column: "gender", Kind: KindText},
	{Name: "race", Column: "race", Kind: KindText},
	{Name: "ssn", Column: "ssn", Kind: KindText},
	{Name: "dob", Column: "dob", Kind: KindDate},
	{Name: "hire_date", Column: "hire_date", Kind: KindDate},
	{Name: "salary", Column: "salary", Kind: KindMoney, AdminOnly: true},
}

// fieldAliases maps normalized caller names to allow-list names.
var fieldAliases = map[string]string{
	"firstname":   "first_name",
	"fname":       "first_name",
	"lastname":    "last_name",
	"lname":       "last_name",
	"email":       "email",
	"phone":       "phone",
	"phonenumber": "phone",
	"gender":      "gender",
	"race":        "race",
	"ssn":         "ssn",
	"dob":         "dob",
	"dateofbirth": "dob",
	"birthdate":   "dob",
	"hiredate":    "hire_date",
	"salary":      "salary",
}

// UpdatableFields returns the allow-list in declaration order.
func UpdatableFields() []Field {
	out := make([]Field, len(updatableFields))
	copy(out, updatableFields)
	return out
}

// LookupField resolves a caller-supplied field name against the allow-list.
// Matching ignores case, underscores, dashes and spaces, so "firstName",
// "Fname" and "first_name" all resolve to the same field.
func LookupField(name string) (Field, error) {
	key := strings.Map(func(r rune) rune {
		switch r {
		case '_', '-', ' ':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(name)))

	canonical, ok := fieldAliases[key]
	if !ok {
		return Field{}, NewValidationError("field", "'"+name+"' is not an updatable field")
	}
	for _, f := range updatableFields {
		if f.Name == canonical {
			return f, nil
		}
	}
	return Field{}, NewValidationError("field", "'"+name+"' is not an updatable field")
}

// Parse converts a raw value into the argument bound for this field.
// Dates come back as YYYY-MM-DD strings and salaries as decimals.
func (f Field) Parse(value string) (interface{}, error) {
	if f.Required && strings.TrimSpace(value) == "" {
		return nil, NewValidationError(f.Name, "must not be empty")
	}
	switch f.Kind {
	case KindDate:
		v := strings.TrimSpace(value)
		if _, err := ParseDate(f.Name, v); err != nil {
			return nil, err
		}
		return v, nil
	case KindMoney:
		d, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return nil, NewValidationError(f.Name, "must be a decimal number")
		}
		if d.IsNegative() {
			return nil, NewValidationError(f.Name, "must not be negative")
		}
		return d.Round(2), nil
	default:
		return value, nil
	}
}
