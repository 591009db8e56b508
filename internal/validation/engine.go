package validation

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/baechuer/account-service/internal/domain"
	"github.com/baechuer/account-service/internal/schema"
)

// Engine evaluates schema validator ops. It is safe for concurrent use.
type Engine struct {
	v *validator.Validate
}

func New() *Engine {
	v := validator.New()
	mustRegister(v, "password_strength", validatePasswordStrength)
	mustRegister(v, "username_format", validateUsernameFormat)
	mustRegister(v, "locale", validateLocale)
	return &Engine{v: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s: %v", tag, err))
	}
}

// CheckTag probes tag once so malformed or unknown tags fail at schema load
// time instead of inside a request. It satisfies schema.TagChecker.
func (e *Engine) CheckTag(tag string, cross bool) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("invalid validator tag %q: %v", tag, r)
		}
	}()
	if cross {
		_ = e.v.VarWithValue("", "", tag)
	} else {
		_ = e.v.Var("", tag)
	}
	return nil
}

// Outcome is Accepted when Errors is empty, Rejected otherwise.
type Outcome struct {
	Values Values
	Errors domain.FieldErrorSet
}

func (o Outcome) Accepted() bool { return o.Errors.Empty() }

// Validate checks vals against s. Every failing op appends one entry; a
// field's remaining ops still run after a failure. A required field that is
// missing or empty gets a single "required" entry and no further checks.
// Validate has no side effects.
func (e *Engine) Validate(s *schema.RequestSchema, vals Values) Outcome {
	var errs domain.FieldErrorSet
	for _, f := range s.Fields {
		val, present := vals[f.Name]
		if f.Required && (!present || isEmpty(val)) {
			errs.Add(f.Name, "required", f.RequiredMessage)
			continue
		}
		if !present {
			continue
		}
		if !hasType(f.Type, val) {
			errs.Add(f.Name, "type", f.TypeMessage)
			continue
		}
		for _, op := range f.Validators {
			var err error
			if op.Field != "" {
				other, ok := vals[op.Field]
				if !ok {
					other = zeroOf(f.Type)
				}
				err = e.v.VarWithValue(val, other, op.Rule)
			} else {
				err = e.v.Var(val, op.Rule)
			}
			if err != nil {
				errs.Add(f.Name, op.Rule, op.Message)
			}
		}
	}
	return Outcome{Values: vals, Errors: errs}
}

// IsEmail reports whether s is shaped like an email address.
func (e *Engine) IsEmail(s string) bool {
	return e.v.Var(s, "required,email") == nil
}

func isEmpty(v any) bool {
	s, ok := v.(string)
	return ok && s == ""
}

func hasType(t schema.ValueType, v any) bool {
	switch t {
	case schema.TypeInt:
		_, ok := v.(int64)
		return ok
	case schema.TypeBool:
		_, ok := v.(bool)
		return ok
	default:
		_, ok := v.(string)
		return ok
	}
}

func zeroOf(t schema.ValueType) any {
	switch t {
	case schema.TypeInt:
		return int64(0)
	case schema.TypeBool:
		return false
	default:
		return ""
	}
}
