// ABOUTME: Client-side form rules checked before any write reaches the backend
// ABOUTME: Wraps go-playground/validator and turns failures into per-field messages

package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// passwordSymbols are the only non-alphanumeric characters a password may use
const passwordSymbols = "@$!%*?&"

// Errors maps a form field to its first failing rule's message
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, e[f])
	}
	return strings.Join(msgs, "; ")
}

// Field returns the message for field, or ""
func (e Errors) Field(name string) string {
	return e[name]
}

// SignIn is the sign-in form
type SignIn struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required" trim:"false"`
}

// SignUp is the registration form
type SignUp struct {
	Name            string `form:"name" validate:"required,min=3,max=20"`
	Email           string `form:"email" validate:"required,email"`
	Password        string `form:"password" validate:"required,min=8,strong" trim:"false"`
	ConfirmPassword string `form:"confirmation" validate:"required,eqfield=Password" trim:"false"`
}

// News is the add/update news form
type News struct {
	Title      string `form:"title" validate:"required,min=10,max=100"`
	Body       string `form:"content" validate:"required,min=10"`
	CategoryID int    `form:"category" validate:"required,gt=0"`
	Image      string `form:"image" validate:"omitempty,url"`
}

// Motivation is the add motivation form
type Motivation struct {
	Text string `form:"motivation" validate:"required,min=3,max=200"`
}

// MotivationUpdate is the edit motivation form, which allows longer text
type MotivationUpdate struct {
	Text string `form:"motivation" validate:"required,min=10,max=500"`
}

var (
	once     sync.Once
	instance *validator.Validate
)

func validate() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		instance.RegisterTagNameFunc(func(f reflect.StructField) string {
			if name := f.Tag.Get("form"); name != "" {
				return name
			}
			return strings.ToLower(f.Name)
		})
		instance.RegisterValidation("strong", strongPassword)
	})
	return instance
}

// Struct trims the string fields of the form pointed to by form, except
// those tagged trim:"false", and validates it. It returns Errors on rule failures.
func Struct(form any) error {
	trim(form)
	err := validate().Struct(form)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	out := make(Errors, len(ve))
	for _, fe := range ve {
		if _, seen := out[fe.Field()]; !seen {
			out[fe.Field()] = fieldError(fe)
		}
	}
	return out
}

// Var validates a single value against tag, returning a message or nil.
// Forms built field by field use it for inline validation.
func Var(field string, value any, tag string) error {
	err := validate().Var(value, tag)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return errors.New(fieldMessage(field, ve[0].Tag(), ve[0].Param()))
	}
	return err
}

// Rule returns the validate tag declared for field on form, for use with Var
func Rule(form any, field string) string {
	t := reflect.TypeOf(form)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Tag.Get("form") == field {
			return f.Tag.Get("validate")
		}
	}
	return ""
}

func trim(form any) {
	v := reflect.ValueOf(form)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return
	}
	v = v.Elem()
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		if t.Field(i).Tag.Get("trim") == "false" {
			continue
		}
		f := v.Field(i)
		if f.Kind() == reflect.String && f.CanSet() {
			f.SetString(strings.TrimSpace(f.String()))
		}
	}
}

// strongPassword requires a lowercase letter, an uppercase letter, a digit
// and a symbol, and allows nothing outside those classes.
func strongPassword(fl validator.FieldLevel) bool {
	var lower, upper, digit, symbol bool
	for _, r := range fl.Field().String() {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		default:
			return false
		}
	}
	return lower && upper && digit && symbol
}

func fieldError(fe validator.FieldError) string {
	return fieldMessage(fe.Field(), fe.Tag(), fe.Param())
}

func fieldMessage(field, tag, param string) string {
	switch tag {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "url":
		return field + " must be a valid URL"
	case "gt":
		if field == "category" {
			return "choose a category"
		}
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, param)
	case "eqfield":
		return field + " does not match"
	case "strong":
		return field + " must mix upper and lower case with a digit and a symbol (" + passwordSymbols + ")"
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, tag)
	}
}
