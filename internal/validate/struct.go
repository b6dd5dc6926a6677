package validate

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Errors collects per-field messages; handlers render it as a 400.
type Errors struct {
	Fields map[string]string `json:"fields"`
}

func (e *Errors) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

func (e *Errors) Empty() bool { return e == nil || len(e.Fields) == 0 }

func (e *Errors) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// Err returns nil when no field failed, so callers can `return errs.Err()`.
func (e *Errors) Err() error {
	if e.Empty() {
		return nil
	}
	return e
}

var (
	v     *validator.Validate
	vOnce sync.Once
)

func instance() *validator.Validate {
	vOnce.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		mustRegister("slug", func(fl validator.FieldLevel) bool { return Slug(fl.Field().String()) })
		mustRegister("phone", func(fl validator.FieldLevel) bool { return Phone(fl.Field().String()) })
		mustRegister("listing_type", oneOf("sale", "rent"))
		mustRegister("condition", oneOf("new", "used", "refurbished"))
		mustRegister("urgency", oneOf("low", "medium", "high", "urgent"))
		mustRegister("inquiry_status", oneOf("new", "in_progress", "resolved", "closed"))
		mustRegister("store_status", oneOf("pending", "verified", "rejected"))
		mustRegister("subscription_status", oneOf("trial", "active", "expired", "cancelled"))
	})
	return v
}

func mustRegister(tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s: %v", tag, err))
	}
}

func oneOf(allowed ...string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		for _, a := range allowed {
			if s == a {
				return true
			}
		}
		return false
	}
}

// Struct runs the `validate` tags on s and flattens failures into *Errors.
func Struct(s any) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &Errors{}
	for _, fe := range verrs {
		out.Add(fe.Field(), message(fe))
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "max":
		return "must be at most " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "len":
		return "must be exactly " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "slug":
		return "must contain only lowercase letters, digits and dashes"
	case "phone":
		return "must be a valid phone number"
	default:
		return "is invalid"
	}
}
