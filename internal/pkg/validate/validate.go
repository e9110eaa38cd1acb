package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// v is the package-level singleton validator. It is initialised once at
// package load time. Any custom type registrations must be made during init()
// before the first call to Struct.
var v = validator.New()

func init() {
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
}

// FieldError names a request field that failed a rule.
type FieldError struct {
	Field string
	Rule  string
}

// Error is returned by Struct when one or more fields fail validation.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, fe := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("field '%s' failed '%s'", fe.Field, fe.Rule))
	}
	return strings.Join(msgs, "; ")
}

// Struct validates the given struct using its validate tags.
// Field failures are reported as *Error keyed by JSON field name.
func Struct(s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	out := &Error{Fields: make([]FieldError, 0, len(ve))}
	for _, fe := range ve {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Rule: fe.Tag()})
	}
	return out
}
