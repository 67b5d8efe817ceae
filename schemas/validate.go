// validate.go - Field-level validation rules and error translation

package schemas

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"go-blog-backend/apperr"
)

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)
	slugPattern     = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

func init() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	registerRules(v)
}

func registerRules(v *validator.Validate) {
	// report JSON (or form) names instead of Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
}

// Validate runs the binding rules on v outside of a request (CLI input).
func Validate(v any) error {
	if err := binding.Validator.ValidateStruct(v); err != nil {
		return BindError(err)
	}
	return nil
}

// BindError turns a gin binding failure into a validation error with
// per-field messages.
func BindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fieldPath(fe)] = fieldMessage(fe)
		}
		return apperr.Validation("request validation failed", fields)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var numErr *strconv.NumError
	switch {
	case errors.Is(err, io.EOF):
		return apperr.Validation("request body is empty", nil)
	case errors.As(err, &syntaxErr):
		return apperr.Validation("malformed JSON body", nil)
	case errors.As(err, &typeErr):
		return apperr.Validation("request validation failed", map[string]string{
			typeErr.Field: fmt.Sprintf("must be of type %s", typeErr.Type),
		})
	case errors.As(err, &numErr):
		return apperr.Validation("request validation failed", map[string]string{
			"query": fmt.Sprintf("%q is not a valid number", numErr.Num),
		})
	}
	return apperr.Validation(err.Error(), nil)
}

// fieldPath drops struct names from the namespace so that
// "ArticleQuery.PageQuery.size" reports as "size".
func fieldPath(fe validator.FieldError) string {
	parts := strings.Split(fe.Namespace(), ".")
	kept := parts[:0]
	for _, p := range parts {
		if p != "" && unicode.IsUpper(rune(p[0])) {
			continue
		}
		kept = append(kept, p)
	}
	if len(kept) == 0 {
		return fe.Field()
	}
	return strings.Join(kept, ".")
}

func fieldMessage(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "hexcolor":
		return "must be a hex color such as #3b82f6"
	case "username":
		return "must be 3-20 letters, digits or underscores"
	case "slug":
		return "must be lowercase letters, digits and single hyphens"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min":
		if isString {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at most %s items", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	}
	return "is invalid"
}
