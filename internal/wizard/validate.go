package wizard

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"podcast-studio/internal/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	must(v.RegisterValidation("episode_format", func(fl validator.FieldLevel) bool {
		return slices.Contains(models.FormatOptions, fl.Field().String())
	}))
	must(v.RegisterValidation("output_formats", func(fl validator.FieldLevel) bool {
		for _, f := range models.SplitList(fl.Field().String()) {
			if !slices.Contains(models.OutputFormatOptions, f) {
				return false
			}
		}
		return true
	}))
	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// check validates only the named struct fields and returns the messages
// in field order. No fields means nothing to check.
func check(entity any, fields []string) []string {
	if len(fields) == 0 {
		return nil
	}
	err := validate.StructPartial(entity, fields...)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		messages = append(messages, message(fe))
	}
	return messages
}

func message(fe validator.FieldError) string {
	label := humanize(fe.Field())
	switch fe.Tag() {
	case "required":
		return label + " can't be blank"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", label, fe.Param())
	case "http_url":
		return label + " is not a valid URL"
	case "oneof", "episode_format", "output_formats":
		return label + " is not included in the list"
	default:
		return label + " is invalid"
	}
}

// humanize turns a form key such as "primary_category" into "Primary category".
func humanize(key string) string {
	s := strings.ReplaceAll(key, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
