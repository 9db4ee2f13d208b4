// internal/app/system/inputval/inputval.go
package inputval

import (
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/dalemusser/mahallehub/internal/app/system/weeks"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	validate   *validator.Validate
	translator ut.Translator

	nationalIDRE = regexp.MustCompile(`^\d{11}$`)
)

// custom validation tags
const (
	nationalIDTag = "nationalid"
	weekLabelTag  = "weeklabel"
	notBlankTag   = "notblank"
)

func init() {
	validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Report form/json field names rather than Go names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(nationalIDTag, func(fl validator.FieldLevel) bool {
		return IsValidNationalID(fl.Field().String())
	})
	_ = validate.RegisterValidation(weekLabelTag, func(fl validator.FieldLevel) bool {
		return weeks.Valid(fl.Field().String())
	})
	_ = validate.RegisterValidation(notBlankTag, func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	noop := func(ut.Translator) error { return nil }
	for _, tag := range []string{nationalIDTag, weekLabelTag, notBlankTag} {
		_ = validate.RegisterTranslation(tag, translator, noop, translateCustom)
	}
}

func translateCustom(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case nationalIDTag:
		return fe.Field() + " must be an 11-digit national ID"
	case weekLabelTag:
		return fe.Field() + " must look like 2026-W03"
	case notBlankTag:
		return fe.Field() + " cannot be blank"
	default:
		return fe.Field() + " is invalid"
	}
}

// IsValidNationalID reports whether s is exactly 11 digits.
func IsValidNationalID(s string) bool {
	return nationalIDRE.MatchString(s)
}

// Errors maps field names to human-readable messages.
type Errors map[string]string

func (e Errors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e[k])
	}
	return strings.Join(msgs, "; ")
}

// Struct validates v using its `validate` tags. It returns nil or Errors.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	out := make(Errors, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Translate(translator)
	}
	return out
}
