package helper

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"usuarios-api/models"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"gopkg.in/go-playground/validator.v9"
	en_translations "gopkg.in/go-playground/validator.v9/translations/en"
)

// Validator checks request structs and reports every failing field with a
// readable English message, keyed by the JSON field name.
type Validator struct {
	Validate   *validator.Validate
	Translator ut.Translator
}

func NewValidator() (*Validator, error) {
	locale := en.New()
	uni := ut.New(locale, locale)
	trans, found := uni.GetTranslator("en")
	if !found {
		return nil, errors.New("validator: en translator not found")
	}

	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)
	if err := en_translations.RegisterDefaultTranslations(v, trans); err != nil {
		return nil, fmt.Errorf("validator: register translations: %w", err)
	}
	if err := v.RegisterValidation("bytemax", byteMax); err != nil {
		return nil, fmt.Errorf("validator: register bytemax: %w", err)
	}
	err := v.RegisterTranslation("bytemax", trans,
		func(t ut.Translator) error {
			return t.Add("bytemax", "{0} must be at most {1} bytes long", true)
		},
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T("bytemax", fe.Field(), fe.Param())
			return msg
		},
	)
	if err != nil {
		return nil, fmt.Errorf("validator: register bytemax translation: %w", err)
	}

	return &Validator{Validate: v, Translator: trans}, nil
}

// byteMax bounds the encoded length of a string, as opposed to max which
// counts runes. bcrypt refuses input longer than 72 bytes.
func byteMax(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}
	return len(field.String()) <= limit
}

// Struct returns nil, a models.ErrorValidation listing all failing fields,
// or a models.ErrorInternalServer when s cannot be validated at all.
func (v *Validator) Struct(s interface{}) error {
	err := v.Validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return models.ErrorInternalServer{Err: err}
	}
	return v.fieldErrors(validationErrors)
}

func (v *Validator) fieldErrors(validationErrors validator.ValidationErrors) models.ErrorValidation {
	fields := map[string][]string{}
	for _, fe := range validationErrors {
		key := fe.Field()
		fields[key] = append(fields[key], fe.Translate(v.Translator))
	}
	return models.ErrorValidation{Fields: fields}
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return Underscore(fld.Name)
	}
	return name
}

// Underscore converts a Go identifier to snake_case.
func Underscore(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && (runes[i-1] < 'A' || runes[i-1] > 'Z') {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
