// Package validation переводит ошибки go-playground/validator в ошибки полей сущностей.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
)

// Validator проверяет структуры по тегам validate и называет поля по тегу json.
// Безопасен для конкурентного использования.
type Validator struct {
	validate *validator.Validate
}

// New создаёт валидатор с именованием полей по json-тегам.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Struct проверяет структуру и возвращает ошибки полей. Пустой результат означает, что ошибок нет.
func (v *Validator) Struct(s any) domain.FieldErrors {
	errs := make(domain.FieldErrors)

	err := v.validate.Struct(s)
	if err == nil {
		return errs
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		errs.Add("", err.Error())
		return errs
	}

	for _, fe := range validationErrs {
		errs.Add(fe.Field(), Message(fe.Field(), fe.Tag(), fe.Param()))
	}
	return errs
}

// Message формирует текст ошибки для поля и нарушенного правила.
func Message(field, tag, param string) string {
	label := Label(field)
	switch tag {
	case "required":
		return fmt.Sprintf("%s cannot be blank.", label)
	case "max":
		return fmt.Sprintf("%s should contain at most %s characters.", label, param)
	case "min":
		return fmt.Sprintf("%s should contain at least %s characters.", label, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", label, strings.Join(strings.Fields(param), ", "))
	case "email":
		return fmt.Sprintf("%s is not a valid email address.", label)
	case "url":
		return fmt.Sprintf("%s is not a valid URL.", label)
	default:
		return fmt.Sprintf("%s is invalid.", label)
	}
}

// Label превращает имя поля в подпись: "businessTaxId" -> "Business Tax Id".
func Label(field string) string {
	if field == "" {
		return "Value"
	}
	var b strings.Builder
	runes := []rune(field)
	for i, r := range runes {
		switch {
		case i == 0:
			b.WriteRune(unicode.ToUpper(r))
		case r == '_' || r == '-':
			b.WriteRune(' ')
		case unicode.IsUpper(r) && !unicode.IsUpper(runes[i-1]) && runes[i-1] != '_' && runes[i-1] != '-':
			b.WriteRune(' ')
			b.WriteRune(r)
		case runes[i-1] == '_' || runes[i-1] == '-':
			b.WriteRune(unicode.ToUpper(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
