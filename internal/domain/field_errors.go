package domain

import (
	"sort"
	"strings"
)

// FieldErrors накапливает сообщения валидации, сгруппированные по имени поля.
type FieldErrors map[string][]string

// Add добавляет сообщение к полю.
func (e FieldErrors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// Merge переносит все сообщения из other.
func (e FieldErrors) Merge(other FieldErrors) {
	for field, messages := range other {
		e[field] = append(e[field], messages...)
	}
}

// Fields возвращает отсортированный список полей с ошибками.
func (e FieldErrors) Fields() []string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// Messages возвращает все сообщения в порядке полей.
func (e FieldErrors) Messages() []string {
	var out []string
	for _, field := range e.Fields() {
		out = append(out, e[field]...)
	}
	return out
}

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, field := range e.Fields() {
		parts = append(parts, field+": "+strings.Join(e[field], "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Validatable хранит ошибки валидации модели между вызовами сохранения.
// Встраивается в сущности, которые проходят через протокол сохранения.
type Validatable struct {
	errs FieldErrors
}

// AddError добавляет сообщение к полю модели.
func (v *Validatable) AddError(field, message string) {
	if v.errs == nil {
		v.errs = make(FieldErrors)
	}
	v.errs.Add(field, message)
}

// AddErrors переносит набор ошибок на модель.
func (v *Validatable) AddErrors(errs FieldErrors) {
	if len(errs) == 0 {
		return
	}
	if v.errs == nil {
		v.errs = make(FieldErrors)
	}
	v.errs.Merge(errs)
}

// Errors возвращает копию накопленных ошибок. Пустая карта означает отсутствие ошибок.
func (v *Validatable) Errors() FieldErrors {
	out := make(FieldErrors, len(v.errs))
	for field, messages := range v.errs {
		out[field] = append([]string(nil), messages...)
	}
	return out
}

// HasErrors сообщает, есть ли у модели ошибки валидации.
func (v *Validatable) HasErrors() bool {
	return len(v.errs) > 0
}

// ClearErrors сбрасывает накопленные ошибки.
func (v *Validatable) ClearErrors() {
	v.errs = nil
}
