package domain

import (
	"context"
	"errors"
	"strconv"
	"strings"
)

// Address хранит данные доставки или оплаты.
// Регион задаётся либо через StateID (известный регион), либо через StateName
// (произвольный текст для стран без справочника регионов).
type Address struct {
	Validatable `json:"-" validate:"-"`

	ID               int64  `json:"id" validate:"-"`
	FirstName        string `json:"firstName" validate:"required,max=255"`
	LastName         string `json:"lastName" validate:"required,max=255"`
	Address1         string `json:"address1" validate:"max=255"`
	Address2         string `json:"address2" validate:"max=255"`
	City             string `json:"city" validate:"max=255"`
	ZipCode          string `json:"zipCode" validate:"max=64"`
	Phone            string `json:"phone" validate:"max=64"`
	AlternativePhone string `json:"alternativePhone" validate:"max=64"`
	BusinessName     string `json:"businessName" validate:"max=255"`
	BusinessTaxID    string `json:"businessTaxId" validate:"max=64"`
	CountryID        int64  `json:"countryId" validate:"required"`
	StateID          int64  `json:"stateId" validate:"-"`
	StateName        string `json:"stateName" validate:"max=255"`

	// StateValue — входное поле формы: номер региона или его название.
	// Разрешается в StateID или StateName при сохранении и не хранится.
	StateValue string `json:"-" validate:"-"`
}

// EntityID возвращает идентификатор адреса.
func (a *Address) EntityID() int64 { return a.ID }

// SetEntityID проставляет идентификатор, выданный хранилищем.
func (a *Address) SetEntityID(id int64) { a.ID = id }

// FullName склеивает имя и фамилию; пробел ставится, только если заданы обе части.
func (a Address) FullName() string {
	first := strings.TrimSpace(a.FirstName)
	last := strings.TrimSpace(a.LastName)
	if first != "" && last != "" {
		return first + " " + last
	}
	return first + last
}

// ResolveState переводит StateValue в каноническое представление региона.
// Целое число становится StateID, любое другое значение становится StateName.
// Пустое значение и "0" считаются незаданными: тогда сохраняется текущее
// представление, при этом название имеет приоритет.
func (a *Address) ResolveState() {
	value := strings.TrimSpace(a.StateValue)
	if value != "" && value != "0" {
		if id, err := strconv.ParseInt(value, 10, 64); err == nil {
			a.StateID = id
			a.StateName = ""
			return
		}
		a.StateName = value
		a.StateID = 0
		return
	}
	if a.StateName != "" {
		a.StateID = 0
	}
}

// StateText возвращает название региона: свободный текст, затем справочник, иначе пустую строку.
func (a Address) StateText(ctx context.Context, geo GeoLookup) (string, error) {
	if a.StateName != "" {
		return a.StateName, nil
	}
	if a.StateID == 0 || geo == nil {
		return "", nil
	}
	state, err := geo.StateByID(ctx, a.StateID)
	if err != nil {
		if errors.Is(err, ErrStateNotFound) {
			return "", nil
		}
		return "", err
	}
	return state.Name, nil
}

// CountryText возвращает название страны или пустую строку, если страна не задана.
func (a Address) CountryText(ctx context.Context, geo GeoLookup) (string, error) {
	if a.CountryID == 0 || geo == nil {
		return "", nil
	}
	country, err := geo.CountryByID(ctx, a.CountryID)
	if err != nil {
		if errors.Is(err, ErrCountryNotFound) {
			return "", nil
		}
		return "", err
	}
	return country.Name, nil
}

// State — регион из справочника.
type State struct {
	ID           int64
	CountryID    int64
	Name         string
	Abbreviation string
}

// Country — страна из справочника.
type Country struct {
	ID   int64
	Name string
	ISO  string
}
