package validation

import (
	"strings"
	"testing"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
)

func TestValidator_Address(t *testing.T) {
	v := New()

	errs := v.Struct(&domain.Address{})
	for _, field := range []string{"firstName", "lastName", "countryId"} {
		if _, ok := errs[field]; !ok {
			t.Errorf("expected error for %s, got %v", field, errs)
		}
	}
	if got := errs["firstName"][0]; got != "First Name cannot be blank." {
		t.Errorf("unexpected message: %q", got)
	}

	valid := domain.Address{FirstName: "Ada", LastName: "Lovelace", CountryID: 1}
	if errs := v.Struct(&valid); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestValidator_MaxLength(t *testing.T) {
	v := New()

	address := domain.Address{
		FirstName: strings.Repeat("a", 256),
		LastName:  "Lovelace",
		CountryID: 1,
		ZipCode:   strings.Repeat("9", 65),
	}
	errs := v.Struct(&address)
	if got := errs["firstName"]; len(got) != 1 || got[0] != "First Name should contain at most 255 characters." {
		t.Fatalf("unexpected firstName errors: %v", got)
	}
	if _, ok := errs["zipCode"]; !ok {
		t.Fatalf("expected zipCode error, got %v", errs)
	}
}

func TestValidator_PaymentMethodType(t *testing.T) {
	v := New()

	errs := v.Struct(&domain.PaymentMethod{Name: "Card", Class: "Dummy", PaymentType: "capture"})
	if got := errs["paymentType"]; len(got) != 1 || got[0] != "Payment Type must be one of: authorize, purchase." {
		t.Fatalf("unexpected paymentType errors: %v", got)
	}
}

func TestLabel(t *testing.T) {
	tests := map[string]string{
		"firstName":     "First Name",
		"businessTaxId": "Business Tax Id",
		"api_key":       "Api Key",
		"name":          "Name",
		"":              "Value",
	}
	for in, want := range tests {
		if got := Label(in); got != want {
			t.Errorf("Label(%q) = %q, want %q", in, got, want)
		}
	}
}
