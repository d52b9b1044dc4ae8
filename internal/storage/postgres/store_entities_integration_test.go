package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
)

func seedCountry(t *testing.T, lookups LookupStore) int64 {
	t.Helper()
	id, err := lookups.InsertCountry(context.Background(), domain.Country{Name: "Germany", ISO: "DE"})
	if err != nil {
		t.Fatalf("insert country: %v", err)
	}
	return id
}

func TestAddressStore_PostgresFlow(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	ctx := context.Background()
	lookups := NewLookupStore(store)
	addresses := NewAddressStore(store)

	countryID := seedCountry(t, lookups)
	stateID, err := lookups.InsertState(ctx, domain.State{CountryID: countryID, Name: "Bavaria", Abbreviation: "BY"})
	if err != nil {
		t.Fatalf("insert state: %v", err)
	}

	id, err := addresses.Insert(ctx, domain.Address{FirstName: "Ada", LastName: "Lovelace", CountryID: countryID, StateID: stateID})
	if err != nil {
		t.Fatalf("insert address: %v", err)
	}

	stored, err := addresses.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("find address: %v", err)
	}
	if stored.StateID != stateID || stored.StateName != "" {
		t.Fatalf("unexpected state fields: %+v", stored)
	}

	stored.StateID = 0
	stored.StateName = "Free text"
	if err := addresses.Update(ctx, stored); err != nil {
		t.Fatalf("update address: %v", err)
	}
	updated, _ := addresses.FindByID(ctx, id)
	if updated.StateID != 0 || updated.StateName != "Free text" {
		t.Fatalf("unexpected updated state: %+v", updated)
	}

	customerID, err := lookups.InsertCustomer(ctx, domain.Customer{Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("insert customer: %v", err)
	}
	if err := addresses.LinkToCustomer(ctx, customerID, id); err != nil {
		t.Fatalf("link address: %v", err)
	}
	linked, err := addresses.FindByCustomerID(ctx, customerID)
	if err != nil || len(linked) != 1 {
		t.Fatalf("FindByCustomerID = %d, %v", len(linked), err)
	}

	deleted, err := addresses.DeleteByID(ctx, id)
	if err != nil || !deleted {
		t.Fatalf("delete = %v, %v", deleted, err)
	}
	if _, err := addresses.FindByID(ctx, id); !errors.Is(err, domain.ErrAddressNotFound) {
		t.Fatalf("expected ErrAddressNotFound, got %v", err)
	}
	if err := addresses.Update(ctx, domain.Address{ID: id, FirstName: "x", LastName: "y", CountryID: countryID}); !errors.Is(err, domain.ErrAddressNotFound) {
		t.Fatalf("expected ErrAddressNotFound on update, got %v", err)
	}
}

func TestPaymentMethodStore_PostgresFlow(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	ctx := context.Background()
	methods := NewPaymentMethodStore(store)

	id, err := methods.Insert(ctx, domain.PaymentMethod{
		Name:            "Stripe",
		PaymentType:     domain.PaymentTypePurchase,
		Class:           "Stripe",
		FrontendEnabled: true,
		Settings:        map[string]any{"apiKey": "sk_test"},
	})
	if err != nil {
		t.Fatalf("insert payment method: %v", err)
	}
	if _, err := methods.Insert(ctx, domain.PaymentMethod{Name: "Manual", PaymentType: domain.PaymentTypeAuthorize, Class: "Manual"}); err != nil {
		t.Fatalf("insert manual method: %v", err)
	}

	stored, err := methods.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("find payment method: %v", err)
	}
	if stored.Settings["apiKey"] != "sk_test" || stored.PaymentType != domain.PaymentTypePurchase {
		t.Fatalf("unexpected payment method: %+v", stored)
	}

	enabled, err := methods.FindAllByFrontendEnabled(ctx, true)
	if err != nil || len(enabled) != 1 {
		t.Fatalf("FindAllByFrontendEnabled = %d, %v", len(enabled), err)
	}
	all, err := methods.FindAll(ctx)
	if err != nil || len(all) != 2 {
		t.Fatalf("FindAll = %d, %v", len(all), err)
	}
}

func TestOrderStore_PostgresFlow(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	ctx := context.Background()
	orders := NewOrderStore(store)
	items := NewLineItemStore(store)
	adjustments := NewAdjustmentStore(store)

	ordered := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	id, err := orders.Insert(ctx, domain.Order{
		Number:      "0123456789abcdef0123456789abcdef",
		Currency:    "EUR",
		TotalPrice:  decimal.RequireFromString("10.00005"),
		DateOrdered: &ordered,
	})
	if err != nil {
		t.Fatalf("insert order: %v", err)
	}
	if _, err := orders.Insert(ctx, domain.Order{Number: "0123456789abcdef0123456789abcdef"}); !errors.Is(err, domain.ErrOrderNumberConflict) {
		t.Fatalf("expected ErrOrderNumberConflict, got %v", err)
	}

	order, err := orders.FindByNumber(ctx, "0123456789abcdef0123456789abcdef")
	if err != nil {
		t.Fatalf("find order by number: %v", err)
	}
	if order.ID != id || order.DateOrdered == nil || !order.DateOrdered.Equal(ordered) {
		t.Fatalf("unexpected order: %+v", order)
	}
	if !order.TotalPrice.Equal(decimal.RequireFromString("10.0001")) {
		t.Fatalf("expected 4-place money, got %s", order.TotalPrice)
	}

	if _, err := items.Add(ctx, domain.LineItem{OrderID: id, Qty: 2, Price: decimal.NewFromInt(5), Weight: decimal.RequireFromString("0.5")}); err != nil {
		t.Fatalf("add line item: %v", err)
	}
	if _, err := adjustments.Add(ctx, domain.Adjustment{OrderID: id, Type: domain.AdjustmentTypeTax, Amount: decimal.NewFromInt(1)}); err != nil {
		t.Fatalf("add adjustment: %v", err)
	}

	loaded, err := items.LoadAllForOrder(ctx, id)
	if err != nil || len(loaded) != 1 || !loaded[0].Weight.Equal(decimal.RequireFromString("0.5")) {
		t.Fatalf("LoadAllForOrder = %+v, %v", loaded, err)
	}
	adjs, err := adjustments.LoadAllForOrder(ctx, id)
	if err != nil || len(adjs) != 1 || adjs[0].Type != domain.AdjustmentTypeTax {
		t.Fatalf("adjustments LoadAllForOrder = %+v, %v", adjs, err)
	}

	deleted, err := orders.DeleteByID(ctx, id)
	if err != nil || !deleted {
		t.Fatalf("delete order = %v, %v", deleted, err)
	}
	loaded, _ = items.LoadAllForOrder(ctx, id)
	if len(loaded) != 0 {
		t.Fatalf("expected cascade delete of line items, got %d", len(loaded))
	}
}

func TestLookupStore_PostgresMisses(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	ctx := context.Background()
	lookups := NewLookupStore(store)

	if _, err := lookups.CustomerByID(ctx, 1); !errors.Is(err, domain.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
	if _, err := lookups.ShippingMethodByHandle(ctx, "none"); !errors.Is(err, domain.ErrShippingMethodNotFound) {
		t.Fatalf("expected ErrShippingMethodNotFound, got %v", err)
	}
	if _, err := lookups.StateByID(ctx, 1); !errors.Is(err, domain.ErrStateNotFound) {
		t.Fatalf("expected ErrStateNotFound, got %v", err)
	}
	if _, err := lookups.CountryByID(ctx, 1); !errors.Is(err, domain.ErrCountryNotFound) {
		t.Fatalf("expected ErrCountryNotFound, got %v", err)
	}
}
