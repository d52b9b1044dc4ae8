package paymentmethod

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
	"github.com/vladislavdragonenkov/commerce/internal/gateway"
	"github.com/vladislavdragonenkov/commerce/internal/service/persist"
	"github.com/vladislavdragonenkov/commerce/internal/storage/memory"
)

func stripeMethod() *domain.PaymentMethod {
	return &domain.PaymentMethod{
		Name:            "Card",
		PaymentType:     domain.PaymentTypePurchase,
		Class:           gateway.ClassStripe,
		FrontendEnabled: true,
		Settings:        map[string]any{"apiKey": "sk_test_123", "unknown": "dropped"},
	}
}

func TestService_SaveStoresAdapterAttributes(t *testing.T) {
	store := memory.NewPaymentMethodStore()
	svc := NewService(store)
	ctx := context.Background()

	model := stripeMethod()
	ok, err := svc.Save(ctx, model)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotZero(t, model.ID)

	stored, err := svc.GetByID(ctx, model.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, map[string]any{"apiKey": "sk_test_123", "publishableKey": ""}, stored.Settings)
	assert.Equal(t, "Card", stored.Name)
	assert.Equal(t, domain.PaymentTypePurchase, stored.PaymentType)
}

func TestService_SaveAppliesGatewayDefaults(t *testing.T) {
	store := memory.NewPaymentMethodStore()
	svc := NewService(store)
	ctx := context.Background()

	model := &domain.PaymentMethod{
		Name:        "PayPal",
		PaymentType: domain.PaymentTypeAuthorize,
		Class:       gateway.ClassPayPalExpress,
		Settings: map[string]any{
			"username":  "merchant",
			"password":  "secret",
			"signature": "sig",
		},
	}
	ok, err := svc.Save(ctx, model)
	require.NoError(t, err)
	require.True(t, ok)

	stored, err := store.FindByID(ctx, model.ID)
	require.NoError(t, err)
	assert.Equal(t, true, stored.Settings["testMode"])
	assert.Equal(t, "merchant", stored.Settings["username"])
}

func TestService_SaveReportsGatewayErrorsUnderSettings(t *testing.T) {
	store := memory.NewPaymentMethodStore()
	svc := NewService(store)

	model := stripeMethod()
	model.Settings = map[string]any{}

	ok, err := svc.Save(context.Background(), model)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, model.ID)

	errs := model.Errors()
	assert.Equal(t, []string{FieldSettings}, errs.Fields())
	assert.Equal(t, []string{"Api Key cannot be blank."}, errs[FieldSettings])
}

func TestService_SaveCombinesEntityAndGatewayErrors(t *testing.T) {
	svc := NewService(memory.NewPaymentMethodStore())

	model := stripeMethod()
	model.Name = ""
	model.PaymentType = "capture"
	model.Settings = nil

	ok, err := svc.Save(context.Background(), model)
	require.NoError(t, err)
	assert.False(t, ok)

	errs := model.Errors()
	assert.Equal(t, []string{"name", "paymentType", FieldSettings}, errs.Fields())
	assert.Equal(t, []string{"Payment Type must be one of: authorize, purchase."}, errs["paymentType"])
}

func TestService_SaveUnknownClass(t *testing.T) {
	svc := NewService(memory.NewPaymentMethodStore())

	model := stripeMethod()
	model.Class = "Bitcoin"

	ok, err := svc.Save(context.Background(), model)
	require.NoError(t, err)
	assert.False(t, ok)

	errs := model.Errors()
	assert.Equal(t, []string{FieldClass}, errs.Fields())
	assert.Contains(t, errs[FieldClass][0], "Bitcoin")
}

func TestService_SaveUndecodableSettings(t *testing.T) {
	svc := NewService(memory.NewPaymentMethodStore())

	model := stripeMethod()
	model.Settings = map[string]any{"apiKey": 42}

	ok, err := svc.Save(context.Background(), model)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{FieldSettings}, model.Errors().Fields())
}

func TestService_SaveCustomRegistry(t *testing.T) {
	registry := gateway.NewRegistry()
	registry.Register("Offline", gateway.SettingsFactory("Offline", "Offline", gateway.ManualSettings{Instructions: "Pay at pickup"}, nil))
	svc := NewService(memory.NewPaymentMethodStore(), WithRegistry(registry))

	model := &domain.PaymentMethod{Name: "Offline", PaymentType: domain.PaymentTypePurchase, Class: "Offline"}
	ok, err := svc.Save(context.Background(), model)
	require.NoError(t, err)
	require.True(t, ok)

	stored, err := svc.GetByID(context.Background(), model.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pay at pickup", stored.Settings["instructions"])

	adapter, err := svc.Adapter(*stored)
	require.NoError(t, err)
	assert.Equal(t, "Offline", adapter.Class())

	_, err = svc.Adapter(domain.PaymentMethod{Class: gateway.ClassStripe})
	assert.ErrorIs(t, err, gateway.ErrUnknownGateway)
}

func TestService_SaveUnknownIDFails(t *testing.T) {
	svc := NewService(memory.NewPaymentMethodStore())

	model := stripeMethod()
	model.ID = 3

	ok, err := svc.Save(context.Background(), model)
	assert.False(t, ok)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrPaymentMethodNotFound))
}

func TestService_SaveVetoLeavesNoErrors(t *testing.T) {
	var order []string
	svc := NewService(memory.NewPaymentMethodStore(), WithHooks(
		persist.Hooks[*domain.PaymentMethod]{
			BeforeSave: func(context.Context, *domain.PaymentMethod) bool {
				order = append(order, "first")
				return false
			},
		},
		persist.Hooks[*domain.PaymentMethod]{
			BeforeSave: func(context.Context, *domain.PaymentMethod) bool {
				order = append(order, "second")
				return true
			},
		},
	))

	model := stripeMethod()
	ok, err := svc.Save(context.Background(), model)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, model.HasErrors())
	assert.Equal(t, []string{"first"}, order)
}

func TestService_ListsAndDelete(t *testing.T) {
	svc := NewService(memory.NewPaymentMethodStore())
	ctx := context.Background()

	frontend := stripeMethod()
	backOffice := &domain.PaymentMethod{
		Name:        "Invoice",
		PaymentType: domain.PaymentTypeAuthorize,
		Class:       gateway.ClassManual,
	}
	for _, m := range []*domain.PaymentMethod{frontend, backOffice} {
		ok, err := svc.Save(ctx, m)
		require.NoError(t, err)
		require.True(t, ok)
	}

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	enabled, err := svc.ListFrontendEnabled(ctx)
	require.NoError(t, err)
	require.Len(t, enabled, 1)
	assert.Equal(t, frontend.ID, enabled[0].ID)

	deleted, err := svc.DeleteByID(ctx, frontend.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	missing, err := svc.GetByID(ctx, frontend.ID)
	require.NoError(t, err)
	assert.Nil(t, missing)
}
