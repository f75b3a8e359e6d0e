package example_tests

import (
	"context"
	"testing"
	"time"

	"github.com/fersoria001/clearly/config"
	"github.com/fersoria001/clearly/example/example_models"
	"github.com/fersoria001/clearly/example/example_registry"
	"github.com/fersoria001/clearly/fake_db"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Mapper(t *testing.T) {
	catalog := example_registry.New(fake_db.New(), quietLogger(), nil)
	reg, err := example_registry.Instance[string](catalog)
	if err != nil {
		t.Fatal(err)
	}
	obj := example_models.NewDomainAggregate("1", "name")
	_, err = reg.Mapper(obj.Type())
	if err != nil {
		t.Fatal(err)
	}
	_, err = example_registry.Instance[int](catalog)
	require.Error(t, err)
}

var invoiceTestData = map[string]struct {
	Id       uuid.UUID
	Subtotal string
	Tax      string
	Total    string
}{
	"withTax": {
		Id:       uuid.MustParse("6f1c2d4e-8a9b-4c3d-9e8f-0a1b2c3d4e5f"),
		Subtotal: "100.50",
		Tax:      "21.10",
		Total:    "121.60",
	},
	"noTax": {
		Id:       uuid.MustParse("0b7e6a52-1f3c-4d1e-8b2a-9c8d7e6f5a4b"),
		Subtotal: "2",
		Tax:      "3",
		Total:    "5",
	},
}

func TestInvoiceTotal(t *testing.T) {
	ctx := context.Background()
	db := fake_db.New()
	table := db.Mount(example_models.InvoiceDescriptor)
	for _, v := range invoiceTestData {
		table.Put(v.Id, decimal.RequireFromString(v.Subtotal), decimal.RequireFromString(v.Tax))
	}
	table.Put(uuid.Nil, decimal.NewFromInt(1), decimal.NewFromInt(1))
	catalog := example_registry.New(db, quietLogger(), &config.Config{LoadTimeout: time.Minute})

	t.Run("DerivedTotal", func(t *testing.T) {
		uow, err := example_registry.Session[uuid.UUID](catalog)
		require.NoError(t, err)
		for _, v := range invoiceTestData {
			obj, err := catalog.Invoices.Find(ctx, uow, v.Id)
			require.NoError(t, err)
			invoice := obj.(*example_models.Invoice)
			if !invoice.Total().Equal(decimal.RequireFromString(v.Total)) {
				t.Fatalf("expected total %s got %s", v.Total, invoice.Total())
			}
			last, ok := db.LastCall()
			require.True(t, ok)
			require.True(t, last.Deadline)
		}
		require.Equal(t, time.Minute, catalog.Invoices.LoadTimeout)
		require.Equal(t, time.Minute, catalog.Aggregates.LoadTimeout)
	})

	t.Run("NilIdentifierFails", func(t *testing.T) {
		uow, err := example_registry.Session[uuid.UUID](catalog)
		require.NoError(t, err)
		_, err = catalog.Invoices.Find(ctx, uow, uuid.Nil)
		require.Error(t, err)
		_, ok := uow.Lookup(example_models.InvoiceDescriptor.Type, uuid.Nil)
		require.False(t, ok)
	})

	t.Run("InsertDoesNotDerive", func(t *testing.T) {
		uow, err := example_registry.Session[uuid.UUID](catalog)
		require.NoError(t, err)
		invoice := example_models.NewInvoice(uuid.New(), decimal.NewFromInt(10), decimal.NewFromInt(1))
		_, err = catalog.Invoices.Insert(ctx, uow, invoice)
		require.NoError(t, err)
		require.True(t, invoice.Total().IsZero())

		found, err := catalog.Invoices.Find(ctx, uow, invoice.Id())
		require.NoError(t, err)
		require.Same(t, invoice, found)
	})
}
