package example_models

import (
	"context"
	"fmt"
	"reflect"

	"github.com/fersoria001/clearly/interfaces"
	"github.com/fersoria001/clearly/lazy_loading"
	"github.com/fersoria001/clearly/metadata"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice keeps its total out of the table, it is derived after each load.
type Invoice struct {
	lazy_loading.Status
	id       uuid.UUID
	subtotal decimal.Decimal
	tax      decimal.Decimal
	total    decimal.Decimal
}

func NewInvoice(id uuid.UUID, subtotal, tax decimal.Decimal) *Invoice {
	return &Invoice{
		Status:   lazy_loading.NewStatus(lazy_loading.LOADED),
		id:       id,
		subtotal: subtotal,
		tax:      tax,
	}
}

var InvoiceDescriptor = metadata.NewEntityDescriptor(&Invoice{},
	metadata.Column{Field: "id", Column: "id"},
	metadata.Column{Field: "subtotal", Column: "subtotal", Update: true},
	metadata.Column{Field: "tax", Column: "tax", Update: true},
)

func (i *Invoice) Type() reflect.Type {
	return reflect.TypeOf(i)
}

func (i *Invoice) Id() uuid.UUID {
	return i.id
}

func (i *Invoice) Subtotal() decimal.Decimal {
	return i.subtotal
}

func (i *Invoice) Tax() decimal.Decimal {
	return i.tax
}

func (i *Invoice) Total() decimal.Decimal {
	return i.total
}

func (i *Invoice) SetTotal(total decimal.Decimal) {
	i.total = total
}

// AfterLoad rejects invoices stored without an identifier.
func (i *Invoice) AfterLoad(ctx context.Context, session interfaces.Session[uuid.UUID]) error {
	if i.id == uuid.Nil {
		return fmt.Errorf("invoice loaded without an identifier")
	}
	return nil
}
