package example_hooks

import (
	"context"
	"fmt"

	"github.com/fersoria001/clearly/example/example_models"
	"github.com/fersoria001/clearly/interfaces"
	"github.com/fersoria001/clearly/metadata"
	"github.com/google/uuid"
)

// ComputeInvoiceTotal derives total = subtotal + tax.
func ComputeInvoiceTotal() interfaces.AfterLoadAction[uuid.UUID] {
	return interfaces.AfterLoadFunc[uuid.UUID](func(
		_ context.Context,
		_ interfaces.Session[uuid.UUID],
		obj interfaces.DomainObject[uuid.UUID],
		_ *metadata.EntityDescriptor,
	) error {
		invoice, ok := obj.(*example_models.Invoice)
		if !ok {
			return fmt.Errorf("wrong type assertion %T is not an invoice", obj)
		}
		invoice.SetTotal(invoice.Subtotal().Add(invoice.Tax()))
		return nil
	})
}

func CountDomainAggregateLoads() interfaces.AfterLoadAction[string] {
	return interfaces.AfterLoadFunc[string](func(
		_ context.Context,
		_ interfaces.Session[string],
		obj interfaces.DomainObject[string],
		_ *metadata.EntityDescriptor,
	) error {
		aggregate, ok := obj.(*example_models.DomainAggregate)
		if !ok {
			return fmt.Errorf("wrong type assertion %T is not a domain aggregate", obj)
		}
		aggregate.CountLoad()
		return nil
	})
}
