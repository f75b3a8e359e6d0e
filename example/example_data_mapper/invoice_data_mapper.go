package example_data_mapper

import (
	"fmt"
	"time"

	"github.com/fersoria001/clearly/data_mapper"
	"github.com/fersoria001/clearly/example/example_models"
	"github.com/fersoria001/clearly/hooks"
	"github.com/fersoria001/clearly/interfaces"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type InvoiceDataMapper struct {
	data_mapper.PostgreSQLDataMapper[interfaces.DomainObject[uuid.UUID], uuid.UUID]
}

func NewInvoiceDataMapper(
	db data_mapper.Querier,
	registry *hooks.Registry[uuid.UUID],
	logger logrus.FieldLogger,
	loadTimeout time.Duration,
) *InvoiceDataMapper {
	return &InvoiceDataMapper{
		PostgreSQLDataMapper: data_mapper.PostgreSQLDataMapper[interfaces.DomainObject[uuid.UUID], uuid.UUID]{
			Db:          db,
			Descriptor:  example_models.InvoiceDescriptor,
			Hooks:       registry,
			Logger:      logger,
			LoadTimeout: loadTimeout,
			DoLoad: func(resultSet pgx.Rows) (interfaces.DomainObject[uuid.UUID], error) {
				var (
					id       uuid.UUID
					subtotal decimal.Decimal
					tax      decimal.Decimal
				)
				err := resultSet.Scan(&id, &subtotal, &tax)
				if err != nil {
					return nil, err
				}
				return example_models.NewInvoice(id, subtotal, tax), nil
			},
			DoInsert: func(obj interfaces.DomainObject[uuid.UUID], stmt *data_mapper.PreparedStatement) error {
				subject, ok := obj.(*example_models.Invoice)
				if !ok {
					return fmt.Errorf("wrong type assertion")
				}
				stmt.Append(subject.Id())
				stmt.Append(subject.Subtotal())
				stmt.Append(subject.Tax())
				return nil
			},
			DoUpdate: func(obj interfaces.DomainObject[uuid.UUID], stmt *data_mapper.PreparedStatement) error {
				subject, ok := obj.(*example_models.Invoice)
				if !ok {
					return fmt.Errorf("wrong type assertion")
				}
				stmt.Append(subject.Id())
				stmt.Append(subject.Subtotal())
				stmt.Append(subject.Tax())
				return nil
			},
		},
	}
}
