package example_data_mapper

import (
	"fmt"
	"time"

	"github.com/fersoria001/clearly/data_mapper"
	"github.com/fersoria001/clearly/example/example_models"
	"github.com/fersoria001/clearly/hooks"
	"github.com/fersoria001/clearly/interfaces"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
)

type DomainAggregateDataMapper struct {
	data_mapper.PostgreSQLDataMapper[interfaces.DomainObject[string], string]
}

func NewDomainAggregateDataMapper(
	db data_mapper.Querier,
	registry *hooks.Registry[string],
	logger logrus.FieldLogger,
	loadTimeout time.Duration,
) *DomainAggregateDataMapper {
	return &DomainAggregateDataMapper{
		PostgreSQLDataMapper: data_mapper.PostgreSQLDataMapper[interfaces.DomainObject[string], string]{
			Db:          db,
			Descriptor:  example_models.DomainAggregateDescriptor,
			Hooks:       registry,
			Logger:      logger,
			LoadTimeout: loadTimeout,
			DoLoad: func(resultSet pgx.Rows) (interfaces.DomainObject[string], error) {
				var (
					id   string
					name string
				)
				err := resultSet.Scan(&id, &name)
				if err != nil {
					return nil, err
				}
				return example_models.NewDomainAggregate(id, name), nil
			},
			DoInsert: func(obj interfaces.DomainObject[string], stmt *data_mapper.PreparedStatement) error {
				subject, ok := obj.(*example_models.DomainAggregate)
				if !ok {
					return fmt.Errorf("wrong type assertion")
				}
				stmt.Append(subject.Id())
				stmt.Append(subject.Name())
				return nil
			},
			DoUpdate: func(obj interfaces.DomainObject[string], stmt *data_mapper.PreparedStatement) error {
				subject, ok := obj.(*example_models.DomainAggregate)
				if !ok {
					return fmt.Errorf("wrong type assertion")
				}
				stmt.Append(subject.Id())
				stmt.Append(subject.Name())
				return nil
			},
			CreateGhost: example_models.CreateDomainAggregateGhost,
			DoLoadLine: func(resultSet pgx.Rows, obj interfaces.DomainObject[string]) error {
				subject, ok := obj.(*example_models.DomainAggregate)
				if !ok {
					return fmt.Errorf("wrong type assertion")
				}
				var (
					id   string
					name string
				)
				err := resultSet.Scan(&id, &name)
				if err != nil {
					return fmt.Errorf("error at doLoadLine %w\n %v", err, resultSet.FieldDescriptions())
				}
				subject.SetName(name)
				return nil
			},
		},
	}
}
