package example_registry

import (
	"fmt"
	"reflect"
	"time"

	"github.com/fersoria001/clearly/config"
	"github.com/fersoria001/clearly/data_mapper"
	"github.com/fersoria001/clearly/example/example_data_mapper"
	"github.com/fersoria001/clearly/example/example_hooks"
	"github.com/fersoria001/clearly/example/example_models"
	"github.com/fersoria001/clearly/hooks"
	"github.com/fersoria001/clearly/registry"
	"github.com/fersoria001/clearly/unit_of_work"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Catalog wires the example mappers and their hooks for one database.
type Catalog struct {
	Aggregates  *example_data_mapper.DomainAggregateDataMapper
	Invoices    *example_data_mapper.InvoiceDataMapper
	StringHooks *hooks.Registry[string]
	UUIDHooks   *hooks.Registry[uuid.UUID]
	registries  map[reflect.Type]any
	logger      logrus.FieldLogger
}

// New builds the catalog. cfg supplies the load timeout of every mapper, a
// nil cfg leaves loads unbounded.
func New(db data_mapper.Querier, logger logrus.FieldLogger, cfg *config.Config) *Catalog {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	var loadTimeout time.Duration
	if cfg != nil {
		loadTimeout = cfg.LoadTimeout
	}
	stringHooks := hooks.New[string](logger)
	stringHooks.Register(reflect.TypeOf(&example_models.DomainAggregate{}), example_hooks.CountDomainAggregateLoads())
	uuidHooks := hooks.New[uuid.UUID](logger)
	uuidHooks.RegisterGlobal(hooks.EntityCallbacks[uuid.UUID]())
	uuidHooks.Register(reflect.TypeOf(&example_models.Invoice{}), example_hooks.ComputeInvoiceTotal())

	c := &Catalog{
		Aggregates:  example_data_mapper.NewDomainAggregateDataMapper(db, stringHooks, logger, loadTimeout),
		Invoices:    example_data_mapper.NewInvoiceDataMapper(db, uuidHooks, logger, loadTimeout),
		StringHooks: stringHooks,
		UUIDHooks:   uuidHooks,
		logger:      logger,
	}
	strings := registry.New[string]()
	strings.Register(c.Aggregates)
	uuids := registry.New[uuid.UUID]()
	uuids.Register(c.Invoices)
	c.registries = map[reflect.Type]any{
		reflect.TypeOf(""):       strings,
		reflect.TypeOf(uuid.Nil): uuids,
	}
	return c
}

// Instance returns the registry for identifiers of type K.
func Instance[K comparable](c *Catalog) (*registry.Registry[K], error) {
	var zero [0]K
	t := reflect.TypeOf(zero).Elem()
	r, ok := c.registries[t]
	if !ok {
		return nil, fmt.Errorf("the registry instance for identifiers of type %s is not registered", t.Name())
	}
	instance, ok := r.(*registry.Registry[K])
	if !ok {
		return nil, fmt.Errorf("could not cast the recovered registry to the given type")
	}
	return instance, nil
}

// Session opens a unit of work whose lazy loads go through the registry for K.
func Session[K comparable](c *Catalog) (*unit_of_work.UnitOfWork[K], error) {
	reg, err := Instance[K](c)
	if err != nil {
		return nil, err
	}
	return unit_of_work.New[K](
		unit_of_work.WithLoader[K](reg),
		unit_of_work.WithLogger[K](c.logger),
	), nil
}
