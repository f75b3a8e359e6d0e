package example_tests

import (
	"context"
	"reflect"
	"testing"

	"github.com/fersoria001/clearly/example/example_models"
	"github.com/fersoria001/clearly/example/example_registry"
	"github.com/fersoria001/clearly/fake_db"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

var domainAggregateTestLazyData = map[string]struct {
	Id   string
	Name string
}{
	"valid": {
		Id:   "stringIdValue",
		Name: "nameValue",
	},
	"valid1": {
		Id:   "stringIdValue1",
		Name: "nameValue",
	},
}

func TestDomainAggregateDataMapperLazy(t *testing.T) {
	ctx := context.Background()
	db := fake_db.New()
	db.Mount(example_models.DomainAggregateDescriptor)
	catalog := example_registry.New(db, quietLogger(), nil)
	dataMapper := catalog.Aggregates

	t.Run("Insert", func(t *testing.T) {
		uow, err := example_registry.Session[string](catalog)
		require.NoError(t, err)
		for _, v := range domainAggregateTestLazyData {
			aggregate := example_models.NewDomainAggregate(v.Id, v.Name)
			id, err := dataMapper.Insert(ctx, uow, aggregate)
			if err != nil {
				t.Fatal(err)
			}
			if id != aggregate.Id() {
				t.Fatalf("expected id %s got %s", aggregate.Id(), id)
			}
		}
	})

	t.Run("Find", func(t *testing.T) {
		uow, err := example_registry.Session[string](catalog)
		require.NoError(t, err)
		ghosts := make([]*example_models.DomainAggregate, 0)
		for _, v := range domainAggregateTestLazyData {
			dbAggregate, err := dataMapper.Find(ctx, uow, v.Id)
			if err != nil {
				t.Fatal(err)
			}
			aggregate, ok := dbAggregate.(*example_models.DomainAggregate)
			if !ok {
				t.Fatalf("wrong type assertion %v is %v\n", aggregate, reflect.TypeOf(dbAggregate))
			}
			if !aggregate.IsGhost() {
				t.Fatalf("expected a ghost for %s\n", v.Id)
			}
			require.NoError(t, uow.RequestLoad(aggregate))
			ghosts = append(ghosts, aggregate)
		}
		require.NoError(t, uow.Flush(ctx))
		for _, aggregate := range ghosts {
			v := domainAggregateTestLazyData["valid"]
			if aggregate.Id() == domainAggregateTestLazyData["valid1"].Id {
				v = domainAggregateTestLazyData["valid1"]
			}
			if aggregate.Name() != v.Name {
				t.Fatalf("expected name %s, got %s\n", v.Name, aggregate.Name())
			}
			if aggregate.Loads() != 1 {
				t.Fatalf("expected one after load callback, got %d\n", aggregate.Loads())
			}
		}
	})

	t.Run("Update", func(t *testing.T) {
		for _, v := range domainAggregateTestLazyData {
			uow, err := example_registry.Session[string](catalog)
			require.NoError(t, err)
			dbAggregate, err := dataMapper.Find(ctx, uow, v.Id)
			if err != nil {
				t.Fatal(err)
			}
			require.NoError(t, dataMapper.Load(ctx, uow, dbAggregate))
			aggregate := dbAggregate.(*example_models.DomainAggregate)
			newName := "newRandomName"
			aggregate.SetName(newName)
			err = dataMapper.Update(ctx, uow, aggregate)
			if err != nil {
				t.Fatal(err)
			}
			other, err := example_registry.Session[string](catalog)
			require.NoError(t, err)
			dbAggregate, err = dataMapper.Find(ctx, other, v.Id)
			if err != nil {
				t.Fatal(err)
			}
			require.NoError(t, other.RequestLoad(dbAggregate))
			require.NoError(t, other.Flush(ctx))
			aggregate = dbAggregate.(*example_models.DomainAggregate)
			if aggregate.Name() != newName {
				t.Fatalf("expected %s got %s", newName, aggregate.Name())
			}
		}
	})

	t.Run("Remove", func(t *testing.T) {
		uow, err := example_registry.Session[string](catalog)
		require.NoError(t, err)
		for _, v := range domainAggregateTestLazyData {
			err := dataMapper.Remove(ctx, uow, v.Id)
			if err != nil {
				t.Fatal(err)
			}
		}
	})
}
