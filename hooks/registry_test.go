package hooks

import (
	"context"
	"reflect"
	"sync"
	"testing"

	"github.com/fersoria001/clearly/interfaces"
	"github.com/fersoria001/clearly/lazy_loading"
	"github.com/fersoria001/clearly/metadata"
	"github.com/fersoria001/clearly/unit_of_work"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type measurement struct {
	lazy_loading.Status
	id       string
	a        int
	b        int
	computed int
	callback int
}

func (m *measurement) Id() string {
	return m.id
}

func (m *measurement) Type() reflect.Type {
	return reflect.TypeOf(m)
}

func (m *measurement) AfterLoad(ctx context.Context, session interfaces.Session[string]) error {
	m.callback++
	return nil
}

type sensor struct {
	lazy_loading.Status
	id string
}

func (s *sensor) Id() string {
	return s.id
}

func (s *sensor) Type() reflect.Type {
	return reflect.TypeOf(s)
}

var measurementType = reflect.TypeOf(&measurement{})

func measurementDescriptor() *metadata.EntityDescriptor {
	return metadata.NewEntityDescriptor(&measurement{},
		metadata.Column{Field: "id", Column: "id"},
		metadata.Column{Field: "a", Column: "a"},
		metadata.Column{Field: "b", Column: "b"},
	)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func counting(name string, calls *[]string) interfaces.AfterLoadAction[string] {
	return interfaces.AfterLoadFunc[string](func(ctx context.Context, session interfaces.Session[string], obj interfaces.DomainObject[string], descriptor *metadata.EntityDescriptor) error {
		*calls = append(*calls, name)
		return nil
	})
}

func TestRegistry_Fire(t *testing.T) {
	ctx := context.Background()
	descriptor := measurementDescriptor()

	t.Run("DerivedField", func(t *testing.T) {
		reg := New[string](quietLogger())
		reg.RegisterFunc(measurementType, func(ctx context.Context, session interfaces.Session[string], obj interfaces.DomainObject[string], descriptor *metadata.EntityDescriptor) error {
			m := obj.(*measurement)
			m.computed = m.a + m.b
			return nil
		})
		m := &measurement{Status: lazy_loading.NewStatus(lazy_loading.LOADED), id: "m1", a: 2, b: 3}
		require.NoError(t, reg.Fire(ctx, unit_of_work.New[string](), m, descriptor))
		require.Equal(t, 5, m.computed)
	})

	t.Run("OrderAndCardinality", func(t *testing.T) {
		var calls []string
		reg := New[string](quietLogger())
		reg.Register(measurementType, counting("first", &calls), counting("second", &calls))
		reg.RegisterGlobal(counting("global", &calls))
		reg.Register(reflect.TypeOf(&sensor{}), counting("sensor", &calls))
		require.Equal(t, 3, reg.Len(measurementType))

		m := &measurement{id: "m1"}
		require.NoError(t, reg.Fire(ctx, unit_of_work.New[string](), m, descriptor))
		require.Equal(t, []string{"global", "first", "second"}, calls)
	})

	t.Run("FailureStopsChain", func(t *testing.T) {
		var calls []string
		reg := New[string](quietLogger())
		reg.Register(measurementType, RequireId[string](), counting("after", &calls))

		err := reg.Fire(ctx, unit_of_work.New[string](), &measurement{}, descriptor)
		var hookErr *HookError
		require.True(t, errors.As(err, &hookErr))
		require.Equal(t, 0, hookErr.Index)
		require.Equal(t, "measurement", hookErr.Entity)
		var missing *MissingIdError
		require.True(t, errors.As(err, &missing))
		require.Empty(t, calls)

		require.NoError(t, reg.Fire(ctx, unit_of_work.New[string](), &measurement{id: "m1"}, descriptor))
		require.Equal(t, []string{"after"}, calls)
	})

	t.Run("EntityCallbacks", func(t *testing.T) {
		reg := New[string](quietLogger())
		reg.RegisterGlobal(EntityCallbacks[string]())
		m := &measurement{id: "m1"}
		require.NoError(t, reg.Fire(ctx, unit_of_work.New[string](), m, descriptor))
		require.Equal(t, 1, m.callback)

		s := &sensor{id: "s1"}
		sensorDescriptor := metadata.NewEntityDescriptor(&sensor{}, metadata.Column{Field: "id", Column: "id"})
		require.NoError(t, reg.Fire(ctx, unit_of_work.New[string](), s, sensorDescriptor))
	})

	t.Run("Preconditions", func(t *testing.T) {
		reg := New[string](quietLogger())
		m := &measurement{id: "m1"}

		require.True(t, errors.Is(reg.Fire(ctx, nil, m, descriptor), ErrNilSession))
		var nilUow *unit_of_work.UnitOfWork[string]
		require.True(t, errors.Is(reg.Fire(ctx, nilUow, m, descriptor), ErrNilSession))

		closed := unit_of_work.New[string]()
		closed.Close()
		require.True(t, errors.Is(reg.Fire(ctx, closed, m, descriptor), ErrSessionClosed))

		require.True(t, errors.Is(reg.Fire(ctx, unit_of_work.New[string](), nil, descriptor), ErrNilEntity))
		var nilMeasurement *measurement
		require.True(t, errors.Is(reg.Fire(ctx, unit_of_work.New[string](), nilMeasurement, descriptor), ErrNilEntity))

		err := reg.Fire(ctx, unit_of_work.New[string](), &sensor{id: "s1"}, descriptor)
		require.True(t, errors.Is(err, metadata.ErrDescriptorMismatch))
	})

	t.Run("NilRegistry", func(t *testing.T) {
		var reg *Registry[string]
		require.NoError(t, reg.Fire(ctx, unit_of_work.New[string](), &measurement{id: "m1"}, descriptor))
	})

	t.Run("ZeroValueRegistry", func(t *testing.T) {
		var calls []string
		var reg Registry[string]
		reg.RegisterGlobal(EntityCallbacks[string]())
		reg.Register(measurementType, counting("typed", &calls))
		m := &measurement{id: "m1"}
		require.NoError(t, reg.Fire(ctx, unit_of_work.New[string](), m, descriptor))
		require.Equal(t, 1, m.callback)
		require.Equal(t, []string{"typed"}, calls)
		require.Equal(t, 2, reg.Len(measurementType))
	})

	t.Run("CancelledContext", func(t *testing.T) {
		var calls []string
		reg := New[string](quietLogger())
		reg.Register(measurementType, counting("never", &calls))
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		err := reg.Fire(cancelled, unit_of_work.New[string](), &measurement{id: "m1"}, descriptor)
		require.True(t, errors.Is(err, context.Canceled))
		require.Empty(t, calls)
	})
}

func TestRegistry_ConcurrentFire(t *testing.T) {
	ctx := context.Background()
	descriptor := measurementDescriptor()
	reg := New[string](quietLogger())
	reg.RegisterFunc(measurementType, func(ctx context.Context, session interfaces.Session[string], obj interfaces.DomainObject[string], descriptor *metadata.EntityDescriptor) error {
		m := obj.(*measurement)
		m.computed = m.a + m.b
		return nil
	})

	var wg sync.WaitGroup
	results := make([]*measurement, 32)
	for i := range results {
		results[i] = &measurement{id: "m", a: i, b: 1}
		wg.Add(1)
		go func(m *measurement) {
			defer wg.Done()
			if err := reg.Fire(ctx, unit_of_work.New[string](), m, descriptor); err != nil {
				t.Error(err)
			}
		}(results[i])
	}
	wg.Wait()
	for i, m := range results {
		require.Equal(t, i+1, m.computed)
	}
}
