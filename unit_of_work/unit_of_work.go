package unit_of_work

import (
	"context"
	"reflect"
	"sync"

	mapset "github.com/deckarep/golang-set"
	"github.com/fersoria001/clearly/interfaces"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	ErrClosed           = errors.New("the unit of work is closed")
	ErrIdentityConflict = errors.New("another instance with the same id is already registered")
	ErrNoLoader         = errors.New("the unit of work has no loader for lazy loads")
)

type Loader[K comparable] interfaces.LazyLoading[interfaces.DomainObject[K], K]

type Option[K comparable] func(*UnitOfWork[K])

func WithLogger[K comparable](logger logrus.FieldLogger) Option[K] {
	return func(u *UnitOfWork[K]) {
		u.logger = logger
	}
}

func WithLoader[K comparable](loader Loader[K]) Option[K] {
	return func(u *UnitOfWork[K]) {
		u.loader = loader
	}
}

type key[K comparable] struct {
	t  reflect.Type
	id K
}

// UnitOfWork tracks the objects loaded during one business transaction.
// It owns the identity map and the queue of pending lazy loads.
type UnitOfWork[K comparable] struct {
	id      uuid.UUID
	mu      sync.Mutex
	closed  bool
	loaded  map[reflect.Type]map[K]interfaces.DomainObject[K]
	pending []interfaces.DomainObject[K]
	queued  mapset.Set
	loader  Loader[K]
	logger  logrus.FieldLogger
}

func New[K comparable](opts ...Option[K]) *UnitOfWork[K] {
	u := &UnitOfWork[K]{
		id:     uuid.New(),
		loaded: make(map[reflect.Type]map[K]interfaces.DomainObject[K]),
		queued: mapset.NewSet(),
		logger: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(u)
	}
	u.logger = u.logger.WithField("session", u.id)
	return u
}

func (u *UnitOfWork[K]) ID() uuid.UUID {
	return u.id
}

func (u *UnitOfWork[K]) IsClosed() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.closed
}

func (u *UnitOfWork[K]) Lookup(t reflect.Type, id K) (interfaces.DomainObject[K], bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return nil, false
	}
	obj, ok := u.loaded[t][id]
	return obj, ok
}

func (u *UnitOfWork[K]) Register(obj interfaces.DomainObject[K]) error {
	if obj == nil {
		return errors.New("cannot register a nil object")
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return ErrClosed
	}
	byId, ok := u.loaded[obj.Type()]
	if !ok {
		byId = make(map[K]interfaces.DomainObject[K])
		u.loaded[obj.Type()] = byId
	}
	if prev, ok := byId[obj.Id()]; ok && prev != obj {
		return errors.Wrapf(ErrIdentityConflict, "%v %v", obj.Type(), obj.Id())
	}
	byId[obj.Id()] = obj
	return nil
}

func (u *UnitOfWork[K]) Evict(obj interfaces.DomainObject[K]) {
	if obj == nil {
		return
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if prev, ok := u.loaded[obj.Type()][obj.Id()]; ok && prev == obj {
		delete(u.loaded[obj.Type()], obj.Id())
	}
}

// Len is the number of objects of type t in the identity map.
func (u *UnitOfWork[K]) Len(t reflect.Type) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.loaded[t])
}

// RequestLoad queues a ghost for the next Flush. Loaded objects and objects
// already queued are ignored.
func (u *UnitOfWork[K]) RequestLoad(obj interfaces.DomainObject[K]) error {
	if obj == nil {
		return errors.New("cannot request the load of a nil object")
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return ErrClosed
	}
	if !obj.IsGhost() {
		return nil
	}
	if !u.queued.Add(key[K]{t: obj.Type(), id: obj.Id()}) {
		return nil
	}
	u.pending = append(u.pending, obj)
	return nil
}

func (u *UnitOfWork[K]) Pending() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.pending)
}

// Flush loads every queued ghost in request order. Loads requested while
// flushing are processed by the same call.
func (u *UnitOfWork[K]) Flush(ctx context.Context) error {
	if u.loader == nil {
		return ErrNoLoader
	}
	flushed := 0
	for {
		obj, err := u.next()
		if err != nil {
			return err
		}
		if obj == nil {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !obj.IsGhost() {
			continue
		}
		if err := u.loader.Load(ctx, u, obj); err != nil {
			return errors.Wrapf(err, "lazy load of %v %v", obj.Type(), obj.Id())
		}
		flushed++
	}
	u.logger.WithField("loaded", flushed).Debug("flushed lazy loads")
	return nil
}

func (u *UnitOfWork[K]) next() (interfaces.DomainObject[K], error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return nil, ErrClosed
	}
	if len(u.pending) == 0 {
		return nil, nil
	}
	obj := u.pending[0]
	u.pending = u.pending[1:]
	u.queued.Remove(key[K]{t: obj.Type(), id: obj.Id()})
	return obj, nil
}

// Close drops the identity map and the pending loads. Closing twice is a no-op.
func (u *UnitOfWork[K]) Close() {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return
	}
	u.closed = true
	u.loaded = nil
	u.pending = nil
	u.queued.Clear()
	u.logger.Debug("unit of work closed")
}

var _ interfaces.Session[string] = (*UnitOfWork[string])(nil)
