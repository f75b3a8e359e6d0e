package hooks

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/fersoria001/clearly/interfaces"
	"github.com/fersoria001/clearly/metadata"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	ErrNilSession    = errors.New("the session is nil")
	ErrSessionClosed = errors.New("the session is closed")
	ErrNilEntity     = errors.New("the loaded entity is nil")
)

// HookError reports which hook aborted the load of an entity.
type HookError struct {
	Entity string
	Id     any
	Index  int
	Err    error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("after load hook %d failed for %s %v: %v", e.Index, e.Entity, e.Id, e.Err)
}

func (e *HookError) Unwrap() error {
	return e.Err
}

// Registry holds the after load hooks of every entity type.
// Global hooks run before the hooks of a type, each group in registration order.
// The zero value is ready to use and logs to the logrus standard logger.
type Registry[K comparable] struct {
	mu     sync.RWMutex
	global []interfaces.AfterLoadAction[K]
	typed  map[reflect.Type][]interfaces.AfterLoadAction[K]
	logger logrus.FieldLogger
}

func New[K comparable](logger logrus.FieldLogger) *Registry[K] {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Registry[K]{
		typed:  make(map[reflect.Type][]interfaces.AfterLoadAction[K]),
		logger: logger,
	}
}

func (r *Registry[K]) log() logrus.FieldLogger {
	if r.logger == nil {
		return logrus.StandardLogger()
	}
	return r.logger
}

func (r *Registry[K]) Register(t reflect.Type, hooks ...interfaces.AfterLoadAction[K]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.typed == nil {
		r.typed = make(map[reflect.Type][]interfaces.AfterLoadAction[K])
	}
	r.typed[t] = append(r.typed[t], hooks...)
}

func (r *Registry[K]) RegisterFunc(t reflect.Type, f interfaces.AfterLoadFunc[K]) {
	r.Register(t, f)
}

func (r *Registry[K]) RegisterGlobal(hooks ...interfaces.AfterLoadAction[K]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.global = append(r.global, hooks...)
}

// For returns a snapshot of the hooks that run for t.
func (r *Registry[K]) For(t reflect.Type) []interfaces.AfterLoadAction[K] {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]interfaces.AfterLoadAction[K], 0, len(r.global)+len(r.typed[t]))
	result = append(result, r.global...)
	return append(result, r.typed[t]...)
}

func (r *Registry[K]) Len(t reflect.Type) int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.global) + len(r.typed[t])
}

// Fire runs every hook registered for the entity exactly once. The first
// failure stops the chain and is returned as a *HookError.
func (r *Registry[K]) Fire(
	ctx context.Context,
	session interfaces.Session[K],
	obj interfaces.DomainObject[K],
	descriptor *metadata.EntityDescriptor,
) error {
	if isNil(session) {
		return ErrNilSession
	}
	if session.IsClosed() {
		return ErrSessionClosed
	}
	if isNil(obj) {
		return ErrNilEntity
	}
	if err := descriptor.Matches(obj); err != nil {
		return err
	}
	hooks := r.For(obj.Type())
	if len(hooks) == 0 {
		return nil
	}
	log := r.log().WithFields(logrus.Fields{
		"entity":  descriptor.Name,
		"id":      obj.Id(),
		"session": session.ID(),
		"hooks":   len(hooks),
	})
	log.Debug("firing after load hooks")
	for i, hook := range hooks {
		if err := ctx.Err(); err != nil {
			return errors.Wrapf(err, "after load hooks for %s interrupted", descriptor.Name)
		}
		if err := hook.AfterLoad(ctx, session, obj, descriptor); err != nil {
			log.WithError(err).WithField("hook", i).Warn("after load hook failed")
			return &HookError{
				Entity: descriptor.Name,
				Id:     obj.Id(),
				Index:  i,
				Err:    err,
			}
		}
	}
	return nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
