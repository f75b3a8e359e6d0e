package registry

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/fersoria001/clearly/data_mapper"
	"github.com/fersoria001/clearly/interfaces"
)

// Registry finds the data mapper of a domain type. It is the loader used by
// a unit of work to resolve its lazy load requests.
type Registry[K comparable] struct {
	mu sync.RWMutex
	m  map[reflect.Type]interfaces.Registrable
}

func New[K comparable]() *Registry[K] {
	return &Registry[K]{
		m: make(map[reflect.Type]interfaces.Registrable, 0),
	}
}

// Register keeps the first mapper registered for a type.
func (r *Registry[K]) Register(obj interfaces.Registrable) {
	if r.m == nil {
		panic("Registry is nil, it must be initialized first")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.m[obj.Type()]; ok {
		return
	}
	r.m[obj.Type()] = obj
}

func (r *Registry[K]) Mapper(typeName reflect.Type) (data_mapper.DataMapper[interfaces.DomainObject[K], K], error) {
	r.mu.RLock()
	v, ok := r.m[typeName]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("the mapper for type %v is not in the registry", typeName)
	}
	typeOfConcreteDataMapper := reflect.TypeOf(v)
	typeOfDataMapperInterface := reflect.TypeOf((*data_mapper.DataMapper[interfaces.DomainObject[K], K])(nil)).Elem()
	if !typeOfConcreteDataMapper.Implements(typeOfDataMapperInterface) {
		return nil, fmt.Errorf("registered type %s does not implement DataMapper in Mapper()", typeOfConcreteDataMapper)
	}
	mapper, ok := v.(data_mapper.DataMapper[interfaces.DomainObject[K], K])
	if !ok {
		return nil, fmt.Errorf("type %s cant be casted to the data mapper interface", typeOfConcreteDataMapper)
	}
	return mapper, nil
}

func (r *Registry[K]) Types() []reflect.Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]reflect.Type, 0, len(r.m))
	for t := range r.m {
		types = append(types, t)
	}
	return types
}

func (r *Registry[K]) Load(ctx context.Context, session interfaces.Session[K], obj interfaces.DomainObject[K]) error {
	mapper, err := r.Mapper(obj.Type())
	if err != nil {
		return err
	}
	return mapper.Load(ctx, session, obj)
}
