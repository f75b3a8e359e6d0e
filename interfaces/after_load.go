package interfaces

import (
	"context"

	"github.com/fersoria001/clearly/metadata"
)

// AfterLoadAction is invoked by a data mapper once an entity has been
// populated from a result set and before it is returned to the caller.
// It runs once per physical load, never for identity map hits.
// A returned error aborts the load.
type AfterLoadAction[K comparable] interface {
	AfterLoad(ctx context.Context, session Session[K], obj DomainObject[K], descriptor *metadata.EntityDescriptor) error
}

type AfterLoadFunc[K comparable] func(ctx context.Context, session Session[K], obj DomainObject[K], descriptor *metadata.EntityDescriptor) error

func (f AfterLoadFunc[K]) AfterLoad(ctx context.Context, session Session[K], obj DomainObject[K], descriptor *metadata.EntityDescriptor) error {
	return f(ctx, session, obj, descriptor)
}

// AfterLoader is implemented by entities that react to their own load.
type AfterLoader[K comparable] interface {
	AfterLoad(ctx context.Context, session Session[K]) error
}
