package hooks

import (
	"context"

	"github.com/fersoria001/clearly/interfaces"
	"github.com/fersoria001/clearly/metadata"
)

// EntityCallbacks calls AfterLoad on entities implementing interfaces.AfterLoader.
// Register it globally to get per entity callbacks for every type.
func EntityCallbacks[K comparable]() interfaces.AfterLoadAction[K] {
	return interfaces.AfterLoadFunc[K](func(
		ctx context.Context,
		session interfaces.Session[K],
		obj interfaces.DomainObject[K],
		_ *metadata.EntityDescriptor,
	) error {
		if loader, ok := obj.(interfaces.AfterLoader[K]); ok {
			return loader.AfterLoad(ctx, session)
		}
		return nil
	})
}

// RequireId fails the load of entities whose id is the zero value.
func RequireId[K comparable]() interfaces.AfterLoadAction[K] {
	return interfaces.AfterLoadFunc[K](func(
		_ context.Context,
		_ interfaces.Session[K],
		obj interfaces.DomainObject[K],
		descriptor *metadata.EntityDescriptor,
	) error {
		var zero K
		if obj.Id() == zero {
			return &MissingIdError{Entity: descriptor.Name}
		}
		return nil
	})
}

type MissingIdError struct {
	Entity string
}

func (e *MissingIdError) Error() string {
	return "loaded " + e.Entity + " has no identifier"
}
