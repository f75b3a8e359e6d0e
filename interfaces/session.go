package interfaces

import (
	"reflect"

	"github.com/google/uuid"
)

// Session is the unit of work handle passed explicitly through a load.
type Session[K comparable] interface {
	ID() uuid.UUID
	IsClosed() bool
	Lookup(t reflect.Type, id K) (DomainObject[K], bool)
	Register(obj DomainObject[K]) error
	Evict(obj DomainObject[K])
	// RequestLoad queues a ghost to be loaded on the next flush.
	RequestLoad(obj DomainObject[K]) error
}
