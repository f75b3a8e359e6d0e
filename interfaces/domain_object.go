package interfaces

import "reflect"

type Recognizable[K comparable] interface {
	Id() K
}

type Registrable interface {
	Type() reflect.Type
}

type DomainObject[K comparable] interface {
	Recognizable[K]
	Registrable
	Ghost
}
