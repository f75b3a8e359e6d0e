package example_models

import (
	"github.com/fersoria001/clearly/interfaces"
	"github.com/fersoria001/clearly/lazy_loading"
	"github.com/fersoria001/clearly/metadata"
)

type DomainAggregate struct {
	lazy_loading.Status
	id    string
	name  string
	loads int
}

func NewDomainAggregate(id, name string) *DomainAggregate {
	return &DomainAggregate{
		Status: lazy_loading.NewStatus(lazy_loading.LOADED),
		id:     id,
		name:   name,
	}
}

func CreateDomainAggregateGhost(id string) interfaces.DomainObject[string] {
	return &DomainAggregate{
		Status: lazy_loading.NewStatus(lazy_loading.GHOST),
		id:     id,
	}
}

var DomainAggregateDescriptor = metadata.NewEntityDescriptor(&DomainAggregate{},
	metadata.Column{Field: "id", Column: "id"},
	metadata.Column{Field: "name", Column: "name", Update: true},
).WithLazy(true)
