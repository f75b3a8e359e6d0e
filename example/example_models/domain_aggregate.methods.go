package example_models

import "reflect"

func (a *DomainAggregate) Type() reflect.Type {
	return reflect.TypeOf(a)
}

func (a *DomainAggregate) Id() string {
	return a.id
}

// Name is empty while the aggregate is a ghost.
func (a *DomainAggregate) Name() string {
	return a.name
}

func (a *DomainAggregate) SetName(name string) {
	a.name = name
}

// Loads counts the after load callbacks received by this instance.
func (a *DomainAggregate) Loads() int {
	return a.loads
}

func (a *DomainAggregate) CountLoad() {
	a.loads++
}
