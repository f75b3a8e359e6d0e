package models

import (
	"reflect"

	"github.com/fersoria001/clearly/lazy_loading"
)

type Customer struct {
	lazy_loading.Status
	id    string
	email string
}

func (c *Customer) Id() string {
	return c.id
}

func (c *Customer) Email() string {
	return c.email
}

func (c *Customer) Type() reflect.Type {
	return reflect.TypeOf(c)
}

type Tag struct {
	label string
}

func (t Tag) Label() string {
	return t.label
}

type Status int
