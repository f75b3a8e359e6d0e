package metadata

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	mapset "github.com/deckarep/golang-set"
	"github.com/jinzhu/inflection"
	"github.com/pkg/errors"
)

var ErrDescriptorMismatch = errors.New("descriptor does not match the entity type")

// Column maps a struct field to a table column.
type Column struct {
	Field  string `json:"name"`
	Column string `json:"column"`
	Update bool   `json:"update"`
}

// EntityDescriptor describes how an entity type maps to its table.
// A descriptor is read only once it has been handed to a data mapper.
type EntityDescriptor struct {
	Name     string
	Type     reflect.Type
	Table    string
	IdColumn string
	Columns  []Column
	Lazy     bool
}

// NewEntityDescriptor builds a descriptor bound to the runtime type of obj.
// The table defaults to the plural snake case of the type name.
func NewEntityDescriptor(obj any, columns ...Column) *EntityDescriptor {
	t := reflect.TypeOf(obj)
	name := baseType(t).Name()
	return &EntityDescriptor{
		Name:     name,
		Type:     t,
		Table:    TableName(name),
		IdColumn: "id",
		Columns:  columns,
	}
}

func baseType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

var matchFirstCap = regexp.MustCompile("(.)([A-Z][a-z]+)")
var matchAllCap = regexp.MustCompile("([a-z0-9])([A-Z])")

func toSnakeCase(str string) string {
	snake := matchFirstCap.ReplaceAllString(str, "${1}_${2}")
	snake = matchAllCap.ReplaceAllString(snake, "${1}_${2}")
	return strings.ToLower(snake)
}

// TableName returns the default table for a type name, DomainAggregate -> domain_aggregates.
func TableName(typeName string) string {
	return inflection.Plural(toSnakeCase(typeName))
}

// Bind returns a copy of d bound to the runtime type of obj.
func (d *EntityDescriptor) Bind(obj any) (*EntityDescriptor, error) {
	t := reflect.TypeOf(obj)
	if t == nil {
		return nil, errors.New("cannot bind a descriptor to a nil object")
	}
	if name := baseType(t).Name(); d.Name != "" && name != d.Name {
		return nil, errors.Wrapf(ErrDescriptorMismatch, "descriptor %s cannot be bound to %s", d.Name, name)
	}
	bound := *d
	bound.Type = t
	bound.Columns = append([]Column(nil), d.Columns...)
	if bound.Name == "" {
		bound.Name = baseType(t).Name()
	}
	if bound.Table == "" {
		bound.Table = TableName(bound.Name)
	}
	return &bound, nil
}

func (d *EntityDescriptor) Validate() error {
	if d.Name == "" {
		return errors.Errorf("the descriptor name is required")
	}
	if d.Table == "" {
		return errors.Errorf("the descriptor %s table name is required", d.Name)
	}
	if d.IdColumn == "" {
		return errors.Errorf("the descriptor %s id column is required", d.Name)
	}
	if len(d.Columns) < 1 {
		return errors.Errorf("the descriptor %s columns are required", d.Name)
	}
	seen := mapset.NewSet()
	for _, c := range d.Columns {
		if c.Field == "" || c.Column == "" {
			return errors.Errorf("the descriptor %s has a column without field or column name", d.Name)
		}
		if !seen.Add(c.Column) {
			return errors.Errorf("the descriptor %s maps column %s more than once", d.Name, c.Column)
		}
	}
	if !seen.Contains(d.IdColumn) {
		return errors.Errorf("the descriptor %s id column %s is not one of its columns", d.Name, d.IdColumn)
	}
	return nil
}

// Matches reports an error unless obj has exactly the descriptor's runtime type.
func (d *EntityDescriptor) Matches(obj any) error {
	if d == nil {
		return errors.Wrap(ErrDescriptorMismatch, "nil descriptor")
	}
	if d.Type == nil {
		return errors.Wrapf(ErrDescriptorMismatch, "descriptor %s is not bound to a type", d.Name)
	}
	if t := reflect.TypeOf(obj); t != d.Type {
		return errors.Wrapf(ErrDescriptorMismatch, "descriptor %s describes %v, got %v", d.Name, d.Type, t)
	}
	return nil
}

// WithLazy returns a copy of d whose mappers hand out ghosts on find.
func (d *EntityDescriptor) WithLazy(lazy bool) *EntityDescriptor {
	c := *d
	c.Columns = append([]Column(nil), d.Columns...)
	c.Lazy = lazy
	return &c
}

// IdIndex is the position of the id column in the select list.
func (d *EntityDescriptor) IdIndex() int {
	for i, c := range d.Columns {
		if c.Column == d.IdColumn {
			return i
		}
	}
	return -1
}

func (d *EntityDescriptor) ColumnNames() []string {
	columns := make([]string, 0, len(d.Columns))
	for i := range d.Columns {
		columns = append(columns, d.Columns[i].Column)
	}
	return columns
}

func (d *EntityDescriptor) SelectStatement() string {
	return fmt.Sprintf(`SELECT %s FROM %s`, strings.Join(d.ColumnNames(), ", "), d.Table)
}

func (d *EntityDescriptor) FindStatement() string {
	return fmt.Sprintf(`%s WHERE %s = $1;`, d.SelectStatement(), d.IdColumn)
}

func (d *EntityDescriptor) InsertStatement() string {
	params := make([]string, 0, len(d.Columns))
	for i := range d.Columns {
		params = append(params, fmt.Sprintf("$%d", i+1))
	}
	return fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s);`,
		d.Table, strings.Join(d.ColumnNames(), ", "), strings.Join(params, ", "),
	)
}

// UpdateStatement expects the id as $1 followed by the updatable columns in order.
func (d *EntityDescriptor) UpdateStatement() string {
	columns := make([]string, 0, len(d.Columns))
	for _, c := range d.Columns {
		if c.Update && c.Column != d.IdColumn {
			columns = append(columns, fmt.Sprintf("%s = $%d", c.Column, len(columns)+2))
		}
	}
	return fmt.Sprintf(`UPDATE %s SET %s WHERE %s = $1;`,
		d.Table, strings.Join(columns, ", "), d.IdColumn)
}

func (d *EntityDescriptor) RemoveStatement() string {
	return fmt.Sprintf(`DELETE FROM %s WHERE %s = $1;`, d.Table, d.IdColumn)
}

func (d *EntityDescriptor) String() string {
	return fmt.Sprintf("%s(%s)", d.Name, d.Table)
}
