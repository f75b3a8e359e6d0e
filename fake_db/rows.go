// Package fake_db is an in-memory stand in for a pgx connection pool,
// used to exercise data mappers without a running database.
package fake_db

import (
	"fmt"
	"reflect"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Rows implements pgx.Rows over a fixed result set.
type Rows struct {
	columns []string
	rows    [][]any
	current int
	closed  bool
	err     error
}

func NewRows(columns []string, rows [][]any) *Rows {
	return &Rows{columns: columns, rows: rows, current: -1}
}

func (r *Rows) Close() {
	r.closed = true
}

func (r *Rows) Err() error {
	return r.err
}

func (r *Rows) CommandTag() pgconn.CommandTag {
	return pgconn.NewCommandTag(fmt.Sprintf("SELECT %d", len(r.rows)))
}

func (r *Rows) FieldDescriptions() []pgconn.FieldDescription {
	fields := make([]pgconn.FieldDescription, 0, len(r.columns))
	for _, c := range r.columns {
		fields = append(fields, pgconn.FieldDescription{Name: c})
	}
	return fields
}

func (r *Rows) Next() bool {
	if r.closed || r.err != nil {
		return false
	}
	r.current++
	if r.current >= len(r.rows) {
		r.closed = true
		return false
	}
	return true
}

func (r *Rows) row() ([]any, error) {
	if r.current < 0 || r.current >= len(r.rows) {
		return nil, fmt.Errorf("no current row")
	}
	return r.rows[r.current], nil
}

func (r *Rows) Scan(dest ...any) error {
	row, err := r.row()
	if err != nil {
		return err
	}
	if len(dest) != len(row) {
		return fmt.Errorf("number of field descriptions must equal number of destinations, got %d and %d", len(row), len(dest))
	}
	for i := range dest {
		if err := assign(dest[i], row[i]); err != nil {
			r.err = fmt.Errorf("can't scan into dest[%d]: %w", i, err)
			return r.err
		}
	}
	return nil
}

func assign(dest any, value any) error {
	target := reflect.ValueOf(dest)
	if target.Kind() != reflect.Pointer || target.IsNil() {
		return fmt.Errorf("destination %T is not a non nil pointer", dest)
	}
	elem := target.Elem()
	if value == nil {
		elem.Set(reflect.Zero(elem.Type()))
		return nil
	}
	v := reflect.ValueOf(value)
	switch {
	case v.Type().AssignableTo(elem.Type()):
		elem.Set(v)
	case v.Type().ConvertibleTo(elem.Type()):
		elem.Set(v.Convert(elem.Type()))
	default:
		return fmt.Errorf("cannot assign %T to %s", value, elem.Type())
	}
	return nil
}

func (r *Rows) Values() ([]any, error) {
	row, err := r.row()
	if err != nil {
		return nil, err
	}
	return append([]any(nil), row...), nil
}

func (r *Rows) RawValues() [][]byte {
	row, err := r.row()
	if err != nil {
		return nil
	}
	raw := make([][]byte, 0, len(row))
	for _, v := range row {
		raw = append(raw, []byte(fmt.Sprint(v)))
	}
	return raw
}

func (r *Rows) Conn() *pgx.Conn {
	return nil
}

var _ pgx.Rows = (*Rows)(nil)
