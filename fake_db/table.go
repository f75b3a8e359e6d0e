package fake_db

import (
	"fmt"
	"sync"

	"github.com/fersoria001/clearly/metadata"
)

// Table stores rows for one descriptor and serves its find, select, insert,
// update and remove statements.
type Table struct {
	mu         sync.Mutex
	descriptor *metadata.EntityDescriptor
	ids        []any
	rows       map[any][]any
}

func (db *DB) Mount(descriptor *metadata.EntityDescriptor) *Table {
	t := &Table{
		descriptor: descriptor,
		rows:       make(map[any][]any),
	}
	db.OnQuery(descriptor.FindStatement(), t.find)
	db.OnQuery(descriptor.SelectStatement(), t.selectAll)
	db.OnExec(descriptor.InsertStatement(), t.insert)
	db.OnExec(descriptor.UpdateStatement(), t.update)
	db.OnExec(descriptor.RemoveStatement(), t.remove)
	return t
}

// Put stores a row, values follow the descriptor column order.
func (t *Table) Put(values ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := values[t.descriptor.IdIndex()]
	if _, ok := t.rows[id]; !ok {
		t.ids = append(t.ids, id)
	}
	t.rows[id] = values
}

func (t *Table) Get(id any) ([]any, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	row, ok := t.rows[id]
	return row, ok
}

func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rows)
}

func (t *Table) find(args []any) (*Rows, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("find expects one argument, got %d", len(args))
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	var result [][]any
	if row, ok := t.rows[args[0]]; ok {
		result = append(result, row)
	}
	return NewRows(t.descriptor.ColumnNames(), result), nil
}

func (t *Table) selectAll(args []any) (*Rows, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	result := make([][]any, 0, len(t.ids))
	for _, id := range t.ids {
		if row, ok := t.rows[id]; ok {
			result = append(result, row)
		}
	}
	return NewRows(t.descriptor.ColumnNames(), result), nil
}

func (t *Table) insert(args []any) (int64, error) {
	if len(args) != len(t.descriptor.Columns) {
		return 0, fmt.Errorf("insert expects %d arguments, got %d", len(t.descriptor.Columns), len(args))
	}
	id := args[t.descriptor.IdIndex()]
	if _, ok := t.Get(id); ok {
		return 0, fmt.Errorf("duplicate key value %v violates unique constraint", id)
	}
	t.Put(args...)
	return 1, nil
}

func (t *Table) update(args []any) (int64, error) {
	if len(args) < 1 {
		return 0, fmt.Errorf("update expects the id as first argument")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	row, ok := t.rows[args[0]]
	if !ok {
		return 0, nil
	}
	updated := append([]any(nil), row...)
	next := 1
	for i, c := range t.descriptor.Columns {
		if c.Update && c.Column != t.descriptor.IdColumn {
			if next >= len(args) {
				return 0, fmt.Errorf("update is missing the value for %s", c.Column)
			}
			updated[i] = args[next]
			next++
		}
	}
	t.rows[args[0]] = updated
	return 1, nil
}

func (t *Table) remove(args []any) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("remove expects one argument, got %d", len(args))
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[args[0]]; !ok {
		return 0, nil
	}
	delete(t.rows, args[0])
	for i, id := range t.ids {
		if id == args[0] {
			t.ids = append(t.ids[:i], t.ids[i+1:]...)
			break
		}
	}
	return 1, nil
}
