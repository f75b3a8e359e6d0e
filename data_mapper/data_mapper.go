package data_mapper

import (
	"context"
	"reflect"
	"time"

	"github.com/fersoria001/clearly/hooks"
	"github.com/fersoria001/clearly/interfaces"
	"github.com/fersoria001/clearly/metadata"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var ErrNotFound = errors.New("no rows found")

type StatementSource interface {
	Sql() string
	Parameters() []interface{}
}

// Statement is a plain StatementSource.
type Statement struct {
	Query string
	Args  []interface{}
}

func (s Statement) Sql() string {
	return s.Query
}

func (s Statement) Parameters() []interface{} {
	return s.Args
}

// Querier is the subset of *pgxpool.Pool used by the mappers.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type DataMapper[T interfaces.DomainObject[K], K comparable] interface {
	Insert(ctx context.Context, session interfaces.Session[K], obj T) (K, error)
	Update(ctx context.Context, session interfaces.Session[K], obj T) error
	Remove(ctx context.Context, session interfaces.Session[K], id K) error
	Find(ctx context.Context, session interfaces.Session[K], id K) (T, error)
	FindMany(ctx context.Context, session interfaces.Session[K], source StatementSource) ([]T, error)
	EntityDescriptor() *metadata.EntityDescriptor
	interfaces.LazyLoading[T, K]
	interfaces.Registrable
}

type PreparedStatement struct {
	conn  Querier
	query string
	args  []interface{}
}

func (q *PreparedStatement) Append(arg interface{}) {
	q.args = append(q.args, arg)
}

func (q *PreparedStatement) Execute(ctx context.Context) (int64, error) {
	cmd, err := q.conn.Exec(ctx, q.query, q.args...)
	if err != nil {
		return cmd.RowsAffected(), err
	}
	return cmd.RowsAffected(), nil
}

func (q *PreparedStatement) ExecuteQuery(ctx context.Context) (pgx.Rows, error) {
	return q.conn.Query(ctx, q.query, q.args...)
}

// PostgreSQLDataMapper moves one entity type between PostgreSQL and memory.
// Every physical load registers the entity in the session and then fires the
// after load hooks for its type. Entities found in the session identity map
// are returned as they are, unless they are ghosts and the row was read anyway.
// Find hands out ghosts when the descriptor is lazy. LoadTimeout bounds every
// physical load, hooks included.
type PostgreSQLDataMapper[T interfaces.DomainObject[K], K comparable] struct {
	Db              Querier
	Descriptor      *metadata.EntityDescriptor
	Hooks           *hooks.Registry[K]
	Logger          logrus.FieldLogger
	LoadTimeout     time.Duration
	FindStatement   string
	InsertStatement string
	UpdateStatement string
	RemoveStatement string
	DoLoad          func(resultSet pgx.Rows) (T, error)
	DoInsert        func(obj T, stmt *PreparedStatement) error
	DoUpdate        func(obj T, stmt *PreparedStatement) error
	CreateGhost     func(id K) T
	DoLoadLine      func(resultSet pgx.Rows, obj T) error
}

func (d PostgreSQLDataMapper[T, K]) Type() reflect.Type {
	if d.Descriptor == nil {
		return nil
	}
	return d.Descriptor.Type
}

func (d PostgreSQLDataMapper[T, K]) EntityDescriptor() *metadata.EntityDescriptor {
	return d.Descriptor
}

func (d PostgreSQLDataMapper[T, K]) log() logrus.FieldLogger {
	if d.Logger == nil {
		return logrus.StandardLogger()
	}
	return d.Logger
}

func (d PostgreSQLDataMapper[T, K]) valid() error {
	if d.Db == nil {
		return errors.New("the data mapper has no database")
	}
	if d.Descriptor == nil || d.Descriptor.Type == nil {
		return errors.New("the data mapper needs a descriptor bound to its domain type")
	}
	return nil
}

func (d PostgreSQLDataMapper[T, K]) statement(custom string, fallback func() string) string {
	if custom != "" {
		return custom
	}
	return fallback()
}

func (d PostgreSQLDataMapper[T, K]) prepare(query string) *PreparedStatement {
	return &PreparedStatement{
		conn:  d.Db,
		query: query,
		args:  make([]interface{}, 0),
	}
}

func (d PostgreSQLDataMapper[T, K]) withLoadTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.LoadTimeout > 0 {
		return context.WithTimeout(ctx, d.LoadTimeout)
	}
	return ctx, func() {}
}

func checkSession[K comparable](session interfaces.Session[K]) error {
	if session == nil || reflect.ValueOf(session).IsZero() {
		return hooks.ErrNilSession
	}
	if session.IsClosed() {
		return hooks.ErrSessionClosed
	}
	return nil
}

func (d PostgreSQLDataMapper[T, K]) Insert(ctx context.Context, session interfaces.Session[K], obj T) (K, error) {
	var nilK K
	if err := d.valid(); err != nil {
		return nilK, err
	}
	if err := checkSession(session); err != nil {
		return nilK, err
	}
	if d.DoInsert == nil {
		return nilK, errors.Errorf("the %s data mapper does not support inserts", d.Descriptor.Name)
	}
	stmt := d.prepare(d.statement(d.InsertStatement, d.Descriptor.InsertStatement))
	err := d.DoInsert(obj, stmt)
	if err != nil {
		return nilK, err
	}
	_, err = stmt.Execute(ctx)
	if err != nil {
		return nilK, errors.Wrapf(err, "insert %s", d.Descriptor.Name)
	}
	id := obj.Id()
	if err := session.Register(obj); err != nil {
		return nilK, err
	}
	return id, nil
}

func (d PostgreSQLDataMapper[T, K]) Update(ctx context.Context, session interfaces.Session[K], obj T) error {
	if err := d.valid(); err != nil {
		return err
	}
	if err := checkSession(session); err != nil {
		return err
	}
	if d.DoUpdate == nil {
		return errors.Errorf("the %s data mapper does not support updates", d.Descriptor.Name)
	}
	stmt := d.prepare(d.statement(d.UpdateStatement, d.Descriptor.UpdateStatement))
	err := d.DoUpdate(obj, stmt)
	if err != nil {
		return err
	}
	_, err = stmt.Execute(ctx)
	if err != nil {
		return errors.Wrapf(err, "update %s %v", d.Descriptor.Name, obj.Id())
	}
	return session.Register(obj)
}

func (d PostgreSQLDataMapper[T, K]) Remove(ctx context.Context, session interfaces.Session[K], id K) error {
	if err := d.valid(); err != nil {
		return err
	}
	if err := checkSession(session); err != nil {
		return err
	}
	stmt := d.prepare(d.statement(d.RemoveStatement, d.Descriptor.RemoveStatement))
	stmt.Append(id)
	_, err := stmt.Execute(ctx)
	if err != nil {
		return errors.Wrapf(err, "remove %s %v", d.Descriptor.Name, id)
	}
	if obj, ok := session.Lookup(d.Type(), id); ok {
		session.Evict(obj)
	}
	return nil
}

// Load populates a ghost and fires the after load hooks. A failed load puts
// the object back in the ghost state and evicts it from the session.
func (d PostgreSQLDataMapper[T, K]) Load(ctx context.Context, session interfaces.Session[K], obj T) error {
	if err := d.valid(); err != nil {
		return err
	}
	if err := checkSession(session); err != nil {
		return err
	}
	if d.DoLoadLine == nil {
		return errors.Errorf("the %s data mapper does not support lazy loading", d.Descriptor.Name)
	}
	if !obj.IsGhost() {
		return errors.New("assertion error: the object to load is not a ghost")
	}
	ctx, cancel := d.withLoadTimeout(ctx)
	defer cancel()
	if err := d.loadLine(ctx, obj); err != nil {
		obj.Reset()
		return err
	}
	if _, ok := session.Lookup(d.Type(), obj.Id()); !ok {
		if err := session.Register(obj); err != nil {
			obj.Reset()
			return err
		}
	}
	if err := d.Hooks.Fire(ctx, session, obj, d.Descriptor); err != nil {
		obj.Reset()
		session.Evict(obj)
		return err
	}
	d.log().WithFields(logrus.Fields{"entity": d.Descriptor.Name, "id": obj.Id()}).Debug("ghost loaded")
	return nil
}

func (d PostgreSQLDataMapper[T, K]) loadLine(ctx context.Context, obj T) error {
	stmt := d.prepare(d.statement(d.FindStatement, d.Descriptor.FindStatement))
	stmt.Append(obj.Id())
	rows, err := stmt.ExecuteQuery(ctx)
	if err != nil {
		return errors.Wrap(err, "error at execute query")
	}
	defer rows.Close()
	if !rows.Next() {
		if rows.Err() != nil {
			return rows.Err()
		}
		return errors.Wrapf(ErrNotFound, "%s %v", d.Descriptor.Name, obj.Id())
	}
	if err := d.populate(rows, obj); err != nil {
		return err
	}
	rows.Close()
	return rows.Err()
}

// populate fills a ghost from the current row.
func (d PostgreSQLDataMapper[T, K]) populate(resultSet pgx.Rows, obj T) error {
	err := obj.MarkLoading()
	if err != nil {
		return err
	}
	err = d.DoLoadLine(resultSet, obj)
	if err != nil {
		return errors.Wrap(err, "error at doLoadLine")
	}
	return obj.MarkLoaded()
}

func (d PostgreSQLDataMapper[T, K]) Find(ctx context.Context, session interfaces.Session[K], id K) (T, error) {
	var nilT T
	if err := d.valid(); err != nil {
		return nilT, err
	}
	if err := checkSession(session); err != nil {
		return nilT, err
	}
	if obj, ok := d.lookup(session, id); ok {
		return obj, nil
	}
	if d.Descriptor.Lazy && d.CreateGhost != nil {
		result := d.CreateGhost(id)
		if err := session.Register(result); err != nil {
			return nilT, err
		}
		return result, nil
	}
	ctx, cancel := d.withLoadTimeout(ctx)
	defer cancel()
	stmt := d.prepare(d.statement(d.FindStatement, d.Descriptor.FindStatement))
	stmt.Append(id)
	rows, err := stmt.ExecuteQuery(ctx)
	if err != nil {
		return nilT, errors.Wrap(err, "error at execute query")
	}
	defer rows.Close()
	if !rows.Next() {
		if rows.Err() != nil {
			return nilT, rows.Err()
		}
		return nilT, errors.Wrapf(ErrNotFound, "%s %v", d.Descriptor.Name, id)
	}
	var b batch[T]
	obj, err := d.load(session, rows, &b)
	if err != nil {
		return nilT, err
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		d.abort(session, &b)
		return nilT, err
	}
	if err := d.fire(ctx, session, &b); err != nil {
		return nilT, err
	}
	return obj, nil
}

func (d PostgreSQLDataMapper[T, K]) FindMany(ctx context.Context, session interfaces.Session[K], source StatementSource) ([]T, error) {
	if err := d.valid(); err != nil {
		return nil, err
	}
	if err := checkSession(session); err != nil {
		return nil, err
	}
	ctx, cancel := d.withLoadTimeout(ctx)
	defer cancel()
	stmt := d.prepare(source.Sql())
	for _, arg := range source.Parameters() {
		stmt.Append(arg)
	}
	rows, err := stmt.ExecuteQuery(ctx)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var b batch[T]
	result, err := d.loadAll(session, rows, &b)
	if err != nil {
		d.abort(session, &b)
		return nil, err
	}
	err = rows.Err()
	if err != nil {
		d.abort(session, &b)
		return nil, err
	}
	if err := d.fire(ctx, session, &b); err != nil {
		return nil, err
	}
	return result, nil
}

func (d PostgreSQLDataMapper[T, K]) lookup(session interfaces.Session[K], id K) (T, bool) {
	var nilT T
	found, ok := session.Lookup(d.Type(), id)
	if !ok {
		return nilT, false
	}
	obj, ok := found.(T)
	return obj, ok
}

// batch collects the objects one find physically loaded, in load order.
// A revived object is a ghost that was already in the session and got
// populated from a row.
type batch[T any] struct {
	fresh   []T
	revived []bool
}

func (b *batch[T]) add(obj T, revived bool) {
	b.fresh = append(b.fresh, obj)
	b.revived = append(b.revived, revived)
}

// fire runs the hooks for every freshly loaded object, in load order. The
// first failure aborts the whole batch.
func (d PostgreSQLDataMapper[T, K]) fire(ctx context.Context, session interfaces.Session[K], b *batch[T]) error {
	for _, obj := range b.fresh {
		if err := d.Hooks.Fire(ctx, session, obj, d.Descriptor); err != nil {
			d.abort(session, b)
			return err
		}
		d.log().WithFields(logrus.Fields{"entity": d.Descriptor.Name, "id": obj.Id()}).Debug("entity loaded")
	}
	return nil
}

// abort restores the session to what it was before the find: new objects are
// evicted and revived ones go back to being ghosts.
func (d PostgreSQLDataMapper[T, K]) abort(session interfaces.Session[K], b *batch[T]) {
	for i, obj := range b.fresh {
		if b.revived[i] {
			obj.Reset()
			continue
		}
		session.Evict(obj)
	}
}

func (d PostgreSQLDataMapper[T, K]) getId(rows pgx.Rows) (K, error) {
	var nilK K
	index := d.Descriptor.IdIndex()
	values, err := rows.Values()
	if err != nil {
		return nilK, err
	}
	if index < 0 || index >= len(values) {
		return nilK, errors.Errorf("getId index %d out of range for %d columns", index, len(values))
	}
	v := values[index]
	if toId, ok := v.(K); ok {
		return toId, nil
	}
	kType := reflect.TypeOf(nilK)
	if v != nil && reflect.TypeOf(v).ConvertibleTo(kType) {
		return reflect.ValueOf(v).Convert(kType).Interface().(K), nil
	}
	return nilK, errors.Errorf("getId wrong interface assertion %v is %v could not cast to %v",
		v, reflect.TypeOf(v), kType)
}

// load hydrates the current row unless its id is already in the session.
// A ghost found in the session is populated from the row instead. Whatever
// this call physically loaded is added to b.
func (d PostgreSQLDataMapper[T, K]) load(session interfaces.Session[K], resultSet pgx.Rows, b *batch[T]) (T, error) {
	var nilT T
	id, err := d.getId(resultSet)
	if err != nil {
		return nilT, errors.Wrap(err, "error at load getId")
	}
	if obj, ok := d.lookup(session, id); ok {
		if !obj.IsGhost() || d.DoLoadLine == nil {
			return obj, nil
		}
		if err := d.populate(resultSet, obj); err != nil {
			obj.Reset()
			return nilT, err
		}
		b.add(obj, true)
		return obj, nil
	}
	if d.DoLoad == nil {
		return nilT, errors.Errorf("the %s data mapper has no DoLoad", d.Descriptor.Name)
	}
	result, err := d.DoLoad(resultSet)
	if err != nil {
		return nilT, errors.Wrap(err, "error at doLoad")
	}
	if err := session.Register(result); err != nil {
		return nilT, err
	}
	b.add(result, false)
	return result, nil
}

func (d PostgreSQLDataMapper[T, K]) loadAll(session interfaces.Session[K], resultSet pgx.Rows, b *batch[T]) ([]T, error) {
	result := make([]T, 0)
	for resultSet.Next() {
		obj, err := d.load(session, resultSet, b)
		if err != nil {
			return nil, err
		}
		result = append(result, obj)
	}
	return result, nil
}
