// Package query holds query objects: a named, argument-bound step that narrows
// a gorm scope.
//
//	index := query.Define("order_index", schema, func(ctx context.Context, q *query.Query[*args.Args[indexArgs]]) error {
//		q.Scope = q.Scope.Where("hidden = ?", false)
//		q.OrderBy("number", q.Args().Values.Sort)
//		return nil
//	}, query.WithDefaultScope(query.ModelScope(db, &Order{})))
//	scope, err := index.QueryAsScope(ctx, nil, opts)
package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/jinzhu/inflection"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/neurobridge-commons/internal/commons/aggquery"
	"github.com/yungbote/neurobridge-commons/internal/commons/args"
	"github.com/yungbote/neurobridge-commons/internal/commons/contract"
	"github.com/yungbote/neurobridge-commons/internal/commons/sqldebug"
	commonerr "github.com/yungbote/neurobridge-commons/internal/pkg/errors"
	"github.com/yungbote/neurobridge-commons/internal/platform/logger"
)

const DefaultPageSize = 25

// ScopeFunc builds a fresh scope for one query run.
type ScopeFunc func(ctx context.Context) *gorm.DB

// ModelScope scopes to a model's table.
func ModelScope(db *gorm.DB, model any) ScopeFunc {
	return func(ctx context.Context) *gorm.DB {
		if db == nil {
			return nil
		}
		return db.WithContext(ctx).Model(model)
	}
}

// TableScope scopes to a table by name.
func TableScope(db *gorm.DB, table string) ScopeFunc {
	return func(ctx context.Context) *gorm.DB {
		if db == nil {
			return nil
		}
		return db.WithContext(ctx).Table(table)
	}
}

// CallFunc narrows q.Scope.
type CallFunc[A args.Arguments] func(ctx context.Context, q *Query[A]) error

type Option func(*options)

type options struct {
	scope ScopeFunc
	log   *logger.Logger
}

// WithDefaultScope sets the scope used when a run is given none.
func WithDefaultScope(fn ScopeFunc) Option {
	return func(o *options) { o.scope = fn }
}

func WithLogger(log *logger.Logger) Option {
	return func(o *options) { o.log = log }
}

// Definition is a named query type.
type Definition[A args.Arguments] struct {
	name         string
	binder       args.Binder[A]
	call         CallFunc[A]
	defaultScope ScopeFunc
	log          *logger.Logger
	tracer       trace.Tracer
}

// Define declares a query. A nil binder means an empty contract when A is
// *contract.Bound.
func Define[A args.Arguments](name string, binder args.Binder[A], call CallFunc[A], opts ...Option) *Definition[A] {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if binder == nil {
		if b, ok := any(contract.Empty()).(args.Binder[A]); ok {
			binder = b
		}
	}
	name = strings.TrimSpace(name)
	return &Definition[A]{
		name:         name,
		binder:       binder,
		call:         call,
		defaultScope: o.scope,
		log:          logger.OrNop(o.log).With("query", name),
		tracer:       otel.Tracer("neurobridge-commons/query"),
	}
}

func (d *Definition[A]) Name() string { return d.name }

// Query runs the call against scope, or the default scope when scope is nil,
// and returns the instance.
func (d *Definition[A]) Query(ctx context.Context, scope *gorm.DB, opts map[string]any) (*Query[A], error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if scope == nil && d.defaultScope != nil {
		scope = d.defaultScope(ctx)
	}
	if scope == nil {
		return nil, commonerr.InvalidArgument(fmt.Sprintf("query %s: scope is required", d.name))
	}
	if d.binder == nil {
		return nil, commonerr.InvalidArgument(fmt.Sprintf("query %s: no args binder", d.name))
	}
	a, err := d.binder.Bind(opts)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", d.name, err)
	}

	ctx, span := d.tracer.Start(ctx, "query."+d.name, trace.WithAttributes(attribute.String("query.name", d.name)))
	defer span.End()

	q := &Query[A]{Scope: scope, def: d, ctx: ctx, args: a}
	if d.call == nil {
		err := commonerr.NotImplemented(fmt.Sprintf("query %s: implement the call", d.name))
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := d.call(ctx, q); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		d.log.Warn("query call failed", "error", err)
		return nil, fmt.Errorf("query %s: %w", d.name, err)
	}
	d.log.Debug("query built", "args_valid", a.Valid())
	return q, nil
}

// QueryAsScope runs Query and returns the resulting scope.
func (d *Definition[A]) QueryAsScope(ctx context.Context, scope *gorm.DB, opts map[string]any) (*gorm.DB, error) {
	q, err := d.Query(ctx, scope, opts)
	if err != nil {
		return nil, err
	}
	return q.Scope, nil
}

// Query is one run of a Definition.
type Query[A args.Arguments] struct {
	// Scope is narrowed by the call and returned by QueryAsScope.
	Scope *gorm.DB

	def  *Definition[A]
	ctx  context.Context
	args A
	agg  *aggquery.Builder
}

func (q *Query[A]) Name() string             { return q.def.name }
func (q *Query[A]) Args() A                  { return q.args }
func (q *Query[A]) Context() context.Context { return q.ctx }

// Paginate applies a 1-based page. Non-positive values fall back to page 1
// and DefaultPageSize.
func (q *Query[A]) Paginate(page, pageSize int) *gorm.DB {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	q.Scope = q.Scope.Offset((page - 1) * pageSize).Limit(pageSize)
	return q.Scope
}

// OrderBy orders by column. An unrecognized direction falls back to the
// dialect default.
func (q *Query[A]) OrderBy(column string, direction any) *gorm.DB {
	q.Scope = q.Scope.Order(clause.OrderByColumn{
		Column: clause.Column{Name: column},
		Desc:   CleanSortDirection(direction) == "DESC",
	})
	return q.Scope
}

// LeftOuterJoins joins rhs on rhs.id = lhs.<singular rhs>_id.
func (q *Query[A]) LeftOuterJoins(lhs, rhs string) *gorm.DB {
	fk := inflection.Singular(rhs) + "_id"
	q.Scope = q.Scope.Joins(fmt.Sprintf("LEFT OUTER JOIN %s ON %s.id = %s.%s", rhs, rhs, lhs, fk))
	return q.Scope
}

// AggregateQueries returns a builder bound to the scope's connection. It is
// created on first use.
func (q *Query[A]) AggregateQueries() *aggquery.Builder {
	if q.agg == nil {
		var conn *gorm.DB
		if q.Scope != nil {
			conn = q.Scope.Session(&gorm.Session{NewDB: true})
		}
		q.agg = aggquery.New(conn, aggquery.WithLogger(q.def.log))
	}
	return q.agg
}

// ToSQL renders the current scope.
func (q *Query[A]) ToSQL() string { return sqldebug.ToSQL(q.Scope) }

// CleanSortDirection returns "ASC" or "DESC" for a recognized direction and ""
// otherwise. It accepts strings, Symbols and fmt.Stringers.
func CleanSortDirection(direction any) string {
	var s string
	switch v := direction.(type) {
	case nil:
		return ""
	case string:
		s = v
	case contract.Symbol:
		s = string(v)
	case fmt.Stringer:
		s = v.String()
	default:
		return ""
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc":
		return "ASC"
	case "desc":
		return "DESC"
	}
	return ""
}

// ToSQL renders the SELECT a scope would run.
func ToSQL(scope *gorm.DB) string { return sqldebug.ToSQL(scope) }
