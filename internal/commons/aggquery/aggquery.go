// Package aggquery unions named count queries into a single statement and
// folds the result into a name to count map.
package aggquery

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-commons/internal/commons/sqldebug"
	"github.com/yungbote/neurobridge-commons/internal/data/db"
	"github.com/yungbote/neurobridge-commons/internal/pkg/dbctx"
	commonerr "github.com/yungbote/neurobridge-commons/internal/pkg/errors"
	"github.com/yungbote/neurobridge-commons/internal/platform/logger"
)

const (
	unionSeparator = "\n\n  UNION ALL\n\n"
	dividerWidth   = 80
)

// Query is one named sub-query.
type Query struct {
	Name   string
	RawSQL string
}

type Option func(*Builder)

func WithLogger(log *logger.Logger) Option {
	return func(b *Builder) { b.log = log }
}

type AddOption func(*addOptions)

type addOptions struct {
	keepOrder bool
}

// KeepOrder leaves the scope's ORDER BY in the sub-query.
func KeepOrder() AddOption {
	return func(o *addOptions) { o.keepOrder = true }
}

// Builder accumulates sub-queries. It is not safe for concurrent Add calls.
type Builder struct {
	conn    *gorm.DB
	queries []Query
	log     *logger.Logger
	tracer  trace.Tracer
}

func New(conn *gorm.DB, opts ...Option) *Builder {
	b := &Builder{conn: conn, tracer: otel.Tracer("neurobridge-commons/aggquery")}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	b.log = logger.OrNop(b.log)
	return b
}

// Add projects scope to "'<name>' as agg_name, count(*) as agg_count" and
// records the rendered SQL. The scope itself is not modified.
func (b *Builder) Add(name string, scope *gorm.DB, opts ...AddOption) error {
	if scope == nil {
		return commonerr.InvalidArgument(fmt.Sprintf("aggquery %s: scope is required", name))
	}
	if scope.Error != nil {
		return fmt.Errorf("aggquery %s: %w", name, scope.Error)
	}
	var o addOptions
	for _, opt := range opts {
		opt(&o)
	}

	label := strings.ReplaceAll(name, "'", "''")
	count := scope.Session(&gorm.Session{}).
		Select(fmt.Sprintf("'%s' as agg_name, count(*) as agg_count", label))
	if !o.keepOrder {
		delete(count.Statement.Clauses, "ORDER BY")
	}
	b.queries = append(b.queries, Query{Name: name, RawSQL: sqldebug.Squeeze(sqldebug.ToSQL(count))})
	return nil
}

// AddSQL records raw SQL as-is. It must select agg_name and agg_count.
func (b *Builder) AddSQL(name, raw string) {
	b.queries = append(b.queries, Query{Name: name, RawSQL: raw})
}

// Queries returns a copy of the recorded sub-queries.
func (b *Builder) Queries() []Query {
	out := make([]Query, len(b.queries))
	copy(out, b.queries)
	return out
}

func (b *Builder) Len() int { return len(b.queries) }

// Build wraps the sub-queries, each indented two spaces, in one UNION ALL.
func (b *Builder) Build() string {
	parts := make([]string, 0, len(b.queries))
	for _, q := range b.queries {
		lines := strings.Split(q.RawSQL, "\n")
		for i, line := range lines {
			lines[i] = "  " + line
		}
		parts = append(parts, strings.Join(lines, "\n"))
	}
	return "SELECT agg_name, agg_count FROM (\n" + strings.Join(parts, unionSeparator) + "\n) as counts"
}

func (b *Builder) ToSQL() string { return b.Build() }

type row struct {
	AggName  string `gorm:"column:agg_name"`
	AggCount int64  `gorm:"column:agg_count"`
}

// Execute runs the union on dbc.Tx, or on the builder's connection.
func (b *Builder) Execute(dbc dbctx.Context) (map[string]int64, error) {
	out := map[string]int64{}
	if len(b.queries) == 0 {
		return out, nil
	}
	conn := dbc.DB(b.conn)
	if conn == nil {
		return nil, commonerr.InvalidArgument("aggquery: no connection")
	}
	ctx, span := b.start(dbc.Context(), "aggquery.execute")
	defer span.End()

	var rows []row
	if err := conn.WithContext(ctx).Raw(b.Build()).Scan(&rows).Error; err != nil {
		err = db.Classify(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("aggquery execute: %w", err)
	}
	for _, r := range rows {
		out[r.AggName] = r.AggCount
	}
	b.log.Debug("aggregate query executed", "queries", len(b.queries), "rows", len(rows))
	return out, nil
}

// ExecuteEach runs every sub-query as its own statement with at most limit in
// flight. Use it where the dialect rejects ORDER BY inside UNION members.
// Statements sharing dbc.Tx are serialized by the driver.
func (b *Builder) ExecuteEach(dbc dbctx.Context, limit int) (map[string]int64, error) {
	out := map[string]int64{}
	if len(b.queries) == 0 {
		return out, nil
	}
	conn := dbc.DB(b.conn)
	if conn == nil {
		return nil, commonerr.InvalidArgument("aggquery: no connection")
	}
	ctx, span := b.start(dbc.Context(), "aggquery.execute_each")
	defer span.End()

	results := make([][]row, len(b.queries))
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, q := range b.queries {
		g.Go(func() error {
			var rows []row
			if err := conn.WithContext(gctx).Raw(q.RawSQL).Scan(&rows).Error; err != nil {
				return fmt.Errorf("aggquery %s: %w", q.Name, db.Classify(err))
			}
			results[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	for i, rows := range results {
		if len(rows) == 0 {
			out[b.queries[i].Name] = 0
		}
		for _, r := range rows {
			out[r.AggName] = r.AggCount
		}
	}
	return out, nil
}

// Debug writes each sub-query between dividers, formatted when format is set.
func (b *Builder) Debug(w io.Writer, format bool) error {
	divider := strings.Repeat("-", dividerWidth)
	for _, q := range b.queries {
		sql := q.RawSQL
		if format {
			sql = sqldebug.Format(sql)
		}
		if _, err := fmt.Fprintf(w, "%s\n- %s\n%s\n%s\n", divider, q.Name, divider, sql); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) start(ctx context.Context, name string) (context.Context, trace.Span) {
	return b.tracer.Start(ctx, name, trace.WithAttributes(attribute.Int("aggquery.queries", len(b.queries))))
}
