package query

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-commons/internal/commons/args"
	"github.com/yungbote/neurobridge-commons/internal/commons/contract"
	"github.com/yungbote/neurobridge-commons/internal/commons/registry"
	"github.com/yungbote/neurobridge-commons/internal/data/testutil"
	"github.com/yungbote/neurobridge-commons/internal/pkg/dbctx"
	commonerr "github.com/yungbote/neurobridge-commons/internal/pkg/errors"
)

type someTable struct {
	ID   uint
	Name string
}

type anotherTable struct {
	ID   uint
	Name string
}

type bound = Query[*contract.Bound]

func noop(context.Context, *bound) error { return nil }

func TestQueryMisconfigured(t *testing.T) {
	db := testutil.DB(t, &someTable{})
	ctx := context.Background()

	missingCall := Define[*contract.Bound]("missing_call", nil, nil, WithDefaultScope(ModelScope(db, &someTable{})))
	if _, err := missingCall.QueryAsScope(ctx, nil, nil); !errors.Is(err, commonerr.ErrNotImplemented) {
		t.Fatalf("missing call: want ErrNotImplemented got=%v", err)
	}

	noScope := Define("no_scope", nil, noop)
	_, err := noScope.QueryAsScope(ctx, nil, nil)
	if !errors.Is(err, commonerr.ErrInvalidArgument) || !strings.Contains(err.Error(), "scope is required") {
		t.Fatalf("no scope: want ErrInvalidArgument got=%v", err)
	}
}

func TestQueryScopes(t *testing.T) {
	db := testutil.DB(t, &someTable{}, &anotherTable{})
	ctx := context.Background()

	noScope := Define("no_scope", nil, noop)
	symbol := Define("symbol_driven", nil, noop, WithDefaultScope(TableScope(db, "some_tables")))
	lambda := Define("lambda_driven", nil, noop, WithDefaultScope(func(ctx context.Context) *gorm.DB {
		return db.WithContext(ctx).Model(&someTable{}).Where("os IS NOT NULL")
	}))

	tests := []struct {
		name  string
		def   *Definition[*contract.Bound]
		scope *gorm.DB
		want  string
	}{
		{name: "passed scope", def: noScope, scope: db.Model(&someTable{}), want: "SELECT * FROM `some_tables`"},
		{name: "passed ordered scope", def: noScope, scope: db.Model(&anotherTable{}).Order("another_tables.created_at DESC"), want: "SELECT * FROM `another_tables` ORDER BY another_tables.created_at DESC"},
		{name: "passed scope wins over default", def: symbol, scope: db.Model(&anotherTable{}), want: "SELECT * FROM `another_tables`"},
		{name: "table default", def: symbol, want: "SELECT * FROM `some_tables`"},
		{name: "lambda default", def: lambda, want: "SELECT * FROM `some_tables` WHERE os IS NOT NULL"},
	}
	for _, tt := range tests {
		scope, err := tt.def.QueryAsScope(ctx, tt.scope, nil)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if got := ToSQL(scope); got != tt.want {
			t.Fatalf("%s: want=%q got=%q", tt.name, tt.want, got)
		}
	}
}

func TestCleanSortDirection(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{in: nil, want: ""},
		{in: "", want: ""},
		{in: "asc", want: "ASC"},
		{in: "desc", want: "DESC"},
		{in: "DeSc", want: "DESC"},
		{in: contract.Symbol("asc"), want: "ASC"},
		{in: contract.Symbol("desc"), want: "DESC"},
		{in: contract.Sym("desc"), want: "DESC"},
		{in: "invalid", want: ""},
		{in: 1, want: ""},
	}
	for _, tt := range tests {
		if got := CleanSortDirection(tt.in); got != tt.want {
			t.Fatalf("CleanSortDirection(%v): want=%q got=%q", tt.in, tt.want, got)
		}
	}
}

type listArgs struct {
	Page     int    `mapstructure:"page"`
	PageSize int    `mapstructure:"page_size"`
	Sort     string `mapstructure:"sort" validate:"omitempty,oneof=asc desc"`
}

func TestQueryHelpers(t *testing.T) {
	db := testutil.DB(t, &someTable{})
	schema := args.MustDefine[listArgs]("list", nil)
	list := Define("list", schema, func(ctx context.Context, q *Query[*args.Args[listArgs]]) error {
		v := q.Args().Values
		q.OrderBy("name", v.Sort)
		q.Paginate(v.Page, v.PageSize)
		return nil
	}, WithDefaultScope(ModelScope(db, &someTable{})))

	tests := []struct {
		name string
		opts map[string]any
		want string
	}{
		{name: "defaults", opts: nil, want: "SELECT * FROM `some_tables` ORDER BY `name` LIMIT 25"},
		{name: "page", opts: map[string]any{"page": "3", "page_size": 10, "sort": "desc"}, want: "SELECT * FROM `some_tables` ORDER BY `name` DESC LIMIT 10 OFFSET 20"},
	}
	for _, tt := range tests {
		q, err := list.Query(context.Background(), nil, tt.opts)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if got := q.ToSQL(); got != tt.want {
			t.Fatalf("%s: want=%q got=%q", tt.name, tt.want, got)
		}
		if q.Name() != "list" || q.Context() == nil {
			t.Fatalf("%s: name=%q", tt.name, q.Name())
		}
	}
}

func TestLeftOuterJoins(t *testing.T) {
	db := testutil.DB(t, &someTable{})
	joined := Define("joined", nil, func(ctx context.Context, q *bound) error {
		q.LeftOuterJoins("some_tables", "customers")
		return nil
	})
	scope, err := joined.QueryAsScope(context.Background(), db.Model(&someTable{}), nil)
	if err != nil {
		t.Fatalf("QueryAsScope: %v", err)
	}
	want := "LEFT OUTER JOIN customers ON customers.id = some_tables.customer_id"
	if got := ToSQL(scope); !strings.HasSuffix(got, want) {
		t.Fatalf("join: want suffix %q got=%q", want, got)
	}
}

func TestAggregateQueries(t *testing.T) {
	db := testutil.DB(t, &someTable{})
	for _, name := range []string{"a", "b", "c"} {
		if err := db.Create(&someTable{Name: name}).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	counts := Define("counts", nil, func(ctx context.Context, q *bound) error {
		agg := q.AggregateQueries()
		if agg != q.AggregateQueries() {
			t.Fatalf("builder should be created once")
		}
		if err := agg.Add("all", q.Scope); err != nil {
			return err
		}
		return agg.Add("a_only", q.Scope.Where("name = 'a'"))
	}, WithDefaultScope(ModelScope(db, &someTable{})))

	q, err := counts.Query(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	got, err := q.AggregateQueries().Execute(dbctx.From(q.Context()))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got["all"] != 3 || got["a_only"] != 1 {
		t.Fatalf("counts: got=%v", got)
	}
}

func TestQueryCallError(t *testing.T) {
	db := testutil.DB(t, &someTable{})
	boom := errors.New("boom")
	failing := Define("failing", nil, func(context.Context, *bound) error { return boom },
		WithDefaultScope(ModelScope(db, &someTable{})))
	if _, err := failing.Query(context.Background(), nil, nil); !errors.Is(err, boom) {
		t.Fatalf("call error: want boom got=%v", err)
	}
}

func TestQueryUnknownArgument(t *testing.T) {
	db := testutil.DB(t, &someTable{})
	list := Define("list", args.MustDefine[listArgs]("list", nil), func(context.Context, *Query[*args.Args[listArgs]]) error { return nil },
		WithDefaultScope(ModelScope(db, &someTable{})))
	if _, err := list.Query(context.Background(), nil, map[string]any{"bogus": 1}); !errors.Is(err, commonerr.ErrUnknownAttribute) {
		t.Fatalf("unknown attribute: want ErrUnknownAttribute got=%v", err)
	}
}

func TestRunnerRegistry(t *testing.T) {
	db := testutil.DB(t, &someTable{})
	runners := registry.New[Runner]()
	if err := runners.Register("symbol", Define("symbol", nil, noop, WithDefaultScope(TableScope(db, "some_tables")))); err != nil {
		t.Fatalf("Register: %v", err)
	}
	r, ok := runners.Lookup("symbol")
	if !ok {
		t.Fatalf("Lookup: missing")
	}
	scope, err := r.QueryAsScope(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("QueryAsScope: %v", err)
	}
	if got, want := ToSQL(scope), "SELECT * FROM `some_tables`"; got != want {
		t.Fatalf("runner scope: want=%q got=%q", want, got)
	}
}
