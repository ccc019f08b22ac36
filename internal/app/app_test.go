package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-commons/internal/commons/presenter"
	types "github.com/yungbote/neurobridge-commons/internal/domain/orders"
	commonerr "github.com/yungbote/neurobridge-commons/internal/pkg/errors"
)

func newApp(t *testing.T) *App {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	cfg := fmt.Sprintf("log:\n  mode: test\ndb:\n  dsn: \"file:%s?mode=memory&cache=shared\"\ndebug:\n  ab_root: %q\n",
		"app"+strings.ReplaceAll(uuid.NewString(), "-", ""), dir)
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	a, err := New(context.Background(), path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = a.Close(context.Background()) })
	return a
}

func TestNewSealsRegistries(t *testing.T) {
	a := newApp(t)
	for name, sealed := range map[string]bool{
		"commands":   a.Registries.Commands.Sealed(),
		"presenters": a.Registries.Presenters.Sealed(),
		"queries":    a.Registries.Queries.Sealed(),
	} {
		if !sealed {
			t.Fatalf("%s: want sealed", name)
		}
	}
	if a.Registries.Commands.Len() != 2 || a.Registries.Queries.Len() != 2 {
		t.Fatalf("registries: commands=%d queries=%d", a.Registries.Commands.Len(), a.Registries.Queries.Len())
	}
	if err := a.Registries.Commands.Register("late", nil); !errors.Is(err, commonerr.ErrSealed) {
		t.Fatalf("late register: want ErrSealed got=%v", err)
	}
}

func TestNewBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("db:\n  driver: oracle\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := New(context.Background(), path); err == nil || !strings.Contains(err.Error(), "unsupported db.driver") {
		t.Fatalf("New: want driver error got=%v", err)
	}
}

func TestDispatch(t *testing.T) {
	a := newApp(t)
	ctx := context.Background()

	out, err := a.Execute(ctx, "create_order", map[string]any{"number": "D-100", "status": "wip", "customer": "Acme"})
	if err != nil || !out.Success() {
		t.Fatalf("create_order: err=%v outcome=%v", err, out)
	}
	out, err = a.Execute(ctx, "create_order", map[string]any{"number": "D"})
	if err != nil || out.Success() {
		t.Fatalf("invalid create_order: want failure got err=%v", err)
	}
	if _, err := a.Execute(ctx, "launch", nil); !errors.Is(err, commonerr.ErrInvalidArgument) {
		t.Fatalf("unknown command: want ErrInvalidArgument got=%v", err)
	}

	scope, err := a.Scope(ctx, "order_index", map[string]any{"status": "wip"})
	if err != nil {
		t.Fatalf("order_index: %v", err)
	}
	var rows []*types.Order
	if err := scope.Find(&rows).Error; err != nil || len(rows) != 1 || rows[0].Number != "D-100" {
		t.Fatalf("order_index rows: err=%v rows=%v", err, rows)
	}

	idx, err := a.Present(ctx, "order_index", nil)
	if err != nil {
		t.Fatalf("order_index presenter: %v", err)
	}
	if orders, ok := presenter.As[[]*types.Order](idx, "orders"); !ok || len(orders) != 1 {
		t.Fatalf("presented orders: got=%v", idx.Value("orders"))
	}
	if _, err := a.Present(ctx, "order_card", nil, "not an order"); !errors.Is(err, commonerr.ErrInvalidArgument) {
		t.Fatalf("order_card: want ErrInvalidArgument got=%v", err)
	}

	counts, err := a.Counts(ctx)
	if err != nil || counts["wip"] != 1 {
		t.Fatalf("Counts: err=%v counts=%v", err, counts)
	}

	var buf bytes.Buffer
	if err := a.Metrics.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	for _, want := range []string{
		`commons_command_runs_total{command="create_order",status="success"} 1.000000`,
		`commons_command_runs_total{command="create_order",status="failure"} 1.000000`,
		`commons_presenter_runs_total{presenter="order_card",status="error"} 1.000000`,
		`commons_aggregate_count{query="order_counts",name="wip"} 1.000000`,
	} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("metrics: missing %q in:\n%s", want, buf.String())
		}
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	a := newApp(t)
	if err := a.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := a.Close(context.Background()); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	var nilApp *App
	if err := nilApp.Close(context.Background()); err != nil {
		t.Fatalf("nil Close: %v", err)
	}
}
