// Command commons-demo wires the orders module against the configured
// database, runs a short scripted session and prints the presented outputs as
// YAML.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/neurobridge-commons/internal/app"
	"github.com/yungbote/neurobridge-commons/internal/commons/command"
	types "github.com/yungbote/neurobridge-commons/internal/domain/orders"
	"github.com/yungbote/neurobridge-commons/internal/platform/shutdown"
)

func main() {
	os.Exit(realMain(os.Args[1:], os.Stdout, os.Stderr))
}

// realMain returns the exit code after every deferred cleanup has run.
func realMain(argv []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("commons-demo", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		cfgPath = fs.String("config", "", "path to a YAML config file")
		ab      = fs.String("ab", "", "record query SQL under debug.ab_root/ab/<name>")
		metrics = fs.Bool("metrics", false, "print dispatch metrics after the session")
		sqlOut  = fs.Bool("sql", false, "print the order counts sub-queries")
	)
	if err := fs.Parse(argv); err != nil {
		return 2
	}

	ctx, stop := shutdown.NotifyContext(context.Background())
	defer stop()

	a, err := app.New(ctx, *cfgPath)
	if err != nil {
		fmt.Fprintf(stderr, "failed to initialize app: %v\n", err)
		return 1
	}
	defer func() {
		if err := a.Close(context.Background()); err != nil {
			fmt.Fprintf(stderr, "close: %v\n", err)
		}
	}()

	if err := run(ctx, a, stdout, *ab, *sqlOut); err != nil {
		a.Log.Error("session failed", "error", err)
		return 1
	}
	if *metrics {
		if err := a.Metrics.WritePrometheus(stdout); err != nil {
			a.Log.Error("write metrics", "error", err)
			return 1
		}
	}
	return 0
}

func run(ctx context.Context, a *app.App, w io.Writer, ab string, sqlOut bool) error {
	due := time.Now().UTC().Add(-24 * time.Hour)
	script := []map[string]any{
		{"number": "A-100", "status": "wip", "customer": "Acme", "due_at": due},
		{"number": "A-101", "status": "hold", "customer": "Globex"},
		{"number": "A-102", "status": "completed", "customer": "Initech", "due_at": due},
		{"number": "A-103", "customer": "Umbrella"},
		{"number": "A1", "status": "archived", "customer": "heck of a customer"},
	}
	for _, opts := range script {
		out, err := a.Execute(ctx, "create_order", opts)
		if err != nil {
			return err
		}
		if !out.Success() {
			a.Log.Warn("create_order rejected", "number", opts["number"], "errors", strings.Join(out.ErrorMessages(command.ScopeAll), "; "))
		}
	}

	hidden, err := a.Execute(ctx, "hide_order", map[string]any{"number": "A-103", "hidden": true})
	if err != nil {
		return err
	}
	a.Log.Info("hide_order", "success", hidden.Success(), "rows", hidden.Result())

	index, err := a.Present(ctx, "order_index", map[string]any{"sort": "number", "direction": "desc"})
	if err != nil {
		return err
	}
	if err := section(w, "order_index", index); err != nil {
		return err
	}

	rows, _ := index.Value("orders").([]*types.Order)
	if len(rows) > 0 {
		card, err := a.Present(ctx, "order_card", nil, rows[0])
		if err != nil {
			return err
		}
		if err := section(w, "order_card", card); err != nil {
			return err
		}
	}

	if sqlOut {
		q, err := a.Orders.OrderCounts.Query(ctx, nil, nil)
		if err != nil {
			return err
		}
		if err := q.AggregateQueries().Debug(w, a.Cfg.Debug.FormatSQL); err != nil {
			return err
		}
	}

	if ab != "" {
		scope, err := a.Scope(ctx, "order_index", map[string]any{"sort": "number"})
		if err != nil {
			return err
		}
		path, err := a.Recorder.RecordScope(ab, "orders", "order_index", scope)
		if err != nil {
			return err
		}
		a.Log.Info("recorded query sql", "path", path)
	}
	return nil
}

func section(w io.Writer, name string, v any) error {
	b, err := yaml.Marshal(map[string]any{name: v})
	if err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err = fmt.Fprintf(w, "---\n%s", b)
	return err
}
