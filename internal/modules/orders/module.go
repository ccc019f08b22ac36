// Package orders is a small order-desk module built on the commons framework:
// commands to create and hide orders, index and count queries, and the
// presenters that render them.
package orders

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-commons/internal/commons/args"
	"github.com/yungbote/neurobridge-commons/internal/commons/command"
	"github.com/yungbote/neurobridge-commons/internal/commons/contract"
	"github.com/yungbote/neurobridge-commons/internal/commons/presenter"
	"github.com/yungbote/neurobridge-commons/internal/commons/query"
	"github.com/yungbote/neurobridge-commons/internal/commons/registry"
	"github.com/yungbote/neurobridge-commons/internal/data/repos"
	types "github.com/yungbote/neurobridge-commons/internal/domain/orders"
	"github.com/yungbote/neurobridge-commons/internal/pkg/dbctx"
	commonerr "github.com/yungbote/neurobridge-commons/internal/pkg/errors"
	"github.com/yungbote/neurobridge-commons/internal/platform/logger"
)

type Deps struct {
	DB  *gorm.DB
	Log *logger.Logger

	// Orders defaults to a gorm-backed repo on DB.
	Orders repos.OrderRepo
	// Now defaults to time.Now.
	Now func() time.Time
}

type Module struct {
	deps      Deps
	indexKeys []string

	CreateOrder *command.Definition[*args.Args[CreateOrderArgs], *types.Order]
	HideOrder   *command.Definition[*contract.Bound, int64]

	OrderIndex  *query.Definition[*args.Args[OrderIndexArgs]]
	OrderCounts *query.Definition[*contract.Bound]

	IndexPresenter *presenter.Definition
	CardPresenter  *presenter.Definition
}

func New(deps Deps) (*Module, error) {
	if deps.DB == nil {
		return nil, commonerr.InvalidArgument("orders: db is required")
	}
	deps.Log = logger.OrNop(deps.Log).With("module", "orders")
	if deps.Orders == nil {
		deps.Orders = repos.NewOrderRepo(deps.DB, deps.Log)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	createArgs, err := newCreateOrderArgs()
	if err != nil {
		return nil, fmt.Errorf("orders: %w", err)
	}
	indexArgs, err := newOrderIndexArgs()
	if err != nil {
		return nil, fmt.Errorf("orders: %w", err)
	}
	indexInput, err := contract.ParseYAML(indexContractYAML)
	if err != nil {
		return nil, fmt.Errorf("orders: %w", err)
	}

	m := &Module{deps: deps, indexKeys: indexArgs.Keys()}
	m.CreateOrder = m.newCreateOrder(createArgs)
	m.HideOrder = m.newHideOrder()
	m.OrderIndex = m.newOrderIndex(indexArgs)
	m.OrderCounts = m.newOrderCounts()
	m.IndexPresenter = m.newIndexPresenter(indexInput)
	m.CardPresenter = m.newCardPresenter(m.IndexPresenter)
	return m, nil
}

// Models lists the tables the module needs migrated.
func (m *Module) Models() []any { return []any{&types.Order{}} }

// Counts runs order_counts as one union query.
func (m *Module) Counts(ctx context.Context) (map[string]int64, error) {
	q, err := m.OrderCounts.Query(ctx, nil, nil)
	if err != nil {
		return nil, err
	}
	return q.AggregateQueries().Execute(dbctx.From(ctx))
}

// Register adds every definition to the given registries. Any nil registry is
// skipped.
func (m *Module) Register(
	commands *registry.Registry[command.Runner],
	presenters *registry.Registry[*presenter.Definition],
	queries *registry.Registry[query.Runner],
) error {
	if commands != nil {
		for _, c := range []command.Runner{m.CreateOrder, m.HideOrder} {
			if err := commands.Register(c.Name(), c); err != nil {
				return err
			}
		}
	}
	if presenters != nil {
		for _, p := range []*presenter.Definition{m.IndexPresenter, m.CardPresenter} {
			if err := presenters.Register(p.Name(), p); err != nil {
				return err
			}
		}
	}
	if queries != nil {
		for _, q := range []query.Runner{m.OrderIndex, m.OrderCounts} {
			if err := queries.Register(q.Name(), q); err != nil {
				return err
			}
		}
	}
	m.deps.Log.Debug("orders registered")
	return nil
}

func (m *Module) now() time.Time { return m.deps.Now() }
