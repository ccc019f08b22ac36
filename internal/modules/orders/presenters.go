package orders

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/yungbote/neurobridge-commons/internal/commons/contract"
	"github.com/yungbote/neurobridge-commons/internal/commons/presenter"
	"github.com/yungbote/neurobridge-commons/internal/data/db"
	types "github.com/yungbote/neurobridge-commons/internal/domain/orders"
	commonerr "github.com/yungbote/neurobridge-commons/internal/pkg/errors"
)

//go:embed index_contract.yaml
var indexContractYAML []byte

// Card is the summary OrderCardPresenter renders for one order.
type Card struct {
	Number   string     `yaml:"number" json:"number"`
	Status   string     `yaml:"status" json:"status"`
	Customer string     `yaml:"customer,omitempty" json:"customer,omitempty"`
	DueAt    *time.Time `yaml:"due_at,omitempty" json:"due_at,omitempty"`
	Overdue  bool       `yaml:"overdue" json:"overdue"`
	Hidden   bool       `yaml:"hidden" json:"hidden"`
}

func (m *Module) newIndexPresenter(input *contract.Contract) *presenter.Definition {
	return presenter.Define("order_index", nil, func(b *presenter.Builder) {
		b.RequiredOutputs("orders", "counts")
		b.Outputs("status", "errors")
		b.Contract(input)
		b.Logger(m.deps.Log)
		b.Call(func(ctx context.Context, p *presenter.Presenter) error {
			opts := map[string]any{}
			for _, k := range m.indexKeys {
				if v := p.Opts().Get(k); !v.IsAbsent() {
					opts[k] = v.Interface()
				}
			}
			q, err := m.OrderIndex.Query(ctx, nil, opts)
			if err != nil {
				return err
			}
			rows := []*types.Order{}
			if err := q.Scope.Find(&rows).Error; err != nil {
				return db.Classify(err)
			}
			counts, err := m.Counts(ctx)
			if err != nil {
				return err
			}

			if err := errors.Join(p.Set("orders", rows), p.Set("counts", counts)); err != nil {
				return err
			}
			if s := p.Opts().String("status"); s != "" {
				_ = p.Set("status", s)
			}
			if msgs := append(p.InputErrors(), q.Args().Messages()...); len(msgs) > 0 {
				_ = p.Set("errors", msgs)
			}
			return nil
		})
	})
}

// newCardPresenter builds the order_card presenter. It inherits the index
// outputs as optional and requires card.
func (m *Module) newCardPresenter(parent *presenter.Definition) *presenter.Definition {
	return presenter.Define("order_card", parent, func(b *presenter.Builder) {
		b.Outputs("orders", "counts")
		b.RequiredOutputs("card")
		b.Init(func(p *presenter.Presenter, positional ...any) error {
			if len(positional) == 0 {
				return commonerr.InvalidArgument("order_card: an order is required")
			}
			order, ok := positional[0].(*types.Order)
			if !ok || order == nil {
				return commonerr.InvalidArgument(fmt.Sprintf("order_card: want *orders.Order got %T", positional[0]))
			}
			p.Locals["order"] = order
			return nil
		})
		b.Call(func(ctx context.Context, p *presenter.Presenter) error {
			order := p.Locals["order"].(*types.Order)
			card := Card{
				Number:   order.Number,
				Status:   order.Status,
				Customer: order.Customer,
				DueAt:    order.DueAt,
				Overdue:  order.Overdue(m.now()),
				Hidden:   order.Hidden,
			}
			return errors.Join(p.Set("card", card), p.Set("status", order.Status))
		})
	})
}
