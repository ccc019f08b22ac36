package orders

import (
	"context"

	"github.com/yungbote/neurobridge-commons/internal/commons/args"
	"github.com/yungbote/neurobridge-commons/internal/commons/command"
	"github.com/yungbote/neurobridge-commons/internal/commons/contract"
	"github.com/yungbote/neurobridge-commons/internal/data/db"
	types "github.com/yungbote/neurobridge-commons/internal/domain/orders"
	"github.com/yungbote/neurobridge-commons/internal/pkg/dbctx"
)

type (
	CreateOrderCommand = command.Command[*args.Args[CreateOrderArgs], *types.Order]
	HideOrderCommand   = command.Command[*contract.Bound, int64]
)

func (m *Module) newCreateOrder(schema *args.Schema[CreateOrderArgs]) *command.Definition[*args.Args[CreateOrderArgs], *types.Order] {
	return command.Define("create_order", schema, func(ctx context.Context, c *CreateOrderCommand) error {
		if !c.Args().Valid() {
			return nil
		}
		v := c.Args().Values

		source, err := c.Args().JSON()
		if err != nil {
			return err
		}
		order := &types.Order{
			Number:   v.Number,
			Status:   v.Status,
			Customer: v.Customer,
			Source:   source,
		}
		if !v.DueAt.IsZero() {
			due := v.DueAt.UTC()
			order.DueAt = &due
		}

		if _, err := m.deps.Orders.Create(dbctx.From(ctx), []*types.Order{order}); err != nil {
			if db.IsConflict(err) {
				c.AddError("number", "has already been taken")
				return nil
			}
			return err
		}
		c.Output = order
		return nil
	}, command.WithLogger(m.deps.Log))
}

func (m *Module) newHideOrder() *command.Definition[*contract.Bound, int64] {
	return command.Define("hide_order", hideOrderContract(), func(ctx context.Context, c *HideOrderCommand) error {
		if !c.Args().Valid() {
			c.SetSuccess(false)
			return nil
		}
		hidden, ok := c.Args().Get("hidden").AsBool()
		if !ok {
			c.AddError("hidden", "must be true or false")
			return nil
		}
		n, err := m.deps.Orders.SetHidden(dbctx.From(ctx), []string{c.Args().Get("number").String()}, hidden)
		if err != nil {
			return err
		}
		c.Output = n
		c.SetSuccess(n > 0)
		return nil
	}, command.WithLogger(m.deps.Log))
}
