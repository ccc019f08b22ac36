package orders

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-commons/internal/commons/args"
	"github.com/yungbote/neurobridge-commons/internal/commons/contract"
	"github.com/yungbote/neurobridge-commons/internal/commons/query"
	types "github.com/yungbote/neurobridge-commons/internal/domain/orders"
)

// Count names reported by the order_counts query.
const (
	CountWIP       = "wip"
	CountCompleted = "completed"
	CountHold      = "hold"
	CountCanceled  = "canceled"
	CountOverdue   = "overdue"
	CountHidden    = "hidden"
)

type (
	OrderIndexQuery  = query.Query[*args.Args[OrderIndexArgs]]
	OrderCountsQuery = query.Query[*contract.Bound]
)

func (m *Module) newOrderIndex(schema *args.Schema[OrderIndexArgs]) *query.Definition[*args.Args[OrderIndexArgs]] {
	return query.Define("order_index", schema, func(ctx context.Context, q *OrderIndexQuery) error {
		// Invalid arguments match nothing. Callers read q.Args().Messages().
		if !q.Args().Valid() {
			q.Scope = q.Scope.Where("1 = 0")
			return nil
		}
		v := q.Args().Values
		if !v.ShowHidden {
			q.Scope = q.Scope.Where("orders.hidden = ?", false)
		}
		if v.Status != "" {
			q.Scope = q.Scope.Where("orders.status = ?", v.Status)
		}
		if v.Search != "" {
			like := "%" + v.Search + "%"
			q.Scope = q.Scope.Where("orders.number LIKE ? OR orders.customer LIKE ?", like, like)
		}
		q.OrderBy("orders."+v.Sort, v.Direction)
		q.Paginate(v.Page, v.PageSize)
		return nil
	}, query.WithDefaultScope(query.ModelScope(m.deps.DB, &types.Order{})), query.WithLogger(m.deps.Log))
}

var statusCounts = []struct{ name, status string }{
	{CountWIP, types.StatusWIP},
	{CountCompleted, types.StatusCompleted},
	{CountHold, types.StatusHold},
	{CountCanceled, types.StatusCanceled},
}

// Count scopes use inline literals because each sub-query is rendered to SQL
// text before the union runs.
func (m *Module) newOrderCounts() *query.Definition[*contract.Bound] {
	return query.Define("order_counts", nil, func(ctx context.Context, q *OrderCountsQuery) error {
		agg := q.AggregateQueries()
		visible := q.Scope.Session(&gorm.Session{}).
			Where("orders.hidden = false").
			Session(&gorm.Session{})
		for _, sc := range statusCounts {
			if err := agg.Add(sc.name, visible.Where(statusIs(sc.status))); err != nil {
				return err
			}
		}
		overdue := visible.
			Where("orders.due_at IS NOT NULL AND orders.due_at < CURRENT_TIMESTAMP").
			Where(fmt.Sprintf("orders.status NOT IN ('%s', '%s')", types.StatusCompleted, types.StatusCanceled))
		if err := agg.Add(CountOverdue, overdue); err != nil {
			return err
		}
		return agg.Add(CountHidden, q.Scope.Session(&gorm.Session{}).Where("orders.hidden = true"))
	}, query.WithDefaultScope(query.ModelScope(m.deps.DB, &types.Order{})), query.WithLogger(m.deps.Log))
}

func statusIs(status string) string {
	return fmt.Sprintf("orders.status = '%s'", status)
}
