package orders

import (
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-commons/internal/data/db"
	types "github.com/yungbote/neurobridge-commons/internal/domain/orders"
	"github.com/yungbote/neurobridge-commons/internal/pkg/dbctx"
	"github.com/yungbote/neurobridge-commons/internal/platform/logger"
)

type OrderRepo interface {
	Create(dbc dbctx.Context, orders []*types.Order) ([]*types.Order, error)
	GetByNumbers(dbc dbctx.Context, numbers []string) ([]*types.Order, error)
	SetHidden(dbc dbctx.Context, numbers []string, hidden bool) (int64, error)
	FullDeleteByNumbers(dbc dbctx.Context, numbers []string) error
}

type orderRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOrderRepo(db *gorm.DB, baseLog *logger.Logger) OrderRepo {
	repoLog := logger.OrNop(baseLog).With("repo", "OrderRepo")
	return &orderRepo{db: db, log: repoLog}
}

// Create inserts orders. A duplicate number comes back tagged ErrConflict.
func (r *orderRepo) Create(dbc dbctx.Context, orders []*types.Order) ([]*types.Order, error) {
	transaction := dbc.DB(r.db)

	if len(orders) == 0 {
		return []*types.Order{}, nil
	}

	if err := transaction.Create(&orders).Error; err != nil {
		return nil, db.Classify(err)
	}

	return orders, nil
}

func (r *orderRepo) GetByNumbers(dbc dbctx.Context, numbers []string) ([]*types.Order, error) {
	transaction := dbc.DB(r.db)

	var results []*types.Order

	if len(numbers) == 0 {
		return results, nil
	}

	if err := transaction.
		Where("number IN ?", numbers).
		Order("number ASC").
		Find(&results).Error; err != nil {
		return nil, db.Classify(err)
	}

	return results, nil
}

// SetHidden returns the number of orders updated.
func (r *orderRepo) SetHidden(dbc dbctx.Context, numbers []string, hidden bool) (int64, error) {
	transaction := dbc.DB(r.db)

	if len(numbers) == 0 {
		return 0, nil
	}

	res := transaction.Model(&types.Order{}).
		Where("number IN ?", numbers).
		Update("hidden", hidden)
	if res.Error != nil {
		return 0, db.Classify(res.Error)
	}
	r.log.Debug("orders hidden updated", "hidden", hidden, "rows", res.RowsAffected)

	return res.RowsAffected, nil
}

func (r *orderRepo) FullDeleteByNumbers(dbc dbctx.Context, numbers []string) error {
	transaction := dbc.DB(r.db)

	if len(numbers) == 0 {
		return nil
	}

	if err := transaction.
		Where("number IN ?", numbers).
		Delete(&types.Order{}).Error; err != nil {
		return db.Classify(err)
	}

	return nil
}
