package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-commons/internal/data/repos/orders"
	"github.com/yungbote/neurobridge-commons/internal/platform/logger"
)

type OrderRepo = orders.OrderRepo

func NewOrderRepo(db *gorm.DB, log *logger.Logger) OrderRepo {
	return orders.NewOrderRepo(db, log)
}
