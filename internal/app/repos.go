package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-commons/internal/data/repos"
	"github.com/yungbote/neurobridge-commons/internal/platform/logger"
)

type Repos struct {
	Orders repos.OrderRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Orders: repos.NewOrderRepo(db, log),
	}
}
