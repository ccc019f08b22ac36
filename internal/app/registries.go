package app

import (
	"github.com/yungbote/neurobridge-commons/internal/commons/command"
	"github.com/yungbote/neurobridge-commons/internal/commons/presenter"
	"github.com/yungbote/neurobridge-commons/internal/commons/query"
	"github.com/yungbote/neurobridge-commons/internal/commons/registry"
	"github.com/yungbote/neurobridge-commons/internal/modules/orders"
	"github.com/yungbote/neurobridge-commons/internal/platform/logger"
)

// Registries hold every command, presenter and query by name. They are
// sealed once wiring finishes.
type Registries struct {
	Commands   *registry.Registry[command.Runner]
	Presenters *registry.Registry[*presenter.Definition]
	Queries    *registry.Registry[query.Runner]
}

func wireRegistries(log *logger.Logger, mods ...*orders.Module) (Registries, error) {
	log.Info("Wiring registries...")
	r := Registries{
		Commands:   registry.New[command.Runner](),
		Presenters: registry.New[*presenter.Definition](),
		Queries:    registry.New[query.Runner](),
	}
	for _, m := range mods {
		if err := m.Register(r.Commands, r.Presenters, r.Queries); err != nil {
			return Registries{}, err
		}
	}
	r.Commands.Seal()
	r.Presenters.Seal()
	r.Queries.Seal()
	log.Info("Registries sealed",
		"commands", r.Commands.Len(),
		"presenters", r.Presenters.Len(),
		"queries", r.Queries.Len(),
	)
	return r, nil
}
