package sprint

import (
	"go.uber.org/fx"

	"github.com/CCxPL/task-management-system/internal/sprint/repository"
	"github.com/CCxPL/task-management-system/internal/sprint/service"
)

var Module = fx.Module("sprint.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
