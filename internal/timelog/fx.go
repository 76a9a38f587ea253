package timelog

import (
	"go.uber.org/fx"

	"github.com/CCxPL/task-management-system/internal/timelog/repository"
	"github.com/CCxPL/task-management-system/internal/timelog/service"
)

var Module = fx.Module("timelog.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
