package workflow

import (
	"go.uber.org/fx"

	"github.com/CCxPL/task-management-system/internal/workflow/repository"
	"github.com/CCxPL/task-management-system/internal/workflow/service"
)

var Module = fx.Module("workflow.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
