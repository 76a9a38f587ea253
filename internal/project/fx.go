package project

import (
	"go.uber.org/fx"

	"github.com/CCxPL/task-management-system/internal/project/repository"
	"github.com/CCxPL/task-management-system/internal/project/service"
)

var Module = fx.Module("project.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
