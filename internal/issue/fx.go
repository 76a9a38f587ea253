package issue

import (
	"go.uber.org/fx"

	"github.com/CCxPL/task-management-system/internal/issue/repository"
	"github.com/CCxPL/task-management-system/internal/issue/service"
)

var Module = fx.Module("issue.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
