package organization

import (
	"go.uber.org/fx"

	"github.com/CCxPL/task-management-system/internal/organization/repository"
	"github.com/CCxPL/task-management-system/internal/organization/service"
)

var Module = fx.Module("organization.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
