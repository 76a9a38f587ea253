package auth

import (
	"go.uber.org/fx"

	"github.com/CCxPL/task-management-system/internal/auth/repository"
	"github.com/CCxPL/task-management-system/internal/auth/service"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
