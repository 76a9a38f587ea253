package comment

import (
	"go.uber.org/fx"

	"github.com/CCxPL/task-management-system/internal/comment/repository"
	"github.com/CCxPL/task-management-system/internal/comment/service"
)

var Module = fx.Module("comment.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
