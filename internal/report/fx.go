package report

import (
	"go.uber.org/fx"

	"github.com/CCxPL/task-management-system/internal/providers/pdf"
)

var Module = fx.Module("report.service",
	fx.Provide(pdf.New),
	fx.Provide(NewService),
)
