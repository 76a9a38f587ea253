package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/CCxPL/task-management-system/internal/migration"
	"github.com/CCxPL/task-management-system/internal/observability"
	"github.com/CCxPL/task-management-system/internal/server"
	"github.com/CCxPL/task-management-system/pkg/db"
)

func main() {
	app := fx.New(
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
