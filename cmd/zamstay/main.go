package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/zamstay/zamstay/internal/clock"
	"github.com/zamstay/zamstay/internal/config"
	"github.com/zamstay/zamstay/internal/migration"
	"github.com/zamstay/zamstay/internal/observability"
	"github.com/zamstay/zamstay/internal/scheduler"
	"github.com/zamstay/zamstay/internal/server"
	"github.com/zamstay/zamstay/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		// Functional domains
		migration.Module,
		server.Module,
		scheduler.Module,
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
