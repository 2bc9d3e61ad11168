package main

import (
	"github.com/caseweave/backend/internal/server"
	"github.com/caseweave/backend/internal/util"
	"github.com/caseweave/backend/pkg/logger"
	"github.com/caseweave/backend/pkg/logger/console"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}
