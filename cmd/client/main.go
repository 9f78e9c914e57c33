package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/habitkeeper/internal/buildinfo"
	"github.com/dmitrijs2005/habitkeeper/internal/client/cli"
	"github.com/dmitrijs2005/habitkeeper/internal/client/config"
	"github.com/dmitrijs2005/habitkeeper/internal/filex"
	"github.com/dmitrijs2005/habitkeeper/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	if _, err := filex.EnsureParentDir(cfg.LogFile); err != nil {
		log.Fatalf("%v", err)
	}
	logger := logging.NewFileLogger(cfg.LogFile, slog.LevelInfo)

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

	if err := app.Close(context.Background()); err != nil {
		logger.Error(context.Background(), "shutdown", "error", err)
	}
}
