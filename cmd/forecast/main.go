package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/app"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/config"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/pkg/logger"
	"github.com/urfave/cli/v2"
)

type ctxKey struct{}

func initApp(c *cli.Context) error {
	cfg := config.Load()
	logger.SetLevel(cfg.App.LogLevel)
	logger.SetFormat(cfg.App.LogFormat)

	c.Context = context.WithValue(c.Context, ctxKey{}, app.New(c.Context, cfg))
	return nil
}

func closeApp(c *cli.Context) error {
	if a, ok := c.Context.Value(ctxKey{}).(*app.App); ok && a != nil {
		return a.Close()
	}
	return nil
}

func appFrom(c *cli.Context) *app.App {
	return c.Context.Value(ctxKey{}).(*app.App)
}

func main() {
	cliApp := &cli.App{
		Name:   "forecast",
		Usage:  "Forecast reorder dates and quantities from purchase-order history",
		Before: initApp,
		After:  closeApp,
		Commands: []*cli.Command{
			runCommand(),
			forecastCommand(),
			recommendCommand(),
			batchesCommand(),
			calendarCommand(),
			exportCommand(),
			mappingCommand(),
			settingsCommand(),
			fetchCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		logger.Log.Error().Err(err).Msg("command failed")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
