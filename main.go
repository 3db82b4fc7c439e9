package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/a2n2k3p4/topup-gateway/config"
	"github.com/a2n2k3p4/topup-gateway/docs"
	"github.com/a2n2k3p4/topup-gateway/handlers"
	"github.com/a2n2k3p4/topup-gateway/observability"
	"github.com/a2n2k3p4/topup-gateway/reseller"
)

func main() {
	config.LoadDotEnv()
	observability.InitLogger(logrus.InfoLevel)

	app := &cli.App{
		Name:    "topup-gateway",
		Usage:   "validate mobile charge requests and forward them to the reseller",
		Version: docs.Version,
		Flags:   config.Flags(),
		Action:  serve,
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("Server stopped")
	}
}

func serve(c *cli.Context) error {
	cfg, err := config.FromCLI(c)
	if err != nil {
		return err
	}

	observability.InitLogger(cfg.LogLevel)

	tp, err := observability.ConfigureTraceProvider(cfg.JaegerEndpoint)
	if err != nil {
		return err
	}

	app := handlers.NewApp(reseller.NewClient(cfg.Reseller))

	ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logrus.WithField("addr", cfg.HTTPAddr).Info("Server starting...")
		return app.Listen(cfg.HTTPAddr)
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Reseller.Timeout+5*time.Second)
		defer cancel()

		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logrus.WithError(err).Error("Shutting down http server")
		}
		return observability.ShutdownTraceProvider(shutdownCtx, tp)
	})

	return g.Wait()
}
