package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/internmatch/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the matching form and the JSON API over HTTP",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "address to listen on (default :5000)")
	serveCmd.Flags().Bool("metrics", true, "expose prometheus metrics on /metrics")

	viper.BindPFlag("server.listen", serveCmd.Flags().Lookup("listen"))
	viper.BindPFlag("server.metrics", serveCmd.Flags().Lookup("metrics"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the internmatch server", zap.String("version", version))

	service, err := prepareService(ctx, config, logger)
	if err != nil {
		logger.Fatal("preparing the service", zap.Error(err))
	}

	srv, err := server.New(service, server.Config{Metrics: config.Server.Metrics}, logger)
	if err != nil {
		logger.Fatal("preparing the server", zap.Error(err))
	}

	if err := srv.ListenAndServe(ctx, config.Server.Listen); err != nil {
		logger.Fatal("serving", zap.Error(err))
	}

	logger.Info("server stopped")
}
