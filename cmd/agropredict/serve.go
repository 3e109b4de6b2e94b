package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/idlab-discover/agropredict-cli/internal/advisor"
	"github.com/idlab-discover/agropredict-cli/internal/engine"
	"github.com/idlab-discover/agropredict-cli/internal/server"
)

var (
	serveAddr     string
	serveWarm     bool
	serveLogLevel string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON prediction API",
	Long:  "Serves GET /healthz, /api/summary, /api/metrics, /api/dataset.csv and POST /api/predict. Models train on the first request unless --warm is set.",
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := resolveLogLevel("serve")
		if err != nil {
			return err
		}

		wireLogging(level, cmd.ErrOrStderr())

		config := zap.NewProductionConfig()
		switch level {
		case "debug":
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		case "quiet":
			config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		}
		logger, err := config.Build()
		if err != nil {
			return err
		}
		defer logger.Sync()

		ds, err := loadDataset()
		if err != nil {
			return err
		}
		opts, err := trainOptions()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		adv, err := advisor.New(ctx, advisorConfig())
		if err != nil {
			logger.Warn("advisor disabled", zap.Error(err))
			adv = advisor.Disabled{}
		}
		eng := engine.New(ds, opts)
		if viper.GetBool("serve.warm") {
			logger.Info("training models", zap.Int("rows", ds.Len()), zap.Int("trees", opts.Trees))
			if _, err := eng.Result(ctx); err != nil {
				return err
			}
		}

		logger.Info("starting server",
			zap.String("dataset", ds.FingerprintHex()),
			zap.Bool("advisor", adv.Enabled()))
		return server.New(eng, adv, logger).Run(ctx, viper.GetString("serve.addr"))
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", server.DefaultAddr, "Listen address")
	serveCmd.Flags().BoolVar(&serveWarm, "warm", false, "Train the models before accepting requests")
	serveCmd.Flags().StringVar(&serveLogLevel, "log-level", "", "Log level: quiet|standard|debug")

	viper.BindPFlag("serve.addr", serveCmd.Flags().Lookup("addr"))
	viper.BindPFlag("serve.warm", serveCmd.Flags().Lookup("warm"))
	viper.BindPFlag("serve.log-level", serveCmd.Flags().Lookup("log-level"))
}
