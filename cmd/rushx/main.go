// Command rushx is a terminal client for the RushExpress delivery
// marketplace: login, order browsing, live tracking and chat against a
// running backend.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	rushx "github.com/woedy/rush-express-super"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "rushx",
		Short:         "RushExpress delivery marketplace client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	setupFlags(rootCmd)

	rootCmd.AddCommand(
		newLoginCmd(),
		newLogoutCmd(),
		newMeCmd(),
		newOrdersCmd(),
		newQuoteCmd(),
		newTrackCmd(),
		newChatCmd(),
		newAvailabilityCmd(),
		newEarningsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func setupFlags(cmd *cobra.Command) {
	rushx.ApplyDefaults(viper.GetViper())
	defaults := rushx.NewViper()

	cmd.PersistentFlags().String("api-url", defaults.GetString("api.base_url"), "REST API base URL")
	cmd.PersistentFlags().String("ws-url", defaults.GetString("ws.base_url"), "WebSocket base URL")
	cmd.PersistentFlags().String("app", defaults.GetString("app.name"), "App name scoping the stored session (customer, merchant, rider, admin)")
	cmd.PersistentFlags().String("token-path", defaults.GetString("token.path"), "Token store file path")
	cmd.PersistentFlags().String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")

	bindFlag(cmd, "api.base_url", "api-url")
	bindFlag(cmd, "ws.base_url", "ws-url")
	bindFlag(cmd, "app.name", "app")
	bindFlag(cmd, "token.path", "token-path")
	bindFlag(cmd, "log.level", "log-level")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

// app bundles everything a subcommand needs.
type app struct {
	cfg     rushx.Config
	logger  *zap.Logger
	store   *rushx.TokenStore
	session *rushx.Session
	client  *rushx.Client
}

func newApp() (*app, error) {
	cfg, err := rushx.LoadConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	store, err := rushx.NewTokenStore(cfg.TokenPath)
	if err != nil {
		return nil, err
	}

	session := rushx.NewSession(store, cfg.AppName, logger)
	client := rushx.NewClient(
		rushx.WithBaseURL(cfg.APIBaseURL),
		rushx.WithWSBaseURL(cfg.WSBaseURL),
		rushx.WithTokenSource(session.AccessToken),
		rushx.WithLogger(logger),
		rushx.WithNotifier(rushx.NotifierFunc(printNotice)),
	)
	session.Bind(client)

	return &app{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		session: session,
		client:  client,
	}, nil
}

func printNotice(n rushx.Notice) {
	fmt.Fprintf(os.Stderr, "%s: %s\n", n.Title, n.Description)
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()

	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	case "info", "":
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	case "warn", "warning":
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	case "error":
		cfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	return cfg.Build()
}
