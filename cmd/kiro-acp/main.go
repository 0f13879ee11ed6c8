// Command kiro-acp serves the Agent Client Protocol on stdio, backed by
// kiro-cli.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/bazelment/yoloswe/kiro-acp/acp"
	"github.com/bazelment/yoloswe/kiro-acp/bridge"
	"github.com/bazelment/yoloswe/kiro-acp/internal/config"
	"github.com/bazelment/yoloswe/kiro-acp/kiro"
	"github.com/bazelment/yoloswe/kiro-acp/transcript"
)

// version is set at link time.
var version = "dev"

var (
	configPath string
	logFile    string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "kiro-acp",
	Short: "ACP agent backed by kiro-cli",
	Long: `kiro-acp speaks the Agent Client Protocol over stdin/stdout and runs
each prompt as a kiro-cli chat turn, streaming its transcript back as
session updates.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	RunE:          runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: $KIRO_ACP_CONFIG or ~/.config/kiro-acp/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write logs to this file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "kiro-acp:", err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, closeLog := newLogger(cfg)
	defer closeLog()

	strategy, err := transcript.ParseStrategy(cfg.Strategy)
	if err != nil {
		return err
	}

	client := newClient(cfg, logger)
	agent := bridge.NewAgent(bridge.Config{
		Checker:       client,
		Lister:        client,
		Settings:      kiro.NewHostSettings(cfg.SettingsPath, client),
		Launcher:      bridge.KiroLauncher{Client: client},
		Logger:        logger,
		Mode:          cfg.Agent,
		Model:         cfg.Model,
		TrustTools:    cfg.TrustTools,
		TrustAllTools: cfg.TrustAllTools,
		Wrap:          cfg.Wrap,
		Verbose:       cfg.Verbose,
		Strategy:      strategy,
		Version:       version,
	})

	if term.IsTerminal(int(os.Stdin.Fd())) {
		logger.Warn("stdin is a terminal; kiro-acp expects an ACP client on stdin/stdout")
	}

	// stdout carries the protocol; nothing else may write to it.
	conn := acp.NewConn(agent, os.Stdin, os.Stdout, acp.WithLogger(logger))
	agent.SetNotifier(conn)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("serving", "version", version, "cli", client.CLIPath(), "strategy", strategy)
	err = conn.Serve(ctx)
	agent.Wait()
	if err != nil && ctx.Err() == nil {
		return err
	}
	logger.Info("shutdown")
	return nil
}

func newClient(cfg *config.Config, logger *slog.Logger) *kiro.Client {
	return kiro.NewClient(
		kiro.WithCLIPath(cfg.CLIPath),
		kiro.WithLogger(logger),
	)
}

// newLogger creates a structured logger on stderr, tee'd to the configured
// log file when one is set. The returned func closes the file.
func newLogger(cfg *config.Config) (*slog.Logger, func()) {
	level := cfg.Level()
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	path := logFile
	if path == "" {
		path = cfg.LogFile
	}
	if path == "" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), func() {}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		logger.Warn("cannot open log file, logging to stderr only", "path", path, "error", err)
		return logger, func() {}
	}
	w := io.MultiWriter(os.Stderr, f)
	return slog.New(slog.NewTextHandler(w, opts)), func() { f.Close() }
}

// probeContext bounds the one-shot kiro-cli calls made by subcommands.
func probeContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt)
}
