package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/bazelment/yoloswe/kiro-acp/internal/config"
	"github.com/bazelment/yoloswe/kiro-acp/kiro"
)

var errNotReady = errors.New("kiro-cli is not ready")

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that kiro-cli is installed and logged in",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		logger, closeLog := newLogger(cfg)
		defer closeLog()

		ctx, stop := probeContext(cmd)
		defer stop()
		return runDoctor(ctx, cmd.OutOrStdout(), newClient(cfg, logger), kiro.NewHostSettings(cfg.SettingsPath, nil))
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

type doctorClient interface {
	CLIPath() string
	Whoami(ctx context.Context) (*kiro.Account, error)
	ListAgents(ctx context.Context) ([]kiro.Agent, error)
}

type defaultAgentReader interface {
	DefaultAgent() (string, bool)
	Path() string
}

func runDoctor(ctx context.Context, w io.Writer, client doctorClient, settings defaultAgentReader) error {
	fmt.Fprintf(w, "cli:      %s\n", client.CLIPath())

	account, err := client.Whoami(ctx)
	if err != nil {
		fmt.Fprintf(w, "account:  %s\n", kiro.Advice(err))
		return errNotReady
	}
	fmt.Fprintf(w, "account:  %s", account.AccountType)
	if account.Email != "" {
		fmt.Fprintf(w, " %s", account.Email)
	}
	if account.Region != "" {
		fmt.Fprintf(w, " (%s)", account.Region)
	}
	fmt.Fprintln(w)

	if def, ok := settings.DefaultAgent(); ok {
		fmt.Fprintf(w, "default:  %s (%s)\n", def, settings.Path())
	} else {
		fmt.Fprintf(w, "default:  none (%s)\n", settings.Path())
	}

	agents, err := client.ListAgents(ctx)
	if err != nil {
		fmt.Fprintf(w, "agents:   %s\n", kiro.Advice(err))
		return errNotReady
	}
	fmt.Fprintf(w, "agents:   %d\n", len(agents))
	idWidth := 0
	for _, a := range agents {
		idWidth = max(idWidth, runewidth.StringWidth(a.ID))
	}
	for _, a := range agents {
		marker := " "
		if a.Default {
			marker = "*"
		}
		if a.Description == "" {
			fmt.Fprintf(w, "  %s %s\n", marker, a.ID)
			continue
		}
		fmt.Fprintf(w, "  %s %s  %s\n", marker, runewidth.FillRight(a.ID, idWidth), a.Description)
	}
	return nil
}
