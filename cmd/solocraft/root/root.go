package root

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"solocraft/internal/config"
	"solocraft/internal/logging"
	"solocraft/internal/ui"
)

const Version = "0.1.0"

var (
	cfgPath string
	verbose bool

	cfg    = config.DefaultConfig()
	logger = zap.NewNop()
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "solocraft",
		Short:         "SoloCraft: missions, XP and insight debts for solo learners",
		Long:          "SoloCraft turns self-study into missions that pay XP, weekly help/tutorial tickets, and insight debts you clear by writing down what you learned.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if err := c.Validate(); err != nil {
				return err
			}
			l, err := logging.New(c.Logging, verbose)
			if err != nil {
				return err
			}
			cfg, logger = c, l
			logger.Debug("config loaded", zap.String("path", cfgPath), zap.String("backend", cfg.Backend))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultPath(), "Config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	rootCmd.AddCommand(
		newStatusCmd(),
		newMissionCmd(),
		newTicketCmd(),
		newDebtCmd(),
		newProjectCmd(),
		newBoardCmd(),
		newServeCmd(),
		newConfigCmd(),
	)
	return rootCmd
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
