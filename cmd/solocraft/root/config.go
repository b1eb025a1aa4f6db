package root

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"solocraft/internal/ui"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or write the config file",
	}
	cmd.AddCommand(newConfigInitCmd(), newConfigShowCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				if _, err := os.Stat(cfgPath); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", cfgPath)
				} else if !errors.Is(err, fs.ErrNotExist) {
					return err
				}
			}
			if err := cfg.Save(cfgPath); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Good.Render(ui.IconDone+" Wrote "+cfgPath))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconInfo, "Config "+ui.Muted.Render(cfgPath)))
			fmt.Fprintln(out, ui.LabelValue("Backend", cfg.Backend))
			fmt.Fprintln(out, ui.LabelValue("Data dir", cfg.DataDir))
			fmt.Fprintln(out, ui.LabelValue("Database", cfg.DBPath))
			fmt.Fprintln(out, ui.LabelValue("Tickets", fmt.Sprintf("%d help, %d tutorial", cfg.Tickets.Help, cfg.Tickets.Tutorial)))
			fmt.Fprintln(out, ui.LabelValue("Log", fmt.Sprintf("%s %s -> %s", cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.File)))
			fmt.Fprintln(out, ui.LabelValue("Server", cfg.Server.Addr))
			return nil
		},
	}

	return cmd
}
