package root

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"solocraft/internal/ui"
)

func newDebtCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "debt",
		Short: "List and clear insight debts",
	}
	cmd.AddCommand(newDebtListCmd(), newDebtClearCmd())
	return cmd
}

func newDebtListCmd() *cobra.Command {
	var cleared bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List open (or cleared) insight debts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			list := svc.ActiveDebts
			title := "Open insight debts"
			if cleared {
				list = svc.ClearedDebts
				title = "Cleared insight debts"
			}
			debts, err := list(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconDebt, title))
			if len(debts) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(none)"))
				return nil
			}
			for _, d := range debts {
				fmt.Fprintf(out, "- %s [%s] %s %s\n",
					ui.Muted.Render(shortID(d.ID)),
					d.TicketType,
					d.UsedFor,
					ui.Muted.Render(d.CreatedAt.Local().Format("2006-01-02")))
				if d.InsightEntry != nil {
					fmt.Fprintf(out, "    %s %s\n", ui.Key.Render("insight:"), *d.InsightEntry)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&cleared, "cleared", false, "Show cleared debts with their insights")
	return cmd
}

func newDebtClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear <id> <insight>",
		Short: "Clear a debt by writing down what you learned",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				return errors.New("id and insight text are required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := resolveDebtID(ctx, svc, args[0])
			if err != nil {
				return err
			}
			if err := svc.WriteInsight(ctx, id, strings.Join(args[1:], " ")); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Good.Render(ui.IconDone+" Insight recorded, debt cleared"))
			return nil
		},
	}

	return cmd
}
