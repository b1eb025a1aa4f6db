package root

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"solocraft/internal/engine"
	"solocraft/internal/ui"
)

func newTicketCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ticket",
		Short: "Spend a help or tutorial ticket (opens an insight debt)",
	}
	cmd.AddCommand(
		newUseTicketCmd(engine.TicketHelp, "Spend a help ticket: asking someone or an AI for help"),
		newUseTicketCmd(engine.TicketTutorial, "Spend a tutorial ticket: following a guide or tutorial"),
	)
	return cmd
}

func newUseTicketCmd(t engine.TicketType, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   t.Keyword() + " <purpose>",
		Short: short,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("purpose is required")
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

			res, err := svc.UseTicket(ctx, t, strings.Join(args, " "))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s Used 1 %s ticket, %s left\n", ui.IconTicket, t.Keyword(), ui.TicketCount(res.Remaining))
			fmt.Fprintf(out, "%s Insight debt %s opened; clear it with %s\n",
				ui.IconDebt,
				ui.Muted.Render(shortID(res.DebtID)),
				ui.Key.Render("solocraft debt clear "+shortID(res.DebtID)+" <what you learned>"))
			return nil
		},
	}

	return cmd
}
