package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"solocraft/internal/engine"
	"solocraft/internal/ui"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show level, XP, tickets and open debts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			p, err := svc.GetUserProgress(ctx)
			if err != nil {
				return err
			}
			toNext := max(0, p.NextLevelXP-p.XP)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconSparkle, "SoloCraft Status"))
			fmt.Fprintln(out, ui.LabelValue("Level", p.Level))
			fmt.Fprintln(out, ui.LabelValue("XP", fmt.Sprintf("%d (next at %d, %d to go)", p.XP, p.NextLevelXP, toNext)))
			if p.ProjectID != nil {
				fmt.Fprintln(out, ui.LabelValue("Project", fmt.Sprintf("%s %s", p.ProjectName, ui.Muted.Render("("+shortID(*p.ProjectID)+")"))))
			} else {
				fmt.Fprintln(out, ui.LabelValue("Project", ui.Muted.Render("none (global tickets)")))
			}
			fmt.Fprintln(out, "")

			fmt.Fprintln(out, ui.H2.Render(ui.IconTicket+" Tickets"))
			fmt.Fprintf(out, "- %s %s\n", ui.Key.Render("Help:"), ui.TicketCount(p.HelpTickets))
			fmt.Fprintf(out, "- %s %s\n", ui.Key.Render("Tutorial:"), ui.TicketCount(p.TutorialTickets))
			next := p.LastTicketReset.Add(engine.TicketResetInterval)
			fmt.Fprintf(out, "- %s %s\n", ui.Key.Render("Refill:"), ui.Muted.Render(next.Local().Format("Mon Jan 2 15:04")))
			fmt.Fprintln(out, "")

			active, err := svc.ListMissions(ctx, engine.MissionFilter{Status: engine.MissionActive})
			if err != nil {
				return err
			}
			debts, err := svc.ActiveDebts(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, ui.H2.Render(ui.IconMission+" Open"))
			fmt.Fprintf(out, "- %s %d\n", ui.Key.Render("Active missions:"), len(active))
			debtCount := fmt.Sprint(len(debts))
			if len(debts) > 0 {
				debtCount = ui.Warn.Render(debtCount)
			}
			fmt.Fprintf(out, "- %s %s\n", ui.Key.Render("Insight debts:"), debtCount)
			if len(p.Badges) > 0 {
				fmt.Fprintln(out, "")
				fmt.Fprintln(out, ui.H2.Render(ui.IconTrophy+" Badges"))
				for _, b := range p.Badges {
					fmt.Fprintf(out, "- %s\n", ui.Gold.Render(b))
				}
			}
			return nil
		},
	}

	return cmd
}
