package root

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"solocraft/internal/engine"
	"solocraft/internal/storage"
	"solocraft/internal/ui"
)

func newMissionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "mission",
		Aliases: []string{"m"},
		Short:   "Create, list and resolve missions",
	}
	cmd.AddCommand(
		newMissionAddCmd(),
		newMissionListCmd(),
		newMissionDoneCmd(),
		newMissionFailCmd(),
		newMissionRmCmd(),
	)
	return cmd
}

func newMissionAddCmd() *cobra.Command {
	var (
		difficulty  string
		rewards     int
		description string
		constraints string
		punishment  string
		project     string
		global      bool
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a mission",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("title is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if global && project != "" {
				return errors.New("--global and --project are mutually exclusive")
			}
			d, err := engine.ParseDifficulty(difficulty)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			in := engine.CreateMissionInput{
				Title:      strings.Join(args, " "),
				Difficulty: d,
				Rewards:    rewards,
			}
			if cmd.Flags().Changed("desc") {
				in.Description = &description
			}
			if cmd.Flags().Changed("constraints") {
				in.Constraints = &constraints
			}
			if cmd.Flags().Changed("punishment") {
				in.Punishment = &punishment
			}
			switch {
			case global:
				none := ""
				in.ProjectID = &none
			case project != "":
				pid, err := resolveProjectID(ctx, svc, project)
				if err != nil {
					return err
				}
				in.ProjectID = &pid
			}

			res, err := svc.CreateMission(ctx, in)
			if err != nil {
				return err
			}
			line := fmt.Sprintf("%s Mission added %s", ui.IconPlus, ui.Muted.Render("("+shortID(res.MissionID)+")"))
			if res.ProjectID != nil {
				line += ui.Muted.Render(" in project " + shortID(*res.ProjectID))
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Good.Render(line))
			return nil
		},
	}

	cmd.Flags().StringVarP(&difficulty, "difficulty", "d", "medium", "Difficulty (easy|medium|hard)")
	cmd.Flags().IntVarP(&rewards, "xp", "x", 50, "XP awarded on completion")
	cmd.Flags().StringVar(&description, "desc", "", "Description")
	cmd.Flags().StringVar(&constraints, "constraints", "", "Rules the mission must be done under")
	cmd.Flags().StringVarP(&punishment, "punishment", "p", "", `Punishment on failure, e.g. "lose 20 xp" or "lose a help ticket"`)
	cmd.Flags().StringVar(&project, "project", "", "Project id (defaults to the current project)")
	cmd.Flags().BoolVar(&global, "global", false, "Do not attach the mission to any project")

	return cmd
}

func newMissionListCmd() *cobra.Command {
	var (
		active    bool
		completed bool
		failed    bool
		project   string
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List missions",
		RunE: func(cmd *cobra.Command, args []string) error {
			var f engine.MissionFilter
			set := 0
			for _, opt := range []struct {
				on     bool
				status engine.MissionStatus
			}{{active, engine.MissionActive}, {completed, engine.MissionCompleted}, {failed, engine.MissionFailed}} {
				if opt.on {
					f.Status = opt.status
					set++
				}
			}
			if set > 1 {
				return errors.New("pick at most one of --active, --completed, --failed")
			}

			ctx := cmd.Context()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if project != "" {
				pid, err := resolveProjectID(ctx, svc, project)
				if err != nil {
					return err
				}
				f.ProjectID = &pid
			}

			missions, err := svc.ListMissions(ctx, f)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconMission, "Missions"))
			if len(missions) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(none)"))
				return nil
			}
			for _, m := range missions {
				printMission(cmd, m)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&active, "active", false, "Only active missions")
	cmd.Flags().BoolVar(&completed, "completed", false, "Only completed missions")
	cmd.Flags().BoolVar(&failed, "failed", false, "Only failed missions")
	cmd.Flags().StringVar(&project, "project", "", "Only missions of this project")

	return cmd
}

func printMission(cmd *cobra.Command, m storage.Mission) {
	status := string(engine.StatusOf(m))
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s [%s] %s %s\n",
		ui.StatusIcon(status),
		ui.Muted.Render(shortID(m.ID)),
		m.Title,
		ui.DifficultyText(m.Difficulty),
		ui.Gold.Render(fmt.Sprintf("+%d XP", m.Rewards)),
		ui.StatusText(status))
	if m.Constraints != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "    %s %s\n", ui.Key.Render("rules:"), *m.Constraints)
	}
	if m.Punishment != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "    %s %s\n", ui.Key.Render("on fail:"), *m.Punishment)
	}
}

func newMissionDoneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "done <id>",
		Short: "Complete a mission and collect its XP",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("id is required")
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

			id, err := resolveMissionID(ctx, svc, args[0])
			if err != nil {
				return err
			}
			res, err := svc.CompleteMission(ctx, id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Good.Render(fmt.Sprintf("%s Mission complete: +%d XP", ui.IconDone, res.XP)))
			if res.LevelUp {
				fmt.Fprintf(out, "%s %s Level %d → %d\n", ui.IconTrophy, ui.BadgeLevelUp, res.LevelBefore, res.NewLevel)
			}
			return nil
		},
	}

	return cmd
}

func newMissionFailCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fail <id>",
		Short: "Mark a mission failed and take its punishment",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("id is required")
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

			id, err := resolveMissionID(ctx, svc, args[0])
			if err != nil {
				return err
			}
			res, err := svc.FailMission(ctx, id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Bad.Render(ui.IconFailed+" Mission failed"))
			if len(res.Effects) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("No punishment."))
			}
			for _, e := range res.Effects {
				fmt.Fprintf(out, "- %s\n", ui.Warn.Render(e))
			}
			fmt.Fprintln(out, ui.LabelValue("Now", fmt.Sprintf("Level %d, %d XP", res.Level, res.XPAfter)))
			return nil
		},
	}

	return cmd
}

func newMissionRmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a mission (progress is kept)",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("id is required")
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

			id, err := resolveMissionID(ctx, svc, args[0])
			if err != nil {
				return err
			}
			if err := svc.DeleteMission(ctx, id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("Deleted mission "+shortID(id)))
			return nil
		},
	}

	return cmd
}
