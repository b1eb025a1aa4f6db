package root

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"solocraft/internal/engine"
	"solocraft/internal/ui"
)

func newProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"p"},
		Short:   "Manage projects with their own ticket budgets",
	}
	cmd.AddCommand(
		newProjectAddCmd(),
		newProjectUpdateCmd(),
		newProjectRmCmd(),
		newProjectUseCmd(),
		newProjectListCmd(),
		newProjectCurrentCmd(),
	)
	return cmd
}

func exactlyOneArg(what string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return errors.New(what + " is required")
		}
		return nil
	}
}

func newProjectAddCmd() *cobra.Command {
	var (
		description string
		helpLimit   int
		tutLimit    int
		use         bool
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a project",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("name is required")
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

			in := engine.CreateProjectInput{Name: strings.Join(args, " "), MakeCurrent: use}
			if cmd.Flags().Changed("desc") {
				in.Description = &description
			}
			if cmd.Flags().Changed("help-limit") {
				in.HelpTicketLimit = &helpLimit
			}
			if cmd.Flags().Changed("tutorial-limit") {
				in.TutorialTicketLimit = &tutLimit
			}
			id, err := svc.CreateProject(ctx, in)
			if err != nil {
				return err
			}
			line := fmt.Sprintf("%s Project created %s", ui.IconProject, ui.Muted.Render("("+shortID(id)+")"))
			if use {
				line += " and selected"
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Good.Render(line))
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "desc", "", "Description")
	cmd.Flags().IntVar(&helpLimit, "help-limit", 0, "Weekly help tickets (defaults to the configured quota)")
	cmd.Flags().IntVar(&tutLimit, "tutorial-limit", 0, "Weekly tutorial tickets (defaults to the configured quota)")
	cmd.Flags().BoolVar(&use, "use", false, "Make it the current project")
	return cmd
}

func newProjectUpdateCmd() *cobra.Command {
	var (
		name        string
		description string
		helpLimit   int
		tutLimit    int
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename a project or change its ticket limits",
		Args:  exactlyOneArg("id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := resolveProjectID(ctx, svc, args[0])
			if err != nil {
				return err
			}
			in := engine.UpdateProjectInput{ID: id}
			if cmd.Flags().Changed("name") {
				in.Name = &name
			}
			if cmd.Flags().Changed("desc") {
				in.Description = &description
			}
			if cmd.Flags().Changed("help-limit") {
				in.HelpTicketLimit = &helpLimit
			}
			if cmd.Flags().Changed("tutorial-limit") {
				in.TutorialTicketLimit = &tutLimit
			}
			if err := svc.UpdateProject(ctx, in); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Good.Render(ui.IconDone+" Project updated"))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&description, "desc", "", "New description (empty clears it)")
	cmd.Flags().IntVar(&helpLimit, "help-limit", 0, "Weekly help tickets")
	cmd.Flags().IntVar(&tutLimit, "tutorial-limit", 0, "Weekly tutorial tickets")
	return cmd
}

func newProjectRmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a project (its missions are kept)",
		Args:    exactlyOneArg("id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := resolveProjectID(ctx, svc, args[0])
			if err != nil {
				return err
			}
			if err := svc.DeleteProject(ctx, id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("Deleted project "+shortID(id)))
			return nil
		},
	}

	return cmd
}

func newProjectUseCmd() *cobra.Command {
	var none bool

	cmd := &cobra.Command{
		Use:   "use [id]",
		Short: "Select the project tickets are spent from",
		Args: func(cmd *cobra.Command, args []string) error {
			if none && len(args) > 0 {
				return errors.New("--none takes no id")
			}
			if !none && len(args) != 1 {
				return errors.New("id is required (or --none)")
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

			id := ""
			if !none {
				if id, err = resolveProjectID(ctx, svc, args[0]); err != nil {
					return err
				}
			}
			if err := svc.SetCurrentProject(ctx, id); err != nil {
				return err
			}
			if id == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Using global tickets")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Using project "+shortID(id))
			return nil
		},
	}

	cmd.Flags().BoolVar(&none, "none", false, "Clear the selection and use global tickets")
	return cmd
}

func printProject(cmd *cobra.Command, p engine.ProjectView) {
	marker := "  "
	if p.Current {
		marker = ui.Gold.Render("* ")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s%s %s %s\n",
		marker,
		ui.Muted.Render(shortID(p.ID)),
		p.Name,
		ui.Muted.Render(fmt.Sprintf("(%d missions)", p.MissionCount)))
	fmt.Fprintf(cmd.OutOrStdout(), "    %s %s/%d  %s %s/%d\n",
		ui.Key.Render("help:"), ui.TicketCount(p.HelpTicketsRemaining), p.HelpTicketLimit,
		ui.Key.Render("tutorial:"), ui.TicketCount(p.TutorialTicketsRemaining), p.TutorialTicketLimit)
	if p.Description != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "    %s\n", ui.Muted.Render(*p.Description))
	}
}

func newProjectListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			projects, err := svc.ListProjects(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconProject, "Projects"))
			if len(projects) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("(none)"))
			}
			for _, p := range projects {
				printProject(cmd, p)
			}
			return nil
		},
	}

	return cmd
}

func newProjectCurrentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "current",
		Short: "Show the selected project",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			cur, err := svc.CurrentProject(ctx)
			if err != nil {
				return err
			}
			if cur == nil {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("No project selected (global tickets)"))
				return nil
			}
			printProject(cmd, *cur)
			return nil
		},
	}

	return cmd
}
