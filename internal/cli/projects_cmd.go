package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/budeshi/budeshi/internal/analytics"
	"github.com/budeshi/budeshi/internal/cli/formatter"
	"github.com/budeshi/budeshi/internal/contract"
	"github.com/budeshi/budeshi/internal/export"
	"github.com/budeshi/budeshi/internal/repository"
	"github.com/budeshi/budeshi/internal/service"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newProjectsCmd(state *cmdState) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"p"},
		Short:   "Browse and manage procurement projects",
	}
	cmd.AddCommand(
		newProjectsListCmd(state),
		newProjectsShowCmd(state),
		newProjectsSearchCmd(state),
		newProjectsStatsCmd(state),
		newProjectsFacetsCmd(state),
		newProjectsExportCmd(state),
		newProjectsImportCmd(state),
		newProjectsAddCmd(state),
		newProjectsDeleteCmd(state),
	)
	return cmd
}

// queryFlags are the filter flags shared by list, stats and export.
type queryFlags struct {
	search    string
	status    string
	ministry  string
	minBudget int64
	maxBudget int64
}

func (q *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&q.search, "search", "q", "", "match name, description, contractor or location")
	cmd.Flags().StringVar(&q.status, "status", "", "only projects with this status")
	cmd.Flags().StringVar(&q.ministry, "ministry", "", "only projects under this ministry")
	cmd.Flags().Int64Var(&q.minBudget, "min-budget", 0, "minimum budget")
	cmd.Flags().Int64Var(&q.maxBudget, "max-budget", 0, "maximum budget")
}

func (q *queryFlags) query(cmd *cobra.Command) (service.ProjectQuery, error) {
	out := service.ProjectQuery{
		Search:   q.search,
		Criteria: analytics.Criteria{Status: q.status, Ministry: q.ministry},
	}
	if cmd.Flags().Changed("min-budget") {
		if q.minBudget < 0 {
			return out, errors.New("--min-budget must not be negative")
		}
		v := q.minBudget
		out.MinBudget = &v
	}
	if cmd.Flags().Changed("max-budget") {
		if q.maxBudget < 0 {
			return out, errors.New("--max-budget must not be negative")
		}
		v := q.maxBudget
		out.MaxBudget = &v
	}
	return out, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newProjectsListCmd(state *cmdState) *cobra.Command {
	var qf queryFlags
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List projects",
		Example: `  budeshi projects list --status Delayed
  budeshi projects list --ministry "Ministry of Works and Housing" --min-budget 100000000000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := state.app
			q, err := qf.query(cmd)
			if err != nil {
				return err
			}
			projects, err := app.Projects.List(cmd.Context(), q)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), contract.FromProjects(projects))
			}
			printf(cmd, "%s", formatter.FormatProjectList(projects, app.Money))
			return nil
		},
	}
	qf.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print projects as JSON")
	return cmd
}

func newProjectsShowCmd(state *cmdState) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one project in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := state.app
			p, err := app.Projects.Get(cmd.Context(), args[0])
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("project %q not found", args[0])
			}
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), contract.FromProject(*p))
			}
			printf(cmd, "%s\n", formatter.FormatProjectDetail(p, app.Money))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the project as JSON")
	return cmd
}

func newProjectsSearchCmd(state *cmdState) *cobra.Command {
	return &cobra.Command{
		Use:   "search <term>",
		Short: "Search projects, best matches first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := state.app
			projects, err := app.Projects.Search(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printf(cmd, "%s", formatter.FormatProjectList(projects, app.Money))
			return nil
		},
	}
}

func newProjectsStatsCmd(state *cmdState) *cobra.Command {
	var qf queryFlags
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarise budgets, spend and status across projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := qf.query(cmd)
			if err != nil {
				return err
			}
			stats, err := state.app.Projects.Stats(cmd.Context(), q)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), stats)
			}
			printf(cmd, "%s\n", formatter.FormatStats(stats))
			return nil
		},
	}
	qf.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print stats as JSON")
	return cmd
}

func newProjectsFacetsCmd(state *cmdState) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "facets",
		Short: "Show the statuses and ministries present, with counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			facets, err := state.app.Projects.Facets(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), facets)
			}
			printf(cmd, "%s\n", formatter.FormatFacets(facets))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print facets as JSON")
	return cmd
}

func newProjectsExportCmd(state *cmdState) *cobra.Command {
	var qf queryFlags
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write matching projects as CSV",
		Long: `Write the projects matching the filters as CSV. Without --out the file
is named budeshi-projects-<date>.csv in the current directory; "--out -"
writes to stdout.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := qf.query(cmd)
			if err != nil {
				return err
			}
			if out == "-" {
				_, err := state.app.Projects.ExportCSV(cmd.Context(), cmd.OutOrStdout(), q)
				return err
			}

			target := out
			if target == "" {
				target = export.ProjectsFilename(time.Now())
			}
			f, err := os.Create(target)
			if err != nil {
				return fmt.Errorf("creating export file: %w", err)
			}
			n, err := state.app.Projects.ExportCSV(cmd.Context(), f, q)
			if closeErr := f.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				return err
			}
			abs, _ := filepath.Abs(target)
			printf(cmd, "Exported %d projects to %s\n", n, abs)
			return nil
		},
	}
	qf.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, or - for stdout")
	return cmd
}

func newProjectsImportCmd(state *cmdState) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Add projects from a CSV or YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := service.DetectImportFormat(args[0])
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening import file: %w", err)
			}
			defer f.Close()

			n, err := state.app.Projects.Import(cmd.Context(), f, format)
			if err != nil {
				if n > 0 {
					printf(cmd, "Imported %d projects before failing.\n", n)
				}
				return err
			}
			printf(cmd, "Imported %d projects.\n", n)
			return nil
		},
	}
}

func newProjectsAddCmd(state *cmdState) *cobra.Command {
	var d projectDraft

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a project",
		Long: `Add a project record. On a terminal, running without --name opens a
form; otherwise every required value comes from flags.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := state.app
			if d.Name == "" && app.interactive() {
				if err := projectForm(&d).RunWithContext(cmd.Context()); err != nil {
					return err
				}
			}
			if d.ID == "" {
				d.ID = uuid.NewString()
			}
			p, err := d.toProject()
			if err != nil {
				return err
			}
			if err := app.Projects.Add(cmd.Context(), &p); err != nil {
				return err
			}
			printf(cmd, "Added project %s (%s).\n", p.Name, p.ID)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&d.ID, "id", "", "project ID (generated when blank)")
	f.StringVar(&d.Name, "name", "", "project name")
	f.StringVar(&d.Description, "description", "", "description")
	f.StringVar(&d.Status, "status", "", "status (default \"Planning Phase\")")
	f.StringVar(&d.Budget, "budget", "", "allocated budget in whole units")
	f.StringVar(&d.Spent, "spent", "", "amount spent so far")
	f.StringVar(&d.Location, "location", "", "location")
	f.StringVar(&d.Ministry, "ministry", "", "responsible ministry")
	f.StringVar(&d.Contractor, "contractor", "", "contractor")
	f.StringVar(&d.StartDate, "start", "", "start date, YYYY-MM-DD")
	f.StringVar(&d.EndDate, "end", "", "end date, YYYY-MM-DD")
	return cmd
}

func newProjectsDeleteCmd(state *cmdState) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a project",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := state.app.Projects.Delete(cmd.Context(), args[0])
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("project %q not found", args[0])
			}
			if err != nil {
				return err
			}
			printf(cmd, "Deleted project %s.\n", args[0])
			return nil
		},
	}
}
