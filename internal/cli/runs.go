package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/predictcheck/hindsight/internal/database"
	"github.com/predictcheck/hindsight/internal/models"
	"github.com/predictcheck/hindsight/internal/narrative"
	"github.com/spf13/cobra"
)

var runsLimit int

// runsCmd lists stored pipeline runs.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored recap runs",
	RunE:  runRuns,
}

// runsShowCmd prints one stored run in full.
var runsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one stored run with its verdicts",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsShowCmd)

	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum number of runs to list")
}

func runRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := database.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	runs, err := store.ListRuns(ctx, runsLimit, 0)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"ID", "Title", "Claims", "True", "False", "Not Yet", "Unclear", "Created"})
	for _, run := range runs {
		t.AppendRow(table.Row{
			run.ID[:8],
			truncate(run.Title, 40),
			run.TotalClaims,
			run.TrueClaims,
			run.FalseClaims,
			run.NotYetClaims,
			run.UnclearClaims,
			run.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	t.Render()
	return nil
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := database.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	run, err := findRun(ctx, store, args[0])
	if err != nil {
		return err
	}

	entries, err := store.GetRunEntries(ctx, run.ID)
	if err != nil {
		return err
	}

	report := models.NewReport()
	for _, e := range entries {
		report.Set(e.Claim, e.Verdict)
	}

	fmt.Printf("Run %s\nSource: %s\nTitle: %s\nMode: %s\nCreated: %s\n\n",
		run.ID, run.Source, run.Title, run.Mode, run.CreatedAt.Format(time.RFC3339))
	fmt.Println(narrative.FormatReportBlock(report))

	if run.Narrative != "" {
		fmt.Println("\n--- Recap ---")
		fmt.Println(run.Narrative)
	}
	return nil
}

// findRun resolves a full or shortened run ID.
func findRun(ctx context.Context, store database.Store, id string) (*models.Run, error) {
	run, err := store.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}
	if run != nil {
		return run, nil
	}

	runs, err := store.ListRuns(ctx, 100, 0)
	if err != nil {
		return nil, err
	}
	for _, r := range runs {
		if len(id) >= 4 && len(r.ID) >= len(id) && r.ID[:len(id)] == id {
			return r, nil
		}
	}
	return nil, fmt.Errorf("run not found: %s", id)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
