package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/predictcheck/hindsight/internal/database"
	"github.com/predictcheck/hindsight/internal/models"
	"github.com/predictcheck/hindsight/internal/narrative"
	"github.com/predictcheck/hindsight/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	recapIntro     string
	recapTimeout   time.Duration
	recapMode      string
	recapNarrative bool
)

// recapCmd runs the full pipeline for a video URL.
var recapCmd = &cobra.Command{
	Use:   "recap <url>",
	Short: "Download, transcribe, and fact-check the predictions in a video",
	Long: `Recap runs the whole pipeline for a YouTube URL:
- download the audio track (yt-dlp)
- transcribe it (Whisper), caching the transcript for re-runs
- extract the predictions made in the conversation
- verify each prediction against current information
- print the per-prediction report and a podcast-style recap

Example:
  hindsight recap https://www.youtube.com/watch?v=xyz
  hindsight recap https://www.youtube.com/watch?v=xyz --intro "Recorded January 2024" --mode integrated`,
	Args: cobra.ExactArgs(1),
	RunE: runRecap,
}

func init() {
	rootCmd.AddCommand(recapCmd)

	recapCmd.Flags().StringVar(&recapIntro, "intro", "", "context about the video (speaker, recording date)")
	recapCmd.Flags().DurationVar(&recapTimeout, "timeout", 20*time.Minute, "overall pipeline timeout")
	recapCmd.Flags().StringVar(&recapMode, "mode", "", "verification mode override (evidence or integrated)")
	recapCmd.Flags().BoolVar(&recapNarrative, "narrative", true, "print the generated recap narrative")
}

func runRecap(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if recapMode != "" {
		cfg.Verify.Mode = models.VerifyMode(recapMode)
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	store, err := database.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	engine, err := pipeline.NewEngine(cfg, store)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), recapTimeout)
	defer cancel()

	result, err := engine.RecapURL(ctx, args[0], recapIntro)
	if err != nil {
		return err
	}

	printResult(result)
	return nil
}

func printResult(result *models.RunResponse) {
	report := models.NewReport()
	for _, e := range result.Entries {
		report.Set(e.Claim, e.Verdict)
	}

	fmt.Println("\nFinal Verified Predictions:")
	fmt.Println()
	fmt.Println(narrative.FormatReportBlock(report))

	if recapNarrative && result.Run.Narrative != "" {
		fmt.Println("\n--- Recap ---")
		fmt.Println(result.Run.Narrative)
	}

	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s: %s\n", w.Source, w.Message)
	}
}
