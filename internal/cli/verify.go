package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/predictcheck/hindsight/internal/database"
	"github.com/predictcheck/hindsight/internal/models"
	"github.com/predictcheck/hindsight/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	verifyTitle   string
	verifyIntro   string
	verifyTimeout time.Duration
	verifyMode    string
)

// verifyCmd runs extraction and verification over an existing transcript.
var verifyCmd = &cobra.Command{
	Use:   "verify <transcript-file>",
	Short: "Fact-check the predictions in an existing transcript",
	Long: `Verify skips download and transcription, reading a plain-text transcript
from a file and running prediction extraction, verification, and the recap
narrative over it.

Example:
  hindsight verify transcript.txt --title "2024 Predictions Podcast"`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVar(&verifyTitle, "title", "", "title of the source video or episode")
	verifyCmd.Flags().StringVar(&verifyIntro, "intro", "", "context about the source (speaker, recording date)")
	verifyCmd.Flags().DurationVar(&verifyTimeout, "timeout", 15*time.Minute, "overall verification timeout")
	verifyCmd.Flags().StringVar(&verifyMode, "mode", "", "verification mode override (evidence or integrated)")
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if verifyMode != "" {
		cfg.Verify.Mode = models.VerifyMode(verifyMode)
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	transcript, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read transcript: %w", err)
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

	ctx, cancel := context.WithTimeout(context.Background(), verifyTimeout)
	defer cancel()

	title := verifyTitle
	if title == "" {
		title = args[0]
	}

	result, err := engine.RecapTranscript(ctx, args[0], title, verifyIntro, string(transcript))
	if err != nil {
		return err
	}

	printResult(result)
	return nil
}
