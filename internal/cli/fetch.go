package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/csheth/convoscout/internal/botpress"
	"github.com/csheth/convoscout/internal/config"
	"github.com/csheth/convoscout/internal/fetch"
	"github.com/csheth/convoscout/internal/transcript"
)

func init() {
	var (
		output     string
		limit      int
		concurrent int
		pageSize   int
		baseURL    string
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch conversations with incoming messages and save them as JSON Lines",
		Long: "Pages through the conversation index newest-first, retrieves messages for\n" +
			"each conversation concurrently, and appends every conversation that has at\n" +
			"least one incoming message to the output file. Requires the\n" +
			"BOTPRESS_WORKSPACE_ID, BOTPRESS_BOT_ID, and BOTPRESS_TOKEN environment\n" +
			"variables.",
		RunE: func(cmd *cobra.Command, args []string) error {
			creds := config.Load()
			if err := creds.Validate(); err != nil {
				return err
			}

			logger, err := zap.NewProduction()
			if err != nil {
				return fmt.Errorf("initializing logger: %w", err)
			}
			defer logger.Sync()

			writer, err := transcript.NewWriter(output)
			if err != nil {
				return fmt.Errorf("opening %s: %w", output, err)
			}
			defer writer.Close()

			client := botpress.NewClient(baseURL, creds)
			orch := fetch.New(client, writer, logger, fetch.Options{
				Concurrency: concurrent,
				PageSize:    pageSize,
			})

			started := time.Now()
			summary, err := orch.Run(cmd.Context(), limit)
			if err != nil {
				return err
			}
			logger.Info("fetch complete",
				zap.Int("saved", summary.Saved),
				zap.Int("requested", limit),
				zap.Int("processed", summary.Processed),
				zap.Int("pages", summary.Pages),
				zap.Duration("elapsed", time.Since(started)))

			if summary.Exhausted {
				fmt.Fprintf(cmd.OutOrStdout(),
					"Saved %d of %d requested conversations to %s (source exhausted before limit).\n",
					summary.Saved, limit, output)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(),
					"Saved %d conversations to %s (limit reached).\n", summary.Saved, output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", defaultTranscriptPath, "Output JSONL file path")
	cmd.Flags().IntVarP(&limit, "limit", "l", 40, "Maximum number of conversations (with incoming messages) to save")
	cmd.Flags().IntVarP(&concurrent, "concurrent", "c", fetch.DefaultConcurrency, "Maximum number of concurrent message fetches")
	cmd.Flags().IntVar(&pageSize, "page-size", fetch.DefaultPageSize, "Conversation index page size")
	cmd.Flags().StringVar(&baseURL, "base-url", botpress.DefaultBaseURL, "Botpress API base URL")

	RootCmd.AddCommand(cmd)
}
