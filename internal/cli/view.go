package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/csheth/convoscout/internal/transcript"
	"github.com/csheth/convoscout/internal/tui"
)

func init() {
	var (
		file        string
		noAltScreen bool
	)

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Browse saved conversation transcripts in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			conversations, err := transcript.Load(file)
			if err != nil {
				return fmt.Errorf("loading transcripts: %w", err)
			}
			if len(conversations) == 0 {
				return fmt.Errorf("no conversations found in %s", file)
			}

			opts := []tea.ProgramOption{}
			if !noAltScreen {
				opts = append(opts, tea.WithAltScreen())
			}
			program := tea.NewProgram(tui.New(tui.Config{
				TranscriptPath: file,
				Conversations:  conversations,
			}), opts...)
			_, err = program.Run()
			return err
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", defaultTranscriptPath, "JSONL file containing conversation transcripts")
	cmd.Flags().BoolVar(&noAltScreen, "no-alt-screen", false, "Disable the alternate screen buffer")

	RootCmd.AddCommand(cmd)
}
