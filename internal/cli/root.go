// Package cli implements the convoscout CLI commands.
package cli

import (
	"github.com/spf13/cobra"
)

const defaultTranscriptPath = "conversation_transcripts.jsonl"

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "convoscout",
	Short: "Export and browse Botpress conversation transcripts",
	Long: "Fetches conversations with incoming messages from the Botpress Cloud API,\n" +
		"saves them incrementally as JSON Lines, and browses the saved transcripts\n" +
		"in a terminal viewer.",
	SilenceUsage: true,
}
