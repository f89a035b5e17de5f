package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// FeedbackURL is where users report bugs and request features.
const FeedbackURL = "https://github.com/asteroid-belt/vidtally/issues"

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Show how to provide feedback about vidtally",
	Long: `Display the feedback URL where you can share your thoughts about vidtally.

Report bugs, request features, or just let us know how vidtally is working for you.`,
	Args: cobra.NoArgs,
	RunE: runFeedback,
}

func runFeedback(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, "We'd love to hear from you!")
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, "Share your feedback, report bugs, or request features:")
	_, _ = fmt.Fprintf(out, "  %s\n", FeedbackURL)
	return nil
}
