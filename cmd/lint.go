package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quillmark/quill/internal/errors"
)

var lintStrict bool

var lintCmd = &cobra.Command{
	Use:     "lint",
	Aliases: []string{"l", "check"},
	Short:   "Check content hygiene",
	Long: `Lint scans all posts and checks document hygiene:

  • title-required   every post has a non-empty title
  • date-valid       dates parse as ISO-8601; published posts have one
  • fence-closed     every fenced code/diagram block is closed
  • fence-language   code fences carry a language tag
  • link-resolves    relative links point at existing targets
  • duplicate-slug   no two posts share a slug

The command exits non-zero when any error-severity diagnostic is found,
or, with --strict, when warnings are found.`,
	RunE: runLint,
}

func init() {
	lintCmd.Flags().BoolVar(&lintStrict, "strict", false, "treat warnings as errors")
	rootCmd.AddCommand(lintCmd)
}

func runLint(cmd *cobra.Command, args []string) error {
	env, err := setup()
	if err != nil {
		return err
	}
	defer env.Close()

	if err := env.scanContent(); err != nil {
		return fmt.Errorf("scanning content: %w", err)
	}

	collector := env.lintRunner().Run(cmd.Context())
	diagnostics := collector.Diagnostics()

	for _, d := range diagnostics {
		fmt.Fprintln(os.Stderr, d.Error())
	}

	errorCount := len(collector.BySeverity(errors.SeverityError))
	warningCount := len(collector.BySeverity(errors.SeverityWarning))

	if len(diagnostics) == 0 {
		fmt.Printf("✓ %d post(s) clean\n", env.registry.Count())
		return nil
	}

	fmt.Fprintf(os.Stderr, "%d error(s), %d warning(s) across %d post(s)\n",
		errorCount, warningCount, env.registry.Count())

	return lintVerdict(collector, lintStrict)
}

// lintVerdict turns the collected diagnostics into the command's exit status.
// Returning the error lets deferred cleanup run before the process exits.
func lintVerdict(collector *errors.Collector, strict bool) error {
	if collector.HasErrors() {
		return fmt.Errorf("lint found %d error(s)", len(collector.BySeverity(errors.SeverityError)))
	}
	if strict && collector.HasWarnings() {
		return fmt.Errorf("lint found %d warning(s) with --strict", len(collector.BySeverity(errors.SeverityWarning)))
	}
	return nil
}
