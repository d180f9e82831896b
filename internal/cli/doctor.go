package cli

import (
	"errors"

	"github.com/mvp-joe/archdiag/internal/doctor"
	"github.com/spf13/cobra"
)

// errChecksFailed makes the process exit non-zero after a failed doctor run.
var errChecksFailed = errors.New("installation check failed")

// doctorCmd represents the doctor command
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Verify that Python, Graphviz and the diagrams library are installed",
	Long: `Doctor checks the tools archdiag relies on to render images:

  - Python 3.9 or newer
  - Graphviz (the dot command)
  - the Python diagrams library and its Azure providers
  - a diagram generation smoke test
  - a DOT rendering smoke test

Checks that depend on a failed check are skipped. The command exits with a
non-zero status when any check fails.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	report := doctor.New(cfg.Python(), cfg.Graphviz(), logger).Run(cmd.Context(), cmd.OutOrStdout())
	if !report.Passed() {
		return errChecksFailed
	}
	return nil
}
