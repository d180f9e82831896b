package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/mvp-joe/archdiag/internal/patterns"
	"github.com/mvp-joe/archdiag/internal/render"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	patternName   string
	patternTitle  string
	patternOutput string
	patternRun    bool
)

// patternsCmd groups the architecture pattern commands
var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Generate Azure architecture pattern diagrams",
	Long: `Patterns generates Python scripts for the diagrams library that draw common
Azure integration architectures. Run a script with Python (or pass --run) to
produce the PNG.`,
}

var patternsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the available patterns",
	Run: func(cmd *cobra.Command, args []string) {
		listPatterns(cmd.OutOrStdout())
	},
}

var patternsGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the script for one pattern",
	Long: `Generate writes <output>.py, a script that draws the chosen pattern.
The pattern can be given by name or by its number in 'archdiag patterns list'.

Examples:
  archdiag patterns generate -p api-led -n "Order Platform"
  archdiag patterns generate -p 3 -n "Events" -o docs/events --run
`,
	RunE: runPatternsGenerate,
}

var patternsInteractiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Choose a pattern, title and output interactively",
	RunE:  runPatternsInteractive,
}

func init() {
	rootCmd.AddCommand(patternsCmd)
	patternsCmd.AddCommand(patternsListCmd, patternsGenerateCmd, patternsInteractiveCmd)

	patternsGenerateCmd.Flags().StringVarP(&patternName, "pattern", "p", "", "Pattern name or number (required)")
	patternsGenerateCmd.Flags().StringVarP(&patternTitle, "name", "n", patterns.DefaultTitle, "Diagram title")
	patternsGenerateCmd.Flags().StringVarP(&patternOutput, "output", "o", patterns.DefaultOutput, "Output file base name")
	patternsGenerateCmd.Flags().BoolVar(&patternRun, "run", false, "Run the script with Python to render the PNG")
	_ = patternsGenerateCmd.MarkFlagRequired("pattern")

	patternsInteractiveCmd.Flags().BoolVar(&patternRun, "run", false, "Run the script with Python to render the PNG")
}

func listPatterns(w io.Writer) {
	fmt.Fprintln(w, headerColor.Sprint("Available patterns:"))
	fmt.Fprintln(w)
	for i, p := range patterns.All() {
		fmt.Fprintf(w, "  %d. %-16s %s\n", i+1, p.Name, p.Description)
	}
}

// patternJob is one pattern script to produce.
type patternJob struct {
	Pattern string // name or catalog number
	Title   string
	Output  string // file base name, a trailing .png is dropped
	Run     bool
}

func runPatternsGenerate(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	job := patternJob{Pattern: patternName, Title: patternTitle, Output: patternOutput, Run: patternRun}
	_, err = generatePattern(cmd.Context(), cmd.OutOrStdout(), cfg.Python(), job)
	return err
}

// generatePattern writes the script for job and optionally runs it. It
// returns the script path.
func generatePattern(ctx context.Context, w io.Writer, py *render.Python, job patternJob) (string, error) {
	name, err := patterns.ResolveChoice(job.Pattern)
	if err != nil {
		return "", err
	}

	output := patterns.NormalizeOutput(job.Output)
	// The script runs from its own directory, so it only needs the base name
	code, err := patterns.Generate(name, patterns.NormalizeTitle(job.Title), filepath.Base(output))
	if err != nil {
		return "", err
	}

	script := output + ".py"
	if dir := filepath.Dir(script); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(script, []byte(code), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", script, err)
	}
	printSuccess(w, "Generated %s (%s)", script, name)
	logger.Debug("pattern script written", zap.String("pattern", name), zap.String("path", script))

	if !job.Run {
		fmt.Fprintf(w, "  Render it with: python3 %s\n", script)
		return script, nil
	}

	if err := py.RunScript(ctx, script); err != nil {
		return script, err
	}
	printSuccess(w, "Rendered %s.png", output)
	return script, nil
}

// askPattern fills job through an interactive form. Replaced in tests.
var askPattern = func(job *patternJob) error {
	options := make([]huh.Option[string], 0, len(patterns.All()))
	for _, p := range patterns.All() {
		options = append(options, huh.NewOption(fmt.Sprintf("%-16s %s", p.Name, p.Description), p.Name))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Pattern").
				Options(options...).
				Value(&job.Pattern),
			huh.NewInput().
				Title("Diagram title").
				Placeholder(patterns.DefaultTitle).
				Value(&job.Title),
			huh.NewInput().
				Title("Output file name").
				Placeholder(patterns.DefaultOutput).
				Value(&job.Output),
			huh.NewConfirm().
				Title("Render the PNG now?").
				Value(&job.Run),
		),
	)
	return form.Run()
}

func runPatternsInteractive(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	return interactivePattern(cmd.Context(), cmd.OutOrStdout(), cfg.Python(), patternRun)
}

func interactivePattern(ctx context.Context, w io.Writer, py *render.Python, run bool) error {
	job := patternJob{Run: run}
	if err := askPattern(&job); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Fprintln(w, "Cancelled")
			return nil
		}
		return err
	}
	_, err := generatePattern(ctx, w, py, job)
	return err
}
