package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ideation-orchestrator/internal/di"
	"ideation-orchestrator/internal/infrastructure/config"
	"ideation-orchestrator/internal/infrastructure/env"
	"ideation-orchestrator/internal/usecase/report"

	"github.com/spf13/cobra"
)

var (
	configPath  string
	threshold   float64
	outputFile  string
	quiet       bool
	problemOnly bool
	mode        string
	notify      bool
)

var rootCmd = &cobra.Command{
	Use:   "ideation [flags] PROBLEM...",
	Short: "Evaluate startup problem statements with a team of research agents",
	Long: `Runs every problem statement through research, market analysis, scoring,
pivot suggestions and a final report, then prints a pass/eliminate summary.

Modes:
  direct    run the agent pipeline in-process (default)
  subagent  let a coordinator agent delegate through the task tool
  webhook   trigger remote agent repositories and poll shared memory`,
	Args:          cobra.ArbitraryArgs,
	RunE:          evaluate,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.Flags().Float64VarP(&threshold, "threshold", "t", 5.0, "Minimum score (0-10) for an idea to pass")
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write the joined reports to this file")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.Flags().BoolVarP(&problemOnly, "problem-only", "p", false, "Stop after problem validation")
	rootCmd.Flags().StringVarP(&mode, "mode", "m", "direct", "Orchestration mode: direct, subagent or webhook")
	rootCmd.Flags().BoolVar(&notify, "notify", false, "Send summaries and reports to Slack/Telegram")

	rootCmd.AddCommand(addCmd, pendingCmd, searchCmd, listCmd, similarCmd, insightsCmd, reportCmd, serveCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig overlays .env files onto the process environment before viper
// reads it, then applies the flags that were set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	env.NewEnvService()
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("threshold") {
		cfg.Evaluation.Threshold = threshold
	}
	if flags.Changed("mode") {
		cfg.Evaluation.Mode = mode
	}
	if flags.Changed("problem-only") {
		cfg.Evaluation.ProblemOnly = problemOnly
	}
	if flags.Changed("notify") {
		cfg.Evaluation.Notify = notify
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openContainer(cmd *cobra.Command, opts di.Options) (*di.Container, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return di.NewContainer(cmd.Context(), cfg, opts)
}

func evaluate(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}
	ctx := cmd.Context()

	c, err := openContainer(cmd, di.Options{Quiet: quiet})
	if err != nil {
		return err
	}
	defer c.Close()

	svc, err := c.Evaluation(ctx)
	if err != nil {
		return err
	}

	c.Logger.Info("Evaluation started", "problems", len(args), "mode", c.Config.Evaluation.Mode)
	results, evalErr := svc.EvaluateMany(ctx, args)
	if evalErr != nil {
		c.Logger.Error("Some evaluations failed", "error", evalErr)
	}

	fmt.Fprintln(cmd.OutOrStdout(), report.Summary(results, c.Config.Evaluation.Threshold))

	if outputFile != "" && len(results) > 0 {
		if err := os.WriteFile(outputFile, []byte(report.JoinReports(results)), 0o644); err != nil {
			return fmt.Errorf("write reports: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Reports written to %s\n", outputFile)
	}
	return evalErr
}
