package main

import (
	"fmt"
	"io"
	"strings"

	"ideation-orchestrator/internal/di"
	"ideation-orchestrator/internal/domain/entity"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	pendingLimit  int
	searchLimit   int
	listLimit     int
	listStatus    string
	insightsLimit int
	addNotes      string
)

var addCmd = &cobra.Command{
	Use:   "add PROBLEM",
	Short: "Queue a problem statement for later evaluation",
	Args:  cobra.MinimumNArgs(1),
	RunE: withMemory(func(cmd *cobra.Command, c *di.Container, args []string) error {
		topic := strings.Join(args, " ")
		id, err := c.Memory.SavePendingIdea(cmd.Context(), topic, addNotes)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Queued %q (%s)\n", topic, id)
		return nil
	}),
}

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List queued ideas",
	Args:  cobra.NoArgs,
	RunE: withMemory(func(cmd *cobra.Command, c *di.Container, _ []string) error {
		recs, err := c.Memory.GetPendingIdeas(cmd.Context(), pendingLimit)
		if err != nil {
			return err
		}
		printRecords(cmd.OutOrStdout(), "Pending ideas", recs)
		return nil
	}),
}

var searchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Search stored ideas by similarity",
	Args:  cobra.MinimumNArgs(1),
	RunE: withMemory(func(cmd *cobra.Command, c *di.Container, args []string) error {
		recs, err := c.Memory.SearchSimilarIdeas(cmd.Context(), strings.Join(args, " "), searchLimit)
		if err != nil {
			return err
		}
		printRecords(cmd.OutOrStdout(), "Similar ideas", recs)
		return nil
	}),
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List evaluated ideas",
	Args:  cobra.NoArgs,
	RunE: withMemory(func(cmd *cobra.Command, c *di.Container, _ []string) error {
		switch listStatus {
		case "all", "passed", "eliminated":
		default:
			return fmt.Errorf("--status must be all, passed or eliminated, got %q", listStatus)
		}
		recs, err := c.Memory.GetAllIdeas(cmd.Context(), listStatus, listLimit)
		if err != nil {
			return err
		}
		printRecords(cmd.OutOrStdout(), "Ideas ("+listStatus+")", recs)
		return nil
	}),
}

var similarCmd = &cobra.Command{
	Use:   "similar TOPIC",
	Short: "Check whether a similar idea was already eliminated",
	Args:  cobra.MinimumNArgs(1),
	RunE: withMemory(func(cmd *cobra.Command, c *di.Container, args []string) error {
		topic := strings.Join(args, " ")
		rec, found, err := c.Memory.CheckIfSimilarEliminated(cmd.Context(), topic, c.Config.Memory.SimilarityThreshold)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if !found {
			color.New(color.FgGreen).Fprintf(out, "No similar eliminated idea found for %q\n", topic)
			return nil
		}
		color.New(color.FgYellow).Fprintf(out, "Similar eliminated idea (similarity %.2f):\n", rec.Score)
		fmt.Fprintln(out, rec.Memory)
		return nil
	}),
}

var insightsCmd = &cobra.Command{
	Use:   "insights QUERY",
	Short: "Search stored market insights",
	Args:  cobra.MinimumNArgs(1),
	RunE: withMemory(func(cmd *cobra.Command, c *di.Container, args []string) error {
		recs, err := c.Memory.GetMarketInsights(cmd.Context(), strings.Join(args, " "), insightsLimit)
		if err != nil {
			return err
		}
		printRecords(cmd.OutOrStdout(), "Market insights", recs)
		return nil
	}),
}

func init() {
	addCmd.Flags().StringVarP(&addNotes, "notes", "n", "", "Free-form notes stored with the idea")
	pendingCmd.Flags().IntVarP(&pendingLimit, "limit", "l", 50, "Maximum number of ideas")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "l", 5, "Maximum number of results")
	listCmd.Flags().StringVarP(&listStatus, "status", "s", "all", "Filter: all, passed or eliminated")
	listCmd.Flags().IntVarP(&listLimit, "limit", "l", 20, "Maximum number of ideas")
	insightsCmd.Flags().IntVarP(&insightsLimit, "limit", "l", 5, "Maximum number of results")
}

// withMemory opens a quiet container for commands that only touch memory.
func withMemory(run func(cmd *cobra.Command, c *di.Container, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c, err := openContainer(cmd, di.Options{Quiet: true})
		if err != nil {
			return err
		}
		defer c.Close()
		return run(cmd, c, args)
	}
}

func printRecords(w io.Writer, title string, recs []entity.MemoryRecord) {
	color.New(color.Bold).Fprintf(w, "%s: %d\n", title, len(recs))
	for i, r := range recs {
		line := r.Memory
		if status := r.MetaString("status"); status != "" {
			line = "[" + status + "] " + line
		}
		if score, ok := r.MetaFloat("score"); ok {
			line += fmt.Sprintf(" (score %.1f)", score)
		}
		fmt.Fprintf(w, "%2d. %s\n", i+1, line)
		if !r.CreatedAt.IsZero() {
			fmt.Fprintf(w, "    %s  %s\n", r.CreatedAt.Format("2006-01-02 15:04"), r.ID)
		}
	}
}
