package main

import (
	"fmt"

	"ideation-orchestrator/internal/di"
	"ideation-orchestrator/internal/infrastructure/httpapi"
	"ideation-orchestrator/internal/infrastructure/render"

	"github.com/spf13/cobra"
)

var (
	serveAddr   string
	reportStyle string
	reportWidth int
)

var reportCmd = &cobra.Command{
	Use:   "report FILE",
	Short: "Render a saved markdown report in the terminal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := render.File(args[0], reportStyle, reportWidth)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the evaluation API, agent phase reports and metrics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		c, err := openContainer(cmd, di.Options{Quiet: true})
		if err != nil {
			return err
		}
		defer c.Close()

		svc, err := c.Evaluation(ctx)
		if err != nil {
			return err
		}
		addr := c.Config.Server.Addr
		if cmd.Flags().Changed("addr") {
			addr = serveAddr
		}
		srv, err := httpapi.NewServer(httpapi.Config{
			Addr:          addr,
			Evaluator:     svc,
			Memory:        c.Memory,
			Gatherer:      c.Metrics,
			Logger:        c.Logger,
			AccessLogJSON: c.Config.App.Env != "dev",
		})
		if err != nil {
			return err
		}
		defer srv.Close()

		fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s\n", addr)
		return srv.Run(ctx)
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportStyle, "style", "", "Glamour style (dark, light, notty); empty detects the terminal")
	reportCmd.Flags().IntVarP(&reportWidth, "width", "w", 100, "Word wrap width")
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
}
