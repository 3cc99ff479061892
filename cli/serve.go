package cli

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"tasklist/api"
	"tasklist/export"
	"tasklist/models"
)

func newServeCmd(opts *options) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the task list over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !opts.verbose {
				gin.SetMode(gin.ReleaseMode)
			}
			// serve always logs, even without --verbose
			log.SetOutput(os.Stderr)
			if cmd.Flags().Changed("addr") {
				opts.cfg.HTTPAddr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			st, done, err := opts.openStore(ctx)
			if err != nil {
				return err
			}
			defer done()

			return api.New(st).ListenAndServe(ctx, opts.cfg.HTTPAddr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default 127.0.0.1:3000)")
	return cmd
}

func newExportCmd(opts *options) *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all tasks as " + strings.Join(export.Formats, ", "),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, done, err := opts.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			b, err := export.Render(st.Filter(models.StatusAll, models.PriorityAll), format, time.Local)
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(b)
				return err
			}
			if err := os.WriteFile(out, b, 0644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported -> %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "json|csv|pdf")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output path (stdout if empty)")
	return cmd
}

func newConfigCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show merged configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := yaml.Marshal(opts.cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	})
	return cmd
}
