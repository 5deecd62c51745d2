// Package main provides the CLI entry point for abtest-summary.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ukaji3/abtest-summary-go/pkg/abtest"
	"github.com/ukaji3/abtest-summary-go/pkg/abtest/config"
	"github.com/ukaji3/abtest-summary-go/pkg/abtest/gsheets"
	"github.com/ukaji3/abtest-summary-go/pkg/abtest/layout"
	"github.com/ukaji3/abtest-summary-go/pkg/abtest/models"
	"github.com/ukaji3/abtest-summary-go/pkg/abtest/source"
	"github.com/ukaji3/abtest-summary-go/pkg/abtest/telemetry"
	"github.com/ukaji3/abtest-summary-go/pkg/abtest/xlsx"
)

const serviceName = "abtest-summary"

var (
	cfgPath string
	pretty  bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "abtest-summary",
		Short: "Render A/B test results into formatted summary sheets",
		Long: `abtest-summary turns an experiment results table (CSV, xlsx or SQLite)
into a formatted summary sheet in a local workbook or a Google spreadsheet.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return config.LoadEnv()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgPath, "config", "c", "", "Config file (YAML, JSON or TOML)")
	flags.StringP("name", "n", "", "Experiment name; the sheet is titled <name>_summary")
	flags.String("layout", string(layout.VariantPreamble), "Sheet layout: preamble or inline")
	flags.Bool("no-filter", false, "Do not attach a basic filter to the table")
	flags.StringArray("variant", nil, "Display name for a treatment as raw=display (repeatable)")
	flags.String("sheet", "", "Sheet to read from an xlsx input (default: first sheet)")
	flags.String("query", "", "SQL query for a SQLite input")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(newRenderCmd(), newPlanCmd())
	return rootCmd
}

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render [results]",
		Short: "Render the summary sheet into a workbook or spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE:  runRender,
	}
	cmd.Flags().StringP("output", "o", "", "Write to this xlsx workbook (created if missing)")
	cmd.Flags().String("spreadsheet-id", "", "Write to this Google spreadsheet")
	cmd.Flags().String("credentials", "", "Service account credentials file for Google Sheets")
	cmd.Flags().String("otlp-endpoint", "", "OTLP/HTTP endpoint for traces")
	return cmd
}

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan [results]",
		Short: "Print the Sheets batchUpdate body of the formatting plan",
		Args:  cobra.ExactArgs(1),
		RunE:  runPlan,
	}
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	return cmd
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, ctx, err := setup(cmd)
	if err != nil {
		return err
	}

	shutdown, err := telemetry.Setup(ctx, telemetry.DefaultConfig(serviceName, cfg.OTLPEndpoint))
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to flush traces")
		}
	}()

	if cfg.Experiment == "" {
		return errors.New("an experiment name is required (--name)")
	}
	table, err := loadTable(ctx, cfg, args[0])
	if err != nil {
		return err
	}
	opts := renderOptions(cfg)

	var target models.SheetTarget
	switch {
	case cfg.SpreadsheetID != "":
		api, err := gsheets.Connect(ctx, cfg.Credentials)
		if err != nil {
			return err
		}
		target, err = abtest.Render(ctx, gsheets.NewService(api, nil), cfg.SpreadsheetID, cfg.Experiment, table, opts)
		if err != nil {
			return fmt.Errorf("render failed: %w", err)
		}

	case cfg.Output != "":
		svc, err := openWorkbook(cfg.Output)
		if err != nil {
			return err
		}
		defer svc.Close()
		target, err = abtest.Render(ctx, svc, cfg.Output, cfg.Experiment, table, opts)
		if err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		if err := svc.Save(cfg.Output); err != nil {
			return err
		}

	default:
		return errors.New("either --output or --spreadsheet-id is required")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", target.SpreadsheetID, target.Title)
	return nil
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, ctx, err := setup(cmd)
	if err != nil {
		return err
	}
	table, err := loadTable(ctx, cfg, args[0])
	if err != nil {
		return err
	}

	p, err := abtest.Prepare(table, renderOptions(cfg))
	if err != nil {
		return err
	}
	body, err := gsheets.BatchUpdate(p.Plan, 0)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), body, pretty)
}

// setup loads the configuration and returns a context carrying the logger.
func setup(cmd *cobra.Command) (*config.Config, context.Context, error) {
	cfg, err := config.Load(cfgPath, cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	logger := zerolog.New(cmd.ErrOrStderr()).Level(level).With().Timestamp().Logger()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return cfg, logger.WithContext(ctx), nil
}

func loadTable(ctx context.Context, cfg *config.Config, path string) (models.ResultTable, error) {
	table, err := source.Load(ctx, path, source.Options{Sheet: cfg.Sheet, Query: cfg.Query})
	if err != nil {
		return models.ResultTable{}, fmt.Errorf("failed to load %s: %w", path, err)
	}
	zerolog.Ctx(ctx).Debug().Str("input", path).Int("rows", table.Len()).Strs("columns", table.Columns).Msg("results loaded")
	return table, nil
}

func renderOptions(cfg *config.Config) abtest.Options {
	opts := abtest.DefaultOptions()
	opts.Layout = layout.Variant(cfg.Layout)
	opts.VariantMapping = cfg.VariantMapping()
	filter := cfg.Filter
	opts.BasicFilter = &filter
	return opts
}

func openWorkbook(path string) (*xlsx.Service, error) {
	if _, err := os.Stat(path); err == nil {
		return xlsx.Open(path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	return xlsx.NewService(), nil
}

func writeJSON(w io.Writer, v any, pretty bool) error {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
