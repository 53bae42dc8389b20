package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"hfcheck/app"
	"hfcheck/domain/quality"
	"hfcheck/domain/survey"
	"hfcheck/internal"
	"hfcheck/internal/config"
	"hfcheck/internal/container"
	"hfcheck/internal/testkit"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootOptions struct {
	configFile string
	logLevel   string
	sources    []string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "hfcheck",
		Short:         "High-frequency data-quality checks for survey exports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "YAML configuration file (overrides "+config.ConfigFileEnv+")")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: error, warn, info, debug, trace")
	rootCmd.PersistentFlags().StringArrayVar(&opts.sources, "source", nil, "Source as name=location (repeatable; defaults to the configured sources)")

	rootCmd.AddCommand(
		newAuditCmd(opts),
		newSchemaCmd(opts),
		newModulesCmd(opts),
		newSampleCmd(),
	)
	return rootCmd
}

func newAuditCmd(opts *rootOptions) *cobra.Command {
	var xlsxPath, markdownPath, htmlPath, jsonPath string

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Run every check and export the report",
		Long: `Fetch the sources, merge them and run the duration, duplicate,
missing-value and per-module checks.

Example: hfcheck audit --source Docentes=./docentes.csv --source Auto=./auto.xlsx --xlsx report.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, req, err := opts.setup()
			if err != nil {
				return err
			}
			defer c.Shutdown()

			report, err := c.Audits.Run(cmd.Context(), req)
			if err != nil {
				return err
			}

			printSummary(cmd.OutOrStdout(), report)

			if xlsxPath != "" {
				if err := c.Workbook.WriteFile(report, xlsxPath); err != nil {
					return err
				}
			}
			if markdownPath != "" {
				if err := os.WriteFile(markdownPath, c.Markdown.Markdown(report), 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", markdownPath, err)
				}
			}
			if htmlPath != "" {
				if err := os.WriteFile(htmlPath, c.Markdown.HTML(report), 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", htmlPath, err)
				}
			}
			if jsonPath != "" {
				data, err := json.MarshalIndent(report, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to encode report: %w", err)
				}
				if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", jsonPath, err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Write the workbook export to this path")
	cmd.Flags().StringVar(&markdownPath, "markdown", "", "Write the Markdown summary to this path")
	cmd.Flags().StringVar(&htmlPath, "html", "", "Write the HTML summary to this path")
	cmd.Flags().StringVar(&jsonPath, "json", "", "Write the full JSON report to this path")

	return cmd
}

func newSchemaCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the merged columns and their inferred kinds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, c, err := opts.loadDataset(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Shutdown()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "FIELD\tKIND")
			for _, f := range ds.Schema.Fields {
				fmt.Fprintf(w, "%s\t%s\n", f.Name, f.Kind)
			}
			return w.Flush()
		},
	}
}

func newModulesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "modules",
		Short: "Print the module each column belongs to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, c, err := opts.loadDataset(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Shutdown()

			for _, m := range c.Audits.Classify(ds) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%s*): %d fields\n", m.Label, m.Prefix, len(m.Fields))
				for _, f := range m.Fields {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", f)
				}
			}
			return nil
		},
	}
}

func newSampleCmd() *cobra.Command {
	var out string
	genConfig := testkit.DefaultSurveyConfig()

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Write a synthetic survey export with planted anomalies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			generated := testkit.NewSurveyDataGenerator(genConfig).Generate()
			if err := os.WriteFile(out, generated.CSV(), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s (%d short, %d long, %d duplicated ids)\n",
				len(generated.Rows)-1, out, generated.ShortCount, generated.LongCount, generated.DuplicateRows)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "sample.csv", "Output CSV path")
	cmd.Flags().IntVar(&genConfig.RespondentCount, "rows", genConfig.RespondentCount, "Number of submissions")
	cmd.Flags().Int64Var(&genConfig.Seed, "seed", genConfig.Seed, "Random seed for deterministic output")
	cmd.Flags().Float64Var(&genConfig.MissingRate, "missing-rate", genConfig.MissingRate, "Share of empty answers")
	cmd.Flags().Float64Var(&genConfig.DuplicateRate, "duplicate-rate", genConfig.DuplicateRate, "Share of repeated respondent ids")

	return cmd
}

// setup loads the configuration and wires the pipeline
func (o *rootOptions) setup() (*container.Container, app.AuditRequest, error) {
	if o.configFile != "" {
		if err := os.Setenv(config.ConfigFileEnv, o.configFile); err != nil {
			return nil, app.AuditRequest{}, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, app.AuditRequest{}, err
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}

	sources, err := parseSources(o.sources)
	if err != nil {
		return nil, app.AuditRequest{}, err
	}

	c, err := container.New(cfg, internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel)))
	if err != nil {
		return nil, app.AuditRequest{}, err
	}
	return c, app.AuditRequest{Sources: sources}, nil
}

func (o *rootOptions) loadDataset(ctx context.Context) (*survey.Dataset, *container.Container, error) {
	c, req, err := o.setup()
	if err != nil {
		return nil, nil, err
	}

	ds, warnings, err := c.Audits.LoadDataset(ctx, req)
	if err != nil {
		c.Shutdown()
		return nil, nil, err
	}
	for _, w := range warnings {
		c.Logger.Warn("%s", w)
	}
	return ds, c, nil
}

// parseSources reads name=location pairs; a bare location gets a generated name
func parseSources(values []string) ([]survey.Source, error) {
	sources := make([]survey.Source, 0, len(values))
	for _, v := range values {
		name, location, found := strings.Cut(v, "=")
		if !found {
			name, location = "", v
		}
		name, location = strings.TrimSpace(name), strings.TrimSpace(location)
		if location == "" {
			return nil, fmt.Errorf("invalid --source %q: expected name=location", v)
		}
		sources = append(sources, survey.Source{Name: name, Location: location})
	}
	return sources, nil
}

func printSummary(w io.Writer, report *quality.AuditReport) {
	fmt.Fprintf(w, "Audit %s: %d records from %d sources\n", report.RunID, report.TotalRows, len(report.Sources))
	for _, s := range report.Sources {
		fmt.Fprintf(w, "  %-28s %5d rows  %3d columns  %s\n", s.Name, s.Rows, s.Columns, s.Format)
	}
	fmt.Fprintf(w, "Duration: %d flagged outside %s-%s minutes, %d without duration\n",
		len(report.Duration.Flagged), survey.FormatNumber(report.Duration.MinMinutes),
		survey.FormatNumber(report.Duration.MaxMinutes), report.Duration.MissingCount)
	fmt.Fprintf(w, "Duplicates: %d records in %d groups on %s\n",
		len(report.Duplicates.Records), len(report.Duplicates.Groups), strings.Join(report.Duplicates.KeyFields, "+"))
	fmt.Fprintf(w, "Missing: %d cells across %d fields\n", report.Missing.TotalMissing(), len(report.Missing.Entries))
	for _, m := range report.Modules {
		fmt.Fprintf(w, "  %-10s %3d fields  %5d missing\n", m.Module.Label, len(m.Module.Fields), m.Missing.TotalMissing())
	}
	for _, warning := range report.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
}
