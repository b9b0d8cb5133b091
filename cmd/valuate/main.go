// Command valuate values a private company described by a YAML or HJSON
// file and prints the result as a table, a full text report, or JSON.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hjson/hjson-go/v4"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"privco_valuation/pkg/core/engine"
	"privco_valuation/pkg/core/marketdata"
	"privco_valuation/pkg/core/model"
	"privco_valuation/pkg/logger"
)

var (
	flagJSON        bool
	flagComparables string
	flagIterations  int
	flagSeed        int64
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "valuate",
		Short:         "Private-company valuation and risk analysis",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "print raw JSON instead of tables")
	rootCmd.PersistentFlags().StringVar(&flagComparables, "comparables", "", "YAML file with comparable companies")

	fullCmd := &cobra.Command{
		Use:   "full <company file>",
		Short: "Run every method plus the risk analyses",
		Args:  cobra.ExactArgs(1),
		RunE:  runFull,
	}
	fullCmd.Flags().IntVar(&flagIterations, "iterations", 0, "Monte Carlo iterations (0 = default)")
	fullCmd.Flags().Int64Var(&flagSeed, "seed", 0, "Monte Carlo seed (0 = random)")

	stressCmd := &cobra.Command{
		Use:   "stress <company file>",
		Short: "Run the stress-test battery",
		Args:  cobra.ExactArgs(1),
		RunE:  runStress,
	}
	stressCmd.Flags().IntVar(&flagIterations, "iterations", 0, "Monte Carlo iterations (0 = default)")
	stressCmd.Flags().Int64Var(&flagSeed, "seed", 0, "Monte Carlo seed (0 = random)")

	rootCmd.AddCommand(
		fullCmd,
		&cobra.Command{
			Use:   "dcf <company file>",
			Short: "Run a standalone DCF valuation",
			Args:  cobra.ExactArgs(1),
			RunE:  runDCF,
		},
		stressCmd,
		&cobra.Command{
			Use:   "sensitivity <company file>",
			Short: "Run the comprehensive sensitivity analysis",
			Args:  cobra.ExactArgs(1),
			RunE:  runSensitivity,
		},
		&cobra.Command{
			Use:   "scenarios <company file>",
			Short: "Compare base, bull and bear scenarios",
			Args:  cobra.ExactArgs(1),
			RunE:  runScenarios,
		},
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadCompany reads a company file. HJSON files round-trip through JSON
// so comments and trailing commas are allowed.
func loadCompany(path string) (*model.Company, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var c model.Company
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hjson":
		var raw any
		if err := hjson.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse hjson %s: %w", path, err)
		}
		jsonData, err := json.Marshal(raw)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(jsonData, &c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parse yaml %s: %w", path, err)
		}
	}

	if err := c.ApplyDefaults(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &c, nil
}

func loadComparables(path string) ([]model.Comparable, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var comparables []model.Comparable
	if err := yaml.Unmarshal(data, &comparables); err != nil {
		return nil, fmt.Errorf("parse yaml %s: %w", path, err)
	}
	return comparables, nil
}

func newEngine() *engine.Engine {
	viper.AutomaticEnv()
	godotenv.Load()

	log, _ := logger.New(logger.Config{Level: "warn", Format: "console", Output: "stderr"})

	var source marketdata.Source
	if token := viper.GetString("TUSHARE_TOKEN"); token != "" {
		source = marketdata.NewClient(token, log)
	}
	return engine.New(source, log)
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func seedPtr() *int64 {
	if flagSeed == 0 {
		return nil
	}
	s := flagSeed
	return &s
}

func runFull(cmd *cobra.Command, args []string) error {
	c, err := loadCompany(args[0])
	if err != nil {
		return err
	}
	comparables, err := loadComparables(flagComparables)
	if err != nil {
		return err
	}

	report, err := newEngine().FullValuation(context.Background(), c, engine.FullOptions{
		Comparables:          comparables,
		MonteCarloIterations: flagIterations,
		Seed:                 seedPtr(),
	})
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(report)
	}
	return renderFullReport(os.Stdout, report)
}

func runDCF(cmd *cobra.Command, args []string) error {
	c, err := loadCompany(args[0])
	if err != nil {
		return err
	}

	result, err := dcfValuation(c)
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(result)
	}
	renderDCF(os.Stdout, c, result)
	return nil
}

func runStress(cmd *cobra.Command, args []string) error {
	c, err := loadCompany(args[0])
	if err != nil {
		return err
	}

	report, err := stressReport(c, flagIterations, seedPtr())
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(report)
	}
	renderStress(os.Stdout, report)
	return nil
}

func runSensitivity(cmd *cobra.Command, args []string) error {
	c, err := loadCompany(args[0])
	if err != nil {
		return err
	}

	results, err := sensitivityAnalysis(c)
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(results)
	}
	renderSensitivity(os.Stdout, results)
	return nil
}

func runScenarios(cmd *cobra.Command, args []string) error {
	c, err := loadCompany(args[0])
	if err != nil {
		return err
	}

	comparison, err := scenarioComparison(c)
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(comparison)
	}
	renderScenarios(os.Stdout, comparison)
	return nil
}
