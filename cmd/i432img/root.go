package main

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"
	"github.com/vkngwrapper/i432/memutils/rangealloc"
	"golang.org/x/exp/slog"
)

const envVarPrefix = "I432"

// Config holds settings that can be provided through the environment and overridden by flags
type Config struct {
	Policy  string `envconfig:"POLICY"  default:"first-fit"`
	Verbose bool   `envconfig:"VERBOSE"`
}

var (
	// Global flags
	verbose    bool
	policyName string
)

var rootCmd = &cobra.Command{
	Use:   "i432img",
	Short: "Build and inspect iAPX 432 memory images",
	Long: `i432img lays out segments described in YAML, assigns them object table
coordinates and physical addresses, and writes a flat memory image. It can also
decode an existing image and report its object tables.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().
		StringVar(&policyName, "policy", "", "Allocation policy: first-fit or rotating-first-fit (default $I432_POLICY or first-fit)")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig fills in any global flag that was not provided from the environment
func loadConfig(cmd *cobra.Command, args []string) error {
	var c Config
	if err := envconfig.Process(envVarPrefix, &c); err != nil {
		return errors.Wrap(err, "parsing environment variables")
	}

	flags := cmd.Flags()
	if !flags.Changed("policy") {
		policyName = c.Policy
	}
	if !flags.Changed("verbose") {
		verbose = c.Verbose
	}

	_, err := parsePolicy(policyName)
	return err
}

var policyNames = map[string]rangealloc.Policy{
	"first-fit":          rangealloc.PolicyFirstFit,
	"rotating-first-fit": rangealloc.PolicyRotatingFirstFit,
}

func parsePolicy(name string) (rangealloc.Policy, error) {
	policy, ok := policyNames[name]
	if !ok {
		return rangealloc.PolicyFirstFit, errors.Newf("unknown allocation policy %q", name)
	}
	return policy, nil
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
