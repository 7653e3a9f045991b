package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"firestige.xyz/vjtap/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Load and validate a configuration file, then print the effective
configuration (file values, VJTAP_* environment overrides and defaults) as YAML.

Examples:
  vjtap validate -c vjtap.yml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(configFile, cmd.OutOrStdout())
	},
}

// effectiveConfig mirrors the `vjtap:` root key of the config file.
type effectiveConfig struct {
	VJTap *config.Config `yaml:"vjtap"`
}

func runValidate(path string, w io.Writer) error {
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("INVALID: %w", err)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(effectiveConfig{VJTap: cfg}); err != nil {
		return fmt.Errorf("failed to format config: %w", err)
	}
	return enc.Close()
}
