package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Glowing-Pixels-UG/just-storage-sub001/internal/cli/output"
	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/config"
	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"
)

var schemaOutput string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Load the configuration (file, environment, defaults) and print the
effective result as YAML. Secrets are redacted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.MustLoad(GetConfigFile())
		if err != nil {
			return err
		}

		redacted := *cfg
		if redacted.Auth.JWTSecret != "" {
			redacted.Auth.JWTSecret = "<redacted>"
		}
		redacted.Catalog.URL = config.RedactURL(redacted.Catalog.URL)

		return output.PrintYAML(os.Stdout, &redacted)
	},
}

var configSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Generate JSON schema for the configuration",
	Long: `Generate a JSON schema for the juststorage configuration file.

The schema can be used for:
  - IDE autocompletion (VS Code, IntelliJ, etc.)
  - Configuration file validation
  - Documentation generation

Examples:
  # Print schema to stdout
  juststorage config schema

  # Save schema to file
  juststorage config schema --output config.schema.json`,
	RunE: runConfigSchema,
}

func runConfigSchema(cmd *cobra.Command, args []string) error {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	schema := reflector.Reflect(&config.Config{})
	schema.Version = "https://json-schema.org/draft/2020-12/schema"
	schema.Title = "juststorage Configuration"
	schema.Description = "Configuration schema for the juststorage server"

	schemaJSON, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	if schemaOutput != "" {
		if err := os.WriteFile(schemaOutput, schemaJSON, 0644); err != nil {
			return fmt.Errorf("failed to write schema file: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "JSON schema written to %s\n", schemaOutput)
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(schemaJSON))
	return nil
}

func init() {
	configSchemaCmd.Flags().StringVarP(&schemaOutput, "output", "o", "", "Output file (default: stdout)")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSchemaCmd)
}
