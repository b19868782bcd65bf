package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/trellis-io/trellis-client/internal/constants"
	"gopkg.in/yaml.v3"
)

// Config represents the CLI configuration persisted under ~/.trellis.
type Config struct {
	API          string `json:"api,omitempty"           yaml:"api,omitempty"`
	Identity     string `json:"identity,omitempty"      yaml:"identity,omitempty"`
	AccessToken  string `json:"access_token,omitempty"  yaml:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty" yaml:"refresh_token,omitempty"`
	Output       string `json:"output,omitempty"        yaml:"output,omitempty"`
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Manage Trellis CLI configuration including the API endpoint and output format",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the current CLI configuration with token values masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			// Tokens never leave the config file in the clear.
			masked := *config
			if masked.AccessToken != "" {
				masked.AccessToken = constants.MaskedSecret
			}

			if masked.RefreshToken != "" {
				masked.RefreshToken = constants.MaskedSecret
			}

			return renderOutput(masked, func() error {
				return displayConfigTable(&masked)
			})
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a specific configuration value (api, identity, output)",
		Args:  cobra.ExactArgs(constants.KeyValueSplitParts),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := args[1]

			config := loadConfig()

			switch key {
			case "api":
				config.API = value
			case "identity":
				config.Identity = value
			case "output":
				config.Output = value
			case "access_token", "refresh_token":
				return ErrTokenFieldsReadOnly
			default:
				return fmt.Errorf("%w: %s", ErrUnknownConfigKey, key)
			}

			if err := saveConfigStruct(config); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			fmt.Fprintf(os.Stdout, "Set %s\n", key)

			return nil
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Remove a specific configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			config := loadConfig()

			switch key {
			case "api":
				config.API = ""
			case "identity":
				config.Identity = ""
			case "output":
				config.Output = ""
			case "access_token", "refresh_token":
				return fmt.Errorf("%w, use 'trellis logout' instead", ErrTokenFieldsReadOnly)
			default:
				return fmt.Errorf("%w: %s", ErrUnknownConfigKey, key)
			}

			if err := saveConfigStruct(config); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			fmt.Fprintf(os.Stdout, "Unset %s\n", key)

			return nil
		},
	}
}

// loadConfig builds the effective configuration from viper, which merges the
// config file, TRELLIS_ environment variables, and command-line flags.
func loadConfig() *Config {
	return &Config{
		API:          viper.GetString("api"),
		Identity:     viper.GetString("identity"),
		AccessToken:  viper.GetString("access_token"),
		RefreshToken: viper.GetString("refresh_token"),
		Output:       viper.GetString("output"),
	}
}

func saveConfigStruct(config *Config) error {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get user home directory: %w", err)
		}

		configDir := filepath.Join(home, ".trellis")

		err = os.MkdirAll(configDir, constants.ConfigDirPerm)
		if err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}

		configFile = filepath.Join(configDir, "config.yml")
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	// Keep the in-process view consistent for the rest of the command.
	viper.Set("api", config.API)
	viper.Set("identity", config.Identity)
	viper.Set("access_token", config.AccessToken)
	viper.Set("refresh_token", config.RefreshToken)

	return nil
}

func displayConfigTable(config *Config) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Property", "Value")

	_ = table.Append([]string{"API", formatValue(config.API)})
	_ = table.Append([]string{"Identity", formatValue(config.Identity)})
	_ = table.Append([]string{"Access Token", formatValue(config.AccessToken)})
	_ = table.Append([]string{"Refresh Token", formatValue(config.RefreshToken)})
	_ = table.Append([]string{"Output", formatValue(config.Output)})

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render config table: %w", err)
	}

	return nil
}
