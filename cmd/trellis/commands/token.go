package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/trellis-io/trellis-client/internal/constants"
)

// NewTokenCommand creates the token command group.
func NewTokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the session token pair",
		Long:  "Inspect or refresh the access/refresh token pair stored by 'trellis login'",
	}

	cmd.AddCommand(newTokenShowCommand())
	cmd.AddCommand(newTokenRefreshCommand())

	return cmd
}

func newTokenShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the stored token pair (masked)",
		Long:  "Display whether an access and refresh token are stored, with values masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			type tokenInfo struct {
				AccessToken  string `json:"access_token"  yaml:"access_token"`
				RefreshToken string `json:"refresh_token" yaml:"refresh_token"`
			}

			info := tokenInfo{}
			if config.AccessToken != "" {
				info.AccessToken = constants.MaskedSecret
			}

			if config.RefreshToken != "" {
				info.RefreshToken = constants.MaskedSecret
			}

			return renderOutput(info, func() error {
				table := tablewriter.NewWriter(os.Stdout)
				table.Header("Property", "Value")

				_ = table.Append([]string{"Access Token", formatValue(info.AccessToken)})
				_ = table.Append([]string{"Refresh Token", formatValue(info.RefreshToken)})

				if err := table.Render(); err != nil {
					return fmt.Errorf("failed to render token table: %w", err)
				}

				return nil
			})
		},
	}
}

func newTokenRefreshCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Refresh the access token",
		Long:  "Exchange the stored refresh token for a new access token and persist it",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			if config.RefreshToken == "" {
				return ErrNotAuthenticated
			}

			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			if err := client.Auth().Refresh(ctx); err != nil {
				return fmt.Errorf("failed to refresh token: %w", err)
			}

			if err := persistSession(client); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			fmt.Println("Access token refreshed")

			return nil
		},
	}
}
