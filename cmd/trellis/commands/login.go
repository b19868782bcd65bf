package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/trellis-io/trellis-client/pkg/trellisclient"
	"golang.org/x/term"
)

// NewLoginCommand creates the login command
func NewLoginCommand() *cobra.Command {
	var (
		apiEndpoint string
		identity    string
		password    string
		signup      bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login to a Trellis server",
		Long:  "Authenticate against a Trellis API endpoint and store the session token pair",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Get API endpoint
			if apiEndpoint == "" {
				apiEndpoint = viper.GetString("api")
			}

			if apiEndpoint == "" {
				reader := bufio.NewReader(os.Stdin)
				fmt.Print("API endpoint: ")
				apiEndpoint, _ = reader.ReadString('\n')
				apiEndpoint = strings.TrimSpace(apiEndpoint)
			}

			if apiEndpoint == "" {
				return ErrAPIEndpointRequired
			}

			if identity == "" {
				reader := bufio.NewReader(os.Stdin)
				fmt.Print("Identity: ")
				identity, _ = reader.ReadString('\n')
				identity = strings.TrimSpace(identity)
			}

			if password == "" {
				fmt.Print("Password: ")
				bytePassword, err := term.ReadPassword(int(syscall.Stdin))
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
				password = string(bytePassword)
				fmt.Println()
			}

			ctx := context.Background()

			client, err := trellisclient.NewWithEndpoint(ctx, apiEndpoint)
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}

			if signup {
				_, err = client.Auth().Signup(ctx, identity, password)
			} else {
				_, err = client.Auth().Login(ctx, identity, password)
			}

			if err != nil {
				return fmt.Errorf("failed to authenticate: %w", err)
			}

			access, refresh := client.Auth().Tokens()

			config := loadConfig()
			config.API = apiEndpoint
			config.Identity = identity
			config.AccessToken = access
			config.RefreshToken = refresh

			if err := saveConfigStruct(config); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			fmt.Printf("Successfully logged in to %s as %s\n", apiEndpoint, identity)

			return nil
		},
	}

	cmd.Flags().StringVarP(&apiEndpoint, "api", "a", "", "API endpoint URL")
	cmd.Flags().StringVarP(&identity, "identity", "u", "", "identity (email or username) for authentication")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password for authentication")
	cmd.Flags().BoolVar(&signup, "signup", false, "create the account before logging in")

	return cmd
}

// NewLogoutCommand creates the logout command
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Logout from the Trellis server",
		Long:  "Revoke the session server-side when possible and clear stored tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			// Best effort server-side revocation; local tokens are cleared
			// regardless.
			if client, err := createClient(ctx); err == nil {
				_ = client.Auth().Logout(ctx)
			}

			config := loadConfig()
			config.AccessToken = ""
			config.RefreshToken = ""

			if err := saveConfigStruct(config); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			fmt.Println("Successfully logged out")
			return nil
		},
	}
}
