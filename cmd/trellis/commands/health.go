package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/trellis-io/trellis-client/internal/constants"
)

// NewHealthCommand creates the health command.
func NewHealthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		Long:  "Query the Trellis server health endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Health probes should answer fast or not at all
			ctx, cancel := context.WithTimeout(context.Background(), constants.ShortHTTPTimeout)
			defer cancel()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			status, err := client.Health(ctx)
			if err != nil {
				return fmt.Errorf("failed to check health: %w", err)
			}

			return renderOutput(status, func() error {
				table := tablewriter.NewWriter(os.Stdout)
				table.Header("Property", "Value")

				_ = table.Append([]string{"Status", status.Status})
				_ = table.Append([]string{"Version", formatValue(status.Version)})

				if err := table.Render(); err != nil {
					return fmt.Errorf("failed to render health table: %w", err)
				}

				return nil
			})
		},
	}
}
