package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/trellis-io/trellis-client/internal/constants"
	"github.com/trellis-io/trellis-client/pkg/trellis"
)

// NewCollectionsCommand creates the collections command group.
func NewCollectionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collections",
		Short: "Manage collections",
		Long:  "List and inspect the collections available on the Trellis server",
	}

	cmd.AddCommand(newCollectionsListCommand())
	cmd.AddCommand(newCollectionsGetCommand())

	return cmd
}

func newCollectionsListCommand() *cobra.Command {
	var allPages bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List collections",
		Long:  "List all collections",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			var collections []trellis.Collection

			if allPages {
				pager := &collectionPager{client: client.Collections()}

				collections, err = trellis.FetchAllPages[trellis.Collection](ctx, pager, "", nil, &trellis.PaginationOptions{
					PageSize: constants.LargePageSize,
					MaxPages: constants.MaxPages,
				})
				if err != nil {
					return fmt.Errorf("failed to list collections: %w", err)
				}
			} else {
				list, err := client.Collections().List(ctx, nil)
				if err != nil {
					return fmt.Errorf("failed to list collections: %w", err)
				}

				collections = list.Resources
			}

			_ = persistSession(client)

			return renderOutput(collections, func() error {
				return displayCollectionsTable(collections)
			})
		},
	}

	cmd.Flags().BoolVar(&allPages, "all", false, "fetch all pages")

	return cmd
}

func newCollectionsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get COLLECTION_NAME",
		Short: "Show a collection",
		Long:  "Fetch and display a single collection, including its schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			collection, err := client.Collections().Get(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to get collection: %w", err)
			}

			_ = persistSession(client)

			return renderOutput(collection, func() error {
				return displayCollectionTable(collection)
			})
		},
	}
}

func displayCollectionsTable(collections []trellis.Collection) error {
	if len(collections) == 0 {
		_, _ = os.Stdout.WriteString("No collections found\n")

		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Name", "Type", "ID", "Created")

	for _, collection := range collections {
		_ = table.Append([]string{
			collection.Name,
			collection.Type,
			collection.ID,
			collection.CreatedAt.Format(time.RFC3339),
		})
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render collections table: %w", err)
	}

	return nil
}

func displayCollectionTable(collection *trellis.Collection) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Property", "Value")

	_ = table.Append([]string{"Name", collection.Name})
	_ = table.Append([]string{"Type", collection.Type})
	_ = table.Append([]string{"ID", collection.ID})
	_ = table.Append([]string{"Created", collection.CreatedAt.Format(time.RFC3339)})
	_ = table.Append([]string{"Updated", collection.UpdatedAt.Format(time.RFC3339)})

	if len(collection.Schema) > 0 {
		_ = table.Append([]string{"Schema", string(collection.Schema)})
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render collection table: %w", err)
	}

	return nil
}
