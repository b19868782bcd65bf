package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/trellis-io/trellis-client/internal/constants"
	"github.com/trellis-io/trellis-client/pkg/trellis"
)

// NewRecordsCommand creates the records command group.
func NewRecordsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Manage records",
		Long:  "List, inspect, create, update, and delete records within a collection",
	}

	cmd.AddCommand(newRecordsListCommand())
	cmd.AddCommand(newRecordsGetCommand())
	cmd.AddCommand(newRecordsCreateCommand())
	cmd.AddCommand(newRecordsUpdateCommand())
	cmd.AddCommand(newRecordsDeleteCommand())

	return cmd
}

func newRecordsListCommand() *cobra.Command {
	var (
		page       int
		perPage    int
		allPages   bool
		orderBy    string
		filterExpr string
		filters    []string
	)

	cmd := &cobra.Command{
		Use:   "list COLLECTION",
		Short: "List records in a collection",
		Long:  "List records in a collection with optional filtering and sorting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			collection := args[0]

			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			params := trellis.NewQueryParams()
			if page > 0 {
				params.WithPage(page)
			}

			if perPage > 0 {
				params.WithPerPage(perPage)
			}

			if orderBy != "" {
				params.WithOrderBy(orderBy)
			}

			if filterExpr != "" {
				params.WithFilterExpression(filterExpr)
			}

			if err := parseFilters(params, filters); err != nil {
				return err
			}

			var records []trellis.Record

			if allPages {
				pager := &recordPager{client: client.Records(), collection: collection}

				records, err = trellis.FetchAllPages[trellis.Record](ctx, pager, "", params, &trellis.PaginationOptions{
					PageSize: constants.LargePageSize,
					MaxPages: constants.MaxPages,
				})
				if err != nil {
					return fmt.Errorf("failed to list records: %w", err)
				}
			} else {
				list, err := client.Records().List(ctx, collection, params)
				if err != nil {
					return fmt.Errorf("failed to list records: %w", err)
				}

				records = list.Resources
			}

			_ = persistSession(client)

			return renderOutput(records, func() error {
				return displayRecordsTable(records)
			})
		},
	}

	cmd.Flags().IntVar(&page, "page", 0, "page number to fetch")
	cmd.Flags().IntVar(&perPage, "per-page", 0, "results per page")
	cmd.Flags().BoolVar(&allPages, "all", false, "fetch all pages")
	cmd.Flags().StringVar(&orderBy, "sort", "", "sort expression (prefix with '-' for descending)")
	cmd.Flags().StringVar(&filterExpr, "filter", "", "free-form filter expression")
	cmd.Flags().StringArrayVar(&filters, "where", nil, "named filter as key=value (repeatable)")

	return cmd
}

func newRecordsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get COLLECTION RECORD_ID",
		Short: "Show a record",
		Long:  "Fetch and display a single record",
		Args:  cobra.ExactArgs(constants.KeyValueSplitParts),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			record, err := client.Records().Get(ctx, args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to get record: %w", err)
			}

			_ = persistSession(client)

			return renderOutput(record, func() error {
				return displayRecordTable(record)
			})
		},
	}
}

func newRecordsCreateCommand() *cobra.Command {
	var fieldPairs []string

	cmd := &cobra.Command{
		Use:   "create COLLECTION",
		Short: "Create a record",
		Long:  "Create a record from repeated --field key=value flags; JSON values keep their type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(fieldPairs) == 0 {
				return ErrNoFieldsGiven
			}

			fields, err := parseFields(fieldPairs)
			if err != nil {
				return err
			}

			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			record, err := client.Records().Create(ctx, args[0], fields)
			if err != nil {
				return fmt.Errorf("failed to create record: %w", err)
			}

			_ = persistSession(client)

			return renderOutput(record, func() error {
				fmt.Fprintf(os.Stdout, "Created record '%s' in collection '%s'\n", record.ID, record.Collection)

				return displayRecordTable(record)
			})
		},
	}

	cmd.Flags().StringArrayVar(&fieldPairs, "field", nil, "record field as key=value (repeatable)")

	return cmd
}

func newRecordsUpdateCommand() *cobra.Command {
	var fieldPairs []string

	cmd := &cobra.Command{
		Use:   "update COLLECTION RECORD_ID",
		Short: "Update a record",
		Long:  "Apply a partial update to a record from repeated --field key=value flags",
		Args:  cobra.ExactArgs(constants.KeyValueSplitParts),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(fieldPairs) == 0 {
				return ErrNoFieldsGiven
			}

			fields, err := parseFields(fieldPairs)
			if err != nil {
				return err
			}

			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			record, err := client.Records().Update(ctx, args[0], args[1], fields)
			if err != nil {
				return fmt.Errorf("failed to update record: %w", err)
			}

			_ = persistSession(client)

			return renderOutput(record, func() error {
				fmt.Fprintf(os.Stdout, "Updated record '%s'\n", record.ID)

				return displayRecordTable(record)
			})
		},
	}

	cmd.Flags().StringArrayVar(&fieldPairs, "field", nil, "record field as key=value (repeatable)")

	return cmd
}

func newRecordsDeleteCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete COLLECTION RECORD_ID",
		Short: "Delete a record",
		Long:  "Delete a record from a collection",
		Args:  cobra.ExactArgs(constants.KeyValueSplitParts),
		RunE: func(cmd *cobra.Command, args []string) error {
			collection := args[0]
			recordID := args[1]

			if !force {
				fmt.Fprintf(os.Stdout, "Really delete record '%s' from '%s'? (y/N): ", recordID, collection)

				var response string

				_, _ = fmt.Scanln(&response)
				if response != "y" && response != "Y" {
					_, _ = os.Stdout.WriteString("Cancelled\n")

					return nil
				}
			}

			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			if err := client.Records().Delete(ctx, collection, recordID); err != nil {
				return fmt.Errorf("failed to delete record: %w", err)
			}

			_ = persistSession(client)

			fmt.Fprintf(os.Stdout, "Successfully deleted record '%s'\n", recordID)

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "force deletion without confirmation")

	return cmd
}

func displayRecordsTable(records []trellis.Record) error {
	if len(records) == 0 {
		_, _ = os.Stdout.WriteString("No records found\n")

		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("ID", "Fields", "Created", "Updated")

	for _, record := range records {
		_ = table.Append([]string{
			record.ID,
			summarizeFields(record.Fields),
			record.CreatedAt.Format(time.RFC3339),
			record.UpdatedAt.Format(time.RFC3339),
		})
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render records table: %w", err)
	}

	return nil
}

func displayRecordTable(record *trellis.Record) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Property", "Value")

	_ = table.Append([]string{"ID", record.ID})
	_ = table.Append([]string{"Collection", record.Collection})
	_ = table.Append([]string{"Created", record.CreatedAt.Format(time.RFC3339)})
	_ = table.Append([]string{"Updated", record.UpdatedAt.Format(time.RFC3339)})

	keys := make([]string, 0, len(record.Fields))
	for key := range record.Fields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	for _, key := range keys {
		value := record.Fields[key]
		if _, ok := value.(string); !ok {
			if encoded, err := json.Marshal(value); err == nil {
				value = string(encoded)
			}
		}

		_ = table.Append([]string{"fields." + key, fmt.Sprintf("%v", value)})
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render record table: %w", err)
	}

	return nil
}
