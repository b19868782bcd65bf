package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/viper"
	"github.com/trellis-io/trellis-client/internal/constants"
	"github.com/trellis-io/trellis-client/pkg/trellis"
	"github.com/trellis-io/trellis-client/pkg/trellisclient"
	"gopkg.in/yaml.v3"
)

// Common static errors used throughout the commands package.
var (
	ErrAPIEndpointRequired = errors.New("API endpoint is required, use --api or 'trellis config set api <url>'")
	ErrNotAuthenticated    = errors.New("not authenticated, use 'trellis login' first")
	ErrUnknownConfigKey    = errors.New("unknown configuration key")
	ErrTokenFieldsReadOnly = errors.New("token fields cannot be set directly, use 'trellis login'")
	ErrInvalidFieldFormat  = errors.New("invalid field format, expected key=value")
	ErrNoFieldsGiven       = errors.New("at least one --field is required")
)

const fieldSummaryMaxLen = 60

// createClient builds an API client from the effective configuration. No
// network call is made here; an expired access token recovers on first use.
func createClient(ctx context.Context) (trellis.Client, error) {
	config := loadConfig()
	if config.API == "" {
		return nil, ErrAPIEndpointRequired
	}

	client, err := trellisclient.New(ctx, &trellis.Config{
		Endpoint:     config.API,
		AccessToken:  config.AccessToken,
		RefreshToken: config.RefreshToken,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

// persistSession writes the client's current token pair back to the config
// file when the session guard rotated it during a command.
func persistSession(client trellis.Client) error {
	config := loadConfig()

	access, refresh := client.Auth().Tokens()
	if access == config.AccessToken && refresh == config.RefreshToken {
		return nil
	}

	config.AccessToken = access
	config.RefreshToken = refresh

	return saveConfigStruct(config)
}

// renderOutput encodes data as JSON or YAML per the --output flag, falling
// back to the provided table renderer.
func renderOutput(data interface{}, renderTable func() error) error {
	output := viper.GetString("output")
	switch output {
	case constants.FormatJSON:
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		if err := encoder.Encode(data); err != nil {
			return fmt.Errorf("failed to encode as JSON: %w", err)
		}

		return nil
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(os.Stdout)

		if err := encoder.Encode(data); err != nil {
			return fmt.Errorf("failed to encode as YAML: %w", err)
		}

		return nil
	default:
		return renderTable()
	}
}

// parseFields converts repeated key=value flags into a record field map.
// Values that parse as JSON keep their type; everything else stays a string.
func parseFields(pairs []string) (map[string]interface{}, error) {
	fields := make(map[string]interface{}, len(pairs))

	for _, pair := range pairs {
		parts := strings.SplitN(pair, "=", constants.KeyValueSplitParts)
		if len(parts) != constants.KeyValueSplitParts || parts[0] == "" {
			return nil, fmt.Errorf("%w: '%s'", ErrInvalidFieldFormat, pair)
		}

		var value interface{}
		if err := json.Unmarshal([]byte(parts[1]), &value); err != nil {
			value = parts[1]
		}

		fields[parts[0]] = value
	}

	return fields, nil
}

// parseFilters converts repeated key=value flags into named query filters.
func parseFilters(params *trellis.QueryParams, pairs []string) error {
	for _, pair := range pairs {
		parts := strings.SplitN(pair, "=", constants.KeyValueSplitParts)
		if len(parts) != constants.KeyValueSplitParts || parts[0] == "" {
			return fmt.Errorf("%w: '%s'", ErrInvalidFieldFormat, pair)
		}

		params.WithFilter(parts[0], parts[1])
	}

	return nil
}

// summarizeFields renders a record's fields as a compact "k=v, k=v" string
// for table cells, truncated for display.
func summarizeFields(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return constants.NotAvailable
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", key, fields[key]))
	}

	summary := strings.Join(parts, ", ")
	if len(summary) > fieldSummaryMaxLen {
		summary = summary[:fieldSummaryMaxLen-3] + "..."
	}

	return summary
}

func formatValue(value string) string {
	if value == "" {
		return constants.NotAvailable
	}

	return value
}

// recordPager adapts the records service to the pagination helpers; the
// collection is fixed and the path argument is ignored.
type recordPager struct {
	client     trellis.RecordsClient
	collection string
}

func (p *recordPager) ListWithPath(ctx context.Context, _ string, params *trellis.QueryParams) (*trellis.RecordList, error) {
	return p.client.List(ctx, p.collection, params)
}

// collectionPager adapts the collections service to the pagination helpers.
type collectionPager struct {
	client trellis.CollectionsClient
}

func (p *collectionPager) ListWithPath(ctx context.Context, _ string, params *trellis.QueryParams) (*trellis.CollectionList, error) {
	return p.client.List(ctx, params)
}
