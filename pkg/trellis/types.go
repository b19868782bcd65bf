package trellis

import (
	"encoding/json"
	"time"
)

// Resource is the base structure shared by all Trellis API resources.
type Resource struct {
	ID        string    `json:"id"         yaml:"id"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
	Links     Links     `json:"links"      yaml:"links"`
}

// Links represents resource links.
type Links map[string]Link

// Link represents a single link.
type Link struct {
	Href   string `json:"href"             yaml:"href"`
	Method string `json:"method,omitempty" yaml:"method,omitempty"`
}

// Record is a single record stored in a collection. Field values are kept
// opaque; schema validation happens server-side.
type Record struct {
	Resource

	Collection string                 `json:"collection" yaml:"collection"`
	Fields     map[string]interface{} `json:"fields"     yaml:"fields"`
}

// GetString returns the named field as a string, or "" when absent or not a
// string.
func (r *Record) GetString(field string) string {
	value, ok := r.Fields[field].(string)
	if !ok {
		return ""
	}

	return value
}

// Collection describes a collection of records.
type Collection struct {
	Resource

	Name   string          `json:"name"             yaml:"name"`
	Type   string          `json:"type"             yaml:"type"`
	Schema json.RawMessage `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// AuthUser is the account record returned by the auth endpoints.
type AuthUser struct {
	Resource

	Identity string `json:"identity"           yaml:"identity"`
	Email    string `json:"email,omitempty"    yaml:"email,omitempty"`
	Verified bool   `json:"verified"           yaml:"verified"`
}

// HealthStatus represents the /api/v1/health response.
type HealthStatus struct {
	Status  string `json:"status"  yaml:"status"`
	Version string `json:"version" yaml:"version"`
}

// Pagination represents pagination information on list responses.
type Pagination struct {
	TotalResults int   `json:"total_results"      yaml:"total_results"`
	TotalPages   int   `json:"total_pages"        yaml:"total_pages"`
	First        Link  `json:"first"              yaml:"first"`
	Last         Link  `json:"last"               yaml:"last"`
	Next         *Link `json:"next,omitempty"     yaml:"next,omitempty"`
	Previous     *Link `json:"previous,omitempty" yaml:"previous,omitempty"`
}

// ListResponse represents a paginated list response.
type ListResponse[T any] struct {
	Pagination Pagination `json:"pagination" yaml:"pagination"`
	Resources  []T        `json:"resources"  yaml:"resources"`
}

// RecordList represents a paginated list of records.
type RecordList = ListResponse[Record]

// CollectionList represents a paginated list of collections.
type CollectionList = ListResponse[Collection]
