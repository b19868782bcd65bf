package trellis

import (
	"net/url"
	"strconv"
	"strings"
)

// QueryParams captures the list options the Trellis API understands. The
// zero value means "server defaults"; use NewQueryParams for the builder
// style.
type QueryParams struct {
	Page    int
	PerPage int
	OrderBy string
	Filter  string
	Expand  []string
	Fields  map[string][]string
	Filters map[string][]string
}

// NewQueryParams creates an empty QueryParams ready for chaining.
func NewQueryParams() *QueryParams {
	return &QueryParams{
		Fields:  make(map[string][]string),
		Filters: make(map[string][]string),
	}
}

// WithPage sets the page number.
func (q *QueryParams) WithPage(page int) *QueryParams {
	q.Page = page

	return q
}

// WithPerPage sets the page size.
func (q *QueryParams) WithPerPage(perPage int) *QueryParams {
	q.PerPage = perPage

	return q
}

// WithOrderBy sets the sort expression (prefix a field with '-' for
// descending).
func (q *QueryParams) WithOrderBy(orderBy string) *QueryParams {
	q.OrderBy = orderBy

	return q
}

// WithFilterExpression sets the free-form filter expression.
func (q *QueryParams) WithFilterExpression(filter string) *QueryParams {
	q.Filter = filter

	return q
}

// WithExpand appends relation names to expand in the response.
func (q *QueryParams) WithExpand(relations ...string) *QueryParams {
	q.Expand = append(q.Expand, relations...)

	return q
}

// WithFields replaces the selected fields for a resource type.
func (q *QueryParams) WithFields(resource string, fields ...string) *QueryParams {
	if q.Fields == nil {
		q.Fields = make(map[string][]string)
	}

	q.Fields[resource] = fields

	return q
}

// WithFilter appends values to a named filter.
func (q *QueryParams) WithFilter(name string, values ...string) *QueryParams {
	if q.Filters == nil {
		q.Filters = make(map[string][]string)
	}

	q.Filters[name] = append(q.Filters[name], values...)

	return q
}

// ToValues converts the parameters to url.Values for the transport layer.
func (q *QueryParams) ToValues() url.Values {
	values := url.Values{}

	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}

	if q.PerPage > 0 {
		values.Set("per_page", strconv.Itoa(q.PerPage))
	}

	if q.OrderBy != "" {
		values.Set("order_by", q.OrderBy)
	}

	if q.Filter != "" {
		values.Set("filter", q.Filter)
	}

	if len(q.Expand) > 0 {
		values.Set("expand", strings.Join(q.Expand, ","))
	}

	for resource, fields := range q.Fields {
		values.Set("fields["+resource+"]", strings.Join(fields, ","))
	}

	for name, filterValues := range q.Filters {
		values.Set(name, strings.Join(filterValues, ","))
	}

	return values
}
