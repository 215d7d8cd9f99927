package crm

import (
	"net/url"
	"strconv"
	"strings"
)

// PeopleSearchFilter is the combined-field search filter key the upstream
// exposes for people lists.
const PeopleSearchFilter = "filter[given_name_or_family_name_or_full_name_or_emails_address_cont]"

// ListParams carries the JSON:API query options shared by list endpoints.
// Zero values are omitted from the request.
type ListParams struct {
	Page     int
	PageSize int
	Sort     string
	Include  []string
	Filters  map[string]string
}

// WithFilter returns a copy of the params with one more filter[...] entry.
// The key is the bare field name; the filter[] wrapping is added at encoding.
func (p ListParams) WithFilter(field, value string) ListParams {
	filters := make(map[string]string, len(p.Filters)+1)
	for k, v := range p.Filters {
		filters[k] = v
	}
	filters[field] = value
	p.Filters = filters
	return p
}

// Values encodes the params as upstream query parameters: page[number],
// page[size], sort, include as a comma-joined list, and filter[field] per
// filter. Filter keys already wrapped in filter[...] are passed through.
func (p ListParams) Values() url.Values {
	values := url.Values{}

	if p.Page > 0 {
		values.Set("page[number]", strconv.Itoa(p.Page))
	}
	if p.PageSize > 0 {
		values.Set("page[size]", strconv.Itoa(p.PageSize))
	}
	if p.Sort != "" {
		values.Set("sort", p.Sort)
	}
	if len(p.Include) > 0 {
		values.Set("include", strings.Join(p.Include, ","))
	}
	for field, value := range p.Filters {
		if value == "" {
			continue
		}
		key := field
		if !strings.HasPrefix(field, "filter[") {
			key = "filter[" + field + "]"
		}
		values.Set(key, value)
	}

	return values
}
