package crm

import (
	"context"
	"net/url"

	"github.com/cloverhq/clover/pkg/jsonapi"
	"github.com/cloverhq/clover/pkg/models"
)

const (
	// DefaultPageSize is the page size for list endpoints.
	DefaultPageSize = 25

	// RelatedPageSize is the page size for related-record probes (membership
	// entries, touchpoint batches).
	RelatedPageSize = 50
)

// writeBody is the JSON:API request envelope for create/update calls.
type writeBody struct {
	Data writeResource `json:"data"`
}

type writeResource struct {
	ID         string `json:"id,omitempty"`
	Type       string `json:"type"`
	Attributes any    `json:"attributes"`
}

func newWriteBody(id, resourceType string, attributes any) writeBody {
	return writeBody{Data: writeResource{ID: id, Type: resourceType, Attributes: attributes}}
}

// ListPeople fetches a page of people. The list view only needs addresses for
// the location line, so that is the default include.
func (c *Client) ListPeople(ctx context.Context, params ListParams) (*jsonapi.Document, error) {
	if params.PageSize == 0 {
		params.PageSize = DefaultPageSize
	}
	if len(params.Include) == 0 {
		params.Include = []string{"addresses"}
	}
	return c.get(ctx, "/people", params.Values())
}

// SearchPeople fetches a page of people matching the combined name/email
// search term. An empty term lists everyone.
func (c *Client) SearchPeople(ctx context.Context, term string, params ListParams) (*jsonapi.Document, error) {
	if term != "" {
		params = params.WithFilter(PeopleSearchFilter, term)
	}
	return c.ListPeople(ctx, params)
}

// GetPerson fetches a single person with their contact points.
func (c *Client) GetPerson(ctx context.Context, id string) (*jsonapi.Document, error) {
	query := url.Values{}
	query.Set("include", "addresses,phones,emails,web_addresses")
	return c.get(ctx, "/people/"+url.PathEscape(id), query)
}

// CreatePerson creates a person from the given attributes.
func (c *Client) CreatePerson(ctx context.Context, attributes models.PersonAttributes) (*jsonapi.Document, error) {
	return c.post(ctx, "/people", newWriteBody("", models.TypePeople, attributes))
}

// UpdatePerson updates a person's attributes.
func (c *Client) UpdatePerson(ctx context.Context, id string, attributes models.PersonAttributes) (*jsonapi.Document, error) {
	return c.put(ctx, "/people/"+url.PathEscape(id), newWriteBody(id, models.TypePeople, attributes))
}

// DeletePerson deletes a person.
func (c *Client) DeletePerson(ctx context.Context, id string) error {
	return c.delete(ctx, "/people/"+url.PathEscape(id))
}

// PersonMembershipEntries fetches a person's membership entries with their
// memberships included. When activeAt is non-empty only entries active on
// that date are returned.
func (c *Client) PersonMembershipEntries(ctx context.Context, id, activeAt string) (*jsonapi.Document, error) {
	params := ListParams{PageSize: RelatedPageSize, Include: []string{"membership"}}
	if activeAt != "" {
		params = params.WithFilter("active_at", activeAt)
	}
	return c.get(ctx, "/people/"+url.PathEscape(id)+"/membership_entries", params.Values())
}

// PersonTouchpoints fetches a person's touchpoints with their services
// included. Ordering is finalized client-side after batch collection.
func (c *Client) PersonTouchpoints(ctx context.Context, id string) (*jsonapi.Document, error) {
	params := ListParams{PageSize: RelatedPageSize, Include: []string{"service"}}
	return c.get(ctx, "/people/"+url.PathEscape(id)+"/touchpoints", params.Values())
}

// PersonConnections fetches a person's connections with both endpoints
// included, newest first. Records with no start date sort last.
func (c *Client) PersonConnections(ctx context.Context, id string) (*jsonapi.Document, error) {
	params := ListParams{
		PageSize: RelatedPageSize,
		Sort:     "-starts_at",
		Include:  []string{"person", "organization", "to", "from"},
	}
	return c.get(ctx, "/people/"+url.PathEscape(id)+"/connections", params.Values())
}
