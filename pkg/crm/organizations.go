package crm

import (
	"context"
	"net/url"

	"github.com/cloverhq/clover/pkg/jsonapi"
	"github.com/cloverhq/clover/pkg/models"
)

// OrganizationSearchFilter is the combined-field search filter key for
// organization lists.
const OrganizationSearchFilter = "filter[legal_name_or_alternate_name_cont]"

// ListOrganizations fetches a page of organizations with their addresses.
func (c *Client) ListOrganizations(ctx context.Context, params ListParams) (*jsonapi.Document, error) {
	if params.PageSize == 0 {
		params.PageSize = DefaultPageSize
	}
	if len(params.Include) == 0 {
		params.Include = []string{"addresses"}
	}
	return c.get(ctx, "/organizations", params.Values())
}

// SearchOrganizations fetches a page of organizations matching the name
// search term. An empty term lists everything.
func (c *Client) SearchOrganizations(ctx context.Context, term string, params ListParams) (*jsonapi.Document, error) {
	if term != "" {
		params = params.WithFilter(OrganizationSearchFilter, term)
	}
	return c.ListOrganizations(ctx, params)
}

// GetOrganization fetches a single organization with its contact points.
func (c *Client) GetOrganization(ctx context.Context, id string) (*jsonapi.Document, error) {
	query := url.Values{}
	query.Set("include", "addresses,phones,emails,web_addresses")
	return c.get(ctx, "/organizations/"+url.PathEscape(id), query)
}

// CreateOrganization creates an organization from the given attributes.
func (c *Client) CreateOrganization(ctx context.Context, attributes models.OrganizationAttributes) (*jsonapi.Document, error) {
	return c.post(ctx, "/organizations", newWriteBody("", models.TypeOrganizations, attributes))
}

// UpdateOrganization updates an organization's attributes.
func (c *Client) UpdateOrganization(ctx context.Context, id string, attributes models.OrganizationAttributes) (*jsonapi.Document, error) {
	return c.put(ctx, "/organizations/"+url.PathEscape(id), newWriteBody(id, models.TypeOrganizations, attributes))
}

// DeleteOrganization deletes an organization.
func (c *Client) DeleteOrganization(ctx context.Context, id string) error {
	return c.delete(ctx, "/organizations/"+url.PathEscape(id))
}

// OrganizationMembershipEntries fetches an organization's membership entries
// with their memberships included, optionally filtered to a date.
func (c *Client) OrganizationMembershipEntries(ctx context.Context, id, activeAt string) (*jsonapi.Document, error) {
	params := ListParams{PageSize: RelatedPageSize, Include: []string{"membership"}}
	if activeAt != "" {
		params = params.WithFilter("active_at", activeAt)
	}
	return c.get(ctx, "/organizations/"+url.PathEscape(id)+"/membership_entries", params.Values())
}

// OrganizationConnections fetches an organization's connections with both
// endpoints included, newest first.
func (c *Client) OrganizationConnections(ctx context.Context, id string) (*jsonapi.Document, error) {
	params := ListParams{
		PageSize: RelatedPageSize,
		Sort:     "-starts_at",
		Include:  []string{"person", "organization", "to", "from"},
	}
	return c.get(ctx, "/organizations/"+url.PathEscape(id)+"/connections", params.Values())
}
