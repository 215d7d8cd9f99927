package crm

import (
	"context"
	"net/url"

	"github.com/cloverhq/clover/pkg/jsonapi"
	"github.com/cloverhq/clover/pkg/models"
)

// ListTouchpoints fetches a page of touchpoints with their services included.
func (c *Client) ListTouchpoints(ctx context.Context, params ListParams) (*jsonapi.Document, error) {
	if params.PageSize == 0 {
		params.PageSize = DefaultPageSize
	}
	if len(params.Include) == 0 {
		params.Include = []string{"service"}
	}
	return c.get(ctx, "/touchpoints", params.Values())
}

// GetTouchpoint fetches a single touchpoint with its service included.
func (c *Client) GetTouchpoint(ctx context.Context, id string) (*jsonapi.Document, error) {
	query := url.Values{}
	query.Set("include", "service")
	return c.get(ctx, "/touchpoints/"+url.PathEscape(id), query)
}

// CreateTouchpoint creates a touchpoint from the given attributes.
func (c *Client) CreateTouchpoint(ctx context.Context, attributes models.TouchpointAttributes) (*jsonapi.Document, error) {
	return c.post(ctx, "/touchpoints", newWriteBody("", models.TypeTouchpoints, attributes))
}

// UpdateTouchpoint updates a touchpoint's attributes.
func (c *Client) UpdateTouchpoint(ctx context.Context, id string, attributes models.TouchpointAttributes) (*jsonapi.Document, error) {
	return c.put(ctx, "/touchpoints/"+url.PathEscape(id), newWriteBody(id, models.TypeTouchpoints, attributes))
}

// DeleteTouchpoint deletes a touchpoint.
func (c *Client) DeleteTouchpoint(ctx context.Context, id string) error {
	return c.delete(ctx, "/touchpoints/"+url.PathEscape(id))
}
