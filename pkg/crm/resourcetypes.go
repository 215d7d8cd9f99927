package crm

import (
	"context"

	"github.com/cloverhq/clover/pkg/jsonapi"
)

// ResourceTypesPageSize is large enough to pull the full catalog in a single
// page; the upstream's own type filter is unreliable so partitioning happens
// client-side.
const ResourceTypesPageSize = 200

// ListResourceTypes fetches the entire resource-type catalog in one page.
func (c *Client) ListResourceTypes(ctx context.Context) (*jsonapi.Document, error) {
	params := ListParams{PageSize: ResourceTypesPageSize}
	return c.get(ctx, "/resource_types", params.Values())
}
