package crm

import (
	"context"
	"net/url"

	"github.com/cloverhq/clover/pkg/jsonapi"
)

// GroupSearchFilter is the search filter key for group lists.
const GroupSearchFilter = "filter[name_cont]"

// ListGroups fetches a page of groups.
func (c *Client) ListGroups(ctx context.Context, params ListParams) (*jsonapi.Document, error) {
	if params.PageSize == 0 {
		params.PageSize = DefaultPageSize
	}
	return c.get(ctx, "/groups", params.Values())
}

// SearchGroups fetches a page of groups matching the name search term.
func (c *Client) SearchGroups(ctx context.Context, term string, params ListParams) (*jsonapi.Document, error) {
	if term != "" {
		params = params.WithFilter(GroupSearchFilter, term)
	}
	return c.ListGroups(ctx, params)
}

// GetGroup fetches a single group.
func (c *Client) GetGroup(ctx context.Context, id string) (*jsonapi.Document, error) {
	return c.get(ctx, "/groups/"+url.PathEscape(id), nil)
}

// GroupPeople fetches a page of a group's members with their addresses.
func (c *Client) GroupPeople(ctx context.Context, id string, params ListParams) (*jsonapi.Document, error) {
	if params.PageSize == 0 {
		params.PageSize = DefaultPageSize
	}
	if len(params.Include) == 0 {
		params.Include = []string{"addresses"}
	}
	return c.get(ctx, "/groups/"+url.PathEscape(id)+"/people", params.Values())
}
