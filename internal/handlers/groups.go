package handlers

import (
	"context"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/cloverhq/clover/pkg/crm"
	"github.com/cloverhq/clover/pkg/format"
	"github.com/cloverhq/clover/pkg/jsonapi"
	"github.com/cloverhq/clover/pkg/models"
	"github.com/cloverhq/clover/pkg/pagination"
	"github.com/cloverhq/clover/pkg/resourcetypes"
	"github.com/cloverhq/clover/pkg/tracing"
)

// GroupsHandler handles group API endpoints
type GroupsHandler struct {
	client   *crm.Client
	resolver *resourcetypes.Resolver
	logger   ectologger.Logger
}

// NewGroupsHandler creates a new groups handler
func NewGroupsHandler(client *crm.Client, resolver *resourcetypes.Resolver, logger ectologger.Logger) *GroupsHandler {
	return &GroupsHandler{client: client, resolver: resolver, logger: logger}
}

// GroupRowView is one row of the group list.
type GroupRowView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	TypeLabel   string `json:"type_label,omitempty"`
	PeopleCount int    `json:"people_count"`
}

// GroupListResponse is the paginated group list.
type GroupListResponse struct {
	Items []GroupRowView `json:"items"`
	Page  PageView       `json:"page"`
}

// GroupDetailView is the full group detail payload.
type GroupDetailView struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	TypeLabel   string   `json:"type_label,omitempty"`
	Description string   `json:"description,omitempty"`
	PeopleCount int      `json:"people_count"`
	Tags        []string `json:"tags,omitempty"`
}

// GroupRosterResponse is the complete member list of a group, every page
// accumulated.
type GroupRosterResponse struct {
	Members []PersonRowView `json:"members"`
	Total   int             `json:"total"`
}

// Register registers group routes
func (h *GroupsHandler) Register(g *echo.Group) {
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.GET("/:id/people", h.People)
	g.GET("/:id/roster", h.Roster)
}

// List returns a page of groups, optionally filtered by a search term.
func (h *GroupsHandler) List(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "GroupsHandler.List")
	defer span.End()
	c.SetRequest(c.Request().WithContext(ctx))

	doc, err := h.client.SearchGroups(ctx, c.QueryParam("search"), listParams(c))
	if err != nil {
		h.logger.WithContext(ctx).WithError(err).Error("Failed to list groups")
		return err
	}

	items := make([]GroupRowView, 0, len(doc.Data))
	for _, res := range doc.Data {
		attrs, err := jsonapi.Attributes[models.GroupAttributes](res)
		if err != nil {
			return err
		}
		items = append(items, GroupRowView{
			ID:          res.ID,
			Name:        attrs.Name,
			TypeLabel:   h.resolver.GroupTypeLabel(attrs.Type),
			PeopleCount: attrs.PeopleCount,
		})
	}

	return SuccessResponse(c, GroupListResponse{Items: items, Page: pageView(doc.Page())})
}

// Get returns one group.
func (h *GroupsHandler) Get(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "GroupsHandler.Get")
	defer span.End()
	c.SetRequest(c.Request().WithContext(ctx))

	id, err := RequireParam(c, "id")
	if err != nil {
		return err
	}

	doc, err := h.client.GetGroup(ctx, id)
	if err != nil {
		h.logger.WithContext(ctx).WithError(err).Error("Failed to get group")
		return err
	}

	res := doc.Resource()
	if res == nil {
		return BadRequest("upstream returned no group")
	}

	attrs, err := jsonapi.Attributes[models.GroupAttributes](res)
	if err != nil {
		return err
	}

	return SuccessResponse(c, GroupDetailView{
		ID:          res.ID,
		Name:        attrs.Name,
		TypeLabel:   h.resolver.GroupTypeLabel(attrs.Type),
		Description: attrs.Description,
		PeopleCount: attrs.PeopleCount,
		Tags:        attrs.Tags,
	})
}

// People returns one page of a group's members.
func (h *GroupsHandler) People(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "GroupsHandler.People")
	defer span.End()
	c.SetRequest(c.Request().WithContext(ctx))

	id, err := RequireParam(c, "id")
	if err != nil {
		return err
	}

	doc, err := h.client.GroupPeople(ctx, id, listParams(c))
	if err != nil {
		h.logger.WithContext(ctx).WithError(err).Error("Failed to list group members")
		return err
	}

	included := jsonapi.IncludedOf(doc)
	items, err := personRows(doc.Data, included)
	if err != nil {
		return err
	}

	return SuccessResponse(c, PersonListResponse{Items: items, Page: pageView(doc.Page())})
}

// Roster returns every member of a group, walking all pages upstream. Exports
// need the complete list in one response.
func (h *GroupsHandler) Roster(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "GroupsHandler.Roster")
	defer span.End()
	c.SetRequest(c.Request().WithContext(ctx))

	id, err := RequireParam(c, "id")
	if err != nil {
		return err
	}

	fetcher := pagination.NewFetcher(func(ctx context.Context, _ string, page int) (*jsonapi.Document, error) {
		return h.client.GroupPeople(ctx, id, crm.ListParams{Page: page, PageSize: crm.RelatedPageSize})
	})

	state, err := fetcher.All(ctx, "")
	if err != nil {
		h.logger.WithContext(ctx).WithError(err).Error("Failed to fetch group roster")
		return err
	}

	included := jsonapi.NewIncludedSet(state.Included, state.Items)
	members, err := personRows(state.Items, included)
	if err != nil {
		return err
	}

	return SuccessResponse(c, GroupRosterResponse{Members: members, Total: len(members)})
}

// personRows renders people resources as list rows.
func personRows(resources []*jsonapi.Resource, included *jsonapi.IncludedSet) ([]PersonRowView, error) {
	rows := make([]PersonRowView, 0, len(resources))
	for _, res := range resources {
		attrs, err := jsonapi.Attributes[models.PersonAttributes](res)
		if err != nil {
			return nil, err
		}
		rows = append(rows, PersonRowView{
			ID:       res.ID,
			Name:     format.PersonName(attrs),
			FullName: format.PersonFullName(attrs),
			JobTitle: attrs.JobTitle,
			Location: cityState(res, included),
		})
	}
	return rows, nil
}
