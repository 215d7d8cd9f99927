package handlers

import (
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/cloverhq/clover/pkg/crm"
	"github.com/cloverhq/clover/pkg/format"
	"github.com/cloverhq/clover/pkg/jsonapi"
	"github.com/cloverhq/clover/pkg/models"
	"github.com/cloverhq/clover/pkg/relationships"
	"github.com/cloverhq/clover/pkg/resourcetypes"
	"github.com/cloverhq/clover/pkg/tracing"
)

// OrganizationsHandler handles organization API endpoints
type OrganizationsHandler struct {
	client   *crm.Client
	resolver *resourcetypes.Resolver
	logger   ectologger.Logger
}

// NewOrganizationsHandler creates a new organizations handler
func NewOrganizationsHandler(client *crm.Client, resolver *resourcetypes.Resolver, logger ectologger.Logger) *OrganizationsHandler {
	return &OrganizationsHandler{client: client, resolver: resolver, logger: logger}
}

// OrganizationWriteRequest is the create/update request body.
type OrganizationWriteRequest struct {
	LegalName     string `json:"legal_name" validate:"required"`
	AlternateName string `json:"alternate_name,omitempty"`
	Type          string `json:"type,omitempty"`
	Status        string `json:"status,omitempty"`
	Description   string `json:"description,omitempty"`
}

func (r OrganizationWriteRequest) attributes() models.OrganizationAttributes {
	return models.OrganizationAttributes{
		LegalName:     r.LegalName,
		AlternateName: r.AlternateName,
		Type:          r.Type,
		Status:        r.Status,
		Description:   r.Description,
	}
}

// OrganizationRowView is one row of the organization list.
type OrganizationRowView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	TypeLabel string `json:"type_label,omitempty"`
	Location  string `json:"location,omitempty"`
}

// OrganizationListResponse is the paginated organization list.
type OrganizationListResponse struct {
	Items []OrganizationRowView `json:"items"`
	Page  PageView              `json:"page"`
}

// OrganizationDetailView is the full organization detail payload.
type OrganizationDetailView struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	AlternateName    string            `json:"alternate_name,omitempty"`
	TypeLabel        string            `json:"type_label,omitempty"`
	StatusLabel      string            `json:"status_label,omitempty"`
	Description      string            `json:"description,omitempty"`
	PeopleCount      int               `json:"people_count"`
	MembershipNumber string            `json:"membership_number,omitempty"`
	Tags             []string          `json:"tags,omitempty"`
	Contact          ContactPointsView `json:"contact"`
}

// Register registers organization routes
func (h *OrganizationsHandler) Register(g *echo.Group) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.GET("/:id/memberships", h.Memberships)
	g.GET("/:id/relationships", h.Relationships)
}

// List returns a page of organizations, optionally filtered by a search term.
func (h *OrganizationsHandler) List(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "OrganizationsHandler.List")
	defer span.End()
	c.SetRequest(c.Request().WithContext(ctx))

	params := listParams(c)
	term := c.QueryParam("search")

	doc, err := h.client.SearchOrganizations(ctx, term, params)
	if err != nil {
		h.logger.WithContext(ctx).WithError(err).Error("Failed to list organizations")
		return err
	}

	included := jsonapi.IncludedOf(doc)
	items := make([]OrganizationRowView, 0, len(doc.Data))
	for _, res := range doc.Data {
		attrs, err := jsonapi.Attributes[models.OrganizationAttributes](res)
		if err != nil {
			return err
		}
		items = append(items, OrganizationRowView{
			ID:        res.ID,
			Name:      attrs.DisplayName(),
			TypeLabel: h.resolver.OrganizationTypeLabel(attrs.Type),
			Location:  cityState(res, included),
		})
	}

	return SuccessResponse(c, OrganizationListResponse{Items: items, Page: pageView(doc.Page())})
}

// Get returns one organization with formatted contact points and labels.
func (h *OrganizationsHandler) Get(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "OrganizationsHandler.Get")
	defer span.End()
	c.SetRequest(c.Request().WithContext(ctx))

	id, err := RequireParam(c, "id")
	if err != nil {
		return err
	}

	doc, err := h.client.GetOrganization(ctx, id)
	if err != nil {
		h.logger.WithContext(ctx).WithError(err).Error("Failed to get organization")
		return err
	}

	res := doc.Resource()
	if res == nil {
		return BadRequest("upstream returned no organization")
	}

	attrs, err := jsonapi.Attributes[models.OrganizationAttributes](res)
	if err != nil {
		return err
	}

	included := jsonapi.IncludedOf(doc)
	contact, err := contactPoints(res, included)
	if err != nil {
		return err
	}

	return SuccessResponse(c, OrganizationDetailView{
		ID:               res.ID,
		Name:             attrs.DisplayName(),
		AlternateName:    attrs.AlternateName,
		TypeLabel:        h.resolver.OrganizationTypeLabel(attrs.Type),
		StatusLabel:      h.resolver.OrganizationStatusLabel(attrs.Status),
		Description:      attrs.Description,
		PeopleCount:      attrs.PeopleCount,
		MembershipNumber: attrs.MembershipNumber,
		Tags:             attrs.Tags,
		Contact:          contact,
	})
}

// Create creates an organization.
func (h *OrganizationsHandler) Create(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "OrganizationsHandler.Create")
	defer span.End()
	c.SetRequest(c.Request().WithContext(ctx))

	var req OrganizationWriteRequest
	if err := c.Bind(&req); err != nil {
		return BadRequest("invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return BadRequest(err.Error())
	}

	doc, err := h.client.CreateOrganization(ctx, req.attributes())
	if err != nil {
		h.logger.WithContext(ctx).WithError(err).Error("Failed to create organization")
		return err
	}

	return CreatedResponse(c, doc)
}

// Update updates an organization.
func (h *OrganizationsHandler) Update(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "OrganizationsHandler.Update")
	defer span.End()
	c.SetRequest(c.Request().WithContext(ctx))

	id, err := RequireParam(c, "id")
	if err != nil {
		return err
	}

	var req OrganizationWriteRequest
	if err := c.Bind(&req); err != nil {
		return BadRequest("invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return BadRequest(err.Error())
	}

	doc, err := h.client.UpdateOrganization(ctx, id, req.attributes())
	if err != nil {
		h.logger.WithContext(ctx).WithError(err).Error("Failed to update organization")
		return err
	}

	return SuccessResponse(c, doc)
}

// Delete deletes an organization.
func (h *OrganizationsHandler) Delete(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "OrganizationsHandler.Delete")
	defer span.End()
	c.SetRequest(c.Request().WithContext(ctx))

	id, err := RequireParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.client.DeleteOrganization(ctx, id); err != nil {
		h.logger.WithContext(ctx).WithError(err).Error("Failed to delete organization")
		return err
	}

	return NoContentResponse(c)
}

// Memberships returns an organization's membership entries split by status.
func (h *OrganizationsHandler) Memberships(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "OrganizationsHandler.Memberships")
	defer span.End()
	c.SetRequest(c.Request().WithContext(ctx))

	id, err := RequireParam(c, "id")
	if err != nil {
		return err
	}

	doc, err := h.client.OrganizationMembershipEntries(ctx, id, c.QueryParam("active_at"))
	if err != nil {
		h.logger.WithContext(ctx).WithError(err).Error("Failed to get membership entries")
		return err
	}

	return SuccessResponse(c, membershipList(doc))
}

// Relationships returns the organization's connections as directional rows.
func (h *OrganizationsHandler) Relationships(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "OrganizationsHandler.Relationships")
	defer span.End()
	c.SetRequest(c.Request().WithContext(ctx))

	id, err := RequireParam(c, "id")
	if err != nil {
		return err
	}

	doc, err := h.client.OrganizationConnections(ctx, id)
	if err != nil {
		h.logger.WithContext(ctx).WithError(err).Error("Failed to get connections")
		return err
	}

	list, err := relationships.Build(doc, id, h.resolver, time.Now())
	if err != nil {
		return err
	}
	return SuccessResponse(c, list)
}

// membershipList splits membership entries by status and resolves tier names.
func membershipList(doc *jsonapi.Document) MembershipListResponse {
	included := jsonapi.IncludedOf(doc)
	response := MembershipListResponse{
		Active:     []MembershipEntryView{},
		Historical: []MembershipEntryView{},
	}

	for _, res := range doc.Data {
		attrs, err := jsonapi.Attributes[models.MembershipEntryAttributes](res)
		if err != nil {
			continue
		}

		name := ""
		if membership := included.ResolveNamedOne(res, "membership"); membership != nil {
			if mAttrs, err := jsonapi.Attributes[models.MembershipAttributes](membership); err == nil {
				name = mAttrs.Name
			}
		}

		view := MembershipEntryView{
			ID:       res.ID,
			Name:     name,
			Status:   attrs.Status,
			StartsAt: attrs.StartsAt,
			EndsAt:   attrs.EndsAt,
		}
		if models.IsStatusActive(attrs.Status) {
			response.Active = append(response.Active, view)
		} else {
			response.Historical = append(response.Historical, view)
		}
	}

	response.Summary = format.MembershipCount(len(response.Active))
	return response
}
