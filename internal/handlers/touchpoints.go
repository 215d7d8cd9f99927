package handlers

import (
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/cloverhq/clover/pkg/crm"
	"github.com/cloverhq/clover/pkg/jsonapi"
	"github.com/cloverhq/clover/pkg/models"
	"github.com/cloverhq/clover/pkg/tracing"
)

// TouchpointsHandler handles touchpoint API endpoints
type TouchpointsHandler struct {
	client *crm.Client
	logger ectologger.Logger
}

// NewTouchpointsHandler creates a new touchpoints handler
func NewTouchpointsHandler(client *crm.Client, logger ectologger.Logger) *TouchpointsHandler {
	return &TouchpointsHandler{client: client, logger: logger}
}

// TouchpointWriteRequest is the create/update request body.
type TouchpointWriteRequest struct {
	Action     string `json:"action" validate:"required"`
	Details    string `json:"details,omitempty"`
	Code       string `json:"code,omitempty"`
	OccurredAt string `json:"occurred_at,omitempty"`
}

func (r TouchpointWriteRequest) attributes() models.TouchpointAttributes {
	return models.TouchpointAttributes{
		Action:     r.Action,
		Details:    r.Details,
		Code:       r.Code,
		OccurredAt: r.OccurredAt,
	}
}

// TouchpointListResponse is the paginated touchpoint feed.
type TouchpointListResponse struct {
	Items []TouchpointView `json:"items"`
	Page  PageView         `json:"page"`
}

// Register registers touchpoint routes
func (h *TouchpointsHandler) Register(g *echo.Group) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

// List returns a page of touchpoints with their service names.
func (h *TouchpointsHandler) List(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "TouchpointsHandler.List")
	defer span.End()
	c.SetRequest(c.Request().WithContext(ctx))

	doc, err := h.client.ListTouchpoints(ctx, listParams(c))
	if err != nil {
		h.logger.WithContext(ctx).WithError(err).Error("Failed to list touchpoints")
		return err
	}

	views, err := touchpointViews(doc.Data, jsonapi.IncludedOf(doc))
	if err != nil {
		return err
	}

	return SuccessResponse(c, TouchpointListResponse{Items: views, Page: pageView(doc.Page())})
}

// Get returns one touchpoint.
func (h *TouchpointsHandler) Get(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "TouchpointsHandler.Get")
	defer span.End()
	c.SetRequest(c.Request().WithContext(ctx))

	id, err := RequireParam(c, "id")
	if err != nil {
		return err
	}

	doc, err := h.client.GetTouchpoint(ctx, id)
	if err != nil {
		h.logger.WithContext(ctx).WithError(err).Error("Failed to get touchpoint")
		return err
	}

	res := doc.Resource()
	if res == nil {
		return BadRequest("upstream returned no touchpoint")
	}

	views, err := touchpointViews([]*jsonapi.Resource{res}, jsonapi.IncludedOf(doc))
	if err != nil {
		return err
	}

	return SuccessResponse(c, views[0])
}

// Create creates a touchpoint.
func (h *TouchpointsHandler) Create(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "TouchpointsHandler.Create")
	defer span.End()
	c.SetRequest(c.Request().WithContext(ctx))

	var req TouchpointWriteRequest
	if err := c.Bind(&req); err != nil {
		return BadRequest("invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return BadRequest(err.Error())
	}

	doc, err := h.client.CreateTouchpoint(ctx, req.attributes())
	if err != nil {
		h.logger.WithContext(ctx).WithError(err).Error("Failed to create touchpoint")
		return err
	}

	return CreatedResponse(c, doc)
}

// Update updates a touchpoint.
func (h *TouchpointsHandler) Update(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "TouchpointsHandler.Update")
	defer span.End()
	c.SetRequest(c.Request().WithContext(ctx))

	id, err := RequireParam(c, "id")
	if err != nil {
		return err
	}

	var req TouchpointWriteRequest
	if err := c.Bind(&req); err != nil {
		return BadRequest("invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return BadRequest(err.Error())
	}

	doc, err := h.client.UpdateTouchpoint(ctx, id, req.attributes())
	if err != nil {
		h.logger.WithContext(ctx).WithError(err).Error("Failed to update touchpoint")
		return err
	}

	return SuccessResponse(c, doc)
}

// Delete deletes a touchpoint.
func (h *TouchpointsHandler) Delete(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "TouchpointsHandler.Delete")
	defer span.End()
	c.SetRequest(c.Request().WithContext(ctx))

	id, err := RequireParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.client.DeleteTouchpoint(ctx, id); err != nil {
		h.logger.WithContext(ctx).WithError(err).Error("Failed to delete touchpoint")
		return err
	}

	return NoContentResponse(c)
}
