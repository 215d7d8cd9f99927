package handlers

import (
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/cloverhq/clover/pkg/prefs"
	"github.com/cloverhq/clover/pkg/tracing"
)

// PrefsHandler handles per-user preference endpoints. Every route is scoped
// by the authenticated user ID.
type PrefsHandler struct {
	store  *prefs.Store
	logger ectologger.Logger
}

// NewPrefsHandler creates a new preferences handler
func NewPrefsHandler(store *prefs.Store, logger ectologger.Logger) *PrefsHandler {
	return &PrefsHandler{store: store, logger: logger}
}

// SectionCollapseRequest sets one detail section's collapsed state.
type SectionCollapseRequest struct {
	Collapsed bool `json:"collapsed"`
}

// Register registers preference routes
func (h *PrefsHandler) Register(g *echo.Group) {
	g.GET("/settings", h.GetSettings)
	g.PUT("/settings", h.PutSettings)
	g.GET("/sections", h.GetSections)
	g.PUT("/sections/:section", h.PutSection)
	g.DELETE("", h.Clear)
}

// GetSettings returns the user's settings, defaulted when unset.
func (h *PrefsHandler) GetSettings(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "PrefsHandler.GetSettings")
	defer span.End()
	c.SetRequest(c.Request().WithContext(ctx))

	userID, err := RequireUserID(c)
	if err != nil {
		return err
	}

	settings, err := h.store.GetSettings(ctx, userID)
	if err != nil {
		h.logger.WithContext(ctx).WithError(err).Error("Failed to load settings")
		return err
	}
	return SuccessResponse(c, settings)
}

// PutSettings replaces the user's settings blob.
func (h *PrefsHandler) PutSettings(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "PrefsHandler.PutSettings")
	defer span.End()
	c.SetRequest(c.Request().WithContext(ctx))

	userID, err := RequireUserID(c)
	if err != nil {
		return err
	}

	var settings prefs.Settings
	if err := c.Bind(&settings); err != nil {
		return BadRequest("invalid request body")
	}

	if err := h.store.SaveSettings(ctx, userID, settings); err != nil {
		h.logger.WithContext(ctx).WithError(err).Error("Failed to save settings")
		return err
	}
	return SuccessResponse(c, settings)
}

// GetSections returns the user's collapsed detail sections.
func (h *PrefsHandler) GetSections(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "PrefsHandler.GetSections")
	defer span.End()
	c.SetRequest(c.Request().WithContext(ctx))

	userID, err := RequireUserID(c)
	if err != nil {
		return err
	}

	collapsed, err := h.store.CollapsedSections(ctx, userID)
	if err != nil {
		h.logger.WithContext(ctx).WithError(err).Error("Failed to load collapsed sections")
		return err
	}
	return SuccessResponse(c, collapsed)
}

// PutSection records one section's collapsed state.
func (h *PrefsHandler) PutSection(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "PrefsHandler.PutSection")
	defer span.End()
	c.SetRequest(c.Request().WithContext(ctx))

	userID, err := RequireUserID(c)
	if err != nil {
		return err
	}

	section, err := RequireParam(c, "section")
	if err != nil {
		return err
	}

	var req SectionCollapseRequest
	if err := c.Bind(&req); err != nil {
		return BadRequest("invalid request body")
	}

	if err := h.store.SetSectionCollapsed(ctx, userID, section, req.Collapsed); err != nil {
		h.logger.WithContext(ctx).WithError(err).Error("Failed to save collapsed section")
		return err
	}
	return NoContentResponse(c)
}

// Clear removes every stored preference for the user.
func (h *PrefsHandler) Clear(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "PrefsHandler.Clear")
	defer span.End()
	c.SetRequest(c.Request().WithContext(ctx))

	userID, err := RequireUserID(c)
	if err != nil {
		return err
	}

	if err := h.store.Clear(ctx, userID); err != nil {
		h.logger.WithContext(ctx).WithError(err).Error("Failed to clear preferences")
		return err
	}
	return NoContentResponse(c)
}
