package handlers

import (
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/cloverhq/clover/pkg/resourcetypes"
	"github.com/cloverhq/clover/pkg/tracing"
)

// ResourceTypesHandler exposes the label catalog and its lifecycle.
type ResourceTypesHandler struct {
	resolver *resourcetypes.Resolver
	logger   ectologger.Logger
}

// NewResourceTypesHandler creates a new resource types handler
func NewResourceTypesHandler(resolver *resourcetypes.Resolver, logger ectologger.Logger) *ResourceTypesHandler {
	return &ResourceTypesHandler{resolver: resolver, logger: logger}
}

// PartitionView is the state and labels of one catalog partition.
type PartitionView struct {
	Partition string            `json:"partition"`
	State     string            `json:"state"`
	Labels    map[string]string `json:"labels"`
}

// Register registers resource-type routes
func (h *ResourceTypesHandler) Register(g *echo.Group) {
	g.GET("", h.List)
	g.GET("/:partition", h.Partition)
	g.POST("/refresh", h.Refresh)
}

// List returns every partition with its state and loaded labels.
func (h *ResourceTypesHandler) List(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "ResourceTypesHandler.List")
	defer span.End()
	c.SetRequest(c.Request().WithContext(ctx))

	if err := h.resolver.Load(ctx); err != nil {
		h.logger.WithContext(ctx).WithError(err).Warn("Label catalog load failed; serving fallback states")
	}

	views := make([]PartitionView, 0, len(resourcetypes.Partitions))
	for _, name := range resourcetypes.Partitions {
		views = append(views, h.partitionView(name))
	}
	return SuccessResponse(c, views)
}

// Partition returns one partition's state and labels.
func (h *ResourceTypesHandler) Partition(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "ResourceTypesHandler.Partition")
	defer span.End()
	c.SetRequest(c.Request().WithContext(ctx))

	name, err := RequireParam(c, "partition")
	if err != nil {
		return err
	}

	if err := h.resolver.Load(ctx); err != nil {
		h.logger.WithContext(ctx).WithError(err).Warn("Label catalog load failed; serving fallback states")
	}

	return SuccessResponse(c, h.partitionView(name))
}

// Refresh forces a catalog re-fetch.
func (h *ResourceTypesHandler) Refresh(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "ResourceTypesHandler.Refresh")
	defer span.End()
	c.SetRequest(c.Request().WithContext(ctx))

	if err := h.resolver.Refresh(ctx); err != nil {
		h.logger.WithContext(ctx).WithError(err).Error("Failed to refresh label catalog")
		return err
	}

	views := make([]PartitionView, 0, len(resourcetypes.Partitions))
	for _, name := range resourcetypes.Partitions {
		views = append(views, h.partitionView(name))
	}
	return SuccessResponse(c, views)
}

func (h *ResourceTypesHandler) partitionView(name string) PartitionView {
	labels := h.resolver.Labels(name)
	if labels == nil {
		labels = map[string]string{}
	}
	return PartitionView{
		Partition: name,
		State:     stateName(h.resolver.PartitionState(name)),
		Labels:    labels,
	}
}

func stateName(state resourcetypes.State) string {
	switch state {
	case resourcetypes.StateLoading:
		return "loading"
	case resourcetypes.StateReady:
		return "ready"
	case resourcetypes.StateError:
		return "error"
	default:
		return "uninitialized"
	}
}
