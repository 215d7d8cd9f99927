package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/cloverhq/clover/pkg/crm"
	"github.com/cloverhq/clover/pkg/format"
	"github.com/cloverhq/clover/pkg/jsonapi"
	"github.com/cloverhq/clover/pkg/models"
	"github.com/cloverhq/clover/pkg/pagination"
	"github.com/cloverhq/clover/pkg/tracing"
)

// Search session kinds.
const (
	SearchKindPeople        = "people"
	SearchKindOrganizations = "organizations"
	SearchKindGroups        = "groups"
)

// SearchHandler manages server-side search sessions: a client opens a session,
// streams keystrokes into it, and polls the accumulated snapshot. Term changes
// are debounced before hitting the upstream; load-more appends the next page.
type SearchHandler struct {
	client   *crm.Client
	logger   ectologger.Logger
	delay    time.Duration
	sessions sync.Map
}

// NewSearchHandler creates a new search handler. The delay is how long a term
// must sit unchanged before a fetch fires.
func NewSearchHandler(client *crm.Client, delay time.Duration, logger ectologger.Logger) *SearchHandler {
	return &SearchHandler{client: client, logger: logger, delay: delay}
}

type searchSession struct {
	kind    string
	session *pagination.Session
}

// SearchSessionRequest creates a session for one list kind.
type SearchSessionRequest struct {
	Kind string `json:"kind" validate:"required,oneof=people organizations groups"`
}

// SearchTermRequest updates a session's search term.
type SearchTermRequest struct {
	Term string `json:"term"`
}

// SearchRowView is one result row; only the fields for the session's kind are
// set.
type SearchRowView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SearchSnapshotView is the accumulated state of a session.
type SearchSnapshotView struct {
	SessionID string          `json:"session_id"`
	Kind      string          `json:"kind"`
	Term      string          `json:"term"`
	Items     []SearchRowView `json:"items"`
	Page      PageView        `json:"page"`
	Error     string          `json:"error,omitempty"`
}

// Register registers search-session routes
func (h *SearchHandler) Register(g *echo.Group) {
	g.POST("/sessions", h.CreateSession)
	g.PUT("/sessions/:id/term", h.SetTerm)
	g.GET("/sessions/:id", h.Snapshot)
	g.POST("/sessions/:id/more", h.LoadMore)
	g.DELETE("/sessions/:id", h.CloseSession)
}

// CreateSession opens a search session over one list kind.
func (h *SearchHandler) CreateSession(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "SearchHandler.CreateSession")
	defer span.End()
	c.SetRequest(c.Request().WithContext(ctx))

	var req SearchSessionRequest
	if err := c.Bind(&req); err != nil {
		return BadRequest("invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return BadRequest(err.Error())
	}

	fetch, err := h.fetchFor(req.Kind)
	if err != nil {
		return err
	}

	id := uuid.NewString()
	entry := &searchSession{
		kind:    req.Kind,
		session: pagination.NewSession(pagination.NewFetcher(fetch), h.delay),
	}
	h.sessions.Store(id, entry)

	h.logger.WithContext(ctx).WithFields(map[string]any{
		"session_id": id,
		"kind":       req.Kind,
	}).Info("Opened search session")

	return CreatedResponse(c, h.snapshotView(id, entry))
}

// SetTerm updates the session's search term. The refetch is debounced, so an
// immediately following Snapshot may still show the previous term's rows.
func (h *SearchHandler) SetTerm(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "SearchHandler.SetTerm")
	defer span.End()
	c.SetRequest(c.Request().WithContext(ctx))

	entry, id, err := h.lookup(c)
	if err != nil {
		return err
	}

	var req SearchTermRequest
	if err := c.Bind(&req); err != nil {
		return BadRequest("invalid request body")
	}

	entry.session.SetTerm(ctx, req.Term)
	return SuccessResponse(c, h.snapshotView(id, entry))
}

// Snapshot returns the session's accumulated rows and page state.
func (h *SearchHandler) Snapshot(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "SearchHandler.Snapshot")
	defer span.End()
	c.SetRequest(c.Request().WithContext(ctx))

	entry, id, err := h.lookup(c)
	if err != nil {
		return err
	}
	return SuccessResponse(c, h.snapshotView(id, entry))
}

// LoadMore appends the next page to the session's accumulation.
func (h *SearchHandler) LoadMore(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "SearchHandler.LoadMore")
	defer span.End()
	c.SetRequest(c.Request().WithContext(ctx))

	entry, id, err := h.lookup(c)
	if err != nil {
		return err
	}

	if err := entry.session.LoadMore(ctx); err != nil {
		h.logger.WithContext(ctx).WithError(err).WithField("session_id", id).Warn("Load more failed")
	}
	return SuccessResponse(c, h.snapshotView(id, entry))
}

// CloseSession discards a session and cancels any pending fetch.
func (h *SearchHandler) CloseSession(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "SearchHandler.CloseSession")
	defer span.End()
	c.SetRequest(c.Request().WithContext(ctx))

	entry, _, err := h.lookup(c)
	if err != nil {
		return err
	}

	entry.session.Close()
	h.sessions.Delete(c.Param("id"))
	return NoContentResponse(c)
}

func (h *SearchHandler) lookup(c echo.Context) (*searchSession, string, error) {
	id, err := RequireParam(c, "id")
	if err != nil {
		return nil, "", err
	}
	value, ok := h.sessions.Load(id)
	if !ok {
		return nil, "", httperror.NewHTTPError(http.StatusNotFound, "search session not found")
	}
	return value.(*searchSession), id, nil
}

// fetchFor binds a session kind to its upstream list endpoint.
func (h *SearchHandler) fetchFor(kind string) (pagination.FetchFunc, error) {
	switch kind {
	case SearchKindPeople:
		return func(ctx context.Context, term string, page int) (*jsonapi.Document, error) {
			return h.client.SearchPeople(ctx, term, crm.ListParams{Page: page})
		}, nil
	case SearchKindOrganizations:
		return func(ctx context.Context, term string, page int) (*jsonapi.Document, error) {
			return h.client.SearchOrganizations(ctx, term, crm.ListParams{Page: page})
		}, nil
	case SearchKindGroups:
		return func(ctx context.Context, term string, page int) (*jsonapi.Document, error) {
			return h.client.SearchGroups(ctx, term, crm.ListParams{Page: page})
		}, nil
	default:
		return nil, BadRequest("unknown search kind: " + kind)
	}
}

func (h *SearchHandler) snapshotView(id string, entry *searchSession) SearchSnapshotView {
	term, state, err := entry.session.Snapshot()

	view := SearchSnapshotView{
		SessionID: id,
		Kind:      entry.kind,
		Term:      term,
		Items:     make([]SearchRowView, 0, len(state.Items)),
		Page: PageView{
			TotalItems: state.Page.TotalItems,
			TotalPages: state.Page.TotalPages,
			Number:     state.Page.Number,
			Size:       state.Page.Size,
			HasMore:    state.HasMore(),
		},
	}
	if err != nil {
		view.Error = err.Error()
	}

	for _, res := range state.Items {
		view.Items = append(view.Items, SearchRowView{ID: res.ID, Name: searchRowName(entry.kind, res)})
	}
	return view
}

func searchRowName(kind string, res *jsonapi.Resource) string {
	switch kind {
	case SearchKindPeople:
		attrs, err := jsonapi.Attributes[models.PersonAttributes](res)
		if err != nil {
			return ""
		}
		return format.PersonFullName(attrs)
	case SearchKindOrganizations:
		attrs, err := jsonapi.Attributes[models.OrganizationAttributes](res)
		if err != nil {
			return ""
		}
		return attrs.DisplayName()
	case SearchKindGroups:
		attrs, err := jsonapi.Attributes[models.GroupAttributes](res)
		if err != nil {
			return ""
		}
		return attrs.Name
	default:
		return ""
	}
}
