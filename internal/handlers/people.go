package handlers

import (
	"strconv"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/cloverhq/clover/pkg/crm"
	"github.com/cloverhq/clover/pkg/format"
	"github.com/cloverhq/clover/pkg/jsonapi"
	"github.com/cloverhq/clover/pkg/models"
	"github.com/cloverhq/clover/pkg/relationships"
	"github.com/cloverhq/clover/pkg/resourcetypes"
	"github.com/cloverhq/clover/pkg/touchpoints"
	"github.com/cloverhq/clover/pkg/tracing"
)

var validate = validator.New()

// PeopleHandler handles people API endpoints
type PeopleHandler struct {
	client      *crm.Client
	resolver    *resourcetypes.Resolver
	touchpoints *touchpoints.Fetcher
	logger      ectologger.Logger
}

// NewPeopleHandler creates a new people handler
func NewPeopleHandler(
	client *crm.Client,
	resolver *resourcetypes.Resolver,
	touchpointFetcher *touchpoints.Fetcher,
	logger ectologger.Logger,
) *PeopleHandler {
	return &PeopleHandler{
		client:      client,
		resolver:    resolver,
		touchpoints: touchpointFetcher,
		logger:      logger,
	}
}

// PersonWriteRequest is the create/update request body.
type PersonWriteRequest struct {
	GivenName        string `json:"given_name" validate:"required"`
	FamilyName       string `json:"family_name" validate:"required"`
	Gender           string `json:"gender,omitempty"`
	PreferredPronoun string `json:"preferred_pronoun,omitempty"`
	JobTitle         string `json:"job_title,omitempty"`
	JobFunction      string `json:"job_function,omitempty"`
	JobLevel         string `json:"job_level,omitempty"`
	BirthDate        string `json:"birth_date,omitempty"`
}

func (r PersonWriteRequest) attributes() models.PersonAttributes {
	return models.PersonAttributes{
		GivenName:        r.GivenName,
		FamilyName:       r.FamilyName,
		Gender:           r.Gender,
		PreferredPronoun: r.PreferredPronoun,
		JobTitle:         r.JobTitle,
		JobFunction:      r.JobFunction,
		JobLevel:         r.JobLevel,
		BirthDate:        r.BirthDate,
	}
}

// TouchpointBatchRequest is the batch touchpoint fetch request body.
type TouchpointBatchRequest struct {
	PersonIDs []string `json:"person_ids" validate:"required,min=1"`
}

// PersonRowView is one row of the people list.
type PersonRowView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	JobTitle string `json:"job_title,omitempty"`
	Location string `json:"location,omitempty"`
}

// PersonListResponse is the paginated people list.
type PersonListResponse struct {
	Items []PersonRowView `json:"items"`
	Page  PageView        `json:"page"`
}

// PersonDetailView is the full person detail payload.
type PersonDetailView struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	FullName         string            `json:"full_name"`
	Pronoun          string            `json:"pronoun,omitempty"`
	Gender           string            `json:"gender,omitempty"`
	JobTitle         string            `json:"job_title,omitempty"`
	JobFunction      string            `json:"job_function,omitempty"`
	JobLevel         string            `json:"job_level,omitempty"`
	BirthDate        string            `json:"birth_date,omitempty"`
	Age              *int              `json:"age,omitempty"`
	MembershipNumber string            `json:"membership_number,omitempty"`
	Tags             []string          `json:"tags,omitempty"`
	RoleNames        []string          `json:"role_names,omitempty"`
	Contact          ContactPointsView `json:"contact"`
}

// MembershipEntryView is one row of a person's membership history.
type MembershipEntryView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Status   string `json:"status"`
	StartsAt string `json:"starts_at,omitempty"`
	EndsAt   string `json:"ends_at,omitempty"`
}

// MembershipListResponse splits membership entries by status.
type MembershipListResponse struct {
	Active     []MembershipEntryView `json:"active"`
	Historical []MembershipEntryView `json:"historical"`
	Summary    string                `json:"summary"`
}

// TouchpointView is one rendered touchpoint feed entry.
type TouchpointView struct {
	ID         string `json:"id"`
	Action     string `json:"action"`
	Details    string `json:"details,omitempty"`
	Service    string `json:"service,omitempty"`
	OccurredAt string `json:"occurred_at,omitempty"`
}

// Register registers people routes
func (h *PeopleHandler) Register(g *echo.Group) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.POST("/touchpoints/batch", h.TouchpointBatch)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.GET("/:id/memberships", h.Memberships)
	g.GET("/:id/touchpoints", h.Touchpoints)
	g.GET("/:id/relationships", h.Relationships)
}

// List returns a page of people, optionally filtered by a search term.
func (h *PeopleHandler) List(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "PeopleHandler.List")
	defer span.End()
	c.SetRequest(c.Request().WithContext(ctx))

	params := listParams(c)
	term := c.QueryParam("search")

	doc, err := h.client.SearchPeople(ctx, term, params)
	if err != nil {
		h.logger.WithContext(ctx).WithError(err).Error("Failed to list people")
		return err
	}

	items, err := personRows(doc.Data, jsonapi.IncludedOf(doc))
	if err != nil {
		return err
	}

	return SuccessResponse(c, PersonListResponse{Items: items, Page: pageView(doc.Page())})
}

// Get returns one person with formatted contact points and resolved labels.
func (h *PeopleHandler) Get(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "PeopleHandler.Get")
	defer span.End()
	c.SetRequest(c.Request().WithContext(ctx))

	id, err := RequireParam(c, "id")
	if err != nil {
		return err
	}

	doc, err := h.client.GetPerson(ctx, id)
	if err != nil {
		h.logger.WithContext(ctx).WithError(err).Error("Failed to get person")
		return err
	}

	res := doc.Resource()
	if res == nil {
		return BadRequest("upstream returned no person")
	}

	attrs, err := jsonapi.Attributes[models.PersonAttributes](res)
	if err != nil {
		return err
	}

	included := jsonapi.IncludedOf(doc)
	contact, err := contactPoints(res, included)
	if err != nil {
		return err
	}

	view := PersonDetailView{
		ID:               res.ID,
		Name:             format.PersonName(attrs),
		FullName:         format.PersonFullName(attrs),
		Pronoun:          h.pronounLabel(attrs.PreferredPronoun),
		Gender:           h.resolver.GenderLabel(attrs.Gender),
		JobTitle:         attrs.JobTitle,
		JobFunction:      h.resolver.JobFunctionLabel(attrs.JobFunction),
		JobLevel:         h.resolver.JobLevelLabel(attrs.JobLevel),
		BirthDate:        format.BirthDate(attrs.BirthDate),
		MembershipNumber: attrs.MembershipNumber,
		Tags:             attrs.Tags,
		RoleNames:        attrs.RoleNames,
		Contact:          contact,
	}
	if age, ok := format.Age(attrs.BirthDate, time.Now()); ok {
		view.Age = &age
	}

	return SuccessResponse(c, view)
}

// pronounLabel prefers the catalog label; unknown slugs render as the
// slash-joined form rather than the generic word transform.
func (h *PeopleHandler) pronounLabel(slug string) string {
	if label, ok := h.resolver.Lookup(models.PartitionPronouns, slug); ok {
		return label
	}
	return format.Pronoun(slug)
}

// Create creates a person.
func (h *PeopleHandler) Create(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "PeopleHandler.Create")
	defer span.End()
	c.SetRequest(c.Request().WithContext(ctx))

	var req PersonWriteRequest
	if err := c.Bind(&req); err != nil {
		return BadRequest("invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return BadRequest(err.Error())
	}

	doc, err := h.client.CreatePerson(ctx, req.attributes())
	if err != nil {
		h.logger.WithContext(ctx).WithError(err).Error("Failed to create person")
		return err
	}

	return CreatedResponse(c, doc)
}

// Update updates a person.
func (h *PeopleHandler) Update(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "PeopleHandler.Update")
	defer span.End()
	c.SetRequest(c.Request().WithContext(ctx))

	id, err := RequireParam(c, "id")
	if err != nil {
		return err
	}

	var req PersonWriteRequest
	if err := c.Bind(&req); err != nil {
		return BadRequest("invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return BadRequest(err.Error())
	}

	doc, err := h.client.UpdatePerson(ctx, id, req.attributes())
	if err != nil {
		h.logger.WithContext(ctx).WithError(err).Error("Failed to update person")
		return err
	}

	return SuccessResponse(c, doc)
}

// Delete deletes a person.
func (h *PeopleHandler) Delete(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "PeopleHandler.Delete")
	defer span.End()
	c.SetRequest(c.Request().WithContext(ctx))

	id, err := RequireParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.client.DeletePerson(ctx, id); err != nil {
		h.logger.WithContext(ctx).WithError(err).Error("Failed to delete person")
		return err
	}

	return NoContentResponse(c)
}

// Memberships returns a person's membership entries split by status.
func (h *PeopleHandler) Memberships(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "PeopleHandler.Memberships")
	defer span.End()
	c.SetRequest(c.Request().WithContext(ctx))

	id, err := RequireParam(c, "id")
	if err != nil {
		return err
	}

	doc, err := h.client.PersonMembershipEntries(ctx, id, c.QueryParam("active_at"))
	if err != nil {
		h.logger.WithContext(ctx).WithError(err).Error("Failed to get membership entries")
		return err
	}

	return SuccessResponse(c, membershipList(doc))
}

// Touchpoints returns one person's touchpoint feed, newest first.
func (h *PeopleHandler) Touchpoints(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "PeopleHandler.Touchpoints")
	defer span.End()
	c.SetRequest(c.Request().WithContext(ctx))

	id, err := RequireParam(c, "id")
	if err != nil {
		return err
	}

	batch, err := h.touchpoints.FetchBatch(ctx, []string{id})
	if err != nil {
		return err
	}
	if fetchErr := batch.Results[0].Err; fetchErr != nil {
		h.logger.WithContext(ctx).WithError(fetchErr).Error("Failed to get touchpoints")
		return fetchErr
	}

	feed, included := touchpoints.Merge(batch)
	views, err := touchpointViews(feed, included)
	if err != nil {
		return err
	}
	return SuccessResponse(c, views)
}

// TouchpointBatch returns the merged touchpoint feed for several people.
// People whose fetch fails contribute nothing instead of failing the batch.
func (h *PeopleHandler) TouchpointBatch(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "PeopleHandler.TouchpointBatch")
	defer span.End()
	c.SetRequest(c.Request().WithContext(ctx))

	var req TouchpointBatchRequest
	if err := c.Bind(&req); err != nil {
		return BadRequest("invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return BadRequest(err.Error())
	}

	batch, err := h.touchpoints.FetchBatch(ctx, req.PersonIDs)
	if err != nil {
		return err
	}

	feed, included := touchpoints.Merge(batch)
	views, err := touchpointViews(feed, included)
	if err != nil {
		return err
	}

	return SuccessResponse(c, map[string]any{
		"items":         views,
		"success_count": batch.SuccessCount,
		"failure_count": batch.FailureCount,
	})
}

// Relationships returns the person's connections as directional rows.
func (h *PeopleHandler) Relationships(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "PeopleHandler.Relationships")
	defer span.End()
	c.SetRequest(c.Request().WithContext(ctx))

	id, err := RequireParam(c, "id")
	if err != nil {
		return err
	}

	doc, err := h.client.PersonConnections(ctx, id)
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

func touchpointViews(feed []*jsonapi.Resource, included *jsonapi.IncludedSet) ([]TouchpointView, error) {
	views := make([]TouchpointView, 0, len(feed))
	for _, res := range feed {
		attrs, err := jsonapi.Attributes[models.TouchpointAttributes](res)
		if err != nil {
			return nil, err
		}

		serviceName := ""
		if service := included.ResolveNamedOne(res, "service"); service != nil {
			sAttrs, err := jsonapi.Attributes[models.ServiceAttributes](service)
			if err != nil {
				return nil, err
			}
			serviceName = sAttrs.Name
		}

		views = append(views, TouchpointView{
			ID:         res.ID,
			Action:     attrs.Action,
			Details:    attrs.Details,
			Service:    serviceName,
			OccurredAt: attrs.Timestamp(),
		})
	}
	return views, nil
}

// listParams reads the shared page/page_size query parameters.
func listParams(c echo.Context) crm.ListParams {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = crm.DefaultPageSize
	}
	return crm.ListParams{Page: page, PageSize: pageSize}
}
