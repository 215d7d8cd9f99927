package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloverhq/clover/pkg/appcontext"
	"github.com/cloverhq/clover/pkg/crm"
	"github.com/cloverhq/clover/pkg/middleware"
	"github.com/cloverhq/clover/pkg/prefs"
	"github.com/cloverhq/clover/pkg/redis"
	"github.com/cloverhq/clover/pkg/resourcetypes"
	"github.com/cloverhq/clover/pkg/touchpoints"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

// upstream stubs the CRM with canned JSON:API responses keyed by path.
func upstream(t *testing.T, responses map[string]string) *crm.Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := responses[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message": "not found"}`))
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	client, err := crm.NewClient(crm.DefaultConfig(server.URL, "test-token"), testLogger())
	require.NoError(t, err)
	return client
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = middleware.Error(testLogger())
	return e
}

func doRequest(t *testing.T, e *echo.Echo, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

const peopleListBody = `{
	"data": [
		{
			"id": "p1", "type": "people",
			"attributes": {"given_name": "Ada", "family_name": "Lovelace", "job_title": "Engineer"},
			"relationships": {"addresses": {"data": [{"id": "a1", "type": "addresses"}]}}
		},
		{
			"id": "p2", "type": "people",
			"attributes": {"given_name": "Grace", "family_name": "Hopper"}
		}
	],
	"included": [
		{"id": "a1", "type": "addresses", "attributes": {"city": "London", "state_name": "England", "primary": true}}
	],
	"meta": {"page": {"total_items": 2, "total_pages": 1, "number": 1, "size": 25}}
}`

func TestPeopleList(t *testing.T) {
	client := upstream(t, map[string]string{"/people": peopleListBody})
	e := newTestEcho()
	NewPeopleHandler(client, newResolver(t, client), nil, testLogger()).Register(e.Group("/people"))

	rec := doRequest(t, e, http.MethodGet, "/people?search=ada", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp PersonListResponse
	decodeInto(t, rec, &resp)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "Lovelace, Ada", resp.Items[0].Name)
	assert.Equal(t, "Ada Lovelace", resp.Items[0].FullName)
	assert.Equal(t, "London, England", resp.Items[0].Location)
	assert.Equal(t, "", resp.Items[1].Location)
	assert.Equal(t, 2, resp.Page.TotalItems)
	assert.False(t, resp.Page.HasMore)
}

func TestPersonDetail(t *testing.T) {
	client := upstream(t, map[string]string{
		"/people/p1": `{
			"data": {
				"id": "p1", "type": "people",
				"attributes": {
					"given_name": "Ada", "family_name": "Lovelace",
					"preferred_pronoun": "she-her-hers", "birth_date": "1815-12-10"
				},
				"relationships": {
					"emails": {"data": [{"id": "e1", "type": "emails"}]},
					"phones": {"data": [{"id": "ph1", "type": "phones"}]}
				}
			},
			"included": [
				{"id": "e1", "type": "emails", "attributes": {"address": "ada@example.org"}},
				{"id": "ph1", "type": "phones", "attributes": {"number_national_format": "(555) 010-0001"}}
			]
		}`,
	})
	e := newTestEcho()
	NewPeopleHandler(client, newResolver(t, client), nil, testLogger()).Register(e.Group("/people"))

	rec := doRequest(t, e, http.MethodGet, "/people/p1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp PersonDetailView
	decodeInto(t, rec, &resp)
	assert.Equal(t, "Ada Lovelace", resp.FullName)
	assert.Equal(t, "She/Her/Hers", resp.Pronoun)
	assert.Equal(t, "December 10, 1815", resp.BirthDate)
	assert.Equal(t, []string{"ada@example.org"}, resp.Contact.Emails)
	assert.Equal(t, []string{"(555) 010-0001"}, resp.Contact.Phones)
	assert.Empty(t, resp.Contact.Addresses)
}

func TestPersonNotFoundPassesUpstreamStatus(t *testing.T) {
	client := upstream(t, map[string]string{})
	e := newTestEcho()
	NewPeopleHandler(client, newResolver(t, client), nil, testLogger()).Register(e.Group("/people"))

	rec := doRequest(t, e, http.MethodGet, "/people/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPersonMembershipsSplit(t *testing.T) {
	client := upstream(t, map[string]string{
		"/people/p1/membership_entries": `{
			"data": [
				{
					"id": "me1", "type": "membership_entries",
					"attributes": {"status": "Active", "starts_at": "2024-01-01"},
					"relationships": {"membership": {"data": {"id": "m1", "type": "memberships"}}}
				},
				{
					"id": "me2", "type": "membership_entries",
					"attributes": {"status": "Expired", "starts_at": "2020-01-01", "ends_at": "2021-01-01"}
				}
			],
			"included": [
				{"id": "m1", "type": "memberships", "attributes": {"name": "Gold Tier"}}
			]
		}`,
	})
	e := newTestEcho()
	NewPeopleHandler(client, newResolver(t, client), nil, testLogger()).Register(e.Group("/people"))

	rec := doRequest(t, e, http.MethodGet, "/people/p1/memberships", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp MembershipListResponse
	decodeInto(t, rec, &resp)
	require.Len(t, resp.Active, 1)
	require.Len(t, resp.Historical, 1)
	assert.Equal(t, "Gold Tier", resp.Active[0].Name)
	assert.Equal(t, "1 active membership", resp.Summary)
}

func TestPersonRelationships(t *testing.T) {
	client := upstream(t, map[string]string{
		"/people/p1/connections": `{
			"data": [
				{
					"id": "c1", "type": "connections",
					"attributes": {"connection_type": "mentor", "starts_at": "2024-01-01"},
					"relationships": {
						"from": {"data": {"id": "p1", "type": "people"}},
						"to": {"data": {"id": "p2", "type": "people"}}
					}
				}
			],
			"included": [
				{"id": "p2", "type": "people", "attributes": {"given_name": "Grace", "family_name": "Hopper"}}
			]
		}`,
	})
	e := newTestEcho()
	NewPeopleHandler(client, newResolver(t, client), nil, testLogger()).Register(e.Group("/people"))

	rec := doRequest(t, e, http.MethodGet, "/people/p1/relationships", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Active []struct {
			Label string `json:"label"`
			Name  string `json:"name"`
		} `json:"active"`
	}
	decodeInto(t, rec, &resp)
	require.Len(t, resp.Active, 1)
	assert.Equal(t, "Mentor to Grace Hopper", resp.Active[0].Label)
}

func TestPersonCreateValidation(t *testing.T) {
	client := upstream(t, map[string]string{})
	e := newTestEcho()
	NewPeopleHandler(client, newResolver(t, client), nil, testLogger()).Register(e.Group("/people"))

	rec := doRequest(t, e, http.MethodPost, "/people", map[string]string{"given_name": "Ada"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPersonTouchpointBatch(t *testing.T) {
	responses := map[string]string{
		"/people/p1/touchpoints": `{
			"data": [{"id": "t1", "type": "touchpoints", "attributes": {"action": "Logged in", "occurred_at": "2025-02-01T00:00:00Z"}}]
		}`,
		"/people/p2/touchpoints": `{
			"data": [{"id": "t2", "type": "touchpoints", "attributes": {"action": "Renewed", "occurred_at": "2025-03-01T00:00:00Z"}}]
		}`,
	}
	client := upstream(t, responses)
	fetcher := touchpoints.NewFetcher(client, testLogger(), touchpoints.DefaultConcurrency)
	e := newTestEcho()
	NewPeopleHandler(client, newResolver(t, client), fetcher, testLogger()).Register(e.Group("/people"))

	rec := doRequest(t, e, http.MethodPost, "/people/touchpoints/batch", map[string]any{
		"person_ids": []string{"p1", "p2", "missing"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Items        []TouchpointView `json:"items"`
		SuccessCount int              `json:"success_count"`
		FailureCount int              `json:"failure_count"`
	}
	decodeInto(t, rec, &resp)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "Renewed", resp.Items[0].Action)
	assert.Equal(t, "Logged in", resp.Items[1].Action)
	assert.Equal(t, 2, resp.SuccessCount)
	assert.Equal(t, 1, resp.FailureCount)
}

func TestOrganizationDetailLabels(t *testing.T) {
	client := upstream(t, map[string]string{
		"/resource_types": `{
			"data": [
				{"id": "rt1", "type": "resource_types", "attributes": {"slug": "non-profit", "resource_type": "organizations", "name_en": "Non-Profit"}}
			]
		}`,
		"/organizations/o1": `{
			"data": {
				"id": "o1", "type": "organizations",
				"attributes": {"legal_name": "Analytical Engines Ltd", "type": "non-profit", "status": "active-member"}
			}
		}`,
	})
	resolver := resourcetypes.NewResolver(client, testLogger())
	require.NoError(t, resolver.Load(t.Context()))

	e := newTestEcho()
	NewOrganizationsHandler(client, resolver, testLogger()).Register(e.Group("/organizations"))

	rec := doRequest(t, e, http.MethodGet, "/organizations/o1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp OrganizationDetailView
	decodeInto(t, rec, &resp)
	assert.Equal(t, "Analytical Engines Ltd", resp.Name)
	// Catalog entry wins; statuses fall back to the slug transform.
	assert.Equal(t, "Non-Profit", resp.TypeLabel)
	assert.Equal(t, "Active Member", resp.StatusLabel)
}

func TestGroupRosterWalksAllPages(t *testing.T) {
	page := func(number, total int) string {
		return fmt.Sprintf(`{
			"data": [{"id": "p%d", "type": "people", "attributes": {"given_name": "Member", "family_name": "%d"}}],
			"meta": {"page": {"total_items": %d, "total_pages": %d, "number": %d, "size": 1}}
		}`, number, number, total, total, number)
	}

	var served []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		number := r.URL.Query().Get("page[number]")
		served = append(served, number)
		switch number {
		case "2":
			w.Write([]byte(page(2, 3)))
		case "3":
			w.Write([]byte(page(3, 3)))
		default:
			w.Write([]byte(page(1, 3)))
		}
	}))
	t.Cleanup(server.Close)

	client, err := crm.NewClient(crm.DefaultConfig(server.URL, "test-token"), testLogger())
	require.NoError(t, err)

	e := newTestEcho()
	NewGroupsHandler(client, newResolver(t, client), testLogger()).Register(e.Group("/groups"))

	rec := doRequest(t, e, http.MethodGet, "/groups/g1/roster", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp GroupRosterResponse
	decodeInto(t, rec, &resp)
	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, []string{"1", "2", "3"}, served)
	assert.Equal(t, "1, Member", resp.Members[0].Name)
}

func TestResourceTypePartitionStates(t *testing.T) {
	client := upstream(t, map[string]string{
		"/resource_types": `{
			"data": [
				{"id": "rt1", "type": "resource_types", "attributes": {"slug": "mentor", "resource_type": "connections", "name_en": "Mentor"}}
			]
		}`,
	})
	resolver := resourcetypes.NewResolver(client, testLogger())

	e := newTestEcho()
	NewResourceTypesHandler(resolver, testLogger()).Register(e.Group("/resource_types"))

	rec := doRequest(t, e, http.MethodGet, "/resource_types/connections", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp PartitionView
	decodeInto(t, rec, &resp)
	assert.Equal(t, "connections", resp.Partition)
	assert.Equal(t, "ready", resp.State)
	assert.Equal(t, "Mentor", resp.Labels["mentor"])
}

func TestPrefsRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	store := prefs.NewStore(redis.NewClientFromRedis(rdb, testLogger()), testLogger())

	e := newTestEcho()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := appcontext.SetUserID(c.Request().Context(), "user-1")
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	})
	NewPrefsHandler(store, testLogger()).Register(e.Group("/prefs"))

	rec := doRequest(t, e, http.MethodGet, "/prefs/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var settings prefs.Settings
	decodeInto(t, rec, &settings)
	assert.Equal(t, "system", settings.Theme)

	rec = doRequest(t, e, http.MethodPut, "/prefs/settings", prefs.Settings{Theme: "dark", DefaultPageSize: 50})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, e, http.MethodGet, "/prefs/settings", nil)
	decodeInto(t, rec, &settings)
	assert.Equal(t, "dark", settings.Theme)
	assert.Equal(t, 50, settings.DefaultPageSize)

	rec = doRequest(t, e, http.MethodPut, "/prefs/sections/timeline", SectionCollapseRequest{Collapsed: true})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, e, http.MethodGet, "/prefs/sections", nil)
	var collapsed map[string]bool
	decodeInto(t, rec, &collapsed)
	assert.True(t, collapsed["timeline"])
}

func TestPrefsRequireUser(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	store := prefs.NewStore(redis.NewClientFromRedis(rdb, testLogger()), testLogger())

	e := newTestEcho()
	NewPrefsHandler(store, testLogger()).Register(e.Group("/prefs"))

	rec := doRequest(t, e, http.MethodGet, "/prefs/settings", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSearchSessionLifecycle(t *testing.T) {
	client := upstream(t, map[string]string{
		"/people": `{
			"data": [{"id": "p1", "type": "people", "attributes": {"given_name": "Ada", "family_name": "Lovelace"}}],
			"meta": {"page": {"total_items": 1, "total_pages": 1, "number": 1, "size": 25}}
		}`,
	})

	e := newTestEcho()
	NewSearchHandler(client, 5*time.Millisecond, testLogger()).Register(e.Group("/search"))

	rec := doRequest(t, e, http.MethodPost, "/search/sessions", SearchSessionRequest{Kind: SearchKindPeople})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created SearchSnapshotView
	decodeInto(t, rec, &created)
	require.NotEmpty(t, created.SessionID)
	assert.Empty(t, created.Items)

	path := "/search/sessions/" + created.SessionID
	rec = doRequest(t, e, http.MethodPut, path+"/term", SearchTermRequest{Term: "ada"})
	require.Equal(t, http.StatusOK, rec.Code)

	// The debounced fetch fires after the delay.
	var snap SearchSnapshotView
	require.Eventually(t, func() bool {
		rec := doRequest(t, e, http.MethodGet, path, nil)
		decodeInto(t, rec, &snap)
		return len(snap.Items) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, "Ada Lovelace", snap.Items[0].Name)
	assert.Equal(t, "ada", snap.Term)

	rec = doRequest(t, e, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, e, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearchSessionUnknownKind(t *testing.T) {
	client := upstream(t, map[string]string{})
	e := newTestEcho()
	NewSearchHandler(client, time.Millisecond, testLogger()).Register(e.Group("/search"))

	rec := doRequest(t, e, http.MethodPost, "/search/sessions", SearchSessionRequest{Kind: "planets"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// newResolver builds an unloaded resolver; handlers that never resolve labels
// in the test path share it.
func newResolver(t *testing.T, client *crm.Client) *resourcetypes.Resolver {
	t.Helper()
	return resourcetypes.NewResolver(client, testLogger())
}
