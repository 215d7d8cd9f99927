package crm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloverhq/clover/pkg/models"
)

func personFixture() models.PersonAttributes {
	return models.PersonAttributes{GivenName: "Ada", FamilyName: "Lovelace"}
}

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func testClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(DefaultConfig(server.URL, "test-token"), testLogger())
	require.NoError(t, err)
	return client, server
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient(Config{}, testLogger())
	assert.Error(t, err)
}

func TestClientSendsBearerToken(t *testing.T) {
	var gotAuth string
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"data": []}`))
	})

	_, err := client.ListPeople(context.Background(), ListParams{})
	require.NoError(t, err)
	assert.Equal(t, "Bearer test-token", gotAuth)
}

func TestClientListQueryEncoding(t *testing.T) {
	var gotQuery map[string][]string
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"data": []}`))
	})

	_, err := client.SearchPeople(context.Background(), "ada", ListParams{Page: 3})
	require.NoError(t, err)

	assert.Equal(t, []string{"3"}, gotQuery["page[number]"])
	assert.Equal(t, []string{"25"}, gotQuery["page[size]"])
	assert.Equal(t, []string{"addresses"}, gotQuery["include"])
	assert.Equal(t, []string{"ada"}, gotQuery[PeopleSearchFilter])
}

func TestClientDecodesDocument(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"data": [{"id": "p1", "type": "people", "attributes": {"given_name": "Ada"}}],
			"meta": {"page": {"total_items": 1, "total_pages": 1, "number": 1, "size": 25}}
		}`))
	})

	doc, err := client.ListPeople(context.Background(), ListParams{})
	require.NoError(t, err)
	require.Len(t, doc.Data, 1)
	assert.Equal(t, "p1", doc.Data[0].ID)
	assert.Equal(t, 1, doc.Page().TotalItems)
}

func TestClientUnauthorized(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "token expired"}`))
	})

	_, err := client.GetPerson(context.Background(), "p1")
	require.Error(t, err)
	assert.True(t, IsNotAuthenticated(err))

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, MsgNotAuthenticated, apiErr.Message)
}

func TestClientUpstreamErrorMessage(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message": "given_name can't be blank"}`))
	})

	_, err := client.CreatePerson(context.Background(), personFixture())
	require.Error(t, err)

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, "given_name can't be blank", apiErr.Message)
}

func TestClientNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client, err := NewClient(DefaultConfig(server.URL, "t"), testLogger())
	require.NoError(t, err)
	server.Close()

	_, err = client.ListPeople(context.Background(), ListParams{})
	require.Error(t, err)
	assert.True(t, IsNetworkError(err))
	assert.Equal(t, MsgUnableToConnect, err.Error())
}

func TestClientNotFound(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.GetOrganization(context.Background(), "missing")
	assert.True(t, IsNotFound(err))
}

func TestClientWriteBody(t *testing.T) {
	var gotBody []byte
	var gotContentType string
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = buf
		w.Write([]byte(`{"data": {"id": "p1", "type": "people"}}`))
	})

	doc, err := client.CreatePerson(context.Background(), personFixture())
	require.NoError(t, err)
	assert.Equal(t, "application/json", gotContentType)
	assert.Contains(t, string(gotBody), `"type":"people"`)
	assert.Contains(t, string(gotBody), `"given_name":"Ada"`)

	res := doc.Resource()
	require.NotNil(t, res)
	assert.Equal(t, "p1", res.ID)
}

func TestClientDelete(t *testing.T) {
	var gotMethod, gotPath string
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})

	err := client.DeletePerson(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/people/p1", gotPath)
}

func TestResourceTypesSinglePage(t *testing.T) {
	var gotSize string
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotSize = r.URL.Query().Get("page[size]")
		w.Write([]byte(`{"data": []}`))
	})

	_, err := client.ListResourceTypes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "200", gotSize)
}

func TestListParamsValues(t *testing.T) {
	params := ListParams{
		Page:     2,
		PageSize: 25,
		Sort:     "-starts_at",
		Include:  []string{"to", "from"},
	}
	params = params.WithFilter("active_at", "2025-06-15")
	params = params.WithFilter("empty", "")

	values := params.Values()
	assert.Equal(t, "2", values.Get("page[number]"))
	assert.Equal(t, "25", values.Get("page[size]"))
	assert.Equal(t, "-starts_at", values.Get("sort"))
	assert.Equal(t, "to,from", values.Get("include"))
	assert.Equal(t, "2025-06-15", values.Get("filter[active_at]"))
	assert.False(t, values.Has("filter[empty]"))

	// Pre-wrapped filter keys pass through unchanged.
	wrapped := ListParams{}.WithFilter(PeopleSearchFilter, "ada").Values()
	assert.Equal(t, "ada", wrapped.Get(PeopleSearchFilter))
}
