package jsonapi

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentUnmarshalSingle(t *testing.T) {
	payload := `{
		"data": {
			"id": "p1",
			"type": "people",
			"attributes": {"given_name": "Ada", "family_name": "Lovelace"}
		},
		"included": [
			{"id": "a1", "type": "addresses", "attributes": {"city": "Ottawa"}}
		]
	}`

	var doc Document
	require.NoError(t, json.Unmarshal([]byte(payload), &doc))

	assert.True(t, doc.Single)
	require.Len(t, doc.Data, 1)
	assert.Equal(t, "p1", doc.Resource().ID)
	assert.Equal(t, "people", doc.Resource().Type)
	require.Len(t, doc.Included, 1)
	assert.Equal(t, "addresses", doc.Included[0].Type)
}

func TestDocumentUnmarshalArrayWithMeta(t *testing.T) {
	payload := `{
		"data": [
			{"id": "o1", "type": "organizations"},
			{"id": "o2", "type": "organizations"}
		],
		"meta": {"page": {"total_items": 42, "total_pages": 2, "number": 1, "size": 25}}
	}`

	var doc Document
	require.NoError(t, json.Unmarshal([]byte(payload), &doc))

	assert.False(t, doc.Single)
	assert.Len(t, doc.Data, 2)
	page := doc.Page()
	assert.Equal(t, 42, page.TotalItems)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 1, page.Number)
}

func TestDocumentPageDefaultsWhenMetaAbsent(t *testing.T) {
	var doc Document
	require.NoError(t, json.Unmarshal([]byte(`{"data": []}`), &doc))

	page := doc.Page()
	assert.Equal(t, 1, page.Number)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, 0, page.TotalItems)
}

func TestDocumentUnmarshalNullData(t *testing.T) {
	var doc Document
	require.NoError(t, json.Unmarshal([]byte(`{"data": null}`), &doc))
	assert.Nil(t, doc.Data)
	assert.Nil(t, doc.Resource())
}

func TestDocumentMarshalRoundTripPreservesShape(t *testing.T) {
	single := Document{
		Single: true,
		Data:   []*Resource{{ID: "p1", Type: "people"}},
	}
	b, err := json.Marshal(single)
	require.NoError(t, err)
	assert.JSONEq(t, `{"data": {"id": "p1", "type": "people"}}`, string(b))

	many := Document{Data: []*Resource{{ID: "p1", Type: "people"}}}
	b, err = json.Marshal(many)
	require.NoError(t, err)
	assert.JSONEq(t, `{"data": [{"id": "p1", "type": "people"}]}`, string(b))
}

func TestRelationshipUnmarshalSingleAndMany(t *testing.T) {
	var single Relationship
	require.NoError(t, json.Unmarshal([]byte(`{"data": {"id": "m1", "type": "memberships"}}`), &single))
	assert.False(t, single.Many)
	ref, ok := single.First()
	require.True(t, ok)
	assert.Equal(t, ResourceID{ID: "m1", Type: "memberships"}, ref)

	var many Relationship
	require.NoError(t, json.Unmarshal([]byte(`{"data": [{"id": "a1", "type": "addresses"}, {"id": "a2", "type": "addresses"}]}`), &many))
	assert.True(t, many.Many)
	assert.Len(t, many.Data, 2)

	var null Relationship
	require.NoError(t, json.Unmarshal([]byte(`{"data": null}`), &null))
	_, ok = null.First()
	assert.False(t, ok)
}

func TestIncludedSetFindAndResolve(t *testing.T) {
	included := []*Resource{
		{ID: "a1", Type: "addresses"},
		{ID: "a1", Type: "phones"}, // same id, different type partition
		{ID: "p2", Type: "people"},
	}
	set := NewIncludedSet(included)

	assert.Equal(t, "addresses", set.Find(ResourceID{ID: "a1", Type: "addresses"}).Type)
	assert.Equal(t, "phones", set.FindTyped("phones", "a1").Type)
	assert.Nil(t, set.FindTyped("addresses", "missing"))

	rel := Relationship{Many: true, Data: []ResourceID{
		{ID: "a1", Type: "addresses"},
		{ID: "gone", Type: "addresses"},
		{ID: "p2", Type: "people"},
	}}

	resolved := set.Resolve(rel)
	require.Len(t, resolved, 2)
	assert.Equal(t, "a1", resolved[0].ID)
	assert.Equal(t, "p2", resolved[1].ID)
}

func TestIncludedSetDanglingPointerResolvesEmpty(t *testing.T) {
	set := NewIncludedSet([]*Resource{{ID: "p1", Type: "people"}})

	rel := Relationship{Data: []ResourceID{{ID: "absent", Type: "organizations"}}}
	assert.Empty(t, set.Resolve(rel))
	assert.Nil(t, set.ResolveOne(rel))
}

func TestIncludedSetResolveNamed(t *testing.T) {
	person := &Resource{
		ID:   "p1",
		Type: "people",
		Relationships: map[string]Relationship{
			"addresses": {Many: true, Data: []ResourceID{{ID: "a1", Type: "addresses"}}},
		},
	}
	set := NewIncludedSet([]*Resource{{ID: "a1", Type: "addresses"}})

	resolved := set.ResolveNamed(person, "addresses")
	require.Len(t, resolved, 1)
	assert.Equal(t, "a1", resolved[0].ID)

	assert.Nil(t, set.ResolveNamed(person, "phones"))
	assert.Nil(t, set.ResolveNamedOne(person, "phones"))
}

func TestAttributesDecode(t *testing.T) {
	type personAttrs struct {
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
	}

	res := &Resource{
		ID:         "p1",
		Type:       "people",
		Attributes: json.RawMessage(`{"given_name": "Ada", "family_name": "Lovelace", "extra": true}`),
	}

	attrs, err := Attributes[personAttrs](res)
	require.NoError(t, err)
	assert.Equal(t, "Ada", attrs.GivenName)
	assert.Equal(t, "Lovelace", attrs.FamilyName)

	// Missing attributes block decodes to the zero value.
	empty, err := Attributes[personAttrs](&Resource{ID: "p2", Type: "people"})
	require.NoError(t, err)
	assert.Empty(t, empty.GivenName)

	// Malformed attributes surface a decode error, not a panic.
	_, err = Attributes[personAttrs](&Resource{Type: "people", Attributes: json.RawMessage(`{"given_name": 7}`)})
	assert.Error(t, err)

	_, err = Attributes[personAttrs](nil)
	assert.Error(t, err)
}
