package models

import "time"

// Connection kind filters accepted by the upstream connections endpoints.
const (
	ConnectionPersonToPerson             = "person_to_person"
	ConnectionPersonToOrganization       = "person_to_organization"
	ConnectionOrganizationToOrganization = "organization_to_organization"
	ConnectionAll                        = "all"
)

// Relationship names on a connections resource. From/To are the directional
// pointers; Person/Organization are the legacy singular pointers older
// records still carry.
const (
	RelFrom         = "from"
	RelTo           = "to"
	RelPerson       = "person"
	RelOrganization = "organization"
)

// ConnectionAttributes are the attributes of a connections resource, an edge
// between two entities. Type carries the relationship-type slug.
type ConnectionAttributes struct {
	Type           string   `json:"type"`
	ConnectionType string   `json:"connection_type,omitempty"`
	Description    string   `json:"description,omitempty"`
	StartsAt       string   `json:"starts_at,omitempty"`
	EndsAt         string   `json:"ends_at,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	UUID           string   `json:"uuid,omitempty"`
	CreatedAt      string   `json:"created_at,omitempty"`
	UpdatedAt      string   `json:"updated_at,omitempty"`
}

// TypeSlug returns the relationship-type slug regardless of which field the
// upstream put it in. Older records use connection_type.
func (a ConnectionAttributes) TypeSlug() string {
	if a.Type != "" {
		return a.Type
	}
	return a.ConnectionType
}

// IsCurrent reports whether the connection is still in effect at the given
// instant: no end date, or an end date in the future.
func (a ConnectionAttributes) IsCurrent(at time.Time) bool {
	end, ok := ParseDate(a.EndsAt)
	if !ok {
		return true
	}
	return end.After(at)
}
