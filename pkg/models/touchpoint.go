package models

// TouchpointAttributes are the attributes of a touchpoints resource: a logged
// interaction with a person, optionally tied to the service that produced it.
type TouchpointAttributes struct {
	Action     string `json:"action"`
	Details    string `json:"details,omitempty"`
	Code       string `json:"code,omitempty"`
	OccurredAt string `json:"occurred_at,omitempty"`
	UUID       string `json:"uuid,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
	UpdatedAt  string `json:"updated_at,omitempty"`
}

// Timestamp returns the instant the touchpoint happened, falling back to the
// record's creation time for records without occurred_at.
func (a TouchpointAttributes) Timestamp() string {
	if a.OccurredAt != "" {
		return a.OccurredAt
	}
	return a.CreatedAt
}

// ServiceAttributes are the attributes of a services resource.
type ServiceAttributes struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Slug        string `json:"slug,omitempty"`
	UUID        string `json:"uuid,omitempty"`
}
