// Package models holds the typed attribute structs for the CRM's resource
// types. JSON:API payloads are decoded into these at the normalization
// boundary rather than navigated as untyped maps.
package models

// Resource type names as they appear in JSON:API type fields.
const (
	TypePeople           = "people"
	TypeOrganizations    = "organizations"
	TypeGroups           = "groups"
	TypeAddresses        = "addresses"
	TypePhones           = "phones"
	TypeEmails           = "emails"
	TypeWebAddresses     = "web_addresses"
	TypeConnections      = "connections"
	TypeMemberships      = "memberships"
	TypeMembershipEntries = "membership_entries"
	TypeTouchpoints      = "touchpoints"
	TypeServices         = "services"
	TypeResourceTypes    = "resource_types"
)

// PersonUser is the nested login account block on a person.
type PersonUser struct {
	Email     string `json:"email,omitempty"`
	Username  string `json:"username,omitempty"`
	ConfirmedAt string `json:"confirmed_at,omitempty"`
}

// PersonAttributes are the attributes of a people resource.
type PersonAttributes struct {
	GivenName         string      `json:"given_name"`
	FamilyName        string      `json:"family_name"`
	FullName          string      `json:"full_name,omitempty"`
	AdditionalName    string      `json:"additional_name,omitempty"`
	AlternateName     string      `json:"alternate_name,omitempty"`
	Slug              string      `json:"slug,omitempty"`
	Gender            string      `json:"gender,omitempty"`
	HonorificPrefix   string      `json:"honorific_prefix,omitempty"`
	HonorificSuffix   string      `json:"honorific_suffix,omitempty"`
	PreferredPronoun  string      `json:"preferred_pronoun,omitempty"`
	JobTitle          string      `json:"job_title,omitempty"`
	JobFunction       string      `json:"job_function,omitempty"`
	JobLevel          string      `json:"job_level,omitempty"`
	BirthDate         string      `json:"birth_date,omitempty"`
	Language          string      `json:"language,omitempty"`
	LanguagesSpoken   []string    `json:"languages_spoken,omitempty"`
	LanguagesWritten  []string    `json:"languages_written,omitempty"`
	UUID              string      `json:"uuid,omitempty"`
	MembershipNumber  string      `json:"membership_number,omitempty"`
	MembershipBeganOn string      `json:"membership_began_on,omitempty"`
	Tags              []string    `json:"tags,omitempty"`
	RoleNames         []string    `json:"role_names,omitempty"`
	User              *PersonUser `json:"user,omitempty"`
	CreatedAt         string      `json:"created_at,omitempty"`
	UpdatedAt         string      `json:"updated_at,omitempty"`
}
