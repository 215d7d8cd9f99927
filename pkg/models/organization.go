package models

// OrganizationAttributes are the attributes of an organizations resource.
// Type carries the organization-type slug resolved through the resource-type
// label cache, not a display value.
type OrganizationAttributes struct {
	Type              string   `json:"type"`
	Status            string   `json:"status,omitempty"`
	LegalName         string   `json:"legal_name"`
	LegalNameEn       string   `json:"legal_name_en,omitempty"`
	LegalNameFr       string   `json:"legal_name_fr,omitempty"`
	LegalNameEs       string   `json:"legal_name_es,omitempty"`
	AlternateName     string   `json:"alternate_name,omitempty"`
	Description       string   `json:"description,omitempty"`
	Slug              string   `json:"slug,omitempty"`
	UUID              string   `json:"uuid,omitempty"`
	PeopleCount       int      `json:"people_count,omitempty"`
	DUNS              string   `json:"duns,omitempty"`
	Tags              []string `json:"tags,omitempty"`
	MembershipNumber  string   `json:"membership_number,omitempty"`
	MembershipBeganOn string   `json:"membership_began_on,omitempty"`
	CreatedAt         string   `json:"created_at,omitempty"`
	UpdatedAt         string   `json:"updated_at,omitempty"`
}

// DisplayName returns the organization's presentable name, preferring the
// legal name over the alternate.
func (a OrganizationAttributes) DisplayName() string {
	if a.LegalName != "" {
		return a.LegalName
	}
	return a.AlternateName
}

// GroupAttributes are the attributes of a groups resource.
type GroupAttributes struct {
	Name        string   `json:"name"`
	Type        string   `json:"type,omitempty"`
	Description string   `json:"description,omitempty"`
	Slug        string   `json:"slug,omitempty"`
	UUID        string   `json:"uuid,omitempty"`
	PeopleCount int      `json:"people_count,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	CreatedAt   string   `json:"created_at,omitempty"`
	UpdatedAt   string   `json:"updated_at,omitempty"`
}
