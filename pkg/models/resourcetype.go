package models

// Resource-type partitions the upstream files coded values under. Slugs are
// only unique within a partition, so lookups must never cross-mix these.
const (
	PartitionOrganizationTypes    = "organizations"
	PartitionOrganizationStatuses = "organization-statuses"
	PartitionConnectionTypes      = "connections"
	PartitionGroupTypes           = "groups"
	PartitionPersonTypes          = "shared_person_type"
	PartitionPersonStatuses       = "person-statuses"
	PartitionJobFunctions         = "shared_job_function"
	PartitionJobLevels            = "shared_job_level"
	PartitionPronouns             = "shared_preferred_pronoun"
	PartitionGenders              = "shared_gender"
)

// ResourceTypeAttributes are the attributes of a resource_types record: the
// canonical, localized label for a coded slug within one partition.
type ResourceTypeAttributes struct {
	UUID               string `json:"uuid,omitempty"`
	Slug               string `json:"slug"`
	Name               string `json:"name"`
	NameEn             string `json:"name_en,omitempty"`
	NameFr             string `json:"name_fr,omitempty"`
	NameEs             string `json:"name_es,omitempty"`
	Default            bool   `json:"default,omitempty"`
	Weight             int    `json:"weight,omitempty"`
	AvailableForEntity string `json:"available_for_entity,omitempty"`
	ExternalID         string `json:"external_id,omitempty"`
	ResourceType       string `json:"resource_type"`
}

// Label returns the display name for the coded value, preferring the English
// name, then the unlocalized name, then the remaining locales, and finally
// the raw slug.
func (a ResourceTypeAttributes) Label() string {
	for _, candidate := range []string{a.NameEn, a.Name, a.NameFr, a.NameEs} {
		if candidate != "" {
			return candidate
		}
	}
	return a.Slug
}
