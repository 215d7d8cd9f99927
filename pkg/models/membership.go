package models

import "time"

// MembershipAttributes are the attributes of a memberships resource (the
// membership tier definition an entry points at).
type MembershipAttributes struct {
	Type        string `json:"type,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Slug        string `json:"slug,omitempty"`
	UUID        string `json:"uuid,omitempty"`
}

// MembershipEntryAttributes are the attributes of a membership_entries
// resource: a time-bounded assignment of a person or organization to a tier.
type MembershipEntryAttributes struct {
	StartsAt           string `json:"starts_at"`
	EndsAt             string `json:"ends_at"`
	ExpiresAt          string `json:"expires_at,omitempty"`
	GracePeriodDays    int    `json:"grace_period_days,omitempty"`
	InGrace            bool   `json:"in_grace,omitempty"`
	Status             string `json:"status"`
	Active             bool   `json:"active,omitempty"`
	ExternalID         string `json:"external_id,omitempty"`
	MembershipCategory string `json:"membership_category,omitempty"`
	CreatedAt          string `json:"created_at,omitempty"`
	UpdatedAt          string `json:"updated_at,omitempty"`
}

// statusActive is the exact status value the upstream uses for current
// entries. Matching is case-sensitive on purpose: the upstream emits the
// capitalized form and anything else ("Expired", "Pending", "active" from
// legacy imports) belongs in the historical bucket.
const statusActive = "Active"

// IsStatusActive reports whether a membership entry is current going by its
// status field alone. The upstream is inconsistent about whether status or
// the date range is authoritative, so both predicates exist and callers pick
// one explicitly.
func IsStatusActive(status string) bool {
	return status == statusActive
}

// IsDateRangeActive reports whether the [startsAt, endsAt] window covers the
// given instant. Empty bounds are open; unparseable bounds are treated as
// open rather than excluding the entry.
func IsDateRangeActive(startsAt, endsAt string, at time.Time) bool {
	if start, ok := ParseDate(startsAt); ok && at.Before(start) {
		return false
	}
	if end, ok := ParseDate(endsAt); ok && !at.Before(end) {
		return false
	}
	return true
}

// dateFormats are the timestamp shapes the upstream emits, tried in order.
var dateFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02",
}

// ParseDate parses an upstream date string, reporting false for empty or
// unrecognized values.
func ParseDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateFormats {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
