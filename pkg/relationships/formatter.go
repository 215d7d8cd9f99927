// Package relationships renders a person's or organization's connections as
// directional relationship rows: who the counterparty is, which way the
// relationship points relative to the entity being viewed, and a readable
// phrase for the connection type.
package relationships

import (
	"strings"

	"github.com/cloverhq/clover/pkg/format"
	"github.com/cloverhq/clover/pkg/jsonapi"
	"github.com/cloverhq/clover/pkg/models"
)

// Direction is which way a connection points relative to the viewed entity.
type Direction string

const (
	// DirectionTo means the viewed entity is the connection's "from" end: it
	// points to the counterparty.
	DirectionTo Direction = "to"
	// DirectionFrom means the counterparty points to the viewed entity.
	DirectionFrom Direction = "from"
	// DirectionUnknown means direction could not be determined, including
	// legacy records with bare person/organization pointers.
	DirectionUnknown Direction = "unknown"
)

// phrases holds the directional wording for one connection type.
type phrases struct {
	To   string
	From string
}

// directionalPhrases maps connection-type slugs to the wording used for each
// direction. Asymmetric types read differently from each end.
var directionalPhrases = map[string]phrases{
	"parent":           {To: "Parent of", From: "Child of"},
	"child":            {To: "Child of", From: "Parent of"},
	"spouse":           {To: "Spouse of", From: "Spouse of"},
	"partner":          {To: "Partner of", From: "Partner of"},
	"sibling":          {To: "Sibling of", From: "Sibling of"},
	"friend":           {To: "Friend of", From: "Friend of"},
	"colleague":        {To: "Colleague of", From: "Colleague of"},
	"mentor":           {To: "Mentor to", From: "Mentee of"},
	"mentee":           {To: "Mentee of", From: "Mentor to"},
	"employee":         {To: "Employee of", From: "Employer of"},
	"employer":         {To: "Employer of", From: "Employee of"},
	"volunteer":        {To: "Volunteer at", From: "Has volunteer"},
	"member":           {To: "Member of", From: "Has member"},
	"board-member":     {To: "Board Member of", From: "Has board member"},
	"director":         {To: "Director of", From: "Has director"},
	"founder":          {To: "Founder of", From: "Founded by"},
	"co-founder":       {To: "Co-founder of", From: "Co-founded by"},
	"advisor":          {To: "Advisor to", From: "Advised by"},
	"consultant":       {To: "Consultant for", From: "Consults with"},
	"contractor":       {To: "Contractor for", From: "Contracts with"},
	"vendor":           {To: "Vendor for", From: "Customer of"},
	"client":           {To: "Client of", From: "Service provider for"},
	"customer":         {To: "Customer of", From: "Vendor for"},
	"investor":         {To: "Investor in", From: "Invested in by"},
	"shareholder":      {To: "Shareholder of", From: "Has shareholder"},
	"partner-business": {To: "Business Partner of", From: "Business Partner of"},
	"associate":        {To: "Associate of", From: "Associate of"},
	"acquaintance":     {To: "Acquaintance of", From: "Acquaintance of"},
}

// LabelResolver supplies catalog labels for connection and organization type
// slugs.
type LabelResolver interface {
	ConnectionTypeLabel(slug string) string
	OrganizationTypeLabel(slug string) string
}

// Counterparty identifies the other end of a connection relative to the
// viewed entity. Modern records carry from/to pointers; legacy records carry
// a bare person or organization pointer whose direction is unknowable. The
// resource is nil when the pointer is dangling.
func Counterparty(conn *jsonapi.Resource, viewingID string, included *jsonapi.IncludedSet) (*jsonapi.Resource, Direction) {
	from, fromOK := conn.Relationship(models.RelFrom)
	to, toOK := conn.Relationship(models.RelTo)

	if fromOK && toOK {
		fromRef, fromHas := from.First()
		toRef, toHas := to.First()
		if fromHas && toHas {
			if fromRef.ID == viewingID {
				return included.Find(toRef), DirectionTo
			}
			if toRef.ID == viewingID {
				return included.Find(fromRef), DirectionFrom
			}
		}
		return nil, DirectionUnknown
	}

	if person, ok := conn.Relationship(models.RelPerson); ok {
		if ref, has := person.First(); has {
			return included.Find(ref), DirectionUnknown
		}
	}
	if org, ok := conn.Relationship(models.RelOrganization); ok {
		if ref, has := org.First(); has {
			return included.Find(ref), DirectionUnknown
		}
	}
	return nil, DirectionUnknown
}

// DirectionalLabel phrases a connection type for one direction, appending the
// counterparty's name. Types with no directional wording fall back to the
// resolved type label with a generic preposition; with no usable direction
// the bare label is returned.
func DirectionalLabel(typeSlug string, direction Direction, counterpartyName string, resolver LabelResolver) string {
	if typeSlug == "" {
		return ""
	}

	if mapping, ok := directionalPhrases[strings.ToLower(typeSlug)]; ok && direction != DirectionUnknown {
		label := mapping.To
		if direction == DirectionFrom {
			label = mapping.From
		}
		if counterpartyName != "" {
			return label + " " + counterpartyName
		}
		return label
	}

	baseLabel := resolver.ConnectionTypeLabel(typeSlug)
	if counterpartyName != "" && direction != DirectionUnknown {
		if direction == DirectionTo {
			return baseLabel + " for " + counterpartyName
		}
		return baseLabel + " to " + counterpartyName
	}
	return baseLabel
}

// View is one rendered relationship row.
type View struct {
	ConnectionID string             `json:"connection_id"`
	Counterparty jsonapi.ResourceID `json:"counterparty"`
	Name         string             `json:"name"`
	Subtitle     string             `json:"subtitle,omitempty"`
	Direction    Direction          `json:"direction"`
	Label        string             `json:"label"`
	Description  string             `json:"description,omitempty"`
	StartsAt     string             `json:"starts_at,omitempty"`
	EndsAt       string             `json:"ends_at,omitempty"`
}

// Render builds the view for one connection, or nil when the counterparty is
// missing from the included side-loads.
func Render(conn *jsonapi.Resource, viewingID string, included *jsonapi.IncludedSet, resolver LabelResolver) (*View, error) {
	counterparty, direction := Counterparty(conn, viewingID, included)
	if counterparty == nil {
		return nil, nil
	}

	attrs, err := jsonapi.Attributes[models.ConnectionAttributes](conn)
	if err != nil {
		return nil, err
	}

	var name, subtitle string
	switch counterparty.Type {
	case models.TypePeople:
		person, err := jsonapi.Attributes[models.PersonAttributes](counterparty)
		if err != nil {
			return nil, err
		}
		name = format.PersonFullName(person)
		subtitle = person.JobTitle
	case models.TypeOrganizations:
		org, err := jsonapi.Attributes[models.OrganizationAttributes](counterparty)
		if err != nil {
			return nil, err
		}
		name = org.DisplayName()
		subtitle = resolver.OrganizationTypeLabel(org.Type)
	}

	return &View{
		ConnectionID: conn.ID,
		Counterparty: counterparty.Ref(),
		Name:         name,
		Subtitle:     subtitle,
		Direction:    direction,
		Label:        DirectionalLabel(attrs.TypeSlug(), direction, name, resolver),
		Description:  attrs.Description,
		StartsAt:     attrs.StartsAt,
		EndsAt:       attrs.EndsAt,
	}, nil
}
