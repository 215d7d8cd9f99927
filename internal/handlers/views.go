package handlers

import (
	"github.com/cloverhq/clover/pkg/format"
	"github.com/cloverhq/clover/pkg/jsonapi"
	"github.com/cloverhq/clover/pkg/models"
)

// PageView is the pagination block surfaced on list responses.
type PageView struct {
	TotalItems int  `json:"total_items"`
	TotalPages int  `json:"total_pages"`
	Number     int  `json:"number"`
	Size       int  `json:"size"`
	HasMore    bool `json:"has_more"`
}

func pageView(page jsonapi.PageMeta) PageView {
	return PageView{
		TotalItems: page.TotalItems,
		TotalPages: page.TotalPages,
		Number:     page.Number,
		Size:       page.Size,
		HasMore:    page.Number < page.TotalPages,
	}
}

// ContactPointsView holds a person's or organization's formatted contact
// points.
type ContactPointsView struct {
	Addresses    []string `json:"addresses"`
	Phones       []string `json:"phones"`
	Emails       []string `json:"emails"`
	WebAddresses []string `json:"web_addresses"`
}

// contactPoints formats every side-loaded contact point of a resource. Side
// tables that aren't linked through relationships still render, keyed by
// resource type.
func contactPoints(res *jsonapi.Resource, included *jsonapi.IncludedSet) (ContactPointsView, error) {
	view := ContactPointsView{
		Addresses:    []string{},
		Phones:       []string{},
		Emails:       []string{},
		WebAddresses: []string{},
	}

	for _, addr := range related(res, included, "addresses", models.TypeAddresses) {
		attrs, err := jsonapi.Attributes[models.AddressAttributes](addr)
		if err != nil {
			return view, err
		}
		if formatted := format.Address(attrs); formatted != "" {
			view.Addresses = append(view.Addresses, formatted)
		}
	}

	for _, phone := range related(res, included, "phones", models.TypePhones) {
		attrs, err := jsonapi.Attributes[models.PhoneAttributes](phone)
		if err != nil {
			return view, err
		}
		if display := attrs.Display(); display != "" {
			view.Phones = append(view.Phones, display)
		}
	}

	for _, email := range related(res, included, "emails", models.TypeEmails) {
		attrs, err := jsonapi.Attributes[models.EmailAttributes](email)
		if err != nil {
			return view, err
		}
		if display := attrs.Display(); display != "" {
			view.Emails = append(view.Emails, display)
		}
	}

	for _, web := range related(res, included, "web_addresses", models.TypeWebAddresses) {
		attrs, err := jsonapi.Attributes[models.WebAddressAttributes](web)
		if err != nil {
			return view, err
		}
		if display := attrs.Display(); display != "" {
			view.WebAddresses = append(view.WebAddresses, display)
		}
	}

	return view, nil
}

// related resolves a named relationship, falling back to every included
// resource of the type when the upstream omits the relationship block.
func related(res *jsonapi.Resource, included *jsonapi.IncludedSet, relName, resourceType string) []*jsonapi.Resource {
	if resolved := included.ResolveNamed(res, relName); len(resolved) > 0 {
		return resolved
	}
	if _, ok := res.Relationship(relName); ok {
		// Relationship present but targets missing: treat as empty.
		return nil
	}
	return included.OfType(resourceType)
}

// cityState renders the location line for a list row from the resource's
// primary address. Only relationship-linked addresses count: on a list page
// the included table holds every row's addresses.
func cityState(res *jsonapi.Resource, included *jsonapi.IncludedSet) string {
	resources := included.ResolveNamed(res, "addresses")
	addresses := make([]models.AddressAttributes, 0, len(resources))
	for _, addr := range resources {
		attrs, err := jsonapi.Attributes[models.AddressAttributes](addr)
		if err != nil {
			continue
		}
		addresses = append(addresses, attrs)
	}
	primary, ok := format.PrimaryAddress(addresses)
	if !ok {
		return ""
	}
	return format.CityState(primary)
}
