// Package jsonapi implements the envelope types and lookup helpers for the
// upstream CRM's JSON:API-shaped payloads.
package jsonapi

import (
	"encoding/json"
	"fmt"
)

// Links holds the pagination links of a response.
type Links struct {
	First string `json:"first,omitempty"`
	Prev  string `json:"prev,omitempty"`
	Self  string `json:"self,omitempty"`
	Next  string `json:"next,omitempty"`
	Last  string `json:"last,omitempty"`
}

// PageMeta is the meta.page block returned by list endpoints.
type PageMeta struct {
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
	Number     int `json:"number"`
	Size       int `json:"size"`
}

// Meta is the top-level meta block.
type Meta struct {
	Page *PageMeta `json:"page,omitempty"`
}

// Document is a top-level JSON:API response envelope. Data always holds the
// primary resources as a slice; single-resource responses are normalized at
// decode time and reported via Single.
type Document struct {
	Data     []*Resource
	Included []*Resource
	Meta     *Meta
	Links    *Links

	// Single is true when the wire payload carried a single resource object
	// rather than an array.
	Single bool
}

type documentWire struct {
	Data     json.RawMessage `json:"data"`
	Included []*Resource     `json:"included,omitempty"`
	Meta     *Meta           `json:"meta,omitempty"`
	Links    *Links          `json:"links,omitempty"`
}

// UnmarshalJSON decodes the envelope, accepting data as null, a single
// resource object, or an array of resources.
func (d *Document) UnmarshalJSON(b []byte) error {
	var wire documentWire
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}

	d.Included = wire.Included
	d.Meta = wire.Meta
	d.Links = wire.Links
	d.Data = nil
	d.Single = false

	if len(wire.Data) == 0 || string(wire.Data) == "null" {
		return nil
	}

	switch wire.Data[0] {
	case '[':
		return json.Unmarshal(wire.Data, &d.Data)
	case '{':
		var res Resource
		if err := json.Unmarshal(wire.Data, &res); err != nil {
			return err
		}
		d.Data = []*Resource{&res}
		d.Single = true
		return nil
	default:
		return fmt.Errorf("unexpected data payload: %s", truncate(wire.Data, 40))
	}
}

// MarshalJSON re-emits the envelope, preserving the single-vs-array shape.
func (d Document) MarshalJSON() ([]byte, error) {
	wire := documentWire{
		Included: d.Included,
		Meta:     d.Meta,
		Links:    d.Links,
	}

	var err error
	switch {
	case d.Single && len(d.Data) > 0:
		wire.Data, err = json.Marshal(d.Data[0])
	case d.Data != nil:
		wire.Data, err = json.Marshal(d.Data)
	default:
		wire.Data = json.RawMessage("null")
	}
	if err != nil {
		return nil, err
	}

	return json.Marshal(wire)
}

// Resource returns the primary resource of a single-resource response, or nil.
func (d *Document) Resource() *Resource {
	if len(d.Data) == 0 {
		return nil
	}
	return d.Data[0]
}

// Page returns the pagination block, defaulting to a single empty page when
// the upstream response omits meta.page.
func (d *Document) Page() PageMeta {
	if d.Meta != nil && d.Meta.Page != nil {
		return *d.Meta.Page
	}
	return PageMeta{TotalItems: 0, TotalPages: 1, Number: 1}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
