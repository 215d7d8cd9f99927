package jsonapi

import (
	"encoding/json"
	"fmt"
)

// ResourceID is a weak (type, id) reference to a resource. Targets are not
// guaranteed to be present in the response's included set.
type ResourceID struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// IsZero reports whether the reference is empty.
func (r ResourceID) IsZero() bool {
	return r.ID == "" && r.Type == ""
}

// Resource is a single JSON:API resource object. Attributes are kept raw and
// decoded into typed structs at the consumption boundary.
type Resource struct {
	ID            string                  `json:"id"`
	Type          string                  `json:"type"`
	Attributes    json.RawMessage         `json:"attributes,omitempty"`
	Relationships map[string]Relationship `json:"relationships,omitempty"`
	Meta          map[string]any          `json:"meta,omitempty"`
}

// Ref returns the resource's own (type, id) reference.
func (r *Resource) Ref() ResourceID {
	return ResourceID{ID: r.ID, Type: r.Type}
}

// Relationship returns the named relationship pointer. The second return is
// false when the resource carries no such relationship.
func (r *Resource) Relationship(name string) (Relationship, bool) {
	if r == nil || r.Relationships == nil {
		return Relationship{}, false
	}
	rel, ok := r.Relationships[name]
	return rel, ok
}

// DecodeAttributes parses the raw attributes into v. Unknown fields are
// ignored; a missing attributes block decodes to the zero value.
func (r *Resource) DecodeAttributes(v any) error {
	if r == nil {
		return fmt.Errorf("cannot decode attributes of nil resource")
	}
	if len(r.Attributes) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Attributes, v); err != nil {
		return fmt.Errorf("decode %s attributes: %w", r.Type, err)
	}
	return nil
}

// Attributes decodes a resource's attributes into T. The zero value of T is
// returned alongside the error when decoding fails or the resource is nil.
func Attributes[T any](r *Resource) (T, error) {
	var attrs T
	if r == nil {
		return attrs, fmt.Errorf("cannot decode attributes of nil resource")
	}
	err := r.DecodeAttributes(&attrs)
	return attrs, err
}

// Relationship is a relationship pointer: {data: {...}} or {data: [...]}.
// Data is normalized to a slice; Many records the wire shape.
type Relationship struct {
	Data  []ResourceID
	Many  bool
	Links *Links
	Meta  map[string]any
}

type relationshipWire struct {
	Data  json.RawMessage `json:"data,omitempty"`
	Links *Links          `json:"links,omitempty"`
	Meta  map[string]any  `json:"meta,omitempty"`
}

// UnmarshalJSON accepts data as null, a single reference, or an array.
func (r *Relationship) UnmarshalJSON(b []byte) error {
	var wire relationshipWire
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}

	r.Links = wire.Links
	r.Meta = wire.Meta
	r.Data = nil
	r.Many = false

	if len(wire.Data) == 0 || string(wire.Data) == "null" {
		return nil
	}

	switch wire.Data[0] {
	case '[':
		r.Many = true
		return json.Unmarshal(wire.Data, &r.Data)
	case '{':
		var ref ResourceID
		if err := json.Unmarshal(wire.Data, &ref); err != nil {
			return err
		}
		r.Data = []ResourceID{ref}
		return nil
	default:
		return fmt.Errorf("unexpected relationship data: %s", truncate(wire.Data, 40))
	}
}

// MarshalJSON preserves the single-vs-array shape of the relationship.
func (r Relationship) MarshalJSON() ([]byte, error) {
	wire := relationshipWire{Links: r.Links, Meta: r.Meta}

	var err error
	switch {
	case r.Many:
		wire.Data, err = json.Marshal(r.Data)
	case len(r.Data) > 0:
		wire.Data, err = json.Marshal(r.Data[0])
	default:
		wire.Data = json.RawMessage("null")
	}
	if err != nil {
		return nil, err
	}

	return json.Marshal(wire)
}

// First returns the first reference of the pointer, if any.
func (r Relationship) First() (ResourceID, bool) {
	if len(r.Data) == 0 {
		return ResourceID{}, false
	}
	return r.Data[0], true
}
