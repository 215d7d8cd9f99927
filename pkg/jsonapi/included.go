package jsonapi

// IncludedSet resolves relationship pointers against the flat included array
// of a response. Lookups are a linear scan over a single page's side table,
// which is bounded by the upstream page size.
//
// Resolution never fails: a pointer whose target is absent resolves to nil
// and callers treat the missing resource as "not yet loaded".
type IncludedSet struct {
	resources []*Resource
}

// NewIncludedSet builds a lookup over the given resource slices. The primary
// data of a response can be passed alongside included so self-referencing
// pointers resolve too.
func NewIncludedSet(groups ...[]*Resource) *IncludedSet {
	total := 0
	for _, g := range groups {
		total += len(g)
	}
	all := make([]*Resource, 0, total)
	for _, g := range groups {
		all = append(all, g...)
	}
	return &IncludedSet{resources: all}
}

// IncludedOf builds a lookup over a document's included set plus its primary
// data.
func IncludedOf(doc *Document) *IncludedSet {
	if doc == nil {
		return NewIncludedSet()
	}
	return NewIncludedSet(doc.Included, doc.Data)
}

// Find returns the resource matching the (type, id) reference exactly, or nil.
// The first match wins if the set carries duplicates.
func (s *IncludedSet) Find(ref ResourceID) *Resource {
	for _, res := range s.resources {
		if res != nil && res.ID == ref.ID && res.Type == ref.Type {
			return res
		}
	}
	return nil
}

// FindTyped returns the resource with the given type and id, or nil.
func (s *IncludedSet) FindTyped(resourceType, id string) *Resource {
	return s.Find(ResourceID{ID: id, Type: resourceType})
}

// Resolve returns the resources a relationship pointer refers to, omitting
// references whose targets are absent from the set. A dangling pointer yields
// a shorter (possibly empty) slice, never an error.
func (s *IncludedSet) Resolve(rel Relationship) []*Resource {
	if len(rel.Data) == 0 {
		return nil
	}
	resolved := make([]*Resource, 0, len(rel.Data))
	for _, ref := range rel.Data {
		if res := s.Find(ref); res != nil {
			resolved = append(resolved, res)
		}
	}
	return resolved
}

// ResolveOne returns the first resolvable resource of a pointer, or nil.
func (s *IncludedSet) ResolveOne(rel Relationship) *Resource {
	for _, ref := range rel.Data {
		if res := s.Find(ref); res != nil {
			return res
		}
	}
	return nil
}

// ResolveNamed resolves the named relationship of a resource, or nil when the
// resource has no such relationship or the target is missing.
func (s *IncludedSet) ResolveNamed(res *Resource, name string) []*Resource {
	rel, ok := res.Relationship(name)
	if !ok {
		return nil
	}
	return s.Resolve(rel)
}

// ResolveNamedOne resolves a singular named relationship, or nil.
func (s *IncludedSet) ResolveNamedOne(res *Resource, name string) *Resource {
	rel, ok := res.Relationship(name)
	if !ok {
		return nil
	}
	return s.ResolveOne(rel)
}

// OfType returns every resource of the given type, in set order.
func (s *IncludedSet) OfType(resourceType string) []*Resource {
	var out []*Resource
	for _, res := range s.resources {
		if res != nil && res.Type == resourceType {
			out = append(out, res)
		}
	}
	return out
}

// Len returns the number of resources in the set.
func (s *IncludedSet) Len() int {
	return len(s.resources)
}
