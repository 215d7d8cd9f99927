// Package resourcetypes resolves coded slugs ("board-member", "she-her-hers")
// to display labels using the upstream's resource-type catalog. The catalog is
// fetched once and partitioned in-process; lookups are O(1) and never block on
// the network.
package resourcetypes

import (
	"context"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/Gobusters/ectologger"

	"github.com/cloverhq/clover/pkg/jsonapi"
	"github.com/cloverhq/clover/pkg/metrics"
	"github.com/cloverhq/clover/pkg/models"
)

// State is the lifecycle state of a catalog partition.
type State int

const (
	// StateUninitialized means no load has been attempted yet.
	StateUninitialized State = iota
	// StateLoading means a catalog fetch is in flight.
	StateLoading
	// StateReady means the partition holds resolved labels.
	StateReady
	// StateError means the last load failed; the partition falls back to
	// slug transformation until a retry succeeds.
	StateError
)

// Partitions lists every catalog partition the resolver tracks. Slugs are
// only unique within a partition.
var Partitions = []string{
	models.PartitionOrganizationTypes,
	models.PartitionOrganizationStatuses,
	models.PartitionConnectionTypes,
	models.PartitionGroupTypes,
	models.PartitionPersonTypes,
	models.PartitionPersonStatuses,
	models.PartitionJobFunctions,
	models.PartitionJobLevels,
	models.PartitionPronouns,
	models.PartitionGenders,
}

// CatalogLister fetches the full resource-type catalog.
type CatalogLister interface {
	ListResourceTypes(ctx context.Context) (*jsonapi.Document, error)
}

type partition struct {
	state  State
	labels map[string]string
	err    error
}

// Resolver is the process-wide slug-to-label resolver.
type Resolver struct {
	mu         sync.RWMutex
	partitions map[string]*partition
	loading    chan struct{}
	client     CatalogLister
	logger     ectologger.Logger
}

// NewResolver creates a resolver over the given catalog source. No fetch
// happens until Load.
func NewResolver(client CatalogLister, logger ectologger.Logger) *Resolver {
	r := &Resolver{
		client: client,
		logger: logger,
	}
	r.reset()
	return r
}

// reset reinitializes every partition to uninitialized. Caller must hold the
// write lock, or be the constructor.
func (r *Resolver) reset() {
	r.partitions = make(map[string]*partition, len(Partitions))
	for _, name := range Partitions {
		r.partitions[name] = &partition{state: StateUninitialized, labels: map[string]string{}}
	}
}

// Load fetches and partitions the catalog if it has not been loaded yet.
// Concurrent callers share a single fetch. A resolver that already loaded
// successfully is a no-op; partitions in error state are retried.
func (r *Resolver) Load(ctx context.Context) error {
	r.mu.Lock()
	if r.ready() {
		r.mu.Unlock()
		return nil
	}
	if r.loading != nil {
		done := r.loading
		r.mu.Unlock()
		select {
		case <-done:
			return r.loadErr()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	done := make(chan struct{})
	r.loading = done
	for _, p := range r.partitions {
		p.state = StateLoading
	}
	r.mu.Unlock()

	err := r.fetch(ctx)

	r.mu.Lock()
	r.loading = nil
	close(done)
	r.mu.Unlock()
	return err
}

// Refresh forces a catalog re-fetch, replacing any loaded labels.
func (r *Resolver) Refresh(ctx context.Context) error {
	r.Clear()
	return r.Load(ctx)
}

// Clear drops all loaded labels, returning every partition to uninitialized.
func (r *Resolver) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reset()
}

// ready reports whether every partition is loaded. Caller must hold a lock.
func (r *Resolver) ready() bool {
	for _, p := range r.partitions {
		if p.state != StateReady {
			return false
		}
	}
	return true
}

// loadErr returns the first partition error, if any.
func (r *Resolver) loadErr() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, name := range Partitions {
		if p := r.partitions[name]; p.state == StateError {
			return p.err
		}
	}
	return nil
}

// fetch pulls the catalog and rebuilds every partition's label map. Records
// in unknown partitions are kept under their own partition name so future
// catalog additions resolve without a code change.
func (r *Resolver) fetch(ctx context.Context) error {
	doc, err := r.client.ListResourceTypes(ctx)
	if err != nil {
		metrics.LabelCacheLoads.WithLabelValues("error").Inc()
		r.logger.WithContext(ctx).WithError(err).Errorf("failed to load resource-type catalog")
		r.mu.Lock()
		for _, p := range r.partitions {
			p.state = StateError
			p.err = err
		}
		r.mu.Unlock()
		return err
	}

	labels := make(map[string]map[string]string, len(Partitions))
	for _, name := range Partitions {
		labels[name] = map[string]string{}
	}
	for _, res := range doc.Data {
		attrs, err := jsonapi.Attributes[models.ResourceTypeAttributes](res)
		if err != nil || attrs.Slug == "" || attrs.ResourceType == "" {
			r.logger.WithContext(ctx).WithField("id", res.ID).Warn("skipping malformed resource-type record")
			continue
		}
		part, ok := labels[attrs.ResourceType]
		if !ok {
			part = map[string]string{}
			labels[attrs.ResourceType] = part
		}
		part[attrs.Slug] = attrs.Label()
	}

	metrics.LabelCacheLoads.WithLabelValues("success").Inc()

	r.mu.Lock()
	defer r.mu.Unlock()
	for name, slugLabels := range labels {
		p, ok := r.partitions[name]
		if !ok {
			p = &partition{}
			r.partitions[name] = p
		}
		p.state = StateReady
		p.labels = slugLabels
		p.err = nil
	}
	return nil
}

// PartitionState returns the lifecycle state of one partition.
func (r *Resolver) PartitionState(name string) State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.partitions[name]; ok {
		return p.state
	}
	return StateUninitialized
}

// Lookup returns the catalog label for a slug within a partition, reporting
// whether the catalog actually had it.
func (r *Resolver) Lookup(partitionName, slug string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.partitions[partitionName]
	if !ok || p.state != StateReady {
		return "", false
	}
	label, ok := p.labels[slug]
	return label, ok
}

// Label resolves a slug to its display label, falling back to a deterministic
// title-case transform of the slug when the catalog has no entry or is not
// loaded. Empty slugs resolve to empty.
func (r *Resolver) Label(partitionName, slug string) string {
	if slug == "" {
		return ""
	}
	if label, ok := r.Lookup(partitionName, slug); ok {
		metrics.RecordLabelLookup(partitionName, "hit")
		return label
	}
	metrics.RecordLabelLookup(partitionName, "miss")
	return FallbackLabel(slug)
}

// FallbackLabel turns a slug into a readable label by splitting on hyphens
// and underscores and title-casing each word: "board-member" -> "Board Member".
func FallbackLabel(slug string) string {
	words := strings.FieldsFunc(slug, func(r rune) bool {
		return r == '-' || r == '_'
	})
	for i, word := range words {
		first, size := utf8.DecodeRuneInString(word)
		words[i] = string(unicode.ToUpper(first)) + strings.ToLower(word[size:])
	}
	return strings.Join(words, " ")
}

// Typed helpers for the partitions callers actually touch.

func (r *Resolver) OrganizationTypeLabel(slug string) string {
	return r.Label(models.PartitionOrganizationTypes, slug)
}

func (r *Resolver) OrganizationStatusLabel(slug string) string {
	return r.Label(models.PartitionOrganizationStatuses, slug)
}

func (r *Resolver) ConnectionTypeLabel(slug string) string {
	return r.Label(models.PartitionConnectionTypes, slug)
}

func (r *Resolver) GroupTypeLabel(slug string) string {
	return r.Label(models.PartitionGroupTypes, slug)
}

func (r *Resolver) PersonTypeLabel(slug string) string {
	return r.Label(models.PartitionPersonTypes, slug)
}

func (r *Resolver) PersonStatusLabel(slug string) string {
	return r.Label(models.PartitionPersonStatuses, slug)
}

func (r *Resolver) JobFunctionLabel(slug string) string {
	return r.Label(models.PartitionJobFunctions, slug)
}

func (r *Resolver) JobLevelLabel(slug string) string {
	return r.Label(models.PartitionJobLevels, slug)
}

func (r *Resolver) PronounLabel(slug string) string {
	return r.Label(models.PartitionPronouns, slug)
}

func (r *Resolver) GenderLabel(slug string) string {
	return r.Label(models.PartitionGenders, slug)
}

// Labels returns a copy of one partition's slug-to-label map, for the
// listing endpoint.
func (r *Resolver) Labels(partitionName string) map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.partitions[partitionName]
	if !ok {
		return nil
	}
	out := make(map[string]string, len(p.labels))
	for slug, label := range p.labels {
		out[slug] = label
	}
	return out
}
