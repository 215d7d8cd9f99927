// Package touchpoints fans out per-person touchpoint fetches across a bounded
// worker pool and merges the results into one chronological feed.
package touchpoints

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/cloverhq/clover/pkg/jsonapi"
	"github.com/cloverhq/clover/pkg/metrics"
	"github.com/cloverhq/clover/pkg/models"
)

// DefaultConcurrency is the default number of concurrent per-person fetches.
const DefaultConcurrency = 5

// Source fetches one person's touchpoints with their services included.
type Source interface {
	PersonTouchpoints(ctx context.Context, personID string) (*jsonapi.Document, error)
}

// PersonResult is one person's slice of the batch. Failed fetches carry an
// empty Touchpoints slice and the error; they never fail the whole batch.
type PersonResult struct {
	PersonID    string
	Touchpoints []*jsonapi.Resource
	Included    []*jsonapi.Resource
	Err         error
}

// BatchResult holds the outcome of one fanout: per-person results in input
// order plus the merged feed.
type BatchResult struct {
	Results      []PersonResult
	SuccessCount int
	FailureCount int
}

// Fetcher runs batched touchpoint fetches.
type Fetcher struct {
	source      Source
	logger      ectologger.Logger
	concurrency int
}

// NewFetcher creates a fetcher. Non-positive concurrency uses
// DefaultConcurrency.
func NewFetcher(source Source, logger ectologger.Logger, concurrency int) *Fetcher {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Fetcher{
		source:      source,
		logger:      logger,
		concurrency: concurrency,
	}
}

type indexedItem struct {
	index    int
	personID string
}

type indexedResult struct {
	index  int
	result PersonResult
}

// FetchBatch fetches touchpoints for every person, at most the configured
// number of fetches in flight at once. Results come back in input order; a
// person whose fetch fails contributes an empty slice.
func (f *Fetcher) FetchBatch(ctx context.Context, personIDs []string) (*BatchResult, error) {
	if len(personIDs) == 0 {
		return &BatchResult{Results: []PersonResult{}}, nil
	}

	start := time.Now()

	concurrency := f.concurrency
	if concurrency > len(personIDs) {
		concurrency = len(personIDs)
	}

	f.logger.WithContext(ctx).Debugf("Fetching touchpoints for %d people with concurrency %d", len(personIDs), concurrency)

	itemChan := make(chan indexedItem, len(personIDs))
	resultChan := make(chan indexedResult, len(personIDs))

	var wg sync.WaitGroup
	workerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go f.worker(workerCtx, &wg, itemChan, resultChan)
	}

	go func() {
		for i, personID := range personIDs {
			select {
			case <-workerCtx.Done():
				return
			case itemChan <- indexedItem{index: i, personID: personID}:
			}
		}
		close(itemChan)
	}()

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	batch := &BatchResult{Results: make([]PersonResult, len(personIDs))}
	for res := range resultChan {
		batch.Results[res.index] = res.result
		if res.result.Err != nil {
			batch.FailureCount++
		} else {
			batch.SuccessCount++
		}
	}

	status := "success"
	if batch.FailureCount > 0 {
		status = "partial"
	}
	metrics.RecordFanoutBatch(status, time.Since(start).Seconds())

	if err := ctx.Err(); err != nil {
		return batch, err
	}
	return batch, nil
}

func (f *Fetcher) worker(ctx context.Context, wg *sync.WaitGroup, items <-chan indexedItem, results chan<- indexedResult) {
	defer wg.Done()

	for item := range items {
		select {
		case <-ctx.Done():
			return
		default:
		}

		metrics.FanoutItemsInFlight.Inc()
		doc, err := f.source.PersonTouchpoints(ctx, item.personID)
		metrics.FanoutItemsInFlight.Dec()

		result := PersonResult{PersonID: item.personID, Touchpoints: []*jsonapi.Resource{}}
		if err != nil {
			f.logger.WithContext(ctx).WithError(err).WithField("person_id", item.personID).Warn("touchpoint fetch failed; continuing batch")
			result.Err = err
		} else {
			result.Touchpoints = doc.Data
			result.Included = doc.Included
		}

		results <- indexedResult{index: item.index, result: result}
	}
}

// Merge flattens a batch into one feed sorted newest first by occurred_at,
// falling back to created_at. Records with no parseable timestamp sink to
// the bottom.
func Merge(batch *BatchResult) ([]*jsonapi.Resource, *jsonapi.IncludedSet) {
	var feed []*jsonapi.Resource
	var includedGroups [][]*jsonapi.Resource
	for _, result := range batch.Results {
		feed = append(feed, result.Touchpoints...)
		if len(result.Included) > 0 {
			includedGroups = append(includedGroups, result.Included)
		}
	}

	timestamps := make(map[string]time.Time, len(feed))
	for _, tp := range feed {
		attrs, err := jsonapi.Attributes[models.TouchpointAttributes](tp)
		if err != nil {
			continue
		}
		if ts, ok := models.ParseDate(attrs.Timestamp()); ok {
			timestamps[tp.ID] = ts
		}
	}

	sort.SliceStable(feed, func(i, j int) bool {
		a, aOK := timestamps[feed[i].ID]
		b, bOK := timestamps[feed[j].ID]
		if aOK && bOK {
			return a.After(b)
		}
		return aOK && !bOK
	})

	return feed, jsonapi.NewIncludedSet(includedGroups...)
}
