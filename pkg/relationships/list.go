package relationships

import (
	"sort"
	"time"

	"github.com/cloverhq/clover/pkg/jsonapi"
	"github.com/cloverhq/clover/pkg/models"
)

// List is the rendered relationship panel: current connections first, ended
// ones in a separate collapsed bucket.
type List struct {
	Active     []*View `json:"active"`
	Historical []*View `json:"historical"`
}

// Split partitions connections into active and historical by end date and
// orders each bucket newest start first, records with no start date last.
func Split(connections []*jsonapi.Resource, at time.Time) (active, historical []*jsonapi.Resource) {
	for _, conn := range connections {
		attrs, err := jsonapi.Attributes[models.ConnectionAttributes](conn)
		if err != nil {
			continue
		}
		if attrs.IsCurrent(at) {
			active = append(active, conn)
		} else {
			historical = append(historical, conn)
		}
	}
	sortByStartDesc(active)
	sortByStartDesc(historical)
	return active, historical
}

func sortByStartDesc(connections []*jsonapi.Resource) {
	starts := make(map[string]time.Time, len(connections))
	for _, conn := range connections {
		attrs, err := jsonapi.Attributes[models.ConnectionAttributes](conn)
		if err != nil {
			continue
		}
		if ts, ok := models.ParseDate(attrs.StartsAt); ok {
			starts[conn.ID] = ts
		}
	}

	sort.SliceStable(connections, func(i, j int) bool {
		a, aOK := starts[connections[i].ID]
		b, bOK := starts[connections[j].ID]
		if aOK && bOK {
			return a.After(b)
		}
		// Records without a start date sink to the bottom.
		return aOK && !bOK
	})
}

// Build renders a connection document into the relationship panel for the
// viewed entity. Connections whose counterparty is missing from the
// side-loads are dropped.
func Build(doc *jsonapi.Document, viewingID string, resolver LabelResolver, at time.Time) (*List, error) {
	included := jsonapi.NewIncludedSet(doc.Included, doc.Data)

	list := &List{Active: []*View{}, Historical: []*View{}}
	active, historical := Split(doc.Data, at)

	for _, conn := range active {
		view, err := Render(conn, viewingID, included, resolver)
		if err != nil {
			return nil, err
		}
		if view != nil {
			list.Active = append(list.Active, view)
		}
	}
	for _, conn := range historical {
		view, err := Render(conn, viewingID, included, resolver)
		if err != nil {
			return nil, err
		}
		if view != nil {
			list.Historical = append(list.Historical, view)
		}
	}
	return list, nil
}
