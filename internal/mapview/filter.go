package mapview

import (
	"encoding/json"
	"math"
	"sort"
	"strings"

	"backend-bandoxanh/internal/poi"
	"backend-bandoxanh/internal/shared/geo"

	"github.com/go-playground/validator/v10"
)

// Category is the sidebar selector. Every value except CategoryAll maps to
// exactly one point-of-interest list.
type Category string

const (
	CategoryAll      Category = "all"
	CategoryStations Category = "stations"
	CategoryEvents   Category = "events"
	CategoryBikes    Category = "bikes"
	CategoryFood     Category = "food"
	CategoryDonation Category = "donation"
)

const (
	MinRadiusKm     = 1
	MaxRadiusKm     = 50
	DefaultRadiusKm = 20
)

// Kinds returns the variants a category draws from, in concatenation order.
func (c Category) Kinds() []poi.Kind {
	switch c {
	case CategoryStations:
		return []poi.Kind{poi.KindStation}
	case CategoryEvents:
		return []poi.Kind{poi.KindEvent}
	case CategoryBikes:
		return []poi.Kind{poi.KindBike}
	case CategoryFood:
		return []poi.Kind{poi.KindRestaurant}
	case CategoryDonation:
		return []poi.Kind{poi.KindDonation}
	default:
		return poi.Kinds
	}
}

// Query is one render of the map: what to show and from where.
type Query struct {
	Category Category   `json:"category" validate:"omitempty,oneof=all stations events bikes food donation"`
	Search   string     `json:"search" validate:"max=200"`
	RadiusKm int        `json:"radiusKm" validate:"min=1,max=50"`
	User     *geo.Point `json:"user,omitempty"`
}

// NewQuery returns the initial sidebar state: every category, no search,
// default radius, location unknown.
func NewQuery() Query {
	return Query{Category: CategoryAll, RadiusKm: DefaultRadiusKm}
}

var validate = validator.New()

func (q Query) Validate() error {
	return validate.Struct(q)
}

// ItemWithDistance is an item annotated with its distance from the user.
// DistanceKm is nil when the user location is unknown.
type ItemWithDistance struct {
	poi.Item
	DistanceKm *float64 `json:"distance"`
}

// UnmarshalJSON is needed because the embedded poi.Item would otherwise
// decode the whole object and drop the distance.
func (i *ItemWithDistance) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &i.Item); err != nil {
		return err
	}
	var extra struct {
		DistanceKm *float64 `json:"distance"`
	}
	if err := json.Unmarshal(data, &extra); err != nil {
		return err
	}
	i.DistanceKm = extra.DistanceKm
	return nil
}

// Filter selects, annotates, filters and sorts the point-of-interest lists
// for one query. Items without a distance sort last; the sort is stable, so
// without a user location the input order is kept.
func Filter(q Query, lists poi.Lists) []ItemWithDistance {
	radius := float64(clampRadius(q.RadiusKm))
	search := strings.ToLower(q.Search)

	results := []ItemWithDistance{}
	for _, kind := range q.Category.Kinds() {
		for _, item := range lists.Items(kind) {
			var dist *float64
			if q.User != nil {
				d := geo.Distance(*q.User, item.Point())
				dist = &d
			}
			if !matches(item, search) {
				continue
			}
			if dist != nil && *dist > radius {
				continue
			}
			results = append(results, ItemWithDistance{Item: item, DistanceKm: dist})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return sortKey(results[i]) < sortKey(results[j])
	})
	return results
}

func matches(item poi.Item, search string) bool {
	if search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(item.Name), search) ||
		strings.Contains(strings.ToLower(item.Address), search)
}

func sortKey(item ItemWithDistance) float64 {
	if item.DistanceKm == nil {
		return math.MaxFloat64
	}
	return *item.DistanceKm
}

func clampRadius(r int) int {
	switch {
	case r == 0:
		return DefaultRadiusKm
	case r < MinRadiusKm:
		return MinRadiusKm
	case r > MaxRadiusKm:
		return MaxRadiusKm
	}
	return r
}
