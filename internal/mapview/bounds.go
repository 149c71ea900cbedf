package mapview

import (
	"backend-bandoxanh/internal/shared/geo"

	"github.com/paulmach/orb"
)

// Bounds is the viewport that fits every marker, plus the user when the
// location is known. ok is false when there is nothing to fit.
func Bounds(items []ItemWithDistance, user *geo.Point) (orb.Bound, bool) {
	var mp orb.MultiPoint
	for _, item := range items {
		mp = append(mp, item.Point().Orb())
	}
	if user != nil {
		mp = append(mp, user.Orb())
	}
	if len(mp) == 0 {
		return orb.Bound{}, false
	}
	return mp.Bound(), true
}

// Viewport is the JSON shape of a bound: south-west and north-east corners.
type Viewport struct {
	SouthWest geo.Point `json:"southWest"`
	NorthEast geo.Point `json:"northEast"`
}

func ViewportOf(b orb.Bound) Viewport {
	return Viewport{
		SouthWest: geo.Point{Latitude: b.Min.Lat(), Longitude: b.Min.Lon()},
		NorthEast: geo.Point{Latitude: b.Max.Lat(), Longitude: b.Max.Lon()},
	}
}
