package poi

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"backend-bandoxanh/internal/shared/geo"
)

// Kind discriminates the five point-of-interest variants.
type Kind string

const (
	KindStation    Kind = "station"
	KindEvent      Kind = "event"
	KindBike       Kind = "bike"
	KindRestaurant Kind = "restaurant"
	KindDonation   Kind = "donation"
)

// Kinds lists every variant in the order the map concatenates them.
var Kinds = []Kind{KindStation, KindEvent, KindBike, KindRestaurant, KindDonation}

func (k Kind) Valid() bool {
	switch k {
	case KindStation, KindEvent, KindBike, KindRestaurant, KindDonation:
		return true
	}
	return false
}

// Label is the Vietnamese display name used on list cards.
func (k Kind) Label() string {
	switch k {
	case KindStation:
		return "Điểm thu gom"
	case KindEvent:
		return "Sự kiện xanh"
	case KindBike:
		return "Thuê xe đạp"
	case KindRestaurant:
		return "Quán ăn xanh"
	case KindDonation:
		return "Điểm quyên góp"
	}
	panic(fmt.Sprintf("poi: unknown kind %q", string(k)))
}

// MarkerIcon names the map marker asset for the kind.
func (k Kind) MarkerIcon() string {
	switch k {
	case KindStation:
		return "recycle"
	case KindEvent:
		return "calendar"
	case KindBike:
		return "bicycle"
	case KindRestaurant:
		return "leaf"
	case KindDonation:
		return "gift"
	}
	panic(fmt.Sprintf("poi: unknown kind %q", string(k)))
}

// Key identifies an item across variants. ID alone collides between kinds.
type Key struct {
	Kind Kind  `json:"kind"`
	ID   int64 `json:"id"`
}

func (k Key) String() string {
	return fmt.Sprintf("%s-%d", k.Kind, k.ID)
}

// ParseKey reverses Key.String.
func ParseKey(s string) (Key, error) {
	i := strings.LastIndex(s, "-")
	if i <= 0 {
		return Key{}, fmt.Errorf("poi: malformed key %q", s)
	}
	kind := Kind(s[:i])
	if !kind.Valid() {
		return Key{}, fmt.Errorf("poi: unknown kind in key %q", s)
	}
	id, err := strconv.ParseInt(s[i+1:], 10, 64)
	if err != nil {
		return Key{}, fmt.Errorf("poi: bad id in key %q", s)
	}
	return Key{Kind: kind, ID: id}, nil
}

// Variant is implemented only by the five wire types below.
type Variant interface {
	variantKind() Kind
}

type Station struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Address      string   `json:"address"`
	Latitude     float64  `json:"latitude"`
	Longitude    float64  `json:"longitude"`
	WasteTypes   []string `json:"wasteTypes"`
	OpeningHours string   `json:"openingHours"`
}

type Event struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	Organizer   string  `json:"organizer"`
	Description string  `json:"description"`
}

type Bike struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Address        string  `json:"address"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	PricePerHour   float64 `json:"pricePerHour"`
	AvailableBikes int     `json:"availableBikes"`
}

type Restaurant struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	Address        string   `json:"address"`
	Latitude       float64  `json:"latitude"`
	Longitude      float64  `json:"longitude"`
	Cuisine        string   `json:"cuisine"`
	GreenPractices []string `json:"greenPractices"`
}

type Donation struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	Address       string   `json:"address"`
	Latitude      float64  `json:"latitude"`
	Longitude     float64  `json:"longitude"`
	AcceptedItems []string `json:"acceptedItems"`
	Contact       string   `json:"contact"`
}

func (Station) variantKind() Kind    { return KindStation }
func (Event) variantKind() Kind      { return KindEvent }
func (Bike) variantKind() Kind       { return KindBike }
func (Restaurant) variantKind() Kind { return KindRestaurant }
func (Donation) variantKind() Kind   { return KindDonation }

// Item is the tagged union the map and list render. Kind is fixed at
// ingestion by the From* constructors.
type Item struct {
	Kind      Kind    `json:"kind"`
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Variant   Variant `json:"detail"`
}

func (i Item) Key() Key {
	return Key{Kind: i.Kind, ID: i.ID}
}

func (i Item) Point() geo.Point {
	return geo.Point{Latitude: i.Latitude, Longitude: i.Longitude}
}

// Summary is the one-line, kind-specific subtitle shown under the name.
func (i Item) Summary() string {
	switch v := i.Variant.(type) {
	case Station:
		if len(v.WasteTypes) == 0 {
			return v.OpeningHours
		}
		return fmt.Sprintf("%s · %v", v.OpeningHours, v.WasteTypes)
	case Event:
		return fmt.Sprintf("%s %s · %s", v.Date, v.Time, v.Organizer)
	case Bike:
		return fmt.Sprintf("%.0fđ/giờ · %d xe", v.PricePerHour, v.AvailableBikes)
	case Restaurant:
		return v.Cuisine
	case Donation:
		return v.Contact
	}
	return ""
}

func FromStation(s Station) Item {
	return Item{Kind: KindStation, ID: s.ID, Name: s.Name, Address: s.Address, Latitude: s.Latitude, Longitude: s.Longitude, Variant: s}
}

func FromEvent(e Event) Item {
	return Item{Kind: KindEvent, ID: e.ID, Name: e.Name, Address: e.Address, Latitude: e.Latitude, Longitude: e.Longitude, Variant: e}
}

func FromBike(b Bike) Item {
	return Item{Kind: KindBike, ID: b.ID, Name: b.Name, Address: b.Address, Latitude: b.Latitude, Longitude: b.Longitude, Variant: b}
}

func FromRestaurant(r Restaurant) Item {
	return Item{Kind: KindRestaurant, ID: r.ID, Name: r.Name, Address: r.Address, Latitude: r.Latitude, Longitude: r.Longitude, Variant: r}
}

func FromDonation(d Donation) Item {
	return Item{Kind: KindDonation, ID: d.ID, Name: d.Name, Address: d.Address, Latitude: d.Latitude, Longitude: d.Longitude, Variant: d}
}

// UnmarshalJSON decodes the detail payload into the concrete variant named
// by kind.
func (i *Item) UnmarshalJSON(data []byte) error {
	var raw struct {
		Kind      Kind            `json:"kind"`
		ID        int64           `json:"id"`
		Name      string          `json:"name"`
		Address   string          `json:"address"`
		Latitude  float64         `json:"latitude"`
		Longitude float64         `json:"longitude"`
		Detail    json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var variant Variant
	var err error
	switch raw.Kind {
	case KindStation:
		variant, err = decodeVariant[Station](raw.Detail)
	case KindEvent:
		variant, err = decodeVariant[Event](raw.Detail)
	case KindBike:
		variant, err = decodeVariant[Bike](raw.Detail)
	case KindRestaurant:
		variant, err = decodeVariant[Restaurant](raw.Detail)
	case KindDonation:
		variant, err = decodeVariant[Donation](raw.Detail)
	default:
		return fmt.Errorf("poi: unknown kind %q", string(raw.Kind))
	}
	if err != nil {
		return err
	}

	*i = Item{
		Kind:      raw.Kind,
		ID:        raw.ID,
		Name:      raw.Name,
		Address:   raw.Address,
		Latitude:  raw.Latitude,
		Longitude: raw.Longitude,
		Variant:   variant,
	}
	return nil
}

func decodeVariant[T Variant](data json.RawMessage) (Variant, error) {
	var v T
	if len(data) == 0 || string(data) == "null" {
		return v, nil
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// Lists holds the five per-kind lists exactly as the API serves them.
type Lists struct {
	Stations    []Station    `json:"stations"`
	Events      []Event      `json:"events"`
	Bikes       []Bike       `json:"bikes"`
	Restaurants []Restaurant `json:"restaurants"`
	Donations   []Donation   `json:"donations"`
}

// Items converts the list for one kind into union items, preserving order.
func (l Lists) Items(kind Kind) []Item {
	var items []Item
	switch kind {
	case KindStation:
		for _, s := range l.Stations {
			items = append(items, FromStation(s))
		}
	case KindEvent:
		for _, e := range l.Events {
			items = append(items, FromEvent(e))
		}
	case KindBike:
		for _, b := range l.Bikes {
			items = append(items, FromBike(b))
		}
	case KindRestaurant:
		for _, r := range l.Restaurants {
			items = append(items, FromRestaurant(r))
		}
	case KindDonation:
		for _, d := range l.Donations {
			items = append(items, FromDonation(d))
		}
	}
	return items
}
