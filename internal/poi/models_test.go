package poi

import (
	"encoding/json"
	"testing"
)

func TestKeyDistinguishesKinds(t *testing.T) {
	station := FromStation(Station{ID: 7, Name: "a"})
	bike := FromBike(Bike{ID: 7, Name: "b"})
	if station.Key() == bike.Key() {
		t.Fatalf("expected distinct keys for equal ids")
	}
	if station.Key().String() != "station-7" {
		t.Fatalf("unexpected key string %q", station.Key().String())
	}
}

func TestConstructorsSetKind(t *testing.T) {
	cases := map[Kind]Item{
		KindStation:    FromStation(Station{}),
		KindEvent:      FromEvent(Event{}),
		KindBike:       FromBike(Bike{}),
		KindRestaurant: FromRestaurant(Restaurant{}),
		KindDonation:   FromDonation(Donation{}),
	}
	for kind, item := range cases {
		if item.Kind != kind {
			t.Fatalf("expected kind %s, got %s", kind, item.Kind)
		}
		if item.Variant.variantKind() != kind {
			t.Fatalf("variant disagrees with kind %s", kind)
		}
		if item.Kind.Label() == "" || item.Kind.MarkerIcon() == "" {
			t.Fatalf("expected label and icon for %s", kind)
		}
	}
}

func TestUnknownKindPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	_ = Kind("spaceport").Label()
}

func TestItemJSONRoundTripKeepsVariant(t *testing.T) {
	item := FromDonation(Donation{ID: 3, Name: "Tủ đồ", AcceptedItems: []string{"books"}, Contact: "abc"})
	data, err := json.Marshal(item)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded Item
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	donation, ok := decoded.Variant.(Donation)
	if !ok {
		t.Fatalf("expected donation variant, got %T", decoded.Variant)
	}
	if donation.Contact != "abc" || decoded.Key() != item.Key() {
		t.Fatalf("unexpected decoded item %+v", decoded)
	}
}

func TestItemUnmarshalUnknownKind(t *testing.T) {
	var item Item
	if err := json.Unmarshal([]byte(`{"kind":"ufo","id":1}`), &item); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestListsItemsPreservesOrder(t *testing.T) {
	lists := Lists{Stations: []Station{{ID: 2}, {ID: 1}, {ID: 3}}}
	items := lists.Items(KindStation)
	if len(items) != 3 || items[0].ID != 2 || items[2].ID != 3 {
		t.Fatalf("unexpected order %+v", items)
	}
	if len(lists.Items(KindBike)) != 0 {
		t.Fatalf("expected no bikes")
	}
}

func TestSummaryPerKind(t *testing.T) {
	bike := FromBike(Bike{PricePerHour: 10000, AvailableBikes: 3})
	if bike.Summary() != "10000đ/giờ · 3 xe" {
		t.Fatalf("unexpected bike summary %q", bike.Summary())
	}
	if FromRestaurant(Restaurant{Cuisine: "chay"}).Summary() != "chay" {
		t.Fatalf("unexpected restaurant summary")
	}
}

func TestParseKey(t *testing.T) {
	key, err := ParseKey("restaurant-12")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if key != (Key{Kind: KindRestaurant, ID: 12}) {
		t.Fatalf("unexpected key %+v", key)
	}

	for _, bad := range []string{"", "12", "park-1", "station-", "station-x"} {
		if _, err := ParseKey(bad); err == nil {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}
