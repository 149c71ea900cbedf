package geo

import (
	"math"
	"testing"
)

func TestHaversineKm(t *testing.T) {
	// Jakarta (-6.2, 106.816) to Bandung (-6.9175, 107.6191) ~ 115-120 km
	d := HaversineKm(-6.2, 106.816, -6.9175, 107.6191)
	if d < 100 || d > 140 {
		t.Fatalf("unexpected distance: %v", d)
	}
}

func TestHaversineHanoiToHoChiMinh(t *testing.T) {
	d := HaversineKm(21.0227, 105.8521, 10.7626, 106.6602)
	if d < 1137 || d > 1150 {
		t.Fatalf("unexpected distance: %v", d)
	}
}

func TestDistanceIdentityAndSymmetry(t *testing.T) {
	points := []Point{
		{Latitude: 21.0227, Longitude: 105.8521},
		{Latitude: 10.7626, Longitude: 106.6602},
		{Latitude: -33.8688, Longitude: 151.2093},
		{Latitude: 0, Longitude: 179.9},
		{Latitude: 0, Longitude: -179.9},
	}
	for _, a := range points {
		if d := Distance(a, a); math.Abs(d) > 1e-9 {
			t.Fatalf("expected zero distance for %v, got %v", a, d)
		}
		for _, b := range points {
			if Distance(a, b) != Distance(b, a) {
				t.Fatalf("asymmetric distance between %v and %v", a, b)
			}
		}
	}
}

func TestDistanceTriangleInequality(t *testing.T) {
	a := Point{Latitude: 21.0227, Longitude: 105.8521}
	b := Point{Latitude: 16.0544, Longitude: 108.2022}
	c := Point{Latitude: 10.7626, Longitude: 106.6602}
	if Distance(a, c) > Distance(a, b)+Distance(b, c)+1e-9 {
		t.Fatalf("triangle inequality violated")
	}
}

func TestDistanceAcrossAntimeridian(t *testing.T) {
	d := Distance(Point{Latitude: 0, Longitude: 179.9}, Point{Latitude: 0, Longitude: -179.9})
	if d > 25 {
		t.Fatalf("expected short hop across antimeridian, got %v", d)
	}
}

func TestPointOrb(t *testing.T) {
	p := Point{Latitude: 21, Longitude: 105}
	o := p.Orb()
	if o.Lat() != 21 || o.Lon() != 105 {
		t.Fatalf("unexpected orb point %v", o)
	}
}
