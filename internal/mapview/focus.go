package mapview

import (
	"sync"

	"backend-bandoxanh/internal/poi"
)

// MarkerStyle is how a marker is drawn.
type MarkerStyle struct {
	Scale  float64 `json:"scale"`
	ZIndex int     `json:"zIndex"`
}

var (
	normalMarker      = MarkerStyle{Scale: 1, ZIndex: 0}
	highlightedMarker = MarkerStyle{Scale: 1.4, ZIndex: 1000}
)

// Focus is the hover state shared by the sidebar list and the map. Hovering
// a card or a marker highlights both, matched by poi.Key.
type Focus struct {
	mu      sync.RWMutex
	hovered *poi.Key
}

func (f *Focus) Hover(key poi.Key) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hovered = &key
}

func (f *Focus) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hovered = nil
}

func (f *Focus) Hovered() (poi.Key, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.hovered == nil {
		return poi.Key{}, false
	}
	return *f.hovered, true
}

func (f *Focus) IsHighlighted(key poi.Key) bool {
	hovered, ok := f.Hovered()
	return ok && hovered == key
}

func (f *Focus) Style(key poi.Key) MarkerStyle {
	if f.IsHighlighted(key) {
		return highlightedMarker
	}
	return normalMarker
}

// Marker is what the map draws for one item.
type Marker struct {
	Key   poi.Key     `json:"key"`
	Icon  string      `json:"icon"`
	Style MarkerStyle `json:"style"`
}

// Markers returns one marker per item, in item order.
func (f *Focus) Markers(items []ItemWithDistance) []Marker {
	markers := make([]Marker, len(items))
	for i, item := range items {
		markers[i] = Marker{
			Key:   item.Key(),
			Icon:  item.Kind.MarkerIcon(),
			Style: f.Style(item.Key()),
		}
	}
	return markers
}
