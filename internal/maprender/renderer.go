package maprender

import "aparajita/internal/geo"

// Renderer is the capability the core hands to a platform map adapter. The
// core never holds a map library handle; it only issues these calls from
// the stream pipeline.
type Renderer interface {
	SetCenter(p geo.Point)
	UpsertMarker(id string, p geo.Point, label string)
	RemoveMarker(id string)
}

// Noop is the default renderer for headless deployments.
type Noop struct{}

func (Noop) SetCenter(geo.Point)                    {}
func (Noop) UpsertMarker(string, geo.Point, string) {}
func (Noop) RemoveMarker(string)                    {}
