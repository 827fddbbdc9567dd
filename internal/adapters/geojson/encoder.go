// Package geojson writes placements as a GeoJSON FeatureCollection.
package geojson

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/jobrunner/georef/internal/domain"
)

// Encoder writes one Point feature per placement with a geographic position.
// Placements that could not be placed on the map are skipped.
type Encoder struct {
	Indent bool
}

// NewEncoder creates a GeoJSON encoder.
func NewEncoder(indent bool) *Encoder {
	return &Encoder{Indent: indent}
}

// Extension implements output.PlacementEncoder.
func (e *Encoder) Extension() string {
	return ".geojson"
}

// Encode implements output.PlacementEncoder.
func (e *Encoder) Encode(w io.Writer, placements []domain.Placement) error {
	fc := FeatureCollection(placements)

	enc := json.NewEncoder(w)
	if e.Indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(fc); err != nil {
		return fmt.Errorf("encoding geojson: %w", err)
	}
	return nil
}

// FeatureCollection builds the collection with a bounding box over all features.
func FeatureCollection(placements []domain.Placement) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	points := make(orb.MultiPoint, 0, len(placements))

	for _, p := range placements {
		if !p.HasGeo() {
			continue
		}
		pt := orb.Point{p.Geo.Longitude, p.Geo.Latitude}
		points = append(points, pt)

		f := geojson.NewFeature(pt)
		f.Properties["name"] = p.Name
		f.Properties["source"] = string(p.Source)
		if p.Type != "" {
			f.Properties["type"] = p.Type
		}
		if p.Description != "" {
			f.Properties["description"] = p.Description
		}
		if p.UTM != nil {
			f.Properties["utm_easting"] = p.UTM.Easting
			f.Properties["utm_northing"] = p.UTM.Northing
			f.Properties["utm_zone"] = fmt.Sprintf("%d%s", p.UTM.Zone, p.UTM.Hemisphere)
			f.Properties["datum"] = p.UTM.Datum
		}
		if p.Local != nil {
			f.Properties["x_local"] = p.Local.X
			f.Properties["y_local"] = p.Local.Y
			f.Properties["z_local"] = p.Local.Z
		}
		if p.HasIssues() {
			f.Properties["issues"] = p.Err().Error()
		}
		fc.Append(f)
	}

	if len(points) > 0 {
		fc.BBox = geojson.NewBBox(points.Bound())
	}
	return fc
}

// Extent returns the geographic extent of all placed features.
func Extent(placements []domain.Placement) (domain.Extent, bool) {
	points := make(orb.MultiPoint, 0, len(placements))
	for _, p := range placements {
		if p.HasGeo() {
			points = append(points, orb.Point{p.Geo.Longitude, p.Geo.Latitude})
		}
	}
	if len(points) == 0 {
		return domain.Extent{}, false
	}
	b := points.Bound()
	return domain.Extent{MinX: b.Min.X(), MinY: b.Min.Y(), MaxX: b.Max.X(), MaxY: b.Max.Y()}, true
}
