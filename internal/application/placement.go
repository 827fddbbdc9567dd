package application

import (
	"context"
	"fmt"

	"github.com/jobrunner/georef/internal/domain"
	"github.com/jobrunner/georef/internal/ports/input"
)

// PlacementService resolves a coordinate source into every system it can derive.
type PlacementService struct {
	projector  *GeodeticProjector
	frame      *FrameTransformer
	convention Convention
}

var _ input.Placer = (*PlacementService)(nil)

// NewPlacementService creates a placement service. conv is the convention local
// coordinates are stored in; legacy sources are always read with ConventionApprox.
func NewPlacementService(projector *GeodeticProjector, frame *FrameTransformer, conv Convention) *PlacementService {
	if frame == nil {
		frame = NewFrameTransformer()
	}
	return &PlacementService{
		projector:  projector,
		frame:      frame,
		convention: conv,
	}
}

// Convention returns the convention local coordinates are stored in.
func (s *PlacementService) Convention() Convention {
	return s.convention
}

// PlaceRecord detects the source of a raw record and places it.
func (s *PlacementService) PlaceRecord(ctx context.Context, r domain.RawRecord, origin *domain.ProjectOrigin) domain.Placement {
	p := domain.Placement{Name: r.Name, Type: r.Type, Description: r.Description}

	src, err := domain.DetectSource(r)
	if err != nil {
		p.Issues = append(p.Issues, err)
		return p
	}

	placed := s.Place(ctx, src, origin)
	placed.Name, placed.Type, placed.Description = p.Name, p.Type, p.Description
	return placed
}

// Place derives geographic, UTM and local coordinates from src. A nil origin only
// blocks the conversions that need it; their MissingOriginError is kept in Issues.
func (s *PlacementService) Place(ctx context.Context, src domain.CoordinateSource, origin *domain.ProjectOrigin) domain.Placement {
	p := domain.Placement{Source: src.Kind()}

	switch v := src.(type) {
	case domain.GeoSource:
		geo := v.Geo
		p.Geo = &geo
		s.fillUTM(ctx, &p)
		s.fillLocal(&p, origin, 0)

	case domain.LocalSource:
		local := v.Local
		p.Local = &local
		s.fillGeoFromLocal(&p, s.convention, origin)
		s.fillUTM(ctx, &p)

	case domain.LegacySource:
		local := v.AsLocal()
		p.Local = &local
		s.fillGeoFromLocal(&p, ConventionApprox, origin)
		s.fillUTM(ctx, &p)

	case domain.UTMSource:
		utm := v.UTM
		p.UTM = &utm
		geo, err := s.projector.ToGeographic(ctx, utm)
		if err != nil {
			p.Issues = append(p.Issues, err)
			break
		}
		p.Geo = &geo
		s.fillLocal(&p, origin, 0)

	default:
		p.Issues = append(p.Issues, fmt.Errorf("source %T: %w", src, domain.ErrUnsupported))
	}

	return p
}

func (s *PlacementService) fillUTM(ctx context.Context, p *domain.Placement) {
	if p.Geo == nil {
		return
	}
	utm, err := s.projector.ToUTM(ctx, *p.Geo, 0)
	if err != nil {
		p.Issues = append(p.Issues, err)
		return
	}
	p.UTM = &utm
}

func (s *PlacementService) fillLocal(p *domain.Placement, origin *domain.ProjectOrigin, z float64) {
	local, err := s.frame.GeoToLocal(s.convention, *p.Geo, origin, z)
	if err != nil {
		p.Issues = append(p.Issues, err)
		return
	}
	p.Local = &local
}

func (s *PlacementService) fillGeoFromLocal(p *domain.Placement, conv Convention, origin *domain.ProjectOrigin) {
	geo, err := s.frame.LocalToGeo(conv, *p.Local, origin)
	if err != nil {
		p.Issues = append(p.Issues, err)
		return
	}
	p.Geo = &geo
}
