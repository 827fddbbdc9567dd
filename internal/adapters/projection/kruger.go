// Package projection provides the Transverse Mercator backends of the geodetic projector.
package projection

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/golang/geo/s1"

	"github.com/jobrunner/georef/internal/domain"
)

// UTM grid constants.
const (
	utmScale        = 0.9996
	utmFalseEasting = 500_000.0
)

// Krüger series are evaluated to sixth order in the third flattening n, which keeps
// the projection well below a millimetre inside a UTM zone.
const krugerOrder = 6

// krugerSeries holds the per-ellipsoid coefficients of the forward (alpha) and
// inverse (beta) series.
type krugerSeries struct {
	e     float64 // first eccentricity
	k0A   float64 // scale factor times rectifying radius
	alpha [krugerOrder]float64
	beta  [krugerOrder]float64
}

func newKrugerSeries(e domain.Ellipsoid) krugerSeries {
	f := 1 / e.InvFlattening
	n := f / (2 - f)
	n2 := n * n
	n3 := n2 * n
	n4 := n3 * n
	n5 := n4 * n
	n6 := n5 * n

	rectifying := e.SemiMajorAxis / (1 + n) * (1 + n2/4 + n4/64 + n6/256)

	return krugerSeries{
		e:   math.Sqrt(f * (2 - f)),
		k0A: utmScale * rectifying,
		alpha: [krugerOrder]float64{
			n/2 - 2*n2/3 + 5*n3/16 + 41*n4/180 - 127*n5/288 + 7891*n6/37800,
			13*n2/48 - 3*n3/5 + 557*n4/1440 + 281*n5/630 - 1983433*n6/1935360,
			61*n3/240 - 103*n4/140 + 15061*n5/26880 + 167603*n6/181440,
			49561*n4/161280 - 179*n5/168 + 6601661*n6/7257600,
			34729*n5/80640 - 3418889*n6/1995840,
			212378941 * n6 / 319334400,
		},
		beta: [krugerOrder]float64{
			n/2 - 2*n2/3 + 37*n3/96 - n4/360 - 81*n5/512 + 96199*n6/604800,
			n2/48 + n3/15 - 437*n4/1440 + 46*n5/105 - 1118711*n6/3870720,
			17*n3/480 - 37*n4/840 - 209*n5/4480 + 5569*n6/90720,
			4397*n4/161280 - 11*n5/504 - 830251*n6/7257600,
			4583*n5/161280 - 108847*n6/3991680,
			20648693 * n6 / 638668800,
		},
	}
}

// forward maps latitude and longitude offset from the central meridian (radians)
// to grid coordinates before false easting and northing.
func (s krugerSeries) forward(phi, lambda float64) (x, y float64) {
	sinPhi := math.Sin(phi)
	t := math.Sinh(math.Atanh(sinPhi) - s.e*math.Atanh(s.e*sinPhi))

	xi := math.Atan2(t, math.Cos(lambda))
	eta := math.Atanh(math.Sin(lambda) / math.Sqrt(1+t*t))
	if math.IsInf(t, 0) {
		// at the poles the conformal sphere collapses onto the central meridian
		eta = 0
	}

	x, y = eta, xi
	for j := 1; j <= krugerOrder; j++ {
		k := 2 * float64(j)
		a := s.alpha[j-1]
		x += a * math.Cos(k*xi) * math.Sinh(k*eta)
		y += a * math.Sin(k*xi) * math.Cosh(k*eta)
	}
	return s.k0A * x, s.k0A * y
}

// inverse maps grid coordinates without false offsets back to latitude and
// longitude offset from the central meridian (radians).
func (s krugerSeries) inverse(x, y float64) (phi, lambda float64) {
	eta := x / s.k0A
	xi := y / s.k0A

	xiP, etaP := xi, eta
	for j := 1; j <= krugerOrder; j++ {
		k := 2 * float64(j)
		b := s.beta[j-1]
		xiP -= b * math.Sin(k*xi) * math.Cosh(k*eta)
		etaP -= b * math.Cos(k*xi) * math.Sinh(k*eta)
	}

	sinhEta := math.Sinh(etaP)
	cosXi := math.Cos(xiP)
	tauP := math.Sin(xiP) / math.Hypot(sinhEta, cosXi)
	lambda = math.Atan2(sinhEta, cosXi)

	return math.Atan(s.conformalToGeodetic(tauP)), lambda
}

// conformalToGeodetic solves tan(phi) from the tangent of the conformal latitude
// with Newton's method.
func (s krugerSeries) conformalToGeodetic(tauP float64) float64 {
	e2 := s.e * s.e
	tau := tauP
	for i := 0; i < 10; i++ {
		sigma := math.Sinh(s.e * math.Atanh(s.e*tau/math.Sqrt(1+tau*tau)))
		tauI := tau*math.Sqrt(1+sigma*sigma) - sigma*math.Sqrt(1+tau*tau)
		delta := (tauP - tauI) / math.Sqrt(1+tauI*tauI) *
			(1 + (1-e2)*tau*tau) / ((1 - e2) * math.Sqrt(1+tau*tau))
		tau += delta
		if math.Abs(delta) <= 1e-14*math.Max(1, math.Abs(tau)) {
			break
		}
	}
	return tau
}

// Kruger projects with Krüger's series on the ellipsoid of the zone definition.
// Coefficients are computed once per ellipsoid and cached.
type Kruger struct {
	mu    sync.Mutex
	cache map[domain.Ellipsoid]krugerSeries
}

// NewKruger creates the kruger backend.
func NewKruger() *Kruger {
	return &Kruger{
		cache: make(map[domain.Ellipsoid]krugerSeries),
	}
}

// Name implements output.Projector.
func (p *Kruger) Name() string {
	return BackendKruger
}

// Forward implements output.Projector.
func (p *Kruger) Forward(ctx context.Context, geo domain.GeoCoordinate, def domain.ZoneDefinition) (float64, float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	s, err := p.series(def)
	if err != nil {
		return 0, 0, err
	}

	lambda := remainderDegrees(geo.Longitude - def.CentralMeridian())
	x, y := s.forward(radians(geo.Latitude), radians(lambda))

	easting := utmFalseEasting + x
	northing := def.FalseNorthing() + y
	if !finite(easting) || !finite(northing) {
		return 0, 0, fmt.Errorf("zone %s: projection diverged", def.UTMZone())
	}
	return easting, northing, nil
}

// Inverse implements output.Projector.
func (p *Kruger) Inverse(ctx context.Context, easting, northing float64, def domain.ZoneDefinition) (float64, float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	s, err := p.series(def)
	if err != nil {
		return 0, 0, err
	}

	phi, lambda := s.inverse(easting-utmFalseEasting, northing-def.FalseNorthing())
	lat := s1.Angle(phi).Degrees()
	lng := normalizeLongitude(def.CentralMeridian() + s1.Angle(lambda).Degrees())
	if !finite(lat) || !finite(lng) {
		return 0, 0, fmt.Errorf("zone %s: inverse projection diverged", def.UTMZone())
	}
	return lat, lng, nil
}

func (p *Kruger) series(def domain.ZoneDefinition) (krugerSeries, error) {
	e := def.Ellipsoid
	if e.SemiMajorAxis <= 0 || e.InvFlattening <= 1 || !finite(e.SemiMajorAxis) || !finite(e.InvFlattening) {
		return krugerSeries{}, fmt.Errorf("zone %s: ellipsoid %q: %w", def.UTMZone(), e.Name, domain.ErrUnsupported)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.cache[e]
	if !ok {
		s = newKrugerSeries(e)
		p.cache[e] = s
	}
	return s, nil
}

func radians(deg float64) float64 {
	return (s1.Angle(deg) * s1.Degree).Radians()
}

// remainderDegrees wraps an angle into [-180, 180].
func remainderDegrees(deg float64) float64 {
	return math.Remainder(deg, 360)
}

// longitudeSlack absorbs rounding at the antimeridian: zone 60 ends at +180 and
// zone 1 starts at -180, and neither should come back with the other sign. A
// centimetre of easting is about 1e-7 degrees there.
const longitudeSlack = 5e-7

func normalizeLongitude(lng float64) float64 {
	switch {
	case lng > 180+longitudeSlack:
		return lng - 360
	case lng > 180:
		return 180
	case lng < -180-longitudeSlack:
		return lng + 360
	case lng < -180:
		return -180
	}
	return lng
}
