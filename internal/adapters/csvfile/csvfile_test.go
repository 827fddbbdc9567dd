package csvfile

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/jobrunner/georef/internal/domain"
	"github.com/jobrunner/georef/internal/ports/output"
)

var (
	_ output.RecordDecoder    = (*Decoder)(nil)
	_ output.PlacementEncoder = (*Encoder)(nil)
)

func TestDecodeGeographic(t *testing.T) {
	input := "nombre,latitud,longitud,descripcion\nEcija,37.5425,-5.0825,plaza\n"

	records, err := NewDecoder(0).Decode(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	r := records[0]
	if r.Name != "Ecija" || r.Description != "plaza" {
		t.Errorf("record = %+v", r)
	}
	if r.GeoLatitude == nil || *r.GeoLatitude != 37.5425 {
		t.Errorf("GeoLatitude = %v, want 37.5425", r.GeoLatitude)
	}
	if r.GeoLongitude == nil || *r.GeoLongitude != -5.0825 {
		t.Errorf("GeoLongitude = %v, want -5.0825", r.GeoLongitude)
	}
}

func TestDecodeSemicolonDecimalComma(t *testing.T) {
	input := "punto;este;norte;huso\nP1;316700,25;4156890,1;30N\nP2;500000;0;30\n"

	records, err := NewDecoder(0).Decode(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}

	r := records[0]
	if r.UTMEasting == nil || *r.UTMEasting != 316700.25 {
		t.Errorf("UTMEasting = %v, want 316700.25", r.UTMEasting)
	}
	if r.UTMNorthing == nil || *r.UTMNorthing != 4156890.1 {
		t.Errorf("UTMNorthing = %v, want 4156890.1", r.UTMNorthing)
	}
	if r.UTMZone == nil || *r.UTMZone != 30 || r.UTMHemisphere != domain.North {
		t.Errorf("zone = %v %q, want 30 N", r.UTMZone, r.UTMHemisphere)
	}
	if records[1].UTMHemisphere != "" {
		t.Errorf("records[1].UTMHemisphere = %q, want empty", records[1].UTMHemisphere)
	}
}

func TestDecodeLocalAndLegacy(t *testing.T) {
	input := "name,x,y,z,legacy_latitude,legacy_longitude,description\n" +
		"a,1.5,2.5,3,,,\n" +
		"b,,,,120.5,-40,z:7.25\n"

	records, err := NewDecoder(',').Decode(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	src, err := domain.DetectSource(records[0])
	if err != nil {
		t.Fatalf("DetectSource(a) error = %v", err)
	}
	if src.Kind() != domain.SourceLocal {
		t.Errorf("a source = %s, want project", src.Kind())
	}

	src, err = domain.DetectSource(records[1])
	if err != nil {
		t.Fatalf("DetectSource(b) error = %v", err)
	}
	legacy, ok := src.(domain.LegacySource)
	if !ok {
		t.Fatalf("b source = %T, want LegacySource", src)
	}
	if legacy.X != 120.5 || legacy.Y != -40 || legacy.Z != 7.25 {
		t.Errorf("legacy = %+v", legacy)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"no coordinate columns", "name,foo\na,b\n", ErrNoHeader},
		{"bad number", "name,lat,lon\na,north,3\n", domain.ErrInvalidInput},
		{"bad zone", "easting,northing,zone\n1,2,61\n", domain.ErrInvalidInput},
		{"bad hemisphere", "easting,northing,zone,hemisphere\n1,2,30,X\n", domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDecoder(0).Decode(strings.NewReader(tt.input))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Decode() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecodeEmpty(t *testing.T) {
	records, err := NewDecoder(0).Decode(strings.NewReader(""))
	if err != nil || records != nil {
		t.Errorf("Decode(empty) = %v, %v", records, err)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	placements := []domain.Placement{
		{
			Name:   "IMG_0001.jpg",
			Type:   "photo",
			Source: domain.SourceGeo,
			Geo:    &domain.GeoCoordinate{Latitude: 37.5425, Longitude: -5.0825},
			UTM:    &domain.UTMCoordinate{Easting: 316700.25, Northing: 4156890.1, Zone: 30, Hemisphere: domain.North, Datum: domain.DatumETRS89},
			Local:  &domain.LocalCoordinate{X: 1.25, Y: -2.5, Z: 0},
		},
		{
			Name:   "broken",
			Source: domain.SourceGeo,
			Geo:    &domain.GeoCoordinate{Latitude: 1, Longitude: 2},
			Issues: []error{&domain.MissingOriginError{Operation: "geo_to_local_approx"}},
		},
	}

	for _, sep := range []rune{',', ';'} {
		t.Run(string(sep), func(t *testing.T) {
			var buf bytes.Buffer
			if err := NewEncoder(sep).Encode(&buf, placements); err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			if !strings.Contains(buf.String(), "origin") {
				t.Errorf("issue not written:\n%s", buf.String())
			}

			records, err := NewDecoder(0).Decode(&buf)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if len(records) != 2 {
				t.Fatalf("len(records) = %d, want 2", len(records))
			}

			r := records[0]
			if r.Name != "IMG_0001.jpg" || r.Type != "photo" {
				t.Errorf("record = %+v", r)
			}
			if r.ProjectX == nil || *r.ProjectX != 1.25 || *r.ProjectY != -2.5 {
				t.Errorf("project = %v, %v", r.ProjectX, r.ProjectY)
			}
			if r.UTMEasting == nil || *r.UTMEasting != 316700.25 || r.UTMDatum != domain.DatumETRS89 {
				t.Errorf("utm = %v %q", r.UTMEasting, r.UTMDatum)
			}
			if r.GeoLatitude == nil || *r.GeoLatitude != 37.5425 {
				t.Errorf("geo latitude = %v", r.GeoLatitude)
			}

			if records[1].ProjectX != nil {
				t.Errorf("records[1].ProjectX = %v, want nil", *records[1].ProjectX)
			}
		})
	}
}

func TestEncodeHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := NewEncoder(0).Encode(&buf, nil); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	want := strings.Join(Header, ",") + "\n"
	if buf.String() != want {
		t.Errorf("Encode(nil) = %q, want %q", buf.String(), want)
	}
}
