// Package datumfile loads regional datum override tables from YAML.
//
// A table looks like this:
//
//	overrides:
//	  - zone: 32
//	    datum: ETRS89
//	    ellipsoid: GRS80
//	    srid_base: 25800
//	    region: Germany, Denmark
//	  - zone: 33
//	    datum: MYGRID
//	    ellipsoid:
//	      name: intl
//	      semi_major_axis: 6378388
//	      inverse_flattening: 297
//
// The ellipsoid is either the name of a known ellipsoid or its full parameters.
package datumfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jobrunner/georef/internal/domain"
)

// ErrUnknownTable is returned for built-in table names that do not exist.
var ErrUnknownTable = errors.New("unknown built-in datum table")

var knownEllipsoids = map[string]domain.Ellipsoid{
	"WGS84": domain.WGS84Ellipsoid,
	"GRS80": domain.GRS80Ellipsoid,
}

type file struct {
	Overrides []entry `yaml:"overrides"`
}

type entry struct {
	Zone      int           `yaml:"zone"`
	Datum     string        `yaml:"datum"`
	Ellipsoid ellipsoidSpec `yaml:"ellipsoid"`
	SRIDBase  int           `yaml:"srid_base"`
	Region    string        `yaml:"region"`
}

// ellipsoidSpec accepts either a scalar name or a mapping.
type ellipsoidSpec struct {
	domain.Ellipsoid
}

func (e *ellipsoidSpec) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		known, ok := knownEllipsoids[strings.ToUpper(value.Value)]
		if !ok {
			return fmt.Errorf("line %d: unknown ellipsoid %q", value.Line, value.Value)
		}
		e.Ellipsoid = known
		return nil
	}
	return value.Decode(&e.Ellipsoid)
}

func (e ellipsoidSpec) MarshalYAML() (interface{}, error) {
	if known, ok := knownEllipsoids[e.Name]; ok && known == e.Ellipsoid {
		return e.Name, nil
	}
	return e.Ellipsoid, nil
}

// Builtin returns a built-in table by name.
func Builtin(name string) ([]domain.DatumOverride, error) {
	switch strings.ToLower(name) {
	case "spain", "es":
		return domain.SpainOverrides(), nil
	case "none", "":
		return nil, nil
	}
	return nil, fmt.Errorf("%q: %w", name, ErrUnknownTable)
}

// Load reads an override table from path.
func Load(path string) ([]domain.DatumOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading datum file: %w", err)
	}
	overrides, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return overrides, nil
}

// Parse decodes and validates an override table.
func Parse(r io.Reader) ([]domain.DatumOverride, error) {
	var f file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("parsing datum file: %w", err)
	}

	overrides := make([]domain.DatumOverride, 0, len(f.Overrides))
	for i, e := range f.Overrides {
		o := domain.DatumOverride{
			Zone:      e.Zone,
			Datum:     e.Datum,
			Ellipsoid: e.Ellipsoid.Ellipsoid,
			SRIDBase:  e.SRIDBase,
			Region:    e.Region,
		}
		if o.Ellipsoid.Name == "" && o.Ellipsoid.SemiMajorAxis == 0 {
			o.Ellipsoid = domain.WGS84Ellipsoid
		}
		if err := o.Validate(); err != nil {
			return nil, fmt.Errorf("override %d: %w", i+1, err)
		}
		overrides = append(overrides, o)
	}
	return overrides, nil
}

// Marshal encodes overrides in the format Parse reads.
func Marshal(overrides []domain.DatumOverride) ([]byte, error) {
	f := file{Overrides: make([]entry, 0, len(overrides))}
	for _, o := range overrides {
		f.Overrides = append(f.Overrides, entry{
			Zone:      o.Zone,
			Datum:     o.Datum,
			Ellipsoid: ellipsoidSpec{o.Ellipsoid},
			SRIDBase:  o.SRIDBase,
			Region:    o.Region,
		})
	}
	return yaml.Marshal(f)
}
