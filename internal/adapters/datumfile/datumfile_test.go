package datumfile

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jobrunner/georef/internal/domain"
)

func TestParse(t *testing.T) {
	input := `
overrides:
  - zone: 32
    datum: ETRS89
    ellipsoid: GRS80
    srid_base: 25800
    region: Germany
  - zone: 33
    datum: LOCAL
    ellipsoid:
      name: intl
      semi_major_axis: 6378388
      inverse_flattening: 297
`
	overrides, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(overrides) != 2 {
		t.Fatalf("len(overrides) = %d, want 2", len(overrides))
	}

	if overrides[0].Ellipsoid != domain.GRS80Ellipsoid {
		t.Errorf("overrides[0].Ellipsoid = %+v, want GRS80", overrides[0].Ellipsoid)
	}
	if overrides[0].SRIDBase != 25800 || overrides[0].Region != "Germany" {
		t.Errorf("overrides[0] = %+v", overrides[0])
	}
	if overrides[1].Ellipsoid.SemiMajorAxis != 6378388 || overrides[1].Ellipsoid.InvFlattening != 297 {
		t.Errorf("overrides[1].Ellipsoid = %+v", overrides[1].Ellipsoid)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unknown ellipsoid", "overrides:\n  - zone: 30\n    datum: X\n    ellipsoid: BESSEL\n"},
		{"zone out of range", "overrides:\n  - zone: 61\n    datum: X\n"},
		{"missing datum", "overrides:\n  - zone: 30\n"},
		{"unknown field", "overrides:\n  - zone: 30\n    datum: X\n    srid: 1\n"},
		{"not yaml", "overrides: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(tt.input)); err == nil {
				t.Error("Parse() expected error")
			}
		})
	}
}

func TestParseEmpty(t *testing.T) {
	overrides, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(overrides) != 0 {
		t.Errorf("len(overrides) = %d, want 0", len(overrides))
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	data, err := Marshal(domain.SpainOverrides())
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !bytes.Contains(data, []byte("ellipsoid: GRS80")) {
		t.Errorf("known ellipsoid not written by name:\n%s", data)
	}

	path := filepath.Join(t.TempDir(), "spain.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	overrides, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := domain.SpainOverrides()
	if len(overrides) != len(want) {
		t.Fatalf("len(overrides) = %d, want %d", len(overrides), len(want))
	}
	for i := range want {
		if overrides[i] != want[i] {
			t.Errorf("overrides[%d] = %+v, want %+v", i, overrides[i], want[i])
		}
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load() error = %v, want os.ErrNotExist", err)
	}
}

func TestBuiltin(t *testing.T) {
	spain, err := Builtin("spain")
	if err != nil {
		t.Fatalf("Builtin(spain) error = %v", err)
	}
	if len(spain) != 4 {
		t.Errorf("len(spain) = %d, want 4", len(spain))
	}

	none, err := Builtin("none")
	if err != nil || none != nil {
		t.Errorf("Builtin(none) = %v, %v", none, err)
	}

	if _, err := Builtin("atlantis"); !errors.Is(err, ErrUnknownTable) {
		t.Errorf("Builtin(atlantis) error = %v, want ErrUnknownTable", err)
	}
}
