package csvfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jobrunner/georef/internal/domain"
)

// Header is the export column layout; Decoder reads it back.
var Header = []string{
	"nombre_imagen", "tipo",
	"x_local", "y_local", "z_local",
	"utm_easting", "utm_northing", "utm_zone", "datum",
	"latitud", "longitud",
	"descripcion", "origen_coordenadas", "incidencias",
}

// Encoder writes placements as CSV.
type Encoder struct {
	Separator rune
}

// NewEncoder creates an encoder. A zero separator writes ','.
func NewEncoder(separator rune) *Encoder {
	if separator == 0 {
		separator = ','
	}
	return &Encoder{Separator: separator}
}

// Extension implements output.PlacementEncoder.
func (e *Encoder) Extension() string {
	return ".csv"
}

// Encode implements output.PlacementEncoder. Systems that could not be derived are
// left empty and the reason is written to the last column.
func (e *Encoder) Encode(w io.Writer, placements []domain.Placement) error {
	cw := csv.NewWriter(w)
	cw.Comma = e.Separator

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("csv header: %w", err)
	}
	for _, p := range placements {
		if err := cw.Write(e.row(p)); err != nil {
			return fmt.Errorf("csv record %q: %w", p.Name, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func (e *Encoder) row(p domain.Placement) []string {
	row := make([]string, len(Header))
	row[0] = p.Name
	row[1] = p.Type
	if p.Local != nil {
		row[2] = e.number(p.Local.X, 3)
		row[3] = e.number(p.Local.Y, 3)
		row[4] = e.number(p.Local.Z, 3)
	}
	if p.UTM != nil {
		row[5] = e.number(p.UTM.Easting, 2)
		row[6] = e.number(p.UTM.Northing, 2)
		row[7] = strconv.Itoa(p.UTM.Zone) + string(p.UTM.Hemisphere)
		row[8] = p.UTM.Datum
	}
	if p.Geo != nil {
		row[9] = e.number(p.Geo.Latitude, 6)
		row[10] = e.number(p.Geo.Longitude, 6)
	}
	row[11] = p.Description
	row[12] = string(p.Source)
	if p.HasIssues() {
		row[13] = p.Err().Error()
	}
	return row
}

// number writes a decimal comma when ';' separates the columns.
func (e *Encoder) number(v float64, decimals int) string {
	s := strconv.FormatFloat(v, 'f', decimals, 64)
	if e.Separator == ';' {
		return strings.Replace(s, ".", ",", 1)
	}
	return s
}
