// Package csvfile reads and writes coordinate files as CSV.
package csvfile

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jobrunner/georef/internal/domain"
)

// ErrNoHeader is returned for files without a recognizable header row.
var ErrNoHeader = errors.New("csv: no coordinate columns in header")

type column int

const (
	colIgnore column = iota
	colName
	colType
	colDescription
	colProjectX
	colProjectY
	colProjectZ
	colLegacyLatitude
	colLegacyLongitude
	colLatitude
	colLongitude
	colEasting
	colNorthing
	colZone
	colHemisphere
	colDatum
)

// headerAliases maps normalized header names, English and Spanish, to columns.
var headerAliases = map[string]column{
	"name": colName, "nombre": colName, "nombre_imagen": colName, "image": colName, "punto": colName, "id": colName,
	"type": colType, "tipo": colType,
	"description": colDescription, "descripcion": colDescription, "descripción": colDescription,

	"x": colProjectX, "x_local": colProjectX, "project_x": colProjectX,
	"y": colProjectY, "y_local": colProjectY, "project_y": colProjectY,
	"z": colProjectZ, "z_local": colProjectZ, "project_z": colProjectZ, "altura": colProjectZ, "height": colProjectZ,

	"legacy_latitude": colLegacyLatitude, "legacy_longitude": colLegacyLongitude,

	"lat": colLatitude, "latitude": colLatitude, "latitud": colLatitude, "geo_latitude": colLatitude,
	"lon": colLongitude, "lng": colLongitude, "longitude": colLongitude, "longitud": colLongitude, "geo_longitude": colLongitude,

	"easting": colEasting, "utm_easting": colEasting, "este": colEasting, "x_utm": colEasting, "utm_x": colEasting,
	"northing": colNorthing, "utm_northing": colNorthing, "norte": colNorthing, "y_utm": colNorthing, "utm_y": colNorthing,
	"zone": colZone, "utm_zone": colZone, "zona": colZone, "huso": colZone,
	"hemisphere": colHemisphere, "hemisferio": colHemisphere,
	"datum": colDatum,
}

// Decoder reads coordinate records from CSV. The separator is detected from the
// header row unless set; with ';' as separator a decimal comma is accepted.
type Decoder struct {
	Separator rune
}

// NewDecoder creates a decoder. A zero separator enables detection.
func NewDecoder(separator rune) *Decoder {
	return &Decoder{Separator: separator}
}

// Decode implements output.RecordDecoder.
func (d *Decoder) Decode(r io.Reader) ([]domain.RawRecord, error) {
	br := bufio.NewReader(r)
	sep := d.Separator
	if sep == 0 {
		head, err := br.Peek(4096)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
			return nil, fmt.Errorf("csv: %w", err)
		}
		sep = detectSeparator(head)
	}

	cr := csv.NewReader(br)
	cr.Comma = sep
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("csv header: %w", err)
	}
	columns, err := mapHeader(header)
	if err != nil {
		return nil, err
	}

	var records []domain.RawRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: %w", err)
		}
		if blank(row) {
			continue
		}
		line, _ := cr.FieldPos(0)
		rec, err := parseRow(columns, row, sep == ';')
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func detectSeparator(head []byte) rune {
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		head = head[:i]
	}
	best, bestCount := ',', bytes.Count(head, []byte{','})
	for _, c := range []rune{';', '\t'} {
		if n := bytes.Count(head, []byte(string(c))); n > bestCount {
			best, bestCount = c, n
		}
	}
	return best
}

func mapHeader(header []string) ([]column, error) {
	columns := make([]column, len(header))
	coords := false
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		key = strings.ReplaceAll(key, " ", "_")
		c := headerAliases[key]
		columns[i] = c
		if c >= colProjectX && c <= colNorthing {
			coords = true
		}
	}
	if !coords {
		return nil, fmt.Errorf("%w: %s", ErrNoHeader, strings.Join(header, ","))
	}
	return columns, nil
}

func parseRow(columns []column, row []string, decimalComma bool) (domain.RawRecord, error) {
	var rec domain.RawRecord
	for i, raw := range row {
		if i >= len(columns) {
			break
		}
		v := strings.TrimSpace(raw)
		if v == "" {
			continue
		}

		switch columns[i] {
		case colName:
			rec.Name = v
		case colType:
			rec.Type = v
		case colDescription:
			rec.Description = v
		case colZone:
			zone, h, err := parseZone(v)
			if err != nil {
				return rec, err
			}
			rec.UTMZone = &zone
			if h != "" && rec.UTMHemisphere == "" {
				rec.UTMHemisphere = h
			}
		case colHemisphere:
			h, err := parseHemisphere(v)
			if err != nil {
				return rec, err
			}
			rec.UTMHemisphere = h
		case colDatum:
			rec.UTMDatum = strings.ToUpper(v)
		case colIgnore:
		default:
			f, err := parseNumber(v, decimalComma)
			if err != nil {
				return rec, fmt.Errorf("column %d: %w", i+1, err)
			}
			*numberField(&rec, columns[i]) = &f
		}
	}
	return rec, nil
}

func numberField(rec *domain.RawRecord, c column) **float64 {
	switch c {
	case colProjectX:
		return &rec.ProjectX
	case colProjectY:
		return &rec.ProjectY
	case colProjectZ:
		return &rec.ProjectZ
	case colLegacyLatitude:
		return &rec.Latitude
	case colLegacyLongitude:
		return &rec.Longitude
	case colLatitude:
		return &rec.GeoLatitude
	case colLongitude:
		return &rec.GeoLongitude
	case colEasting:
		return &rec.UTMEasting
	case colNorthing:
		return &rec.UTMNorthing
	}
	panic(fmt.Sprintf("csvfile: column %d is not numeric", c))
}

func parseNumber(v string, decimalComma bool) (float64, error) {
	if decimalComma {
		v = strings.ReplaceAll(v, ",", ".")
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, &domain.ValidationError{Field: "number", Value: v, Constraint: "decimal", Message: "not a number"}
	}
	return f, nil
}

// parseZone accepts "30", "30N" and "30 S".
func parseZone(v string) (int, domain.Hemisphere, error) {
	v = strings.ToUpper(strings.ReplaceAll(v, " ", ""))
	var h domain.Hemisphere
	if n := len(v); n > 0 && (v[n-1] == 'N' || v[n-1] == 'S') {
		h = domain.Hemisphere(v[n-1:])
		v = v[:n-1]
	}
	zone, err := strconv.Atoi(v)
	if err != nil {
		return 0, "", &domain.ValidationError{Field: "zone", Value: v, Constraint: "1..60", Message: "zone must be a number"}
	}
	if err := domain.ValidateZone(zone); err != nil {
		return 0, "", err
	}
	return zone, h, nil
}

func parseHemisphere(v string) (domain.Hemisphere, error) {
	switch strings.ToUpper(v) {
	case "N", "NORTH", "NORTE":
		return domain.North, nil
	case "S", "SOUTH", "SUR":
		return domain.South, nil
	}
	return "", &domain.ValidationError{Field: "hemisphere", Value: v, Constraint: "N|S", Message: "hemisphere must be N or S"}
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
