package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jobrunner/georef/internal/adapters/csvfile"
	"github.com/jobrunner/georef/internal/application"
	"github.com/jobrunner/georef/internal/domain"
)

var zoneCmd = &cobra.Command{
	Use:   "zone --lat LAT --lon LON",
	Short: "Resolve the UTM zone and grid of a coordinate",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		geo, err := geoFlags(cmd)
		if err != nil {
			return err
		}
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Shutdown(context.Background())

		def, err := a.Resolver.Resolve(geo)
		if err != nil {
			return err
		}
		return printResult(cmd.OutOrStdout(), zoneView{
			Zone:       def.Zone,
			Hemisphere: def.Hemisphere,
			Datum:      def.Datum,
			SRID:       def.SRID,
			Proj:       def.Proj,
			Region:     def.Region,
		}, fmt.Sprintf("%s / UTM zone %s (EPSG:%d) %s", def.Datum, def.UTMZone(), def.SRID, def.Region))
	},
}

var toUTMCmd = &cobra.Command{
	Use:   "to-utm --lat LAT --lon LON",
	Short: "Project a WGS84 coordinate to UTM",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		geo, err := geoFlags(cmd)
		if err != nil {
			return err
		}
		zone, _ := cmd.Flags().GetInt("zone")
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Shutdown(context.Background())

		utm, err := a.Projector.ToUTM(cmd.Context(), geo, zone)
		if err != nil {
			return err
		}
		return printResult(cmd.OutOrStdout(), utm, application.FormatUTM(utm, -1))
	},
}

var toGeoCmd = &cobra.Command{
	Use:   "to-geo --easting E --northing N --zone ZONE",
	Short: "Convert a UTM coordinate to WGS84",
	Long: `Convert a UTM coordinate to WGS84. ZONE may carry the hemisphere,
as in 30N or 55S; without a letter --hemisphere is used.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		easting, _ := cmd.Flags().GetFloat64("easting")
		northing, _ := cmd.Flags().GetFloat64("northing")
		zoneArg, _ := cmd.Flags().GetString("zone")
		hemisphere, _ := cmd.Flags().GetString("hemisphere")
		zone, h, err := parseZoneArg(zoneArg, hemisphere)
		if err != nil {
			return err
		}
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Shutdown(context.Background())

		geo, err := a.Projector.ToGeographic(cmd.Context(), domain.UTMCoordinate{
			Easting:    easting,
			Northing:   northing,
			Zone:       zone,
			Hemisphere: h,
			Datum:      a.Resolver.DatumFor(zone),
		})
		if err != nil {
			return err
		}
		return printResult(cmd.OutOrStdout(), geo, application.FormatGeo(geo.Latitude, geo.Longitude, -1))
	},
}

var toLocalCmd = &cobra.Command{
	Use:   "to-local --lat LAT --lon LON",
	Short: "Convert a WGS84 coordinate to the project frame",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		geo, err := geoFlags(cmd)
		if err != nil {
			return err
		}
		z, _ := cmd.Flags().GetFloat64("z")
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Shutdown(context.Background())

		local, err := a.Frame.GeoToLocal(a.Convention, geo, a.Origin, z)
		if err != nil {
			return err
		}
		return printResult(cmd.OutOrStdout(), local, application.FormatLocal(local, -1))
	},
}

var fromLocalCmd = &cobra.Command{
	Use:   "from-local --x X --y Y",
	Short: "Convert a project frame coordinate to WGS84 and UTM",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		x, _ := cmd.Flags().GetFloat64("x")
		y, _ := cmd.Flags().GetFloat64("y")
		z, _ := cmd.Flags().GetFloat64("z")
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Shutdown(context.Background())

		p := a.Placements.Place(cmd.Context(), domain.LocalSource{Local: domain.LocalCoordinate{X: x, Y: y, Z: z}}, a.Origin)
		if p.Geo == nil {
			return p.Err()
		}
		view := newPlacementView(p)
		text := application.FormatGeo(p.Geo.Latitude, p.Geo.Longitude, -1)
		if p.UTM != nil {
			text += "\n" + application.FormatUTM(*p.UTM, -1)
		}
		return printResult(cmd.OutOrStdout(), view, text)
	},
}

var distanceCmd = &cobra.Command{
	Use:   "distance --from LAT,LON --to LAT,LON",
	Short: "Measure the distance between two WGS84 coordinates",
	Long: `Measure the great-circle distance between two coordinates. When both
fall in the same UTM grid the planar grid distance is reported as well.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")
		p1, err := parsePair(from)
		if err != nil {
			return err
		}
		p2, err := parsePair(to)
		if err != nil {
			return err
		}
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Shutdown(context.Background())

		geodesic, err := application.DistanceGeo(p1, p2)
		if err != nil {
			return err
		}
		view := distanceView{GeodesicMeters: geodesic}
		text := fmt.Sprintf("geodesic: %.3f m", geodesic)

		ua, errA := a.Projector.ToUTM(cmd.Context(), p1, 0)
		ub, errB := a.Projector.ToUTM(cmd.Context(), p2, 0)
		if err := errors.Join(errA, errB); err != nil {
			return err
		}
		grid, err := application.DistanceUTM(ua, ub)
		switch {
		case err == nil:
			view.GridMeters = &grid
			text += fmt.Sprintf("\ngrid:     %.3f m (%s %d%s)", grid, ua.Datum, ua.Zone, ua.Hemisphere)
		case errors.Is(err, domain.ErrDifferentGrids):
			a.Logger.Debug("no grid distance", "error", err)
		default:
			return err
		}
		return printResult(cmd.OutOrStdout(), view, text)
	},
}

var batchCmd = &cobra.Command{
	Use:   "batch FILE...",
	Short: "Convert coordinate files",
	Long: `Convert CSV coordinate files. Each record is placed in WGS84, UTM and,
with a configured origin, the project frame. With "-" as the only file the
records are read from stdin and CSV is written to stdout.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outDir, _ := cmd.Flags().GetString("out")
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Shutdown(context.Background())

		if len(args) == 1 && args[0] == "-" {
			placements, err := a.Files.Convert(cmd.Context(), cmd.InOrStdin())
			if err != nil {
				return err
			}
			sep, err := a.Config.Batch.SeparatorRune()
			if err != nil {
				return err
			}
			return csvfile.NewEncoder(sep).Encode(cmd.OutOrStdout(), placements)
		}

		results := make([]*application.FileResult, 0, len(args))
		var errs []error
		for _, path := range args {
			result, err := a.Files.ConvertFile(cmd.Context(), path, outDir)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			results = append(results, result)
		}

		var text strings.Builder
		for _, r := range results {
			fmt.Fprintf(&text, "%s: %d records, %d with issues -> %s\n",
				r.Input, r.Records, r.Failed, strings.Join(r.Outputs, ", "))
		}
		if err := printResult(cmd.OutOrStdout(), results, strings.TrimSuffix(text.String(), "\n")); err != nil {
			return err
		}
		return errors.Join(errs...)
	},
}

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "List zones with a regional datum",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Shutdown(context.Background())

		regions := a.Resolver.Regions()
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), regions)
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ZONE\tDATUM\tELLIPSOID\tSRID\tREGION")
		for _, r := range regions {
			srid := "-"
			if r.SRIDBase > 0 {
				srid = strconv.Itoa(r.SRIDBase + r.Zone)
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", r.Zone, r.Datum, r.Ellipsoid.Name, srid, r.Region)
		}
		return tw.Flush()
	},
}

func init() {
	for _, cmd := range []*cobra.Command{zoneCmd, toUTMCmd, toLocalCmd} {
		cmd.Flags().Float64("lat", 0, "latitude in decimal degrees")
		cmd.Flags().Float64("lon", 0, "longitude in decimal degrees")
		_ = cmd.MarkFlagRequired("lat")
		_ = cmd.MarkFlagRequired("lon")
	}
	toUTMCmd.Flags().Int("zone", 0, "force a UTM zone (1-60)")

	toGeoCmd.Flags().Float64("easting", 0, "UTM easting in meters")
	toGeoCmd.Flags().Float64("northing", 0, "UTM northing in meters")
	toGeoCmd.Flags().String("zone", "", "UTM zone, optionally with hemisphere (30N)")
	toGeoCmd.Flags().String("hemisphere", "N", "hemisphere when ZONE has no letter (N, S)")
	for _, name := range []string{"easting", "northing", "zone"} {
		_ = toGeoCmd.MarkFlagRequired(name)
	}

	toLocalCmd.Flags().Float64("z", 0, "elevation in the project frame")

	fromLocalCmd.Flags().Float64("x", 0, "project frame x")
	fromLocalCmd.Flags().Float64("y", 0, "project frame y")
	fromLocalCmd.Flags().Float64("z", 0, "elevation in the project frame")
	_ = fromLocalCmd.MarkFlagRequired("x")
	_ = fromLocalCmd.MarkFlagRequired("y")

	distanceCmd.Flags().String("from", "", "first coordinate as LAT,LON")
	distanceCmd.Flags().String("to", "", "second coordinate as LAT,LON")
	_ = distanceCmd.MarkFlagRequired("from")
	_ = distanceCmd.MarkFlagRequired("to")

	batchCmd.Flags().String("out", "./outbox", "output directory")
}

type zoneView struct {
	Zone       int               `json:"zone"`
	Hemisphere domain.Hemisphere `json:"hemisphere"`
	Datum      string            `json:"datum"`
	SRID       int               `json:"srid,omitempty"`
	Proj       string            `json:"proj"`
	Region     string            `json:"region,omitempty"`
}

type distanceView struct {
	GeodesicMeters float64  `json:"geodesic_meters"`
	GridMeters     *float64 `json:"grid_meters,omitempty"`
}

type placementView struct {
	Source domain.SourceKind       `json:"source"`
	Geo    *domain.GeoCoordinate   `json:"geo,omitempty"`
	UTM    *domain.UTMCoordinate   `json:"utm,omitempty"`
	Local  *domain.LocalCoordinate `json:"local,omitempty"`
	Issues []string                `json:"issues,omitempty"`
}

func newPlacementView(p domain.Placement) placementView {
	v := placementView{Source: p.Source, Geo: p.Geo, UTM: p.UTM, Local: p.Local}
	for _, issue := range p.Issues {
		v.Issues = append(v.Issues, issue.Error())
	}
	return v
}

// printResult writes v as JSON with --json and text otherwise.
func printResult(w io.Writer, v any, text string) error {
	if jsonOutput {
		return printJSON(w, v)
	}
	_, err := fmt.Fprintln(w, text)
	return err
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func geoFlags(cmd *cobra.Command) (domain.GeoCoordinate, error) {
	lat, _ := cmd.Flags().GetFloat64("lat")
	lon, _ := cmd.Flags().GetFloat64("lon")
	return domain.NewGeoCoordinate(lat, lon)
}

// parsePair parses "LAT,LON".
func parsePair(v string) (domain.GeoCoordinate, error) {
	lat, lon, ok := strings.Cut(v, ",")
	if !ok {
		return domain.GeoCoordinate{}, &domain.ValidationError{Field: "coordinate", Value: v, Constraint: "LAT,LON", Message: "expected LAT,LON"}
	}
	la, err := parseFloat("latitude", lat)
	if err != nil {
		return domain.GeoCoordinate{}, err
	}
	lo, err := parseFloat("longitude", lon)
	if err != nil {
		return domain.GeoCoordinate{}, err
	}
	return domain.NewGeoCoordinate(la, lo)
}

func parseFloat(name, v string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, &domain.ValidationError{Field: name, Value: v, Constraint: "number", Message: "not a number"}
	}
	return f, nil
}

// parseZoneArg accepts "30", "30N" and "55S".
func parseZoneArg(v, hemisphere string) (int, domain.Hemisphere, error) {
	v = strings.ToUpper(strings.TrimSpace(v))
	h := domain.Hemisphere(strings.ToUpper(hemisphere))
	if n := len(v); n > 0 && (v[n-1] == 'N' || v[n-1] == 'S') {
		h = domain.Hemisphere(v[n-1:])
		v = v[:n-1]
	}
	zone, err := strconv.Atoi(v)
	if err != nil {
		return 0, "", &domain.ValidationError{Field: "zone", Value: v, Constraint: "[1, 60]", Message: "not a zone number"}
	}
	z := domain.UTMZone{Number: zone, Hemisphere: h}
	if err := z.Validate(); err != nil {
		return 0, "", err
	}
	return zone, h, nil
}
