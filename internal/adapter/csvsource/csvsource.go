// Package csvsource reads environmental submissions from CSV exports of
// field readings. The first row is a header; columns are matched by name so
// their order does not matter.
package csvsource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/landslide-risk-engine/internal/domain"
)

// Column names recognised in the header row.
const (
	ColLatitude         = "latitude"
	ColLongitude        = "longitude"
	ColName             = "name"
	ColSoilMoisture     = "soil_moisture"
	ColSlopeInclination = "slope_inclination"
	ColRainfall         = "rainfall"
	ColRiverLevel       = "river_level"
	ColTemperature      = "temperature"
	ColHumidity         = "humidity"
	ColWindSpeed        = "wind_speed"
	ColNotes            = "notes"
	ColTimestamp        = "timestamp"
)

var requiredColumns = []string{ColLatitude, ColLongitude}

// RowError reports a row whose coordinates could not be parsed. Line is the
// 1-based line number in the file, header included.
type RowError struct {
	Line   int
	Column string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: column %s: %v", e.Line, e.Column, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// Read parses every data row into an EnvironmentalInput. Measurements are
// carried through as strings and validated later by the engine; only the
// coordinates are parsed here.
func Read(r io.Reader) ([]domain.EnvironmentalInput, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("csv has no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	colIdx := make(map[string]int, len(header))
	for i, h := range header {
		colIdx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := colIdx[col]; !ok {
			return nil, fmt.Errorf("csv header missing column %q", col)
		}
	}

	var inputs []domain.EnvironmentalInput //nolint:prealloc // size depends on file contents
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		in, err := parseRow(row, colIdx, line)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

// ReadFile opens path and calls Read.
func ReadFile(path string) ([]domain.EnvironmentalInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()
	return Read(f)
}

func parseRow(row []string, colIdx map[string]int, line int) (domain.EnvironmentalInput, error) {
	lat, err := strconv.ParseFloat(get(row, colIdx, ColLatitude), 64)
	if err != nil {
		return domain.EnvironmentalInput{}, &RowError{Line: line, Column: ColLatitude, Err: err}
	}
	lon, err := strconv.ParseFloat(get(row, colIdx, ColLongitude), 64)
	if err != nil {
		return domain.EnvironmentalInput{}, &RowError{Line: line, Column: ColLongitude, Err: err}
	}

	return domain.EnvironmentalInput{
		SoilMoisture:     get(row, colIdx, ColSoilMoisture),
		SlopeInclination: get(row, colIdx, ColSlopeInclination),
		Rainfall:         get(row, colIdx, ColRainfall),
		RiverLevel:       get(row, colIdx, ColRiverLevel),
		Temperature:      get(row, colIdx, ColTemperature),
		Humidity:         get(row, colIdx, ColHumidity),
		WindSpeed:        get(row, colIdx, ColWindSpeed),
		Notes:            get(row, colIdx, ColNotes),
		Timestamp:        get(row, colIdx, ColTimestamp),
		Location: domain.Location{
			Latitude:  lat,
			Longitude: lon,
			Name:      get(row, colIdx, ColName),
		},
	}, nil
}

func get(row []string, colIdx map[string]int, col string) string {
	i, ok := colIdx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
