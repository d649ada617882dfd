// Package dataio reads and writes readings and trajectories as CSV and
// exports trajectories as Arrow IPC files.
package dataio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nvandessel/acsim/internal/models"
)

// Column headers. They match the files the tool has always produced.
const (
	ColTime         = "Time (min)"
	ColTemperature  = "Temperature (°C)"
	ColOccupancy    = "Occupancy"
	ColAirQuality   = "Air Quality (ppm)"
	ColOriginalTemp = "Original Temp (°C)"
	ColAdjustedTemp = "Adjusted Temp (°C)"
	ColSetting      = "Setting"
	ColEnergyUsage  = "Energy Usage"
)

// ReadingColumns is the header of a readings file.
var ReadingColumns = []string{ColTime, ColTemperature, ColOccupancy, ColAirQuality}

// TrajectoryColumns is the header of a simulation results file.
var TrajectoryColumns = []string{ColTime, ColOriginalTemp, ColAdjustedTemp, ColSetting, ColEnergyUsage}

var (
	// ErrMissingColumns is returned when a required column is absent from the header.
	ErrMissingColumns = errors.New("missing required columns")

	// ErrEmptyData is returned for a file with no header or no data rows.
	ErrEmptyData = errors.New("no data rows")
)

// CellError reports a value that could not be parsed.
type CellError struct {
	Row    int // 1-based data row, header excluded
	Column string
	Value  string
	Err    error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("row %d, column %q: invalid value %q: %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *CellError) Unwrap() error {
	return e.Err
}

// table is a parsed CSV with a header index.
type table struct {
	index map[string]int
	rows  [][]string
}

func readTable(r io.Reader, required []string) (*table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmptyData
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		index[name] = i
	}

	var missing []string
	for _, name := range required {
		if _, ok := index[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyData
	}
	return &table{index: index, rows: rows}, nil
}

func (t *table) str(row int, col string) string {
	return strings.TrimSpace(t.rows[row][t.index[col]])
}

func (t *table) float(row int, col string) (float64, error) {
	v := t.str(row, col)
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, &CellError{Row: row + 1, Column: col, Value: v, Err: err}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &CellError{Row: row + 1, Column: col, Value: v, Err: errors.New("not a finite number")}
	}
	return f, nil
}

// integer accepts "3" as well as "3.0".
func (t *table) integer(row int, col string) (int, error) {
	f, err := t.float(row, col)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, &CellError{Row: row + 1, Column: col, Value: t.str(row, col), Err: errors.New("not a whole number")}
	}
	return int(f), nil
}

// ReadReadings parses a readings CSV. Columns are matched by header name;
// extra columns are ignored.
func ReadReadings(r io.Reader) ([]models.Reading, error) {
	t, err := readTable(r, ReadingColumns)
	if err != nil {
		return nil, err
	}

	readings := make([]models.Reading, len(t.rows))
	for i := range t.rows {
		minute, err := t.integer(i, ColTime)
		if err != nil {
			return nil, err
		}
		temp, err := t.float(i, ColTemperature)
		if err != nil {
			return nil, err
		}
		occ, err := t.integer(i, ColOccupancy)
		if err != nil {
			return nil, err
		}
		if occ < 0 {
			return nil, &CellError{Row: i + 1, Column: ColOccupancy, Value: t.str(i, ColOccupancy), Err: errors.New("occupancy cannot be negative")}
		}
		aq, err := t.float(i, ColAirQuality)
		if err != nil {
			return nil, err
		}
		readings[i] = models.Reading{Time: minute, Temperature: temp, Occupancy: occ, AirQuality: aq}
	}
	return readings, nil
}

// WriteReadings writes readings with the standard header.
func WriteReadings(w io.Writer, readings []models.Reading) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ReadingColumns); err != nil {
		return err
	}
	for _, r := range readings {
		if err := cw.Write([]string{
			strconv.Itoa(r.Time),
			formatFloat(r.Temperature),
			strconv.Itoa(r.Occupancy),
			formatFloat(r.AirQuality),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadTrajectory parses a simulation results CSV.
func ReadTrajectory(r io.Reader) ([]models.TrajectoryRecord, error) {
	t, err := readTable(r, TrajectoryColumns)
	if err != nil {
		return nil, err
	}

	records := make([]models.TrajectoryRecord, len(t.rows))
	for i := range t.rows {
		minute, err := t.integer(i, ColTime)
		if err != nil {
			return nil, err
		}
		orig, err := t.float(i, ColOriginalTemp)
		if err != nil {
			return nil, err
		}
		adj, err := t.float(i, ColAdjustedTemp)
		if err != nil {
			return nil, err
		}
		setting, err := models.ParseSetting(t.str(i, ColSetting))
		if err != nil {
			return nil, &CellError{Row: i + 1, Column: ColSetting, Value: t.str(i, ColSetting), Err: err}
		}
		energy, err := t.float(i, ColEnergyUsage)
		if err != nil {
			return nil, err
		}
		records[i] = models.TrajectoryRecord{
			Time:         minute,
			OriginalTemp: orig,
			AdjustedTemp: adj,
			Setting:      setting,
			EnergyUsage:  energy,
		}
	}
	return records, nil
}

// WriteTrajectory writes records with the standard results header.
func WriteTrajectory(w io.Writer, records []models.TrajectoryRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(TrajectoryColumns); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write([]string{
			strconv.Itoa(r.Time),
			formatFloat(r.OriginalTemp),
			formatFloat(r.AdjustedTemp),
			string(r.Setting),
			formatFloat(r.EnergyUsage),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// LoadReadings reads a readings CSV from path.
func LoadReadings(path string) ([]models.Reading, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening readings: %w", err)
	}
	defer f.Close()

	readings, err := ReadReadings(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return readings, nil
}

// SaveReadings writes a readings CSV to path, creating parent directories.
func SaveReadings(path string, readings []models.Reading) error {
	return writeFile(path, func(w io.Writer) error { return WriteReadings(w, readings) })
}

// LoadTrajectory reads a results file from path. Files ending in .arrow are
// read as Arrow IPC, anything else as CSV.
func LoadTrajectory(path string) ([]models.TrajectoryRecord, error) {
	if strings.EqualFold(filepath.Ext(path), ArrowExt) {
		return ReadTrajectoryArrow(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening results: %w", err)
	}
	defer f.Close()

	records, err := ReadTrajectory(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// SaveTrajectory writes a results CSV to path, creating parent directories.
func SaveTrajectory(path string, records []models.TrajectoryRecord) error {
	return writeFile(path, func(w io.Writer) error { return WriteTrajectory(w, records) })
}

func writeFile(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
