package dataio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"github.com/nvandessel/acsim/internal/models"
)

// ArrowExt is the file extension used for Arrow IPC exports.
const ArrowExt = ".arrow"

// TrajectorySchema mirrors the results CSV columns.
var TrajectorySchema = arrow.NewSchema([]arrow.Field{
	{Name: ColTime, Type: arrow.PrimitiveTypes.Int64},
	{Name: ColOriginalTemp, Type: arrow.PrimitiveTypes.Float64},
	{Name: ColAdjustedTemp, Type: arrow.PrimitiveTypes.Float64},
	{Name: ColSetting, Type: arrow.BinaryTypes.String},
	{Name: ColEnergyUsage, Type: arrow.PrimitiveTypes.Float64},
}, nil)

// WriteTrajectoryArrow writes records as a single-batch Arrow IPC file.
func WriteTrajectoryArrow(path string, records []models.TrajectoryRecord) error {
	mem := memory.NewGoAllocator()

	b := array.NewRecordBuilder(mem, TrajectorySchema)
	defer b.Release()

	times := b.Field(0).(*array.Int64Builder)
	orig := b.Field(1).(*array.Float64Builder)
	adj := b.Field(2).(*array.Float64Builder)
	settings := b.Field(3).(*array.StringBuilder)
	energy := b.Field(4).(*array.Float64Builder)

	for _, r := range records {
		times.Append(int64(r.Time))
		orig.Append(r.OriginalTemp)
		adj.Append(r.AdjustedTemp)
		settings.Append(string(r.Setting))
		energy.Append(r.EnergyUsage)
	}

	rec := b.NewRecord()
	defer rec.Release()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w, err := ipc.NewFileWriter(f, ipc.WithSchema(TrajectorySchema), ipc.WithAllocator(mem))
	if err != nil {
		return fmt.Errorf("creating arrow writer: %w", err)
	}
	if err := w.Write(rec); err != nil {
		w.Close()
		return fmt.Errorf("writing arrow record: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finishing arrow file: %w", err)
	}
	return f.Close()
}

// ReadTrajectoryArrow reads a file written by WriteTrajectoryArrow.
func ReadTrajectoryArrow(path string) ([]models.TrajectoryRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	rd, err := ipc.NewFileReader(f, ipc.WithAllocator(memory.NewGoAllocator()))
	if err != nil {
		return nil, fmt.Errorf("reading arrow file %s: %w", path, err)
	}
	defer rd.Close()

	if err := checkSchema(rd.Schema()); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var records []models.TrajectoryRecord
	for i := 0; i < rd.NumRecords(); i++ {
		rec, err := rd.Record(i)
		if err != nil {
			return nil, fmt.Errorf("reading arrow batch %d: %w", i, err)
		}

		col := func(name string) arrow.Array {
			return rec.Column(rec.Schema().FieldIndices(name)[0])
		}
		times := col(ColTime).(*array.Int64)
		orig := col(ColOriginalTemp).(*array.Float64)
		adj := col(ColAdjustedTemp).(*array.Float64)
		settings := col(ColSetting).(*array.String)
		energy := col(ColEnergyUsage).(*array.Float64)

		for row := 0; row < int(rec.NumRows()); row++ {
			setting, err := models.ParseSetting(settings.Value(row))
			if err != nil {
				return nil, &CellError{Row: len(records) + 1, Column: ColSetting, Value: settings.Value(row), Err: err}
			}
			records = append(records, models.TrajectoryRecord{
				Time:         int(times.Value(row)),
				OriginalTemp: orig.Value(row),
				AdjustedTemp: adj.Value(row),
				Setting:      setting,
				EnergyUsage:  energy.Value(row),
			})
		}
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyData)
	}
	return records, nil
}

func checkSchema(got *arrow.Schema) error {
	var missing []string
	for _, want := range TrajectorySchema.Fields() {
		idx := got.FieldIndices(want.Name)
		if len(idx) == 0 || !arrow.TypeEqual(got.Field(idx[0]).Type, want.Type) {
			missing = append(missing, want.Name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return nil
}
