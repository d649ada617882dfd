package simulation

import (
	"errors"
	"fmt"

	"github.com/nvandessel/acsim/internal/logging"
	"github.com/nvandessel/acsim/internal/models"
)

// ErrEmptyStream is returned when Run is given no readings.
var ErrEmptyStream = errors.New("empty reading stream")

// Predictor picks a cooling setting for one reading.
// *classifier.Tree satisfies it.
type Predictor interface {
	Predict(temperature float64, occupancy int, airQuality float64) (models.Setting, error)
}

// PredictorFunc adapts a function to Predictor.
type PredictorFunc func(temperature float64, occupancy int, airQuality float64) (models.Setting, error)

// Predict calls f.
func (f PredictorFunc) Predict(temperature float64, occupancy int, airQuality float64) (models.Setting, error) {
	return f(temperature, occupancy, airQuality)
}

// Decision describes the choice made for one minute.
type Decision struct {
	Reading    models.Reading
	Setting    models.Setting
	Action     models.CoolingAction
	Cumulative float64
}

// Observer is called after each decision, in reading order.
type Observer func(Decision)

// Options are optional hooks for Run. The zero value is valid.
type Options struct {
	// Observer receives every decision.
	Observer Observer

	// Decisions receives a "cooling_decision" event per minute. May be nil.
	Decisions *logging.DecisionLogger
}

// Result is a completed run.
type Result struct {
	Records          []models.TrajectoryRecord `json:"records"`
	CumulativeEnergy float64                   `json:"cumulative_energy"`
}

// AverageEnergy returns the per-minute energy assigned to every record.
func (r *Result) AverageEnergy() float64 {
	if r == nil || len(r.Records) == 0 {
		return 0
	}
	return r.CumulativeEnergy / float64(len(r.Records))
}

// Run simulates the readings in order. Any prediction or policy error aborts
// the run and no partial result is returned.
func Run(readings []models.Reading, predictor Predictor, policy models.CoolingPolicy, opts Options) (*Result, error) {
	if len(readings) == 0 {
		return nil, ErrEmptyStream
	}
	if predictor == nil {
		return nil, fmt.Errorf("simulation: nil predictor")
	}

	records := make([]models.TrajectoryRecord, 0, len(readings))
	cumulative := 0.0

	for _, r := range readings {
		setting, err := predictor.Predict(r.Temperature, r.Occupancy, r.AirQuality)
		if err != nil {
			return nil, fmt.Errorf("predicting minute %d: %w", r.Time, err)
		}
		action, err := policy.Action(setting)
		if err != nil {
			return nil, fmt.Errorf("minute %d: %w", r.Time, err)
		}

		cumulative += action.EnergyCost
		records = append(records, models.TrajectoryRecord{
			Time:         r.Time,
			OriginalTemp: r.Temperature,
			AdjustedTemp: r.Temperature + action.TemperatureDelta,
			Setting:      setting,
		})

		opts.Decisions.Log("cooling_decision", map[string]any{
			"minute":      r.Time,
			"temperature": r.Temperature,
			"occupancy":   r.Occupancy,
			"air_quality": r.AirQuality,
			"setting":     string(setting),
			"energy_cost": action.EnergyCost,
		})
		if opts.Observer != nil {
			opts.Observer(Decision{Reading: r, Setting: setting, Action: action, Cumulative: cumulative})
		}
	}

	avg := cumulative / float64(len(records))
	for i := range records {
		records[i].EnergyUsage = avg
	}

	return &Result{Records: records, CumulativeEnergy: cumulative}, nil
}
