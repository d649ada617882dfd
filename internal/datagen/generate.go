// Package datagen synthesizes per-minute sensor readings.
package datagen

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/nvandessel/acsim/internal/config"
	"github.com/nvandessel/acsim/internal/models"
)

// Generate returns cfg.Minutes readings. Temperature follows one full sine
// period over the stream plus Gaussian noise; occupancy is uniform in
// [0, MaxOccupancy) and air quality uniform in [AirQualityMin, AirQualityMin+AirQualitySpan).
//
// A zero Seed draws from the clock, so two calls differ. Any other seed is
// reproducible.
func Generate(cfg config.GeneratorConfig) []models.Reading {
	if cfg.Minutes <= 0 {
		return nil
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	readings := make([]models.Reading, cfg.Minutes)
	for i := range readings {
		temp := cfg.BaseTemperature + cfg.Amplitude*math.Sin(phase(i, cfg.Minutes))
		if cfg.NoiseStdDev > 0 {
			temp += rng.NormFloat64() * cfg.NoiseStdDev
		}

		occupancy := 0
		if cfg.MaxOccupancy > 0 {
			occupancy = rng.IntN(cfg.MaxOccupancy)
		}

		readings[i] = models.Reading{
			Time:        i,
			Temperature: temp,
			Occupancy:   occupancy,
			AirQuality:  cfg.AirQualityMin + cfg.AirQualitySpan*rng.Float64(),
		}
	}
	return readings
}

// phase spaces n points evenly over [0, 2π], both ends included.
func phase(i, n int) float64 {
	if n == 1 {
		return 0
	}
	return 2 * math.Pi * float64(i) / float64(n-1)
}

// TrainingExamples turns readings into classifier examples. The reading's own
// temperature doubles as the true temperature.
func TrainingExamples(readings []models.Reading) []models.TrainingExample {
	out := make([]models.TrainingExample, len(readings))
	for i, r := range readings {
		out[i] = models.TrainingExample{
			Temperature:     r.Temperature,
			Occupancy:       r.Occupancy,
			AirQuality:      r.AirQuality,
			TrueTemperature: r.Temperature,
		}
	}
	return out
}
