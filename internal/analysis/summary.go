// Package analysis scores simulation trajectories: energy totals, savings
// against a baseline, time in the comfort zone and setting mix.
package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/nvandessel/acsim/internal/config"
	"github.com/nvandessel/acsim/internal/models"
)

// ErrNoRecords is returned when there is nothing to analyze.
var ErrNoRecords = errors.New("no trajectory records")

// SettingShare is how often one setting was chosen.
type SettingShare struct {
	Setting models.Setting `json:"setting"`
	Count   int            `json:"count"`
	Percent float64        `json:"percent"`
}

// Summary describes one trajectory.
type Summary struct {
	Minutes int `json:"minutes"`

	// TotalEnergy is scaled to the configured horizon (a day by default).
	TotalEnergy    float64 `json:"total_energy"`
	BaselineEnergy float64 `json:"baseline_energy"`
	SavingsPercent float64 `json:"savings_percent"`

	ComfortZoneLow  float64 `json:"comfort_zone_low"`
	ComfortZoneHigh float64 `json:"comfort_zone_high"`
	ComfortPercent  float64 `json:"comfort_percent"`

	Settings []SettingShare `json:"settings"`

	MeanAdjustedTemp float64 `json:"mean_adjusted_temp"`
	MinAdjustedTemp  float64 `json:"min_adjusted_temp"`
	MaxAdjustedTemp  float64 `json:"max_adjusted_temp"`

	// MeanCooling is the average drop from original to adjusted temperature.
	MeanCooling float64 `json:"mean_cooling"`

	Notes []string `json:"notes"`
}

// Summarize computes a Summary. Total energy is sum(EnergyUsage) scaled by
// ScaleMinutes/len(records).
func Summarize(records []models.TrajectoryRecord, cfg *config.AcsimConfig) (*Summary, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	if cfg == nil {
		cfg = config.Default()
	}

	n := float64(len(records))
	zoneLow, zoneHigh := cfg.Comfort.ZoneLow, cfg.Comfort.ZoneHigh

	var energy, tempSum, cooling float64
	var inZone int
	counts := make([]int, len(models.AllSettings))
	minTemp, maxTemp := math.Inf(1), math.Inf(-1)

	for _, r := range records {
		energy += r.EnergyUsage
		tempSum += r.AdjustedTemp
		cooling += r.OriginalTemp - r.AdjustedTemp
		minTemp = math.Min(minTemp, r.AdjustedTemp)
		maxTemp = math.Max(maxTemp, r.AdjustedTemp)
		if r.AdjustedTemp >= zoneLow && r.AdjustedTemp <= zoneHigh {
			inZone++
		}
		if idx := r.Setting.Index(); idx >= 0 {
			counts[idx]++
		}
	}

	total := energy * float64(cfg.Analysis.ScaleMinutes) / n
	baseline := cfg.Analysis.BaselineEnergy

	s := &Summary{
		Minutes:          len(records),
		TotalEnergy:      total,
		BaselineEnergy:   baseline,
		SavingsPercent:   (baseline - total) / baseline * 100,
		ComfortZoneLow:   zoneLow,
		ComfortZoneHigh:  zoneHigh,
		ComfortPercent:   float64(inZone) / n * 100,
		MeanAdjustedTemp: tempSum / n,
		MinAdjustedTemp:  minTemp,
		MaxAdjustedTemp:  maxTemp,
		MeanCooling:      cooling / n,
	}
	for i, setting := range models.AllSettings {
		s.Settings = append(s.Settings, SettingShare{
			Setting: setting,
			Count:   counts[i],
			Percent: float64(counts[i]) / n * 100,
		})
	}
	s.Notes = trendNotes(s)
	return s, nil
}

// Dominant returns the most frequent setting. Ties go to the weaker setting.
func (s *Summary) Dominant() SettingShare {
	var best SettingShare
	for i, share := range s.Settings {
		if i == 0 || share.Count > best.Count {
			best = share
		}
	}
	return best
}

func trendNotes(s *Summary) []string {
	dom := s.Dominant()
	notes := []string{
		fmt.Sprintf("%s cooling was chosen most often (%.1f%% of minutes).", dom.Setting, dom.Percent),
		fmt.Sprintf("Cooling lowered the temperature by %.2f °C per minute on average.", s.MeanCooling),
		fmt.Sprintf("%.1f%% of minutes ended inside the %.1f-%.1f °C comfort zone.", s.ComfortPercent, s.ComfortZoneLow, s.ComfortZoneHigh),
	}

	switch {
	case s.SavingsPercent > 0:
		notes = append(notes, fmt.Sprintf("Projected use of %.1f units is %.1f%% below the %.0f-unit baseline.", s.TotalEnergy, s.SavingsPercent, s.BaselineEnergy))
	case s.SavingsPercent < 0:
		notes = append(notes, fmt.Sprintf("Projected use of %.1f units is %.1f%% above the %.0f-unit baseline.", s.TotalEnergy, -s.SavingsPercent, s.BaselineEnergy))
	default:
		notes = append(notes, "Projected use matches the baseline.")
	}

	if s.ComfortPercent < 50 {
		if s.MeanAdjustedTemp > s.ComfortZoneHigh {
			notes = append(notes, "Most minutes stayed warmer than the comfort zone; stronger settings would help.")
		} else if s.MeanAdjustedTemp < s.ComfortZoneLow {
			notes = append(notes, "Most minutes ran cooler than the comfort zone; weaker settings would save energy.")
		}
	}
	return notes
}
