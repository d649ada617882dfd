// Package preference learns an occupant's preferred temperature from
// simulated comfort feedback.
package preference

import (
	"github.com/nvandessel/acsim/internal/config"
	"github.com/nvandessel/acsim/internal/logging"
	"github.com/nvandessel/acsim/internal/models"
)

// Tracker holds a preferred temperature and the history of updates that
// produced it. A Tracker has a single owner and is not safe for concurrent use.
type Tracker struct {
	preferred float64
	rate      float64
	limit     int
	band      config.ComfortConfig
	history   []models.PreferenceUpdate

	decisions *logging.DecisionLogger
}

// New creates a tracker starting at cfg.InitialTemperature.
// The decision logger may be nil.
func New(cfg config.PreferenceConfig, band config.ComfortConfig, dl *logging.DecisionLogger) *Tracker {
	return &Tracker{
		preferred: cfg.InitialTemperature,
		rate:      cfg.LearningRate,
		limit:     cfg.HistoryLimit,
		band:      band,
		decisions: dl,
	}
}

// Feedback returns what an occupant would say at temp. It does not touch
// the tracker's state.
func (t *Tracker) Feedback(temp float64) models.FeedbackLabel {
	return Feedback(temp, t.band)
}

// Feedback classifies temp against the band's feedback thresholds.
// Both thresholds are strict: exactly TooHotAbove or TooColdBelow is just right.
func Feedback(temp float64, band config.ComfortConfig) models.FeedbackLabel {
	switch {
	case temp > band.TooHotAbove:
		return models.FeedbackTooHot
	case temp < band.TooColdBelow:
		return models.FeedbackTooCold
	default:
		return models.FeedbackJustRight
	}
}

// Update moves the preference in response to feedback at temp, records the
// update and returns the new preference.
//
// "too hot" lowers the preference by rate*(temp-preferred); "too cold" raises
// it by the same term. The update is applied exactly as written even when the
// sign of (temp-preferred) makes it move away from temp.
func (t *Tracker) Update(temp float64, feedback models.FeedbackLabel) float64 {
	before := t.preferred
	switch feedback {
	case models.FeedbackTooHot:
		t.preferred -= t.rate * (temp - t.preferred)
	case models.FeedbackTooCold:
		t.preferred += t.rate * (temp - t.preferred)
	}

	t.history = append(t.history, models.PreferenceUpdate{
		ObservedTemp: temp,
		Feedback:     feedback,
		Preferred:    t.preferred,
	})
	if t.limit > 0 && len(t.history) > t.limit {
		t.history = append(t.history[:0], t.history[len(t.history)-t.limit:]...)
	}

	t.decisions.Log("preference_update", map[string]any{
		"observed_temp": temp,
		"feedback":      string(feedback),
		"before":        before,
		"preferred":     t.preferred,
	})

	return t.preferred
}

// Recommend computes feedback for temp, applies it and returns the new
// preference together with the feedback that drove it.
func (t *Tracker) Recommend(temp float64) (float64, models.FeedbackLabel) {
	fb := t.Feedback(temp)
	return t.Update(temp, fb), fb
}

// Preferred returns the current preferred temperature.
func (t *Tracker) Preferred() float64 {
	return t.preferred
}

// History returns a copy of the recorded updates, oldest first.
func (t *Tracker) History() []models.PreferenceUpdate {
	out := make([]models.PreferenceUpdate, len(t.history))
	copy(out, t.history)
	return out
}
