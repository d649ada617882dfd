package models

// TrajectoryRecord is the simulation output for one minute.
//
// EnergyUsage is the run's average energy per minute, assigned to every
// record once the whole stream has been processed. It is not the energy spent
// in this particular minute.
type TrajectoryRecord struct {
	Time         int     `json:"time"`
	OriginalTemp float64 `json:"original_temp"`
	AdjustedTemp float64 `json:"adjusted_temp"`
	Setting      Setting `json:"setting"`
	EnergyUsage  float64 `json:"energy_usage"`
}

// PreferenceUpdate is one entry of a preference tracker's history.
type PreferenceUpdate struct {
	ObservedTemp float64       `json:"observed_temp"`
	Feedback     FeedbackLabel `json:"feedback"`
	Preferred    float64       `json:"preferred"`
}
