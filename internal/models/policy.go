package models

import "fmt"

// CoolingAction is the effect of running the unit at one setting for a minute.
type CoolingAction struct {
	EnergyCost       float64 `json:"energy_cost" yaml:"energy_cost"`
	TemperatureDelta float64 `json:"temperature_delta" yaml:"temperature_delta"`
}

// CoolingPolicy maps each setting to its cooling action.
type CoolingPolicy struct {
	Low    CoolingAction `json:"low" yaml:"low"`
	Medium CoolingAction `json:"medium" yaml:"medium"`
	High   CoolingAction `json:"high" yaml:"high"`
}

// Action returns the cooling action for s.
func (p CoolingPolicy) Action(s Setting) (CoolingAction, error) {
	switch s {
	case SettingLow:
		return p.Low, nil
	case SettingMedium:
		return p.Medium, nil
	case SettingHigh:
		return p.High, nil
	}
	return CoolingAction{}, fmt.Errorf("no cooling action for setting %q", s)
}

// Validate checks that the policy only cools and never has a negative cost.
func (p CoolingPolicy) Validate() error {
	for _, s := range AllSettings {
		a, _ := p.Action(s)
		if a.TemperatureDelta > 0 {
			return fmt.Errorf("policy.%s.temperature_delta must be <= 0, got %g", lower(s), a.TemperatureDelta)
		}
		if a.EnergyCost < 0 {
			return fmt.Errorf("policy.%s.energy_cost must be >= 0, got %g", lower(s), a.EnergyCost)
		}
	}
	return nil
}

func lower(s Setting) string {
	switch s {
	case SettingLow:
		return "low"
	case SettingMedium:
		return "medium"
	default:
		return "high"
	}
}
