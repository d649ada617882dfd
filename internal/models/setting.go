package models

import "fmt"

// Setting is a discrete cooling level chosen for a reading.
type Setting string

const (
	SettingLow    Setting = "Low"
	SettingMedium Setting = "Medium"
	SettingHigh   Setting = "High"
)

// AllSettings lists every setting from the weakest to the strongest.
var AllSettings = []Setting{SettingLow, SettingMedium, SettingHigh}

// IsValid reports whether s is one of the three known settings.
func (s Setting) IsValid() bool {
	switch s {
	case SettingLow, SettingMedium, SettingHigh:
		return true
	}
	return false
}

// Index returns the position of s in AllSettings, or -1 for an unknown value.
func (s Setting) Index() int {
	for i, v := range AllSettings {
		if v == s {
			return i
		}
	}
	return -1
}

// ParseSetting converts a label such as "Medium" into a Setting.
func ParseSetting(v string) (Setting, error) {
	s := Setting(v)
	if !s.IsValid() {
		return "", fmt.Errorf("invalid setting %q (valid: Low, Medium, High)", v)
	}
	return s, nil
}

// FeedbackLabel is the simulated occupant reaction to a temperature.
type FeedbackLabel string

const (
	FeedbackTooHot    FeedbackLabel = "too hot"
	FeedbackTooCold   FeedbackLabel = "too cold"
	FeedbackJustRight FeedbackLabel = "just right"
)
