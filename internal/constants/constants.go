// Package constants provides named constants used throughout acsim.
// This centralizes magic numbers for better maintainability and documentation.
package constants

// Comfort band defaults. These are shared by classifier labelling, occupant
// feedback and the analysis comfort zone through config.ComfortConfig.
const (
	// DefaultLabelFloor is the exclusive lower edge of the Low label bin.
	DefaultLabelFloor = 0.0

	// DefaultLowUpper is the inclusive upper edge of the Low bin.
	DefaultLowUpper = 24.0

	// DefaultMediumUpper is the inclusive upper edge of the Medium bin.
	DefaultMediumUpper = 30.0

	// DefaultLabelCeiling is the inclusive upper edge of the High bin.
	// Temperatures above it receive no training label.
	DefaultLabelCeiling = 40.0

	// DefaultTooColdBelow: occupants report "too cold" strictly below this.
	DefaultTooColdBelow = 22.0

	// DefaultTooHotAbove: occupants report "too hot" strictly above this.
	DefaultTooHotAbove = 25.0

	// DefaultComfortZoneLow and DefaultComfortZoneHigh bound the comfort zone
	// (inclusive) used when scoring a trajectory.
	DefaultComfortZoneLow  = 22.0
	DefaultComfortZoneHigh = 24.0
)

// Cooling policy defaults, per minute of operation.
const (
	LowEnergyCost    = 1.0
	LowDelta         = -0.1
	MediumEnergyCost = 2.0
	MediumDelta      = -0.3
	HighEnergyCost   = 3.0
	HighDelta        = -0.5
)

// Preference tracker defaults.
const (
	// DefaultInitialPreference is the starting preferred temperature (°C).
	DefaultInitialPreference = 24.0

	// DefaultLearningRate is the correction rate applied per feedback event.
	DefaultLearningRate = 0.1
)

// Decision tree defaults. Zero depth means grow until leaves are pure.
const (
	DefaultTreeMaxDepth        = 0
	DefaultTreeMinSamplesSplit = 2
)

// Synthetic data defaults describe one day of per-minute readings.
const (
	MinutesPerDay = 1440

	DefaultBaseTemperature = 20.0
	DefaultTempAmplitude   = 15.0
	DefaultTempNoiseStdDev = 2.0
	DefaultMaxOccupancy    = 10
	DefaultAirQualityMin   = 400.0
	DefaultAirQualitySpan  = 1600.0
)

// Analysis defaults.
const (
	// DefaultBaselineEnergy is the reference daily consumption used for savings.
	DefaultBaselineEnergy = 1500.0

	// DashboardClampMin and DashboardClampMax bound dashboard-adjusted temperatures.
	DashboardClampMin = 20.0
	DashboardClampMax = 28.0

	// DashboardNudgeRate pulls adjusted temperatures toward the preferred one.
	DashboardNudgeRate = 0.1

	// DashboardMaxHours is the longest duration the dashboard accepts.
	DashboardMaxHours = 48
)

// File names inside the data directory.
const (
	DataDirName      = ".acsim"
	ConfigFileName   = "config.yaml"
	ReadingsFileName = "raw_data.csv"
	ResultsFileName  = "simulation_results.csv"
	ModelFileName    = "model.acm"
	RunsFileName     = "runs.jsonl"
	RunsDBFileName   = "runs.db"
	DecisionsFile    = "decisions.jsonl"
	ReportFileName   = "report.html"
	AuditFileName    = "audit.jsonl"
)
