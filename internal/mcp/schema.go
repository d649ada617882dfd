package mcp

import "github.com/nvandessel/acsim/internal/analysis"

// PredictInput defines the input for the acsim_predict tool.
type PredictInput struct {
	Temperature float64 `json:"temperature" jsonschema:"Indoor temperature in degrees Celsius"`
	Occupancy   int     `json:"occupancy" jsonschema:"Number of people present (non-negative)"`
	AirQuality  float64 `json:"air_quality" jsonschema:"CO2 concentration in ppm"`
}

// PredictOutput defines the output for the acsim_predict tool.
type PredictOutput struct {
	Setting          string  `json:"setting" jsonschema:"Predicted cooling setting (Low, Medium or High)"`
	EnergyCost       float64 `json:"energy_cost" jsonschema:"Energy spent per minute at this setting"`
	TemperatureDelta float64 `json:"temperature_delta" jsonschema:"Temperature change per minute at this setting"`
	AdjustedTemp     float64 `json:"adjusted_temp" jsonschema:"Temperature after one minute of cooling"`
}

// RecommendInput defines the input for the acsim_recommend tool.
type RecommendInput struct {
	Temperatures      []float64 `json:"temperatures" jsonschema:"Observed temperatures in the order they occurred"`
	InitialPreference *float64  `json:"initial_preference,omitempty" jsonschema:"Starting preferred temperature (default from config)"`
}

// RecommendStep is the tracker state after one observed temperature.
type RecommendStep struct {
	Temperature float64 `json:"temperature"`
	Feedback    string  `json:"feedback"`
	Preferred   float64 `json:"preferred"`
}

// RecommendOutput defines the output for the acsim_recommend tool.
type RecommendOutput struct {
	Steps     []RecommendStep `json:"steps" jsonschema:"Feedback and preference after each temperature"`
	Preferred float64         `json:"preferred" jsonschema:"Final preferred temperature"`
}

// AnalyzeInput defines the input for the acsim_analyze tool.
type AnalyzeInput struct {
	Results   string   `json:"results,omitempty" jsonschema:"Results file (CSV or .arrow), relative to project root. Defaults to .acsim/simulation_results.csv"`
	Preferred *float64 `json:"preferred,omitempty" jsonschema:"Preferred temperature for the dashboard transform"`
	Hours     int      `json:"hours,omitempty" jsonschema:"Duration in hours for the dashboard transform"`
}

// AnalyzeOutput defines the output for the acsim_analyze tool.
type AnalyzeOutput struct {
	Records   int               `json:"records" jsonschema:"Number of records summarized"`
	Dashboard bool              `json:"dashboard" jsonschema:"Whether the dashboard transform was applied"`
	Summary   *analysis.Summary `json:"summary" jsonschema:"Energy, comfort and setting statistics"`
}

// RunsInput defines the input for the acsim_runs tool.
type RunsInput struct {
	ID    string `json:"id,omitempty" jsonschema:"Run ID to show; omit to list runs"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum number of runs to list (default: all)"`
}

// RunListItem summarizes one archived run.
type RunListItem struct {
	ID               string  `json:"id"`
	CreatedAt        string  `json:"created_at"`
	Source           string  `json:"source,omitempty"`
	Readings         int     `json:"readings"`
	CumulativeEnergy float64 `json:"cumulative_energy"`
	AverageEnergy    float64 `json:"average_energy"`
	TotalEnergy      float64 `json:"total_energy,omitempty"`
	ComfortPercent   float64 `json:"comfort_percent,omitempty"`
}

// RunsOutput defines the output for the acsim_runs tool.
type RunsOutput struct {
	Runs    []RunListItem     `json:"runs" jsonschema:"Archived runs, newest first"`
	Count   int               `json:"count" jsonschema:"Number of runs returned"`
	Summary *analysis.Summary `json:"summary,omitempty" jsonschema:"Summary of the requested run"`
}
