package models

// Reading is one minute of sensor data.
type Reading struct {
	// Time is the ordinal minute index within the stream.
	Time int `json:"time" yaml:"time"`

	// Temperature is the indoor temperature in °C.
	Temperature float64 `json:"temperature" yaml:"temperature"`

	// Occupancy is the number of people present. Never negative.
	Occupancy int `json:"occupancy" yaml:"occupancy"`

	// AirQuality is the CO2 concentration in ppm.
	AirQuality float64 `json:"air_quality" yaml:"air_quality"`
}

// TrainingExample is a labelled row for the setting classifier.
// TrueTemperature is binned into a Setting; the other three fields are features.
type TrainingExample struct {
	Temperature     float64 `json:"temperature"`
	Occupancy       int     `json:"occupancy"`
	AirQuality      float64 `json:"air_quality"`
	TrueTemperature float64 `json:"true_temperature"`
}

// Features returns the classifier feature vector in fixed order:
// temperature, occupancy, air quality.
func (r Reading) Features() [3]float64 {
	return [3]float64{r.Temperature, float64(r.Occupancy), r.AirQuality}
}

// Features returns the example's feature vector in the same order as Reading.Features.
func (e TrainingExample) Features() [3]float64 {
	return [3]float64{e.Temperature, float64(e.Occupancy), e.AirQuality}
}
