package domain

import "time"

// Sensor metrics reported by showcase and storeroom monitors.
const (
	MetricTemperature = "temperature"
	MetricHumidity    = "humidity"
	MetricLight       = "light"
)

// SensorReading is one measurement relayed from an environmental sensor
// watching a relic showcase.
type SensorReading struct {
	ID         string    `json:"id"`
	SensorID   string    `json:"sensor_id"`
	RelicID    string    `json:"relic_id,omitempty"`
	Metric     string    `json:"metric"`
	Value      float64   `json:"value"`
	RecordedAt time.Time `json:"recorded_at"`
}

func (r *SensorReading) IsValid() bool {
	if r == nil || r.SensorID == "" {
		return false
	}
	switch r.Metric {
	case MetricTemperature, MetricHumidity, MetricLight:
		return true
	default:
		return false
	}
}
