package model

import (
	"time"
)

// MaxSensorReadings caps every range query over sensor readings.
const MaxSensorReadings = 100

// SensorReading is one immutable measurement written by the ingestion
// pipeline. ProductID is the product's external code, not its UUID.
type SensorReading struct {
	ID                string    `json:"id"`
	ProductID         string    `json:"product_id"`
	SensorID          string    `json:"sensor_id"`
	Timestamp         time.Time `json:"timestamp"`
	TemperatureC      float64   `json:"temperature_celsius"`
	WaterLevelPercent float64   `json:"water_level_percent"`
	TurbidityNTU      float64   `json:"turbidity_ntu"`
}
