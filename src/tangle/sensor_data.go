package tangle

import "encoding/json"

// SensorData is the measurement payload carried by a block. It is produced by
// the embedding application as a self-describing JSON document; key order is
// irrelevant and unknown keys are ignored.
type SensorData struct {
	SensorID   string            `json:"sensor_id"`
	Timestamp  int64             `json:"timestamp"` //unix milliseconds
	MetricType string            `json:"metric_type"`
	Value      float64           `json:"value"`
	Tags       map[string]string `json:"tags,omitempty"`
}

// ParseSensorData deserializes a raw JSON payload into a SensorData. It is
// the validation gate of the ingestion pipeline; a payload that does not
// decode never reaches the tangle.
func ParseSensorData(raw []byte) (SensorData, error) {
	var data SensorData
	if err := json.Unmarshal(raw, &data); err != nil {
		return SensorData{}, err
	}
	return data, nil
}
