package location

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// TimestampLayout is the only accepted format of the ts parameter.
	TimestampLayout = "2006-01-02 15:04:05"
	// OutputLayout renders a stored timestamp for api consumers.
	OutputLayout  = "2006-01-02T15:04:05"
	MaxImeiLength = 32
)

// Record is a single stored location report. Timestamps carry no zone, they
// are kept as UTC wall-clock values.
type Record struct {
	Id        int64
	Imei      string
	Latitude  float64
	Longitude float64
	Speed     float64
	Timestamp time.Time
}

// Point is the api representation of a Record.
type Point struct {
	Imei      string  `json:"imei"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
	Speed     float64 `json:"speed"`
	Timestamp string  `json:"ts"`
}

// MarshalJSON keeps a fractional part on whole numbers, 50 is written as
// 50.0.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Imei      string      `json:"imei"`
		Latitude  json.Number `json:"lat"`
		Longitude json.Number `json:"lng"`
		Speed     json.Number `json:"speed"`
		Timestamp string      `json:"ts"`
	}{p.Imei, decimal(p.Latitude), decimal(p.Longitude), decimal(p.Speed), p.Timestamp})
}

func decimal(f float64) json.Number {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return json.Number(s)
}

func NewPoint(rec Record) Point {
	return Point{
		Imei:      rec.Imei,
		Latitude:  rec.Latitude,
		Longitude: rec.Longitude,
		Speed:     rec.Speed,
		Timestamp: rec.Timestamp.Format(OutputLayout),
	}
}

func NewPoints(recs []Record) []Point {
	points := make([]Point, 0, len(recs))
	for _, rec := range recs {
		points = append(points, NewPoint(rec))
	}
	return points
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return "Missing " + e.Field
	}
	return fmt.Sprintf("Invalid %s: %s", e.Field, e.Reason)
}

func missing(field string) *ValidationError {
	return &ValidationError{Field: field}
}

func invalid(field string, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}
