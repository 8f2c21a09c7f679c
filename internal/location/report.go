package location

import (
	"errors"
	"math"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// reportForm holds the raw report parameters. Field order is the order in
// which missing parameters are reported. Only presence is checked here so a
// missing field always wins over a malformed one.
type reportForm struct {
	Imei  string `form:"imei" validate:"required"`
	Lat   string `form:"lat" validate:"required"`
	Lng   string `form:"lng" validate:"required"`
	Ts    string `form:"ts" validate:"required"`
	Speed string `form:"speed"`
}

var vld = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("form")
	})
	return v
}

// ParseReport validates and converts the parameters of a location report.
// The returned error is always a *ValidationError.
func ParseReport(values url.Values) (*Record, error) {
	form := reportForm{
		Imei:  values.Get("imei"),
		Lat:   values.Get("lat"),
		Lng:   values.Get("lng"),
		Ts:    values.Get("ts"),
		Speed: values.Get("speed"),
	}
	err := vld.Struct(form)
	if err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return nil, missing(verrs[0].Field())
		}
		return nil, invalid("report", err.Error())
	}
	if vld.Var(form.Imei, "max="+strconv.Itoa(MaxImeiLength)) != nil {
		return nil, invalid("imei", "longer than "+strconv.Itoa(MaxImeiLength)+" characters")
	}

	rec := &Record{Imei: form.Imei}
	rec.Latitude, err = parseFloat("lat", form.Lat)
	if err != nil {
		return nil, err
	}
	rec.Longitude, err = parseFloat("lng", form.Lng)
	if err != nil {
		return nil, err
	}
	if form.Speed != "" {
		rec.Speed, err = parseFloat("speed", form.Speed)
		if err != nil {
			return nil, err
		}
	}
	rec.Timestamp, err = parseTimestamp(form.Ts)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// parseFloat accepts decimal notation only.
func parseFloat(field string, s string) (float64, error) {
	s = strings.TrimSpace(s)
	digits := strings.TrimLeft(s, "+-")
	if strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
		return 0, invalid(field, "not a number")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, invalid(field, "not a number")
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, invalid(field, "not a finite number")
	}
	return f, nil
}

// parseTimestamp rejects fractional seconds, which time.Parse would
// otherwise accept after the seconds field.
func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(TimestampLayout, s)
	if err != nil || len(s) != len(TimestampLayout) {
		return time.Time{}, invalid("ts", "expected format YYYY-MM-DD HH:MM:SS")
	}
	return t, nil
}

// ParseLimit returns the result cap encoded in raw. Only plain decimal
// digits are accepted; anything else means no limit.
func ParseLimit(raw string) (int, bool) {
	if raw == "" {
		return 0, false
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}
