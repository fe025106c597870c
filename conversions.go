package df

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateFormats are formats to try when converting a string to a date. "2006-01" covers the
// year-month periods of the NICS file.
var DateFormats = []string{"2006-01-02", "2006-1-2", "2006/01/02", "2006/1/2", "20060102", "01022006",
	"01/02/2006", "1/2/2006", "01-02-2006", "1-2-2006", "2006-01", "2006/01", "200601", "Jan 2 2006",
	"January 2 2006", "Jan 2, 2006", "January 2, 2006", "Jan 2006", "January 2006", time.RFC3339}

// ParseDate tries each of DateFormats in turn.
func ParseDate(xs string) (time.Time, error) {
	xs = strings.TrimSpace(xs)
	for _, format := range DateFormats {
		if dt, e := time.Parse(format, xs); e == nil {
			return dt, nil
		}
	}

	return time.Time{}, fmt.Errorf("cannot parse %s as date", xs)
}

// IsMissing returns true if x is a NaN float or an empty string.
func IsMissing(x any) bool {
	switch v := x.(type) {
	case float64:
		return math.IsNaN(v)
	case string:
		return v == ""
	case time.Time:
		return v.IsZero()
	}

	return false
}

func toFloat(xIn any, strict bool) (xOut any, err error) {
	if x, ok := xIn.(float64); ok {
		return x, nil
	}

	if strict {
		return nil, fmt.Errorf("conversion not allowed")
	}

	if x, ok := xIn.(int); ok {
		return float64(x), nil
	}

	if x, ok := xIn.(string); ok {
		if x == "" {
			return math.NaN(), nil
		}

		var tmp float64
		if tmp, err = strconv.ParseFloat(strings.TrimSpace(x), 64); err != nil {
			return nil, err
		}
		return tmp, nil
	}

	return nil, fmt.Errorf("cannot convert type to float")
}

func toInt(xIn any, strict bool) (xOut any, err error) {
	if x, ok := xIn.(int); ok {
		return x, nil
	}

	if strict {
		return nil, fmt.Errorf("conversion not allowed")
	}

	if x, ok := xIn.(float64); ok {
		if math.IsNaN(x) {
			return nil, fmt.Errorf("cannot convert NaN to int")
		}

		return int(x), nil
	}

	if x, ok := xIn.(string); ok {
		var tmp int64
		if tmp, err = strconv.ParseInt(strings.TrimSpace(x), 10, 64); err != nil {
			return nil, err
		}
		return int(tmp), nil
	}

	if x, ok := xIn.(time.Time); ok {
		return x.Year()*10000 + int(x.Month())*100 + x.Day(), nil
	}

	return nil, fmt.Errorf("cannot convert type to int")
}

func toDate(xIn any, strict bool) (xOut any, err error) {
	if xx, ok := xIn.(time.Time); ok {
		return xx, nil
	}

	if strict {
		return nil, fmt.Errorf("conversion not allowed")
	}

	if xi, ok := xIn.(int); ok {
		xIn = strconv.Itoa(xi)
	}

	xs, ok := xIn.(string)
	if !ok {
		return nil, fmt.Errorf("input not a string")
	}

	return ParseDate(xs)
}

func toString(xIn any, strict bool) (xOut any, err error) {
	if x, ok := xIn.(string); ok {
		return x, nil
	}

	if strict {
		return nil, fmt.Errorf("conversion not allowed")
	}

	switch x := xIn.(type) {
	case float64:
		if math.IsNaN(x) {
			return "", nil
		}

		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case time.Time:
		return x.Format("2006-01-02"), nil
	}

	return fmt.Sprintf("%v", xIn), nil
}

func toDataType(x any, dt DataTypes, strict bool) (xout any, err error) {
	switch dt {
	case DTfloat:
		return toFloat(x, strict)
	case DTint:
		return toInt(x, strict)
	case DTdate:
		return toDate(x, strict)
	case DTstring:
		return toString(x, strict)
	}

	return nil, fmt.Errorf("not supported")
}
