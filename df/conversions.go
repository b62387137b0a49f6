package df

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

func toFloat(xIn any) (float64, error) {
	switch x := xIn.(type) {
	case float64:
		return x, nil
	case int:
		return float64(x), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(x), 64)
	}

	return 0, fmt.Errorf("cannot convert %v to float", xIn)
}

func toInt(xIn any) (int, error) {
	switch x := xIn.(type) {
	case int:
		return x, nil
	case float64:
		if x != float64(int(x)) {
			return 0, fmt.Errorf("%v is not integral", x)
		}
		return int(x), nil
	case string:
		tmp, e := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if e != nil {
			return 0, e
		}
		return int(tmp), nil
	}

	return 0, fmt.Errorf("cannot convert %v to int", xIn)
}

func toString(xIn any) string {
	switch x := xIn.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	}

	return fmt.Sprintf("%v", xIn)
}

func toDataType(x any, dt DataTypes) (any, error) {
	switch dt {
	case DTfloat:
		return toFloat(x)
	case DTint:
		return toInt(x)
	case DTstring:
		return toString(x), nil
	case DTany:
		return x, nil
	}

	return nil, fmt.Errorf("conversion to %s not supported", dt)
}

// bestType returns the narrowest type that can hold the token: DTint, then DTfloat, then DTstring.
// Long digit strings that overflow an int (identifiers, mostly) stay strings so no digits are lost.
func bestType(token string) DataTypes {
	token = strings.TrimSpace(token)
	if _, e := strconv.ParseInt(token, 10, 64); e == nil {
		return DTint
	} else if errors.Is(e, strconv.ErrRange) {
		return DTstring
	}

	if _, e := strconv.ParseFloat(token, 64); e == nil {
		return DTfloat
	}

	return DTstring
}

// widen returns the type that can hold values of both dt1 and dt2
func widen(dt1, dt2 DataTypes) DataTypes {
	switch {
	case dt1 == DTunknown:
		return dt2
	case dt2 == DTunknown:
		return dt1
	case dt1 == dt2:
		return dt1
	case dt1.IsNumeric() && dt2.IsNumeric():
		return DTfloat
	default:
		return DTstring
	}
}

func WhatAmI(val any) DataTypes {
	switch val.(type) {
	case float64, []float64:
		return DTfloat
	case int, []int:
		return DTint
	case string, []string:
		return DTstring
	default:
		return DTunknown
	}
}
