// File: lixenwraith/settings/type.go
package settings

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// String returns the value at key as a string. Numbers and booleans are
// formatted; tables and arrays fail with ErrTypeHint.
func (s *Settings) String(key string) (string, error) {
	val, err := s.Get(key)
	if err != nil {
		return "", err
	}

	switch v := val.(type) {
	case string:
		return v, nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	case time.Time:
		return v.Format(time.RFC3339Nano), nil
	}
	return "", typeMismatch(key, val, "string")
}

// Int64 returns the value at key as an int64. Integral floats and numeric
// strings are converted.
func (s *Settings) Int64(key string) (int64, error) {
	val, err := s.Get(key)
	if err != nil {
		return 0, err
	}

	switch v := val.(type) {
	case int64:
		return v, nil
	case float64:
		if v != math.Trunc(v) || v > math.MaxInt64 || v < math.MinInt64 {
			return 0, fmt.Errorf("%w: value %v at '%s' is not an integer", ErrTypeHint, v, key)
		}
		return int64(v), nil
	case string:
		i, perr := strconv.ParseInt(v, 0, 64) // base 0 accepts "0xFF"
		if perr != nil {
			return 0, fmt.Errorf("%w: cannot convert string %q at '%s' to int64: %v", ErrTypeHint, v, key, perr)
		}
		return i, nil
	}
	return 0, typeMismatch(key, val, "int64")
}

// Float64 returns the value at key as a float64.
func (s *Settings) Float64(key string) (float64, error) {
	val, err := s.Get(key)
	if err != nil {
		return 0, err
	}

	switch v := val.(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	case string:
		f, perr := strconv.ParseFloat(v, 64)
		if perr != nil {
			return 0, fmt.Errorf("%w: cannot convert string %q at '%s' to float64: %v", ErrTypeHint, v, key, perr)
		}
		return f, nil
	}
	return 0, typeMismatch(key, val, "float64")
}

// Bool returns the value at key as a bool. Strings accepted by
// strconv.ParseBool are converted; numbers are not.
func (s *Settings) Bool(key string) (bool, error) {
	val, err := s.Get(key)
	if err != nil {
		return false, err
	}

	switch v := val.(type) {
	case bool:
		return v, nil
	case string:
		b, perr := strconv.ParseBool(v)
		if perr != nil {
			return false, fmt.Errorf("%w: cannot convert string %q at '%s' to bool: %v", ErrTypeHint, v, key, perr)
		}
		return b, nil
	}
	return false, typeMismatch(key, val, "bool")
}

// StringSlice returns an array of strings stored at key.
func (s *Settings) StringSlice(key string) ([]string, error) {
	val, err := s.Get(key)
	if err != nil {
		return nil, err
	}

	items, ok := val.([]any)
	if !ok {
		return nil, typeMismatch(key, val, "[]string")
	}
	out := make([]string, len(items))
	for i, item := range items {
		str, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%w: element %d at '%s' is %T, not string", ErrTypeHint, i, key, item)
		}
		out[i] = str
	}
	return out, nil
}

// Time returns a datetime stored at key. RFC 3339 strings are parsed.
func (s *Settings) Time(key string) (time.Time, error) {
	val, err := s.Get(key)
	if err != nil {
		return time.Time{}, err
	}

	switch v := val.(type) {
	case time.Time:
		return v, nil
	case string:
		t, perr := time.Parse(time.RFC3339Nano, v)
		if perr != nil {
			return time.Time{}, fmt.Errorf("%w: cannot parse %q at '%s' as RFC 3339: %v", ErrTypeHint, v, key, perr)
		}
		return t, nil
	}
	return time.Time{}, typeMismatch(key, val, "time.Time")
}

func typeMismatch(key string, val any, want string) error {
	return fmt.Errorf("%w: cannot convert %T at '%s' to %s", ErrTypeHint, val, key, want)
}
