package klarf

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the MM-DD-YYYY HH:MM:SS format used by date fields.
const TimestampLayout = "01-02-2006 15:04:05"

var (
	// ErrTooFewValues is wrapped by issues for statements missing value tokens.
	ErrTooFewValues = errors.New("too few values")
	// ErrBadNumber is wrapped by issues for tokens that are not numbers.
	ErrBadNumber = errors.New("not a number")
	// ErrBadTimestamp is wrapped by issues for malformed date/time pairs.
	ErrBadTimestamp = errors.New("bad timestamp")
)

// Numbers use '.' as decimal separator and may use exponent notation
// (3.963000e+003) regardless of the host locale; strconv is locale-free.

func parseFloat(tok string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(tok), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrBadNumber, tok)
	}
	return v, nil
}

// parseInt accepts plain integers and integral values written in float
// notation, e.g. "1.000000e+000".
func parseInt(tok string) (int, error) {
	tok = strings.TrimSpace(tok)
	if v, err := strconv.Atoi(tok); err == nil {
		return v, nil
	}
	f, err := parseFloat(tok)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %q", ErrBadNumber, tok)
	}
	return int(f), nil
}

func parseTimestamp(date, clock string) (time.Time, error) {
	t, err := time.Parse(TimestampLayout, date+" "+clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadTimestamp, date+" "+clock)
	}
	return t, nil
}

func need(values []string, n int) error {
	if len(values) < n {
		return fmt.Errorf("%w: want %d, got %d", ErrTooFewValues, n, len(values))
	}
	return nil
}

func floatPair(values []string) (float64, float64, error) {
	if err := need(values, 2); err != nil {
		return 0, 0, err
	}
	a, err := parseFloat(values[0])
	if err != nil {
		return 0, 0, err
	}
	b, err := parseFloat(values[1])
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

func intPair(values []string) ([2]int, error) {
	if err := need(values, 2); err != nil {
		return [2]int{}, err
	}
	a, err := parseInt(values[0])
	if err != nil {
		return [2]int{}, err
	}
	b, err := parseInt(values[1])
	if err != nil {
		return [2]int{}, err
	}
	return [2]int{a, b}, nil
}

// columns maps upper-cased column names to their position in a row.
type columns map[string]int

func newColumns(names []string) columns {
	c := make(columns, len(names))
	for i, name := range names {
		key := strings.ToUpper(name)
		if _, dup := c[key]; !dup {
			c[key] = i
		}
	}
	return c
}

func (c columns) token(row []string, name string) (string, bool) {
	i, ok := c[name]
	if !ok || i >= len(row) {
		return "", false
	}
	return row[i], true
}

// Int returns the column value, or 0 when the column is absent or the token
// is not a number.
func (c columns) Int(row []string, name string) int {
	tok, ok := c.token(row, name)
	if !ok {
		return 0
	}
	v, err := parseInt(tok)
	if err != nil {
		return 0
	}
	return v
}

// Float returns the column value, or 0 when the column is absent or the
// token is not a number.
func (c columns) Float(row []string, name string) float64 {
	tok, ok := c.token(row, name)
	if !ok {
		return 0
	}
	v, err := parseFloat(tok)
	if err != nil {
		return 0
	}
	return v
}
