package tablet

import (
	"encoding/json"
	"math"
	"strconv"
)

// NullInt is a nullable integer in the shape of sql.NullInt64.
// The zero value is null.
type NullInt struct {
	Int64 int64
	Valid bool
}

// Int returns a valid NullInt holding n.
func Int(n int64) NullInt {
	return NullInt{Int64: n, Valid: true}
}

// String renders the value, or "-" when null.
func (n NullInt) String() string {
	if !n.Valid {
		return "-"
	}
	return strconv.FormatInt(n.Int64, 10)
}

// MarshalJSON encodes null or the integer.
func (n NullInt) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(n.Int64, 10)), nil
}

// UnmarshalJSON accepts null or an integer.
func (n *NullInt) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = NullInt{}
		return nil
	}
	var v int64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Int(v)
	return nil
}

// LineNumber is a nullable logical line number.
//
// Line numbers are fractional after a broken region (0.01 per broken run), so
// the value is carried in exact hundredths. Arithmetic on hundredths keeps
// values like 1.03 exact instead of accumulating binary rounding error.
type LineNumber struct {
	Hundredths int64
	Valid      bool
}

// Line returns the whole line number n.
func Line(n int64) LineNumber {
	return LineNumber{Hundredths: n * 100, Valid: true}
}

// LineFromHundredths returns the line number h/100.
func LineFromHundredths(h int64) LineNumber {
	return LineNumber{Hundredths: h, Valid: true}
}

// LineFromFloat converts a stored REAL value, rounding to the nearest hundredth.
func LineFromFloat(f float64) LineNumber {
	return LineNumber{Hundredths: int64(math.Round(f * 100)), Valid: true}
}

// Float64 returns the line number as a float. Null lines return 0.
func (l LineNumber) Float64() float64 {
	return float64(l.Hundredths) / 100
}

// IsWhole reports whether the line number is a valid integer line.
func (l LineNumber) IsWhole() bool {
	return l.Valid && l.Hundredths%100 == 0
}

// String renders "-" for null, "7" for whole lines and "1.03" otherwise.
func (l LineNumber) String() string {
	if !l.Valid {
		return "-"
	}
	if l.Hundredths%100 == 0 {
		return strconv.FormatInt(l.Hundredths/100, 10)
	}
	return strconv.FormatFloat(l.Float64(), 'f', 2, 64)
}

// MarshalJSON encodes null or the line number as a JSON number.
func (l LineNumber) MarshalJSON() ([]byte, error) {
	if !l.Valid {
		return []byte("null"), nil
	}
	return []byte(l.String()), nil
}

// UnmarshalJSON accepts null or a JSON number.
func (l *LineNumber) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*l = LineNumber{}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*l = LineFromFloat(f)
	return nil
}
