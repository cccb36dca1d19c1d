// Package mood implements sentiment scoring and time-bucketed aggregation
// of classified chat messages.
package mood

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Label is the discrete sentiment classification outcome. It is a closed
// three-variant enumeration; adding or renaming a label is a compile-time
// checked change.
type Label int

const (
	Positive Label = iota
	Negative
	Neutral
)

// classifierFloor is the lowest confidence the upstream model can emit for
// the POSITIVE and NEGATIVE classes, by construction of its decision
// boundary over three classes.
const classifierFloor = 0.333

// ParseLabel converts a classifier label string into a Label.
func ParseLabel(s string) (Label, error) {
	switch s {
	case "POSITIVE":
		return Positive, nil
	case "NEGATIVE":
		return Negative, nil
	case "NEUTRAL":
		return Neutral, nil
	}
	return Neutral, fmt.Errorf("unknown sentiment label %q", s)
}

func (l Label) String() string {
	switch l {
	case Positive:
		return "POSITIVE"
	case Negative:
		return "NEGATIVE"
	case Neutral:
		return "NEUTRAL"
	}
	return fmt.Sprintf("Label(%d)", int(l))
}

// MarshalJSON emits the label in its wire/string form.
func (l Label) MarshalJSON() ([]byte, error) {
	switch l {
	case Positive, Negative, Neutral:
		return []byte(`"` + l.String() + `"`), nil
	}
	return nil, fmt.Errorf("invalid label %d", int(l))
}

// UnmarshalJSON parses the string form, rejecting unknown labels.
func (l *Label) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseLabel(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Value implements driver.Valuer so labels are stored as their string form.
func (l Label) Value() (driver.Value, error) {
	switch l {
	case Positive, Negative, Neutral:
		return l.String(), nil
	}
	return nil, fmt.Errorf("invalid label %d", int(l))
}

// Scan implements sql.Scanner for reading labels back from the database.
func (l *Label) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Label", src)
	}

	parsed, err := ParseLabel(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// minMaxNormalize rescales value from [min,max] to [0,1].
func minMaxNormalize(value, min, max float64) float64 {
	return (value - min) / (max - min)
}

// Normalize converts a classification into a symmetric mood indicator in
// [-1,1] for charting. Confidence is rescaled from the classifier's
// [0.333,1] output domain; NEUTRAL is always 0.
//
// Confidence below 0.333 for POSITIVE or NEGATIVE violates the classifier
// contract and produces a value outside the documented range.
func Normalize(label Label, confidence float64) float64 {
	switch label {
	case Positive:
		return minMaxNormalize(confidence, classifierFloor, 1)
	case Negative:
		return -minMaxNormalize(confidence, classifierFloor, 1)
	case Neutral:
		return 0
	}
	return 0
}

// WeightedChatMood converts a classification into the 0-5 chat health score
// persisted with each message. This is a different scale and purpose than
// Normalize and the two are kept as distinct operations.
func WeightedChatMood(label Label, confidence float64) float64 {
	var weight float64
	switch label {
	case Positive:
		weight = confidence
	case Neutral:
		weight = 0.5 * confidence
	case Negative:
		weight = -confidence
	}
	return (weight + 1) * 2.5
}

// LabelValue is the unweighted +1/-1/0 encoding used by series aggregation
// and alert averaging. Independent of both Normalize and WeightedChatMood.
func LabelValue(label Label) float64 {
	switch label {
	case Positive:
		return 1
	case Negative:
		return -1
	case Neutral:
		return 0
	}
	return 0
}
