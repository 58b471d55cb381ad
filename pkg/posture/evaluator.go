package posture

import (
	"fmt"

	"github.com/teslashibe/go-posture/pkg/landmark"
)

// Decision is the per-frame verdict of the evaluator.
type Decision int

const (
	// NoOp means no evaluation happened (not monitoring, or eyes missing).
	NoOp Decision = iota
	// BelowThreshold means the head dropped below the baseline.
	BelowThreshold
	// AboveOrAtBaseline means posture is acceptable.
	AboveOrAtBaseline
)

var decisionNames = [...]string{"noop", "below_threshold", "above_or_at_baseline"}

func (d Decision) String() string {
	if d < 0 || int(d) >= len(decisionNames) {
		return fmt.Sprintf("decision(%d)", int(d))
	}
	return decisionNames[d]
}

// MarshalText encodes the decision by name.
func (d Decision) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes a decision name.
func (d *Decision) UnmarshalText(b []byte) error {
	for i, name := range decisionNames {
		if name == string(b) {
			*d = Decision(i)
			return nil
		}
	}
	return fmt.Errorf("unknown decision %q", b)
}

// Measurement is a decision together with the drops behind it.
// Drops are in display pixels; positive means lower than the baseline.
type Measurement struct {
	Decision Decision `json:"decision"`
	EyeDrop  int      `json:"eye_drop"`
	EarDrop  int      `json:"ear_drop"`
	Drop     int      `json:"drop"`
}

// Evaluator compares anchors against a baseline.
type Evaluator struct {
	// Threshold is the drop, in pixels, that must be exceeded.
	Threshold float64
}

// NewEvaluator returns an evaluator using the configured threshold.
func NewEvaluator(cfg Config) Evaluator {
	return Evaluator{Threshold: cfg.VerticalThreshold}
}

// Evaluate returns the decision for one sample using the default threshold.
func Evaluate(current, baseline landmark.AnchorSet, monitoring bool) Decision {
	return Evaluator{Threshold: DefaultVerticalThreshold}.Evaluate(current, baseline, monitoring)
}

// Evaluate returns the decision for one sample.
func (e Evaluator) Evaluate(current, baseline landmark.AnchorSet, monitoring bool) Decision {
	return e.Measure(current, baseline, monitoring).Decision
}

// Measure computes the drops and the decision for one sample.
func (e Evaluator) Measure(current, baseline landmark.AnchorSet, monitoring bool) Measurement {
	if !monitoring || !baseline.HasEyes() || !current.HasEyes() {
		return Measurement{Decision: NoOp}
	}

	m := Measurement{
		EyeDrop: max(
			current.LeftEye.Y-baseline.LeftEye.Y,
			current.RightEye.Y-baseline.RightEye.Y,
		),
		EarDrop: max(
			pairDrop(current.LeftEar, baseline.LeftEar),
			pairDrop(current.RightEar, baseline.RightEar),
		),
	}
	m.Drop = max(m.EyeDrop, m.EarDrop)

	if float64(m.Drop) > e.Threshold {
		m.Decision = BelowThreshold
	} else {
		m.Decision = AboveOrAtBaseline
	}
	return m
}

// pairDrop is the vertical drop of one anchor, or 0 when either side is missing.
func pairDrop(current, baseline *landmark.Point) int {
	if current == nil || baseline == nil {
		return 0
	}
	return current.Y - baseline.Y
}
