package posture

import (
	"testing"

	"github.com/teslashibe/go-posture/pkg/landmark"
)

func eyes(ly, ry int) landmark.AnchorSet {
	return landmark.AnchorSet{LeftEye: landmark.Pt(100, ly), RightEye: landmark.Pt(140, ry)}
}

func TestEvaluate(t *testing.T) {
	baseline := eyes(200, 200)

	tests := []struct {
		name       string
		current    landmark.AnchorSet
		baseline   landmark.AnchorSet
		monitoring bool
		want       Decision
	}{
		{"one pixel drop", eyes(201, 200), baseline, true, BelowThreshold},
		{"raised head", eyes(199, 198), baseline, true, AboveOrAtBaseline},
		{"exactly at baseline", eyes(200, 200), baseline, true, AboveOrAtBaseline},
		{"one eye drops", eyes(195, 230), baseline, true, BelowThreshold},
		{"not monitoring", eyes(260, 260), baseline, false, NoOp},
		{"no face", landmark.AnchorSet{}, baseline, true, NoOp},
		{"no baseline", eyes(260, 260), landmark.AnchorSet{}, true, NoOp},
		{"one eye missing", landmark.AnchorSet{LeftEye: landmark.Pt(100, 260)}, baseline, true, NoOp},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Evaluate(tc.current, tc.baseline, tc.monitoring); got != tc.want {
				t.Errorf("Evaluate() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestMeasure_EarDrop(t *testing.T) {
	e := NewEvaluator(DefaultConfig())

	baseline := eyes(200, 200)
	baseline.LeftEar = landmark.Pt(60, 230)
	baseline.RightEar = landmark.Pt(180, 230)

	current := eyes(199, 199)
	current.LeftEar = landmark.Pt(60, 236)
	current.RightEar = landmark.Pt(180, 229)

	m := e.Measure(current, baseline, true)
	if m.Decision != BelowThreshold {
		t.Fatalf("decision = %v, want %v", m.Decision, BelowThreshold)
	}
	if m.EyeDrop != -1 || m.EarDrop != 6 || m.Drop != 6 {
		t.Errorf("drops = eye %d ear %d total %d, want -1 6 6", m.EyeDrop, m.EarDrop, m.Drop)
	}
}

func TestMeasure_MissingEarPairCountsAsZero(t *testing.T) {
	e := NewEvaluator(DefaultConfig())

	baseline := eyes(200, 200)
	baseline.LeftEar = landmark.Pt(60, 230)

	current := eyes(198, 198)
	current.RightEar = landmark.Pt(180, 300)

	m := e.Measure(current, baseline, true)
	if m.EarDrop != 0 {
		t.Errorf("EarDrop = %d, want 0", m.EarDrop)
	}
	// The zero from the missing pairs wins over the negative eye drop.
	if m.Drop != 0 || m.Decision != AboveOrAtBaseline {
		t.Errorf("got drop %d decision %v, want 0 %v", m.Drop, m.Decision, AboveOrAtBaseline)
	}
}

func TestEvaluator_Threshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.VerticalThreshold = 5
	e := NewEvaluator(cfg)

	if got := e.Evaluate(eyes(205, 200), eyes(200, 200), true); got != AboveOrAtBaseline {
		t.Errorf("drop equal to threshold = %v, want %v", got, AboveOrAtBaseline)
	}
	if got := e.Evaluate(eyes(206, 200), eyes(200, 200), true); got != BelowThreshold {
		t.Errorf("drop above threshold = %v, want %v", got, BelowThreshold)
	}
}

func TestDecision_String(t *testing.T) {
	if BelowThreshold.String() != "below_threshold" {
		t.Errorf("got %q", BelowThreshold.String())
	}
	if Decision(9).String() != "decision(9)" {
		t.Errorf("got %q", Decision(9).String())
	}
}

func TestDecision_Text(t *testing.T) {
	var d Decision
	if err := d.UnmarshalText([]byte("above_or_at_baseline")); err != nil || d != AboveOrAtBaseline {
		t.Errorf("UnmarshalText = %v, %v", d, err)
	}
	if err := d.UnmarshalText([]byte("slumped")); err == nil {
		t.Error("expected error for unknown decision")
	}
}
