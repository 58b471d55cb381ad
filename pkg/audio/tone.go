// Package audio synthesizes and plays the posture alert tone.
package audio

import (
	"math"
	"time"
)

// Step switches the oscillator to Frequency at offset At.
type Step struct {
	At        time.Duration
	Frequency float64
}

// Tone is a sine tone with a stepped frequency schedule and an exponential
// gain ramp from StartGain to EndGain over Duration.
type Tone struct {
	Steps     []Step
	Duration  time.Duration
	StartGain float64
	EndGain   float64
}

// AlertChirp is the alert sound: 800 Hz, 1200 Hz after 100 ms, back to
// 800 Hz after 200 ms, fading from 0.3 to 0.01 over half a second.
func AlertChirp() Tone {
	return Tone{
		Steps: []Step{
			{At: 0, Frequency: 800},
			{At: 100 * time.Millisecond, Frequency: 1200},
			{At: 200 * time.Millisecond, Frequency: 800},
		},
		Duration:  500 * time.Millisecond,
		StartGain: 0.3,
		EndGain:   0.01,
	}
}

// FrequencyAt returns the scheduled frequency at offset t.
func (t Tone) FrequencyAt(at time.Duration) float64 {
	f := 0.0
	for _, s := range t.Steps {
		if s.At > at {
			break
		}
		f = s.Frequency
	}
	return f
}

// GainAt returns the envelope gain at offset t.
func (t Tone) GainAt(at time.Duration) float64 {
	if t.Duration <= 0 || t.StartGain <= 0 || t.EndGain <= 0 {
		return t.StartGain
	}
	frac := min(max(float64(at)/float64(t.Duration), 0), 1)
	return t.StartGain * math.Pow(t.EndGain/t.StartGain, frac)
}

// Render synthesizes the tone as mono PCM16 at sampleRate.
func (t Tone) Render(sampleRate int) []int16 {
	if sampleRate <= 0 || t.Duration <= 0 {
		return nil
	}

	n := int(t.Duration.Seconds() * float64(sampleRate))
	out := make([]int16, n)
	osc := Oscillator{SampleRate: sampleRate}

	for i := range out {
		at := time.Duration(float64(i) / float64(sampleRate) * float64(time.Second))
		osc.Frequency = t.FrequencyAt(at)
		v := osc.Next() * t.GainAt(at)
		out[i] = int16(math.Round(v * math.MaxInt16))
	}
	return out
}

// Oscillator is a phase-continuous sine generator.
type Oscillator struct {
	SampleRate int
	Frequency  float64

	phase float64
}

// Next returns the next sample in [-1, 1].
func (o *Oscillator) Next() float64 {
	v := math.Sin(o.phase)
	o.phase += 2 * math.Pi * o.Frequency / float64(o.SampleRate)
	if o.phase >= 2*math.Pi {
		o.phase -= 2 * math.Pi
	}
	return v
}
