// Package segment turns detected silence intervals into cut directives.
//
// The package is the pure core of the service: every function is a
// deterministic transformation of its arguments, performs no I/O and holds no
// state between calls, so it is safe to invoke from any number of concurrent
// callers. All times are seconds.
package segment

import "fmt"

// Interval is a silent span in the coordinate space of the stream it was
// detected in. Start <= End.
type Interval struct {
	Start float64
	End   float64
}

// Duration returns the length of the interval in seconds.
func (iv Interval) Duration() float64 {
	return iv.End - iv.Start
}

// Contains reports whether t lies within [Start, End).
func (iv Interval) Contains(t float64) bool {
	return iv.Start <= t && t < iv.End
}

// Stream is one audio source: a total duration plus the silences detected in
// it, time ordered and non-overlapping.
type Stream struct {
	ID       string
	Duration float64
	Silences []Interval
}

// Directive instructs an executor to extract [Start, End) of the stream
// identified by StreamID into output track OutputIndex. Directives sharing an
// OutputIndex reconstruct one logical track when concatenated in emission
// order. A directive never has End <= Start.
type Directive struct {
	StreamID    string
	Start       float64
	End         float64
	OutputIndex int
}

// IntervalError reports a silence interval that violates the input contract:
// inverted, outside the stream bounds, or overlapping its predecessor.
type IntervalError struct {
	StreamID string
	Interval Interval
	Reason   string
}

func (e *IntervalError) Error() string {
	return fmt.Sprintf("segment: invalid silence interval [%.3f, %.3f] in stream %q: %s",
		e.Interval.Start, e.Interval.End, e.StreamID, e.Reason)
}

// ExhaustedStreamsError reports that the input streams ran out before every
// target duration was satisfied. The directives produced up to that point are
// still returned alongside the error; Unsatisfied counts the targets that
// received no audio or only part of their nominal length.
type ExhaustedStreamsError struct {
	Unsatisfied int
}

func (e *ExhaustedStreamsError) Error() string {
	return fmt.Sprintf("segment: streams exhausted with %d unsatisfied targets", e.Unsatisfied)
}

// validateSilences checks the caller side of the input contract for one
// stream: intervals must be well formed, inside [0, Duration], time ordered
// and disjoint.
func validateSilences(st Stream) error {
	prevEnd := 0.0
	for _, iv := range st.Silences {
		switch {
		case iv.Start > iv.End:
			return &IntervalError{StreamID: st.ID, Interval: iv, Reason: "start after end"}
		case iv.Start < 0 || iv.End > st.Duration:
			return &IntervalError{StreamID: st.ID, Interval: iv, Reason: "outside stream bounds"}
		case iv.Start < prevEnd:
			return &IntervalError{StreamID: st.ID, Interval: iv, Reason: "overlaps or precedes previous interval"}
		}
		prevEnd = iv.End
	}
	return nil
}
