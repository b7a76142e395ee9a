package segment

// walker carries the cursor state of the multi-stream walk: which stream is
// current and how far into it the previous cut reached. The position resets
// to zero whenever the walk advances to the next stream.
type walker struct {
	streams []Stream
	idx     int
	pos     float64
}

func (w *walker) done() bool {
	return w.idx >= len(w.streams)
}

func (w *walker) stream() Stream {
	return w.streams[w.idx]
}

func (w *walker) advance() {
	w.idx++
	w.pos = 0
}

// SplitByTargets carves an ordered list of known track durations out of an
// ordered list of streams, rolling over stream boundaries as needed. Each
// target owns exactly one OutputIndex; a track that straddles a stream
// boundary or a silence gap is emitted as several directives sharing that
// index.
//
// Published track lengths are approximate while the detected silences are
// ground truth for where one track ends, so a cut that would land inside or
// across a silence is pulled back to the silence start and the walk resumes
// after the gap without charging the skipped silence against the target. The
// correction only ever shortens a directive, never extends it past the
// target's nominal length.
//
// Targets with zero or negative duration emit nothing but still consume their
// OutputIndex, keeping later indexes aligned with the caller's track list.
// Zero-length streams are skipped. If the streams run out before every target
// is satisfied, the directives produced so far are returned together with an
// ExhaustedStreamsError; callers can treat the output as a usable partial
// result. An IntervalError on any stream aborts the whole run, since streams
// are consumed strictly in order.
func SplitByTargets(streams []Stream, targets []float64) ([]Directive, error) {
	for _, st := range streams {
		if err := validateSilences(st); err != nil {
			return nil, err
		}
	}

	var out []Directive
	w := walker{streams: streams}
	unsatisfied := 0

	for idx, target := range targets {
		remaining := target
		for remaining > 0 && !w.done() {
			st := w.stream()
			if w.pos >= st.Duration {
				w.advance()
				continue
			}
			// Never start a cut inside a silence: resume after the gap.
			if sil, ok := silenceAt(st.Silences, w.pos); ok {
				w.pos = sil.End
				if w.pos >= st.Duration {
					w.advance()
				}
				continue
			}

			end := snapToSilence(st.Silences, w.pos, min(st.Duration, w.pos+remaining))
			out = append(out, Directive{
				StreamID:    st.ID,
				Start:       w.pos,
				End:         end,
				OutputIndex: idx,
			})
			remaining -= end - w.pos
			w.pos = end
			if w.pos >= st.Duration {
				w.advance()
			}
		}
		if remaining > 0 {
			unsatisfied++
		}
	}

	if unsatisfied > 0 {
		return out, &ExhaustedStreamsError{Unsatisfied: unsatisfied}
	}
	return out, nil
}
