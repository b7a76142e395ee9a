package segment

// SplitStream cuts a single stream at its silence gaps, emitting one directive
// per non-silent run that is long enough to be a track. The silences
// themselves are discarded; no directive ever covers one.
//
// The run before the first silence is always kept when non-empty: recordings
// routinely begin mid-track and the opening audio belongs to the first song
// regardless of its length. Every later run, including the one after the final
// silence, must be at least minTrack seconds long. OutputIndex increases by
// one per emitted directive.
//
// Returns an IntervalError if the silence list violates the input contract.
func SplitStream(st Stream, minTrack float64) ([]Directive, error) {
	if err := validateSilences(st); err != nil {
		return nil, err
	}

	var out []Directive
	cursor := 0.0
	for _, sil := range st.Silences {
		run := sil.Start - cursor
		if run > 0 && (cursor == 0 || run >= minTrack) {
			out = append(out, Directive{
				StreamID:    st.ID,
				Start:       cursor,
				End:         sil.Start,
				OutputIndex: len(out),
			})
		}
		cursor = sil.End
	}

	// Trailing audio after the last silence. Unlike the head of the stream
	// this is gated on minTrack even when no silences were found at all.
	if run := st.Duration - cursor; run > 0 && run >= minTrack {
		out = append(out, Directive{
			StreamID:    st.ID,
			Start:       cursor,
			End:         st.Duration,
			OutputIndex: len(out),
		})
	}
	return out, nil
}
