package segment

// Chunk is the silence analysis of one piece of a longer recording that was
// analyzed in fixed-size chunks: the chunk's length and the silences detected
// within it, in chunk-local coordinates.
type Chunk struct {
	Duration float64
	Silences []Interval
}

// seamState tracks whether the previous chunk ended inside an open silence
// whose true end is not yet known.
type seamState int

const (
	seamIdle seamState = iota
	seamPending
)

// StitchSilences merges per-chunk silence analyses into a single interval list
// in the coordinates of the original recording. A silence spanning a chunk
// seam is detected as two touching intervals, one ending at the chunk's end
// and one starting at offset zero of the next chunk; those are merged back
// into one. A merge stays provisional while the silence keeps running to the
// end of each chunk, and is finalized as soon as a chunk contributes audio
// after it (or the chunks run out).
func StitchSilences(chunks []Chunk) []Interval {
	var (
		out     []Interval
		pending Interval
	)
	offset := 0.0
	state := seamIdle

	flush := func() {
		if state == seamPending {
			out = append(out, pending)
			state = seamIdle
		}
	}

	for _, ch := range chunks {
		rest := make([]Interval, 0, len(ch.Silences))
		for _, sil := range ch.Silences {
			rest = append(rest, Interval{Start: offset + sil.Start, End: offset + sil.End})
		}

		if state == seamPending && len(rest) > 0 && rest[0].Start == offset {
			// The open silence continues across the seam: extend it and
			// swallow the chunk-local duplicate.
			pending.End = rest[0].End
			rest = rest[1:]
		}

		chunkEnd := offset + ch.Duration
		if state == seamPending && len(rest) == 0 && pending.End == chunkEnd {
			// Whole remainder of this chunk is silent too; still open.
			offset = chunkEnd
			continue
		}

		flush()
		if n := len(rest); n > 0 && rest[n-1].End == chunkEnd {
			pending = rest[n-1]
			rest = rest[:n-1]
			state = seamPending
		}
		out = append(out, rest...)
		offset = chunkEnd
	}

	flush()
	return out
}
