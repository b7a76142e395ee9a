package segment

// silenceAt returns the silence interval containing t, if any. Silences are
// time ordered, so the scan stops at the first interval starting after t.
func silenceAt(silences []Interval, t float64) (Interval, bool) {
	for _, sil := range silences {
		if sil.Contains(t) {
			return sil, true
		}
		if sil.Start > t {
			break
		}
	}
	return Interval{}, false
}

// snapToSilence corrects a proposed cut span against the detected silences.
// If (start, end) would cross into a silence, or end would land strictly
// inside one, the cut is pulled back to where that silence begins. start must
// not itself lie inside a silence. The correction only ever shortens the span;
// when end coincides exactly with a silence start no correction is needed.
func snapToSilence(silences []Interval, start, end float64) float64 {
	for _, sil := range silences {
		if sil.Start > start && sil.Start < end {
			return sil.Start
		}
		if sil.Start >= end {
			break
		}
	}
	return end
}
