package findings

// Intensity maps a score onto the 0-5 indicator scale: 6 -> 1 ... 10 -> 5.
// Absent scores and scores of 5 or less map to 0. Scores above 10 are clamped.
func Intensity(s Score) int {
	if !s.Valid {
		return 0
	}
	return max(0, min(MaxIntensity, s.Value-intensityOffset))
}

// Significant reports whether a finding with this score is kept.
func Significant(s Score) bool { return Intensity(s) > 0 }

// outOfRange flags scores the pattern accepted although they exceed the scale.
func outOfRange(s Score) bool { return s.Valid && s.Value > MaxScore }
