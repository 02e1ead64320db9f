package domain

// Percent returns round(100 * part / whole) with halves rounded up.
// It is the single division guard for scores and progress: a non-positive
// whole yields 0 instead of dividing by zero.
func Percent(part, whole int) int {
	return roundDiv(100*part, whole)
}

// roundDiv returns n/d rounded half up for non-negative n, and 0 when d <= 0.
func roundDiv(n, d int) int {
	if d <= 0 || n <= 0 {
		return 0
	}
	return (2*n + d) / (2 * d)
}
