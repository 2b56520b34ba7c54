package tasks

const (
	MinDurationSeconds = 120
	MaxDurationSeconds = 480
)

// IsDurationValid reports whether a video of d seconds should be ingested.
//
// Unknown (zero) and negative durations are rejected.
func IsDurationValid(d int) bool {
	if d <= 0 {
		return false
	}
	return d >= MinDurationSeconds && d <= MaxDurationSeconds
}
