// Package progress computes how far a project has moved through its
// approval workflow.
package progress

// Percent returns the completion percentage for a sequence of step flags,
// in [0, 100]. An empty sequence yields 0.
func Percent(completed []bool) float64 {
	if len(completed) == 0 {
		return 0
	}
	done := 0
	for _, c := range completed {
		if c {
			done++
		}
	}
	return float64(done) / float64(len(completed)) * 100
}
