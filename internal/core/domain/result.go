package domain

// PlayResult describes the outcome of a playback request. Failures are
// carried here as data with a display-ready message, never as errors
// thrown across the core boundary.
type PlayResult struct {
	Success    bool
	Message    string
	FirstTrack string // "Name – Artist" of the first queued track
	TrackCount int
	QueriesRun []string
}

// Failure builds an unsuccessful result with a display message.
func Failure(message string, queries []string) PlayResult {
	return PlayResult{Success: false, Message: message, QueriesRun: queries}
}
