package service

// Recorder receives counters about authentication. *metrics.Metrics implements it.
type Recorder interface {
	AuthRejected(reason string)
	LoginOutcome(outcome string)
	SessionsPurged(n int64)
}

type noopRecorder struct{}

func (noopRecorder) AuthRejected(string)  {}
func (noopRecorder) LoginOutcome(string)  {}
func (noopRecorder) SessionsPurged(int64) {}

func orNoop(r Recorder) Recorder {
	if r == nil {
		return noopRecorder{}
	}
	return r
}

const (
	loginSuccess            = "success"
	loginInvalidCredentials = "invalid_credentials"
	loginError              = "error"
)
