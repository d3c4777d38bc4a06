package metrics

import "time"

// Recorder receives dispatch and fee estimation observations.
type Recorder interface {
	ObserveDispatch(skill, outcome string, d time.Duration)
	ObserveFeeEstimate(chain, status string, d time.Duration)
}

type Noop struct{}

func (Noop) ObserveDispatch(string, string, time.Duration)    {}
func (Noop) ObserveFeeEstimate(string, string, time.Duration) {}
