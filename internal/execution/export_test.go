package execution

import "time"

// SetPollCadenceForTest shrinks the direct-job poll loop so tests never
// wait on production timing.
func (c *Coordinator) SetPollCadenceForTest(interval time.Duration, attempts uint64) {
	c.pollInterval = interval
	c.pollAttempts = attempts
}
