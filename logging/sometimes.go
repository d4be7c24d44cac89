package logging

import "golang.org/x/time/rate"

// Sometimes wraps rate.Sometimes to throttle a noisy warning or error
// site (e.g. one hit per sampling-loop iteration) down to at most one
// message per interval, so a planner call that draws thousands of
// samples per second doesn't flood the log.
type Sometimes struct {
	logger Logger
	inner  *rate.Sometimes
}

// NewSometimes returns a throttle that fires at most once per interval
// worth of calls. Interval is interpreted by rate.Sometimes as a count,
// not a duration, matching its upstream contract: the first call logs
// and then one of every `every` calls does, so every=1 logs every call
// and every=3 logs calls 1, 4, 7, ...
func NewSometimes(logger Logger, every int) *Sometimes {
	if every < 1 {
		every = 1
	}
	return &Sometimes{logger: logger, inner: &rate.Sometimes{Every: every}}
}

// Warnf logs at WARN level, subject to the throttle.
func (s *Sometimes) Warnf(template string, args ...interface{}) {
	s.inner.Do(func() { s.logger.Warnf(template, args...) })
}

// Errorf logs at ERROR level, subject to the throttle.
func (s *Sometimes) Errorf(template string, args ...interface{}) {
	s.inner.Do(func() { s.logger.Errorf(template, args...) })
}
