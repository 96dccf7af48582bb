package scheduler

import "errors"

var (
	// ErrSchedulerRunning is returned when registering jobs after Start
	ErrSchedulerRunning = errors.New("scheduler is already running")

	// ErrDuplicateJob is returned when two jobs share a name
	ErrDuplicateJob = errors.New("job already registered")

	// ErrInvalidJob is returned for jobs without a name, schedule or function
	ErrInvalidJob = errors.New("invalid job definition")

	// ErrJobNotFound is returned by RunNow for unknown job names
	ErrJobNotFound = errors.New("job not found")
)
