package scheduler

import "errors"

var (
	// ErrInvalidConfig is returned when the cron expression or timeouts are unusable
	ErrInvalidConfig = errors.New("invalid scheduler configuration")

	// ErrLockNotObtained is returned when another instance holds the job lock
	ErrLockNotObtained = errors.New("job lock held by another runner")
)
