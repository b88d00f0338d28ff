package action

import (
	"context"
	"time"

	"github.com/melvorminer/melvorminer/internal/utils"
)

const (
	defaultPollInterval = time.Second
	defaultTimeout      = 15 * time.Second
)

// WaitForCondition polls until condition returns true, the timeout is reached or condition fails.
// Returns true if the condition was met, false if the timeout occurred.
func WaitForCondition(ctx context.Context, sleep utils.SleepFunc, condition func() (bool, error), timeout, pollInterval time.Duration) (bool, error) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	if sleep == nil {
		sleep = utils.Sleep
	}

	var elapsed time.Duration
	for elapsed < timeout {
		if err := sleep(ctx, pollInterval); err != nil {
			return false, err
		}
		elapsed += pollInterval

		ok, err := condition()
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}

	return false, nil
}
