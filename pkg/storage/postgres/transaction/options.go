package transaction

import (
	"errors"
	"fmt"
	"time"
)

type Option func(*manager)

func MaxAttempts(attempts int) Option {
	return func(m *manager) {
		m.maxAttempts = attempts
	}
}

func BaseRetryDelay(delay time.Duration) Option {
	return func(m *manager) {
		m.baseRetryDelay = delay
	}
}

func MaxRetryDelay(delay time.Duration) Option {
	return func(m *manager) {
		m.maxRetryDelay = delay
	}
}

func (m *manager) validate() error {
	if m.maxAttempts <= 0 {
		return errors.New("invalid maxAttempts: must be > 0")
	}

	if m.baseRetryDelay <= 0 {
		return errors.New("invalid base retry delay: must be > 0")
	}

	if m.maxRetryDelay <= 0 {
		return errors.New("invalid max retry delay: must be > 0")
	}

	if m.baseRetryDelay > m.maxRetryDelay {
		return errors.New("baseRetryDelay cannot exceed maxRetryDelay")
	}
	return nil
}

// HandleError annotates a failure inside a transactional unit of work
// with the operation and the stage that failed.
func HandleError(operation, stage string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %s: %w", operation, stage, err)
}
