// SPDX-FileCopyrightText: 2026 The tripmesh-go Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package agent

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/hashicorp/go-multierror"
)

// RetryPolicy bounds the attempts of an operation and the pause between two of them.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

// DefaultStartPolicy tries to start an agent three times, two seconds apart.
var DefaultStartPolicy = RetryPolicy{
	Attempts: 3,
	Backoff:  2 * time.Second,
}

// Starter is anything which can be started, e.g., a Runtime or an agent role built on top of it.
type Starter interface {
	Start() error
}

// StartWithRetry calls Start until it succeeds, the attempts are exhausted, or the context is done.
// All failed attempts' errors are returned together.
func StartWithRetry(ctx context.Context, s Starter, policy RetryPolicy) error {
	attempts := policy.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var errs error
	for i := 1; i <= attempts; i++ {
		err := s.Start()
		if err == nil {
			return nil
		}

		errs = multierror.Append(errs, err)
		log.WithFields(log.Fields{
			"attempt":  i,
			"attempts": attempts,
			"error":    err,
		}).Warn("Starting agent failed")

		if i == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return multierror.Append(errs, ctx.Err())
		case <-time.After(policy.Backoff):
		}
	}

	return errs
}
