// SPDX-FileCopyrightText: 2026 The tripmesh-go Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package agent

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
)

// flakyStarter fails until its failures are used up.
type flakyStarter struct {
	failures int
	calls    int
}

func (fs *flakyStarter) Start() error {
	fs.calls++
	if fs.calls <= fs.failures {
		return fmt.Errorf("attempt %d failed", fs.calls)
	}
	return nil
}

func TestStartWithRetrySucceeds(t *testing.T) {
	fs := &flakyStarter{failures: 2}
	policy := RetryPolicy{Attempts: 3, Backoff: time.Millisecond}

	if err := StartWithRetry(context.Background(), fs, policy); err != nil {
		t.Fatal(err)
	} else if fs.calls != 3 {
		t.Fatalf("expected 3 calls, got %d", fs.calls)
	}
}

func TestStartWithRetryExhausted(t *testing.T) {
	fs := &flakyStarter{failures: 10}
	policy := RetryPolicy{Attempts: 3, Backoff: time.Millisecond}

	err := StartWithRetry(context.Background(), fs, policy)
	if err == nil {
		t.Fatal("exhausted retries did not error")
	} else if fs.calls != 3 {
		t.Fatalf("expected 3 calls, got %d", fs.calls)
	}

	var merr *multierror.Error
	if !errors.As(err, &merr) || len(merr.Errors) != 3 {
		t.Fatalf("expected three aggregated errors, got %v", err)
	}
}

func TestStartWithRetryCancelled(t *testing.T) {
	fs := &flakyStarter{failures: 10}
	policy := RetryPolicy{Attempts: 3, Backoff: time.Hour}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := StartWithRetry(ctx, fs, policy)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	} else if fs.calls != 1 {
		t.Fatalf("expected 1 call, got %d", fs.calls)
	}
}
