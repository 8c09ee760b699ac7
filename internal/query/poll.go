package query

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/sethvargo/go-retry"

	"athenaq/internal/config"
	"athenaq/internal/domain"
)

// PollPolicy controls how Wait checks a submitted query for completion.
//
// The zero MaxAttempts and false DetectFailure reproduce the historical
// behavior: every failed readiness check is retried forever, so a query the
// service marks FAILED keeps the caller waiting until ctx ends.
type PollPolicy struct {
	InitialDelay  time.Duration // before the first check
	RetryDelay    time.Duration // between checks, constant and without jitter
	MaxAttempts   int           // 0 means unbounded
	DetectFailure bool          // read the execution state and stop on FAILED/CANCELLED
}

// DefaultPollPolicy returns the 3s/10s unbounded cadence.
func DefaultPollPolicy() PollPolicy {
	return PollPolicy{
		InitialDelay: config.DefaultPollInitialDelay,
		RetryDelay:   config.DefaultPollRetryDelay,
	}
}

func (p PollPolicy) withDefaults() PollPolicy {
	if p.RetryDelay <= 0 {
		p.RetryDelay = config.DefaultPollRetryDelay
	}
	if p.InitialDelay < 0 {
		p.InitialDelay = 0
	}
	if p.MaxAttempts < 0 {
		p.MaxAttempts = 0
	}
	return p
}

func (p PollPolicy) backoff() retry.Backoff {
	b := retry.NewConstant(p.RetryDelay)
	if p.MaxAttempts > 0 {
		b = retry.WithMaxRetries(uint64(p.MaxAttempts-1), b)
	}
	return b
}

// Wait blocks until the results of handle can be read. Readiness check
// failures are retried per the session's PollPolicy; ctx ending is the only
// other way out of an unbounded policy.
func (s *Session) Wait(ctx context.Context, handle domain.ExecutionHandle) error {
	id := handle.ExecutionID
	if err := sleep(ctx, s.poll.InitialDelay); err != nil {
		return fmt.Errorf("wait for query %s: %w", id, err)
	}

	attempt := 0
	err := retry.Do(ctx, s.poll.backoff(), func(ctx context.Context) error {
		attempt++
		err := s.checkReady(ctx, id, attempt)
		if err == nil {
			return nil
		}
		if domain.IsTransient(err) {
			s.logger.Debug("query not ready", "execution_id", id, "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return err
	})
	switch {
	case err == nil:
		s.logger.Info("query finished", "execution_id", id, "attempts", attempt)
		return nil
	case s.poll.MaxAttempts > 0 && domain.IsTransient(err):
		return &domain.PollExhaustedError{ExecutionID: id, Attempts: attempt, Err: err}
	case ctx.Err() != nil:
		return fmt.Errorf("wait for query %s: %w", id, err)
	default:
		return err
	}
}

// checkReady performs one poll attempt. Errors that should be retried are
// returned as *domain.PollingTransientError.
func (s *Session) checkReady(ctx context.Context, id string, attempt int) error {
	if s.poll.DetectFailure {
		state, reason, err := s.executionState(ctx, id)
		if err != nil {
			return &domain.PollingTransientError{ExecutionID: id, Attempt: attempt, Err: err}
		}
		switch state {
		case domain.ExecutionStateFailed, domain.ExecutionStateCancelled:
			return &domain.QueryFailedError{ExecutionID: id, State: state, Reason: reason}
		case domain.ExecutionStateSucceeded:
		default:
			return &domain.PollingTransientError{
				ExecutionID: id,
				Attempt:     attempt,
				Err:         fmt.Errorf("query is %s", state),
			}
		}
	}

	_, err := s.client.GetQueryResults(ctx, &athena.GetQueryResultsInput{
		QueryExecutionId: aws.String(id),
		MaxResults:       aws.Int32(1),
	})
	if err != nil {
		return &domain.PollingTransientError{ExecutionID: id, Attempt: attempt, Err: err}
	}
	return nil
}

func (s *Session) executionState(ctx context.Context, id string) (domain.ExecutionState, string, error) {
	out, err := s.client.GetQueryExecution(ctx, &athena.GetQueryExecutionInput{
		QueryExecutionId: aws.String(id),
	})
	if err != nil {
		return "", "", err
	}
	if out.QueryExecution == nil || out.QueryExecution.Status == nil {
		return "", "", fmt.Errorf("query %s has no status", id)
	}
	status := out.QueryExecution.Status
	return domain.ExecutionState(status.State), aws.ToString(status.StateChangeReason), nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
