package job

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/davranaff/coffee/internal/lib/email"
	"github.com/hibiken/asynq"
)

// UserCleaner removes accounts that never completed verification.
type UserCleaner interface {
	DeleteUnverifiedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// OrderCanceller cancels and restocks orders left in processing.
type OrderCanceller interface {
	CancelAbandoned(ctx context.Context, before time.Time) (int, error)
}

// Dependencies are the collaborators the task handlers call into.
type Dependencies struct {
	Email  email.Sender
	Users  UserCleaner
	Orders OrderCanceller
	Now    func() time.Time
}

// InitHandlers wires the handler dependencies. It must run before Start.
func (j *JobService) InitHandlers(deps Dependencies) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	j.deps = deps
}

func decode(t *asynq.Task, v any) error {
	if err := json.Unmarshal(t.Payload(), v); err != nil {
		// a malformed payload will not get better on retry
		return fmt.Errorf("failed to unmarshal %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
	}
	return nil
}

func (j *JobService) handleVerificationEmailTask(ctx context.Context, t *asynq.Task) error {
	var p VerificationEmailPayload
	if err := decode(t, &p); err != nil {
		return err
	}

	j.logger.Info().Str("type", "verification").Str("to", p.To).Msg("Processing verification email task")

	if err := j.deps.Email.SendVerificationEmail(ctx, p.To, p.FirstName, p.Code); err != nil {
		j.logger.Error().Str("type", "verification").Str("to", p.To).Err(err).Msg("Failed to send verification email")
		return err
	}

	j.logger.Info().Str("type", "verification").Str("to", p.To).Msg("Successfully sent verification email")
	return nil
}

func (j *JobService) handleOrderConfirmationEmailTask(ctx context.Context, t *asynq.Task) error {
	var p OrderConfirmationEmailPayload
	if err := decode(t, &p); err != nil {
		return err
	}

	if err := j.deps.Email.SendOrderConfirmationEmail(ctx, p.To, p.OrderConfirmationData); err != nil {
		j.logger.Error().Int64("order_id", p.OrderID).Str("to", p.To).Err(err).Msg("Failed to send order confirmation email")
		return err
	}

	j.logger.Info().Int64("order_id", p.OrderID).Str("to", p.To).Msg("Sent order confirmation email")
	return nil
}

func (j *JobService) handleOrderStatusEmailTask(ctx context.Context, t *asynq.Task) error {
	var p OrderStatusEmailPayload
	if err := decode(t, &p); err != nil {
		return err
	}

	if err := j.deps.Email.SendOrderStatusEmail(ctx, p.To, p.OrderStatusData); err != nil {
		j.logger.Error().Int64("order_id", p.OrderID).Str("status", p.Status).Err(err).Msg("Failed to send order status email")
		return err
	}

	j.logger.Info().Int64("order_id", p.OrderID).Str("status", p.Status).Msg("Sent order status email")
	return nil
}

func (j *JobService) handleCleanUnverifiedUsersTask(ctx context.Context, _ *asynq.Task) error {
	cutoff := j.deps.Now().Add(-j.jobs.UnverifiedUserTTL)

	deleted, err := j.deps.Users.DeleteUnverifiedBefore(ctx, cutoff)
	if err != nil {
		j.logger.Error().Err(err).Msg("Failed to clean unverified users")
		return err
	}

	j.logger.Info().Int64("deleted", deleted).Time("cutoff", cutoff).Msg("Cleaned unverified users")
	return nil
}

func (j *JobService) handleCancelAbandonedOrdersTask(ctx context.Context, _ *asynq.Task) error {
	before := j.deps.Now().Add(-j.jobs.AbandonedOrderTTL)

	cancelled, err := j.deps.Orders.CancelAbandoned(ctx, before)
	if err != nil {
		j.logger.Error().Err(err).Int("cancelled", cancelled).Msg("Failed to cancel abandoned orders")
		return err
	}

	j.logger.Info().Int("cancelled", cancelled).Time("before", before).Msg("Cancelled abandoned orders")
	return nil
}
