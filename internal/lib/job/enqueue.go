package job

import (
	"context"
	"fmt"

	"github.com/davranaff/coffee/internal/lib/email"
	"github.com/hibiken/asynq"
)

func (j *JobService) enqueue(ctx context.Context, task *asynq.Task, err error) error {
	if err != nil {
		return fmt.Errorf("failed to build task: %w", err)
	}

	info, err := j.Client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to enqueue %s: %w", task.Type(), err)
	}

	j.logger.Debug().
		Str("task", task.Type()).
		Str("task_id", info.ID).
		Str("queue", info.Queue).
		Msg("task enqueued")
	return nil
}

func (j *JobService) EnqueueVerificationEmail(ctx context.Context, to, firstName, code string) error {
	task, err := NewVerificationEmailTask(VerificationEmailPayload{To: to, FirstName: firstName, Code: code})
	return j.enqueue(ctx, task, err)
}

func (j *JobService) EnqueueOrderConfirmationEmail(ctx context.Context, to string, data email.OrderConfirmationData) error {
	task, err := NewOrderConfirmationEmailTask(OrderConfirmationEmailPayload{To: to, OrderConfirmationData: data})
	return j.enqueue(ctx, task, err)
}

func (j *JobService) EnqueueOrderStatusEmail(ctx context.Context, to string, data email.OrderStatusData) error {
	task, err := NewOrderStatusEmailTask(OrderStatusEmailPayload{To: to, OrderStatusData: data})
	return j.enqueue(ctx, task, err)
}
