package job

import (
	"encoding/json"
	"time"

	"github.com/davranaff/coffee/internal/lib/email"
	"github.com/hibiken/asynq"
)

const (
	TaskVerificationEmail      = "email:verification"
	TaskOrderConfirmationEmail = "email:order_confirmation"
	TaskOrderStatusEmail       = "email:order_status"
	TaskCleanUnverifiedUsers   = "users:clean_unverified"
	TaskCancelAbandonedOrders  = "orders:cancel_abandoned"
)

type VerificationEmailPayload struct {
	To        string `json:"to"`
	FirstName string `json:"first_name"`
	Code      string `json:"code"`
}

type OrderConfirmationEmailPayload struct {
	To string `json:"to"`
	email.OrderConfirmationData
}

type OrderStatusEmailPayload struct {
	To string `json:"to"`
	email.OrderStatusData
}

func newEmailTask(taskType string, payload any, queue string) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		taskType,
		data,
		asynq.MaxRetry(3),
		asynq.Queue(queue),
		asynq.Timeout(30*time.Second),
	), nil
}

// NewVerificationEmailTask goes to the critical queue: the user cannot log in
// before verifying.
func NewVerificationEmailTask(p VerificationEmailPayload) (*asynq.Task, error) {
	return newEmailTask(TaskVerificationEmail, p, QueueCritical)
}

func NewOrderConfirmationEmailTask(p OrderConfirmationEmailPayload) (*asynq.Task, error) {
	return newEmailTask(TaskOrderConfirmationEmail, p, QueueDefault)
}

func NewOrderStatusEmailTask(p OrderStatusEmailPayload) (*asynq.Task, error) {
	return newEmailTask(TaskOrderStatusEmail, p, QueueDefault)
}

// Maintenance tasks carry no payload; the cutoff is computed when they run.

func NewCleanUnverifiedUsersTask() *asynq.Task {
	return asynq.NewTask(TaskCleanUnverifiedUsers, nil,
		asynq.Queue(QueueLow),
		asynq.MaxRetry(1),
		asynq.Timeout(5*time.Minute),
	)
}

func NewCancelAbandonedOrdersTask() *asynq.Task {
	return asynq.NewTask(TaskCancelAbandonedOrders, nil,
		asynq.Queue(QueueLow),
		asynq.MaxRetry(1),
		asynq.Timeout(5*time.Minute),
	)
}
