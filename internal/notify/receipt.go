// Package notify delivers sale receipts to customers by email through the
// asynq task queue.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/noah-isme/vetpos/internal/checkout"
	"github.com/noah-isme/vetpos/internal/common"
	"github.com/noah-isme/vetpos/internal/obs"
)

// TypeReceiptEmail is the asynq task type for receipt emails.
const TypeReceiptEmail = "receipt:email"

// ReceiptPayload is the task body. The receipt is rendered at enqueue time so
// the worker needs no access to the sale store.
type ReceiptPayload struct {
	SaleID  string `json:"saleId"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewReceiptTask builds the email task for receipt.
func NewReceiptTask(to string, receipt checkout.Receipt) (*asynq.Task, error) {
	to = strings.TrimSpace(to)
	if to == "" {
		return nil, errors.New("receipt recipient required")
	}
	payload, err := json.Marshal(ReceiptPayload{
		SaleID:  receipt.Sale.ID,
		To:      to,
		Subject: receipt.Subject(),
		Body:    receipt.Text(),
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeReceiptEmail, payload), nil
}

// TaskEnqueuer is satisfied by *asynq.Client.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// AsynqReceipts implements checkout.ReceiptQueue on asynq.
type AsynqReceipts struct {
	Client   TaskEnqueuer
	Queue    string
	MaxRetry int
}

// EnqueueReceipt implements checkout.ReceiptQueue. The sale id is the task id
// so a sale is queued at most once.
func (q AsynqReceipts) EnqueueReceipt(ctx context.Context, to string, receipt checkout.Receipt) error {
	task, err := NewReceiptTask(to, receipt)
	if err != nil {
		return err
	}
	opts := []asynq.Option{asynq.TaskID("receipt:" + receipt.Sale.ID), asynq.Timeout(30 * time.Second)}
	if q.Queue != "" {
		opts = append(opts, asynq.Queue(q.Queue))
	}
	if q.MaxRetry > 0 {
		opts = append(opts, asynq.MaxRetry(q.MaxRetry))
	}
	if _, err := q.Client.EnqueueContext(ctx, task, opts...); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return nil
		}
		return fmt.Errorf("enqueue receipt %s: %w", receipt.Sale.ID, err)
	}
	return nil
}

// SentGuard records which receipts were already delivered.
type SentGuard interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// ReceiptMailer sends receipt emails. It is the asynq handler for
// TypeReceiptEmail.
type ReceiptMailer struct {
	Mail   common.EmailSender
	Guard  SentGuard
	Logger zerolog.Logger
}

// ProcessTask implements asynq.Handler.
func (m ReceiptMailer) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var p ReceiptPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("decode receipt payload: %v: %w", err, asynq.SkipRetry)
	}
	return m.Send(ctx, p)
}

// Send delivers p once. A failed send releases the guard so a retry can
// deliver it.
func (m ReceiptMailer) Send(ctx context.Context, p ReceiptPayload) error {
	if m.Mail == nil {
		return errors.New("receipt mailer: email sender not configured")
	}
	key := "receipt:sent:" + p.SaleID
	if m.Guard != nil {
		ok, err := m.Guard.Acquire(ctx, key, 7*24*time.Hour)
		if err != nil {
			return err
		}
		if !ok {
			m.Logger.Debug().Str("sale_id", p.SaleID).Msg("receipt_already_sent")
			record("duplicate")
			return nil
		}
	}
	if err := m.Mail.Send(p.To, p.Subject, p.Body); err != nil {
		if m.Guard != nil {
			_ = m.Guard.Release(ctx, key)
		}
		record("error")
		return fmt.Errorf("send receipt %s: %w", p.SaleID, err)
	}
	record("sent")
	m.Logger.Info().Str("sale_id", p.SaleID).Msg("receipt_sent")
	return nil
}

// DirectReceipts sends receipts inline. It backs deployments without Redis.
type DirectReceipts struct {
	Mailer ReceiptMailer
}

// EnqueueReceipt implements checkout.ReceiptQueue.
func (d DirectReceipts) EnqueueReceipt(ctx context.Context, to string, receipt checkout.Receipt) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return errors.New("receipt recipient required")
	}
	return d.Mailer.Send(ctx, ReceiptPayload{
		SaleID:  receipt.Sale.ID,
		To:      to,
		Subject: receipt.Subject(),
		Body:    receipt.Text(),
	})
}

func record(result string) {
	if obs.ReceiptEmailsTotal != nil {
		obs.ReceiptEmailsTotal.WithLabelValues(result).Inc()
	}
}
