// Package webhook posts order summaries to a form relay endpoint.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/corray333/backend-labs/storefront/internal/dal/notifier"
	"github.com/corray333/backend-labs/storefront/internal/service/models/order"
)

const maxErrorBody = 64 << 10

// RelayError is a relay answer that did not confirm the notification.
type RelayError struct {
	Status  int
	Message string
}

func (e *RelayError) Error() string {
	return e.Message
}

// Dispatcher posts the order summary as a JSON object.
type Dispatcher struct {
	client  *http.Client
	url     string
	subject string
}

type Option func(*Dispatcher)

func WithHTTPClient(c *http.Client) Option {
	return func(d *Dispatcher) {
		d.client = c
	}
}

func NewDispatcher(url, subject string, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		client:  &http.Client{Timeout: 30 * time.Second},
		url:     url,
		subject: subject,
	}
	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *Dispatcher) Dispatch(ctx context.Context, frozen order.FrozenDraft) error {
	body, err := notifier.NewSummary(frozen, d.subject).JSON()
	if err != nil {
		return fmt.Errorf("failed to encode order summary: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := d.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		return fmt.Errorf("could not reach the notification relay: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &RelayError{Status: resp.StatusCode, Message: errorMessage(resp.StatusCode, raw)}
	}

	return checkAck(resp.StatusCode, raw)
}

// relayAck is the body of a 2xx answer. Relays send success either as a
// boolean or as the string "true"/"false".
type relayAck struct {
	Success any    `json:"success"`
	Message string `json:"message"`
}

// checkAck accepts a 2xx answer only when its body is a JSON object that does
// not report success as false.
func checkAck(status int, raw []byte) error {
	var ack relayAck
	if err := json.Unmarshal(raw, &ack); err != nil {
		return &RelayError{Status: status, Message: "notification relay sent an unreadable acknowledgement"}
	}

	refused := false
	switch v := ack.Success.(type) {
	case bool:
		refused = !v
	case string:
		refused = strings.EqualFold(strings.TrimSpace(v), "false")
	}
	if !refused {
		return nil
	}

	if m := strings.TrimSpace(ack.Message); m != "" {
		return &RelayError{Status: status, Message: m}
	}

	return &RelayError{Status: status, Message: "notification relay did not accept the order"}
}

type relayErrorBody struct {
	Error  string `json:"error"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// errorMessage pulls a readable message out of a relay error body and falls
// back to a generic one when the body carries none.
func errorMessage(status int, raw []byte) string {
	var body relayErrorBody
	if err := json.Unmarshal(raw, &body); err == nil {
		var msgs []string
		for _, e := range body.Errors {
			if m := strings.TrimSpace(e.Message); m != "" {
				msgs = append(msgs, m)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, ", ")
		}
		if m := strings.TrimSpace(body.Error); m != "" {
			return m
		}
	}

	return fmt.Sprintf("notification relay responded with status %d", status)
}
