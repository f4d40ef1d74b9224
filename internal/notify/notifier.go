package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wolfman30/landing-intake/pkg/logging"
)

var tracer = otel.Tracer("landing.internal.notify")

const (
	defaultFromEmail = "noreply@example.com"
	defaultFromName  = "Landing Page Portfolio"
)

var (
	// ErrNotConfigured is reported when no email provider credential is configured.
	ErrNotConfigured = errors.New("email provider is not configured")

	// ErrNoRecipients is reported when a message has no usable address.
	ErrNoRecipients = errors.New("at least one recipient is required")
)

// Recipients is one or more email addresses. JSON accepts a bare string or an array.
type Recipients []string

// To builds a normalized recipient list.
func To(addrs ...string) Recipients {
	return Recipients(addrs).Normalize()
}

// Normalize trims addresses and drops blanks.
func (r Recipients) Normalize() Recipients {
	out := make(Recipients, 0, len(r))
	for _, addr := range r {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

// UnmarshalJSON accepts "a@x.com" as well as ["a@x.com", "b@x.com"].
func (r *Recipients) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*r = Recipients{single}.Normalize()
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("notify: recipients must be a string or array of strings")
	}
	*r = Recipients(many).Normalize()
	return nil
}

// Message is what callers hand to the Notifier. From and FromName are optional.
type Message struct {
	To       Recipients
	Subject  string
	HTML     string
	From     string
	FromName string
}

// Outcome reports whether a send succeeded. It is always returned, never thrown.
type Outcome struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Err converts a failed outcome into an error for step runners.
func (o Outcome) Err() error {
	if o.Success {
		return nil
	}
	if o.Error == "" {
		return errors.New("email send failed")
	}
	return errors.New(o.Error)
}

// Identity is a sender address and display name.
type Identity struct {
	Email string
	Name  string
}

// Notifier wraps an EmailSender, resolving sender identity and converting every
// failure into an Outcome.
type Notifier struct {
	sender   EmailSender
	defaults Identity
	timeout  time.Duration
	logger   *logging.Logger
}

// NewNotifier creates a Notifier. A nil sender means email is unconfigured and
// every Send reports ErrNotConfigured.
func NewNotifier(sender EmailSender, defaults Identity, timeout time.Duration, logger *logging.Logger) *Notifier {
	if logger == nil {
		logger = logging.Default()
	}
	return &Notifier{
		sender:   sender,
		defaults: defaults,
		timeout:  timeout,
		logger:   logger,
	}
}

// Send delivers msg and reports the outcome. It never panics into the caller.
func (n *Notifier) Send(ctx context.Context, msg Message) (out Outcome) {
	if n == nil {
		return Outcome{Error: ErrNotConfigured.Error()}
	}
	ctx, span := tracer.Start(ctx, "email.send")
	defer span.End()

	defer func() {
		if rec := recover(); rec != nil {
			n.logger.Error("email sending panicked", "panic", rec)
			out = Outcome{Error: fmt.Sprintf("email sending failed: %v", rec)}
		}
		if !out.Success {
			span.SetStatus(codes.Error, out.Error)
		}
	}()

	resolved := n.resolve(msg)
	span.SetAttributes(attribute.Int("email.recipients", len(resolved.To)))

	if n.sender == nil {
		n.logger.Error("email sending error", "error", ErrNotConfigured)
		return Outcome{Error: ErrNotConfigured.Error()}
	}
	if len(resolved.To) == 0 {
		return Outcome{Error: ErrNoRecipients.Error()}
	}

	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	if err := n.sender.Send(ctx, resolved); err != nil {
		return Outcome{Error: err.Error()}
	}
	return Outcome{Success: true}
}

func (n *Notifier) resolve(msg Message) EmailMessage {
	from := firstNonEmpty(msg.From, n.defaults.Email, defaultFromEmail)
	fromName := firstNonEmpty(msg.FromName, n.defaults.Name, defaultFromName)
	return EmailMessage{
		To:        msg.To.Normalize(),
		FromEmail: from,
		FromName:  fromName,
		Subject:   msg.Subject,
		HTML:      msg.HTML,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
