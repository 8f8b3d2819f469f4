package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hibiken/asynq"
)

// Task type definitions
const (
	TypeSendMail = "mail:send"
)

// Mail template names
const (
	MailInterviewScheduled = "interview_scheduled"
	MailHRWelcome          = "hr_welcome"
	MailAgentWelcome       = "agent_welcome"
	MailPaymentReceived    = "payment_received"
)

// MailPayload defines the payload for mail delivery tasks
type MailPayload struct {
	Template string            `json:"template"`
	To       string            `json:"to"`
	ToName   string            `json:"to_name"`
	Data     map[string]string `json:"data"`
}

// NewMailTask creates a new mail delivery task
func NewMailTask(payload MailPayload) (*asynq.Task, error) {
	if _, ok := mailTemplates[payload.Template]; !ok {
		return nil, fmt.Errorf("unknown mail template: %s", payload.Template)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeSendMail, data, asynq.MaxRetry(5)), nil
}

// MailHandler renders queued mails and hands them to a Mailer.
type MailHandler struct {
	mailer Mailer
}

func NewMailHandler(mailer Mailer) *MailHandler {
	return &MailHandler{mailer: mailer}
}

// HandleSendMail handles mail delivery tasks
func (h *MailHandler) HandleSendMail(ctx context.Context, t *asynq.Task) error {
	var payload MailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal mail payload: %v: %w", err, asynq.SkipRetry)
	}

	msg, err := RenderMail(payload)
	if err != nil {
		return fmt.Errorf("failed to render mail %s: %v: %w", payload.Template, err, asynq.SkipRetry)
	}

	if err := h.mailer.Send(ctx, msg); err != nil {
		log.Printf("Mail %s to %s failed: %v", payload.Template, payload.To, err)
		return err
	}

	log.Printf("Mail %s delivered to %s", payload.Template, payload.To)
	return nil
}

// RegisterHandlers wires all task handlers into the asynq mux.
func RegisterHandlers(mux *asynq.ServeMux, mail *MailHandler) {
	mux.HandleFunc(TypeSendMail, mail.HandleSendMail)
}
