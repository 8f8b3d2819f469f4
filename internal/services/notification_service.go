package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	"genzip/internal/jobs"

	"github.com/hibiken/asynq"
)

// TaskEnqueuer is the subset of *asynq.Client used to queue work.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// NotificationService queues outgoing mails and builds share links.
type NotificationService interface {
	InterviewScheduled(ctx context.Context, mail InterviewMail) error
	HRWelcome(ctx context.Context, to, name, companyName, tempPassword string) error
	AgentWelcome(ctx context.Context, to, name, agentCode, city string) error
	PaymentReceived(ctx context.Context, to, description string, amount float64, credits int, reference string) error

	LocationLink(interviewID string) string
	WhatsAppLink(phone, message string) string
}

// InterviewMail carries the fields rendered into the scheduled-interview mail.
type InterviewMail struct {
	InterviewID   string
	CandidateName string
	CandidateMail string
	CompanyName   string
	JobTitle      string
	HRName        string
	InterviewDate string
	FromTime      string
	ToTime        string
}

type notificationService struct {
	queue     TaskEnqueuer
	publicURL string
}

func NewNotificationService(queue TaskEnqueuer, publicURL string) NotificationService {
	return &notificationService{
		queue:     queue,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

func (s *notificationService) InterviewScheduled(ctx context.Context, mail InterviewMail) error {
	return s.enqueue(ctx, jobs.MailPayload{
		Template: jobs.MailInterviewScheduled,
		To:       mail.CandidateMail,
		ToName:   mail.CandidateName,
		Data: map[string]string{
			"CandidateName": mail.CandidateName,
			"CompanyName":   mail.CompanyName,
			"JobTitle":      mail.JobTitle,
			"HRName":        mail.HRName,
			"InterviewDate": mail.InterviewDate,
			"FromTime":      mail.FromTime,
			"ToTime":        mail.ToTime,
			"LocationLink":  s.LocationLink(mail.InterviewID),
		},
	})
}

func (s *notificationService) HRWelcome(ctx context.Context, to, name, companyName, tempPassword string) error {
	return s.enqueue(ctx, jobs.MailPayload{
		Template: jobs.MailHRWelcome,
		To:       to,
		ToName:   name,
		Data: map[string]string{
			"Name":         name,
			"Email":        to,
			"CompanyName":  companyName,
			"TempPassword": tempPassword,
			"LoginLink":    s.publicURL + "/login",
		},
	})
}

func (s *notificationService) AgentWelcome(ctx context.Context, to, name, agentCode, city string) error {
	return s.enqueue(ctx, jobs.MailPayload{
		Template: jobs.MailAgentWelcome,
		To:       to,
		ToName:   name,
		Data: map[string]string{
			"Name":      name,
			"AgentCode": agentCode,
			"City":      city,
		},
	})
}

func (s *notificationService) PaymentReceived(ctx context.Context, to, description string, amount float64, credits int, reference string) error {
	return s.enqueue(ctx, jobs.MailPayload{
		Template: jobs.MailPaymentReceived,
		To:       to,
		Data: map[string]string{
			"Description": description,
			"Amount":      fmt.Sprintf("INR %.2f", amount),
			"Credits":     fmt.Sprintf("%d", credits),
			"Reference":   reference,
		},
	})
}

// LocationLink is the public page where a candidate shares their location.
func (s *notificationService) LocationLink(interviewID string) string {
	return fmt.Sprintf("%s/candidate-location/%s", s.publicURL, interviewID)
}

// WhatsAppLink builds a wa.me deep link. Ten-digit numbers are assumed to be Indian.
func (s *notificationService) WhatsAppLink(phone, message string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	if len(digits) == 10 {
		digits = "91" + digits
	}
	return fmt.Sprintf("https://wa.me/%s?text=%s", digits, strings.ReplaceAll(url.QueryEscape(message), "+", "%20"))
}

func (s *notificationService) enqueue(ctx context.Context, payload jobs.MailPayload) error {
	if strings.TrimSpace(payload.To) == "" {
		log.Printf("Skipping %s mail: no recipient", payload.Template)
		return nil
	}
	task, err := jobs.NewMailTask(payload)
	if err != nil {
		return err
	}
	info, err := s.queue.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to queue %s mail: %w", payload.Template, err)
	}
	log.Printf("Queued %s mail to %s (task %s)", payload.Template, payload.To, info.ID)
	return nil
}
