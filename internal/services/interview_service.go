package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"genzip/internal/common"
	"genzip/internal/models"
	"genzip/internal/repositories"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

// ScheduleRequest is the HR form for scheduling or editing an interview.
type ScheduleRequest struct {
	JobID          string   `json:"job_id"`
	CandidateID    string   `json:"candidate_id"`
	InterviewerIDs []string `json:"interviewer_ids"`
	InterviewDate  string   `json:"interview_date"`
	FromTime       string   `json:"from_time"`
	ToTime         string   `json:"to_time"`
	Address        *string  `json:"address"`
	Notes          *string  `json:"notes"`
}

func (r *ScheduleRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.JobID, validation.Required, is.UUID),
		validation.Field(&r.CandidateID, validation.Required, is.UUID),
		validation.Field(&r.InterviewerIDs, validation.Required, validation.Each(is.UUID)),
		validation.Field(&r.InterviewDate, validation.Required, validation.Date("2006-01-02")),
		validation.Field(&r.FromTime, validation.Required, validation.By(timeOfDay)),
		validation.Field(&r.ToTime, validation.Required, validation.By(timeOfDay)),
		validation.Field(&r.Address, validation.NilOrNotEmpty, validation.Length(0, 500)),
		validation.Field(&r.Notes, validation.Length(0, 2000)),
	)
}

func timeOfDay(value interface{}) error {
	s, _ := value.(string)
	if _, err := common.NormalizeTime(s, "time"); err != nil {
		return errors.New("must be in HH:MM or HH:MM:SS format")
	}
	return nil
}

// ScheduleResult is returned after scheduling. PaymentRequired is set when
// no credit was available and the interview awaits a one-time payment.
type ScheduleResult struct {
	Interview       *models.Interview     `json:"interview"`
	PaymentRequired bool                  `json:"payment_required"`
	Credits         *models.CreditSummary `json:"credits,omitempty"`
	WhatsAppLink    string                `json:"whatsapp_link"`
	LocationLink    string                `json:"location_link"`
}

// InterviewService drives the interview lifecycle for HR users, field agents
// and candidates.
type InterviewService interface {
	// HR and admin
	Schedule(ctx context.Context, actor Actor, req *ScheduleRequest) (*ScheduleResult, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, req *ScheduleRequest) (*models.Interview, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
	Cancel(ctx context.Context, actor Actor, id uuid.UUID) (*models.Interview, error)
	PayWithCredit(ctx context.Context, actor Actor, id uuid.UUID) (*models.Interview, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*models.InterviewView, error)
	List(ctx context.Context, actor Actor, filter models.InterviewFilter) ([]*models.InterviewView, error)

	// Field agents
	Available(ctx context.Context, agent *models.FieldAgent, limit, offset int) ([]*models.InterviewView, error)
	AgentView(ctx context.Context, agent *models.FieldAgent, id uuid.UUID) (*models.InterviewView, error)
	Reserve(ctx context.Context, agent *models.FieldAgent, id uuid.UUID) (*models.Interview, error)
	Decline(ctx context.Context, agent *models.FieldAgent, id uuid.UUID) (*models.Interview, error)
	Accept(ctx context.Context, agent *models.FieldAgent, id uuid.UUID) (*models.Interview, error)
	Transfer(ctx context.Context, agent *models.FieldAgent, id uuid.UUID, toAgentCode string) (*models.Interview, error)
	StartTravel(ctx context.Context, agent *models.FieldAgent, id uuid.UUID) (*models.Interview, error)
	UploadCandidatePhoto(ctx context.Context, agent *models.FieldAgent, id uuid.UUID, upload *Upload) (*models.Interview, error)
	Finish(ctx context.Context, agent *models.FieldAgent, id uuid.UUID) (*models.Interview, error)
	SubmitVideoLink(ctx context.Context, agent *models.FieldAgent, id uuid.UUID, link string) (*models.Interview, error)
	UploadVideo(ctx context.Context, agent *models.FieldAgent, id uuid.UUID, upload *Upload) (*models.Interview, error)
	Current(ctx context.Context, agent *models.FieldAgent) ([]*models.InterviewView, error)
	Completed(ctx context.Context, agent *models.FieldAgent) ([]*models.InterviewView, error)
	Transferred(ctx context.Context, agent *models.FieldAgent) ([]*models.InterviewView, error)

	// Candidates
	SetLocation(ctx context.Context, id uuid.UUID, latitude, longitude float64) error
}

// InterviewServiceDeps groups the collaborators of the interview service.
type InterviewServiceDeps struct {
	Interviews    repositories.InterviewRepository
	Jobs          repositories.JobRepository
	Candidates    repositories.CandidateRepository
	Interviewers  repositories.InterviewerRepository
	Companies     repositories.CompanyRepository
	HRs           repositories.HRRepository
	Agents        repositories.FieldAgentRepository
	AgentPayments repositories.AgentPaymentRepository
	Credits       CreditService
	Notifier      NotificationService
	Storage       StorageService
	AgentPayout   float64
}

type interviewService struct {
	InterviewServiceDeps
}

func NewInterviewService(deps InterviewServiceDeps) InterviewService {
	return &interviewService{InterviewServiceDeps: deps}
}

func (s *interviewService) Schedule(ctx context.Context, actor Actor, req *ScheduleRequest) (*ScheduleResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	iv := &models.Interview{
		ID:            uuid.New(),
		CompanyID:     actor.CompanyID,
		CreatedBy:     actor.UserID,
		Status:        models.StatusScheduled,
		PaymentStatus: models.PaymentPending,
	}
	job, candidate, err := s.apply(ctx, actor, iv, req)
	if err != nil {
		return nil, err
	}

	if err := s.ensureNotDuplicate(ctx, candidate.ID, job.ID, nil); err != nil {
		return nil, err
	}

	if err := s.Interviews.Create(ctx, iv); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrDuplicateInterview
		}
		return nil, fmt.Errorf("failed to create interview: %w", err)
	}

	result := &ScheduleResult{Interview: iv}

	_, err = s.Credits.Consume(ctx, actor.CompanyID, iv.ID)
	switch {
	case err == nil:
		paid, err := s.Interviews.MarkPaid(ctx, iv.ID)
		if err != nil {
			if _, relErr := s.Credits.Release(ctx, actor.CompanyID, iv.ID); relErr != nil {
				log.Printf("Failed to release credit for unpaid interview %s: %v", iv.ID, relErr)
			}
			if delErr := s.Interviews.Delete(ctx, actor.CompanyID, iv.ID); delErr != nil {
				log.Printf("Failed to roll back interview %s: %v", iv.ID, delErr)
			}
			return nil, fmt.Errorf("failed to mark interview paid: %w", err)
		}
		result.Interview = paid
	case errors.Is(err, repositories.ErrInsufficientCredits):
		result.PaymentRequired = true
	default:
		// Undo the insert so the HR can retry cleanly.
		if delErr := s.Interviews.Delete(ctx, actor.CompanyID, iv.ID); delErr != nil {
			log.Printf("Failed to roll back interview %s: %v", iv.ID, delErr)
		}
		return nil, err
	}

	if summary, err := s.Credits.Summary(ctx, actor.CompanyID); err != nil {
		log.Printf("Failed to load credits after scheduling interview %s: %v", iv.ID, err)
	} else {
		result.Credits = summary
	}

	mail := s.interviewMail(ctx, actor, iv, job, candidate)
	if err := s.Notifier.InterviewScheduled(ctx, mail); err != nil {
		log.Printf("Failed to queue scheduled mail for interview %s: %v", iv.ID, err)
	}
	result.LocationLink = s.Notifier.LocationLink(iv.ID.String())
	result.WhatsAppLink = s.Notifier.WhatsAppLink(candidate.Phone, fmt.Sprintf(
		"Hi %s, your interview for %s is scheduled on %s from %s to %s. Please share your location: %s",
		candidate.FullName(), job.Title, req.InterviewDate, iv.FromTime, iv.ToTime, result.LocationLink))

	return result, nil
}

func (s *interviewService) Update(ctx context.Context, actor Actor, id uuid.UUID, req *ScheduleRequest) (*models.Interview, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	iv, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if iv.Started() || !iv.Open() {
		return nil, ErrInterviewLocked
	}

	job, candidate, err := s.apply(ctx, actor, iv, req)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNotDuplicate(ctx, candidate.ID, job.ID, &iv.ID); err != nil {
		return nil, err
	}

	if err := s.Interviews.Update(ctx, iv); err != nil {
		if errors.Is(err, repositories.ErrStateConflict) {
			return nil, ErrInterviewLocked
		}
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrDuplicateInterview
		}
		return nil, fmt.Errorf("failed to update interview: %w", err)
	}
	return s.Interviews.GetByID(ctx, actor.CompanyID, id)
}

func (s *interviewService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	iv, err := s.owned(ctx, actor, id)
	if err != nil {
		return err
	}
	if iv.Started() || iv.Status == models.StatusVideoUploaded {
		return ErrInterviewLocked
	}

	if err := s.Interviews.Delete(ctx, actor.CompanyID, id); err != nil {
		if errors.Is(err, repositories.ErrStateConflict) {
			return ErrInterviewLocked
		}
		return fmt.Errorf("failed to delete interview: %w", err)
	}

	if _, err := s.Credits.Release(ctx, actor.CompanyID, id); err != nil {
		log.Printf("Failed to release credit for deleted interview %s: %v", id, err)
	}
	return nil
}

func (s *interviewService) Cancel(ctx context.Context, actor Actor, id uuid.UUID) (*models.Interview, error) {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return nil, err
	}

	iv, err := s.Interviews.Cancel(ctx, actor.CompanyID, id)
	if err != nil {
		if errors.Is(err, repositories.ErrStateConflict) {
			return nil, ErrInterviewLocked
		}
		return nil, fmt.Errorf("failed to cancel interview: %w", err)
	}

	if _, err := s.Credits.Release(ctx, actor.CompanyID, id); err != nil {
		log.Printf("Failed to release credit for cancelled interview %s: %v", id, err)
	}
	return iv, nil
}

// PayWithCredit settles a pending interview from the credit pool, for example
// after the company bought a subscription.
func (s *interviewService) PayWithCredit(ctx context.Context, actor Actor, id uuid.UUID) (*models.Interview, error) {
	iv, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if iv.Paid() {
		return nil, ErrAlreadyPaid
	}
	if !iv.Open() {
		return nil, ErrInterviewLocked
	}

	if _, err := s.Credits.Consume(ctx, actor.CompanyID, id); err != nil && !errors.Is(err, repositories.ErrCreditAlreadyUsed) {
		return nil, err
	}
	return s.Interviews.MarkPaid(ctx, id)
}

func (s *interviewService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*models.InterviewView, error) {
	view, err := s.Interviews.GetView(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(view.CompanyID, view.CreatedBy) {
		return nil, ErrNotFound
	}
	return view, nil
}

func (s *interviewService) List(ctx context.Context, actor Actor, filter models.InterviewFilter) ([]*models.InterviewView, error) {
	filter.CreatedBy = actor.Scope()
	filter.Search = common.SanitizeSearchQuery(filter.Search)
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, validation.Errors{"status": errors.New("unknown interview status")}
	}
	return s.Interviews.List(ctx, actor.CompanyID, filter)
}

func (s *interviewService) Available(ctx context.Context, agent *models.FieldAgent, limit, offset int) ([]*models.InterviewView, error) {
	return s.Interviews.ListAvailable(ctx, agent.City, limit, offset)
}

// AgentView returns an interview the agent may see: one open in their city
// or one they reserved or accepted.
func (s *interviewService) AgentView(ctx context.Context, agent *models.FieldAgent, id uuid.UUID) (*models.InterviewView, error) {
	view, err := s.Interviews.GetView(ctx, id)
	if err != nil {
		return nil, err
	}
	mine := (view.AcceptedBy != nil && *view.AcceptedBy == agent.ID) ||
		(view.ReservedBy != nil && *view.ReservedBy == agent.ID)
	open := view.AcceptedBy == nil &&
		(view.Status == models.StatusScheduled || view.Status == models.StatusAllotted) &&
		strings.EqualFold(strings.TrimSpace(view.City), strings.TrimSpace(agent.City))
	if !mine && !open {
		return nil, ErrNotFound
	}
	return view, nil
}

func (s *interviewService) Reserve(ctx context.Context, agent *models.FieldAgent, id uuid.UUID) (*models.Interview, error) {
	iv, err := s.Interviews.Reserve(ctx, id, agent.ID)
	return s.transitioned(ctx, id, iv, err)
}

func (s *interviewService) Decline(ctx context.Context, agent *models.FieldAgent, id uuid.UUID) (*models.Interview, error) {
	iv, err := s.Interviews.Decline(ctx, id, agent.ID)
	return s.transitioned(ctx, id, iv, err)
}

func (s *interviewService) Accept(ctx context.Context, agent *models.FieldAgent, id uuid.UUID) (*models.Interview, error) {
	iv, err := s.Interviews.Accept(ctx, id, agent.ID)
	if errors.Is(err, repositories.ErrStateConflict) {
		current, getErr := s.Interviews.Get(ctx, id)
		if getErr == nil && !current.Paid() && current.AcceptedBy == nil {
			return nil, ErrPaymentRequired
		}
	}
	return s.transitioned(ctx, id, iv, err)
}

func (s *interviewService) Transfer(ctx context.Context, agent *models.FieldAgent, id uuid.UUID, toAgentCode string) (*models.Interview, error) {
	code := strings.ToUpper(strings.TrimSpace(toAgentCode))
	if code == "" {
		return nil, validation.Errors{"agent_code": validation.ErrRequired}
	}
	target, err := s.Agents.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUnknownAgent
		}
		return nil, err
	}
	if target.ID == agent.ID {
		return nil, validation.Errors{"agent_code": errors.New("cannot transfer an interview to yourself")}
	}

	iv, err := s.Interviews.Transfer(ctx, id, agent.ID, target.ID)
	return s.transitioned(ctx, id, iv, err)
}

func (s *interviewService) StartTravel(ctx context.Context, agent *models.FieldAgent, id uuid.UUID) (*models.Interview, error) {
	iv, err := s.Interviews.StartTravel(ctx, id, agent.ID)
	return s.transitioned(ctx, id, iv, err)
}

func (s *interviewService) UploadCandidatePhoto(ctx context.Context, agent *models.FieldAgent, id uuid.UUID, upload *Upload) (*models.Interview, error) {
	if err := s.requireStatus(ctx, agent, id, models.StatusOnTheWay); err != nil {
		return nil, err
	}
	photoURL, err := s.upload(ctx, fmt.Sprintf("candidate_photos/%s/%d%s", id, time.Now().Unix(), upload.Ext()), upload)
	if err != nil {
		return nil, err
	}
	iv, err := s.Interviews.StartRecording(ctx, id, agent.ID, photoURL)
	return s.transitioned(ctx, id, iv, err)
}

// Finish completes the interview and books the agent payout.
func (s *interviewService) Finish(ctx context.Context, agent *models.FieldAgent, id uuid.UUID) (*models.Interview, error) {
	iv, err := s.Interviews.Finish(ctx, id, agent.ID)
	iv, err = s.transitioned(ctx, id, iv, err)
	if err != nil {
		return nil, err
	}

	payout := &models.AgentPayment{
		ID:          uuid.New(),
		AgentID:     agent.ID,
		InterviewID: iv.ID,
		Amount:      s.AgentPayout,
		Status:      models.AgentPaymentPending,
	}
	if err := s.AgentPayments.Create(ctx, payout); err != nil {
		log.Printf("Failed to record payout for interview %s: %v", iv.ID, err)
	}
	return iv, nil
}

func (s *interviewService) SubmitVideoLink(ctx context.Context, agent *models.FieldAgent, id uuid.UUID, link string) (*models.Interview, error) {
	link = strings.TrimSpace(link)
	if err := validation.Validate(link, validation.Required, is.URL); err != nil {
		return nil, validation.Errors{"video_url": err}
	}
	if u, err := url.Parse(link); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, validation.Errors{"video_url": errors.New("must be an http or https link")}
	}
	iv, err := s.Interviews.AttachVideo(ctx, id, agent.ID, link)
	return s.transitioned(ctx, id, iv, err)
}

func (s *interviewService) UploadVideo(ctx context.Context, agent *models.FieldAgent, id uuid.UUID, upload *Upload) (*models.Interview, error) {
	if err := s.requireStatus(ctx, agent, id, models.StatusCompleted); err != nil {
		return nil, err
	}
	videoURL, err := s.upload(ctx, fmt.Sprintf("videos/%s/%d%s", id, time.Now().Unix(), upload.Ext()), upload)
	if err != nil {
		return nil, err
	}
	iv, err := s.Interviews.AttachVideo(ctx, id, agent.ID, videoURL)
	return s.transitioned(ctx, id, iv, err)
}

func (s *interviewService) Current(ctx context.Context, agent *models.FieldAgent) ([]*models.InterviewView, error) {
	return s.Interviews.ListByAgent(ctx, agent.ID, []models.InterviewStatus{
		models.StatusAccepted, models.StatusOnTheWay, models.StatusInProgress,
	})
}

func (s *interviewService) Completed(ctx context.Context, agent *models.FieldAgent) ([]*models.InterviewView, error) {
	return s.Interviews.ListByAgent(ctx, agent.ID, []models.InterviewStatus{
		models.StatusCompleted, models.StatusVideoUploaded,
	})
}

func (s *interviewService) Transferred(ctx context.Context, agent *models.FieldAgent) ([]*models.InterviewView, error) {
	return s.Interviews.ListTransferredFrom(ctx, agent.ID)
}

func (s *interviewService) SetLocation(ctx context.Context, id uuid.UUID, latitude, longitude float64) error {
	if latitude < -90 || latitude > 90 || longitude < -180 || longitude > 180 {
		return ErrInvalidLocation
	}
	return s.Interviews.SetLocation(ctx, id, latitude, longitude)
}

// apply resolves the form references inside the actor's company and copies
// the normalised values onto iv.
func (s *interviewService) apply(ctx context.Context, actor Actor, iv *models.Interview, req *ScheduleRequest) (*models.Job, *models.Candidate, error) {
	fromTime, _ := common.NormalizeTime(req.FromTime, "from_time")
	toTime, _ := common.NormalizeTime(req.ToTime, "to_time")
	if toTime <= fromTime {
		return nil, nil, validation.Errors{"to_time": errors.New("must be after from_time")}
	}
	date, err := common.ParseDate(req.InterviewDate, "interview_date")
	if err != nil {
		return nil, nil, validation.Errors{"interview_date": err}
	}

	job, err := s.Jobs.GetByID(ctx, actor.CompanyID, uuid.MustParse(req.JobID))
	if err != nil {
		return nil, nil, notFoundAs(err, "job_id", "job not found")
	}
	candidate, err := s.Candidates.GetByID(ctx, actor.CompanyID, uuid.MustParse(req.CandidateID))
	if err != nil {
		return nil, nil, notFoundAs(err, "candidate_id", "candidate not found")
	}

	ids := make([]uuid.UUID, 0, len(req.InterviewerIDs))
	seen := make(map[uuid.UUID]bool, len(req.InterviewerIDs))
	for _, raw := range req.InterviewerIDs {
		id := uuid.MustParse(raw)
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	interviewers, err := s.Interviewers.GetMany(ctx, actor.CompanyID, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load interviewers: %w", err)
	}
	if len(interviewers) != len(ids) {
		return nil, nil, validation.Errors{"interviewer_ids": errors.New("one or more interviewers not found")}
	}

	iv.JobID = job.ID
	iv.CandidateID = candidate.ID
	iv.InterviewerIDs = ids
	iv.InterviewDate = date
	iv.FromTime = fromTime
	iv.ToTime = toTime
	iv.City = candidate.City
	iv.Address = req.Address
	if iv.Address == nil {
		iv.Address = candidate.Location
	}
	iv.Notes = req.Notes
	return job, candidate, nil
}

func (s *interviewService) ensureNotDuplicate(ctx context.Context, candidateID, jobID uuid.UUID, excludeID *uuid.UUID) error {
	_, err := s.Interviews.FindOpen(ctx, candidateID, jobID, excludeID)
	if err == nil {
		return ErrDuplicateInterview
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return nil
	}
	return fmt.Errorf("failed to check for duplicate interview: %w", err)
}

func (s *interviewService) owned(ctx context.Context, actor Actor, id uuid.UUID) (*models.Interview, error) {
	iv, err := s.Interviews.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(iv.CompanyID, iv.CreatedBy) {
		return nil, ErrNotFound
	}
	return iv, nil
}

// transitioned maps a failed conditional update to a precise error.
func (s *interviewService) transitioned(ctx context.Context, id uuid.UUID, iv *models.Interview, err error) (*models.Interview, error) {
	if err == nil {
		return iv, nil
	}
	if !errors.Is(err, repositories.ErrStateConflict) {
		return nil, err
	}
	if _, getErr := s.Interviews.Get(ctx, id); errors.Is(getErr, repositories.ErrNotFound) {
		return nil, ErrNotFound
	}
	return nil, ErrInterviewConflict
}

// requireStatus checks an upload target before any bytes are stored.
func (s *interviewService) requireStatus(ctx context.Context, agent *models.FieldAgent, id uuid.UUID, status models.InterviewStatus) error {
	iv, err := s.Interviews.Get(ctx, id)
	if err != nil {
		return err
	}
	if iv.AcceptedBy == nil || *iv.AcceptedBy != agent.ID || iv.Status != status {
		return ErrInterviewConflict
	}
	return nil
}

func (s *interviewService) upload(ctx context.Context, objectName string, upload *Upload) (string, error) {
	if s.Storage == nil {
		return "", ErrStorageUnavailable
	}
	return s.Storage.UploadPublic(ctx, objectName, upload)
}

func (s *interviewService) interviewMail(ctx context.Context, actor Actor, iv *models.Interview, job *models.Job, candidate *models.Candidate) InterviewMail {
	mail := InterviewMail{
		InterviewID:   iv.ID.String(),
		CandidateName: candidate.FullName(),
		CandidateMail: candidate.Email,
		JobTitle:      job.Title,
		InterviewDate: iv.InterviewDate.Format("02 Jan 2006"),
		FromTime:      iv.FromTime[:5],
		ToTime:        iv.ToTime[:5],
	}
	if company, err := s.Companies.GetByID(ctx, actor.CompanyID); err == nil {
		mail.CompanyName = company.Name
		mail.HRName = company.AdminName
	}
	if hr, err := s.HRs.GetByUserID(ctx, actor.UserID); err == nil {
		mail.HRName = hr.FullName()
	}
	return mail
}

// notFoundAs turns a missing reference into a field validation error.
func notFoundAs(err error, field, msg string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return validation.Errors{field: errors.New(msg)}
	}
	return err
}
