package models

import (
	"time"

	"github.com/google/uuid"
)

type InterviewStatus string

const (
	StatusScheduled     InterviewStatus = "Scheduled"
	StatusAllotted      InterviewStatus = "Allotted"
	StatusAccepted      InterviewStatus = "Accepted"
	StatusOnTheWay      InterviewStatus = "On the Way"
	StatusInProgress    InterviewStatus = "Interview in Progress"
	StatusCompleted     InterviewStatus = "Completed"
	StatusVideoUploaded InterviewStatus = "Video Uploaded"
	StatusCancelled     InterviewStatus = "Cancelled"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "Pending"
	PaymentCompleted PaymentStatus = "Completed"
)

// AllInterviewStatuses lists statuses in lifecycle order.
var AllInterviewStatuses = []InterviewStatus{
	StatusScheduled,
	StatusAllotted,
	StatusAccepted,
	StatusOnTheWay,
	StatusInProgress,
	StatusCompleted,
	StatusVideoUploaded,
	StatusCancelled,
}

func (s InterviewStatus) Valid() bool {
	for _, v := range AllInterviewStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// TransferEntry records one hand-over of an accepted interview between agents.
type TransferEntry struct {
	From uuid.UUID `json:"from"`
	To   uuid.UUID `json:"to"`
	At   time.Time `json:"at"`
}

type Interview struct {
	ID                   uuid.UUID       `json:"id" db:"id"`
	CompanyID            uuid.UUID       `json:"company_id" db:"company_id"`
	CreatedBy            uuid.UUID       `json:"created_by" db:"created_by"`
	JobID                uuid.UUID       `json:"job_id" db:"job_id"`
	CandidateID          uuid.UUID       `json:"candidate_id" db:"candidate_id"`
	InterviewerIDs       []uuid.UUID     `json:"interviewer_ids" db:"interviewer_ids"`
	InterviewDate        time.Time       `json:"interview_date" db:"interview_date"`
	FromTime             string          `json:"from_time" db:"from_time"`
	ToTime               string          `json:"to_time" db:"to_time"`
	City                 string          `json:"city" db:"city"`
	Address              *string         `json:"address" db:"address"`
	Notes                *string         `json:"notes" db:"notes"`
	Status               InterviewStatus `json:"status" db:"status"`
	PaymentStatus        PaymentStatus   `json:"payment_status" db:"payment_status"`
	PaymentDate          *time.Time      `json:"payment_date" db:"payment_date"`
	ReservedBy           *uuid.UUID      `json:"reserved_by" db:"reserved_by"`
	ReservedAt           *time.Time      `json:"reserved_at" db:"reserved_at"`
	AcceptedBy           *uuid.UUID      `json:"accepted_by" db:"accepted_by"`
	AcceptedAt           *time.Time      `json:"accepted_at" db:"accepted_at"`
	TransferLog          []TransferEntry `json:"transfer_log" db:"transfer_log"`
	EmployeeStartedAt    *time.Time      `json:"employee_started_at" db:"employee_started_at"`
	RecordingStartedAt   *time.Time      `json:"recording_started_at" db:"recording_started_at"`
	RecordingCompletedAt *time.Time      `json:"recording_completed_at" db:"recording_completed_at"`
	CandidatePhotoURL    *string         `json:"candidate_photo_url" db:"candidate_photo_url"`
	VideoURL             *string         `json:"video_url" db:"video_url"`
	Latitude             *float64        `json:"latitude" db:"latitude"`
	Longitude            *float64        `json:"longitude" db:"longitude"`
	LocationUploaded     bool            `json:"location_uploaded" db:"location_uploaded"`
	CreatedAt            time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at" db:"updated_at"`
}

// Started reports whether an agent has set off for the interview.
func (i *Interview) Started() bool {
	if i.EmployeeStartedAt != nil {
		return true
	}
	switch i.Status {
	case StatusOnTheWay, StatusInProgress, StatusCompleted, StatusVideoUploaded:
		return true
	}
	return false
}

// Open reports whether the interview still blocks a new one for the same
// candidate and job.
func (i *Interview) Open() bool {
	switch i.Status {
	case StatusCompleted, StatusVideoUploaded, StatusCancelled:
		return false
	}
	return true
}

func (i *Interview) Paid() bool {
	return i.PaymentStatus == PaymentCompleted
}

// InterviewView is an interview joined with the names shown on dashboards.
type InterviewView struct {
	Interview
	JobTitle         string   `json:"job_title"`
	CandidateName    string   `json:"candidate_name"`
	CandidatePhone   string   `json:"candidate_phone"`
	HRName           string   `json:"hr_name"`
	InterviewerNames []string `json:"interviewer_names"`
	IsPaid           bool     `json:"is_paid"`
}

// InterviewFilter narrows company interview listings.
type InterviewFilter struct {
	Status    *InterviewStatus
	CreatedBy *uuid.UUID
	Search    string
	Limit     int
	Offset    int
}

// InterviewCount is one bucket of the status breakdown.
type InterviewCount struct {
	Status        InterviewStatus `json:"status"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	Count         int             `json:"count"`
}
