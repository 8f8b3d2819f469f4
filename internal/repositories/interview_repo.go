package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"genzip/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type InterviewRepository interface {
	Create(ctx context.Context, interview *models.Interview) error
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.Interview, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Interview, error)
	GetView(ctx context.Context, id uuid.UUID) (*models.InterviewView, error)
	Update(ctx context.Context, interview *models.Interview) error
	Delete(ctx context.Context, companyID, id uuid.UUID) error
	FindOpen(ctx context.Context, candidateID, jobID uuid.UUID, excludeID *uuid.UUID) (*models.Interview, error)
	List(ctx context.Context, companyID uuid.UUID, filter models.InterviewFilter) ([]*models.InterviewView, error)
	CountByStatus(ctx context.Context, companyID uuid.UUID) ([]models.InterviewCount, error)

	ListAvailable(ctx context.Context, city string, limit, offset int) ([]*models.InterviewView, error)
	ListByAgent(ctx context.Context, agentID uuid.UUID, statuses []models.InterviewStatus) ([]*models.InterviewView, error)
	ListTransferredFrom(ctx context.Context, agentID uuid.UUID) ([]*models.InterviewView, error)

	Reserve(ctx context.Context, id, agentID uuid.UUID) (*models.Interview, error)
	Decline(ctx context.Context, id, agentID uuid.UUID) (*models.Interview, error)
	Accept(ctx context.Context, id, agentID uuid.UUID) (*models.Interview, error)
	Transfer(ctx context.Context, id, fromAgentID, toAgentID uuid.UUID) (*models.Interview, error)
	StartTravel(ctx context.Context, id, agentID uuid.UUID) (*models.Interview, error)
	StartRecording(ctx context.Context, id, agentID uuid.UUID, photoURL string) (*models.Interview, error)
	Finish(ctx context.Context, id, agentID uuid.UUID) (*models.Interview, error)
	AttachVideo(ctx context.Context, id, agentID uuid.UUID, videoURL string) (*models.Interview, error)
	Cancel(ctx context.Context, companyID, id uuid.UUID) (*models.Interview, error)

	MarkPaid(ctx context.Context, id uuid.UUID) (*models.Interview, error)
	SetLocation(ctx context.Context, id uuid.UUID, latitude, longitude float64) error
	ReleaseStaleReservations(ctx context.Context, reservedBefore time.Time) (int64, error)
}

type interviewRepo struct {
	db DBTX
}

func NewInterviewRepository(db DBTX) InterviewRepository {
	return &interviewRepo{db: db}
}

var interviewFields = []string{
	"id", "company_id", "created_by", "job_id", "candidate_id", "interviewer_ids",
	"interview_date", "from_time", "to_time", "city", "address", "notes",
	"status", "payment_status", "payment_date", "reserved_by", "reserved_at",
	"accepted_by", "accepted_at", "transfer_log", "employee_started_at",
	"recording_started_at", "recording_completed_at", "candidate_photo_url",
	"video_url", "latitude", "longitude", "location_uploaded", "created_at", "updated_at",
}

var (
	interviewColumns = strings.Join(interviewFields, ", ")
	interviewViewSQL = `
		SELECT ` + prefixed("i.", interviewFields) + `,
			j.title,
			TRIM(c.first_name || ' ' || c.last_name),
			c.phone,
			COALESCE(NULLIF(TRIM(h.first_name || ' ' || h.last_name), ''), co.admin_name, ''),
			COALESCE((
				SELECT array_agg(TRIM(iv.first_name || ' ' || iv.last_name) ORDER BY iv.first_name)
				FROM interviewers iv WHERE iv.id = ANY(i.interviewer_ids)
			), '{}'),
			(i.payment_status = 'Completed' OR EXISTS (
				SELECT 1 FROM credit_transactions ct
				WHERE ct.reference_id = i.id AND ct.credits_used > 0 AND ct.released_at IS NULL
			))
		FROM interviews i
		JOIN jobs j ON j.id = i.job_id
		JOIN candidates c ON c.id = i.candidate_id
		JOIN companies co ON co.id = i.company_id
		LEFT JOIN hrs h ON h.user_id = i.created_by
	`
)

func prefixed(prefix string, fields []string) string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = prefix + f
	}
	return strings.Join(out, ", ")
}

func interviewDest(iv *models.Interview) []any {
	return []any{
		&iv.ID, &iv.CompanyID, &iv.CreatedBy, &iv.JobID, &iv.CandidateID, &iv.InterviewerIDs,
		&iv.InterviewDate, &iv.FromTime, &iv.ToTime, &iv.City, &iv.Address, &iv.Notes,
		&iv.Status, &iv.PaymentStatus, &iv.PaymentDate, &iv.ReservedBy, &iv.ReservedAt,
		&iv.AcceptedBy, &iv.AcceptedAt, &iv.TransferLog, &iv.EmployeeStartedAt,
		&iv.RecordingStartedAt, &iv.RecordingCompletedAt, &iv.CandidatePhotoURL,
		&iv.VideoURL, &iv.Latitude, &iv.Longitude, &iv.LocationUploaded, &iv.CreatedAt, &iv.UpdatedAt,
	}
}

func scanInterview(row pgx.Row) (*models.Interview, error) {
	iv := &models.Interview{}
	if err := row.Scan(interviewDest(iv)...); err != nil {
		return nil, notFound(err)
	}
	return iv, nil
}

func scanInterviewView(row pgx.Row) (*models.InterviewView, error) {
	v := &models.InterviewView{}
	dest := append(interviewDest(&v.Interview), &v.JobTitle, &v.CandidateName, &v.CandidatePhone, &v.HRName, &v.InterviewerNames, &v.IsPaid)
	if err := row.Scan(dest...); err != nil {
		return nil, notFound(err)
	}
	return v, nil
}

func statusStrings(statuses []models.InterviewStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func (r *interviewRepo) Create(ctx context.Context, iv *models.Interview) error {
	if iv.TransferLog == nil {
		iv.TransferLog = []models.TransferEntry{}
	}
	query := `
		INSERT INTO interviews (id, company_id, created_by, job_id, candidate_id, interviewer_ids, interview_date, from_time, to_time,
			city, address, notes, status, payment_status, payment_date, transfer_log, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, iv.ID, iv.CompanyID, iv.CreatedBy, iv.JobID, iv.CandidateID, iv.InterviewerIDs, iv.InterviewDate, iv.FromTime, iv.ToTime,
		iv.City, iv.Address, iv.Notes, iv.Status, iv.PaymentStatus, iv.PaymentDate, iv.TransferLog)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *interviewRepo) GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.Interview, error) {
	query := `SELECT ` + interviewColumns + ` FROM interviews WHERE company_id = $1 AND id = $2`
	return scanInterview(r.db.QueryRow(ctx, query, companyID, id))
}

func (r *interviewRepo) Get(ctx context.Context, id uuid.UUID) (*models.Interview, error) {
	query := `SELECT ` + interviewColumns + ` FROM interviews WHERE id = $1`
	return scanInterview(r.db.QueryRow(ctx, query, id))
}

func (r *interviewRepo) GetView(ctx context.Context, id uuid.UUID) (*models.InterviewView, error) {
	return scanInterviewView(r.db.QueryRow(ctx, interviewViewSQL+` WHERE i.id = $1`, id))
}

// Update rewrites the schedulable fields. It only touches interviews no
// agent has started on.
func (r *interviewRepo) Update(ctx context.Context, iv *models.Interview) error {
	query := `
		UPDATE interviews
		SET job_id = $1, candidate_id = $2, interviewer_ids = $3, interview_date = $4, from_time = $5, to_time = $6,
			city = $7, address = $8, notes = $9, updated_at = NOW()
		WHERE company_id = $10 AND id = $11 AND employee_started_at IS NULL AND status = ANY($12)
	`
	editable := statusStrings([]models.InterviewStatus{models.StatusScheduled, models.StatusAllotted, models.StatusAccepted})
	tag, err := r.db.Exec(ctx, query, iv.JobID, iv.CandidateID, iv.InterviewerIDs, iv.InterviewDate, iv.FromTime, iv.ToTime,
		iv.City, iv.Address, iv.Notes, iv.CompanyID, iv.ID, editable)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStateConflict
	}
	return nil
}

func (r *interviewRepo) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	query := `
		DELETE FROM interviews
		WHERE company_id = $1 AND id = $2 AND employee_started_at IS NULL AND status <> ALL($3)
	`
	locked := statusStrings([]models.InterviewStatus{models.StatusOnTheWay, models.StatusInProgress, models.StatusCompleted, models.StatusVideoUploaded})
	tag, err := r.db.Exec(ctx, query, companyID, id, locked)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStateConflict
	}
	return nil
}

func (r *interviewRepo) FindOpen(ctx context.Context, candidateID, jobID uuid.UUID, excludeID *uuid.UUID) (*models.Interview, error) {
	query := `
		SELECT ` + interviewColumns + `
		FROM interviews
		WHERE candidate_id = $1 AND job_id = $2 AND status <> ALL($3) AND ($4::uuid IS NULL OR id <> $4)
		ORDER BY created_at DESC
		LIMIT 1
	`
	closed := statusStrings([]models.InterviewStatus{models.StatusCompleted, models.StatusVideoUploaded, models.StatusCancelled})
	return scanInterview(r.db.QueryRow(ctx, query, candidateID, jobID, closed, excludeID))
}

func (r *interviewRepo) List(ctx context.Context, companyID uuid.UUID, f models.InterviewFilter) ([]*models.InterviewView, error) {
	query := interviewViewSQL + `
		WHERE i.company_id = $1
			AND ($2::text IS NULL OR i.status = $2)
			AND ($3::uuid IS NULL OR i.created_by = $3)
			AND ($4::text = '' OR c.first_name ILIKE '%' || $4 || '%' OR c.last_name ILIKE '%' || $4 || '%'
				OR j.title ILIKE '%' || $4 || '%' OR j.job_code ILIKE '%' || $4 || '%')
		ORDER BY i.interview_date DESC, i.from_time DESC
		LIMIT $5 OFFSET $6
	`
	var status *string
	if f.Status != nil {
		s := string(*f.Status)
		status = &s
	}
	return r.listViews(ctx, query, companyID, status, f.CreatedBy, f.Search, f.Limit, f.Offset)
}

func (r *interviewRepo) CountByStatus(ctx context.Context, companyID uuid.UUID) ([]models.InterviewCount, error) {
	query := `
		SELECT status, payment_status, COUNT(*)
		FROM interviews
		WHERE company_id = $1
		GROUP BY status, payment_status
	`
	rows, err := r.db.Query(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []models.InterviewCount
	for rows.Next() {
		var c models.InterviewCount
		if err := rows.Scan(&c.Status, &c.PaymentStatus, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (r *interviewRepo) ListAvailable(ctx context.Context, city string, limit, offset int) ([]*models.InterviewView, error) {
	query := interviewViewSQL + `
		WHERE i.status = ANY($1) AND i.accepted_by IS NULL AND lower(i.city) = lower($2)
		ORDER BY i.interview_date, i.from_time
		LIMIT $3 OFFSET $4
	`
	open := statusStrings([]models.InterviewStatus{models.StatusScheduled, models.StatusAllotted})
	return r.listViews(ctx, query, open, strings.TrimSpace(city), limit, offset)
}

func (r *interviewRepo) ListByAgent(ctx context.Context, agentID uuid.UUID, statuses []models.InterviewStatus) ([]*models.InterviewView, error) {
	query := interviewViewSQL + `
		WHERE i.accepted_by = $1 AND i.status = ANY($2)
		ORDER BY i.interview_date DESC, i.from_time DESC
	`
	return r.listViews(ctx, query, agentID, statusStrings(statuses))
}

func (r *interviewRepo) ListTransferredFrom(ctx context.Context, agentID uuid.UUID) ([]*models.InterviewView, error) {
	query := interviewViewSQL + `
		WHERE i.transfer_log @> jsonb_build_array(jsonb_build_object('from', $1::text))
		ORDER BY i.updated_at DESC
	`
	return r.listViews(ctx, query, agentID.String())
}

func (r *interviewRepo) listViews(ctx context.Context, query string, args ...any) ([]*models.InterviewView, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []*models.InterviewView
	for rows.Next() {
		v, err := scanInterviewView(rows)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

// transition applies action as one conditional UPDATE. set and predicate
// may reference extra arguments starting at $4. A row that no longer
// matches yields ErrStateConflict.
func (r *interviewRepo) transition(ctx context.Context, id uuid.UUID, action models.Action, set, predicate string, extra ...any) (*models.Interview, error) {
	sources := models.SourceStatuses(action)
	to, ok := models.CanTransition(sources[0], action)
	if !ok {
		return nil, fmt.Errorf("no transition for action %s", action)
	}

	query := `UPDATE interviews SET status = $1, updated_at = NOW()`
	if set != "" {
		query += `, ` + set
	}
	query += ` WHERE id = $2 AND status = ANY($3)`
	if predicate != "" {
		query += ` AND ` + predicate
	}
	query += ` RETURNING ` + interviewColumns

	args := append([]any{string(to), id, statusStrings(sources)}, extra...)
	iv, err := scanInterview(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrStateConflict
	}
	return iv, err
}

func (r *interviewRepo) Reserve(ctx context.Context, id, agentID uuid.UUID) (*models.Interview, error) {
	return r.transition(ctx, id, models.ActionReserve,
		`reserved_by = $4, reserved_at = NOW()`,
		`accepted_by IS NULL`, agentID)
}

func (r *interviewRepo) Decline(ctx context.Context, id, agentID uuid.UUID) (*models.Interview, error) {
	return r.transition(ctx, id, models.ActionDecline,
		`reserved_by = NULL, reserved_at = NULL`,
		`reserved_by = $4`, agentID)
}

// Accept takes an open interview, or one this agent reserved. Unpaid
// interviews cannot be accepted.
func (r *interviewRepo) Accept(ctx context.Context, id, agentID uuid.UUID) (*models.Interview, error) {
	return r.transition(ctx, id, models.ActionAccept,
		`accepted_by = $4, accepted_at = NOW(), reserved_by = $4, reserved_at = COALESCE(reserved_at, NOW())`,
		`accepted_by IS NULL AND payment_status = $5 AND (status = $6 OR reserved_by = $4)`,
		agentID, string(models.PaymentCompleted), string(models.StatusScheduled))
}

func (r *interviewRepo) Transfer(ctx context.Context, id, fromAgentID, toAgentID uuid.UUID) (*models.Interview, error) {
	return r.transition(ctx, id, models.ActionTransfer,
		`accepted_by = $5, reserved_by = $5, transfer_log = transfer_log || jsonb_build_array(jsonb_build_object('from', $6::text, 'to', $7::text, 'at', NOW()))`,
		`accepted_by = $4`, fromAgentID, toAgentID, fromAgentID.String(), toAgentID.String())
}

func (r *interviewRepo) StartTravel(ctx context.Context, id, agentID uuid.UUID) (*models.Interview, error) {
	return r.transition(ctx, id, models.ActionStartTravel,
		`employee_started_at = NOW()`,
		`accepted_by = $4`, agentID)
}

func (r *interviewRepo) StartRecording(ctx context.Context, id, agentID uuid.UUID, photoURL string) (*models.Interview, error) {
	return r.transition(ctx, id, models.ActionStartRecording,
		`candidate_photo_url = $5, recording_started_at = NOW()`,
		`accepted_by = $4`, agentID, photoURL)
}

func (r *interviewRepo) Finish(ctx context.Context, id, agentID uuid.UUID) (*models.Interview, error) {
	return r.transition(ctx, id, models.ActionFinish,
		`recording_completed_at = NOW()`,
		`accepted_by = $4`, agentID)
}

func (r *interviewRepo) AttachVideo(ctx context.Context, id, agentID uuid.UUID, videoURL string) (*models.Interview, error) {
	return r.transition(ctx, id, models.ActionUploadVideo,
		`video_url = $5`,
		`accepted_by = $4`, agentID, videoURL)
}

func (r *interviewRepo) Cancel(ctx context.Context, companyID, id uuid.UUID) (*models.Interview, error) {
	return r.transition(ctx, id, models.ActionCancel, "", `company_id = $4`, companyID)
}

func (r *interviewRepo) MarkPaid(ctx context.Context, id uuid.UUID) (*models.Interview, error) {
	query := `
		UPDATE interviews
		SET payment_status = $1, payment_date = COALESCE(payment_date, NOW()), updated_at = NOW()
		WHERE id = $2
		RETURNING ` + interviewColumns
	return scanInterview(r.db.QueryRow(ctx, query, string(models.PaymentCompleted), id))
}

func (r *interviewRepo) SetLocation(ctx context.Context, id uuid.UUID, latitude, longitude float64) error {
	query := `
		UPDATE interviews
		SET latitude = $1, longitude = $2, location_uploaded = TRUE, updated_at = NOW()
		WHERE id = $3 AND status <> ALL($4)
	`
	closed := statusStrings([]models.InterviewStatus{models.StatusCompleted, models.StatusVideoUploaded, models.StatusCancelled})
	tag, err := r.db.Exec(ctx, query, latitude, longitude, id, closed)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ReleaseStaleReservations puts interviews reserved before the cutoff
// and never accepted back on the open board.
func (r *interviewRepo) ReleaseStaleReservations(ctx context.Context, reservedBefore time.Time) (int64, error) {
	query := `
		UPDATE interviews
		SET status = $1, reserved_by = NULL, reserved_at = NULL, updated_at = NOW()
		WHERE status = $2 AND accepted_by IS NULL AND reserved_at < $3
	`
	tag, err := r.db.Exec(ctx, query, string(models.StatusScheduled), string(models.StatusAllotted), reservedBefore)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
