package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"genzip/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

var creditCols = []string{"id", "company_id", "credits_added", "credits_used", "reason", "reference_id", "idempotency_key", "amount_paid", "payment_mode", "released_at", "created_at"}

type CreditRepoTestSuite struct {
	suite.Suite
	mock        pgxmock.PgxPoolIface
	repo        CreditRepository
	companyID   uuid.UUID
	interviewID uuid.UUID
	ctx         context.Context
}

func (suite *CreditRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	require.NoError(suite.T(), err)
	suite.mock = mock
	suite.repo = NewCreditRepository(mock)
	suite.companyID = uuid.New()
	suite.interviewID = uuid.New()
	suite.ctx = context.Background()
}

func (suite *CreditRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestCreditRepoTestSuite(t *testing.T) {
	suite.Run(t, new(CreditRepoTestSuite))
}

func (suite *CreditRepoTestSuite) usageRow() *pgxmock.Rows {
	ref := suite.interviewID
	return suite.mock.NewRows(creditCols).AddRow(
		uuid.New(), suite.companyID, 0, 1, "Interview scheduled", &ref, (*string)(nil), 0.0, (*string)(nil), (*time.Time)(nil), time.Now(),
	)
}

func (suite *CreditRepoTestSuite) expectLockAndBalance(added, used int) {
	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM companies WHERE id = $1 FOR UPDATE`)).
		WithArgs(suite.companyID).
		WillReturnRows(suite.mock.NewRows([]string{"id"}).AddRow(suite.companyID))
	suite.mock.ExpectQuery(`SELECT COALESCE\(SUM\(credits_added\), 0\)`).
		WithArgs(suite.companyID).
		WillReturnRows(suite.mock.NewRows([]string{"added", "used"}).AddRow(added, used))
}

func (suite *CreditRepoTestSuite) TestConsume_Success() {
	suite.expectLockAndBalance(5, 2)
	suite.mock.ExpectQuery(`INSERT INTO credit_transactions`).
		WithArgs(pgxmock.AnyArg(), suite.companyID, "Interview scheduled", suite.interviewID).
		WillReturnRows(suite.usageRow())
	suite.mock.ExpectCommit()

	usage, err := suite.repo.Consume(suite.ctx, suite.companyID, suite.interviewID, "Interview scheduled")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, usage.CreditsUsed)
	assert.Equal(suite.T(), suite.interviewID, *usage.ReferenceID)
}

func (suite *CreditRepoTestSuite) TestConsume_InsufficientCredits() {
	suite.expectLockAndBalance(3, 3)
	suite.mock.ExpectRollback()

	usage, err := suite.repo.Consume(suite.ctx, suite.companyID, suite.interviewID, "Interview scheduled")
	assert.ErrorIs(suite.T(), err, ErrInsufficientCredits)
	assert.Nil(suite.T(), usage)
}

func (suite *CreditRepoTestSuite) TestConsume_AlreadyConsumed() {
	suite.expectLockAndBalance(4, 1)
	suite.mock.ExpectQuery(`INSERT INTO credit_transactions`).
		WithArgs(pgxmock.AnyArg(), suite.companyID, "Interview scheduled", suite.interviewID).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	suite.mock.ExpectRollback()

	_, err := suite.repo.Consume(suite.ctx, suite.companyID, suite.interviewID, "Interview scheduled")
	assert.ErrorIs(suite.T(), err, ErrCreditAlreadyUsed)
}

func (suite *CreditRepoTestSuite) TestConsume_UnknownCompany() {
	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM companies WHERE id = $1 FOR UPDATE`)).
		WithArgs(suite.companyID).
		WillReturnError(pgx.ErrNoRows)
	suite.mock.ExpectRollback()

	_, err := suite.repo.Consume(suite.ctx, suite.companyID, suite.interviewID, "Interview scheduled")
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *CreditRepoTestSuite) TestGrant_DuplicateKeyIsNoop() {
	key := "checkout:cs_test_123"
	req := models.GrantRequest{CompanyID: suite.companyID, Credits: 23, Reason: "Subscription - Starter", AmountPaid: 49999, IdempotencyKey: &key}

	suite.mock.ExpectQuery(`ON CONFLICT \(idempotency_key\) DO NOTHING`).
		WithArgs(pgxmock.AnyArg(), suite.companyID, 23, "Subscription - Starter", req.ReferenceID, req.IdempotencyKey, 49999.0, req.PaymentMode).
		WillReturnError(pgx.ErrNoRows)

	grant, created, err := suite.repo.Grant(suite.ctx, req)
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), created)
	assert.Nil(suite.T(), grant)
}

func (suite *CreditRepoTestSuite) TestSummary() {
	suite.mock.ExpectQuery(`SELECT COALESCE\(SUM\(credits_added\), 0\)`).
		WithArgs(suite.companyID).
		WillReturnRows(suite.mock.NewRows([]string{"added", "used"}).AddRow(58, 10))

	s, err := suite.repo.Summary(suite.ctx, suite.companyID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.CreditSummary{Added: 58, Used: 10, Available: 48}, *s)
}

func (suite *CreditRepoTestSuite) TestRelease_NoActiveUsage() {
	suite.mock.ExpectQuery(`UPDATE credit_transactions\s+SET released_at = NOW\(\)`).
		WithArgs(suite.interviewID).
		WillReturnError(pgx.ErrNoRows)

	_, err := suite.repo.Release(suite.ctx, suite.interviewID)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}
