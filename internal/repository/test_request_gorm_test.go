package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"covid-testing-server/internal/models"
)

var requestColumns = []string{
	"id", "name", "age", "gender", "phone_number", "email", "pin_code",
	"address", "created_by", "status", "tester_id", "doctor_id", "created_at", "updated_at",
}

func setupMockDB(t *testing.T) (sqlmock.Sqlmock, TestRequestRepository) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)

	return mock, NewTestRequestRepository(db)
}

func TestFindByID_NotFound(t *testing.T) {
	mock, repo := setupMockDB(t)

	mock.ExpectQuery("SELECT \\* FROM `test_requests`").
		WillReturnRows(sqlmock.NewRows(requestColumns))

	req, err := repo.FindByID(context.Background(), 42)

	assert.Nil(t, req)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByStatus_PreloadsRelations(t *testing.T) {
	mock, repo := setupMockDB(t)
	mock.MatchExpectationsInOrder(false)

	now := time.Now()
	rows := sqlmock.NewRows(requestColumns).
		AddRow(1, "Mike Tester", 28, "MALE", "999999", "mike@test.com", 110059, "", "user-1", "LAB_TEST_COMPLETED", "tester-1", nil, now, now).
		AddRow(2, "Anna Tester", 31, "FEMALE", "888888", "anna@test.com", 110060, "", "user-2", "LAB_TEST_COMPLETED", "tester-1", nil, now, now)

	mock.ExpectQuery("SELECT \\* FROM `test_requests` WHERE status = \\?").
		WithArgs(models.StatusLabTestCompleted).
		WillReturnRows(rows)
	mock.ExpectQuery("SELECT \\* FROM `lab_results`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "test_request_id", "tester_id", "blood_pressure", "result"}).
			AddRow(7, 1, "tester-1", "120/80", "NEGATIVE"))
	mock.ExpectQuery("SELECT \\* FROM `consultations`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "test_request_id", "doctor_id", "suggestion"}))

	reqs, err := repo.FindByStatus(context.Background(), models.StatusLabTestCompleted)

	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.Equal(t, uint(1), reqs[0].ID)
	require.NotNil(t, reqs[0].TesterID)
	assert.Equal(t, "tester-1", *reqs[0].TesterID)
	require.NotNil(t, reqs[0].LabResult)
	assert.Equal(t, "120/80", reqs[0].LabResult.BloodPressure)
	assert.Nil(t, reqs[1].LabResult)
	assert.Nil(t, reqs[0].Consultation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHasActiveRequest(t *testing.T) {
	mock, repo := setupMockDB(t)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `test_requests`").
		WithArgs("mike@test.com", "999999", models.StatusCompleted).
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(1))

	active, err := repo.HasActiveRequest(context.Background(), "mike@test.com", "999999")

	require.NoError(t, err)
	assert.True(t, active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransition_StaleStatus(t *testing.T) {
	mock, repo := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `test_requests` SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	req := &models.TestRequest{ID: 5, Status: models.StatusLabTestInProgress}
	err := repo.Transition(context.Background(), req, models.StatusInitiated, &models.TestRequestFlow{})

	assert.ErrorIs(t, err, ErrStaleStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransition_WritesLabResultAndFlow(t *testing.T) {
	mock, repo := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `test_requests` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `lab_results`").
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectExec("INSERT INTO `test_request_flows`").
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectCommit()

	tester := "tester-1"
	req := &models.TestRequest{
		ID:       5,
		Status:   models.StatusLabTestCompleted,
		TesterID: &tester,
		LabResult: &models.LabResult{
			TesterID:      tester,
			BloodPressure: "120/80",
			Result:        models.TestNegative,
		},
	}
	flow := &models.TestRequestFlow{
		FromStatus: models.StatusLabTestInProgress,
		ToStatus:   models.StatusLabTestCompleted,
		ChangedBy:  tester,
	}

	err := repo.Transition(context.Background(), req, models.StatusLabTestInProgress, flow)

	require.NoError(t, err)
	assert.False(t, req.UpdatedAt.IsZero())
	assert.Equal(t, uint(5), req.LabResult.TestRequestID)
	assert.Equal(t, uint(9), req.LabResult.ID)
	assert.Equal(t, uint(5), flow.TestRequestID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransition_RejectsSkippedStatus(t *testing.T) {
	mock, repo := setupMockDB(t)

	req := &models.TestRequest{ID: 5, Status: models.StatusCompleted}
	err := repo.Transition(context.Background(), req, models.StatusInitiated, &models.TestRequestFlow{})

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrStaleStatus)
	assert.True(t, req.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}
