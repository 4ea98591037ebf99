package account

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"covid-testing-server/internal/models"
)

func setupMockDB(t *testing.T) (sqlmock.Sqlmock, *Service) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)

	return mock, NewService(db)
}

func tester() NewUser {
	return NewUser{
		FirstName: "Tina",
		LastName:  "Lab",
		Email:     "tina@lab.test",
		Password:  "password123",
		Role:      models.RoleTester,
	}
}

func TestCreate_StoresHashedPassword(t *testing.T) {
	mock, svc := setupMockDB(t)

	mock.ExpectQuery("SELECT \\* FROM `users` WHERE email = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `users`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	user, err := svc.Create(context.Background(), tester())

	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, models.RoleTester, user.Role)
	assert.NotEqual(t, "password123", user.Password)
	assert.True(t, user.CheckPassword("password123"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_EmailTaken(t *testing.T) {
	mock, svc := setupMockDB(t)

	mock.ExpectQuery("SELECT \\* FROM `users` WHERE email = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).AddRow("u-1", "tina@lab.test"))

	_, err := svc.Create(context.Background(), tester())

	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_InvalidRole(t *testing.T) {
	_, svc := setupMockDB(t)
	in := tester()
	in.Role = "NURSE"

	_, err := svc.Create(context.Background(), in)

	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestGet_NotFound(t *testing.T) {
	mock, svc := setupMockDB(t)

	mock.ExpectQuery("SELECT \\* FROM `users` WHERE id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := svc.Get(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList_FiltersByRole(t *testing.T) {
	mock, svc := setupMockDB(t)

	mock.ExpectQuery("SELECT \\* FROM `users` WHERE role = \\?").
		WithArgs(models.RoleDoctor).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "role"}).
			AddRow("d-1", "doc@clinic.test", "DOCTOR"))

	users, err := svc.List(context.Background(), models.RoleDoctor)

	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "doc@clinic.test", users[0].Email)
}

func TestList_StorageError(t *testing.T) {
	mock, svc := setupMockDB(t)

	mock.ExpectQuery("SELECT \\* FROM `users`").WillReturnError(errors.New("connection refused"))

	_, err := svc.List(context.Background(), "")

	assert.Error(t, err)
}
