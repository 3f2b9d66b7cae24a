package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"cabbooking/internal/domain"
)

func newMockBookingRepo(t *testing.T) (*BookingRepository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return NewBookingRepository(db), mock
}

func bookingRow(status domain.BookingStatus) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{"id", "customer_id", "service_type", "car_type", "estimated_price", "status", "created_at", "updated_at"}).
		AddRow("b-1", "cust-1", "local", "4-seater", 900.0, string(status), now, now)
}

func TestBookingRepository_TransitionLostRaceOnPostgres(t *testing.T) {
	repo, mock := newMockBookingRepo(t)

	mock.ExpectExec(`UPDATE "bookings" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT \* FROM "bookings"`).
		WillReturnRows(bookingRow(domain.BookingCancelled))

	current, err := repo.Transition(context.Background(), "b-1", domain.BookingPending, domain.BookingConfirmed, "")
	assert.True(t, domain.IsConflict(err))
	assert.True(t, errors.Is(err, domain.ErrStaleBooking))
	require.NotNil(t, current)
	assert.Equal(t, domain.BookingCancelled, current.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_TransitionConnectionLossIsTransient(t *testing.T) {
	repo, mock := newMockBookingRepo(t)

	mock.ExpectExec(`UPDATE "bookings" SET`).
		WillReturnError(context.DeadlineExceeded)

	_, err := repo.Transition(context.Background(), "b-1", domain.BookingPending, domain.BookingConfirmed, "")
	assert.True(t, domain.IsTransient(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
