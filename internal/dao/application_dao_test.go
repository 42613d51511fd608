package dao

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardops/card-issuance-api/internal/config"
	"github.com/cardops/card-issuance-api/internal/models"
)

var applicationTestColumns = []string{
	"id", "application_no", "client_id", "product_id", "status_id", "status_code",
	"requested_at", "created_at", "updated_at",
}

func TestApplicationDAO_Create(t *testing.T) {
	db, mock := newMockDB(t, config.DatabaseTypePostgres)
	mock.ExpectExec(`INSERT INTO card_application`).WillReturnResult(sqlmock.NewResult(0, 1))

	app := &models.Application{ID: "app-1", ApplicationNo: "APP-2025-000001", StatusID: 1}
	err := NewApplicationDAO(db).Create(context.Background(), app)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationDAO_Create_DuplicateNumber(t *testing.T) {
	db, mock := newMockDB(t, config.DatabaseTypePostgres)
	mock.ExpectExec(`INSERT INTO card_application`).WillReturnError(&pq.Error{Code: "23505"})

	err := NewApplicationDAO(db).Create(context.Background(), &models.Application{ID: "app-1"})

	assert.True(t, errors.Is(err, ErrDuplicate))
}

func TestApplicationDAO_GetForUpdate_LocksRow(t *testing.T) {
	db, mock := newMockDB(t, config.DatabaseTypePostgres)
	mock.ExpectQuery(`FROM card_application a WHERE a.id = \$1 FOR UPDATE`).
		WithArgs("app-1").
		WillReturnRows(sqlmock.NewRows(applicationTestColumns).
			AddRow("app-1", "APP-2025-000001", "cl-1", int64(2), int64(3), models.AppStatusApproved, fixedTime, fixedTime, fixedTime))

	app, err := NewApplicationDAO(db).GetForUpdate(context.Background(), "app-1")

	require.NoError(t, err)
	assert.Equal(t, "APP-2025-000001", app.ApplicationNo)
	assert.Equal(t, "cl-1", app.ClientID)
	assert.Equal(t, models.AppStatusApproved, app.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationDAO_GetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t, config.DatabaseTypeMySQL)
	mock.ExpectQuery(`FROM card_application a WHERE a.id = \?$`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(applicationTestColumns))

	_, err := NewApplicationDAO(db).GetByID(context.Background(), "missing")

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationDAO_Update_NotFound(t *testing.T) {
	db, mock := newMockDB(t, config.DatabaseTypePostgres)
	mock.ExpectExec(`UPDATE card_application SET`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewApplicationDAO(db).Update(context.Background(), &models.Application{ID: "gone"})

	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestApplicationDAO_List_AppliesFilters(t *testing.T) {
	db, mock := newMockDB(t, config.DatabaseTypePostgres)
	filter := models.ApplicationFilter{
		Query:       "ivan",
		StatusCodes: []string{models.AppStatusNew, models.AppStatusInReview},
		From:        &fixedTime,
		Limit:       20,
	}

	mock.ExpectQuery(`SELECT COUNT\(\*\).*st.code IN \(\$4, \$5\) AND a.requested_at >= \$6`).
		WithArgs("%ivan%", "%ivan%", "%ivan%", models.AppStatusNew, models.AppStatusInReview, fixedTime).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`ORDER BY a.requested_at DESC LIMIT \$7 OFFSET \$8`).
		WithArgs("%ivan%", "%ivan%", "%ivan%", models.AppStatusNew, models.AppStatusInReview, fixedTime, 20, 0).
		WillReturnRows(sqlmock.NewRows(applicationTestColumns).
			AddRow("app-1", "APP-2025-000001", "cl-1", int64(2), int64(1), models.AppStatusNew, fixedTime, fixedTime, fixedTime))

	apps, total, err := NewApplicationDAO(db).List(context.Background(), filter)

	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, apps, 1)
	assert.Equal(t, "app-1", apps[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
