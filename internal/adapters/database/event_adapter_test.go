package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/akutvagt/backend/internal/domain/entities"
	"github.com/zatekoja/akutvagt/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/akutvagt/backend/pkg/errors"
)

func TestEventAdapter_RecordClickAssignsID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO "click_events"`).WillReturnResult(sqlmock.NewResult(0, 1))

	adapter := NewEventAdapter(postgres.NewClientFromDB(db))
	click := &entities.ClickEvent{ProviderID: "p1", Kind: entities.ClickKindPhone, Timestamp: entities.At(time.Now())}
	require.NoError(t, adapter.RecordClick(context.Background(), click))

	assert.NotEmpty(t, click.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventAdapter_ListClicks(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	at := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT "id", "provider_id", "kind", "occurred_at" FROM "click_events" ORDER BY`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "provider_id", "kind", "occurred_at"}).
			AddRow("c1", "p1", "phone", at).
			AddRow("c2", "p1", "website", nil))

	clicks, err := NewEventAdapter(postgres.NewClientFromDB(db)).ListClicks(context.Background())
	require.NoError(t, err)
	require.Len(t, clicks, 2)

	assert.Equal(t, entities.ClickKindPhone, clicks[0].Kind)
	assert.True(t, clicks[0].Timestamp.Equal(at))
	assert.True(t, clicks[1].Timestamp.IsZero())
}

func TestEventAdapter_ListPageViewsError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM "page_views"`).WillReturnError(errors.New("connection reset"))

	_, err = NewEventAdapter(postgres.NewClientFromDB(db)).ListPageViews(context.Background())
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeInternal))
}

func TestEventAdapter_CategoryClicksRoundTrip(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	adapter := NewEventAdapter(postgres.NewClientFromDB(db))

	mock.ExpectExec(`INSERT INTO "category_clicks"`).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, adapter.RecordCategoryClick(context.Background(), &entities.CategoryClick{Category: "Låsesmed"}))

	mock.ExpectQuery(`FROM "category_clicks"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "category", "occurred_at"}).AddRow("k1", "Låsesmed", time.Now()))
	clicks, err := adapter.ListCategoryClicks(context.Background())
	require.NoError(t, err)
	require.Len(t, clicks, 1)
	assert.Equal(t, "Låsesmed", clicks[0].Category)
	assert.NoError(t, mock.ExpectationsWereMet())
}
