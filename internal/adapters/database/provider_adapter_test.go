package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/akutvagt/backend/internal/domain/entities"
	"github.com/zatekoja/akutvagt/backend/internal/domain/repositories"
	"github.com/zatekoja/akutvagt/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/akutvagt/backend/pkg/errors"
)

var providerRowColumns = []string{
	"id", "company_name", "address", "phone", "category", "subcategory",
	"hourly_rate", "website", "latitude", "longitude", "created_at", "updated_at",
}

func setupProviderAdapter(t *testing.T) (repositories.ProviderRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewProviderAdapter(postgres.NewClientFromDB(db)), mock
}

func TestProviderAdapter_GetByID(t *testing.T) {
	adapter, mock := setupProviderAdapter(t)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	rows := sqlmock.NewRows(providerRowColumns).
		AddRow("p1", "Akut VVS", "Nørrebrogade 1", "12345678", "VVS", nil, 650.0, "https://vvs.dk", 55.69, 12.55, created, created)
	mock.ExpectQuery(`SELECT .* FROM "service_providers" WHERE \("id" = 'p1'\)`).WillReturnRows(rows)

	p, err := adapter.GetByID(context.Background(), "p1")
	require.NoError(t, err)

	assert.Equal(t, "Akut VVS", p.CompanyName)
	assert.Equal(t, entities.CategoryPlumber, p.Category)
	require.NotNil(t, p.HourlyRate)
	assert.Equal(t, 650.0, *p.HourlyRate)
	loc, ok := p.Coordinates()
	assert.True(t, ok)
	assert.Equal(t, 55.69, loc.Latitude)
	assert.Empty(t, p.Subcategory)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProviderAdapter_GetByIDNotFound(t *testing.T) {
	adapter, mock := setupProviderAdapter(t)
	mock.ExpectQuery(`FROM "service_providers"`).WillReturnRows(sqlmock.NewRows(providerRowColumns))

	_, err := adapter.GetByID(context.Background(), "missing")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestProviderAdapter_ListDropsPartialCoordinates(t *testing.T) {
	adapter, mock := setupProviderAdapter(t)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	rows := sqlmock.NewRows(providerRowColumns).
		AddRow("p1", "A", "Addr", "1", "VVS", nil, nil, nil, 55.0, nil, created, created).
		AddRow("p2", "B", "Addr", "2", "Andet akut", "Skadedyr", nil, nil, nil, nil, created.Add(time.Second), created)
	mock.ExpectQuery(`SELECT .* FROM "service_providers" ORDER BY "created_at" ASC, "id" ASC`).WillReturnRows(rows)

	list, err := adapter.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Nil(t, list[0].Lat)
	assert.Nil(t, list[0].Lon)
	assert.Equal(t, "Skadedyr", list[1].Subcategory)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProviderAdapter_Create(t *testing.T) {
	adapter, mock := setupProviderAdapter(t)
	mock.ExpectExec(`INSERT INTO "service_providers"`).WillReturnResult(sqlmock.NewResult(0, 1))

	p := &entities.ServiceProvider{CompanyName: " Låse-Ole ", Address: "Vesterbro 2", Phone: "87654321", Category: entities.CategoryLocksmith, Lat: entities.Float(55.6)}
	require.NoError(t, adapter.Create(context.Background(), p))

	assert.NotEmpty(t, p.ID)
	assert.False(t, p.CreatedAt.IsZero())
	assert.Equal(t, "Låse-Ole", p.CompanyName)
	assert.Nil(t, p.Lat)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProviderAdapter_UpdateAppliesPatch(t *testing.T) {
	adapter, mock := setupProviderAdapter(t)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(`FROM "service_providers" WHERE`).WillReturnRows(sqlmock.NewRows(providerRowColumns).
		AddRow("p1", "Old", "Addr", "1", "VVS", nil, nil, nil, nil, nil, created, created))
	mock.ExpectExec(`UPDATE "service_providers" SET .* WHERE \("id" = 'p1'\)`).WillReturnResult(sqlmock.NewResult(0, 1))

	name := "New"
	updated, err := adapter.Update(context.Background(), "p1", entities.ProviderPatch{CompanyName: &name})
	require.NoError(t, err)

	assert.Equal(t, "New", updated.CompanyName)
	assert.Equal(t, created, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(created))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProviderAdapter_DeleteMissing(t *testing.T) {
	adapter, mock := setupProviderAdapter(t)
	mock.ExpectExec(`DELETE FROM "service_providers"`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := adapter.Delete(context.Background(), "nope")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestProviderAdapter_Count(t *testing.T) {
	adapter, mock := setupProviderAdapter(t)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "service_providers"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := adapter.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestProviderAdapter_GetByIDsEmpty(t *testing.T) {
	adapter, mock := setupProviderAdapter(t)

	list, err := adapter.GetByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}
