package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"

	"github.com/zatekoja/akutvagt/backend/internal/domain/entities"
	"github.com/zatekoja/akutvagt/backend/internal/domain/repositories"
	"github.com/zatekoja/akutvagt/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/akutvagt/backend/pkg/errors"
)

const providersTable = "service_providers"

var providerColumns = []interface{}{
	"id", "company_name", "address", "phone", "category", "subcategory",
	"hourly_rate", "website", "latitude", "longitude", "created_at", "updated_at",
}

// ProviderAdapter implements ProviderRepository on PostgreSQL
type ProviderAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewProviderAdapter creates a new provider adapter
func NewProviderAdapter(client *postgres.Client) repositories.ProviderRepository {
	return &ProviderAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

func providerRecord(p *entities.ServiceProvider) goqu.Record {
	return goqu.Record{
		"company_name": p.CompanyName,
		"address":      p.Address,
		"phone":        p.Phone,
		"category":     string(p.Category),
		"subcategory":  sql.NullString{String: p.Subcategory, Valid: p.Subcategory != ""},
		"hourly_rate":  nullFloat(p.HourlyRate),
		"website":      sql.NullString{String: p.Website, Valid: p.Website != ""},
		"latitude":     nullFloat(p.Lat),
		"longitude":    nullFloat(p.Lon),
		"updated_at":   p.UpdatedAt,
	}
}

// Create creates a new provider
func (a *ProviderAdapter) Create(ctx context.Context, provider *entities.ServiceProvider) error {
	provider.Normalize()
	now := time.Now().UTC()
	if provider.ID == "" {
		provider.ID = uuid.NewString()
	}
	if provider.CreatedAt.IsZero() {
		provider.CreatedAt = now
	}
	provider.UpdatedAt = now

	record := providerRecord(provider)
	record["id"] = provider.ID
	record["created_at"] = provider.CreatedAt

	query, args, err := a.db.Insert(providersTable).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create provider", err)
	}
	return nil
}

// GetByID retrieves a provider by ID
func (a *ProviderAdapter) GetByID(ctx context.Context, id string) (*entities.ServiceProvider, error) {
	query, args, err := a.db.Select(providerColumns...).
		From(providersTable).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	provider, err := scanProvider(a.client.DB().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("provider with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get provider", err)
	}
	return provider, nil
}

// GetByIDs retrieves the providers with the given ids, in insertion order
func (a *ProviderAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.ServiceProvider, error) {
	if len(ids) == 0 {
		return []*entities.ServiceProvider{}, nil
	}
	return a.list(ctx, a.db.Select(providerColumns...).
		From(providersTable).
		Where(goqu.Ex{"id": ids}))
}

// List retrieves every provider in insertion order
func (a *ProviderAdapter) List(ctx context.Context) ([]*entities.ServiceProvider, error) {
	return a.list(ctx, a.db.Select(providerColumns...).From(providersTable))
}

func (a *ProviderAdapter) list(ctx context.Context, ds *goqu.SelectDataset) ([]*entities.ServiceProvider, error) {
	query, args, err := ds.Order(goqu.I("created_at").Asc(), goqu.I("id").Asc()).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list providers", err)
	}
	defer rows.Close()

	result := make([]*entities.ServiceProvider, 0)
	for rows.Next() {
		provider, err := scanProvider(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan provider", err)
		}
		result = append(result, provider)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate providers", err)
	}
	return result, nil
}

// Update applies a partial update to a provider
func (a *ProviderAdapter) Update(ctx context.Context, id string, patch entities.ProviderPatch) (*entities.ServiceProvider, error) {
	current, err := a.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := patch.Apply(current)
	updated.Normalize()
	updated.UpdatedAt = time.Now().UTC()

	query, args, err := a.db.Update(providersTable).
		Set(providerRecord(updated)).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to update provider", err)
	}
	if err := expectAffected(result, id); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a provider
func (a *ProviderAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := a.db.Delete(providersTable).Where(goqu.Ex{"id": id}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete provider", err)
	}
	return expectAffected(result, id)
}

// Count returns the number of stored providers
func (a *ProviderAdapter) Count(ctx context.Context) (int, error) {
	query, args, err := a.db.From(providersTable).Select(goqu.COUNT("*")).ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build count query", err)
	}

	var count int
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, apperrors.NewInternalError("failed to count providers", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProvider(row rowScanner) (*entities.ServiceProvider, error) {
	provider := &entities.ServiceProvider{}
	var category string
	var subcategory, website sql.NullString
	var hourlyRate, lat, lon sql.NullFloat64

	err := row.Scan(
		&provider.ID,
		&provider.CompanyName,
		&provider.Address,
		&provider.Phone,
		&category,
		&subcategory,
		&hourlyRate,
		&website,
		&lat,
		&lon,
		&provider.CreatedAt,
		&provider.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	provider.Category = entities.Category(category)
	provider.Subcategory = subcategory.String
	provider.Website = website.String
	provider.HourlyRate = floatPtr(hourlyRate)
	provider.Lat = floatPtr(lat)
	provider.Lon = floatPtr(lon)
	if provider.Lat == nil || provider.Lon == nil {
		provider.Lat, provider.Lon = nil, nil
	}
	return provider, nil
}

func expectAffected(result sql.Result, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("provider with id %s not found", id))
	}
	return nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
