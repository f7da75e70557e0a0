package database

import (
	"context"
	_ "embed"

	"github.com/zatekoja/akutvagt/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/akutvagt/backend/pkg/errors"
)

//go:embed schema.sql
var schema string

// EnsureSchema creates the provider and event tables when they are missing
func EnsureSchema(ctx context.Context, client *postgres.Client) error {
	if _, err := client.DB().ExecContext(ctx, schema); err != nil {
		return apperrors.NewInternalError("failed to apply schema", err)
	}
	return nil
}
