package kvstore

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/akutvagt/backend/internal/domain/entities"
	apperrors "github.com/zatekoja/akutvagt/backend/pkg/errors"
)

func TestMemoryStore_PrefixIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Set(ctx, "craftsman:1", []byte(`{}`)))
	require.NoError(t, store.Set(ctx, "click:1", []byte(`{}`)))
	require.NoError(t, store.Set(ctx, "click:2", []byte(`{}`)))

	clicks, err := store.ListPrefix(ctx, ClickPrefix)
	require.NoError(t, err)
	assert.Len(t, clicks, 2)

	n, err := store.CountPrefix(ctx, ProviderPrefix)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	existed, err := store.Delete(ctx, "click:1")
	require.NoError(t, err)
	assert.True(t, existed)
	existed, err = store.Delete(ctx, "click:1")
	require.NoError(t, err)
	assert.False(t, existed)

	_, err = store.Get(ctx, "click:1")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestProviderAdapter_ListKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	adapter := &ProviderAdapter{store: store}

	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	adapter.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	names := []string{"Første", "Anden", "Tredje", "Fjerde"}
	for _, name := range names {
		require.NoError(t, adapter.Create(ctx, &entities.ServiceProvider{
			CompanyName: name, Address: "x", Phone: "1", Category: entities.CategoryPlumber,
		}))
	}

	list, err := adapter.List(ctx)
	require.NoError(t, err)

	got := make([]string, len(list))
	for i, p := range list {
		got[i] = p.CompanyName
	}
	if diff := cmp.Diff(names, got); diff != "" {
		t.Errorf("insertion order mismatch (-want +got):\n%s", diff)
	}
}

func TestProviderAdapter_ReadsLegacyRecords(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	legacy := `{"id":"legacy-1","companyName":"Akut VVS Service ApS","address":"Hovedgaden 123","phone":"+45 12 34 56 78","hourlyRate":null,"website":null,"category":"VVS","lat":55.7}`
	require.NoError(t, store.Set(ctx, "craftsman:legacy-1", []byte(legacy)))
	require.NoError(t, store.Set(ctx, "craftsman:broken", []byte(`{not json`)))

	list, err := NewProviderAdapter(store).List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	p := list[0]
	assert.Equal(t, "legacy-1", p.ID)
	assert.Nil(t, p.HourlyRate)
	assert.Empty(t, p.Website)
	assert.Nil(t, p.Lat, "a lone latitude is treated as no coordinates")
}

func TestProviderAdapter_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	adapter := NewProviderAdapter(NewMemoryStore())

	p := &entities.ServiceProvider{CompanyName: "A", Address: "x", Phone: "1", Category: entities.CategoryGlazier}
	require.NoError(t, adapter.Create(ctx, p))

	rate := 700.0
	updated, err := adapter.Update(ctx, p.ID, entities.ProviderPatch{HourlyRate: &rate, Lat: entities.Float(55.1), Lon: entities.Float(12.1)})
	require.NoError(t, err)
	assert.Equal(t, 700.0, *updated.HourlyRate)
	assert.Equal(t, p.CreatedAt, updated.CreatedAt)

	stored, err := adapter.GetByID(ctx, p.ID)
	require.NoError(t, err)
	_, ok := stored.Coordinates()
	assert.True(t, ok)

	_, err = adapter.Update(ctx, "missing", entities.ProviderPatch{})
	assert.True(t, apperrors.IsNotFound(err))

	require.NoError(t, adapter.Delete(ctx, p.ID))
	assert.True(t, apperrors.IsNotFound(adapter.Delete(ctx, p.ID)))

	n, err := adapter.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestEventAdapter_RoundTripsBothTimestampForms(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	events := NewEventAdapter(store)

	at := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	require.NoError(t, events.RecordClick(ctx, &entities.ClickEvent{ProviderID: "a", Kind: entities.ClickKindPhone, Timestamp: entities.At(at)}))
	require.NoError(t, store.Set(ctx, "click:legacy", []byte(`{"id":"legacy","craftsmanId":"a","type":"website","timestamp":`+
		`1775124000000}`)))
	require.NoError(t, store.Set(ctx, "click:junk", []byte(`[]`)))

	clicks, err := events.ListClicks(ctx)
	require.NoError(t, err)
	require.Len(t, clicks, 2)
	for _, c := range clicks {
		assert.True(t, c.Timestamp.Equal(at), "click %s at %v", c.ID, c.Timestamp.Time)
	}

	require.NoError(t, events.RecordPageView(ctx, &entities.PageView{Timestamp: entities.At(at)}))
	require.NoError(t, events.RecordCategoryClick(ctx, &entities.CategoryClick{Category: "VVS", Timestamp: entities.At(at)}))

	views, err := events.ListPageViews(ctx)
	require.NoError(t, err)
	assert.Len(t, views, 1)

	cats, err := events.ListCategoryClicks(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "VVS", cats[0].Category)
}
