package app_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"fastpost/internal/app"
	"fastpost/internal/config"
	"fastpost/internal/models"
	"fastpost/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(driver string) config.Config {
	return config.Config{
		StoreDriver:   driver,
		SQLiteDSN:     fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		JWTSecret:     "secret",
		SessionTTL:    time.Hour,
		AssistTimeout: time.Second,
		VehicleFee:    10,
		SeedDemoData:  true,
	}
}

func TestSeedOrderAndIdempotence(t *testing.T) {
	users := repositories.NewMemoryUserRepository()
	listings := repositories.NewMemoryListingRepository()
	now := time.Now()

	require.NoError(t, app.Seed(users, listings, now))
	require.NoError(t, app.Seed(users, listings, now))

	all, err := listings.GetAll()
	require.NoError(t, err)
	require.Len(t, all, 4)
	for i, id := range []string{"p1", "p2", "p3", "p4"} {
		assert.Equal(t, id, all[i].ID)
	}
	assert.Equal(t, models.StatusApproved, all[2].Status)
	assert.Equal(t, models.CurrencyIQD, all[2].Currency)
	assert.Equal(t, models.StatusPending, all[3].Status)
	assert.Equal(t, models.CategoryVehicle, all[3].Category)
	assert.True(t, all[0].IsVip)
	assert.Equal(t, "Sulaymaniyah", all[0].Metadata.Location())

	actors, err := users.GetAll()
	require.NoError(t, err)
	require.Len(t, actors, 3)
	assert.True(t, actors[0].IsAdmin())
	assert.Equal(t, models.RoleBusiness, actors[2].Role)
}

func TestDemoListingsCarryMatchingDetails(t *testing.T) {
	for _, l := range app.DemoListings(time.Now()) {
		assert.NoError(t, l.Metadata.MatchCategory(l.Category), l.ID)
		assert.Equal(t, models.CurrencyFor(l.Category), l.Currency, l.ID)

		// a listing only leaves its initial status through moderation
		initial := models.InitialStatusFor(l.Category)
		if l.Status != initial {
			assert.Equal(t, models.StatusPending, initial, l.ID)
		}
	}
}

func TestNewWiresEveryStore(t *testing.T) {
	for _, driver := range []string{config.StoreMemory, config.StoreSQLite} {
		t.Run(driver, func(t *testing.T) {
			a, err := app.New(context.Background(), testConfig(driver), zap.NewNop(), app.Options{DisableAccessLog: true})
			require.NoError(t, err)
			defer a.Close()

			assert.Nil(t, a.MQ)
			feed, err := a.Listings.Browse("", nil)
			require.NoError(t, err)
			assert.Len(t, feed, 4)

			token, actor, err := a.Sessions.StartSession("user_3")
			require.NoError(t, err)
			assert.NotEmpty(t, token)
			assert.Equal(t, "Business User", actor.Name)
		})
	}
}

func TestNewWithoutSeed(t *testing.T) {
	cfg := testConfig(config.StoreMemory)
	cfg.SeedDemoData = false
	a, err := app.New(context.Background(), cfg, zap.NewNop(), app.Options{DisableAccessLog: true})
	require.NoError(t, err)
	defer a.Close()

	feed, err := a.Listings.Browse("", nil)
	require.NoError(t, err)
	assert.Empty(t, feed)
}

func TestNewRejectsUnknownStore(t *testing.T) {
	_, err := app.New(context.Background(), testConfig("postgres"), zap.NewNop(), app.Options{})
	assert.Error(t, err)
}
