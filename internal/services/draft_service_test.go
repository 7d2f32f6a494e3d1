package services_test

import (
	"context"
	"testing"
	"time"

	"fastpost/internal/models"
	"fastpost/internal/repositories"
	"fastpost/internal/services"
	"fastpost/pkg/gemini"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func strPtr(s string) *string { return &s }

func newDraftService(generator services.TextGenerator) (*services.DraftService, *repositories.MemoryListingRepository) {
	repo := repositories.NewMemoryListingRepository()
	listings := newListingService(repo, nil)
	assist := services.NewAssistService(generator, time.Second, zap.NewNop())
	return services.NewDraftService(assist, listings, zap.NewNop()), repo
}

func TestDraftService_DefaultsAndUpdate(t *testing.T) {
	drafts, _ := newDraftService(nil)

	d := drafts.Get(standard.ID)
	assert.Equal(t, models.CategoryMarket, d.Category)
	assert.Empty(t, d.Title)
	assert.Nil(t, d.Price)

	vehicle := models.CategoryVehicle
	updated, err := drafts.Update(standard.ID, services.DraftInput{
		Title:    strPtr("BMW M4"),
		Category: &vehicle,
		Price:    floatPtr(85000),
	})
	require.NoError(t, err)
	assert.Equal(t, "BMW M4", updated.Title)
	assert.Equal(t, vehicle, updated.Category)
	assert.Equal(t, 85000.0, *updated.Price)
	assert.Greater(t, updated.Revision, d.Revision)

	// unset fields are kept
	again, err := drafts.Update(standard.ID, services.DraftInput{Description: strPtr("Fast")})
	require.NoError(t, err)
	assert.Equal(t, "BMW M4", again.Title)
	assert.Equal(t, "Fast", again.Description)

	// drafts are per actor
	assert.Empty(t, drafts.Get(admin.ID).Title)
}

func TestDraftService_UpdateRejectsInvalidInput(t *testing.T) {
	drafts, _ := newDraftService(nil)
	boats := models.Category("boats")

	_, err := drafts.Update(standard.ID, services.DraftInput{Category: &boats})
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	_, err = drafts.Update(standard.ID, services.DraftInput{Price: floatPtr(-5)})
	assert.ErrorIs(t, err, services.ErrInvalidInput)
}

func TestDraftService_GenerateDescriptionApplies(t *testing.T) {
	gen := new(MockTextGenerator)
	drafts, _ := newDraftService(gen)
	gen.On("GenerateText", mock.Anything, mock.Anything).Return("Spacious and clean.", nil).Once()

	_, err := drafts.Update(standard.ID, services.DraftInput{Title: strPtr("Family apartment")})
	require.NoError(t, err)

	d, applied, err := drafts.GenerateDescription(context.Background(), standard.ID)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, "Spacious and clean.", d.Description)
	assert.Equal(t, "Spacious and clean.", drafts.Get(standard.ID).Description)
	gen.AssertExpectations(t)
}

func TestDraftService_GenerateDescriptionRequiresTitle(t *testing.T) {
	gen := new(MockTextGenerator)
	drafts, _ := newDraftService(gen)

	_, applied, err := drafts.GenerateDescription(context.Background(), standard.ID)
	assert.ErrorIs(t, err, services.ErrTitleRequired)
	assert.False(t, applied)
	gen.AssertNotCalled(t, "GenerateText", mock.Anything, mock.Anything)
}

func TestDraftService_GenerateDescriptionFallback(t *testing.T) {
	drafts, _ := newDraftService(nil)
	_, err := drafts.Update(standard.ID, services.DraftInput{Title: strPtr("Jacket")})
	require.NoError(t, err)

	d, applied, err := drafts.GenerateDescription(context.Background(), standard.ID)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, services.FallbackDescription, d.Description)
}

func TestDraftService_LateDescriptionIsDiscarded(t *testing.T) {
	for name, change := range map[string]func(d *services.DraftService){
		"edited while generating": func(d *services.DraftService) {
			_, _ = d.Update(standard.ID, services.DraftInput{Description: strPtr("typed by hand")})
		},
		"left the form": func(d *services.DraftService) {
			d.Invalidate(standard.ID)
		},
	} {
		t.Run(name, func(t *testing.T) {
			started := make(chan struct{})
			release := make(chan struct{})
			blocking := generatorFunc(func(ctx context.Context, _ gemini.Request) (string, error) {
				close(started)
				<-release
				return "late text", nil
			})
			drafts, _ := newDraftService(blocking)
			_, err := drafts.Update(standard.ID, services.DraftInput{Title: strPtr("BMW")})
			require.NoError(t, err)

			type result struct {
				applied bool
				err     error
			}
			done := make(chan result, 1)
			go func() {
				_, applied, err := drafts.GenerateDescription(context.Background(), standard.ID)
				done <- result{applied, err}
			}()
			<-started
			assert.True(t, drafts.Get(standard.ID).Generating)

			change(drafts)
			before := drafts.Get(standard.ID).Description
			close(release)

			res := <-done
			require.NoError(t, res.err)
			assert.False(t, res.applied)
			assert.Equal(t, before, drafts.Get(standard.ID).Description)
			assert.NotEqual(t, "late text", drafts.Get(standard.ID).Description)
		})
	}
}

func TestDraftService_LeavingCreateTabDiscardsLateDescription(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	blocking := generatorFunc(func(ctx context.Context, _ gemini.Request) (string, error) {
		close(started)
		<-release
		return "late text", nil
	})
	drafts, _ := newDraftService(blocking)
	shell := services.NewShellService(drafts.Invalidate)

	_, err := shell.SelectTab(standard, services.TabCreate)
	require.NoError(t, err)
	_, err = drafts.Update(standard.ID, services.DraftInput{Title: strPtr("BMW")})
	require.NoError(t, err)

	done := make(chan bool, 1)
	go func() {
		_, applied, _ := drafts.GenerateDescription(context.Background(), standard.ID)
		done <- applied
	}()
	<-started

	_, err = shell.SelectTab(standard, services.TabHome)
	require.NoError(t, err)
	close(release)

	assert.False(t, <-done)
	assert.Empty(t, drafts.Get(standard.ID).Description)
}

func TestDraftService_Submit(t *testing.T) {
	drafts, repo := newDraftService(nil)
	vehicle := models.CategoryVehicle
	_, err := drafts.Update(standard.ID, services.DraftInput{
		Title:       strPtr("BMW M4 Competition"),
		Category:    &vehicle,
		Price:       floatPtr(85000),
		Description: strPtr("Fresh import"),
		IsVip:       boolPtr(true),
	})
	require.NoError(t, err)
	rev := drafts.Get(standard.ID).Revision

	listing, err := drafts.Submit(standard)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, listing.Status)
	assert.Equal(t, models.CurrencyUSD, listing.Currency)
	assert.True(t, listing.IsVip)
	assert.Equal(t, standard.ID, listing.OwnerID)

	all, err := repo.GetAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, listing.ID, all[0].ID)

	reset := drafts.Get(standard.ID)
	assert.Empty(t, reset.Title)
	assert.Equal(t, models.CategoryMarket, reset.Category)
	assert.Greater(t, reset.Revision, rev)
}

func TestDraftService_SubmitInvalidKeepsDraft(t *testing.T) {
	drafts, repo := newDraftService(nil)
	_, err := drafts.Update(standard.ID, services.DraftInput{Title: strPtr("Bread")})
	require.NoError(t, err)

	_, err = drafts.Submit(standard)
	require.ErrorIs(t, err, services.ErrInvalidInput)
	assert.Equal(t, "Bread", drafts.Get(standard.ID).Title)

	all, err := repo.GetAll()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func boolPtr(b bool) *bool { return &b }

func TestDraftService_GeneratingIsPerActor(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	blocking := generatorFunc(func(ctx context.Context, _ gemini.Request) (string, error) {
		close(started)
		<-release
		return "text", nil
	})
	drafts, _ := newDraftService(blocking)
	for _, actor := range []string{standard.ID, admin.ID} {
		_, err := drafts.Update(actor, services.DraftInput{Title: strPtr("BMW")})
		require.NoError(t, err)
	}

	done := make(chan bool, 1)
	go func() {
		_, applied, _ := drafts.GenerateDescription(context.Background(), standard.ID)
		done <- applied
	}()
	<-started

	assert.True(t, drafts.Get(standard.ID).Generating)
	assert.False(t, drafts.Get(admin.ID).Generating)

	// the assist gate is shared, so the other actor is told to wait
	d, applied, err := drafts.GenerateDescription(context.Background(), admin.ID)
	assert.ErrorIs(t, err, services.ErrAssistBusy)
	assert.False(t, applied)
	assert.False(t, d.Generating)

	close(release)
	assert.True(t, <-done)
	assert.False(t, drafts.Get(standard.ID).Generating)
	assert.Equal(t, "text", drafts.Get(standard.ID).Description)
}

func TestDraftService_GenerateDescriptionRejectsBlankTitle(t *testing.T) {
	gen := new(MockTextGenerator)
	drafts, _ := newDraftService(gen)
	_, err := drafts.Update(standard.ID, services.DraftInput{Title: strPtr("  \t")})
	require.NoError(t, err)

	_, applied, err := drafts.GenerateDescription(context.Background(), standard.ID)
	assert.ErrorIs(t, err, services.ErrTitleRequired)
	assert.False(t, applied)
	assert.False(t, drafts.Get(standard.ID).Generating)
	gen.AssertNotCalled(t, "GenerateText", mock.Anything, mock.Anything)
}
