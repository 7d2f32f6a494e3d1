package services_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"fastpost/internal/models"
	"fastpost/internal/services"
	"fastpost/pkg/gemini"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAssist(generator services.TextGenerator) *services.AssistService {
	return services.NewAssistService(generator, time.Second, zap.NewNop())
}

func TestAssistService_DescribeReturnsGeneratedText(t *testing.T) {
	gen := new(MockTextGenerator)
	service := newAssist(gen)

	gen.On("GenerateText", mock.Anything, mock.MatchedBy(func(req gemini.Request) bool {
		return strings.Contains(req.Prompt, `"BMW M4"`) &&
			strings.Contains(req.Prompt, "vehicle item") &&
			strings.Contains(req.Prompt, `{"engine":"3.0L"}`) &&
			req.MaxOutputTokens == 200 &&
			req.Temperature != nil && *req.Temperature == float32(0.7) &&
			!req.StringList
	})).Return("A stunning coupe.", nil).Once()

	text, err := service.Describe(context.Background(), services.DescribeRequest{
		Category: models.CategoryVehicle,
		Title:    "BMW M4",
		Specs:    map[string]string{"engine": "3.0L"},
	})
	require.NoError(t, err)
	assert.Equal(t, "A stunning coupe.", text)
	assert.False(t, service.Describing())
	gen.AssertExpectations(t)
}

func TestAssistService_DescribeFallsBackOnRemoteFailure(t *testing.T) {
	gen := new(MockTextGenerator)
	service := newAssist(gen)
	gen.On("GenerateText", mock.Anything, mock.Anything).Return("", fmt.Errorf("quota exceeded")).Twice()

	req := services.DescribeRequest{Category: models.CategoryMarket, Title: "Fresh bread"}
	for i := 0; i < 2; i++ {
		text, err := service.Describe(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "No description generated.", text)
	}
	gen.AssertExpectations(t)
}

func TestAssistService_DescribeWithoutGenerator(t *testing.T) {
	service := newAssist(nil)

	text, err := service.Describe(context.Background(), services.DescribeRequest{Category: models.CategoryClothing, Title: "Jacket"})
	require.NoError(t, err)
	assert.Equal(t, services.FallbackDescription, text)
}

func TestAssistService_DescribeRejectsBadInputWithoutCalling(t *testing.T) {
	gen := new(MockTextGenerator)
	service := newAssist(gen)

	_, err := service.Describe(context.Background(), services.DescribeRequest{Category: models.CategoryVehicle, Title: ""})
	assert.ErrorIs(t, err, services.ErrTitleRequired)

	_, err = service.Describe(context.Background(), services.DescribeRequest{Category: models.CategoryVehicle, Title: "   "})
	assert.ErrorIs(t, err, services.ErrTitleRequired)

	_, err = service.Describe(context.Background(), services.DescribeRequest{Category: "boats", Title: "Yacht"})
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	gen.AssertNotCalled(t, "GenerateText", mock.Anything, mock.Anything)
}

func TestAssistService_DescribeTimesOut(t *testing.T) {
	slow := generatorFunc(func(ctx context.Context, _ gemini.Request) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	service := services.NewAssistService(slow, 20*time.Millisecond, zap.NewNop())

	start := time.Now()
	text, err := service.Describe(context.Background(), services.DescribeRequest{Category: models.CategoryVehicle, Title: "Slow car"})
	require.NoError(t, err)
	assert.Equal(t, services.FallbackDescription, text)
	assert.Less(t, time.Since(start), time.Second)
	assert.False(t, service.Describing())
}

func TestAssistService_DescribeBusyGate(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	blocking := generatorFunc(func(ctx context.Context, _ gemini.Request) (string, error) {
		close(started)
		<-release
		return "first", nil
	})
	service := newAssist(blocking)
	req := services.DescribeRequest{Category: models.CategoryVehicle, Title: "BMW"}

	done := make(chan string, 1)
	go func() {
		text, _ := service.Describe(context.Background(), req)
		done <- text
	}()
	<-started

	assert.True(t, service.Describing())
	_, err := service.Describe(context.Background(), req)
	assert.ErrorIs(t, err, services.ErrAssistBusy)

	close(release)
	assert.Equal(t, "first", <-done)
	assert.False(t, service.Describing())
}

func TestAssistService_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	gen := new(MockTextGenerator)
	service := newAssist(gen)
	gen.On("GenerateText", mock.Anything, mock.Anything).Return("", fmt.Errorf("unavailable")).Times(5)

	req := services.DescribeRequest{Category: models.CategoryVehicle, Title: "BMW"}
	for i := 0; i < 7; i++ {
		text, err := service.Describe(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, services.FallbackDescription, text)
	}
	// the open breaker short-circuits the last two calls
	gen.AssertNumberOfCalls(t, "GenerateText", 5)
}

func TestAssistService_MarketInsights(t *testing.T) {
	stats := models.MarketStats{TotalListings: 3, PendingCount: 1, RevenueProxy: 10}

	cases := []struct {
		name     string
		text     string
		err      error
		expected []string
	}{
		{"string list", `["Promote vehicles","Lower fees","Add chat"]`, nil, []string{"Promote vehicles", "Lower fees", "Add chat"}},
		{"blank response", "  ", nil, []string{}},
		{"null response", "null", nil, []string{}},
		{"malformed response", "not json", nil, services.FallbackInsights()},
		{"object response", `{"a":1}`, nil, services.FallbackInsights()},
		{"remote failure", "", fmt.Errorf("boom"), services.FallbackInsights()},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gen := new(MockTextGenerator)
			service := newAssist(gen)
			gen.On("GenerateText", mock.Anything, mock.MatchedBy(func(req gemini.Request) bool {
				return req.StringList && strings.Contains(req.Prompt, `"total_listings":3`)
			})).Return(tc.text, tc.err).Once()

			insights, err := service.MarketInsights(context.Background(), stats)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, insights)
			gen.AssertExpectations(t)
		})
	}
}

func TestAssistService_FallbackInsightsAreFixed(t *testing.T) {
	expected := []string{
		"Focus on high-performing categories",
		"Optimize pricing strategies",
		"Enhance user engagement",
	}
	assert.Equal(t, expected, services.FallbackInsights())

	// callers cannot corrupt the shared fallback
	got := services.FallbackInsights()
	got[0] = "changed"
	assert.Equal(t, expected, services.FallbackInsights())

	insights, err := newAssist(nil).MarketInsights(context.Background(), models.MarketStats{})
	require.NoError(t, err)
	assert.Equal(t, expected, insights)
}

func TestAssistService_InsightsBusyGate(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	blocking := generatorFunc(func(ctx context.Context, _ gemini.Request) (string, error) {
		close(started)
		<-release
		return `["ok"]`, nil
	})
	service := newAssist(blocking)

	done := make(chan []string, 1)
	go func() {
		insights, _ := service.MarketInsights(context.Background(), models.MarketStats{})
		done <- insights
	}()
	<-started

	assert.True(t, service.Analyzing())
	_, err := service.MarketInsights(context.Background(), models.MarketStats{})
	assert.ErrorIs(t, err, services.ErrAssistBusy)

	// the description gate is independent
	assert.False(t, service.Describing())

	close(release)
	assert.Equal(t, []string{"ok"}, <-done)
	assert.False(t, service.Analyzing())
}
