package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"fastpost/internal/models"
	"fastpost/pkg/gemini"

	jsoniter "github.com/json-iterator/go"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// FallbackDescription is returned whenever description generation fails.
const FallbackDescription = "No description generated."

var fallbackInsights = []string{
	"Focus on high-performing categories",
	"Optimize pricing strategies",
	"Enhance user engagement",
}

// FallbackInsights returns the fixed strategy list served when insights generation fails.
func FallbackInsights() []string {
	out := make([]string, len(fallbackInsights))
	copy(out, fallbackInsights)
	return out
}

const (
	descriptionMaxTokens   = 200
	descriptionTemperature = float32(0.7)
)

var (
	json           = jsoniter.ConfigCompatibleWithStandardLibrary
	errNoGenerator = errors.New("no text generator configured")
)

// TextGenerator is the remote text generation backend.
type TextGenerator interface {
	GenerateText(ctx context.Context, req gemini.Request) (string, error)
}

// DescribeRequest is the input of the description assist.
type DescribeRequest struct {
	Category models.Category   `json:"category"`
	Title    string            `json:"title"`
	Specs    map[string]string `json:"specs"`
}

// AssistService calls the generative text backend for listing descriptions
// and market insights. Remote failures never reach the caller; they turn
// into fixed fallback values.
type AssistService struct {
	generator       TextGenerator
	timeout         time.Duration
	log             *zap.Logger
	describeBreaker *gobreaker.CircuitBreaker
	insightsBreaker *gobreaker.CircuitBreaker
	describing      atomic.Bool
	analyzing       atomic.Bool
}

// NewAssistService creates a new AssistService. A nil generator makes every call fall back.
func NewAssistService(generator TextGenerator, timeout time.Duration, log *zap.Logger) *AssistService {
	return &AssistService{
		generator:       generator,
		timeout:         timeout,
		log:             log,
		describeBreaker: newBreaker("assist-description", log),
		insightsBreaker: newBreaker("assist-insights", log),
	}
}

func newBreaker(name string, log *zap.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state change",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}

// Describing reports whether a description request is in flight.
func (s *AssistService) Describing() bool {
	return s.describing.Load()
}

// Analyzing reports whether an insights request is in flight.
func (s *AssistService) Analyzing() bool {
	return s.analyzing.Load()
}

// Describe generates a listing description. It returns ErrTitleRequired for a
// blank title and ErrAssistBusy while another description is being generated.
func (s *AssistService) Describe(ctx context.Context, req DescribeRequest) (string, error) {
	if !req.Category.Valid() {
		return "", fmt.Errorf("%w: unknown category %q", ErrInvalidInput, req.Category)
	}
	if strings.TrimSpace(req.Title) == "" {
		return "", ErrTitleRequired
	}
	if !s.describing.CompareAndSwap(false, true) {
		return "", ErrAssistBusy
	}
	defer s.describing.Store(false)

	specs := req.Specs
	if specs == nil {
		specs = map[string]string{}
	}
	specsJSON, err := json.Marshal(specs)
	if err != nil {
		s.log.Warn("failed to encode specs", zap.Error(err))
		return FallbackDescription, nil
	}

	temperature := descriptionTemperature
	prompt := fmt.Sprintf("Generate a compelling, concise product description for a %s item titled %q. "+
		"Technical specs: %s. Keep it professional and highlights key selling points.",
		req.Category, req.Title, specsJSON)

	text, err := s.generate(ctx, s.describeBreaker, gemini.Request{
		Prompt:          prompt,
		MaxOutputTokens: descriptionMaxTokens,
		Temperature:     &temperature,
	})
	if err != nil {
		s.log.Warn("description generation failed, using fallback",
			zap.String("category", string(req.Category)),
			zap.Error(err),
		)
		return FallbackDescription, nil
	}
	return text, nil
}

// MarketInsights asks for short strategy suggestions for the given stats.
// It returns ErrAssistBusy while another insights request is in flight.
func (s *AssistService) MarketInsights(ctx context.Context, stats models.MarketStats) ([]string, error) {
	if !s.analyzing.CompareAndSwap(false, true) {
		return nil, ErrAssistBusy
	}
	defer s.analyzing.Store(false)

	statsJSON, err := json.Marshal(stats)
	if err != nil {
		s.log.Warn("failed to encode stats", zap.Error(err))
		return FallbackInsights(), nil
	}

	text, err := s.generate(ctx, s.insightsBreaker, gemini.Request{
		Prompt:     fmt.Sprintf("Analyze these marketplace stats and provide 3 short bullet points for business strategy: %s", statsJSON),
		StringList: true,
	})
	if err != nil {
		s.log.Warn("insights generation failed, using fallback", zap.Error(err))
		return FallbackInsights(), nil
	}

	insights, err := parseInsights(text)
	if err != nil {
		s.log.Warn("insights response is not a string list, using fallback", zap.Error(err))
		return FallbackInsights(), nil
	}
	return insights, nil
}

func parseInsights(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		text = "[]"
	}
	var insights []string
	if err := json.Unmarshal([]byte(text), &insights); err != nil {
		return nil, err
	}
	if insights == nil {
		insights = []string{}
	}
	return insights, nil
}

func (s *AssistService) generate(ctx context.Context, breaker *gobreaker.CircuitBreaker, req gemini.Request) (string, error) {
	if s.generator == nil {
		return "", errNoGenerator
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := breaker.Execute(func() (interface{}, error) {
		return s.generator.GenerateText(ctx, req)
	})
	if err != nil {
		return "", err
	}
	text, ok := result.(string)
	if !ok {
		return "", fmt.Errorf("unexpected generator result %T", result)
	}
	return text, nil
}
