package services_test

import (
	"context"

	"fastpost/internal/models"
	"fastpost/pkg/gemini"

	"github.com/stretchr/testify/mock"
)

// MockListingRepository is a mock implementation of repositories.ListingRepository
type MockListingRepository struct {
	mock.Mock
}

func (m *MockListingRepository) Insert(listing *models.Listing) error {
	args := m.Called(listing)
	return args.Error(0)
}

func (m *MockListingRepository) UpdateStatus(id string, status models.ListingStatus) error {
	args := m.Called(id, status)
	return args.Error(0)
}

func (m *MockListingRepository) CompareAndSetStatus(id string, from, to models.ListingStatus) (bool, error) {
	args := m.Called(id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockListingRepository) GetAll() ([]models.Listing, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Listing), args.Error(1)
}

func (m *MockListingRepository) Revision() uint64 {
	args := m.Called()
	return args.Get(0).(uint64)
}

// MockEventPublisher records published listing events.
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishListingEvent(event models.ListingEvent) error {
	args := m.Called(event)
	return args.Error(0)
}

// MockTextGenerator is a mock implementation of services.TextGenerator
type MockTextGenerator struct {
	mock.Mock
}

func (m *MockTextGenerator) GenerateText(ctx context.Context, req gemini.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// generatorFunc adapts a function to services.TextGenerator for tests that need to block.
type generatorFunc func(ctx context.Context, req gemini.Request) (string, error)

func (f generatorFunc) GenerateText(ctx context.Context, req gemini.Request) (string, error) {
	return f(ctx, req)
}

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetAll() ([]models.User, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

var (
	admin    = models.User{ID: "user_1", Name: "Ahmad Mala", Email: "ahmad@fastpost.iq", Role: models.RoleAdmin}
	standard = models.User{ID: "user_2", Name: "Standard User", Email: "user@fastpost.iq", Role: models.RoleStandard}
)

func floatPtr(f float64) *float64 { return &f }
