package services

import (
	"errors"
	"fmt"
	"time"

	"fastpost/internal/models"
	"fastpost/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"go.uber.org/zap"
)

// SessionService selects the active actor and issues signed session tokens for it.
type SessionService struct {
	userRepo  repositories.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	log       *zap.Logger
}

// NewSessionService creates a new SessionService.
func NewSessionService(userRepo repositories.UserRepository, jwtSecret string, ttl time.Duration, log *zap.Logger) *SessionService {
	return &SessionService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  ttl,
		log:       log,
	}
}

// Actors lists the actors a session can be started for.
func (s *SessionService) Actors() ([]models.User, error) {
	return s.userRepo.GetAll()
}

// StartSession makes the given actor active and returns a token naming it.
func (s *SessionService) StartSession(userID string) (string, *models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return "", nil, fmt.Errorf("start session for %s: %w", userID, ErrUnknownActor)
		}
		return "", nil, fmt.Errorf("failed to load actor %s: %w", userID, err)
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"role":    string(user.Role),
		"exp":     now.Add(s.tokenTTL).Unix(),
		"iat":     now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Info("session started", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return tokenString, user, nil
}

// ValidateToken parses and validates a session token, returning the claims if valid.
func (s *SessionService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}

// ActorFromToken resolves a session token to the actor it names.
// The role is read from the store, not from the token.
func (s *SessionService) ActorFromToken(tokenString string) (*models.User, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil, fmt.Errorf("invalid token: missing user_id")
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("resolve actor %s: %w", userID, ErrUnknownActor)
	}
	return user, nil
}
