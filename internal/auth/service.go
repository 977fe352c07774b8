package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/training-tracker/internal/core/common/validation"
	"github.com/golang-jwt/jwt/v5"
)

type ServiceAPI interface {
	Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error)
	RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	LoadPrincipal(ctx context.Context, employeeID string) (*Principal, error)
}

// CredentialRepository reads login data. It returns ErrInvalidCredentials
// when the employee does not exist.
type CredentialRepository interface {
	GetCredential(ctx context.Context, employeeID string) (*Credential, error)
}

type TokenGenerator interface {
	GenerateAccessToken(employeeID, role string) (string, error)
	GenerateRefreshToken(employeeID, role string) (string, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	ValidateRefreshToken(tokenString string) (*Claims, error)
	AccessTTL() time.Duration
}

// Service is the main auth service with dependencies
type Service struct {
	repo           CredentialRepository
	tokenGenerator TokenGenerator
	logger         *slog.Logger
}

func NewService(repo CredentialRepository, tokenGen TokenGenerator, logger *slog.Logger) *Service {
	return &Service{
		repo:           repo,
		tokenGenerator: tokenGen,
		logger:         logger,
	}
}

// Authenticate validates credentials and returns tokens
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	id, ok := validation.NormalizeEmployeeID(dto.EmployeeID)
	if !ok {
		return AuthTokens{}, ErrInvalidCredentials
	}

	cred, err := s.repo.GetCredential(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrInvalidCredentials) {
			s.logger.Error("credential lookup failed", "error", err, "employee_id", id)
		}
		return AuthTokens{}, ErrInvalidCredentials
	}

	if err := VerifyPassword(cred.PasswordHash, dto.Password); err != nil {
		s.logger.Warn("login rejected", "employee_id", id)
		return AuthTokens{}, ErrInvalidCredentials
	}

	s.logger.Info("employee logged in", "employee_id", id, "role", cred.Role)
	return s.issue(cred.EmployeeID, cred.Role)
}

// RefreshTokens validates refresh token and returns new tokens. The role is
// reloaded so a demoted or deleted employee cannot keep refreshing.
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error) {
	claims, err := s.tokenGenerator.ValidateRefreshToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	cred, err := s.repo.GetCredential(ctx, claims.EmployeeID)
	if err != nil {
		return AuthTokens{}, ErrInvalidToken
	}

	return s.issue(cred.EmployeeID, cred.Role)
}

func (s *Service) issue(employeeID, role string) (AuthTokens, error) {
	accessToken, err := s.tokenGenerator.GenerateAccessToken(employeeID, role)
	if err != nil {
		return AuthTokens{}, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, err := s.tokenGenerator.GenerateRefreshToken(employeeID, role)
	if err != nil {
		return AuthTokens{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.tokenGenerator.AccessTTL().Seconds()),
	}, nil
}

// ValidateAccessToken validates access token and returns claims
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateAccessToken(tokenString)
}

// LoadPrincipal resolves the current state of an authenticated employee.
func (s *Service) LoadPrincipal(ctx context.Context, employeeID string) (*Principal, error) {
	cred, err := s.repo.GetCredential(ctx, employeeID)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return nil, ErrEmployeeGone
		}
		return nil, err
	}
	return cred.Principal(), nil
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}

func NewJWTTokenGenerator(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTTokenGenerator {
	return &JWTTokenGenerator{
		AccessTokenSecret:  []byte(accessSecret),
		RefreshTokenSecret: []byte(refreshSecret),
		AccessTokenTTL:     accessTTL,
		RefreshTokenTTL:    refreshTTL,
	}
}

func (j *JWTTokenGenerator) AccessTTL() time.Duration {
	return j.AccessTokenTTL
}

func (j *JWTTokenGenerator) GenerateAccessToken(employeeID, role string) (string, error) {
	return j.sign(employeeID, role, TokenTypeAccess, j.AccessTokenTTL, j.AccessTokenSecret)
}

func (j *JWTTokenGenerator) GenerateRefreshToken(employeeID, role string) (string, error) {
	return j.sign(employeeID, role, TokenTypeRefresh, j.RefreshTokenTTL, j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) sign(employeeID, role, tokenType string, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now()
	claims := &Claims{
		EmployeeID: employeeID,
		Role:       role,
		TokenType:  tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   employeeID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func (j *JWTTokenGenerator) ValidateAccessToken(tokenString string) (*Claims, error) {
	return j.validate(tokenString, TokenTypeAccess, j.AccessTokenSecret)
}

func (j *JWTTokenGenerator) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return j.validate(tokenString, TokenTypeRefresh, j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) validate(tokenString, tokenType string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.TokenType != tokenType || claims.EmployeeID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
