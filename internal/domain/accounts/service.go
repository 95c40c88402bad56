package accounts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	repo          Repository
	jwtSecret     []byte
	tokenValidity time.Duration
}

func NewService(repo Repository, jwtSecret string, tokenValidity time.Duration) *Service {
	return &Service{
		repo:          repo,
		jwtSecret:     []byte(jwtSecret),
		tokenValidity: tokenValidity,
	}
}

func (s *Service) Register(ctx context.Context, input RegisterInput) (*Account, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if len(input.Password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}
	if !input.Role.Valid() {
		return nil, fmt.Errorf("unknown role %q", input.Role)
	}

	barangay := strings.TrimSpace(input.BarangayCode)
	if input.Role == RoleBASCA && barangay == "" {
		return nil, ErrBarangayRequired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(input.FullName),
		Role:         input.Role,
	}
	if barangay != "" {
		account.BarangayCode = &barangay
	}
	if seniorID := strings.TrimSpace(input.SeniorID); seniorID != "" {
		account.SeniorID = &seniorID
	}

	if err := s.repo.Create(ctx, &account); err != nil {
		return nil, err
	}

	return &account, nil
}

// Authenticate checks credentials and issues a signed token on success.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Account, string, error) {
	account, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if err == ErrAccountNotFound {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.IssueToken(account)
	if err != nil {
		return nil, "", err
	}

	return account, token, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*Account, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) IssueToken(account *Account) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.tokenValidity)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   account.ID,
		},
		UserID: account.ID,
		Role:   account.Role,
	}
	if account.BarangayCode != nil {
		claims.BarangayCode = *account.BarangayCode
	}
	if account.SeniorID != nil {
		claims.SeniorID = *account.SeniorID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ParseToken validates a bearer token and returns its claims.
func (s *Service) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, ErrInvalidCredentials
	}
	return claims, nil
}
