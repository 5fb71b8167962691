package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"project_healthbot/internal/entities"
	"project_healthbot/internal/interfaces"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

const tokenTTL = 24 * time.Hour

// AuthUsecase issues admin tokens for the management API.
type AuthUsecase struct {
	users     interfaces.UserStore
	jwtSecret []byte
	now       func() time.Time
}

func NewAuthUsecase(users interfaces.UserStore, secret string) *AuthUsecase {
	return &AuthUsecase{
		users:     users,
		jwtSecret: []byte(secret),
		now:       time.Now,
	}
}

// Login checks the password and returns a signed HS256 token.
func (uc *AuthUsecase) Login(ctx context.Context, username, password string) (string, error) {
	user, err := uc.users.GetByUsername(ctx, username)
	if err != nil {
		return "", fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.Username,
		"role": user.Role,
		"exp":  uc.now().Add(tokenTTL).Unix(),
	})
	signed, err := token.SignedString(uc.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// EnsureAdmin creates the admin account on startup if it is missing.
// An existing account keeps its password.
func (uc *AuthUsecase) EnsureAdmin(ctx context.Context, username, password string) error {
	if password == "" {
		return errors.New("admin password is empty")
	}
	user, err := uc.users.GetByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("lookup admin: %w", err)
	}
	if user != nil {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return uc.users.CreateUser(ctx, &entities.User{
		Username:     username,
		PasswordHash: string(hashed),
		Role:         "admin",
	})
}
