package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"nestworth-api/internal/config"
	"nestworth-api/internal/models"
	"nestworth-api/internal/repo"
	"nestworth-api/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	users  UserStore
	mailer Mailer
	cfg    *config.Config
	now    func() time.Time
}

type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
	User        *models.User `json:"user"`
}

type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func NewAuthService(users UserStore, mailer Mailer, cfg *config.Config) *AuthService {
	return &AuthService{users: users, mailer: mailer, cfg: cfg, now: time.Now}
}

func (s *AuthService) Signup(ctx context.Context, firstName, lastName, email, password string) (*TokenResponse, error) {
	if len(password) < s.cfg.PasswordMinLen {
		return nil, utils.NewAppError(http.StatusBadRequest,
			fmt.Sprintf("password must be at least %d characters", s.cfg.PasswordMinLen), nil)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, utils.NewAppError(http.StatusInternalServerError, "could not secure password", nil)
	}

	user := &models.User{
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
		Email:        normalizeEmail(email),
		Role:         models.RoleUser,
		PasswordHash: string(passwordHash),
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, utils.NewAppError(http.StatusConflict, "email already registered", nil)
		}
		return nil, utils.NewAppError(http.StatusInternalServerError, "could not create user", nil)
	}

	return s.tokenResponse(created)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, utils.NewAppError(http.StatusUnauthorized, "incorrect email or password", nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, utils.NewAppError(http.StatusUnauthorized, "incorrect email or password", nil)
	}

	return s.tokenResponse(user)
}

// ForgotPassword issues a single-use reset token: only its bcrypt hash is
// stored, the plaintext goes out by mail. A failed send clears the stored
// hash so the user is never left holding a token the server won't honor.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return utils.NewAppError(http.StatusNotFound, "no user found with that email", nil)
	}

	token, err := generateResetToken()
	if err != nil {
		return utils.NewAppError(http.StatusInternalServerError, "could not generate reset token", nil)
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return utils.NewAppError(http.StatusInternalServerError, "could not secure reset token", nil)
	}

	expiresAt := s.now().Add(s.cfg.ResetTokenTTL)
	if err := s.users.SetResetToken(ctx, user.ID, string(hashBytes), expiresAt); err != nil {
		return utils.NewAppError(http.StatusInternalServerError, "could not store reset token", nil)
	}

	if err := s.mailer.SendPasswordReset(user.Email, token); err != nil {
		_ = s.users.ClearResetToken(ctx, user.ID)
		return utils.NewAppError(http.StatusInternalServerError,
			"there was an error sending the email, try again later", nil)
	}

	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, email, token, newPassword string) (*TokenResponse, error) {
	if len(newPassword) < s.cfg.PasswordMinLen {
		return nil, utils.NewAppError(http.StatusBadRequest,
			fmt.Sprintf("password must be at least %d characters", s.cfg.PasswordMinLen), nil)
	}

	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, utils.NewAppError(http.StatusBadRequest, "token is invalid or has expired", nil)
	}

	if user.ResetTokenHash == nil || user.ResetTokenExpiresAt == nil ||
		s.now().After(*user.ResetTokenExpiresAt) {
		return nil, utils.NewAppError(http.StatusBadRequest, "token is invalid or has expired", nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.ResetTokenHash), []byte(token)); err != nil {
		return nil, utils.NewAppError(http.StatusBadRequest, "token is invalid or has expired", nil)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, utils.NewAppError(http.StatusInternalServerError, "could not update password", nil)
	}

	if err := s.users.UpdatePassword(ctx, user.ID, string(passwordHash)); err != nil {
		return nil, utils.NewAppError(http.StatusInternalServerError, "could not update password", nil)
	}

	user.PasswordChangedAt = s.now()
	return s.tokenResponse(user)
}

func (s *AuthService) UpdatePassword(ctx context.Context, userID, currentPassword, newPassword string) (*TokenResponse, error) {
	if len(newPassword) < s.cfg.PasswordMinLen {
		return nil, utils.NewAppError(http.StatusBadRequest,
			fmt.Sprintf("password must be at least %d characters", s.cfg.PasswordMinLen), nil)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, utils.NewAppError(http.StatusNotFound, "user not found", nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return nil, utils.NewAppError(http.StatusUnauthorized, "current password is incorrect", nil)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, utils.NewAppError(http.StatusInternalServerError, "could not update password", nil)
	}

	if err := s.users.UpdatePassword(ctx, user.ID, string(passwordHash)); err != nil {
		return nil, utils.NewAppError(http.StatusInternalServerError, "could not update password", nil)
	}

	user.PasswordChangedAt = s.now()
	return s.tokenResponse(user)
}

func (s *AuthService) tokenResponse(user *models.User) (*TokenResponse, error) {
	token, expiresIn, err := s.generateToken(user)
	if err != nil {
		return nil, utils.NewAppError(http.StatusInternalServerError, "could not generate token", nil)
	}
	return &TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn,
		User:        user,
	}, nil
}

func (s *AuthService) generateToken(user *models.User) (string, int64, error) {
	issuedAt := s.now()
	claims := Claims{
		UserID: user.ID,
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.cfg.JWTExpiry)),
			Subject:   user.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", 0, err
	}
	return signed, int64(s.cfg.JWTExpiry.Seconds()), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func generateResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
