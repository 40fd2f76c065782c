// Package auth handles registration, login and token lifecycle. It is an
// external collaborator from the ledger's point of view: it decides who a
// caller is, never what their wallet holds.
package auth

import (
	"context"
	"errors"

	"talkastro/internal/models"
	"talkastro/internal/repositories"
	"talkastro/internal/utils"
	"talkastro/internal/validation"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrWeakPassword       = errors.New("password must be at least 8 characters and contain a special character")
)

// RegisterInput carries the signup payload. Astrologer signups include
// profile fields and start unapproved.
type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
	Role     string

	// Astrologer profile, used when Role == astrologer.
	Bio          string
	Specialties  string
	Languages    string
	Experience   int
	SessionPrice decimal.Decimal
}

type Service interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password, ip string) (*models.User, string, string, error)
	RefreshTokens(ctx context.Context, refreshToken string) (string, string, error)
	Logout(ctx context.Context, userID uint) error
	ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error
	GetUserByID(ctx context.Context, userID uint) (*models.User, error)
	GetUserTokenVersion(ctx context.Context, userID uint) (int, error)
}

type service struct {
	userRepo       repositories.UserRepository
	astrologerRepo repositories.AstrologerRepository
}

func NewService(userRepo repositories.UserRepository, astrologerRepo repositories.AstrologerRepository) Service {
	return &service{
		userRepo:       userRepo,
		astrologerRepo: astrologerRepo,
	}
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	if !validation.ValidPassword(input.Password) {
		return nil, ErrWeakPassword
	}

	role := input.Role
	if role != models.RoleAstrologer {
		role = models.RoleUser // admins are seeded, never self-registered
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	user := &models.User{
		Name:     input.Name,
		Email:    input.Email,
		Phone:    input.Phone,
		Password: string(hashed),
		Role:     role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateUser) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	if role == models.RoleAstrologer {
		profile := &models.Astrologer{
			UserID:       user.ID,
			DisplayName:  user.Name,
			Bio:          input.Bio,
			Specialties:  input.Specialties,
			Languages:    input.Languages,
			Experience:   input.Experience,
			SessionPrice: input.SessionPrice,
		}
		if err := s.astrologerRepo.Create(ctx, profile); err != nil {
			return nil, err
		}
	}

	logrus.WithFields(logrus.Fields{
		"user_id": user.ID,
		"role":    user.Role,
	}).Info("user registered")

	return user, nil
}

func (s *service) Login(ctx context.Context, email, password, ip string) (*models.User, string, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		logrus.WithField("user_id", user.ID).Warn("login failed: incorrect password")
		return nil, "", "", ErrInvalidCredentials
	}

	accessToken, refreshToken, err := utils.GenerateTokens(&models.UserClaims{
		UserID:       user.ID,
		Email:        user.Email,
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
		Permissions:  models.GetDefaultPermissions(user.Role),
	})
	if err != nil {
		return nil, "", "", errors.New("error generating tokens")
	}

	if err := s.userRepo.RecordLogin(ctx, user.ID, ip); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Warn("failed to record login")
	}

	return user, accessToken, refreshToken, nil
}

func (s *service) RefreshTokens(ctx context.Context, refreshToken string) (string, string, error) {
	_, claims, err := utils.ParseToken(refreshToken)
	if err != nil {
		return "", "", errors.New("invalid refresh token")
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return "", "", errors.New("user not found")
	}

	if user.TokenVersion != claims.TokenVersion {
		return "", "", errors.New("token version mismatch")
	}

	return utils.GenerateTokens(&models.UserClaims{
		UserID:       user.ID,
		Email:        user.Email,
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
		Permissions:  models.GetDefaultPermissions(user.Role),
	})
}

func (s *service) Logout(ctx context.Context, userID uint) error {
	return s.userRepo.IncrementTokenVersion(ctx, userID)
}

func (s *service) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return errors.New("failed to get user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return errors.New("invalid old password")
	}

	if !validation.ValidPassword(newPassword) {
		return ErrWeakPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.New("failed to hash password")
	}

	user.Password = string(hashed)
	user.TokenVersion++ // invalidate existing tokens

	if err := s.userRepo.Update(ctx, user); err != nil {
		return errors.New("failed to update password")
	}
	return nil
}

func (s *service) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *service) GetUserTokenVersion(ctx context.Context, userID uint) (int, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return user.TokenVersion, nil
}
