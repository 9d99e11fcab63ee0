package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mioNacs/BLManagementSystem/internal/mailer"
	"github.com/mioNacs/BLManagementSystem/internal/models"
	"github.com/mioNacs/BLManagementSystem/internal/repository"
	"github.com/mioNacs/BLManagementSystem/internal/utils"
)

type authService struct {
	userRepo    repository.UserRepository
	hasher      *utils.PasswordHasher
	tokens      *utils.TokenManager
	mail        *mailer.Client
	frontendURL string
	logger      *zap.SugaredLogger
}

// NewAuthService wires the session controller. All state lives in the
// user repository; the service itself is stateless between calls.
func NewAuthService(
	userRepo repository.UserRepository,
	hasher *utils.PasswordHasher,
	tokens *utils.TokenManager,
	mail *mailer.Client,
	frontendURL string,
	logger *zap.SugaredLogger,
) AuthService {
	return &authService{
		userRepo:    userRepo,
		hasher:      hasher,
		tokens:      tokens,
		mail:        mail,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

// Register creates a user after checking each unique field in order:
// username, email, rollNo, contactNo. The first collision wins.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	checks := []struct {
		find func() (*models.User, error)
		err  error
	}{
		{func() (*models.User, error) { return s.userRepo.FindByUsername(ctx, in.Username) }, ErrDuplicateUsername},
		{func() (*models.User, error) { return s.userRepo.FindByEmail(ctx, in.Email) }, ErrDuplicateEmail},
		{func() (*models.User, error) { return s.userRepo.FindByRollNo(ctx, in.RollNo) }, ErrDuplicateRollNo},
		{func() (*models.User, error) { return s.userRepo.FindByContactNo(ctx, in.ContactNo) }, ErrDuplicateContact},
	}
	for _, c := range checks {
		existing, err := c.find()
		if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to check existing user: %w", err)
		}
		if existing != nil {
			return nil, c.err
		}
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Gender:       in.Gender,
		Semester:     in.Semester,
		Branch:       in.Branch,
		RollNo:       in.RollNo,
		Course:       in.Course,
		ContactNo:    in.ContactNo,
		ProfilePic:   in.ProfilePic,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.issueSession(ctx, user)
}

// Login authenticates by email (case-insensitive) or username and issues
// a fresh token pair, invalidating any refresh token held elsewhere.
func (s *authService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	var (
		user *models.User
		err  error
	)
	if in.Email != "" {
		user, err = s.userRepo.FindByEmail(ctx, in.Email)
	} else {
		user, err = s.userRepo.FindByUsername(ctx, in.Username)
	}
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !s.hasher.Verify(in.Password, user.PasswordHash) {
		return nil, ErrInvalidPassword
	}

	return s.issueSession(ctx, user)
}

// Refresh rotates the token pair. The presented token must verify and
// match the stored one byte for byte; a rotated-out token is rejected
// even while cryptographically valid.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user.RefreshToken == "" || user.RefreshToken != refreshToken {
		return nil, ErrInvalidRefreshToken
	}

	return s.issueSession(ctx, user)
}

// Logout clears the stored refresh token so it can never be replayed.
// The access token stays valid until its own expiry.
func (s *authService) Logout(ctx context.Context, userID primitive.ObjectID) error {
	if err := s.userRepo.SetRefreshToken(ctx, userID, ""); err != nil {
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}
	return nil
}

func (s *authService) CurrentUser(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return user, nil
}

func (s *authService) DeleteAccount(ctx context.Context, userID primitive.ObjectID) error {
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// ForgotPassword issues a 15-minute reset token bound to the account's
// id and email. Delivery is out-of-band: the reset link is mailed when a
// provider is configured and always logged for development.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrEmailNotFound
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	token, err := s.tokens.GenerateResetToken(user.ID.Hex(), user.Email)
	if err != nil {
		return fmt.Errorf("failed to sign reset token: %w", err)
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.frontendURL, token)
	s.logger.Infow("password reset requested", "email", user.Email, "resetURL", resetURL)

	if s.mail.IsConfigured() {
		go func() {
			mailCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			body := fmt.Sprintf("Visit %s to reset your BitLinguals password. The link expires in 15 minutes.", resetURL)
			if sendErr := s.mail.Send(mailCtx, user.Email, "Reset your password", body); sendErr != nil {
				s.logger.Warnw("failed to send reset email", "email", user.Email, "error", sendErr)
			}
		}()
	}

	return nil
}

// ResetPassword verifies the reset token and rehashes the password.
// Existing sessions survive a reset: the stored refresh token is left
// untouched, matching the shipped behavior.
func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	claims, err := s.tokens.ParseReset(token)
	if err != nil {
		return ErrInvalidResetToken
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return ErrInvalidResetToken
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = hash
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to persist new password: %w", err)
	}
	return nil
}

func (s *authService) ChangePassword(ctx context.Context, userID primitive.ObjectID, currentPassword, newPassword string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	if !s.hasher.Verify(currentPassword, user.PasswordHash) {
		return ErrInvalidCurrentPassword
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = hash
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to persist new password: %w", err)
	}
	return nil
}

// UpdateProfile re-runs the registration uniqueness checks for any
// natural key being changed, excluding the caller's own record so that
// resubmitting unchanged values never conflicts.
func (s *authService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	checks := []struct {
		val   *string
		field string
		err   error
	}{
		{in.Username, "username", ErrDuplicateUsername},
		{in.Email, "email", ErrDuplicateEmail},
		{in.RollNo, "rollNo", ErrDuplicateRollNo},
		{in.ContactNo, "contactNo", ErrDuplicateContact},
	}
	for _, c := range checks {
		if c.val == nil {
			continue
		}
		taken, err := s.userRepo.ExistsOther(ctx, c.field, *c.val, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to check %s uniqueness: %w", c.field, err)
		}
		if taken {
			return nil, c.err
		}
	}

	if in.Username != nil {
		user.Username = *in.Username
	}
	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.Gender != nil {
		user.Gender = *in.Gender
	}
	if in.Semester != nil {
		user.Semester = *in.Semester
	}
	if in.Branch != nil {
		user.Branch = *in.Branch
	}
	if in.RollNo != nil {
		user.RollNo = *in.RollNo
	}
	if in.Course != nil {
		user.Course = *in.Course
	}
	if in.ContactNo != nil {
		user.ContactNo = *in.ContactNo
	}
	if in.ProfilePic != nil {
		user.ProfilePic = *in.ProfilePic
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to persist profile: %w", err)
	}
	return user, nil
}

// issueSession generates a fresh access+refresh pair and persists the
// refresh token, replacing whatever was stored before.
func (s *authService) issueSession(ctx context.Context, user *models.User) (*AuthResult, error) {
	access, err := s.tokens.GenerateAccessToken(user.ID.Hex(), user.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}
	refresh, err := s.tokens.GenerateRefreshToken(user.ID.Hex(), user.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}
	if err := s.userRepo.SetRefreshToken(ctx, user.ID, refresh); err != nil {
		return nil, fmt.Errorf("failed to persist refresh token: %w", err)
	}

	return &AuthResult{
		User:         user.Public(),
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}
