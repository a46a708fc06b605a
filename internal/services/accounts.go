package services

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"stridestreak/internal/clock"
	"stridestreak/internal/models"
	"stridestreak/internal/store"
)

var (
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
)

const minPasswordLen = 8

// AccountService manages registration, login and the user's own profile.
// Users leave this service with their email decrypted.
type AccountService struct {
	store    *store.Store
	enc      *EncryptionService
	clock    clock.Clock
	hashCost int
}

func NewAccountService(s *store.Store, enc *EncryptionService, c clock.Clock) *AccountService {
	return &AccountService{store: s, enc: enc, clock: c, hashCost: bcrypt.DefaultCost}
}

// ProfilePatch holds the fields PUT /profile may change. Nil means unchanged.
type ProfilePatch struct {
	Username                *string
	Email                   *string
	Password                *string
	NotificationPreferences *models.NotificationPreferences
}

func validateEmail(email string) error {
	if !emailPattern.MatchString(strings.TrimSpace(email)) {
		return invalid("invalid email format")
	}
	return nil
}

func validateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return invalid("username must be 3-20 characters of letters, numbers and underscores")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLen {
		return invalid("password must be at least %d characters long", minPasswordLen)
	}
	return nil
}

func (s *AccountService) Register(ctx context.Context, email, username, password string) (models.User, error) {
	username = strings.TrimSpace(username)
	if err := validateEmail(email); err != nil {
		return models.User{}, err
	}
	if err := validateUsername(username); err != nil {
		return models.User{}, err
	}
	if err := validatePassword(password); err != nil {
		return models.User{}, err
	}
	if err := s.ensureAvailable(ctx, email, username, 0); err != nil {
		return models.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return models.User{}, err
	}
	u := models.User{
		Username:                username,
		PasswordHash:            string(hash),
		CreatedAt:               s.clock.Now(),
		Level:                   1,
		NotificationPreferences: models.DefaultNotificationPreferences(),
	}
	if err := s.enc.SealEmail(&u, email); err != nil {
		return models.User{}, err
	}
	if err := s.store.CreateUser(ctx, &u); err != nil {
		return models.User{}, err
	}
	return s.enc.OpenUser(u)
}

// Authenticate checks the credentials and stamps last_login.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	u, err := s.store.GetUserByBlindIndex(ctx, s.enc.EmailIndex(email))
	if errors.Is(err, store.ErrNotFound) {
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	now := s.clock.Now()
	if err := s.store.TouchLastLogin(ctx, u.ID, now); err != nil {
		return models.User{}, err
	}
	u.LastLogin = &now
	return s.enc.OpenUser(u)
}

func (s *AccountService) Profile(ctx context.Context, userID int) (models.User, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return models.User{}, err
	}
	return s.enc.OpenUser(u)
}

func (s *AccountService) UpdateProfile(ctx context.Context, userID int, p ProfilePatch) (models.User, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return models.User{}, err
	}

	if p.Username != nil {
		name := strings.TrimSpace(*p.Username)
		if err := validateUsername(name); err != nil {
			return models.User{}, err
		}
		if taken, err := s.store.UsernameTaken(ctx, name, userID); err != nil {
			return models.User{}, err
		} else if taken {
			return models.User{}, ErrUsernameTaken
		}
		u.Username = name
	}
	if p.Email != nil {
		if err := validateEmail(*p.Email); err != nil {
			return models.User{}, err
		}
		if taken, err := s.store.EmailTaken(ctx, s.enc.EmailIndex(*p.Email), userID); err != nil {
			return models.User{}, err
		} else if taken {
			return models.User{}, ErrEmailTaken
		}
		if err := s.enc.SealEmail(&u, *p.Email); err != nil {
			return models.User{}, err
		}
	}
	if p.Password != nil {
		if err := validatePassword(*p.Password); err != nil {
			return models.User{}, err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*p.Password), s.hashCost)
		if err != nil {
			return models.User{}, err
		}
		u.PasswordHash = string(hash)
	}
	if p.NotificationPreferences != nil {
		u.NotificationPreferences = *p.NotificationPreferences
	}

	if err := s.store.UpdateUserProfile(ctx, u); err != nil {
		return models.User{}, err
	}
	return s.enc.OpenUser(u)
}

// DeleteAccount removes the user with all habits, completions, notifications
// and todos in one transaction.
func (s *AccountService) DeleteAccount(ctx context.Context, userID int) error {
	return s.store.WithTx(ctx, func(q *store.Queries) error {
		return q.DeleteUser(ctx, userID)
	})
}

func (s *AccountService) ensureAvailable(ctx context.Context, email, username string, exceptID int) error {
	taken, err := s.store.EmailTaken(ctx, s.enc.EmailIndex(email), exceptID)
	if err != nil {
		return err
	}
	if taken {
		return ErrEmailTaken
	}
	if taken, err = s.store.UsernameTaken(ctx, username, exceptID); err != nil {
		return err
	}
	if taken {
		return ErrUsernameTaken
	}
	return nil
}
