package services

import (
	"context"
	"errors"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Dias221467/cf_social/internal/codeforces"
	"github.com/Dias221467/cf_social/internal/models"
	"github.com/Dias221467/cf_social/internal/repository"
	"github.com/sirupsen/logrus"
)

const (
	minPasswordLength = 6
	maxLinks          = 10
	maxAboutLength    = 2000
)

var handleRegex = regexp.MustCompile(`^[A-Za-z0-9_.\-]{3,24}$`)

// UserService encapsulates the business logic for account operations.
type UserService struct {
	repo         UserStore
	provider     RatingProvider
	verifyHandle bool
}

// NewUserService creates a new instance of UserService. provider may be nil,
// in which case handle verification and avatars are skipped.
func NewUserService(repo UserStore, provider RatingProvider, verifyHandle bool) *UserService {
	return &UserService{
		repo:         repo,
		provider:     provider,
		verifyHandle: verifyHandle,
	}
}

// Account is the caller's own account summary.
type Account struct {
	Username  string `json:"username"`
	IsPrivate bool   `json:"isPrivate"`
	Avatar    string `json:"avatar"`
	Degraded  bool   `json:"degraded,omitempty"`
}

// RegisterUser creates a private account with empty relationship lists.
func (s *UserService) RegisterUser(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	logrus.WithField("username", username).Info("Registering new user")

	if !handleRegex.MatchString(username) {
		return nil, invalidInput("username must be 3-24 characters of letters, digits, '_', '.' or '-'")
	}
	if len(password) < minPasswordLength {
		return nil, invalidInput("password must be at least %d characters", minPasswordLength)
	}

	if _, err := s.repo.GetUserByUsername(ctx, username); err == nil {
		logrus.WithField("username", username).Warn("Username already in use")
		return nil, ErrUserExists
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, storeError(err, "failed to check username")
	}

	if s.verifyHandle && s.provider != nil {
		if _, err := s.provider.GetUserInfo(ctx, username); err != nil {
			if errors.Is(err, codeforces.ErrHandleNotFound) {
				return nil, providerError(err)
			}
			// An outage must not block signups.
			logrus.WithError(err).Warn("Could not verify handle, continuing registration")
		}
	}

	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logrus.WithError(err).Error("Password hashing failed")
		return nil, newError(KindInternal, "failed to hash password", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: string(hashedPwd),
		IsPrivate:    true,
		Links:        []string{},
	}

	created, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, ErrUserExists
		}
		logrus.WithError(err).Error("User registration failed")
		return nil, storeError(err, "failed to register user")
	}

	logrus.WithField("username", created.Username).Info("User registered successfully")
	return created, nil
}

// AuthenticateUser verifies the credentials and returns the user.
func (s *UserService) AuthenticateUser(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)

	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			logrus.WithField("username", username).Warn("User not found")
			return nil, ErrInvalidCredentials
		}
		return nil, storeError(err, "failed to load user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logrus.WithField("username", username).Warn("Invalid credentials")
		return nil, ErrInvalidCredentials
	}

	logrus.WithField("username", username).Info("User authenticated successfully")
	return user, nil
}

// GetUser retrieves a user by username.
func (s *UserService) GetUser(ctx context.Context, username string) (*models.User, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, storeError(err, "failed to get user")
	}
	return user, nil
}

// GetAccount returns the privacy flag and avatar. A provider failure falls
// back to an empty avatar.
func (s *UserService) GetAccount(ctx context.Context, username string) (*Account, error) {
	user, err := s.GetUser(ctx, username)
	if err != nil {
		return nil, err
	}

	account := &Account{Username: user.Username, IsPrivate: user.IsPrivate}
	if s.provider != nil {
		infos, err := s.provider.GetUserInfo(ctx, user.Username)
		switch {
		case err != nil:
			logrus.WithError(err).Warn("Failed to fetch avatar")
			account.Degraded = true
		case len(infos) > 0:
			account.Avatar = infos[0].Avatar
		}
	}
	return account, nil
}

// UpdateAbout replaces the user's bio.
func (s *UserService) UpdateAbout(ctx context.Context, username, about string) (*models.User, error) {
	if len(about) > maxAboutLength {
		return nil, invalidInput("about text must be at most %d characters", maxAboutLength)
	}
	user, err := s.repo.UpdateUser(ctx, username, map[string]interface{}{"aboutText": about})
	if err != nil {
		return nil, storeError(err, "failed to update about text")
	}
	return user, nil
}

// UpdateLinks replaces the user's external profile links, keeping order.
func (s *UserService) UpdateLinks(ctx context.Context, username string, links []string) (*models.User, error) {
	if len(links) > maxLinks {
		return nil, invalidInput("at most %d links are allowed", maxLinks)
	}
	clean := make([]string, 0, len(links))
	for _, l := range links {
		l = strings.TrimSpace(l)
		u, err := url.Parse(l)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, invalidInput("invalid link %q", l)
		}
		clean = append(clean, l)
	}

	user, err := s.repo.UpdateUser(ctx, username, map[string]interface{}{"links": clean})
	if err != nil {
		return nil, storeError(err, "failed to update links")
	}
	return user, nil
}

// UpdateLastActive stamps the user's last activity time.
func (s *UserService) UpdateLastActive(ctx context.Context, username string) error {
	return s.repo.TouchLastActive(ctx, username, time.Now())
}
