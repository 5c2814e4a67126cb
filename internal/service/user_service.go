package service

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/immxrtalbeast/roomkeeper/internal/domain"
	"github.com/immxrtalbeast/roomkeeper/internal/repository"
	"github.com/immxrtalbeast/roomkeeper/lib/logger/sl"
)

const minDisplayName = 2

type UserService struct {
	users repository.UserRepository
	log   *slog.Logger
	now   func() time.Time
}

func NewUserService(users repository.UserRepository, log *slog.Logger) *UserService {
	if log == nil {
		log = slog.Default()
	}
	return &UserService{
		users: users,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Ensure makes sure the caller has a user record. It runs on every
// authenticated request and only writes when something changed.
func (s *UserService) Ensure(ctx context.Context, caller *domain.Caller) error {
	const op = "service.user.ensure"

	if caller == nil || caller.UID == "" {
		return unauthenticated()
	}
	if err := s.users.Ensure(ctx, *caller); err != nil {
		if errors.Is(err, repository.ErrInvalidID) {
			return badRequest("invalid user id")
		}
		s.log.Error("failed to ensure user", slog.String("op", op), slog.String("uid", caller.UID), sl.Err(err))
		return err
	}
	return nil
}

func (s *UserService) GetUser(ctx context.Context, caller *domain.Caller) (*domain.User, error) {
	if caller == nil || caller.UID == "" {
		return nil, unauthenticated()
	}

	user, err := s.users.Get(ctx, caller.UID)
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		return nil, notFound("user not found")
	case errors.Is(err, repository.ErrInvalidID):
		return nil, badRequest("invalid user id")
	case err != nil:
		return nil, err
	}
	return user, nil
}

// UpdateProfile sets the display name and the optional profile URL.
func (s *UserService) UpdateProfile(ctx context.Context, caller *domain.Caller, displayName, profileURL string) error {
	const op = "service.user.update_profile"

	if caller == nil || caller.UID == "" {
		return unauthenticated()
	}
	log := s.log.With(slog.String("op", op), slog.String("uid", caller.UID))

	displayName = strings.TrimSpace(displayName)
	if utf8.RuneCountInString(displayName) < minDisplayName {
		return badRequest("display name must be at least %d characters", minDisplayName)
	}

	profileURL = strings.TrimSpace(profileURL)
	if profileURL != "" {
		u, err := url.Parse(profileURL)
		if err != nil || !u.IsAbs() || u.Host == "" {
			return badRequest("profile url must be an absolute url")
		}
	}

	if err := s.users.UpdateProfile(ctx, caller.UID, displayName, profileURL, s.now()); err != nil {
		log.Error("failed to update profile", sl.Err(err))
		return err
	}

	log.Info("profile updated")
	return nil
}
