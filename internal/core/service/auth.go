package service

import (
	"context"
	"errors"
	"strings"

	"github.com/yndnr/quizrally-go/internal/core/domain"
	"github.com/yndnr/quizrally-go/internal/storage/memory"
	"github.com/yndnr/quizrally-go/pkg/token"
)

// Login verifies the credentials and opens a session. The plaintext
// token is only returned here.
func (s *QuizService) Login(ctx context.Context, nickname, password string) (*domain.LoginResult, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" || password == "" {
		return nil, domain.ErrMissingArgument.WithDetails("nickname and password are required")
	}

	var user domain.User
	var found bool
	err := s.engine.View(ctx, func(st *memory.Store) error {
		user, found = st.UserByNickname(nickname)
		return nil
	})
	if err != nil {
		return nil, storageErr(err)
	}
	if !found {
		s.logger.Info("login rejected", "nickname", nickname, "reason", "unknown_user")
		return nil, domain.ErrInvalidCredentials
	}

	ok, err := token.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		s.logger.Warn("stored password hash unreadable", "user_id", user.ID, "error", err)
		return nil, domain.ErrInvalidCredentials
	}
	if !ok {
		s.logger.Info("login rejected", "user_id", user.ID, "reason", "bad_password")
		return nil, domain.ErrInvalidCredentials
	}

	var upgraded string
	if token.NeedsRehash(user.PasswordHash) {
		if upgraded, err = token.HashPassword(password); err != nil {
			s.logger.Warn("password rehash failed", "user_id", user.ID, "error", err)
			upgraded = ""
		}
	}

	plain, hash, err := token.NewSession()
	if err != nil {
		return nil, domain.ErrInternalServer.WithCause(err)
	}

	now := s.now()
	sess := domain.Session{
		TokenHash: hash,
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.SessionTTL),
	}
	var rehashed bool
	err = s.engine.Update(ctx, func(st *memory.Store) error {
		current, ok := st.Users.Get(user.ID)
		if !ok {
			return domain.ErrInvalidCredentials
		}
		if upgraded != "" && current.PasswordHash == user.PasswordHash {
			current.PasswordHash = upgraded
			st.Users.Set(current.ID, current)
			user, rehashed = current, true
		}
		st.Sessions.Set(hash, sess)
		return nil
	})
	if err != nil {
		return nil, storageErr(err)
	}
	if rehashed {
		s.logger.Info("legacy password hash upgraded", "user_id", user.ID)
		s.mirrored("user", s.mirror.SaveUser(ctx, user))
	}

	s.logger.Info("user logged in", "user_id", user.ID, "admin", user.IsAdmin)
	return &domain.LoginResult{
		User:      user.View(),
		Token:     plain,
		ExpiresAt: sess.ExpiresAt,
	}, nil
}

// Logout ends the session for plaintext. Unknown tokens are ignored.
func (s *QuizService) Logout(ctx context.Context, plaintext string) error {
	if !token.IsSessionToken(plaintext) {
		return nil
	}
	hash := token.Hash(plaintext)
	err := s.engine.Update(ctx, func(st *memory.Store) error {
		st.Sessions.Delete(hash)
		return nil
	})
	return storageErr(err)
}

// ResolveSession returns the user that owns plaintext. Expired sessions
// are removed on lookup.
func (s *QuizService) ResolveSession(ctx context.Context, plaintext string) (domain.User, error) {
	if !token.IsSessionToken(plaintext) {
		return domain.User{}, domain.ErrUnauthenticated
	}
	hash := token.Hash(plaintext)
	now := s.now()

	var user domain.User
	var expired bool
	err := s.engine.Update(ctx, func(st *memory.Store) error {
		sess, ok := st.Sessions.Get(hash)
		if !ok {
			return domain.ErrUnauthenticated
		}
		if sess.IsExpired(now) {
			st.Sessions.Delete(hash)
			expired = true
			return nil
		}
		u, ok := st.Users.Get(sess.UserID)
		if !ok {
			st.Sessions.Delete(hash)
			return nil
		}
		user = u
		return nil
	})
	if err != nil {
		return domain.User{}, storageErr(err)
	}
	if expired {
		return domain.User{}, domain.ErrSessionExpired
	}
	if user.ID == 0 {
		return domain.User{}, domain.ErrUnauthenticated
	}
	return user, nil
}

// PruneSessions removes expired sessions and sessions of deleted users.
func (s *QuizService) PruneSessions(ctx context.Context) (int, error) {
	now := s.now()
	var n int
	err := s.engine.Update(ctx, func(st *memory.Store) error {
		for key, sess := range st.Sessions.All() {
			if sess.IsExpired(now) || !st.Users.Has(sess.UserID) {
				st.Sessions.Delete(key)
				n++
			}
		}
		return nil
	})
	if err != nil {
		return 0, storageErr(err)
	}
	if n > 0 {
		s.logger.Info("expired sessions pruned", "count", n)
	}
	return n, nil
}

// Register creates a participant account when self-registration is on.
func (s *QuizService) Register(ctx context.Context, in domain.NewUserInput) (domain.UserView, error) {
	if !s.cfg.EnableRegistration {
		return domain.UserView{}, domain.ErrRegistrationDisabled
	}
	in.IsAdmin = false
	return s.CreateUser(ctx, in)
}

// RequireAdmin returns ErrAdminRequired unless u is an administrator.
func RequireAdmin(u domain.User) error {
	if !u.IsAdmin {
		return domain.ErrAdminRequired
	}
	return nil
}

// IsAuthError reports whether err means the caller must log in again.
func IsAuthError(err error) bool {
	return errors.Is(err, domain.ErrUnauthenticated) || errors.Is(err, domain.ErrSessionExpired)
}
