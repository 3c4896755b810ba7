package service

import (
	"context"

	"github.com/yndnr/quizrally-go/internal/core/domain"
	"github.com/yndnr/quizrally-go/internal/storage"
	"github.com/yndnr/quizrally-go/internal/storage/memory"
	"github.com/yndnr/quizrally-go/pkg/token"
)

// CreateUser adds an account. Nicknames are unique and the new id is one
// more than the highest existing id. The snapshot is written before
// returning.
func (s *QuizService) CreateUser(ctx context.Context, in domain.NewUserInput) (domain.UserView, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return domain.UserView{}, err
	}

	hash, err := token.HashPassword(in.Password)
	if err != nil {
		return domain.UserView{}, domain.ErrInternalServer.WithCause(err)
	}

	now := s.now()
	var user domain.User
	err = s.engine.Update(ctx, func(st *memory.Store) error {
		if _, taken := st.UserByNickname(in.Nickname); taken {
			return domain.ErrNicknameTaken
		}
		user = domain.User{
			ID:           st.NextUserID(),
			Nickname:     in.Nickname,
			RealName:     in.RealName,
			AgeGroup:     in.AgeGroup,
			Gender:       in.Gender,
			PasswordHash: hash,
			IsAdmin:      in.IsAdmin,
			CreatedAt:    now,
		}
		st.Users.Set(user.ID, user)
		return nil
	}, storage.FlushNow())
	if err != nil {
		return domain.UserView{}, storageErr(err)
	}

	s.mirrored("user", s.mirror.SaveUser(ctx, user))
	s.logger.Info("user created", "user_id", user.ID, "admin", user.IsAdmin)
	return user.View(), nil
}

// ListUsers returns every account ordered by id, without password hashes.
func (s *QuizService) ListUsers(ctx context.Context) ([]domain.UserView, error) {
	var out []domain.UserView
	err := s.engine.View(ctx, func(st *memory.Store) error {
		out = make([]domain.UserView, 0, st.Users.Len())
		for _, u := range st.Users.All() {
			out = append(out, u.View())
		}
		return nil
	})
	if err != nil {
		return nil, storageErr(err)
	}
	return out, nil
}

// GetUser returns one account.
func (s *QuizService) GetUser(ctx context.Context, id int) (domain.UserView, error) {
	var u domain.User
	var ok bool
	err := s.engine.View(ctx, func(st *memory.Store) error {
		u, ok = st.Users.Get(id)
		return nil
	})
	if err != nil {
		return domain.UserView{}, storageErr(err)
	}
	if !ok {
		return domain.UserView{}, domain.ErrUserNotFound
	}
	return u.View(), nil
}
