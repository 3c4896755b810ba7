package domain

import (
	"strings"
	"time"
)

// User constraints.
const (
	MaxNicknameLength = 32
	MinPasswordLength = 4

	// UnknownNickname is shown for records whose user no longer exists.
	UnknownNickname = "Unknown"
	// UnknownAgeGroup is shown for records whose user no longer exists.
	UnknownAgeGroup = "unknown"
)

// User is a participant or administrator account.
type User struct {
	ID           int       `json:"id"`
	Nickname     string    `json:"nickname"`
	RealName     string    `json:"real_name"`
	AgeGroup     string    `json:"age_group"`
	Gender       string    `json:"gender"`
	PasswordHash string    `json:"password_hash"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserView is the externally visible form of a user (no password hash).
type UserView struct {
	ID       int    `json:"id"`
	Nickname string `json:"nickname"`
	RealName string `json:"real_name"`
	AgeGroup string `json:"age_group"`
	Gender   string `json:"gender"`
	IsAdmin  bool   `json:"is_admin"`
}

// View strips credentials from the user.
func (u *User) View() UserView {
	return UserView{
		ID:       u.ID,
		Nickname: u.Nickname,
		RealName: u.RealName,
		AgeGroup: u.AgeGroup,
		Gender:   u.Gender,
		IsAdmin:  u.IsAdmin,
	}
}

// NewUserInput carries the fields accepted when creating a user.
type NewUserInput struct {
	Nickname string `json:"nickname"`
	Password string `json:"password"`
	RealName string `json:"real_name"`
	AgeGroup string `json:"age_group"`
	Gender   string `json:"gender"`
	IsAdmin  bool   `json:"is_admin"`
}

// Normalize trims whitespace and fills defaults.
func (in *NewUserInput) Normalize() {
	in.Nickname = strings.TrimSpace(in.Nickname)
	in.RealName = strings.TrimSpace(in.RealName)
	in.AgeGroup = strings.TrimSpace(in.AgeGroup)
	if in.Gender == "" {
		in.Gender = "other"
	}
}

// Validate checks the input.
func (in *NewUserInput) Validate() error {
	if in.Nickname == "" {
		return ErrMissingArgument.WithDetails("nickname is required")
	}
	if len([]rune(in.Nickname)) > MaxNicknameLength {
		return ErrInvalidArgument.WithDetails("nickname is too long")
	}
	if len(in.Password) < MinPasswordLength {
		return ErrInvalidArgument.WithDetails("password is too short")
	}
	return nil
}
