package application

import (
	"time"

	"github.com/oksasatya/go-account-service/internal/domain/entity"
	"github.com/oksasatya/go-account-service/pkg/helpers"
)

// UserView is the sanitized representation of a user: no password hash, no refresh token.
type UserView struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"fullname"`
	AvatarURL     string    `json:"avatar"`
	CoverImageURL string    `json:"coverImage"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func NewUserView(u *entity.User) *UserView {
	return &UserView{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		FullName:      u.FullName,
		AvatarURL:     u.AvatarURL,
		CoverImageURL: u.CoverImageURL,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func identityOf(u *entity.User) helpers.Identity {
	return helpers.Identity{UserID: u.ID, Username: u.Username, Email: u.Email, FullName: u.FullName}
}

type RegisterInput struct {
	FullName   string
	Email      string
	Username   string
	Password   string
	Avatar     *Upload
	CoverImage *Upload
}

type LoginInput struct {
	Username string
	Email    string
	Password string

	// client metadata for the login notification
	IP        string
	UserAgent string
}

type LoginResult struct {
	User   *UserView
	Tokens helpers.TokenPair
}

type ChangePasswordInput struct {
	OldPassword string
	NewPassword string
}

type UpdateAccountInput struct {
	FullName string
	Email    string
}
