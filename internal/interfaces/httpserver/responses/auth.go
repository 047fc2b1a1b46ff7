package responses

import (
	"time"

	"voiceagent-server/internal/domain/user"
)

// UserResponse is the user's public profile.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Plan      string    `json:"plan"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Message      string       `json:"message,omitempty"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken,omitempty"`
	User         UserResponse `json:"user"`
}

// NewUserResponse converts a domain user into its public profile.
func NewUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Plan:      string(u.Plan),
		CreatedAt: u.CreatedAt,
	}
}

// NewAuthResponse converts an auth result into the login/register payload.
func NewAuthResponse(result *user.AuthResult, message string) AuthResponse {
	return AuthResponse{
		Message:      message,
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		User:         NewUserResponse(result.User),
	}
}
