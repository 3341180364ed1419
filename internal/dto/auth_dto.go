package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type LoginRequest struct {
	Username string `json:"username" validate:"required,min=1"`
	Password string `json:"password" validate:"required,min=1"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// UpsertUserRequest creates a user when ID is empty and updates it otherwise.
// Password is required on create and optional on update.
type UpsertUserRequest struct {
	ID       *string `json:"id"       validate:"omitempty,uuid"`
	Username string  `json:"username" validate:"required,min=1,max=150"`
	Name     string  `json:"name"     validate:"omitempty,max=100"`
	Role     string  `json:"role"     validate:"required,oneof=operator manager"`
	Active   *bool   `json:"active"`
	Password *string `json:"password" validate:"omitempty,min=6"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// UserProfile never carries the credential hash.
type UserProfile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
	Role     string `json:"role"`
	Active   bool   `json:"active"`
}

type LoginResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	TokenType    string      `json:"token_type"`
	ExpiresIn    int         `json:"expires_in"` // seconds
	User         UserProfile `json:"user"`
}
