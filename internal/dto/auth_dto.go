package dto

// LoginRequest carries team credentials.
type LoginRequest struct {
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest creates a new team account. Role defaults to "team".
type RegisterRequest struct {
	Name     string   `json:"name" validate:"required,max=255"`
	Members  []string `json:"members" validate:"omitempty,dive,required"`
	Password string   `json:"password" validate:"required,min=6"`
	Role     string   `json:"role" validate:"omitempty,oneof=team mentor admin"`
}

// AuthResponse returns the signed token together with the team profile.
type AuthResponse struct {
	Token string       `json:"token"`
	Team  TeamResponse `json:"team"`
}
