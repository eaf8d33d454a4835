package dto

// AuthClaims is the validated identity attached to a request.
type AuthClaims struct {
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
}

// Roles carried in the JWT. Managers author content; students consume it.
const (
	RoleStudent = "student"
	RoleManager = "manager"
)
