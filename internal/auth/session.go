package auth

// SessionData represents the authenticated session context for a request
type SessionData struct {
	UserID   string `json:"user_id"`   // Internal ULID
	PublicID string `json:"public_id"` // UUID exposed in API responses
	Email    string `json:"email"`
}
