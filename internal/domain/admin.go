package domain

type Admin struct {
	ID             int64  `json:"id"`
	LoginID        string `json:"login_id"`
	HashedPassword string `json:"-"`
}

type LoginRequest struct {
	LoginID  string `json:"login_id"`
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken    string `json:"access_token"`
	TokenType      string `json:"token_type"`
	ExpiresInHours int    `json:"expires_in_hours"`
}
