package auth

type SignInRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	TOTPCode string `json:"totp_code" binding:"omitempty,len=6,numeric"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type AuthResponse struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	FirstName   string `json:"firstname"`
	LastName    string `json:"lastname"`
	Position    string `json:"position"`
	Role        string `json:"role"`
	TOTPEnabled bool   `json:"totp_enabled"`
}

// RequestMeta carries the connection facts the security log wants.
type RequestMeta struct {
	IP        string
	UserAgent string
}
