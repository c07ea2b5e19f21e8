package twofactor

type RegisterResponse struct {
	Secret     string `json:"secret"`
	OTPAuthURL string `json:"otpauth_url"`
	QRCodeURL  string `json:"qr_code_url"`
}

type VerifyRequest struct {
	Code string `json:"code" binding:"required,len=6,numeric"`
}
