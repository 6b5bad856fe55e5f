package dto

// LoginRequest authenticates a staff or admin account.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued access token.
type LoginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
	Name  string `json:"name"`
}

// SendCodeRequest requests a phone verification code.
type SendCodeRequest struct {
	Phone string `json:"phone" validate:"required"`
}

// CheckCodeRequest redeems a phone verification code.
type CheckCodeRequest struct {
	Phone string `json:"phone" validate:"required"`
	Code  string `json:"code" validate:"required,len=6"`
}
