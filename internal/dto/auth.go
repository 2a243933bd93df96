package dto

// RegisterRequest represents the request to create an account
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=1,max=64"`
	Password string `json:"password" binding:"required,min=1,max=128"`
}

// Validate validates the RegisterRequest
func (r *RegisterRequest) Validate() (bool, string) {
	if r.Username == "" {
		return false, "Username is required"
	}
	if r.Password == "" {
		return false, "Password is required"
	}
	return true, ""
}

// RegisterResponse represents the response after registration
type RegisterResponse struct {
	Message string `json:"message"`
}

// LoginRequest represents the request to exchange credentials for a token
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the signed token and the caller's identity
type LoginResponse struct {
	Token    string `json:"token"`
	Role     string `json:"role"`
	Username string `json:"username"`
}
