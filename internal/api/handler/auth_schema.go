package handler

type registerRequest struct {
	FirstName string `json:"first_name" validate:"required,max=50"`
	LastName  string `json:"last_name"  validate:"required,max=50"`
	Email     string `json:"email"      validate:"required,email"`
	Username  string `json:"username"   validate:"required,min=4,max=20"`
	Password  string `json:"password"   validate:"required,min=8,max=28"`
	Phone     string `json:"phone"      validate:"omitempty,e164"`
	Job       string `json:"job"        validate:"omitempty,max=50"`
	Bio       string `json:"bio"        validate:"omitempty,max=500"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string           `json:"token"`
	User  *ownUserResponse `json:"user,omitempty"`
}
