package models

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Operator is the single dashboard account configured for this deployment.
type Operator struct {
	Email          string
	HashedPassword []byte
}
