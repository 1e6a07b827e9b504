package models

import "time"

// Role names carried in session tokens.
const (
	RoleStaff    = "staff"
	RoleCustomer = "customer"
)

// StaffCredentials for the staff login request
type StaffCredentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// CustomerCredentials for the customer login request
type CustomerCredentials struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegistrationForm is what a prospective customer submits to sign up.
type RegistrationForm struct {
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email" binding:"required"`
	Phone        string `json:"phone"`
	Password     string `json:"password" binding:"required"`
	ReferralCode string `json:"referralCode"`
}

// PendingRegistration is a submitted form waiting for its verification code.
type PendingRegistration struct {
	Form      RegistrationForm
	Code      string
	ExpiresAt time.Time
	Attempts  int // wrong codes submitted so far
}

// Session is returned after a successful login.
type Session struct {
	Role        string    `json:"role"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	Customer    *Customer `json:"customer,omitempty"`
}
