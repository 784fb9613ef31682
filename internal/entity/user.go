package entity

import "time"

// User is a portal account as the backend returns it.
type User struct {
	ID          int64  `json:"id,omitempty"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	DOB         string `json:"dob,omitempty"`
	Gender      string `json:"gender,omitempty"`
	Role        Role   `json:"role,omitempty"`
	Password    string `json:"password,omitempty"`
}

// Signup is the self-registration form.
type Signup struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	DOB         string `json:"dob"`
	Gender      string `json:"gender"`
	Password    string `json:"password"`
}

// SessionRecord is the portal's server-side row for an issued session.
type SessionRecord struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Role         Role       `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	LastActivity time.Time  `json:"last_activity"`
	RevokedAt    *time.Time `json:"revoked_at,omitempty"`
}
