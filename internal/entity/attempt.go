package entity

import "time"

// LoginAttempt is one audited submission of the login form.
type LoginAttempt struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	Success    bool      `json:"success"`
	RemoteAddr string    `json:"remote_addr"`
	CreatedAt  time.Time `json:"created_at"`
}

func NewLoginAttempt(username, remoteAddr string, success bool) LoginAttempt {
	return LoginAttempt{
		Username:   username,
		Success:    success,
		RemoteAddr: remoteAddr,
	}
}
