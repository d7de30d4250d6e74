package response_models

import "time"

type SessionResponse struct {
	Token      string    `json:"token"`
	Role       string    `json:"role"`
	NuvamaCode string    `json:"nuvama_code,omitempty"`
	ExpiresAt  time.Time `json:"expires_at"`
}

type OTPRequestResponse struct {
	Destination string    `json:"destination"`
	ExpiresAt   time.Time `json:"expires_at"`
}
