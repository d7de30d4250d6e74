package db_models

import "time"

// Client is the read side of the client master: one investor account.
type Client struct {
	NuvamaCode string    `gorm:"primaryKey;size:32" json:"nuvama_code"`
	ClientID   string    `gorm:"size:64;index" json:"client_id"`
	ClientName string    `json:"client_name"`
	Email      string    `gorm:"index" json:"email"`
	Phone      string    `json:"phone"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Client) TableName() string { return "client_master" }
