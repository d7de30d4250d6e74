package db_models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InquiryKind string

const (
	InquiryGeneral  InquiryKind = "inquiry"
	InquiryReferral InquiryKind = "referral"
	InquiryFeedback InquiryKind = "feedback"
)

type Inquiry struct {
	ID         uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	Kind       InquiryKind `gorm:"size:16;not null;index" json:"kind"`
	NuvamaCode string      `gorm:"size:32;index" json:"nuvama_code,omitempty"`
	Name       string      `gorm:"not null" json:"name"`
	Email      string      `gorm:"not null" json:"email"`
	Phone      string      `json:"phone,omitempty"`
	Message    string      `gorm:"type:text;not null" json:"message"`
	// Referral only
	ReferredName  string `json:"referred_name,omitempty"`
	ReferredPhone string `json:"referred_phone,omitempty"`
	Rating        *int   `json:"rating,omitempty"`

	EmailSent bool      `gorm:"not null;default:false" json:"email_sent"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (i *Inquiry) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
