package repositories

import (
	"context"

	"gorm.io/gorm"

	"pmsportal/internal/models/db_models"
)

type InquiryRepositoryInterface interface {
	// WithTx returns a repository bound to tx.
	WithTx(tx *gorm.DB) InquiryRepositoryInterface
	CreateInquiry(ctx context.Context, inquiry *db_models.Inquiry) error
	MarkEmailSent(ctx context.Context, id string) error
	ListInquiries(ctx context.Context, kind db_models.InquiryKind, page, pageSize int) ([]db_models.Inquiry, error)
}

type InquiryRepository struct {
	db *gorm.DB
}

func NewInquiryRepository(db *gorm.DB) *InquiryRepository {
	return &InquiryRepository{db: db}
}

func (r *InquiryRepository) WithTx(tx *gorm.DB) InquiryRepositoryInterface {
	return &InquiryRepository{db: tx}
}

func (r *InquiryRepository) CreateInquiry(ctx context.Context, inquiry *db_models.Inquiry) error {
	return r.db.WithContext(ctx).Create(inquiry).Error
}

func (r *InquiryRepository) MarkEmailSent(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&db_models.Inquiry{}).
		Where("id = ?", id).
		Update("email_sent", true).Error
}

func (r *InquiryRepository) ListInquiries(ctx context.Context, kind db_models.InquiryKind, page, pageSize int) ([]db_models.Inquiry, error) {
	var inquiries []db_models.Inquiry
	q := r.db.WithContext(ctx)
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	err := q.
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Order("created_at DESC").
		Find(&inquiries).Error
	return inquiries, err
}
