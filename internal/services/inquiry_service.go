package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"pmsportal/internal/infra"
	"pmsportal/internal/models/db_models"
	"pmsportal/internal/models/request_models"
	"pmsportal/internal/repositories"
	"pmsportal/pkg/utils"
)

type InquiryServiceInterface interface {
	// Submit stores the form and mails the operator. The row is kept only if the mail went out.
	Submit(ctx context.Context, req request_models.InquiryRequest) (*db_models.Inquiry, error)
	List(ctx context.Context, kind string, page, pageSize int) ([]db_models.Inquiry, error)
}

type InquiryService struct {
	db          *gorm.DB
	inquiryRepo repositories.InquiryRepositoryInterface
	mail        IMailService
	log         zerolog.Logger
}

func NewInquiryService(db *gorm.DB, inquiryRepo repositories.InquiryRepositoryInterface, mail IMailService, log zerolog.Logger) InquiryServiceInterface {
	return &InquiryService{
		db:          db,
		inquiryRepo: inquiryRepo,
		mail:        mail,
		log:         log.With().Str("component", "inquiry").Logger(),
	}
}

func (s *InquiryService) Submit(ctx context.Context, req request_models.InquiryRequest) (*db_models.Inquiry, error) {
	kind := db_models.InquiryKind(strings.ToLower(strings.TrimSpace(req.Kind)))
	switch kind {
	case db_models.InquiryGeneral, db_models.InquiryFeedback:
	case db_models.InquiryReferral:
		if strings.TrimSpace(req.ReferredName) == "" {
			return nil, fmt.Errorf("%w: referred_name is required for a referral", utils.ErrValidation)
		}
	default:
		return nil, fmt.Errorf("%w: kind must be inquiry, referral or feedback", utils.ErrValidation)
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Message) == "" {
		return nil, fmt.Errorf("%w: name, email and message are required", utils.ErrValidation)
	}
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", utils.ErrValidation)
	}

	inquiry := &db_models.Inquiry{
		Kind:          kind,
		NuvamaCode:    strings.TrimSpace(req.NuvamaCode),
		Name:          strings.TrimSpace(req.Name),
		Email:         strings.TrimSpace(req.Email),
		Phone:         strings.TrimSpace(req.Phone),
		Message:       strings.TrimSpace(req.Message),
		ReferredName:  strings.TrimSpace(req.ReferredName),
		ReferredPhone: strings.TrimSpace(req.ReferredPhone),
		Rating:        req.Rating,
	}

	tx, err := infra.StartTransaction(s.db.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	err = s.submitTx(ctx, s.inquiryRepo.WithTx(tx), inquiry)
	if err := infra.ReleaseTransaction(tx, err); err != nil {
		s.log.Warn().Err(err).Str("kind", string(kind)).Msg("Inquiry not stored")
		return nil, err
	}

	s.log.Info().Str("id", inquiry.ID.String()).Str("kind", string(kind)).Msg("Inquiry stored")
	return inquiry, nil
}

func (s *InquiryService) submitTx(ctx context.Context, repo repositories.InquiryRepositoryInterface, inquiry *db_models.Inquiry) error {
	if err := repo.CreateInquiry(ctx, inquiry); err != nil {
		return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if err := s.mail.SendInquiryNotification(inquiry); err != nil {
		return fmt.Errorf("send inquiry notification: %w", err)
	}
	if err := repo.MarkEmailSent(ctx, inquiry.ID.String()); err != nil {
		return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	inquiry.EmailSent = true
	return nil
}

func (s *InquiryService) List(ctx context.Context, kind string, page, pageSize int) ([]db_models.Inquiry, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	inquiries, err := s.inquiryRepo.ListInquiries(ctx, db_models.InquiryKind(strings.ToLower(kind)), page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	return inquiries, nil
}
