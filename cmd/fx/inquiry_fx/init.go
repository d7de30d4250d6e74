package inquiry_fx

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"pmsportal/internal/repositories"
	"pmsportal/internal/services"
)

var Module = fx.Provide(provideInquiryRepo, services.NewInquiryService)

func provideInquiryRepo(db *gorm.DB) repositories.InquiryRepositoryInterface {
	return repositories.NewInquiryRepository(db)
}
