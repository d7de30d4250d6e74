package request_models

type InquiryRequest struct {
	Kind          string `json:"kind" binding:"required,oneof=inquiry referral feedback"`
	NuvamaCode    string `json:"nuvama_code"`
	Name          string `json:"name" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	Phone         string `json:"phone"`
	Message       string `json:"message" binding:"required"`
	ReferredName  string `json:"referred_name"`
	ReferredPhone string `json:"referred_phone"`
	Rating        *int   `json:"rating" binding:"omitempty,min=1,max=5"`
}
