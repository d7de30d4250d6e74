package request_models

type OTPRequest struct {
	NuvamaCode string `json:"nuvama_code" binding:"required"`
}

type OTPVerifyRequest struct {
	NuvamaCode string `json:"nuvama_code" binding:"required"`
	Code       string `json:"code" binding:"required,len=6,numeric"`
}

type AdminLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}
