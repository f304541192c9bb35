package handlers

import (
	"net/http"

	"cropcare-service/internal/services"
	"cropcare-service/internal/utils"

	"github.com/gin-gonic/gin"
)

type sendOTPRequest struct {
	Phone string `json:"phone" form:"phone"`
	OTP   string `json:"otp" form:"otp"`
}

type OTPHandler struct {
	otpService services.IOTPService
}

func NewOTPHandler(otpService services.IOTPService) *OTPHandler {
	return &OTPHandler{otpService: otpService}
}

func (h *OTPHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/send-otp", h.SendOTP)
}

// SendOTP accepts JSON or form-encoded {phone, otp}.
func (h *OTPHandler) SendOTP(c *gin.Context) {
	var req sendOTPRequest
	if err := c.ShouldBind(&req); err != nil || req.Phone == "" || req.OTP == "" {
		respondBadRequest(c, "Phone and OTP are required")
		return
	}

	if err := h.otpService.SendOTP(c.Request.Context(), req.Phone, req.OTP); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(gin.H{"sent": true}))
}
