package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cropcare-service/internal/models"
	"cropcare-service/internal/utils"
)

const OTPResendWindow = 60 * time.Second

type IOTPService interface {
	SendOTP(ctx context.Context, phone, otp string) error
}

// OTPService relays a caller-generated code over SMS, at most once per phone
// per resend window.
type OTPService struct {
	sender   SMSSender
	throttle Throttle
}

func NewOTPService(sender SMSSender, throttle Throttle) IOTPService {
	if throttle == nil {
		throttle = NewMemoryThrottle()
	}
	return &OTPService{sender: sender, throttle: throttle}
}

func (s *OTPService) SendOTP(ctx context.Context, phone, otp string) error {
	phone = utils.NormalizePhone(phone)
	if phone == "" || otp == "" {
		return fmt.Errorf("phone and otp are required: %w", models.ErrValidation)
	}
	if ok, err := utils.ValidatePhone(phone); !ok {
		return fmt.Errorf("%v: %w", err, models.ErrValidation)
	}
	if ok, err := utils.ValidateOTP(otp); !ok {
		return fmt.Errorf("%v: %w", err, models.ErrValidation)
	}

	allowed, err := s.throttle.Allow(ctx, phone, OTPResendWindow)
	if err != nil {
		slog.Warn("OTP throttle unavailable, sending anyway", "error", err)
		allowed = true
	}
	if !allowed {
		return fmt.Errorf("exceeded threshold of OTPs in a minute: %w", models.ErrRateLimited)
	}

	slog.Info("Sending OTP", "phone", phone)
	if err := s.sender.SendSMS(ctx, "", fmt.Sprintf("Your CropCare OTP is: %s", otp), []string{phone}); err != nil {
		if relErr := s.throttle.Release(ctx, phone); relErr != nil {
			slog.Warn("Failed to release OTP throttle", "phone", phone, "error", relErr)
		}
		return fmt.Errorf("%w: %v", models.ErrUpstreamFailure, err)
	}
	return nil
}
