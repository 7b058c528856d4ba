package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/jewelify/jewelify-server/internal/config"
	"github.com/jewelify/jewelify-server/internal/models"
	"github.com/jewelify/jewelify-server/internal/storage"
	"github.com/jewelify/jewelify-server/internal/utils"
)

// OTP verification outcomes surfaced to handlers
var (
	ErrOTPNotFound     = errors.New("OTP not found or expired")
	ErrOTPExpired      = errors.New("OTP has expired")
	ErrOTPInvalid      = errors.New("invalid OTP")
	ErrOTPAlreadyUsed  = errors.New("OTP already used")
	ErrTooManyAttempts = errors.New("too many attempts")
)

type OTPService struct {
	store       storage.Store
	sender      MessageSender
	expiry      time.Duration
	maxAttempts int
}

func NewOTPService(store storage.Store, sender MessageSender, cfg *config.OTPConfig) *OTPService {
	return &OTPService{
		store:       store,
		sender:      sender,
		expiry:      cfg.Expiry,
		maxAttempts: cfg.MaxAttempts,
	}
}

// SendRegistrationOTP generates a fresh OTP, delivers it over SMS and
// stores it. Any previous OTP for the number is replaced, so resending
// invalidates older codes. The record is only written after a successful
// send so a provider failure leaves no dangling code behind.
func (s *OTPService) SendRegistrationOTP(mobileNo string) (*models.OTP, error) {
	code, err := utils.GenerateSecureOTP()
	if err != nil {
		return nil, fmt.Errorf("failed to generate OTP: %w", err)
	}

	if err := s.sender.SendSMS(mobileNo, fmt.Sprintf("Your Jewelify OTP is %s", code)); err != nil {
		return nil, err
	}

	otp := &models.OTP{
		MobileNo:  mobileNo,
		Code:      code,
		Purpose:   models.OTPPurposeRegistration,
		ExpiresAt: time.Now().Add(s.expiry),
		IsUsed:    false,
		Attempts:  0,
	}

	return s.store.ReplaceOTP(otp)
}

// VerifyRegistrationOTP checks the code for the mobile number. The OTP is
// single-use: success consumes it, expiry deletes it, and repeated wrong
// codes lock it out after the attempt cap.
func (s *OTPService) VerifyRegistrationOTP(mobileNo, code string) error {
	otp, err := s.store.GetActiveOTP(mobileNo, models.OTPPurposeRegistration)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrOTPNotFound
		}
		return err
	}

	if otp.IsExpired() {
		_ = s.store.DeleteOTP(mobileNo, models.OTPPurposeRegistration)
		return ErrOTPExpired
	}

	if otp.IsUsed {
		return ErrOTPAlreadyUsed
	}

	otp.Attempts++
	if otp.Attempts > s.maxAttempts {
		return ErrTooManyAttempts
	}

	if otp.Code != code {
		if err := s.store.UpdateOTP(otp); err != nil {
			return err
		}
		return ErrOTPInvalid
	}

	now := time.Now()
	otp.VerifiedAt = &now
	otp.IsUsed = true
	if err := s.store.UpdateOTP(otp); err != nil {
		return err
	}

	return s.store.DeleteOTP(mobileNo, models.OTPPurposeRegistration)
}
