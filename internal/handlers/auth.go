package handlers

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jewelify/jewelify-server/internal/models"
	"github.com/jewelify/jewelify-server/internal/services"
	"github.com/jewelify/jewelify-server/internal/storage"
)

// AuthHandler handles registration, OTP and login requests
type AuthHandler struct {
	store       storage.Store
	otpService  *services.OTPService
	authService *services.AuthService
}

// NewAuthHandler creates a new auth handler. otpService may be nil when
// Twilio is not configured; OTP endpoints then report a configuration error.
func NewAuthHandler(store storage.Store, otpService *services.OTPService, authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		store:       store,
		otpService:  otpService,
		authService: authService,
	}
}

// CheckUser reports whether an account exists for a mobile number
func (h *AuthHandler) CheckUser(c *fiber.Ctx) error {
	mobileNo := c.Params("mobile")
	if mobileNo == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Mobile number is required",
		})
	}

	_, err := h.store.GetUserByMobile(mobileNo)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.JSON(fiber.Map{"exists": false})
		}
		log.Printf("❌ Error checking user: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fmt.Sprintf("Database error: %v", err),
		})
	}

	return c.JSON(fiber.Map{"exists": true})
}

type otpRequest struct {
	MobileNo string `json:"mobile_no"`
}

// SendOTP generates an OTP and delivers it over SMS
func (h *AuthHandler) SendOTP(c *fiber.Ctx) error {
	var req otpRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := models.ValidateMobileNo(req.MobileNo); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if h.otpService == nil {
		log.Println("❌ OTP requested but Twilio is not configured")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Twilio configuration error",
		})
	}

	// A provider failure surfaces as a 500 carrying the provider error
	if _, err := h.otpService.SendRegistrationOTP(req.MobileNo); err != nil {
		log.Printf("❌ Failed to send OTP to %s: %v", req.MobileNo, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"message": "OTP sent successfully"})
}

type otpVerifyRequest struct {
	MobileNo string `json:"mobile_no"`
	OTP      string `json:"otp"`
}

// VerifyOTP checks the OTP sent to the user's mobile number
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req otpVerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if h.otpService == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Twilio configuration error",
		})
	}

	if err := h.otpService.VerifyRegistrationOTP(req.MobileNo, req.OTP); err != nil {
		switch {
		case errors.Is(err, services.ErrOTPNotFound),
			errors.Is(err, services.ErrOTPExpired),
			errors.Is(err, services.ErrOTPInvalid),
			errors.Is(err, services.ErrOTPAlreadyUsed),
			errors.Is(err, services.ErrTooManyAttempts):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		default:
			log.Printf("❌ Error verifying OTP: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": fmt.Sprintf("Database error: %v", err),
			})
		}
	}

	return c.JSON(fiber.Map{"message": "OTP verified successfully"})
}

// Register creates a new user after OTP verification
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var reg models.UserRegistration
	if err := c.BodyParser(&reg); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := reg.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	hashedPassword, err := h.authService.HashPassword(reg.Password)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create user",
		})
	}

	user, err := h.store.CreateUser(&models.User{
		Username:       reg.Username,
		MobileNo:       reg.MobileNo,
		HashedPassword: hashedPassword,
	})
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrDuplicateUsername):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Username already exists",
			})
		case errors.Is(err, storage.ErrDuplicateMobile):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Mobile number already exists",
			})
		default:
			log.Printf("❌ Error registering user: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": fmt.Sprintf("Failed to create user: %v", err),
			})
		}
	}

	accessToken, err := h.authService.CreateAccessToken(user.UserID)
	if err != nil {
		log.Printf("❌ Error issuing access token: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create user",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(models.UserOut{
		ID:          user.UserID,
		Username:    user.Username,
		MobileNo:    user.MobileNo,
		CreatedAt:   user.CreatedAt.UTC().Format(time.RFC3339),
		AccessToken: accessToken,
	})
}

// Login authenticates by username or mobile number plus password
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req models.UserLogin
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	user, err := h.store.GetUserByUsernameOrMobile(req.Username)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		log.Printf("❌ Database error during login: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fmt.Sprintf("Database error: %v", err),
		})
	}

	if user == nil || !h.authService.VerifyPassword(req.Password, user.HashedPassword) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Incorrect username/mobile number or password",
		})
	}

	accessToken, err := h.authService.CreateAccessToken(user.UserID)
	if err != nil {
		log.Printf("❌ Error issuing access token: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create access token",
		})
	}

	return c.JSON(fiber.Map{
		"access_token": accessToken,
		"token_type":   "bearer",
	})
}
