package storage

import (
	"errors"

	"github.com/jewelify/jewelify-server/internal/models"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("record not found")

// Uniqueness violations on user creation
var (
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateMobile   = errors.New("mobile number already exists")
)

var storeInstance Store

// SetStore sets the global store instance (call from main.go)
func SetStore(s Store) {
	storeInstance = s
}

// GetStore returns the global store instance
func GetStore() Store {
	return storeInstance
}

// Store defines the interface for storage operations
type Store interface {
	// User operations
	CreateUser(user *models.User) (*models.User, error)
	GetUserByID(userID string) (*models.User, error)
	GetUserByUsername(username string) (*models.User, error)
	GetUserByMobile(mobileNo string) (*models.User, error)
	GetUserByUsernameOrMobile(value string) (*models.User, error)

	// OTP operations
	ReplaceOTP(otp *models.OTP) (*models.OTP, error)
	GetActiveOTP(mobileNo, purpose string) (*models.OTP, error)
	UpdateOTP(otp *models.OTP) error
	DeleteOTP(mobileNo, purpose string) error
	DeleteExpiredOTPs() error

	// Prediction operations
	CreatePrediction(prediction *models.Prediction) (*models.Prediction, error)
	GetPrediction(predictionID, userID string) (*models.Prediction, error)
	GetPredictionsByUser(userID string) ([]*models.Prediction, error)

	// Jewelry image catalog operations
	GetJewelryImage(name string) (*models.JewelryImage, error)
	UpsertJewelryImage(image *models.JewelryImage) error
}
