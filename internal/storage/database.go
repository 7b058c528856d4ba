package storage

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jewelify/jewelify-server/internal/models"
)

// DatabaseStore implements Store on top of GORM/PostgreSQL
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a database-backed storage
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// User operations

func (d *DatabaseStore) CreateUser(user *models.User) (*models.User, error) {
	var count int64
	d.db.Model(&models.User{}).Where("username = ?", user.Username).Count(&count)
	if count > 0 {
		return nil, ErrDuplicateUsername
	}
	d.db.Model(&models.User{}).Where("mobile_no = ?", user.MobileNo).Count(&count)
	if count > 0 {
		return nil, ErrDuplicateMobile
	}

	if err := d.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (d *DatabaseStore) GetUserByID(userID string) (*models.User, error) {
	var user models.User
	err := d.db.Where("user_id = ?", userID).First(&user).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (d *DatabaseStore) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	err := d.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (d *DatabaseStore) GetUserByMobile(mobileNo string) (*models.User, error) {
	var user models.User
	err := d.db.Where("mobile_no = ?", mobileNo).First(&user).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (d *DatabaseStore) GetUserByUsernameOrMobile(value string) (*models.User, error) {
	var user models.User
	err := d.db.Where("username = ? OR mobile_no = ?", value, value).First(&user).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

// OTP operations

// ReplaceOTP removes any previous OTP for the mobile number before storing
// the new one, so at most one OTP is active per number
func (d *DatabaseStore) ReplaceOTP(otp *models.OTP) (*models.OTP, error) {
	err := d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().
			Where("mobile_no = ? AND purpose = ?", otp.MobileNo, otp.Purpose).
			Delete(&models.OTP{}).Error; err != nil {
			return err
		}
		return tx.Create(otp).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store OTP: %w", err)
	}
	return otp, nil
}

func (d *DatabaseStore) GetActiveOTP(mobileNo, purpose string) (*models.OTP, error) {
	var otp models.OTP
	err := d.db.Where("mobile_no = ? AND purpose = ?", mobileNo, purpose).
		Order("created_at DESC").
		First(&otp).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &otp, nil
}

func (d *DatabaseStore) UpdateOTP(otp *models.OTP) error {
	return d.db.Save(otp).Error
}

func (d *DatabaseStore) DeleteOTP(mobileNo, purpose string) error {
	return d.db.Unscoped().
		Where("mobile_no = ? AND purpose = ?", mobileNo, purpose).
		Delete(&models.OTP{}).Error
}

func (d *DatabaseStore) DeleteExpiredOTPs() error {
	return d.db.Unscoped().
		Where("expires_at < ?", time.Now()).
		Delete(&models.OTP{}).Error
}

// Prediction operations

func (d *DatabaseStore) CreatePrediction(prediction *models.Prediction) (*models.Prediction, error) {
	if err := d.db.Create(prediction).Error; err != nil {
		return nil, fmt.Errorf("failed to save prediction: %w", err)
	}
	return prediction, nil
}

func (d *DatabaseStore) GetPrediction(predictionID, userID string) (*models.Prediction, error) {
	var prediction models.Prediction
	err := d.db.Where("prediction_id = ? AND user_id = ?", predictionID, userID).
		First(&prediction).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &prediction, nil
}

func (d *DatabaseStore) GetPredictionsByUser(userID string) ([]*models.Prediction, error) {
	var predictions []*models.Prediction
	err := d.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&predictions).Error
	if err != nil {
		return nil, err
	}
	return predictions, nil
}

// Jewelry image catalog operations

func (d *DatabaseStore) GetJewelryImage(name string) (*models.JewelryImage, error) {
	var image models.JewelryImage
	err := d.db.Where("name = ?", name).First(&image).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &image, nil
}

func (d *DatabaseStore) UpsertJewelryImage(image *models.JewelryImage) error {
	return d.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"url", "updated_at"}),
	}).Create(image).Error
}

func translateError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
