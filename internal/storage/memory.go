package storage

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jewelify/jewelify-server/internal/models"
)

// MemoryStore holds all data in memory for testing and local development
type MemoryStore struct {
	users       map[string]*models.User       // keyed by UserID
	otps        map[string]*models.OTP        // keyed by mobileNo|purpose
	predictions map[string]*models.Prediction // keyed by PredictionID
	images      map[string]*models.JewelryImage

	// Mutexes for thread safety
	userMu       sync.RWMutex
	otpMu        sync.RWMutex
	predictionMu sync.RWMutex
	imageMu      sync.RWMutex
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:       make(map[string]*models.User),
		otps:        make(map[string]*models.OTP),
		predictions: make(map[string]*models.Prediction),
		images:      make(map[string]*models.JewelryImage),
	}
}

func otpKey(mobileNo, purpose string) string {
	return mobileNo + "|" + purpose
}

// User operations

func (m *MemoryStore) CreateUser(user *models.User) (*models.User, error) {
	m.userMu.Lock()
	defer m.userMu.Unlock()

	for _, existing := range m.users {
		if existing.Username == user.Username {
			return nil, ErrDuplicateUsername
		}
		if existing.MobileNo == user.MobileNo {
			return nil, ErrDuplicateMobile
		}
	}

	if user.UserID == "" {
		user.UserID = uuid.New().String()
	}
	user.Username = strings.TrimSpace(user.Username)
	user.MobileNo = strings.TrimSpace(user.MobileNo)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	m.users[user.UserID] = user
	return user, nil
}

func (m *MemoryStore) GetUserByID(userID string) (*models.User, error) {
	m.userMu.RLock()
	defer m.userMu.RUnlock()

	user, exists := m.users[userID]
	if !exists {
		return nil, ErrNotFound
	}
	return user, nil
}

func (m *MemoryStore) GetUserByUsername(username string) (*models.User, error) {
	m.userMu.RLock()
	defer m.userMu.RUnlock()

	for _, user := range m.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) GetUserByMobile(mobileNo string) (*models.User, error) {
	m.userMu.RLock()
	defer m.userMu.RUnlock()

	for _, user := range m.users {
		if user.MobileNo == mobileNo {
			return user, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) GetUserByUsernameOrMobile(value string) (*models.User, error) {
	m.userMu.RLock()
	defer m.userMu.RUnlock()

	for _, user := range m.users {
		if user.Username == value || user.MobileNo == value {
			return user, nil
		}
	}
	return nil, ErrNotFound
}

// OTP operations

// ReplaceOTP removes any previous OTP for the mobile number and stores the
// new one, so at most one OTP is active per number
func (m *MemoryStore) ReplaceOTP(otp *models.OTP) (*models.OTP, error) {
	m.otpMu.Lock()
	defer m.otpMu.Unlock()

	otp.CreatedAt = time.Now()
	otp.UpdatedAt = otp.CreatedAt
	m.otps[otpKey(otp.MobileNo, otp.Purpose)] = otp
	return otp, nil
}

func (m *MemoryStore) GetActiveOTP(mobileNo, purpose string) (*models.OTP, error) {
	m.otpMu.RLock()
	defer m.otpMu.RUnlock()

	otp, exists := m.otps[otpKey(mobileNo, purpose)]
	if !exists {
		return nil, ErrNotFound
	}
	return otp, nil
}

func (m *MemoryStore) UpdateOTP(otp *models.OTP) error {
	m.otpMu.Lock()
	defer m.otpMu.Unlock()

	key := otpKey(otp.MobileNo, otp.Purpose)
	if _, exists := m.otps[key]; !exists {
		return ErrNotFound
	}
	otp.UpdatedAt = time.Now()
	m.otps[key] = otp
	return nil
}

func (m *MemoryStore) DeleteOTP(mobileNo, purpose string) error {
	m.otpMu.Lock()
	defer m.otpMu.Unlock()

	delete(m.otps, otpKey(mobileNo, purpose))
	return nil
}

func (m *MemoryStore) DeleteExpiredOTPs() error {
	m.otpMu.Lock()
	defer m.otpMu.Unlock()

	for key, otp := range m.otps {
		if otp.IsExpired() {
			delete(m.otps, key)
		}
	}
	return nil
}

// Prediction operations

func (m *MemoryStore) CreatePrediction(prediction *models.Prediction) (*models.Prediction, error) {
	m.predictionMu.Lock()
	defer m.predictionMu.Unlock()

	if prediction.PredictionID == "" {
		prediction.PredictionID = uuid.New().String()
	}
	prediction.CreatedAt = time.Now()
	prediction.UpdatedAt = prediction.CreatedAt

	m.predictions[prediction.PredictionID] = prediction
	return prediction, nil
}

func (m *MemoryStore) GetPrediction(predictionID, userID string) (*models.Prediction, error) {
	m.predictionMu.RLock()
	defer m.predictionMu.RUnlock()

	prediction, exists := m.predictions[predictionID]
	if !exists || prediction.UserID != userID {
		return nil, ErrNotFound
	}
	return prediction, nil
}

func (m *MemoryStore) GetPredictionsByUser(userID string) ([]*models.Prediction, error) {
	m.predictionMu.RLock()
	defer m.predictionMu.RUnlock()

	var results []*models.Prediction
	for _, prediction := range m.predictions {
		if prediction.UserID == userID {
			results = append(results, prediction)
		}
	}

	// Newest first
	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	return results, nil
}

// Jewelry image catalog operations

func (m *MemoryStore) GetJewelryImage(name string) (*models.JewelryImage, error) {
	m.imageMu.RLock()
	defer m.imageMu.RUnlock()

	image, exists := m.images[name]
	if !exists {
		return nil, ErrNotFound
	}
	return image, nil
}

func (m *MemoryStore) UpsertJewelryImage(image *models.JewelryImage) error {
	m.imageMu.Lock()
	defer m.imageMu.Unlock()

	if existing, exists := m.images[image.Name]; exists {
		existing.URL = image.URL
		existing.UpdatedAt = time.Now()
		return nil
	}
	image.CreatedAt = time.Now()
	image.UpdatedAt = image.CreatedAt
	m.images[image.Name] = image
	return nil
}
