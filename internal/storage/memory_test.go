package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jewelify/jewelify-server/internal/models"
)

func TestMemoryStoreUserUniqueness(t *testing.T) {
	store := NewMemoryStore()

	user, err := store.CreateUser(&models.User{Username: "priya", MobileNo: "+919876543210"})
	require.NoError(t, err)
	assert.NotEmpty(t, user.UserID)

	_, err = store.CreateUser(&models.User{Username: "priya", MobileNo: "+911111111111"})
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	_, err = store.CreateUser(&models.User{Username: "asha", MobileNo: "+919876543210"})
	assert.ErrorIs(t, err, ErrDuplicateMobile)
}

func TestMemoryStoreUserLookups(t *testing.T) {
	store := NewMemoryStore()

	created, err := store.CreateUser(&models.User{Username: "priya", MobileNo: "+919876543210"})
	require.NoError(t, err)

	byID, err := store.GetUserByID(created.UserID)
	require.NoError(t, err)
	assert.Equal(t, "priya", byID.Username)

	byUsername, err := store.GetUserByUsername("priya")
	require.NoError(t, err)
	assert.Equal(t, created.UserID, byUsername.UserID)

	byEither, err := store.GetUserByUsernameOrMobile("priya")
	require.NoError(t, err)
	assert.Equal(t, created.UserID, byEither.UserID)

	byMobile, err := store.GetUserByUsernameOrMobile("+919876543210")
	require.NoError(t, err)
	assert.Equal(t, created.UserID, byMobile.UserID)

	_, err = store.GetUserByID("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.GetUserByMobile("+910000000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreReplaceOTP(t *testing.T) {
	store := NewMemoryStore()

	first := &models.OTP{
		MobileNo:  "+919876543210",
		Code:      "111111",
		Purpose:   models.OTPPurposeRegistration,
		ExpiresAt: time.Now().Add(10 * time.Minute),
	}
	_, err := store.ReplaceOTP(first)
	require.NoError(t, err)

	second := &models.OTP{
		MobileNo:  "+919876543210",
		Code:      "222222",
		Purpose:   models.OTPPurposeRegistration,
		ExpiresAt: time.Now().Add(10 * time.Minute),
	}
	_, err = store.ReplaceOTP(second)
	require.NoError(t, err)

	// Only the newest OTP is active for the number
	active, err := store.GetActiveOTP("+919876543210", models.OTPPurposeRegistration)
	require.NoError(t, err)
	assert.Equal(t, "222222", active.Code)

	require.NoError(t, store.DeleteOTP("+919876543210", models.OTPPurposeRegistration))
	_, err = store.GetActiveOTP("+919876543210", models.OTPPurposeRegistration)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreDeleteExpiredOTPs(t *testing.T) {
	store := NewMemoryStore()

	expired := &models.OTP{
		MobileNo:  "+911111111111",
		Code:      "111111",
		Purpose:   models.OTPPurposeRegistration,
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	fresh := &models.OTP{
		MobileNo:  "+912222222222",
		Code:      "222222",
		Purpose:   models.OTPPurposeRegistration,
		ExpiresAt: time.Now().Add(10 * time.Minute),
	}
	_, err := store.ReplaceOTP(expired)
	require.NoError(t, err)
	_, err = store.ReplaceOTP(fresh)
	require.NoError(t, err)

	require.NoError(t, store.DeleteExpiredOTPs())

	_, err = store.GetActiveOTP("+911111111111", models.OTPPurposeRegistration)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.GetActiveOTP("+912222222222", models.OTPPurposeRegistration)
	assert.NoError(t, err)
}

func TestMemoryStorePredictionsByUser(t *testing.T) {
	store := NewMemoryStore()

	for i, score := range []float64{0.2, 0.5, 0.9} {
		p := &models.Prediction{UserID: "user-1", Score: score, Category: "Good"}
		created, err := store.CreatePrediction(p)
		require.NoError(t, err)
		assert.NotEmpty(t, created.PredictionID)
		// Spread creation times so the ordering is deterministic
		created.CreatedAt = time.Now().Add(time.Duration(i) * time.Minute)
	}
	other := &models.Prediction{UserID: "user-2", Score: 0.1, Category: "Very Bad"}
	_, err := store.CreatePrediction(other)
	require.NoError(t, err)

	predictions, err := store.GetPredictionsByUser("user-1")
	require.NoError(t, err)
	require.Len(t, predictions, 3)

	// Newest first
	assert.Equal(t, 0.9, predictions[0].Score)
	assert.Equal(t, 0.5, predictions[1].Score)
	assert.Equal(t, 0.2, predictions[2].Score)
}

func TestMemoryStorePredictionOwnership(t *testing.T) {
	store := NewMemoryStore()

	created, err := store.CreatePrediction(&models.Prediction{UserID: "user-1", Score: 0.7})
	require.NoError(t, err)

	_, err = store.GetPrediction(created.PredictionID, "user-1")
	assert.NoError(t, err)

	// Another user cannot read it
	_, err = store.GetPrediction(created.PredictionID, "user-2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreJewelryImages(t *testing.T) {
	store := NewMemoryStore()

	require.NoError(t, store.UpsertJewelryImage(&models.JewelryImage{Name: "ring_01", URL: "https://cdn.example.com/a.jpg"}))
	require.NoError(t, store.UpsertJewelryImage(&models.JewelryImage{Name: "ring_01", URL: "https://cdn.example.com/b.jpg"}))

	image, err := store.GetJewelryImage("ring_01")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/b.jpg", image.URL)

	_, err = store.GetJewelryImage("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
