package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jewelify/jewelify-server/internal/config"
	"github.com/jewelify/jewelify-server/internal/handlers"
	"github.com/jewelify/jewelify-server/internal/routes"
	"github.com/jewelify/jewelify-server/internal/services"
	"github.com/jewelify/jewelify-server/internal/storage"
)

// stubSender records sent messages and can be made to fail like the
// provider would
type stubSender struct {
	lastBody string
	lastTo   string
	fail     error
}

func (s *stubSender) SendSMS(to, body string) error {
	if s.fail != nil {
		return s.fail
	}
	s.lastTo = to
	s.lastBody = body
	return nil
}

type testEnv struct {
	app    *fiber.App
	store  *storage.MemoryStore
	sender *stubSender
	auth   *services.AuthService
}

func newTestEnv(t *testing.T, predictor *services.Predictor) *testEnv {
	t.Helper()

	store := storage.NewMemoryStore()
	sender := &stubSender{}

	authService, err := services.NewAuthService(&config.JWTConfig{
		SecretKey:    "0123456789abcdef0123456789abcdef",
		AccessExpiry: time.Hour,
	})
	require.NoError(t, err)

	otpService := services.NewOTPService(store, sender, &config.OTPConfig{
		Expiry:      10 * time.Minute,
		MaxAttempts: 3,
	})

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	routes.SetupRoutes(app, routes.Deps{
		Store:       store,
		OTPService:  otpService,
		AuthService: authService,
		Predictor:   predictor,
		Health:      handlers.NewHealthHandler("test"),
	})

	return &testEnv{app: app, store: store, sender: sender, auth: authService}
}

func (e *testEnv) request(t *testing.T, method, path string, body interface{}, token string) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	var payload map[string]interface{}
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(data) > 0 && data[0] == '{' {
		require.NoError(t, json.Unmarshal(data, &payload))
	}
	return resp, payload
}

// registerUser walks the full OTP + register flow and returns the access token
func (e *testEnv) registerUser(t *testing.T, username, mobile string) string {
	t.Helper()

	resp, _ := e.request(t, "POST", "/auth/send-otp", fiber.Map{"mobile_no": mobile}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	code := strings.TrimPrefix(e.sender.lastBody, "Your Jewelify OTP is ")
	resp, _ = e.request(t, "POST", "/auth/verify-otp", fiber.Map{"mobile_no": mobile, "otp": code}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, payload := e.request(t, "POST", "/auth/register", fiber.Map{
		"username":  username,
		"mobile_no": mobile,
		"password":  "secret123",
		"otp":       code,
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	token, _ := payload["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestCheckUser(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, payload := env.request(t, "GET", "/auth/check-user/+919876543210", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, payload["exists"])

	env.registerUser(t, "priya", "+919876543210")

	resp, payload = env.request(t, "GET", "/auth/check-user/+919876543210", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, payload["exists"])
}

func TestSendOTPDeliversCode(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, payload := env.request(t, "POST", "/auth/send-otp", fiber.Map{"mobile_no": "+919876543210"}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OTP sent successfully", payload["message"])
	assert.Equal(t, "+919876543210", env.sender.lastTo)
	assert.Contains(t, env.sender.lastBody, "Your Jewelify OTP is ")
}

func TestSendOTPInvalidMobile(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, _ := env.request(t, "POST", "/auth/send-otp", fiber.Map{"mobile_no": "abc"}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSendOTPProviderFailure(t *testing.T) {
	env := newTestEnv(t, nil)
	env.sender.fail = errors.New("twilio error 21608: unverified number")

	resp, payload := env.request(t, "POST", "/auth/send-otp", fiber.Map{"mobile_no": "+919876543210"}, "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, fmt.Sprint(payload["error"]), "twilio error 21608")
}

func TestSendOTPWithoutTwilioConfigured(t *testing.T) {
	env := newTestEnv(t, nil)

	// Rebuild the routes with no OTP service, as main does when Twilio
	// credentials are missing
	app := fiber.New()
	routes.SetupRoutes(app, routes.Deps{
		Store:       env.store,
		OTPService:  nil,
		AuthService: env.auth,
		Health:      handlers.NewHealthHandler("test"),
	})

	body, _ := json.Marshal(fiber.Map{"mobile_no": "+919876543210"})
	req, _ := http.NewRequest("POST", "/auth/send-otp", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	data, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(data), "Twilio configuration error")
}

func TestVerifyOTPWrongCode(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, _ := env.request(t, "POST", "/auth/send-otp", fiber.Map{"mobile_no": "+919876543210"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	code := strings.TrimPrefix(env.sender.lastBody, "Your Jewelify OTP is ")
	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	resp, payload := env.request(t, "POST", "/auth/verify-otp", fiber.Map{"mobile_no": "+919876543210", "otp": wrong}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid OTP", payload["error"])
}

func TestVerifyOTPUnknownNumber(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, payload := env.request(t, "POST", "/auth/verify-otp", fiber.Map{"mobile_no": "+910000000000", "otp": "123456"}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "OTP not found or expired", payload["error"])
}

func TestRegisterAndDuplicates(t *testing.T) {
	env := newTestEnv(t, nil)
	env.registerUser(t, "priya", "+919876543210")

	// Same username
	resp, payload := env.request(t, "POST", "/auth/register", fiber.Map{
		"username":  "priya",
		"mobile_no": "+911111111111",
		"password":  "secret123",
		"otp":       "123456",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Username already exists", payload["error"])

	// Same mobile
	resp, payload = env.request(t, "POST", "/auth/register", fiber.Map{
		"username":  "asha",
		"mobile_no": "+919876543210",
		"password":  "secret123",
		"otp":       "123456",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Mobile number already exists", payload["error"])
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, _ := env.request(t, "POST", "/auth/register", fiber.Map{
		"username":  "ab",
		"mobile_no": "+919876543210",
		"password":  "secret123",
		"otp":       "123456",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLoginWithUsernameAndMobile(t *testing.T) {
	env := newTestEnv(t, nil)
	env.registerUser(t, "priya", "+919876543210")

	resp, payload := env.request(t, "POST", "/auth/login", fiber.Map{"username": "priya", "password": "secret123"}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, payload["access_token"])
	assert.Equal(t, "bearer", payload["token_type"])

	resp, payload = env.request(t, "POST", "/auth/login", fiber.Map{"username": "+919876543210", "password": "secret123"}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, payload["access_token"])
}

func TestLoginWithForm(t *testing.T) {
	env := newTestEnv(t, nil)
	env.registerUser(t, "priya", "+919876543210")

	form := url.Values{}
	form.Set("username", "priya")
	form.Set("password", "secret123")
	req, _ := http.NewRequest("POST", "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLoginBadCredentials(t *testing.T) {
	env := newTestEnv(t, nil)
	env.registerUser(t, "priya", "+919876543210")

	resp, payload := env.request(t, "POST", "/auth/login", fiber.Map{"username": "priya", "password": "wrong"}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Incorrect username/mobile number or password", payload["error"])

	resp, _ = env.request(t, "POST", "/auth/login", fiber.Map{"username": "nobody", "password": "secret123"}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, _ := env.request(t, "GET", "/history", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = env.request(t, "GET", "/history", nil, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
