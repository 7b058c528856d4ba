package services

import (
	"fmt"
	"log"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/jewelify/jewelify-server/internal/config"
)

// MessageSender sends an SMS to a phone number
type MessageSender interface {
	SendSMS(to, body string) error
}

type TwilioService struct {
	client *twilio.RestClient
	from   string // Your Twilio phone number
}

// NewTwilioService creates a new Twilio service instance
func NewTwilioService(cfg *config.TwilioConfig) (*TwilioService, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.PhoneNumber == "" {
		return nil, fmt.Errorf("missing Twilio credentials in environment variables")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})

	return &TwilioService{
		client: client,
		from:   cfg.PhoneNumber,
	}, nil
}

// SendSMS sends a text message via Twilio
func (t *TwilioService) SendSMS(to, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(t.from)
	params.SetTo(to)
	params.SetBody(body)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		log.Printf("❌ Failed to send SMS: %v", err)
		return fmt.Errorf("failed to send OTP: %w", err)
	}

	if resp.ErrorCode != nil && *resp.ErrorCode != 0 {
		return fmt.Errorf("failed to send OTP: twilio error %d: %s", *resp.ErrorCode, *resp.ErrorMessage)
	}

	log.Printf("✅ SMS sent to %s! SID: %s", to, *resp.Sid)
	return nil
}
