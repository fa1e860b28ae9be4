package sms

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Sender represents an interface for sending SMS messages.
type Sender interface {
	SendSMS(ctx context.Context, params SendSMSParams) error
}

// SendSMSParams represents the parameters for sending one message.
type SendSMSParams struct {
	SendTo  string `json:"send_to"` // Phone number in E.164 form
	Message string `json:"message"`
	Tag     string `json:"tag,omitempty"` // Optional
}

// e164Regex accepts international numbers in E.164 form after normalization:
// a plus, a non-zero leading digit, and up to 14 more digits.
var e164Regex = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)

var nonDigitRegex = regexp.MustCompile(`[^\d]`)

// NormalizePhone strips formatting characters, keeping a single leading plus,
// so stored and user-supplied numbers compare consistently.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	plus := strings.HasPrefix(phone, "+")
	digits := nonDigitRegex.ReplaceAllString(phone, "")
	if digits == "" {
		return ""
	}
	if plus {
		return "+" + digits
	}
	return digits
}

// ValidNumber reports whether phone normalizes to a valid E.164 number.
func ValidNumber(phone string) bool {
	return e164Regex.MatchString(NormalizePhone(phone))
}

// Validate checks the parameters before they reach a gateway.
func (p SendSMSParams) Validate() error {
	if p.SendTo == "" {
		return fmt.Errorf("%w: SendTo is required", ErrInvalidParams)
	}
	if !ValidNumber(p.SendTo) {
		return fmt.Errorf("%w: SendTo must be an E.164 phone number", ErrInvalidParams)
	}
	if p.Message == "" {
		return fmt.Errorf("%w: Message is required", ErrInvalidParams)
	}
	return nil
}
