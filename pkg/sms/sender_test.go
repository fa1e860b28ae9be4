package sms_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/medbillhq/notifykit/pkg/sms"
)

func TestNormalizePhone(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"+1 (555) 123-4567", "+15551234567"},
		{"  +44 20 7946 0958 ", "+442079460958"},
		{"555.123.4567", "5551234567"},
		{"+15551234567", "+15551234567"},
		{"", ""},
		{"---", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, sms.NormalizePhone(tt.in), "input %q", tt.in)
	}
}

func TestValidNumber(t *testing.T) {
	t.Parallel()

	valid := []string{
		"+15551234567",
		"+1 (555) 123-4567",
		"+442079460958",
	}
	for _, n := range valid {
		assert.True(t, sms.ValidNumber(n), n)
	}

	invalid := []string{
		"",
		"5551234567",      // no country code
		"+05551234567",    // leading zero
		"+1",              // too short
		"not a number",
		"+123456789012345678", // too long
	}
	for _, n := range invalid {
		assert.False(t, sms.ValidNumber(n), n)
	}
}

func TestSendSMSParams_Validate(t *testing.T) {
	t.Parallel()

	base := sms.SendSMSParams{SendTo: "+15551234567", Message: "Claim 12 approved"}

	t.Run("valid", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, base.Validate())
	})

	tests := []struct {
		name   string
		mutate func(*sms.SendSMSParams)
	}{
		{"missing recipient", func(p *sms.SendSMSParams) { p.SendTo = "" }},
		{"malformed recipient", func(p *sms.SendSMSParams) { p.SendTo = "555" }},
		{"missing message", func(p *sms.SendSMSParams) { p.Message = "" }},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := base
			tt.mutate(&p)
			assert.ErrorIs(t, p.Validate(), sms.ErrInvalidParams)
		})
	}
}
