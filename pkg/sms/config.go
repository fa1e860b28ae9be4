package sms

import "time"

// Config holds SMS gateway configuration. GatewayURL and APIKey are optional
// so development environments can run on NewDevSender; the gateway client
// requires both.
type Config struct {
	GatewayURL     string        `env:"SMS_GATEWAY_URL"`                        // GatewayURL is the HTTP endpoint of the SMS provider.
	APIKey         string        `env:"SMS_API_KEY"`                            // APIKey authenticates against the gateway.
	SenderID       string        `env:"SMS_SENDER_ID,required"`                 // SenderID is the originating number or alphanumeric sender.
	RequestTimeout time.Duration `env:"SMS_REQUEST_TIMEOUT" envDefault:"10s"`   // RequestTimeout bounds one gateway call.
	RatePerSecond  float64       `env:"SMS_RATE_PER_SECOND" envDefault:"10"`    // RatePerSecond throttles outbound gateway calls.
	RateBurst      int           `env:"SMS_RATE_BURST" envDefault:"10"`         // RateBurst is the limiter's burst allowance.
}
