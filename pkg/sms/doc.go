// Package sms is the SMS delivery channel. Sender abstracts the transport:
// NewGatewayClient for a JSON-over-HTTP provider gateway with client-side
// rate limiting, NewDevSender to log messages to disk during development.
// Dispatcher adapts a Sender to the engine's notify.Dispatcher contract with
// E.164 validation and bulk pacing.
package sms
