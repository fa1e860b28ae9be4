// Package email is the email delivery channel. Sender abstracts the
// transport: NewPostmarkClient for production, NewDevSender to write mail to
// disk during development. Dispatcher adapts a Sender to the engine's
// notify.Dispatcher contract, adding address validation, HTML rendering, and
// bulk pacing.
package email
