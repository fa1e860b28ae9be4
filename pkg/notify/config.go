package notify

import "time"

// Config holds engine-wide settings. It is injected at construction and
// read-only afterwards; nothing in the engine reads ambient globals at call
// time.
type Config struct {
	BatchSize             int           `env:"NOTIFY_BATCH_SIZE" envDefault:"50"`                // BatchSize is the per-batch fan-out width for bulk sends.
	BatchDelay            time.Duration `env:"NOTIFY_BATCH_DELAY" envDefault:"1s"`               // BatchDelay is the pause between consecutive bulk batches.
	DefaultExpirationDays int           `env:"NOTIFY_EXPIRATION_DAYS" envDefault:"30"`           // DefaultExpirationDays controls how long in-app rows stay visible.
	DailyDigestSpec       string        `env:"NOTIFY_DAILY_DIGEST_CRON" envDefault:"0 8 * * *"`  // DailyDigestSpec is the cron expression for the daily flush.
	WeeklyDigestSpec      string        `env:"NOTIFY_WEEKLY_DIGEST_CRON" envDefault:"0 8 * * 1"` // WeeklyDigestSpec is the cron expression for the weekly flush.

	// TypeExpirationDays overrides the in-app retention window per
	// notification type, in days. Types not listed use
	// DefaultExpirationDays. A nil map applies no overrides.
	TypeExpirationDays map[Type]int
}

// DefaultTypeExpirations returns the stock per-type retention overrides:
// payment and deadline notices stay visible for a full quarter, transient
// system alerts for a week.
func DefaultTypeExpirations() map[Type]int {
	return map[Type]int{
		TypePaymentReceived: 90,
		TypeFilingDeadline:  90,
		TypeSystemAlert:     7,
	}
}

// expirationFor computes the in-app expiry instant for a notification type.
func (c Config) expirationFor(t Type, now time.Time) *time.Time {
	days := c.DefaultExpirationDays
	if override, ok := c.TypeExpirationDays[t]; ok {
		days = override
	}
	if days <= 0 {
		return nil
	}
	at := now.AddDate(0, 0, days)
	return &at
}
