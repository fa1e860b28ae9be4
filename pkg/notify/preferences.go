package notify

import "context"

// TypePreference controls whether a notification type reaches the user and
// through which channels. The zero value is "not configured": the resolver
// treats unconfigured types as enabled with in-app delivery only, matching
// the fail-open behavior users rely on for types added after they saved
// their settings.
type TypePreference struct {
	Configured bool      `json:"configured"`
	Enabled    bool      `json:"enabled"`
	Methods    MethodSet `json:"methods"`
}

// MethodPreference controls a delivery channel globally for the user.
// Unconfigured channels are treated as enabled with real-time delivery.
type MethodPreference struct {
	Configured bool      `json:"configured"`
	Enabled    bool      `json:"enabled"`
	Frequency  Frequency `json:"frequency"`
}

// effectiveEnabled resolves the fail-open default for unconfigured channels.
func (p MethodPreference) effectiveEnabled() bool {
	if !p.Configured {
		return true
	}
	return p.Enabled
}

// EffectiveFrequency returns the configured frequency, defaulting to
// real-time when the channel was never configured or carries an invalid
// value.
func (p MethodPreference) EffectiveFrequency() Frequency {
	if !p.Configured || !p.Frequency.Valid() {
		return FrequencyRealTime
	}
	return p.Frequency
}

// QuietHours defines a daily suppression window in the user's own time zone.
// The window may wrap midnight (Start >= End). Severities in Bypass are
// delivered regardless of the window.
type QuietHours struct {
	Enabled  bool        `json:"enabled"`
	Start    string      `json:"start"` // "HH:MM", 24h wall clock
	End      string      `json:"end"`
	Timezone string      `json:"timezone"` // IANA zone name, e.g. "America/Chicago"
	Bypass   SeveritySet `json:"bypass"`
}

// Preferences is a single user's notification configuration. The per-type
// and per-method tables are fixed-size arrays indexed by the closed enums,
// so every lookup is exhaustive and there is no "missing key" branch.
type Preferences struct {
	Types      [typeCount]TypePreference     `json:"types"`
	Methods    [methodCount]MethodPreference `json:"methods"`
	QuietHours QuietHours                    `json:"quiet_hours"`
}

// TypePreference returns the stored entry for t, or the zero value for
// unknown types.
func (p Preferences) TypePreference(t Type) TypePreference {
	if !t.Valid() {
		return TypePreference{}
	}
	return p.Types[t]
}

// MethodPreference returns the stored entry for m, or the zero value for
// unknown methods.
func (p Preferences) MethodPreference(m DeliveryMethod) MethodPreference {
	if !m.Valid() {
		return MethodPreference{}
	}
	return p.Methods[m]
}

// SetType configures delivery for a notification type.
func (p *Preferences) SetType(t Type, enabled bool, methods MethodSet) {
	if !t.Valid() {
		return
	}
	p.Types[t] = TypePreference{Configured: true, Enabled: enabled, Methods: methods}
}

// SetMethod configures a delivery channel globally.
func (p *Preferences) SetMethod(m DeliveryMethod, enabled bool, freq Frequency) {
	if !m.Valid() {
		return
	}
	p.Methods[m] = MethodPreference{Configured: true, Enabled: enabled, Frequency: freq}
}

// DefaultPreferences builds the deterministic fallback configuration used
// when a user has never saved preferences. Every type is delivered in-app,
// high-stakes billing types additionally by email, and critical alerts
// bypass quiet hours. Repeated calls return value-equal results.
func DefaultPreferences() Preferences {
	var p Preferences

	for _, t := range AllTypes() {
		methods := NewMethodSet(MethodInApp)
		switch t {
		case TypeFilingDeadline, TypeAuthorizationExpiry:
			methods = NewMethodSet(MethodInApp, MethodEmail)
		}
		p.SetType(t, true, methods)
	}

	p.SetMethod(MethodInApp, true, FrequencyRealTime)
	p.SetMethod(MethodEmail, true, FrequencyRealTime)
	p.SetMethod(MethodSMS, false, FrequencyRealTime)

	p.QuietHours = QuietHours{
		Enabled:  false,
		Start:    "22:00",
		End:      "08:00",
		Timezone: "UTC",
		Bypass:   NewSeveritySet(SeverityCritical),
	}

	return p
}

// PreferenceStore supplies stored preference sets and recipient existence.
// The engine reads it concurrently during bulk resolution but never writes
// through it; persistence of edits belongs to the owning application.
type PreferenceStore interface {
	// Get returns the user's stored preferences or ErrNoPreferences when the
	// user has never configured any.
	Get(ctx context.Context, userID string) (Preferences, error)

	// UserExists reports whether the recipient is a known user.
	UserExists(ctx context.Context, userID string) (bool, error)
}
