package notify

import (
	"fmt"
	"time"
)

// Type identifies the business event a notification reports on.
// The set is closed; preference lookups and expiration windows key off it.
type Type uint8

const (
	TypeClaimStatus Type = iota
	TypePaymentReceived
	TypeAuthorizationExpiry
	TypeFilingDeadline
	TypeEligibilityIssue
	TypeSystemAlert

	typeCount
)

var typeNames = [typeCount]string{
	TypeClaimStatus:         "claim_status",
	TypePaymentReceived:     "payment_received",
	TypeAuthorizationExpiry: "authorization_expiry",
	TypeFilingDeadline:      "filing_deadline",
	TypeEligibilityIssue:    "eligibility_issue",
	TypeSystemAlert:         "system_alert",
}

// AllTypes returns every notification type in declaration order.
func AllTypes() []Type {
	types := make([]Type, typeCount)
	for i := range types {
		types[i] = Type(i)
	}
	return types
}

// Valid reports whether t is a known notification type.
func (t Type) Valid() bool { return t < typeCount }

func (t Type) String() string {
	if !t.Valid() {
		return fmt.Sprintf("type(%d)", uint8(t))
	}
	return typeNames[t]
}

// MarshalText implements encoding.TextMarshaler so the stable snake_case
// name is used in JSON payloads and stored rows instead of the raw ordinal.
func (t Type) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, uint8(t))
	}
	return []byte(typeNames[t]), nil
}

func (t *Type) UnmarshalText(text []byte) error {
	for i, name := range typeNames {
		if name == string(text) {
			*t = Type(i)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownType, string(text))
}

// Severity is an ordered urgency scale. High and Critical are privileged:
// they force delivery through all channels and may bypass quiet hours.
type Severity uint8

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical

	severityCount
)

var severityNames = [severityCount]string{
	SeverityLow:      "low",
	SeverityMedium:   "medium",
	SeverityHigh:     "high",
	SeverityCritical: "critical",
}

// Valid reports whether s is a known severity level.
func (s Severity) Valid() bool { return s < severityCount }

func (s Severity) String() string {
	if !s.Valid() {
		return fmt.Sprintf("severity(%d)", uint8(s))
	}
	return severityNames[s]
}

func (s Severity) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSeverity, uint8(s))
	}
	return []byte(severityNames[s]), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	for i, name := range severityNames {
		if name == string(text) {
			*s = Severity(i)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownSeverity, string(text))
}

// DeliveryMethod identifies a delivery channel. The set is closed; the
// eligibility resolver never produces values outside it.
type DeliveryMethod uint8

const (
	MethodInApp DeliveryMethod = iota
	MethodEmail
	MethodSMS

	methodCount
)

var methodNames = [methodCount]string{
	MethodInApp: "in_app",
	MethodEmail: "email",
	MethodSMS:   "sms",
}

// AllDeliveryMethods returns the channels in fixed dispatch order.
func AllDeliveryMethods() []DeliveryMethod {
	return []DeliveryMethod{MethodInApp, MethodEmail, MethodSMS}
}

// Valid reports whether m is a known delivery method.
func (m DeliveryMethod) Valid() bool { return m < methodCount }

func (m DeliveryMethod) String() string {
	if !m.Valid() {
		return fmt.Sprintf("method(%d)", uint8(m))
	}
	return methodNames[m]
}

func (m DeliveryMethod) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMethod, uint8(m))
	}
	return []byte(methodNames[m]), nil
}

func (m *DeliveryMethod) UnmarshalText(text []byte) error {
	for i, name := range methodNames {
		if name == string(text) {
			*m = DeliveryMethod(i)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownMethod, string(text))
}

// Frequency controls whether a channel delivers immediately or accumulates
// into a periodic digest.
type Frequency string

const (
	FrequencyRealTime Frequency = "real_time"
	FrequencyDaily    Frequency = "daily"
	FrequencyWeekly   Frequency = "weekly"
)

// Valid reports whether f is a known delivery frequency.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyRealTime, FrequencyDaily, FrequencyWeekly:
		return true
	}
	return false
}

// Action represents a call-to-action button attached to a notification.
type Action struct {
	Label string `json:"label"`
	URL   string `json:"url"`
	Style string `json:"style,omitempty"` // primary, secondary, danger
}

// Content is the channel-agnostic payload of a notification. It is
// constructed once by the caller and consumed read-only by every dispatcher.
type Content struct {
	Title   string         `json:"title"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
	Actions []Action       `json:"actions,omitempty"`
}

// DeliveryResult records the outcome of one (recipient, channel) attempt.
// Dispatchers always return a value; absence of success is represented,
// never raised.
type DeliveryResult struct {
	Method    DeliveryMethod `json:"method"`
	Success   bool           `json:"success"`
	Timestamp time.Time      `json:"timestamp"`
	Error     string         `json:"error,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// MethodSet is a fixed-size channel set indexed by DeliveryMethod. Using an
// array instead of an open map keeps membership checks exhaustive at compile
// time.
type MethodSet [methodCount]bool

// NewMethodSet builds a set from the given methods. Unknown values are ignored.
func NewMethodSet(methods ...DeliveryMethod) MethodSet {
	var set MethodSet
	for _, m := range methods {
		if m.Valid() {
			set[m] = true
		}
	}
	return set
}

// AllMethods returns the set containing every delivery method.
func AllMethods() MethodSet {
	var set MethodSet
	for i := range set {
		set[i] = true
	}
	return set
}

// Has reports whether m is in the set.
func (s MethodSet) Has(m DeliveryMethod) bool {
	return m.Valid() && s[m]
}

// IsEmpty reports whether no method is in the set.
func (s MethodSet) IsEmpty() bool {
	for _, ok := range s {
		if ok {
			return false
		}
	}
	return true
}

// Methods returns the members in fixed dispatch order.
func (s MethodSet) Methods() []DeliveryMethod {
	var methods []DeliveryMethod
	for i, ok := range s {
		if ok {
			methods = append(methods, DeliveryMethod(i))
		}
	}
	return methods
}

// SeveritySet is a fixed-size severity set indexed by Severity.
type SeveritySet [severityCount]bool

// NewSeveritySet builds a set from the given severities. Unknown values are
// ignored.
func NewSeveritySet(severities ...Severity) SeveritySet {
	var set SeveritySet
	for _, s := range severities {
		if s.Valid() {
			set[s] = true
		}
	}
	return set
}

// Has reports whether sev is in the set.
func (s SeveritySet) Has(sev Severity) bool {
	return sev.Valid() && s[sev]
}
