package notify_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medbillhq/notifykit/pkg/notify"
)

func TestDefaultPreferences(t *testing.T) {
	t.Parallel()

	t.Run("deterministic across calls", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, notify.DefaultPreferences(), notify.DefaultPreferences())
	})

	t.Run("every type enabled with in-app", func(t *testing.T) {
		t.Parallel()

		prefs := notify.DefaultPreferences()
		for _, typ := range notify.AllTypes() {
			tp := prefs.TypePreference(typ)
			assert.True(t, tp.Configured, "type %s", typ)
			assert.True(t, tp.Enabled, "type %s", typ)
			assert.True(t, tp.Methods.Has(notify.MethodInApp), "type %s", typ)
		}
	})

	t.Run("deadline types also get email", func(t *testing.T) {
		t.Parallel()

		prefs := notify.DefaultPreferences()
		assert.True(t, prefs.TypePreference(notify.TypeFilingDeadline).Methods.Has(notify.MethodEmail))
		assert.True(t, prefs.TypePreference(notify.TypeAuthorizationExpiry).Methods.Has(notify.MethodEmail))
		assert.False(t, prefs.TypePreference(notify.TypeClaimStatus).Methods.Has(notify.MethodEmail))
	})

	t.Run("sms disabled by default", func(t *testing.T) {
		t.Parallel()

		prefs := notify.DefaultPreferences()
		mp := prefs.MethodPreference(notify.MethodSMS)
		assert.True(t, mp.Configured)
		assert.False(t, mp.Enabled)
	})

	t.Run("quiet hours off with critical bypass preset", func(t *testing.T) {
		t.Parallel()

		qh := notify.DefaultPreferences().QuietHours
		assert.False(t, qh.Enabled)
		assert.Equal(t, "22:00", qh.Start)
		assert.Equal(t, "08:00", qh.End)
		assert.True(t, qh.Bypass.Has(notify.SeverityCritical))
		assert.False(t, qh.Bypass.Has(notify.SeverityHigh))
	})
}

func TestMethodPreference_EffectiveFrequency(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		pref notify.MethodPreference
		want notify.Frequency
	}{
		{
			name: "unconfigured defaults to real time",
			pref: notify.MethodPreference{},
			want: notify.FrequencyRealTime,
		},
		{
			name: "configured daily",
			pref: notify.MethodPreference{Configured: true, Enabled: true, Frequency: notify.FrequencyDaily},
			want: notify.FrequencyDaily,
		},
		{
			name: "invalid value falls back to real time",
			pref: notify.MethodPreference{Configured: true, Enabled: true, Frequency: "hourly"},
			want: notify.FrequencyRealTime,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.pref.EffectiveFrequency())
		})
	}
}

func TestPreferences_Accessors(t *testing.T) {
	t.Parallel()

	var prefs notify.Preferences

	prefs.SetType(notify.TypeClaimStatus, true, notify.NewMethodSet(notify.MethodEmail))
	tp := prefs.TypePreference(notify.TypeClaimStatus)
	assert.True(t, tp.Configured)
	assert.True(t, tp.Enabled)
	assert.Equal(t, notify.NewMethodSet(notify.MethodEmail), tp.Methods)

	prefs.SetMethod(notify.MethodEmail, true, notify.FrequencyWeekly)
	mp := prefs.MethodPreference(notify.MethodEmail)
	assert.True(t, mp.Configured)
	assert.Equal(t, notify.FrequencyWeekly, mp.Frequency)

	// Out-of-range writes are dropped, out-of-range reads return the zero
	// value instead of panicking.
	prefs.SetType(notify.Type(200), true, notify.AllMethods())
	assert.Equal(t, notify.TypePreference{}, prefs.TypePreference(notify.Type(200)))
	assert.Equal(t, notify.MethodPreference{}, prefs.MethodPreference(notify.DeliveryMethod(200)))
}

func TestPreferences_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	prefs := notify.DefaultPreferences()
	prefs.SetMethod(notify.MethodEmail, true, notify.FrequencyDaily)
	prefs.QuietHours.Enabled = true
	prefs.QuietHours.Timezone = "America/New_York"

	raw, err := json.Marshal(prefs)
	require.NoError(t, err)

	var decoded notify.Preferences
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, prefs, decoded)
}
