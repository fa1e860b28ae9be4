package notify

import (
	"strconv"
	"strings"
	"time"
)

// QuietHoursSuppressed reports whether a notification of the given severity
// should be held because now falls inside the user's quiet-hours window.
//
// The instant is converted to wall-clock minutes in the configured IANA zone,
// so DST transitions are handled by the zone database rather than a fixed
// offset. A window with Start >= End wraps midnight: 22:00-08:00 suppresses
// 23:30 and 07:59 but not 09:00. Severities in the bypass set are never
// suppressed.
//
// The function is pure; callers inject now to make window tests deterministic.
// Malformed zone names or HH:MM values disable suppression rather than hold
// deliveries hostage to a bad preference row.
func QuietHoursSuppressed(qh QuietHours, severity Severity, now time.Time) bool {
	if !qh.Enabled {
		return false
	}
	if qh.Bypass.Has(severity) {
		return false
	}

	start, ok := parseClockMinutes(qh.Start)
	if !ok {
		return false
	}
	end, ok := parseClockMinutes(qh.End)
	if !ok {
		return false
	}

	loc, err := time.LoadLocation(qh.Timezone)
	if err != nil {
		return false
	}

	local := now.In(loc)
	minutes := local.Hour()*60 + local.Minute()

	if start < end {
		return minutes >= start && minutes < end
	}
	// Window wraps midnight (covers Start == End as always-on).
	return minutes >= start || minutes < end
}

// parseClockMinutes converts "HH:MM" to minutes since midnight.
func parseClockMinutes(s string) (int, bool) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, false
	}
	hours, err := strconv.Atoi(hh)
	if err != nil || hours < 0 || hours > 23 {
		return 0, false
	}
	mins, err := strconv.Atoi(mm)
	if err != nil || mins < 0 || mins > 59 {
		return 0, false
	}
	return hours*60 + mins, true
}
