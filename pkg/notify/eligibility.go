package notify

// EligibleChannels computes the set of delivery methods a notification should
// attempt for one recipient.
//
// High and Critical severities force delivery through every channel,
// ignoring per-type settings entirely. Below that, the type must be enabled
// (unconfigured types fall open to in-app only) and each of its channels must
// also be enabled at the user's global method level.
//
// The function is deterministic and side-effect free; bulk fan-out relies on
// identical inputs grouping identically.
func EligibleChannels(prefs Preferences, t Type, severity Severity) MethodSet {
	if severity >= SeverityHigh {
		return AllMethods()
	}

	tp := prefs.TypePreference(t)
	if !tp.Configured {
		tp = TypePreference{Enabled: true, Methods: NewMethodSet(MethodInApp)}
	}
	if !tp.Enabled {
		return MethodSet{}
	}

	var eligible MethodSet
	for _, m := range AllDeliveryMethods() {
		if tp.Methods.Has(m) && prefs.MethodPreference(m).effectiveEnabled() {
			eligible[m] = true
		}
	}
	return eligible
}
