package diag

// Severity orders diagnostics; the reader itself only emits errors, the
// driver adds warnings for cache trouble.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

var severityNames = [...]struct{ text, sarif string }{
	SevInfo:    {"INFO", "note"},
	SevWarning: {"WARNING", "warning"},
	SevError:   {"ERROR", "error"},
}

func (s Severity) String() string {
	if int(s) < len(severityNames) {
		return severityNames[s].text
	}
	return "UNKNOWN"
}

// SarifLevel maps s onto the SARIF result levels.
func (s Severity) SarifLevel() string {
	if int(s) < len(severityNames) {
		return severityNames[s].sarif
	}
	return "none"
}

// MarshalText makes severities print by name in JSON.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
