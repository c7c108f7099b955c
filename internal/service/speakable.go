package service

import (
	"regexp"
	"strings"
)

// SpeakableIdentifier spells an identifier like a license plate for
// text-to-speech: "KA-10-QR-3456" becomes
// "K A dash 1 0 dash Q R dash 3 4 5 6".
func SpeakableIdentifier(identifier string) string {
	if identifier == "" {
		return ""
	}
	var parts []string
	for _, segment := range strings.Split(identifier, "-") {
		cleaned := strings.TrimSpace(segment)
		if cleaned == "" {
			continue
		}
		chars := strings.Split(strings.ToUpper(cleaned), "")
		parts = append(parts, strings.Join(chars, " "))
	}
	return strings.Join(parts, " dash ")
}

var tripStatusPattern = regexp.MustCompile(
	`^Trip '(.+?)': Status: ([^,]+), Booking: ([\d.]+)%` +
		`(?:, Vehicle: ([^,]+))?` +
		`(?:, Driver: (.+))?`)

// formatTripStatus reshapes the canonical get_trip_status output into
// natural sentences for speech. Unrecognized input passes through.
func formatTripStatus(raw string) string {
	text := strings.TrimSpace(raw)
	m := tripStatusPattern.FindStringSubmatch(text)
	if m == nil {
		return text
	}
	tripName, status, booking, vehicle, driver := m[1], strings.TrimSpace(m[2]), strings.TrimSpace(m[3]), m[4], m[5]

	booking = strings.TrimSuffix(booking, ".0")

	parts := []string{
		"The " + tripName + " trip is currently " + status + ".",
		"It's " + booking + " percent booked.",
	}

	if hasValue(vehicle) {
		parts = append(parts, "The assigned vehicle is "+SpeakableIdentifier(vehicle)+".")
	} else {
		parts = append(parts, "There is no vehicle assigned right now.")
	}
	if hasValue(driver) {
		parts = append(parts, "The driver on duty is "+driver+".")
	} else {
		parts = append(parts, "No driver has been assigned yet.")
	}
	return strings.Join(parts, " ")
}

func hasValue(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "null", "n/a":
		return false
	}
	return true
}

// formatToolOutput post-processes a tool result into speech-friendly
// language. Error text passes through untouched.
func formatToolOutput(toolName, raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(strings.ToLower(text), "error") {
		return text
	}
	if toolName == "get_trip_status" {
		return formatTripStatus(text)
	}
	return text
}
