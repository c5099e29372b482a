package state

import "strings"

// StateMarker is the literal delimiter the narrator places between story
// text and the trailing status block.
const StateMarker = "--- NOVEL STATE ---"

// ParseFooter extracts status fields from the trailing block of a narrative
// response. Text before the last marker is story content and ignored here.
// Recognized lines update Time and Condition; everything else is skipped.
// The parse is best-effort: a missing marker or malformed lines yield a zero
// value, never an error.
func ParseFooter(text string) WorldStatus {
	var ws WorldStatus
	idx := strings.LastIndex(text, StateMarker)
	if idx < 0 {
		return ws
	}

	footer := text[idx+len(StateMarker):]
	for _, line := range strings.Split(footer, "\n") {
		if i := strings.Index(line, "Time:"); i >= 0 {
			ws.Time = cleanFooterValue(line[i+len("Time:"):])
		}
		if i := strings.Index(line, "Condition:"); i >= 0 {
			value := line[i+len("Condition:"):]
			// The condition field is followed by further |-separated fields.
			if sep := strings.Index(value, "|"); sep >= 0 {
				value = value[:sep]
			}
			ws.Condition = cleanFooterValue(value)
		}
	}
	return ws
}

// cleanFooterValue strips surrounding whitespace and markdown bold markers.
func cleanFooterValue(s string) string {
	return strings.Trim(strings.TrimSpace(s), "* ")
}
