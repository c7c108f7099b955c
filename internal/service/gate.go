package service

import "strings"

// replyKind classifies the user's answer to a pending confirmation.
type replyKind int

const (
	replyAmbiguous replyKind = iota
	replyAffirmative
	replyNegative
)

// Fixed reply vocabulary. Anything outside both sets is ambiguous and
// re-prompts without consuming the pending call.
var (
	affirmativeReplies = map[string]struct{}{
		"yes": {}, "y": {}, "yeah": {}, "confirm": {},
		"proceed": {}, "ok": {}, "okay": {}, "sure": {},
	}
	negativeReplies = map[string]struct{}{
		"no": {}, "n": {}, "nope": {},
		"cancel": {}, "abort": {}, "stop": {},
	}
)

// classifyReply matches the lowercased, trimmed, punctuation-stripped reply
// against the confirmation vocabulary.
func classifyReply(text string) replyKind {
	normalized := normalizeReply(text)
	if _, ok := affirmativeReplies[normalized]; ok {
		return replyAffirmative
	}
	if _, ok := negativeReplies[normalized]; ok {
		return replyNegative
	}
	return replyAmbiguous
}

func normalizeReply(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(text)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ':
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// User-facing confirmation gate messages.
const (
	cancelledMessage = "✋ Action cancelled\n\nThe operation was not performed. How else can I help you?"

	clarifyMessage = "I didn't understand your response. Please reply with:\n" +
		"• 'yes' to proceed with the action\n" +
		"• 'no' to cancel"

	expiredMessage = "The pending action expired without a confirmation, so nothing was changed. " +
		"Please ask again if you still want to proceed."
)
