package checkout

import "strings"

var friendlyMessages = []struct {
	match   func(lower string) bool
	message string
}{
	{
		match: func(s string) bool {
			return strings.Contains(s, "rate limit") || strings.Contains(s, "over_email_send_rate_limit") ||
				strings.Contains(s, "too many requests")
		},
		message: "Our system is experiencing high demand. Please wait a few minutes and try again, or contact us for help.",
	},
	{
		match: func(s string) bool {
			return strings.Contains(s, "user already registered") || strings.Contains(s, "already been registered")
		},
		message: "An account with this email already exists. Try signing in instead.",
	},
	{
		match: func(s string) bool {
			return strings.Contains(s, "password") && strings.Contains(s, "weak")
		},
		message: "Your password is too weak. Please use at least 8 characters with a mix of letters, numbers, and symbols.",
	},
	{
		match: func(s string) bool {
			return strings.Contains(s, "invalid email")
		},
		message: "Please enter a valid email address.",
	},
	{
		match: func(s string) bool {
			return strings.Contains(s, "network") || strings.Contains(s, "connection refused") ||
				strings.Contains(s, "no such host")
		},
		message: "Connection error. Please check your internet and try again.",
	},
}

// FriendlyMessage maps known provider errors to buyer-facing text and returns anything else verbatim.
func FriendlyMessage(message string) string {
	lower := strings.ToLower(message)
	for _, fm := range friendlyMessages {
		if fm.match(lower) {
			return fm.message
		}
	}
	return message
}
