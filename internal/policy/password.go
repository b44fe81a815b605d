package policy

import (
	"strings"
)

// PersonalInfo carries the account attributes a password must not echo.
type PersonalInfo struct {
	FullName string
	Email    string
	Username string
}

const passwordSpecialSet = "!@#$%^&*()-_=+[]{};:'\",.<>/?`~|\\"

var commonPatterns = []string{
	"password", "123456", "qwerty", "admin", "welcome",
	"letmein", "iloveyou", "abc123", "passw0rd", "monkey",
	"dragon", "sunshine", "football",
}

var keyboardRows = []string{"qwertyuiop", "asdfghjkl", "zxcvbnm"}

// ValidatePassword applies the account password policy and returns every
// failed rule as a user-facing message. An empty slice means the password
// is acceptable.
func ValidatePassword(password string, info PersonalInfo) []string {
	var msgs []string

	if len(password) < 8 {
		msgs = append(msgs, "Password must be at least 8 characters long")
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(passwordSpecialSet, r):
			hasSpecial = true
		}
	}
	if !hasUpper {
		msgs = append(msgs, "Password must contain an uppercase letter")
	}
	if !hasLower {
		msgs = append(msgs, "Password must contain a lowercase letter")
	}
	if !hasDigit {
		msgs = append(msgs, "Password must contain a digit")
	}
	if !hasSpecial {
		msgs = append(msgs, "Password must contain a special character")
	}

	lower := strings.ToLower(password)
	for _, pattern := range commonPatterns {
		if strings.Contains(lower, pattern) {
			msgs = append(msgs, "Password must not contain a commonly used pattern")
			break
		}
	}

	if containsPersonalInfo(lower, info) {
		msgs = append(msgs, "Password must not contain your personal information")
	}

	if hasSequentialRun(lower, 4) || hasKeyboardRun(lower, 4) {
		msgs = append(msgs, "Password must not contain a sequential character run")
	}

	if hasRepeatRun(password, 4) {
		msgs = append(msgs, "Password must not repeat the same character 4 or more times")
	}

	return msgs
}

// containsPersonalInfo checks normalized fragments (3+ characters) of the
// user's full name, email local part, and username against the password.
func containsPersonalInfo(lowerPassword string, info PersonalInfo) bool {
	normalized := normalizeAlnum(lowerPassword)
	for _, fragment := range personalFragments(info) {
		if len(fragment) >= 3 && strings.Contains(normalized, fragment) {
			return true
		}
	}
	return false
}

func personalFragments(info PersonalInfo) []string {
	var fragments []string
	add := func(raw string) {
		for _, token := range splitAlnum(strings.ToLower(raw)) {
			if len(token) >= 3 {
				fragments = append(fragments, token)
			}
		}
	}
	add(info.FullName)
	add(info.Username)
	if at := strings.Index(info.Email, "@"); at > 0 {
		add(info.Email[:at])
	} else {
		add(info.Email)
	}
	return fragments
}

func normalizeAlnum(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func splitAlnum(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'))
	})
}

// hasSequentialRun detects windows of n strictly ascending or descending
// consecutive alphanumeric characters ("abcd", "4321").
func hasSequentialRun(lower string, n int) bool {
	runes := []rune(lower)
	if len(runes) < n {
		return false
	}
	for i := 0; i+n <= len(runes); i++ {
		asc, desc := true, true
		for j := 1; j < n; j++ {
			a, b := runes[i+j-1], runes[i+j]
			if !isAlnumRune(a) || !isAlnumRune(b) {
				asc, desc = false, false
				break
			}
			if b != a+1 {
				asc = false
			}
			if b != a-1 {
				desc = false
			}
		}
		if asc || desc {
			return true
		}
	}
	return false
}

func isAlnumRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

// hasKeyboardRun detects any n-character window of a keyboard row, in
// either direction.
func hasKeyboardRun(lower string, n int) bool {
	for _, row := range keyboardRows {
		for i := 0; i+n <= len(row); i++ {
			window := row[i : i+n]
			if strings.Contains(lower, window) || strings.Contains(lower, reverse(window)) {
				return true
			}
		}
	}
	return false
}

func reverse(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}

func hasRepeatRun(password string, n int) bool {
	count := 0
	var prev rune
	for i, r := range password {
		if i > 0 && r == prev {
			count++
			if count >= n-1 {
				return true
			}
		} else {
			count = 0
		}
		prev = r
	}
	return false
}
