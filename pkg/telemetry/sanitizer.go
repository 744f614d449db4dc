package telemetry

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

// PIILevel defines how much customer data may reach logs and traces.
type PIILevel string

const (
	// PIILevelNone redacts all customer content
	PIILevelNone PIILevel = "none"
	// PIILevelHashed replaces detected PII with salted hashes
	PIILevelHashed PIILevel = "hashed"
	// PIILevelFull performs no sanitization
	PIILevelFull PIILevel = "full"
)

// ParsePIILevel maps a config value onto a level, defaulting to hashed.
func ParsePIILevel(raw string) PIILevel {
	switch PIILevel(strings.ToLower(strings.TrimSpace(raw))) {
	case PIILevelNone:
		return PIILevelNone
	case PIILevelFull:
		return PIILevelFull
	default:
		return PIILevelHashed
	}
}

// Sanitizer masks customer PII (emails, phone numbers, card numbers,
// IP addresses) in free text before it is logged.
type Sanitizer struct {
	level PIILevel
	salt  string

	emailPattern      *regexp.Regexp
	phonePattern      *regexp.Regexp
	creditCardPattern *regexp.Regexp
	ipv4Pattern       *regexp.Regexp
}

// NewSanitizer creates a sanitizer. salt keeps hashes stable per deployment.
func NewSanitizer(level PIILevel, salt string) *Sanitizer {
	return &Sanitizer{
		level:             ParsePIILevel(string(level)),
		salt:              salt,
		emailPattern:      regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),
		phonePattern:      regexp.MustCompile(`\b\d{3}[-.\s]?\d{3}[-.\s]?\d{4}\b`),
		creditCardPattern: regexp.MustCompile(`\b\d{4}[- ]?\d{4}[- ]?\d{4}[- ]?\d{4}\b`),
		ipv4Pattern:       regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`),
	}
}

// Level returns the effective PII level.
func (s *Sanitizer) Level() PIILevel {
	return s.level
}

// Sanitize masks free text such as a theme prompt or a notice.
func (s *Sanitizer) Sanitize(input string) string {
	if input == "" {
		return ""
	}
	switch s.level {
	case PIILevelNone:
		return "[REDACTED]"
	case PIILevelFull:
		return input
	default:
		return s.hashPII(input)
	}
}

// SanitizeEmail keeps the domain of an address and hashes the mailbox.
func (s *Sanitizer) SanitizeEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return ""
	}
	switch s.level {
	case PIILevelNone:
		return "[EMAIL:REDACTED]"
	case PIILevelFull:
		return email
	}
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return fmt.Sprintf("[EMAIL:%s]", s.hash(email))
	}
	return fmt.Sprintf("%s@%s", s.hash(email[:at]), email[at+1:])
}

// SanitizeName reduces a customer name to its initials at the hashed level.
func (s *Sanitizer) SanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	switch s.level {
	case PIILevelNone:
		return "[REDACTED]"
	case PIILevelFull:
		return name
	}
	var b strings.Builder
	for _, part := range strings.Fields(name) {
		b.WriteString(strings.ToUpper(string([]rune(part)[0])))
		b.WriteByte('.')
	}
	return b.String()
}

// SanitizeAddress never logs a postal address in clear unless the level is full.
func (s *Sanitizer) SanitizeAddress(address string) string {
	address = strings.TrimSpace(address)
	if address == "" {
		return ""
	}
	switch s.level {
	case PIILevelFull:
		return address
	case PIILevelNone:
		return "[ADDRESS:REDACTED]"
	default:
		return fmt.Sprintf("[ADDRESS:%s]", s.hash(address))
	}
}

// SanitizeFields sanitizes every value of a map of log fields.
func (s *Sanitizer) SanitizeFields(fields map[string]string) map[string]string {
	if fields == nil {
		return nil
	}
	result := make(map[string]string, len(fields))
	for k, v := range fields {
		result[k] = s.Sanitize(v)
	}
	return result
}

// hashPII replaces detected PII with hashed tokens.
func (s *Sanitizer) hashPII(input string) string {
	result := s.emailPattern.ReplaceAllStringFunc(input, func(match string) string {
		return fmt.Sprintf("[EMAIL:%s]", s.hash(match))
	})

	// Cards before phones, a card number contains phone shaped runs.
	result = s.creditCardPattern.ReplaceAllStringFunc(result, func(string) string {
		return "[CC:REDACTED]"
	})

	result = s.phonePattern.ReplaceAllStringFunc(result, func(match string) string {
		return fmt.Sprintf("[PHONE:%s]", s.hash(match))
	})

	result = s.ipv4Pattern.ReplaceAllStringFunc(result, func(match string) string {
		return fmt.Sprintf("[IP:%s]", s.hash(match))
	})

	return result
}

// hash returns the first 8 hex chars of a salted SHA-256.
func (s *Sanitizer) hash(data string) string {
	h := sha256.New()
	h.Write([]byte(data + s.salt))
	return hex.EncodeToString(h.Sum(nil))[:8]
}
