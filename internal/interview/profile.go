package interview

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/crisphire/crisp/internal/oracle"
)

// profileFields lists the contact fields in collection order.
var profileFields = []string{"name", "email", "phone"}

// ValidationError rejects a single field submission; it never resets the
// session.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ValidateEmail requires an '@' at neither the first nor the last
// character position.
func ValidateEmail(s string) bool {
	i := strings.Index(s, "@")
	return i > 0 && i < len(s)-1
}

// ValidatePhone requires at least 10 digits once every non-digit
// character is stripped; the national number is the last 10 digits, so
// leading country codes are permitted.
func ValidatePhone(s string) bool {
	digits := 0
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			digits++
		}
	}
	return digits >= 10
}

// ValidateField checks one collected profile field value.
func ValidateField(field, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return &ValidationError{Field: field, Reason: "a value is required"}
	}

	switch field {
	case "email":
		if !ValidateEmail(value) {
			return &ValidationError{Field: field, Reason: `must contain "@" between other characters`}
		}
	case "phone":
		if !ValidatePhone(value) {
			return &ValidationError{Field: field, Reason: "must contain a 10-digit national number (country code allowed)"}
		}
	}

	return nil
}

// MissingFields returns the profile fields still empty after trimming,
// in collection order.
func MissingFields(p Profile) []string {
	values := map[string]string{
		"name":  p.Name,
		"email": p.Email,
		"phone": p.Phone,
	}

	var missing []string
	for _, f := range profileFields {
		if strings.TrimSpace(values[f]) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

func setProfileField(p *Profile, field, value string) {
	switch field {
	case "name":
		p.Name = value
	case "email":
		p.Email = value
	case "phone":
		p.Phone = value
	}
}

// ProfileExtractor asks the oracle for the candidate's contact details.
type ProfileExtractor struct {
	caller *oracle.Caller
	logger *zap.Logger
}

// NewProfileExtractor builds an extractor over the given caller.
func NewProfileExtractor(caller *oracle.Caller, logger *zap.Logger) *ProfileExtractor {
	return &ProfileExtractor{caller: caller, logger: logger}
}

// Extract returns the profile parsed from the oracle's JSON response.
// Any oracle or parse failure yields an all-empty profile and a warning;
// extraction never blocks the flow.
func (e *ProfileExtractor) Extract(ctx context.Context, resumeText string) Profile {
	raw, err := e.caller.Call(ctx, buildProfilePrompt(resumeText))
	if err != nil {
		e.logger.Warn("profile extraction failed, using empty profile", zap.Error(err))
		return Profile{}
	}

	var parsed struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	}
	if err := json.Unmarshal([]byte(stripJSONFences(raw)), &parsed); err != nil {
		e.logger.Warn("profile extraction returned malformed JSON, using empty profile", zap.Error(err))
		return Profile{}
	}

	return Profile{Name: parsed.Name, Email: parsed.Email, Phone: parsed.Phone}
}

// stripJSONFences removes a surrounding markdown code fence, which the
// oracle tends to wrap JSON payloads in.
func stripJSONFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
