package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var nonDigits = regexp.MustCompile(`\D`)

// NormalizeDocNumber brings a passport number to the "#### ######" form (4 digit series,
// 6 digit number). Other document types are only trimmed. Blank input yields nil.
func NormalizeDocNumber(docType, docNumber *string) (*string, error) {
	if docNumber == nil {
		return nil, nil
	}
	v := strings.TrimSpace(*docNumber)
	if v == "" {
		return nil, nil
	}

	kind := ""
	if docType != nil {
		kind = strings.ToLower(strings.TrimSpace(*docType))
	}
	if kind != "" && !strings.Contains(kind, "passport") {
		return &v, nil
	}

	digits := nonDigits.ReplaceAllString(v, "")
	if len(digits) != 10 {
		return nil, fmt.Errorf("passport number must contain 10 digits (4 series + 6 number), e.g. '1234 567890'")
	}
	normalized := digits[:4] + " " + digits[4:]
	return &normalized, nil
}

// ValidateEmail validates email format
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}

	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}

	return nil
}

// SanitizeString removes dangerous characters from user input
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")
	return strings.TrimSpace(input)
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 50 // Default limit
	}
	if limit > 500 {
		return 500 // Max limit
	}
	return limit
}

// ValidateOffset validates pagination offset
func ValidateOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

// ValidateRequired validates that a field is not empty
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}
