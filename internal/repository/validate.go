package repository

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/alexanderramin/nodestore/internal/domain"
)

// Field limits, counted in characters.
const (
	MaxNameLen        = 100
	MaxTypeLen        = 50
	MaxDescriptionLen = 500
)

// ValidateNode checks the caller-controlled fields of n. It returns a
// KindValidation *Error describing the first violation.
func ValidateNode(n *domain.Node) error {
	const op = "validate node"
	if n == nil {
		return validationError(op, "node required")
	}
	if msg := ValidateName(n.Name); msg != "" {
		return validationError(op, msg)
	}
	if msg := ValidateType(n.Type); msg != "" {
		return validationError(op, msg)
	}
	if n.Description != nil {
		if msg := ValidateDescription(*n.Description); msg != "" {
			return validationError(op, msg)
		}
	}
	if n.Properties != nil {
		if msg := ValidateProperties(*n.Properties); msg != "" {
			return validationError(op, msg)
		}
	}
	return nil
}

// ValidateName returns a violation message, or "" when name is acceptable.
func ValidateName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "name required"
	}
	if utf8.RuneCountInString(name) > MaxNameLen {
		return "name too long"
	}
	return ""
}

// ValidateType returns a violation message, or "" when typ is acceptable.
func ValidateType(typ string) string {
	if strings.TrimSpace(typ) == "" {
		return "type required"
	}
	if utf8.RuneCountInString(typ) > MaxTypeLen {
		return "type too long"
	}
	return ""
}

// ValidateDescription returns a violation message, or "".
func ValidateDescription(desc string) string {
	if utf8.RuneCountInString(desc) > MaxDescriptionLen {
		return "description too long"
	}
	return ""
}

// ValidateProperties accepts blank text or a JSON object or array.
func ValidateProperties(props string) string {
	trimmed := strings.TrimSpace(props)
	if trimmed == "" {
		return ""
	}
	if trimmed[0] != '{' && trimmed[0] != '[' {
		return "invalid JSON: properties must be an object or array"
	}
	if !json.Valid([]byte(trimmed)) {
		return "invalid JSON"
	}
	return ""
}

func validateOperator(op, operator string) error {
	if strings.TrimSpace(operator) == "" {
		return validationError(op, "operator required")
	}
	return nil
}
