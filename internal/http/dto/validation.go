package dto

import (
	"fmt"
	"net/url"
	"strings"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func ToMap(errs []ValidationError) map[string]string {
	result := make(map[string]string)
	for _, e := range errs {
		result[e.Field] = e.Message
	}
	return result
}

func ToResponse(errs []ValidationError) string {
	var msgs []string
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

func validateSourceURL(raw string) []ValidationError {
	var errs []ValidationError
	if raw == "" {
		errs = append(errs, ValidationError{Field: "url", Message: "is required"})
		return errs
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil || u.Host == "" {
		errs = append(errs, ValidationError{Field: "url", Message: "invalid URL format"})
		return errs
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, ValidationError{Field: "url", Message: "must be an http or https URL"})
	}
	return errs
}

func validateNonBlank(field string, val *string) []ValidationError {
	var errs []ValidationError
	if val != nil && strings.TrimSpace(*val) == "" {
		errs = append(errs, ValidationError{Field: field, Message: "must not be blank"})
	}
	return errs
}
