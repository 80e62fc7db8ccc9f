package controllers

import (
	"strings"

	"github.com/google/uuid"
)

// isUUID reports whether s is a well-formed UUID.
func isUUID(s string) bool {
	_, err := uuid.Parse(strings.TrimSpace(s))
	return err == nil
}
