// Package validation provides input validation for the chisel CLI.
// This package has no dependencies to avoid import cycles.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// hashRegex matches abbreviated or full hex object names.
var hashRegex = regexp.MustCompile(`^[0-9a-f]{4,40}$`)

// ValidateHash validates that a commit hash is a plausible hex object name.
// Hashes are embedded in scratch file names and filter scripts, so anything
// that is not plain lowercase hex is rejected before it reaches a file path.
func ValidateHash(hash string) error {
	if hash == "" {
		return errors.New("commit hash cannot be empty")
	}
	if !hashRegex.MatchString(hash) {
		return fmt.Errorf("invalid commit hash %q: must be 4-40 lowercase hex characters", hash)
	}
	return nil
}

// ValidateSubject validates a replacement commit subject before any
// subprocess is invoked. Format rules beyond non-emptiness are left to
// the caller-supplied message validator.
func ValidateSubject(subject string) error {
	if strings.TrimSpace(subject) == "" {
		return errors.New("commit subject cannot be empty")
	}
	if strings.ContainsAny(subject, "\r\n") {
		return errors.New("commit subject cannot span multiple lines")
	}
	return nil
}
