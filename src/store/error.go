package store

import (
	"errors"
	"fmt"
)

var (
	ErrNotInitialized = errors.New("client is not initialized for signing")
	ErrFailedToParse  = errors.New("failed to parse response")
	ErrIdEmpty        = errors.New("node response has empty id")
	ErrNotFound       = errors.New("data not found")
	ErrNoNodeUrls     = errors.New("no bundler node urls configured")
)

// Signing account cannot cover the storage fee
type InsufficientBalanceError struct {
	Required  string
	Available string
}

func (self *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: required %s, available %s", self.Required, self.Available)
}

// Submission rejected or failed on the wire
type UploadError struct {
	Reason string
	Err    error
}

func (self *UploadError) Error() string {
	if self.Err != nil {
		return fmt.Sprintf("upload failed: %s: %s", self.Reason, self.Err)
	}
	return fmt.Sprintf("upload failed: %s", self.Reason)
}

func (self *UploadError) Unwrap() error {
	return self.Err
}
