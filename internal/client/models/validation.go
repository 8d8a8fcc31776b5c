package models

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/gophtasks/internal/common"
)

// Field limits enforced before a request is sent.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 2000
	MinPasswordLength    = 6
)

// ValidationError reports one invalid form field. It matches
// common.ErrValidation through errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error {
	return common.ErrValidation
}

// FieldErrors collects the validation errors of one form.
type FieldErrors []*ValidationError

func (fe FieldErrors) Error() string {
	msgs := make([]string, len(fe))
	for i, e := range fe {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

func (fe FieldErrors) Unwrap() []error {
	errs := make([]error, len(fe))
	for i, e := range fe {
		errs[i] = e
	}
	return errs
}

func (fe *FieldErrors) add(err error) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		*fe = append(*fe, ve)
	}
}

func (fe FieldErrors) err() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

// ValidateTitle requires a non-blank title of at most MaxTitleLength
// characters after trimming.
func ValidateTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return &ValidationError{Field: "title", Message: "Title is required"}
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return &ValidationError{Field: "title", Message: "Title must be 200 characters or less"}
	}
	return nil
}

func ValidateDescription(description string) error {
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return &ValidationError{Field: "description", Message: "Description must be 2000 characters or less"}
	}
	return nil
}

func validatePriority(p Priority) error {
	if !p.Valid() {
		return &ValidationError{Field: "priority", Message: "Priority must be low, medium or high"}
	}
	return nil
}

// ValidateEmail applies the same shape check the backend does.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return &ValidationError{Field: "email", Message: "Email is required"}
	}
	if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		return &ValidationError{Field: "email", Message: "Please enter a valid email address"}
	}
	return nil
}

// LoginForm is what the sign-in prompt collects.
type LoginForm struct {
	Email    string
	Password string
}

func (f LoginForm) Validate() error {
	var errs FieldErrors
	errs.add(ValidateEmail(f.Email))
	if f.Password == "" {
		errs.add(&ValidationError{Field: "password", Message: "Password is required"})
	}
	return errs.err()
}

// SignupForm is what the sign-up prompt collects.
type SignupForm struct {
	Email           string
	Password        string
	ConfirmPassword string
}

func (f SignupForm) Validate() error {
	var errs FieldErrors
	errs.add(ValidateEmail(f.Email))
	switch {
	case f.Password == "":
		errs.add(&ValidationError{Field: "password", Message: "Password is required"})
	case len(f.Password) < MinPasswordLength:
		errs.add(&ValidationError{Field: "password", Message: "Password must be at least 6 characters"})
	case f.Password != f.ConfirmPassword:
		errs.add(&ValidationError{Field: "confirm_password", Message: "Passwords do not match"})
	}
	return errs.err()
}
