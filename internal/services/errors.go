package services

import (
	"errors"

	"genzip/internal/repositories"
)

// Service-level errors. Handlers translate these into HTTP responses.
var (
	ErrNotFound            = repositories.ErrNotFound
	ErrInsufficientCredits = repositories.ErrInsufficientCredits

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrForbidden          = errors.New("not allowed for this account")
	ErrWeakPassword       = errors.New("password must be at least 8 characters and include upper and lower case letters, a digit and a symbol")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrMobileTaken        = errors.New("mobile number is already registered")
	ErrInvalidOTP         = errors.New("invalid or expired OTP")
	ErrTooManyAttempts    = errors.New("too many OTP attempts, try again later")
	ErrInvalidToken       = errors.New("invalid or expired token")

	ErrDuplicateInterview = errors.New("an open interview already exists for this candidate and job")
	ErrInterviewLocked    = errors.New("interview can no longer be changed")
	ErrInterviewConflict  = errors.New("interview is no longer available for this action")
	ErrPaymentRequired    = errors.New("interview payment is pending")
	ErrAlreadyPaid        = errors.New("interview is already paid")
	ErrUnknownAgent       = errors.New("field agent not found")
	ErrInvalidLocation    = errors.New("latitude or longitude out of range")

	ErrInvalidPlan         = errors.New("Invalid subscription plan selected")
	ErrPaymentNotVerified  = errors.New("payment could not be verified")
	ErrUnsupportedProvider = errors.New("payment provider not supported")
	ErrStorageUnavailable  = errors.New("file storage is not configured")
)
