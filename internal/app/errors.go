package app

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredential  = errors.New("invalid email or password")
	ErrUnauthenticated    = errors.New("not signed in")
	ErrForbidden          = errors.New("action not allowed for this role")
	ErrNotFound           = errors.New("record not found")
	ErrNoStudentSelected  = errors.New("no student selected")
	ErrOnboardingRequired = errors.New("profile must be completed first")
	ErrStaleView          = errors.New("viewed student changed during load")
	ErrFileTooLarge       = errors.New("file too large")
	ErrUploadFailed       = errors.New("document upload failed")
	ErrSpeechUnsupported  = errors.New("speech recognition is not supported by this browser")
	ErrVoiceState         = errors.New("voice assistant is not in the right step")
)
