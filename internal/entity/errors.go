package entity

import "errors"

var (
	// ErrInvalidInput is returned when the image payload fails validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrSessionLaunch is returned when a browser session can't be created.
	ErrSessionLaunch = errors.New("browser session launch failed")
	// ErrElementNotFound is returned when a required element never became visible.
	ErrElementNotFound = errors.New("element not found")
	// ErrNavigation is returned when a page navigation failed or timed out.
	ErrNavigation = errors.New("navigation failed")
	// ErrInputInjection is returned when a value could not be written into an element.
	ErrInputInjection = errors.New("input injection failed")
)
