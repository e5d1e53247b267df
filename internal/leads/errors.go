package leads

import "errors"

var (
	// ErrNoPhones means a contact entry carried no usable phone number.
	ErrNoPhones = errors.New("leads: contact has no usable phone number")
	// ErrExhausted means every candidate phone for a lead has been tried.
	ErrExhausted = errors.New("leads: candidate phones exhausted")
)
