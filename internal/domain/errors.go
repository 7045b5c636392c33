package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrValidation          = errors.New("validation failed")
	ErrInvalidState        = errors.New("invalid state")
	ErrDuplicateName       = errors.New("duplicate project name")
	ErrProjectClosed       = errors.New("project is closed")
	ErrAlreadyInvested     = errors.New("project already has investments")
	ErrAmountBelowInvested = errors.New("full amount below invested amount")
)
