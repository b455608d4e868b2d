package services

import "errors"

var (
	ErrUnknown             = errors.New("[service]: unknown error")
	ErrInvalidInput        = errors.New("[service]: invalid input")
	ErrNotFound            = errors.New("[service]: record not found")
	ErrDeactivated         = errors.New("[service]: link deactivated")
	ErrDuplicateCode       = errors.New("[service]: duplicate short code")
	ErrAllocationExhausted = errors.New("[service]: short code allocation attempts exhausted")
)
