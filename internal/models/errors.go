package models

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrDuplicate        = errors.New("already exists")
	ErrHouseUnavailable = errors.New("house is not available for booking")
)
