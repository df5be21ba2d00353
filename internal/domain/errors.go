package domain

import "errors"

var (
	ErrEmptyHistory       = errors.New("no order history")
	ErrGroupNotFound      = errors.New("mapping group not found")
	ErrDuplicateGroupName = errors.New("mapping group name already exists")
	ErrEmptyGroupName     = errors.New("mapping group name is empty")
	ErrEmptyVariation     = errors.New("variation is empty")
	ErrDuplicateVariation = errors.New("variation already exists in group")
)
