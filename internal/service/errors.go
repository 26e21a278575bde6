package service

import (
	"github.com/pkg/errors"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrRelationNotFound = errors.New("relation does not exist")
	ErrSelfSubscription = errors.New("cannot subscribe to yourself")
	ErrForbidden        = errors.New("operation is not allowed for this user")

	ErrEmptyIngredientList = errors.New("at least one ingredient is required")
	ErrDuplicateIngredient = errors.New("ingredients must not repeat")
	ErrInvalidAmount       = errors.New("ingredient amount must be greater than zero")
	ErrUnknownIngredient   = errors.New("unknown ingredient")
	ErrDuplicateTag        = errors.New("tags must not repeat")
	ErrUnknownTag          = errors.New("unknown tag")
	ErrInvalidCookingTime  = errors.New("cooking time must be greater than zero")
	ErrInvalidImage        = errors.New("image must be a base64 data URI")

	ErrLoginUserNotFound         = errors.New("user not found")
	ErrLoginPasswordDoesNotMatch = errors.New("password does not match")

	ErrMediaStorage = errors.New("media storage failure")
)
