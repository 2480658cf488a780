package service

import (
	"errors"
	"fmt"
)

// Categorías de error que los handlers traducen a códigos HTTP.
var (
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")
	ErrNotFound   = errors.New("not found")
)

// Errores concretos; cada uno envuelve su categoría.
var (
	ErrMissingFields      = fmt.Errorf("%w: required fields missing", ErrValidation)
	ErrPasswordMismatch   = fmt.Errorf("%w: new passwords do not match", ErrValidation)
	ErrCredentialsMissing = fmt.Errorf("%w: authentication details are missing", ErrValidation)
	ErrMemberExists       = fmt.Errorf("%w: member already exists", ErrConflict)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrForbidden)
	ErrWrongPassword      = fmt.Errorf("%w: current password is incorrect", ErrForbidden)
	ErrMemberNotFound     = fmt.Errorf("%w: member not found", ErrNotFound)
	ErrBrandNotFound      = fmt.Errorf("%w: brand not found", ErrNotFound)
	ErrWatchNotFound      = fmt.Errorf("%w: watch not found", ErrNotFound)
	ErrCommentNotFound    = fmt.Errorf("%w: comment not found", ErrNotFound)
	ErrBrandHasWatches    = fmt.Errorf("%w: cannot delete brand with watches", ErrValidation)
	ErrAdminCannotComment = fmt.Errorf("%w: admins cannot comment", ErrForbidden)
	ErrAlreadyCommented   = fmt.Errorf("%w: user has already commented on this watch", ErrValidation)
	ErrNotCommentAuthor   = fmt.Errorf("%w: not the comment author", ErrForbidden)
	ErrInvalidRating      = fmt.Errorf("%w: rating must be between 1 and 3", ErrValidation)
	ErrFederatedProfile   = fmt.Errorf("%w: federated profile incomplete", ErrValidation)
	ErrUnknownBrand       = fmt.Errorf("%w: brand does not exist", ErrValidation)
	ErrAdminOnlyField     = fmt.Errorf("%w: only admins can change isAdmin", ErrForbidden)
	ErrInvalidYOB         = fmt.Errorf("%w: YOB must be a positive year", ErrValidation)
)
