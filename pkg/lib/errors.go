package lib

import (
	"errors"

	"github.com/slok/xferctl/internal/model"
)

var (
	// ErrNotFound is returned when a resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a resource already exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotValid is returned on invalid input.
	ErrNotValid = errors.New("not valid")
	// ErrUnknownEndpoint is returned when an endpoint name is not registered.
	ErrUnknownEndpoint = errors.New("unknown endpoint")
	// ErrEndpointNotActivated is returned when an endpoint needs activation before use.
	ErrEndpointNotActivated = errors.New("endpoint not activated")
)

var errorMappings = []struct {
	internal error
	public   error
}{
	{model.ErrUnknownEndpoint, ErrUnknownEndpoint},
	{model.ErrEndpointNotActivated, ErrEndpointNotActivated},
	{model.ErrNotFound, ErrNotFound},
	{model.ErrAlreadyExists, ErrAlreadyExists},
	{model.ErrNotValid, ErrNotValid},
}

func mapError(err error) error {
	if err == nil {
		return nil
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.internal) {
			return &mappedError{original: err, sentinel: m.public}
		}
	}

	return err
}

type mappedError struct {
	original error
	sentinel error
}

func (e *mappedError) Error() string { return e.original.Error() }

func (e *mappedError) Is(target error) bool { return target == e.sentinel }

func (e *mappedError) Unwrap() error { return e.original }
