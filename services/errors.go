package services

import (
	"errors"

	"github.com/wfunc/teenpatti-player/players"
)

var (
	ErrPlayerNotFound      = players.ErrPlayerNotFound
	ErrValidation          = errors.New("validation error")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrUpstreamUnavailable = errors.New("dealer unavailable")
)
