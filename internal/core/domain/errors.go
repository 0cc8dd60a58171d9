package domain

import "errors"

var ErrProviderUnavailable = errors.New("weather provider unavailable")
var ErrProfileNotFound = errors.New("user profile not found")
var ErrProfileExists = errors.New("user profile already exists")
