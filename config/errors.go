package config

import "errors"

var (
	ErrSymbolCountOutOfRange = errors.New("config: symbols must be between 2 and 256")
	ErrSymbolsNotPowerOfTwo  = errors.New("config: symbols must be a power of two")
	ErrAttenuationTooLow     = errors.New("config: attenuation must be >= 1")
	ErrUnknownPTTBackend     = errors.New("config: unknown ptt backend")
)
