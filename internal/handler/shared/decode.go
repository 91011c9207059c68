package shared

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// DecoderConfig returns the default mapstructure decoder settings.
func DecoderConfig(result any) *mapstructure.DecoderConfig {
	return &mapstructure.DecoderConfig{
		Result:           result,
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	}
}

// Decode maps a loose payload onto a Go struct, returning an error
// instead of panicking on type mismatches.
func Decode(input map[string]any, result any) error {
	decoder, err := mapstructure.NewDecoder(DecoderConfig(result))
	if err != nil {
		return fmt.Errorf("new decoder: %w", err)
	}
	if err := decoder.Decode(input); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// DecodeStrict is Decode, but unknown fields are an error.
func DecodeStrict(input map[string]any, result any) error {
	cfg := DecoderConfig(result)
	cfg.ErrorUnused = true
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return fmt.Errorf("new decoder: %w", err)
	}
	if err := decoder.Decode(input); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
