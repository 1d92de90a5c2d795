package cliconfig

import (
	"fmt"
	"strconv"
	"time"
)

// configSetter writes one configuration layer (file or environment) over
// the defaults. Values for flags set on the command line are skipped, and
// so are empty strings and non-positive numbers, which mean "not set".
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

func (s *configSetter) owns(flag string) bool {
	return !s.changed[flag]
}

func (s *configSetter) setString(flag, value string, dst *string) {
	if value != "" && s.owns(flag) {
		*dst = value
	}
}

func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value > 0 && s.owns(flag) {
		*dst = value
	}
}

func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value != nil && s.owns(flag) {
		*dst = *value
	}
}

// setParsed runs parse on a non-empty raw value and stores the result.
// Parse errors name the flag the value would have overridden.
func setParsed[T any](s *configSetter, flag, raw string, dst *T, parse func(string) (T, bool, error)) error {
	if raw == "" || !s.owns(flag) {
		return nil
	}
	v, ok, err := parse(raw)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if ok {
		*dst = v
	}
	return nil
}

func (s *configSetter) setDuration(flag, raw string, dst *time.Duration) error {
	return setParsed(s, flag, raw, dst, func(v string) (time.Duration, bool, error) {
		d, err := time.ParseDuration(v)
		return d, err == nil, err
	})
}

// setIntFromString ignores non-positive values like setInt.
func (s *configSetter) setIntFromString(flag, raw string, dst *int) error {
	return setParsed(s, flag, raw, dst, func(v string) (int, bool, error) {
		i, err := strconv.Atoi(v)
		return i, err == nil && i > 0, err
	})
}

// setBoolFromString accepts the forms strconv.ParseBool does (1, t, true,
// 0, f, false, ...).
func (s *configSetter) setBoolFromString(flag, raw string, dst *bool) error {
	return setParsed(s, flag, raw, dst, func(v string) (bool, bool, error) {
		b, err := strconv.ParseBool(v)
		return b, err == nil, err
	})
}
