package env

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/botshop/go-seabot/service/logger"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

var validators = map[string][]string{}

var v = validator.New()

var validatorsMu = &sync.Mutex{}

// RegisterValidation attaches validator tags (e.g. "required") to a config key. Tags are checked
// whenever the key is read and by Validate.
func RegisterValidation(name string, tags ...string) {
	validatorsMu.Lock()
	defer validatorsMu.Unlock()
	validators[name] = dedupe(append(validators[name], tags...))
}

// Validate checks the given keys, or every registered key when none are given, and returns one
// error naming all that failed.
func Validate(names ...string) error {
	if len(names) == 0 {
		validatorsMu.Lock()
		for name := range validators {
			names = append(names, name)
		}
		validatorsMu.Unlock()
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		if err := check(name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Get reads name as T. Values from the environment are strings, so common config types are
// converted the way viper converts them. The zero value is returned when name is unset.
func Get[T any](ctx context.Context, name string) T {
	it, _ := GetIfExists[T](ctx, name)
	return it
}

func GetIfExists[T any](ctx context.Context, name string) (T, bool) {
	if err := check(name); err != nil {
		logger.For(ctx).Errorf("invalid env var: %s", err)
	}

	var zero T
	if !viper.IsSet(name) {
		return zero, false
	}

	var raw any
	switch any(zero).(type) {
	case string:
		raw = viper.GetString(name)
	case int:
		raw = viper.GetInt(name)
	case int64:
		raw = viper.GetInt64(name)
	case bool:
		raw = viper.GetBool(name)
	case float64:
		raw = viper.GetFloat64(name)
	case time.Duration:
		raw = viper.GetDuration(name)
	default:
		raw = viper.Get(name)
	}

	it, ok := raw.(T)
	if !ok {
		logger.For(ctx).Errorf("invalid env var: %s, expected type: %T", name, zero)
		return zero, false
	}

	return it, true
}

// GetString reads name as a string, converting whatever type viper holds for it.
func GetString(ctx context.Context, name string) string {
	if err := check(name); err != nil {
		logger.For(ctx).Errorf("invalid env var: %s", err)
	}
	return viper.GetString(name)
}

func check(name string) error {
	validatorsMu.Lock()
	tags := append([]string(nil), validators[name]...)
	validatorsMu.Unlock()

	for _, tag := range tags {
		if err := v.Var(viper.GetString(name), tag); err != nil {
			return fmt.Errorf("%s failed %q", name, tag)
		}
	}
	return nil
}

func dedupe(src []string) []string {
	result := src[:0]

	seen := make(map[string]bool)
	for _, x := range src {
		if !seen[x] {
			result = append(result, x)
			seen[x] = true
		}
	}
	return result
}
