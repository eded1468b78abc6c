package env

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestEnv(t *testing.T) {
	ctx := context.Background()

	t.Run("Get returns typed values", func(t *testing.T) {
		viper.Set("TEST_ENV_LIMIT", 3)
		defer viper.Set("TEST_ENV_LIMIT", nil)

		assert.Equal(t, 3, Get[int](ctx, "TEST_ENV_LIMIT"))
	})

	t.Run("Get converts values read from the environment", func(t *testing.T) {
		t.Setenv("TEST_ENV_PAGE_LIMIT", "5")
		t.Setenv("TEST_ENV_GUARD", "false")
		t.Setenv("TEST_ENV_TTL", "90s")
		t.Setenv("TEST_ENV_RATE", "0.25")
		viper.AutomaticEnv()

		assert.Equal(t, 5, Get[int](ctx, "TEST_ENV_PAGE_LIMIT"))
		guard, ok := GetIfExists[bool](ctx, "TEST_ENV_GUARD")
		assert.True(t, ok)
		assert.False(t, guard)
		assert.Equal(t, 90*time.Second, Get[time.Duration](ctx, "TEST_ENV_TTL"))
		assert.Equal(t, 0.25, Get[float64](ctx, "TEST_ENV_RATE"))
		assert.Equal(t, "5", Get[string](ctx, "TEST_ENV_PAGE_LIMIT"))
	})

	t.Run("Get returns zero value for unconvertible values", func(t *testing.T) {
		viper.Set("TEST_ENV_WRONG", "three")
		defer viper.Set("TEST_ENV_WRONG", nil)

		assert.Equal(t, 0, Get[int](ctx, "TEST_ENV_WRONG"))
	})

	t.Run("Get returns zero value for unsupported types", func(t *testing.T) {
		viper.Set("TEST_ENV_SLICE", "a,b")
		defer viper.Set("TEST_ENV_SLICE", nil)

		_, ok := GetIfExists[[]int](ctx, "TEST_ENV_SLICE")
		assert.False(t, ok)
	})

	t.Run("GetIfExists reports missing keys", func(t *testing.T) {
		_, ok := GetIfExists[string](ctx, "TEST_ENV_NEVER_SET")
		assert.False(t, ok)
	})

	t.Run("Validate checks the value of registered keys", func(t *testing.T) {
		RegisterValidation("TEST_ENV_REQUIRED", "required")
		RegisterValidation("TEST_ENV_REQUIRED", "required")
		defer func() {
			validatorsMu.Lock()
			delete(validators, "TEST_ENV_REQUIRED")
			validatorsMu.Unlock()
		}()

		err := Validate()
		if assert.Error(t, err) {
			assert.Contains(t, err.Error(), "TEST_ENV_REQUIRED")
		}

		viper.Set("TEST_ENV_REQUIRED", "set")
		defer viper.Set("TEST_ENV_REQUIRED", nil)
		assert.NoError(t, Validate())
		assert.Len(t, validators["TEST_ENV_REQUIRED"], 1)
	})

	t.Run("Validate only checks the named keys", func(t *testing.T) {
		RegisterValidation("TEST_ENV_NUMERIC", "required", "numeric")
		defer func() {
			validatorsMu.Lock()
			delete(validators, "TEST_ENV_NUMERIC")
			validatorsMu.Unlock()
		}()

		viper.Set("TEST_ENV_NUMERIC", "abc")
		defer viper.Set("TEST_ENV_NUMERIC", nil)

		assert.Error(t, Validate("TEST_ENV_NUMERIC"))
		assert.NoError(t, Validate("TEST_ENV_UNREGISTERED"))

		viper.Set("TEST_ENV_NUMERIC", "1001")
		assert.NoError(t, Validate("TEST_ENV_NUMERIC"))
	})
}
