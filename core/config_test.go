package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tunaaoguzhann/limited-time-token/core"
)

func TestLoadOptions(t *testing.T) {
	t.Run("reads SECRET_KEY", func(t *testing.T) {
		t.Setenv("SECRET_KEY", "from-env")

		opts, err := core.LoadOptions()
		require.NoError(t, err)
		assert.Equal(t, "from-env", opts.SecretKey)

		cfg := opts.Config()
		cfg.Logger = discardLogger()
		gen, err := core.NewGenerator(cfg)
		require.NoError(t, err)
		token, err := gen.Generate(map[string]any{"a": 1}, time.Minute)
		require.NoError(t, err)

		dec, err := core.NewDecoder(cfg, token)
		require.NoError(t, err)
		assert.True(t, dec.IsValid())
	})

	t.Run("missing SECRET_KEY fails at construction", func(t *testing.T) {
		t.Setenv("SECRET_KEY", "")

		opts, err := core.LoadOptions()
		require.NoError(t, err)

		cfg := opts.Config()
		cfg.Logger = discardLogger()

		_, err = core.NewGenerator(cfg)
		assert.ErrorIs(t, err, core.ErrConfiguration)
		_, err = core.NewDecoder(cfg, "blob|salt")
		assert.ErrorIs(t, err, core.ErrConfiguration)
	})
}

func TestKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "expired", core.KindExpired.String())
	assert.Equal(t, "invalid_signature", core.KindInvalidSignature.String())
	assert.Equal(t, "malformed", core.KindMalformed.String())
	assert.Equal(t, "unknown", core.KindOf(assert.AnError).String())
}
