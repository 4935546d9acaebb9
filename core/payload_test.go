package core

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecSignVerify(t *testing.T) {
	t.Parallel()

	issued := time.Unix(1_700_000_000, 0)
	now := issued
	codec := NewCodec("secret", func() time.Time { return now })

	blob, err := codec.Sign("salt-a", map[string]any{"user_id": 42, "name": "ada"})
	require.NoError(t, err)
	assert.Len(t, strings.Split(blob, "."), 3)
	assert.NotContains(t, blob, "|")

	now = issued.Add(time.Hour)
	payload, issuedAt, err := codec.Verify("salt-a", blob, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"user_id": float64(42), "name": "ada"}, payload)
	assert.Equal(t, issued.Unix(), issuedAt.Unix())
}

func TestCodecVerifyRejectsOtherKeyMaterial(t *testing.T) {
	t.Parallel()

	now := func() time.Time { return time.Unix(1_700_000_000, 0) }
	blob, err := NewCodec("secret", now).Sign("salt-a", map[string]any{"a": 1})
	require.NoError(t, err)

	_, _, err = NewCodec("secret", now).Verify("salt-b", blob, nil)
	assert.ErrorIs(t, err, ErrInvalidSignature, "different salt")

	_, _, err = NewCodec("other-secret", now).Verify("salt-a", blob, nil)
	assert.ErrorIs(t, err, ErrInvalidSignature, "different secret")
}

func TestCodecMaxAge(t *testing.T) {
	t.Parallel()

	issued := time.Unix(1_700_000_000, 0)
	now := issued
	codec := NewCodec("secret", func() time.Time { return now })
	blob, err := codec.Sign("salt", map[string]any{"a": 1})
	require.NoError(t, err)

	maxAge := 30 * time.Second

	now = issued.Add(30 * time.Second)
	_, _, err = codec.Verify("salt", blob, &maxAge)
	assert.NoError(t, err)

	now = issued.Add(31 * time.Second)
	_, issuedAt, err := codec.Verify("salt", blob, &maxAge)
	assert.ErrorIs(t, err, ErrExpired)
	assert.Equal(t, issued.Unix(), issuedAt.Unix())

	_, _, err = codec.Verify("salt", blob, nil)
	assert.NoError(t, err, "no max age means no age check")
}

func TestCodecVerifyStructuralFailures(t *testing.T) {
	t.Parallel()

	codec := NewCodec("secret", nil)
	valid, err := codec.Sign("salt", map[string]any{"a": 1})
	require.NoError(t, err)
	parts := strings.Split(valid, ".")

	// A correctly signed blob whose payload is JSON null.
	signer, err := NewSigner("secret", "salt")
	require.NoError(t, err)
	nullValue := b64.EncodeToString([]byte("null")) + "." + parts[1]
	nullBlob := nullValue + "." + b64.EncodeToString(signer.Sign([]byte(nullValue)))

	tests := []struct {
		name string
		blob string
	}{
		{name: "empty", blob: ""},
		{name: "two segments", blob: parts[0] + "." + parts[1]},
		{name: "four segments", blob: valid + ".x"},
		{name: "bad base64 signature", blob: parts[0] + "." + parts[1] + ".!!!"},
		{name: "truncated signature", blob: parts[0] + "." + parts[1] + "." + parts[2][:10]},
		{name: "null payload", blob: nullBlob},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := codec.Verify("salt", tt.blob, nil)
			assert.ErrorIs(t, err, ErrInvalidSignature)
		})
	}
}

func TestTimestampEncoding(t *testing.T) {
	t.Parallel()

	for _, ts := range []int64{0, 1, 255, 256, 1_700_000_000, 1 << 40} {
		got, err := decodeTimestamp(encodeTimestamp(ts))
		require.NoError(t, err)
		assert.Equal(t, ts, got)
	}

	_, err := decodeTimestamp(nil)
	assert.ErrorIs(t, err, ErrInvalidSignature)
	_, err = decodeTimestamp(make([]byte, 9))
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestSignerDerivesPerSaltKeys(t *testing.T) {
	t.Parallel()

	a, err := NewSigner("secret", "salt-a")
	require.NoError(t, err)
	b, err := NewSigner("secret", "salt-b")
	require.NoError(t, err)

	data := []byte("payload")
	assert.NotEqual(t, a.Sign(data), b.Sign(data))
	assert.True(t, a.Verify(data, a.Sign(data)))
	assert.False(t, a.Verify(data, b.Sign(data)))
}
