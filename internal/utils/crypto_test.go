package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealOpenRoundTrip(t *testing.T) {
	sealed, err := SealString("secret", "sk-test-key")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "sk-test-key")

	plain, err := OpenString("secret", sealed)
	require.NoError(t, err)
	assert.Equal(t, "sk-test-key", plain)
}

func TestSealProducesFreshNonce(t *testing.T) {
	a, err := SealString("secret", "same")
	require.NoError(t, err)
	b, err := SealString("secret", "same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestOpenWrongSecret(t *testing.T) {
	sealed, err := SealString("secret", "value")
	require.NoError(t, err)

	_, err = OpenString("other", sealed)
	assert.Error(t, err)
}

func TestSealEmptySecret(t *testing.T) {
	_, err := SealString("", "value")
	assert.Error(t, err)

	_, err = OpenString("", "whatever")
	assert.Error(t, err)
}

func TestOpenGarbage(t *testing.T) {
	_, err := OpenString("secret", "not base64!!")
	assert.Error(t, err)

	_, err = OpenString("secret", "c2hvcnQ=")
	assert.Error(t, err)
}
