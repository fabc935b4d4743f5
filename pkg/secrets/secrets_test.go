package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "riskgate/pkg/domain-errors"
)

func TestGenerate(t *testing.T) {
	first, err := Generate()
	require.NoError(t, err)
	second, err := Generate()
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	// 32 bytes of entropy, base64url without padding.
	assert.Len(t, first, 43)
	assert.NotContains(t, first, "=")
}

func TestHashAndVerify(t *testing.T) {
	token, err := Generate()
	require.NoError(t, err)

	hash, err := Hash(token)
	require.NoError(t, err)
	assert.NotEqual(t, token, hash)

	assert.NoError(t, Verify(token, hash))

	err = Verify("wrong-token", hash)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestHashRejectsEmptyToken(t *testing.T) {
	_, err := Hash("")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestVerifyMalformedHash(t *testing.T) {
	err := Verify("token", "not-a-bcrypt-hash")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}
