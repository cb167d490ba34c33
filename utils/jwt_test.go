package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndExtractOrg(t *testing.T) {
	token, err := GenerateToken("svc-account", "org-42", time.Hour)
	require.NoError(t, err)

	org, err := ExtractOrgFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, "org-42", org)
}

func TestExtractOrgFromExpiredToken(t *testing.T) {
	token, err := GenerateToken("svc-account", "org-42", -time.Minute)
	require.NoError(t, err)

	_, err = ExtractOrgFromToken(token)
	assert.Error(t, err)
}

func TestExtractOrgFromGarbageToken(t *testing.T) {
	_, err := ExtractOrgFromToken("not.a.jwt")
	assert.Error(t, err)
}

func TestExtractOrgMissingClaim(t *testing.T) {
	token, err := GenerateToken("svc-account", "", time.Hour)
	require.NoError(t, err)

	_, err = ExtractOrgFromToken(token)
	assert.Error(t, err)
}
