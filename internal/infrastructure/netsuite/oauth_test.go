package netsuite

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCredentials() Credentials {
	return Credentials{
		AccountID:      "1234567",
		ConsumerKey:    "consumer-key",
		ConsumerSecret: "consumer-secret",
		TokenID:        "token-id",
		TokenSecret:    "token-secret",
	}
}

func fixedSigner(t *testing.T) *Signer {
	t.Helper()
	s, err := NewSigner(testCredentials())
	require.NoError(t, err)
	s.nonce = func() string { return "fixednonce123456" }
	s.now = func() time.Time { return time.Unix(1700000000, 0) }
	return s
}

func TestCredentialsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Credentials)
		wantErr error
	}{
		{"complete", func(c *Credentials) {}, nil},
		{"missing account", func(c *Credentials) { c.AccountID = "" }, ErrMissingAccountID},
		{"missing consumer key", func(c *Credentials) { c.ConsumerKey = "" }, ErrMissingConsumer},
		{"missing consumer secret", func(c *Credentials) { c.ConsumerSecret = "" }, ErrMissingConsumer},
		{"missing token id", func(c *Credentials) { c.TokenID = "" }, ErrMissingToken},
		{"missing token secret", func(c *Credentials) { c.TokenSecret = "" }, ErrMissingToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creds := testCredentials()
			tt.mutate(&creds)
			err := creds.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestNewSignerRejectsIncompleteCredentials(t *testing.T) {
	_, err := NewSigner(Credentials{})
	assert.ErrorIs(t, err, ErrMissingAccountID)
}

func TestAuthorizationHeaderShape(t *testing.T) {
	s := fixedSigner(t)

	header, err := s.AuthorizationHeader("https://1234567.suitetalk.api.netsuite.com/services/rest/record/v1/salesOrder", "GET")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(header, "OAuth "))
	assert.Contains(t, header, `oauth_consumer_key="consumer-key"`)
	assert.Contains(t, header, `oauth_token="token-id"`)
	assert.Contains(t, header, `oauth_signature_method="HMAC-SHA256"`)
	assert.Contains(t, header, `oauth_version="1.0"`)
	assert.Contains(t, header, `oauth_timestamp="1700000000"`)
	assert.Contains(t, header, `oauth_nonce="fixednonce123456"`)
	assert.Contains(t, header, `oauth_signature="`)
	assert.True(t, strings.HasSuffix(header, `realm="1234567"`))
}

func TestAuthorizationHeaderDeterministic(t *testing.T) {
	url := "https://1234567.suitetalk.api.netsuite.com/services/rest/record/v1/salesOrder?limit=1&q=tranid+IS+%22SO1%22"

	a, err := fixedSigner(t).AuthorizationHeader(url, "GET")
	require.NoError(t, err)
	b, err := fixedSigner(t).AuthorizationHeader(url, "GET")
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestAuthorizationHeaderVariesWithRequest(t *testing.T) {
	base := "https://1234567.suitetalk.api.netsuite.com/services/rest/record/v1/salesOrder"

	plain, err := fixedSigner(t).AuthorizationHeader(base, "GET")
	require.NoError(t, err)
	withQuery, err := fixedSigner(t).AuthorizationHeader(base+"?limit=1", "GET")
	require.NoError(t, err)
	patched, err := fixedSigner(t).AuthorizationHeader(base, "PATCH")
	require.NoError(t, err)

	assert.NotEqual(t, signatureOf(t, plain), signatureOf(t, withQuery))
	assert.NotEqual(t, signatureOf(t, plain), signatureOf(t, patched))
}

func signatureOf(t *testing.T, header string) string {
	t.Helper()
	_, after, found := strings.Cut(header, `oauth_signature="`)
	require.True(t, found)
	sig, _, found := strings.Cut(after, `"`)
	require.True(t, found)
	return sig
}

func TestPercentEncode(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"abcXYZ019", "abcXYZ019"},
		{"-._~", "-._~"},
		{"a b", "a%20b"},
		{"a+b", "a%2Bb"},
		{`tranid IS "SO1"`, "tranid%20IS%20%22SO1%22"},
		{"https://x.com/a", "https%3A%2F%2Fx.com%2Fa"},
		{"&=*", "%26%3D%2A"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, percentEncode(tt.in), "input %q", tt.in)
	}
}
