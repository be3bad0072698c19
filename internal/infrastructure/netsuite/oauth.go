package netsuite

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Credentials is the fixed per-deployment OAuth 1.0a credential set for the
// ERP account. Absent credentials are a fatal configuration error at
// construction time, never a per-call error.
type Credentials struct {
	AccountID      string
	ConsumerKey    string
	ConsumerSecret string
	TokenID        string
	TokenSecret    string
}

// Errors for signer construction.
var (
	ErrMissingAccountID = errors.New("netsuite: account id is required")
	ErrMissingConsumer  = errors.New("netsuite: consumer key and secret are required")
	ErrMissingToken     = errors.New("netsuite: token id and secret are required")
)

// Validate checks the credential set is complete.
func (c Credentials) Validate() error {
	if c.AccountID == "" {
		return ErrMissingAccountID
	}
	if c.ConsumerKey == "" || c.ConsumerSecret == "" {
		return ErrMissingConsumer
	}
	if c.TokenID == "" || c.TokenSecret == "" {
		return ErrMissingToken
	}
	return nil
}

const signatureMethod = "HMAC-SHA256"

// Signer produces OAuth 1.0a Authorization header values for ERP requests.
// Each call uses a fresh nonce and timestamp, so values differ across calls.
// The nonce and clock are injectable for tests.
type Signer struct {
	creds Credentials
	nonce func() string
	now   func() time.Time
}

// NewSigner creates a signer, failing fast on incomplete credentials.
func NewSigner(creds Credentials) (*Signer, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	return &Signer{
		creds: creds,
		nonce: newNonce,
		now:   time.Now,
	}, nil
}

// AuthorizationHeader signs the given URL and HTTP method, returning a value
// usable directly as the Authorization header, including the realm parameter
// identifying the ERP account.
func (s *Signer) AuthorizationHeader(rawURL, method string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("netsuite: invalid request url: %w", err)
	}

	oauthParams := map[string]string{
		"oauth_consumer_key":     s.creds.ConsumerKey,
		"oauth_nonce":            s.nonce(),
		"oauth_signature_method": signatureMethod,
		"oauth_timestamp":        strconv.FormatInt(s.now().Unix(), 10),
		"oauth_token":            s.creds.TokenID,
		"oauth_version":          "1.0",
	}

	base := signatureBaseString(method, u, oauthParams)
	oauthParams["oauth_signature"] = s.sign(base)

	keys := make([]string, 0, len(oauthParams))
	for k := range oauthParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("OAuth ")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%q", percentEncode(k), percentEncode(oauthParams[k]))
	}
	fmt.Fprintf(&b, ", realm=%q", s.creds.AccountID)
	return b.String(), nil
}

// sign computes the base64 HMAC-SHA256 of the signature base string using the
// consumer and token secrets.
func (s *Signer) sign(base string) string {
	key := percentEncode(s.creds.ConsumerSecret) + "&" + percentEncode(s.creds.TokenSecret)
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(base))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// signatureBaseString builds the OAuth 1.0a signature base string for the
// request: METHOD & encoded base URL & encoded sorted parameter string. Query
// parameters of the URL participate alongside the oauth_* parameters.
func signatureBaseString(method string, u *url.URL, oauthParams map[string]string) string {
	pairs := make([][2]string, 0, len(oauthParams)+4)
	for k, v := range oauthParams {
		pairs = append(pairs, [2]string{percentEncode(k), percentEncode(v)})
	}
	for k, vs := range u.Query() {
		for _, v := range vs {
			pairs = append(pairs, [2]string{percentEncode(k), percentEncode(v)})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})

	var params strings.Builder
	for i, p := range pairs {
		if i > 0 {
			params.WriteByte('&')
		}
		params.WriteString(p[0])
		params.WriteByte('=')
		params.WriteString(p[1])
	}

	baseURL := u.Scheme + "://" + strings.ToLower(u.Host) + u.EscapedPath()
	return strings.ToUpper(method) + "&" + percentEncode(baseURL) + "&" + percentEncode(params.String())
}

// percentEncode applies the RFC 3986 encoding OAuth 1.0a requires: every byte
// outside the unreserved set becomes %XX with uppercase hex.
func percentEncode(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
		} else {
			b.WriteByte('%')
			b.WriteString(strings.ToUpper(hex.EncodeToString([]byte{c})))
		}
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	return c >= 'A' && c <= 'Z' ||
		c >= 'a' && c <= 'z' ||
		c >= '0' && c <= '9' ||
		c == '-' || c == '.' || c == '_' || c == '~'
}

// newNonce returns 16 random bytes hex encoded.
func newNonce() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing is unrecoverable in practice; fall back to a
		// timestamp so a request still goes out rather than panicking.
		return strconv.FormatInt(time.Now().UnixNano(), 16)
	}
	return hex.EncodeToString(b)
}
