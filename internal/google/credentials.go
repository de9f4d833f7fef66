package google

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Environment variables recognized for credential loading, in precedence
// order.
const (
	EnvServiceAccountBase64 = "GOOGLE_SERVICE_ACCOUNT_BASE64"
	EnvServiceAccountJSON   = "GOOGLE_SERVICE_ACCOUNT_JSON"
	EnvClientID             = "GOOGLE_CLIENT_ID"
	EnvClientSecret         = "GOOGLE_CLIENT_SECRET"
	EnvRefreshToken         = "GOOGLE_REFRESH_TOKEN"
)

// CredentialProvider yields the client options used to construct an
// authenticated Calendar service.
type CredentialProvider interface {
	// Name identifies the credential scheme, for logging.
	Name() string

	// ClientOptions returns the google.golang.org/api options carrying the
	// credentials.
	ClientOptions(ctx context.Context) ([]option.ClientOption, error)
}

// FromEnvironment selects the credential scheme from the environment. The
// first configured scheme wins: base64 service account, then raw JSON
// service account, then the OAuth refresh-token triple. No credentials at
// all is a configuration error; the caller is expected to treat it as fatal.
func FromEnvironment() (CredentialProvider, error) {
	if encoded := os.Getenv(EnvServiceAccountBase64); encoded != "" {
		return &Base64ServiceAccount{Encoded: encoded}, nil
	}
	if raw := os.Getenv(EnvServiceAccountJSON); raw != "" {
		return &JSONServiceAccount{Key: []byte(raw)}, nil
	}

	id := os.Getenv(EnvClientID)
	secret := os.Getenv(EnvClientSecret)
	refresh := os.Getenv(EnvRefreshToken)
	if id != "" || secret != "" || refresh != "" {
		if id == "" || secret == "" || refresh == "" {
			return nil, fmt.Errorf("OAuth credentials require %s, %s and %s together",
				EnvClientID, EnvClientSecret, EnvRefreshToken)
		}
		return &OAuthRefreshToken{ClientID: id, ClientSecret: secret, RefreshToken: refresh}, nil
	}

	return nil, fmt.Errorf("missing Google credentials: set %s, %s, or the %s/%s/%s triple",
		EnvServiceAccountBase64, EnvServiceAccountJSON, EnvClientID, EnvClientSecret, EnvRefreshToken)
}

// Base64ServiceAccount carries a base64-encoded service-account JSON key.
// This is the scheme typically used where the deployment platform only
// supports single-line environment values.
type Base64ServiceAccount struct {
	Encoded string
}

// Name identifies the credential scheme.
func (p *Base64ServiceAccount) Name() string { return "service-account-base64" }

// ClientOptions decodes the key and returns it as a credentials option.
func (p *Base64ServiceAccount) ClientOptions(_ context.Context) ([]option.ClientOption, error) {
	key, err := base64.StdEncoding.DecodeString(p.Encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", EnvServiceAccountBase64, err)
	}
	return []option.ClientOption{option.WithCredentialsJSON(key)}, nil
}

// JSONServiceAccount carries a raw service-account JSON key.
type JSONServiceAccount struct {
	Key []byte
}

// Name identifies the credential scheme.
func (p *JSONServiceAccount) Name() string { return "service-account-json" }

// ClientOptions returns the key as a credentials option.
func (p *JSONServiceAccount) ClientOptions(_ context.Context) ([]option.ClientOption, error) {
	if len(p.Key) == 0 {
		return nil, fmt.Errorf("empty service account key")
	}
	return []option.ClientOption{option.WithCredentialsJSON(p.Key)}, nil
}

// OAuthRefreshToken carries an OAuth client-id/secret pair and a long-lived
// refresh token obtained out of band. Access tokens are minted and refreshed
// automatically by the token source.
type OAuthRefreshToken struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// Name identifies the credential scheme.
func (p *OAuthRefreshToken) Name() string { return "oauth-refresh-token" }

// ClientOptions builds an oauth2 HTTP client from the refresh token.
func (p *OAuthRefreshToken) ClientOptions(ctx context.Context) ([]option.ClientOption, error) {
	conf := &oauth2.Config{
		ClientID:     p.ClientID,
		ClientSecret: p.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{calendar.CalendarScope},
	}

	ts := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: p.RefreshToken})
	client := oauth2.NewClient(ctx, ts)

	// Force HTTP/1.1 by disabling HTTP/2
	transport := client.Transport.(*oauth2.Transport)
	transport.Base = &http.Transport{
		ForceAttemptHTTP2: false,
	}

	return []option.ClientOption{option.WithHTTPClient(client)}, nil
}
