package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/auditcloud/findings-api/internal/domain"
)

const (
	readOnlyScope  = "https://www.googleapis.com/auth/spreadsheets.readonly"
	jwtBearerGrant = "urn:ietf:params:oauth:grant-type:jwt-bearer"
	assertionTTL   = time.Hour
	// expirySlack refreshes tokens slightly early so an in-flight request
	// never carries one that expires mid-call.
	expirySlack = time.Minute
)

// serviceAccount is the relevant subset of a service-account key file.
type serviceAccount struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
}

// tokenSource exchanges a signed service-account assertion for a bearer
// token and caches it until shortly before expiry.
type tokenSource struct {
	account    serviceAccount
	tokenURL   string
	httpClient *http.Client

	mu      sync.Mutex
	token   string
	expires time.Time
}

// newTokenSource loads the service-account key file at path.
func newTokenSource(path, tokenURL string, httpClient *http.Client) (*tokenSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credentials file %s: %w", path, err)
	}

	var account serviceAccount
	if err := json.Unmarshal(data, &account); err != nil {
		return nil, fmt.Errorf("parse credentials file: %w", err)
	}
	if account.ClientEmail == "" || account.PrivateKey == "" {
		return nil, fmt.Errorf("credentials file %s: client_email and private_key are required", path)
	}

	return &tokenSource{
		account:    account,
		tokenURL:   tokenURL,
		httpClient: httpClient,
	}, nil
}

// Token returns a valid bearer token, refreshing it when needed.
func (ts *tokenSource) Token(ctx context.Context) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.token != "" && time.Now().Before(ts.expires.Add(-expirySlack)) {
		return ts.token, nil
	}

	assertion, err := ts.signAssertion()
	if err != nil {
		return "", err
	}

	token, expiresIn, err := ts.exchange(ctx, assertion)
	if err != nil {
		return "", err
	}

	ts.token = token
	ts.expires = time.Now().Add(time.Duration(expiresIn) * time.Second)
	return ts.token, nil
}

// signAssertion builds the RS256-signed claim set the token endpoint expects.
func (ts *tokenSource) signAssertion() (string, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(ts.account.PrivateKey))
	if err != nil {
		return "", fmt.Errorf("parse service account key: %w", err)
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   ts.account.ClientEmail,
		"scope": readOnlyScope,
		"aud":   ts.tokenURL,
		"iat":   now.Unix(),
		"exp":   now.Add(assertionTTL).Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign assertion: %w", err)
	}
	return signed, nil
}

// exchange posts the assertion to the token endpoint.
func (ts *tokenSource) exchange(ctx context.Context, assertion string) (string, int, error) {
	form := url.Values{}
	form.Set("grant_type", jwtBearerGrant)
	form.Set("assertion", assertion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ts.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := ts.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("%w: token endpoint returned status %d", domain.ErrSourceUnavailable, resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if decodeErr := json.NewDecoder(resp.Body).Decode(&body); decodeErr != nil {
		return "", 0, fmt.Errorf("%w: decode token response: %v", domain.ErrSourceUnavailable, decodeErr)
	}
	if body.AccessToken == "" {
		return "", 0, fmt.Errorf("%w: token endpoint returned empty token", domain.ErrSourceUnavailable)
	}

	return body.AccessToken, body.ExpiresIn, nil
}
