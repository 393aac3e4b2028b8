// Package e2etest drives the HTTP boundary the way a real client would: it registers and
// logs in with a simulated passkey, uploads heart-rate traces, and scrapes the rendered
// workout report. It is shared by the package's own end-to-end tests and by cmd/loadtest.
package e2etest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/descope/virtualwebauthn"
)

// unsafeCookieJar strips the Secure attribute before storing cookies, so session cookies
// set by the server's HTTPS-oriented configuration still round-trip over the plain HTTP
// connections used against a test server.
type unsafeCookieJar struct {
	http.CookieJar
}

func newUnsafeCookieJar() (*unsafeCookieJar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("new cookie jar: %w", err)
	}
	return &unsafeCookieJar{CookieJar: jar}, nil
}

func (j *unsafeCookieJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	unsecured := make([]*http.Cookie, len(cookies))
	for i, c := range cookies {
		clone := *c
		clone.Secure = false
		unsecured[i] = &clone
	}
	j.CookieJar.SetCookies(u, unsecured)
}

// Client is a WebAuthn-aware HTTP client for one simulated athlete.
type Client struct {
	http          *http.Client
	baseURL       string
	rp            virtualwebauthn.RelyingParty
	authenticator virtualwebauthn.Authenticator
}

// NewClient returns a Client targeting baseURL, with a Relying Party matching the server's
// WebAuthn configuration (rpID, rpOrigin).
func NewClient(baseURL, rpID, rpOrigin string) (*Client, error) {
	jar, err := newUnsafeCookieJar()
	if err != nil {
		return nil, fmt.Errorf("new cookie jar: %w", err)
	}
	return &Client{
		http:          &http.Client{Jar: jar},
		baseURL:       baseURL,
		rp:            virtualwebauthn.RelyingParty{Name: "Ventiscore", ID: rpID, Origin: rpOrigin},
		authenticator: virtualwebauthn.NewAuthenticator(),
	}, nil
}

// WaitForReady polls urlPath until it returns 200, the context is canceled, or one second
// elapses.
func (c *Client) WaitForReady(ctx context.Context, urlPath string) error {
	deadline := time.Now().Add(time.Second)
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+urlPath, nil)
		if err != nil {
			return fmt.Errorf("new request: %w", err)
		}
		resp, err := c.http.Do(req)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("context canceled: %w", ctx.Err())
		default:
			if time.Now().After(deadline) {
				return fmt.Errorf("timed out waiting for %s to become ready", urlPath)
			}
			time.Sleep(20 * time.Millisecond)
		}
	}
}

func (c *Client) do(ctx context.Context, method, urlPath, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+urlPath, body)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	return resp, nil
}

// Register mints a passkey with the server's WebAuthn relying party and logs the resulting
// identity in.
func (c *Client) Register(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodPost, "/api/registration/start", "", nil)
	if err != nil {
		return fmt.Errorf("start registration: %w", err)
	}
	body, err := readAndClose(resp)
	if err != nil {
		return err
	}
	attOpts, err := virtualwebauthn.ParseAttestationOptions(string(body))
	if err != nil {
		return fmt.Errorf("parse attestation options: %w", err)
	}

	credential := virtualwebauthn.NewCredential(virtualwebauthn.KeyTypeEC2)
	attestationResponse := virtualwebauthn.CreateAttestationResponse(c.rp, c.authenticator, credential, *attOpts)

	resp, err = c.do(ctx, http.MethodPost, "/api/registration/finish", "application/json", strings.NewReader(attestationResponse))
	if err != nil {
		return fmt.Errorf("finish registration: %w", err)
	}
	if _, err = readAndClose(resp); err != nil {
		return err
	}

	c.authenticator.AddCredential(credential)
	c.authenticator.Options.UserHandle = []byte(attOpts.UserID)
	return nil
}

// Login authenticates with the passkey credential Register created.
func (c *Client) Login(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodPost, "/api/login/start", "", nil)
	if err != nil {
		return fmt.Errorf("start login: %w", err)
	}
	body, err := readAndClose(resp)
	if err != nil {
		return err
	}
	asOpts, err := virtualwebauthn.ParseAssertionOptions(string(body))
	if err != nil {
		return fmt.Errorf("parse assertion options: %w", err)
	}

	credential := c.authenticator.Credentials[0]
	asResp := virtualwebauthn.CreateAssertionResponse(c.rp, c.authenticator, credential, *asOpts)

	resp, err = c.do(ctx, http.MethodPost, "/api/login/finish", "application/json", strings.NewReader(asResp))
	if err != nil {
		return fmt.Errorf("finish login: %w", err)
	}
	_, err = readAndClose(resp)
	return err
}

// SaveProfile uploads a health profile for the logged-in caller and returns an error unless
// the server answers 200.
func (c *Client) SaveProfile(ctx context.Context, age int, gender string, restingHR *int) error {
	payload, err := json.Marshal(map[string]any{"age": age, "gender": gender, "resting_hr": restingHR, "max_hr": nil})
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	resp, err := c.do(ctx, http.MethodPut, "/api/profile", "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("put profile: %w", err)
	}
	body, err := readAndClose(resp)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, body)
	}
	return nil
}

// ScoreWorkout uploads a heart-rate trace and returns the raw JSON ScoringResult body.
func (c *Client) ScoreWorkout(ctx context.Context, samples []HeartRateSample) ([]byte, error) {
	wire := make([]map[string]any, len(samples))
	for i, s := range samples {
		wire[i] = map[string]any{"timestamp_unix": s.Timestamp.Unix(), "bpm": s.BPM}
	}
	payload, err := json.Marshal(map[string]any{"samples": wire})
	if err != nil {
		return nil, fmt.Errorf("marshal samples: %w", err)
	}
	resp, err := c.do(ctx, http.MethodPost, "/api/workouts/score", "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("post score: %w", err)
	}
	body, err := readAndClose(resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, body)
	}
	return body, nil
}

// GetReportDoc fetches a rendered workout report and parses it with goquery.
func (c *Client) GetReportDoc(ctx context.Context, workoutID int) (*goquery.Document, error) {
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/workouts/%d/report", workoutID), "", nil)
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse report document: %w", err)
	}
	return doc, nil
}

// HeartRateSample is the trace point ScoreWorkout uploads.
type HeartRateSample struct {
	Timestamp time.Time
	BPM       int
}

func readAndClose(resp *http.Response) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}
