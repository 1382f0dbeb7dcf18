package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"
)

const (
	loginFailedMessage   = "Invalid credentials. Please try again."
	signupFailedMessage  = "Registration failed due to server error."
	requestFailedMessage = "Request failed."
)

// Client talks to the storeadmin API on behalf of one signed-in user.
type Client struct {
	baseURL  string
	http     *http.Client
	sessions *SessionManager
	submit   *semaphore.Weighted
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// New returns a client for the API at baseURL.
func New(baseURL string, sessions *SessionManager, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     http.DefaultClient,
		sessions: sessions,
		submit:   semaphore.NewWeighted(1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Sessions exposes the session manager the client writes to.
func (c *Client) Sessions() *SessionManager {
	return c.sessions
}

// SignupInput is the signup form.
type SignupInput struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Phone                string `json:"phone,omitempty"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
	Terms                bool   `json:"-"`
}

// Address is an entry of the caller's address book.
type Address struct {
	ID           string    `json:"id"`
	FullName     string    `json:"full_name"`
	Phone        string    `json:"phone"`
	AddressLine1 string    `json:"address_line1"`
	AddressLine2 string    `json:"address_line2,omitempty"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	PostalCode   string    `json:"postal_code"`
	Country      string    `json:"country"`
	IsDefault    bool      `json:"is_default"`
	Type         string    `json:"type"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Signup creates an account. It does not sign in; call Login afterwards.
func (c *Client) Signup(ctx context.Context, in SignupInput) (*User, error) {
	if in.Password != in.PasswordConfirmation {
		return nil, &FieldErrors{Fields: map[string][]string{
			"password_confirmation": {"Passwords do not match"},
		}}
	}
	if !in.Terms {
		return nil, &FieldErrors{Fields: map[string][]string{
			"terms": {"You must agree to the terms and conditions"},
		}}
	}

	release, err := c.beginSubmit()
	if err != nil {
		return nil, err
	}
	defer release()

	var out struct {
		User *User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/signup", in, false, &out, signupFailedMessage); err != nil {
		return nil, err
	}
	return out.User, nil
}

// Login exchanges credentials for a token and stores the new session.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	release, err := c.beginSubmit()
	if err != nil {
		return nil, err
	}
	defer release()

	payload := map[string]string{"email": email, "password": password}
	var out Session
	if err := c.do(ctx, http.MethodPost, "/login", payload, false, &out, loginFailedMessage); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, &NetworkError{Err: fmt.Errorf("login response without token")}
	}
	if err := c.sessions.Set(&out); err != nil {
		return nil, err
	}
	return copySession(&out), nil
}

// Logout revokes the token on the server. The local session is cleared even
// when the request fails.
func (c *Client) Logout(ctx context.Context) error {
	release, err := c.beginSubmit()
	if err != nil {
		return err
	}
	defer release()

	token := c.sessions.Token()
	if token == "" {
		return c.sessions.Clear()
	}

	reqErr := c.doWithToken(ctx, http.MethodPost, "/logout", token, nil, nil, requestFailedMessage)
	if err := c.sessions.Clear(); err != nil {
		return err
	}
	return reqErr
}

// CurrentUser fetches the signed-in profile and refreshes the stored copy.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/user", nil, true, &user, requestFailedMessage); err != nil {
		return nil, err
	}

	if current := c.sessions.Current(); current != nil {
		current.User = &user
		if err := c.sessions.Set(current); err != nil {
			return nil, err
		}
	}
	return &user, nil
}

// ListAddresses returns the caller's address book.
func (c *Client) ListAddresses(ctx context.Context) ([]Address, error) {
	var out struct {
		Addresses []Address `json:"addresses"`
	}
	if err := c.do(ctx, http.MethodGet, "/addresses", nil, true, &out, requestFailedMessage); err != nil {
		return nil, err
	}
	return out.Addresses, nil
}

func (c *Client) beginSubmit() (func(), error) {
	if !c.submit.TryAcquire(1) {
		return nil, ErrSubmitInFlight
	}
	return func() { c.submit.Release(1) }, nil
}

// do sends a request. Protected calls need a session; a 401 on one clears it.
func (c *Client) do(ctx context.Context, method, path string, body any, protected bool, out any, fallback string) error {
	if !protected {
		return c.doWithToken(ctx, method, path, "", body, out, fallback)
	}

	token := c.sessions.Token()
	if token == "" {
		return ErrNoSession
	}
	err := c.doWithToken(ctx, method, path, token, body, out, fallback)

	var resp ErrorResponse
	if errors.As(err, &resp) && resp.StatusCode() == http.StatusUnauthorized {
		if clearErr := c.sessions.expire(); clearErr != nil {
			return clearErr
		}
	}
	return err
}

func (c *Client) doWithToken(ctx context.Context, method, path, token string, body any, out any, fallback string) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeErrorResponse(resp, fallback)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &NetworkError{Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
