// Package client talks to the time-tracking backend. Every call takes the
// raw auth token and sends it as a bearer header.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"fichaje/models"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// NewWithHTTPClient lets tests point the client at an httptest server.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: baseURL, http: hc}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Login exchanges credentials for a backend token.
func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	var resp models.LoginResponse
	req := models.LoginRequest{Email: email, Password: password}
	if _, err := c.do(ctx, http.MethodPost, "/login", "", req, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("%w: login response without access_token", ErrDecode)
	}
	return &resp, nil
}

// Clock registers a manual clock action. The backend decides whether it
// is an entry or an exit.
func (c *Client) Clock(ctx context.Context, token string, lat, lon float64) (*models.ClockRecord, error) {
	var rec models.ClockRecord
	req := models.ClockRequest{Latitude: lat, Longitude: lon}
	if _, err := c.do(ctx, http.MethodPost, "/fichar", token, req, &rec); err != nil {
		return nil, err
	}
	return clockResult(&rec)
}

// ClockNFC registers a clock action validated against an NFC tag code.
func (c *Client) ClockNFC(ctx context.Context, token string, lat, lon float64, code string) (*models.ClockRecord, error) {
	var rec models.ClockRecord
	req := models.ClockRequest{Latitude: lat, Longitude: lon, NFCData: &code}
	if _, err := c.do(ctx, http.MethodPost, "/fichar-nfc", token, req, &rec); err != nil {
		return nil, err
	}
	return clockResult(&rec)
}

// clockResult rejects a 2xx answer that does not say what was registered.
func clockResult(rec *models.ClockRecord) (*models.ClockRecord, error) {
	if rec.Type == "" {
		return nil, fmt.Errorf("%w: clock response without tipo", ErrDecode)
	}
	return rec, nil
}

// History returns the user's latest records, newest first.
func (c *Client) History(ctx context.Context, token string) ([]models.ClockRecord, error) {
	var records []models.ClockRecord
	if _, err := c.do(ctx, http.MethodGet, "/mis-fichajes", token, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Summary fetches the monthly balance. Zero month or year lets the backend
// pick the current one.
func (c *Client) Summary(ctx context.Context, token string, month, year int) (*models.MonthlySummary, error) {
	q := url.Values{}
	if month > 0 {
		q.Set("mes", strconv.Itoa(month))
	}
	if year > 0 {
		q.Set("anio", strconv.Itoa(year))
	}
	path := "/resumen"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var summary models.MonthlySummary
	if _, err := c.do(ctx, http.MethodGet, path, token, nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// Reminder asks whether a clock reminder is due. A nil reminder with a nil
// error means 204: nothing to report.
func (c *Client) Reminder(ctx context.Context, token string) (*models.Reminder, error) {
	var r models.Reminder
	status, err := c.do(ctx, http.MethodGet, "/recordatorio", token, nil, &r)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNoContent {
		return nil, nil
	}
	return &r, nil
}

// Logout revokes the token server-side.
func (c *Client) Logout(ctx context.Context, token string) error {
	_, err := c.do(ctx, http.MethodPost, "/logout", token, nil, nil)
	return err
}

func (c *Client) ChangePassword(ctx context.Context, token, current, newPassword string) error {
	req := models.ChangePasswordRequest{Current: current, New: newPassword}
	_, err := c.do(ctx, http.MethodPost, "/change-password", token, req, nil)
	return err
}

// SavePushToken registers the device push token for server-side reminders.
func (c *Client) SavePushToken(ctx context.Context, token, pushToken string) error {
	_, err := c.do(ctx, http.MethodPost, "/fcm-token", token, models.PushTokenRequest{Token: pushToken}, nil)
	return err
}

func (c *Client) CreateIncidence(ctx context.Context, token string, inc models.Incidence) (*models.Incidence, error) {
	var created models.Incidence
	if _, err := c.do(ctx, http.MethodPost, "/incidencias", token, inc, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) ListIncidences(ctx context.Context, token string) ([]models.Incidence, error) {
	var list []models.Incidence
	if _, err := c.do(ctx, http.MethodGet, "/mis-incidencias", token, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Reachable dials the backend host. It stands in for the "network
// connected" constraint of the reminder job.
func (c *Client) Reachable(ctx context.Context) error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("parse base url: %w", err)
	}
	host := u.Host
	if u.Port() == "" {
		port := "80"
		if u.Scheme == "https" {
			port = "443"
		}
		host = net.JoinHostPort(u.Hostname(), port)
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", host)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	return conn.Close()
}

// do sends one request and decodes a 2xx body into out. Non-2xx answers
// become *Error, transport failures wrap ErrNetwork.
func (c *Client) do(ctx context.Context, method, path, token string, payload, out any) (int, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, fmt.Errorf("marshal %s: %w", path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, fmt.Errorf("build %s: %w", path, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %s: %w", ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("%w: read %s: %w", ErrDecode, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, &Error{StatusCode: resp.StatusCode, Body: data, Path: path}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(data)) == 0 {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return resp.StatusCode, fmt.Errorf("%w: decode %s: %w", ErrDecode, path, err)
	}
	return resp.StatusCode, nil
}
