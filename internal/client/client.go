// Package client is a typed Go client for the chess HTTP API
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"chessrules/internal/core"
)

// Long-polls are held for up to 25s server side
const defaultTimeout = 30 * time.Second

type Client struct {
	BaseURL    string
	Token      string // Seat token sent as a bearer token, empty for none
	HTTPClient *http.Client
	log        *logrus.Entry
}

type HealthResponse struct {
	Status  string `json:"status"`
	Time    int64  `json:"time"`
	Storage string `json:"storage"`
}

// APIError is a non-2xx reply from the server
type APIError struct {
	Status int
	core.ErrorResponse
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%d %s: %s (%s)", e.Status, e.Code, e.ErrorResponse.Error, e.Details)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.ErrorResponse.Error)
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: defaultTimeout},
		log:        logrus.WithField("component", "client"),
	}
}

// WithToken returns a copy of the client acting for a seat
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.Token = token
	return &cp
}

func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bodyReader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	c.log.WithField("status", resp.StatusCode).
		WithField("latency", time.Since(start)).
		Debugf("%s %s", method, path)

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.Unmarshal(respBody, &apiErr.ErrorResponse); err != nil {
			apiErr.ErrorResponse.Error = strings.TrimSpace(string(respBody))
		}
		return apiErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return nil
}

func gamePath(gameID string, parts ...string) string {
	p := "/api/v1/games/" + url.PathEscape(gameID)
	for _, part := range parts {
		p += "/" + part
	}
	return p
}

func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	err := c.do(ctx, http.MethodGet, "/health", nil, &resp)
	return &resp, err
}

func (c *Client) CreateGame(ctx context.Context, req core.CreateGameRequest) (*core.GameResponse, error) {
	var resp core.GameResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/games", req, &resp)
	return &resp, err
}

func (c *Client) GetGame(ctx context.Context, gameID string) (*core.GameResponse, error) {
	var resp core.GameResponse
	err := c.do(ctx, http.MethodGet, gamePath(gameID), nil, &resp)
	return &resp, err
}

// WaitGame long-polls until the game moves past version or the server's
// wait times out, then returns the current state
func (c *Client) WaitGame(ctx context.Context, gameID string, version int) (*core.GameResponse, error) {
	var resp core.GameResponse
	path := gamePath(gameID) + "?wait=true&version=" + strconv.Itoa(version)
	err := c.do(ctx, http.MethodGet, path, nil, &resp)
	return &resp, err
}

func (c *Client) DeleteGame(ctx context.Context, gameID string) error {
	return c.do(ctx, http.MethodDelete, gamePath(gameID), nil, nil)
}

func (c *Client) RestoreGame(ctx context.Context, gameID string) (*core.GameResponse, error) {
	var resp core.GameResponse
	err := c.do(ctx, http.MethodPost, gamePath(gameID, "restore"), nil, &resp)
	return &resp, err
}

func (c *Client) MakeMove(ctx context.Context, gameID, from, to string) (*core.GameResponse, error) {
	var resp core.GameResponse
	err := c.do(ctx, http.MethodPost, gamePath(gameID, "moves"), core.MoveRequest{From: from, To: to}, &resp)
	return &resp, err
}

func (c *Client) Undo(ctx context.Context, gameID string, count int) (*core.GameResponse, error) {
	var resp core.GameResponse
	err := c.do(ctx, http.MethodPost, gamePath(gameID, "undo"), core.UndoRequest{Count: count}, &resp)
	return &resp, err
}

func (c *Client) Redo(ctx context.Context, gameID string, count int) (*core.GameResponse, error) {
	var resp core.GameResponse
	err := c.do(ctx, http.MethodPost, gamePath(gameID, "redo"), core.RedoRequest{Count: count}, &resp)
	return &resp, err
}

func (c *Client) Resign(ctx context.Context, gameID, color string) (*core.GameResponse, error) {
	var resp core.GameResponse
	err := c.do(ctx, http.MethodPost, gamePath(gameID, "resign"), core.ResignRequest{Color: color}, &resp)
	return &resp, err
}

// Draw sends a draw action: "offer", "accept" or "decline"
func (c *Client) Draw(ctx context.Context, gameID, color, action string) (*core.GameResponse, error) {
	var resp core.GameResponse
	err := c.do(ctx, http.MethodPost, gamePath(gameID, "draw"), core.DrawRequest{Color: color, Action: action}, &resp)
	return &resp, err
}

func (c *Client) Board(ctx context.Context, gameID string) (*core.BoardResponse, error) {
	var resp core.BoardResponse
	err := c.do(ctx, http.MethodGet, gamePath(gameID, "board"), nil, &resp)
	return &resp, err
}

func (c *Client) PGN(ctx context.Context, gameID string) (string, error) {
	var resp core.PGNResponse
	err := c.do(ctx, http.MethodGet, gamePath(gameID, "pgn"), nil, &resp)
	return resp.PGN, err
}
