// Package client is a typed client for the checkers REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"checkers/internal/core"
	api "checkers/internal/http"
)

// APIError is returned for non-2xx responses
type APIError struct {
	Status  int
	Code    string
	Message string
	Details string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%d %s", e.Status, e.Message)
	if e.Code != "" {
		msg += " (" + e.Code + ")"
	}
	if e.Details != "" {
		msg += ": " + e.Details
	}
	return msg
}

// IsCode reports whether err is an APIError with the given code
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

type Client struct {
	BaseURL    string
	AuthToken  string
	HTTPClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		// long-poll requests can be held for up to 25s
		HTTPClient: &http.Client{Timeout: 35 * time.Second},
	}
}

func (c *Client) SetToken(token string) {
	c.AuthToken = token
}

func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.AuthToken)
	}

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).Msg("api request")

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var errResp core.ErrorResponse
		if json.Unmarshal(raw, &errResp) == nil && errResp.Error != "" {
			apiErr.Message = errResp.Error
			apiErr.Code = errResp.Code
			apiErr.Details = errResp.Details
		}
		return apiErr
	}

	if result != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

// Health is the server status reported by /health
type Health struct {
	Status        string `json:"status"`
	Storage       string `json:"storage"`
	Games         int    `json:"games"`
	ComputerGames int    `json:"computerGames"`
}

func (c *Client) Health(ctx context.Context) (*Health, error) {
	var resp Health
	return &resp, c.do(ctx, http.MethodGet, "/health", nil, &resp)
}

func gamePath(gameID string, parts ...string) string {
	return "/api/v1/games/" + url.PathEscape(gameID) + strings.Join(parts, "")
}

func (c *Client) CreateGame(ctx context.Context, req core.CreateGameRequest) (*core.GameResponse, error) {
	var resp core.GameResponse
	return &resp, c.do(ctx, http.MethodPost, "/api/v1/games", req, &resp)
}

func (c *Client) ConfigurePlayers(ctx context.Context, gameID string, req core.ConfigurePlayersRequest) (*core.GameResponse, error) {
	var resp core.GameResponse
	return &resp, c.do(ctx, http.MethodPut, gamePath(gameID, "/players"), req, &resp)
}

func (c *Client) GetGame(ctx context.Context, gameID string) (*core.GameResponse, error) {
	var resp core.GameResponse
	return &resp, c.do(ctx, http.MethodGet, gamePath(gameID), nil, &resp)
}

// WaitForChange long-polls until the game changes or the server wait times out, and
// returns the game either way. A move count differing from moveCount returns at once.
func (c *Client) WaitForChange(ctx context.Context, gameID string, moveCount int) (*core.GameResponse, error) {
	var resp core.GameResponse
	path := gamePath(gameID) + "?wait=true&moveCount=" + strconv.Itoa(moveCount)
	return &resp, c.do(ctx, http.MethodGet, path, nil, &resp)
}

func (c *Client) DeleteGame(ctx context.Context, gameID string) error {
	return c.do(ctx, http.MethodDelete, gamePath(gameID), nil, nil)
}

// MakeMove plays a move in notation, or core.ComputerMove to start a computer move
func (c *Client) MakeMove(ctx context.Context, gameID, move string) (*core.GameResponse, error) {
	var resp core.GameResponse
	return &resp, c.do(ctx, http.MethodPost, gamePath(gameID, "/moves"), core.MoveRequest{Move: move}, &resp)
}

func (c *Client) LegalMoves(ctx context.Context, gameID string, from *int) ([]string, error) {
	path := gamePath(gameID, "/moves")
	if from != nil {
		path += "?from=" + strconv.Itoa(*from)
	}
	var resp core.LegalMovesResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Moves, nil
}

func (c *Client) Undo(ctx context.Context, gameID string, count int) (*core.GameResponse, error) {
	var resp core.GameResponse
	return &resp, c.do(ctx, http.MethodPost, gamePath(gameID, "/undo"), core.UndoRequest{Count: count}, &resp)
}

func (c *Client) Redo(ctx context.Context, gameID string) (*core.GameResponse, error) {
	return c.post(ctx, gamePath(gameID, "/redo"))
}

func (c *Client) Pause(ctx context.Context, gameID string) (*core.GameResponse, error) {
	return c.post(ctx, gamePath(gameID, "/pause"))
}

func (c *Client) Resume(ctx context.Context, gameID string) (*core.GameResponse, error) {
	return c.post(ctx, gamePath(gameID, "/resume"))
}

// Reset restarts the game from its starting position
func (c *Client) Reset(ctx context.Context, gameID string) (*core.GameResponse, error) {
	return c.post(ctx, gamePath(gameID, "/reset"))
}

func (c *Client) post(ctx context.Context, path string) (*core.GameResponse, error) {
	var resp core.GameResponse
	return &resp, c.do(ctx, http.MethodPost, path, nil, &resp)
}

func (c *Client) Board(ctx context.Context, gameID string) (*core.BoardResponse, error) {
	var resp core.BoardResponse
	return &resp, c.do(ctx, http.MethodGet, gamePath(gameID, "/board"), nil, &resp)
}

// Register creates an account and stores the returned token on the client
func (c *Client) Register(ctx context.Context, username, password, email string) (*api.AuthResponse, error) {
	var resp api.AuthResponse
	req := api.RegisterRequest{Username: username, Password: password, Email: email}
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/register", req, &resp); err != nil {
		return nil, err
	}
	c.SetToken(resp.Token)
	return &resp, nil
}

// Login stores the returned token on the client
func (c *Client) Login(ctx context.Context, identifier, password string) (*api.AuthResponse, error) {
	var resp api.AuthResponse
	req := api.LoginRequest{Identifier: identifier, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", req, &resp); err != nil {
		return nil, err
	}
	c.SetToken(resp.Token)
	return &resp, nil
}

func (c *Client) CurrentUser(ctx context.Context) (*api.UserResponse, error) {
	var resp api.UserResponse
	return &resp, c.do(ctx, http.MethodGet, "/api/v1/auth/me", nil, &resp)
}

func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/logout", nil, nil); err != nil {
		return err
	}
	c.SetToken("")
	return nil
}

// PlayComputerMove starts a computer move and waits until it is applied. The server
// answers 202 while the search runs; the result arrives through long polling.
func (c *Client) PlayComputerMove(ctx context.Context, gameID string) (*core.GameResponse, error) {
	resp, err := c.MakeMove(ctx, gameID, core.ComputerMove)
	if err != nil {
		return nil, err
	}
	count := len(resp.Moves)
	for resp.Pending || len(resp.Moves) == count {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		resp, err = c.WaitForChange(ctx, gameID, count)
		if err != nil {
			return nil, err
		}
		if !resp.Pending && len(resp.Moves) == count {
			// search finished without a move (discarded or failed)
			return resp, fmt.Errorf("computer move in game %s was not applied", gameID)
		}
	}
	return resp, nil
}
