package quizapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"quiz-summary-service/internal/app"
	"quiz-summary-service/internal/domain"
)

// APIError is a non-success response from the quiz data API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("quiz api request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("quiz api: %s (status %d)", e.Message, e.StatusCode)
}

// Client reads quizzes from a remote quiz data API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type envelope[T any] struct {
	Data T `json:"data"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewClient builds a client for baseURL. A requester token carried by the
// request context is sent as the bearer token; token, when set, is the
// fallback for calls made without one.
func NewClient(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:      token,
		httpClient: httpClient,
	}
}

func (c *Client) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	var payload envelope[domain.Quiz]
	if err := c.getJSON(ctx, "/api/quizzes/"+url.PathEscape(quizID), &payload); err != nil {
		return domain.Quiz{}, err
	}
	return payload.Data, nil
}

func (c *Client) GetQuestions(ctx context.Context, quizID string) ([]domain.Question, error) {
	var payload envelope[[]domain.Question]
	if err := c.getJSON(ctx, "/api/quizzes/"+url.PathEscape(quizID)+"/questions", &payload); err != nil {
		return nil, err
	}
	return payload.Data, nil
}

func (c *Client) GetStatistics(ctx context.Context, quizID string) ([]domain.QuestionStatistics, error) {
	var payload envelope[[]domain.QuestionStatistics]
	if err := c.getJSON(ctx, "/api/quizzes/"+url.PathEscape(quizID)+"/statistics", &payload); err != nil {
		return nil, err
	}
	return payload.Data, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	token := c.token
	if requester, ok := app.SessionTokenFromContext(ctx); ok {
		token = requester
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("quiz api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.ErrQuizNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode quiz api response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var payload errorResponse
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: payload.Error}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}
