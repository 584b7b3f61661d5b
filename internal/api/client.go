package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"course-catalog-go/internal/apperrors"
	"course-catalog-go/internal/model"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const RequestIDHeader = "X-Request-ID"

// TokenSource supplies the bearer token for course calls. The session store
// satisfies it.
type TokenSource interface {
	Token() string
}

// Client talks to the remote course service. Status and transport failures
// come back as *apperrors.Error. Nothing is retried.
type Client interface {
	Login(ctx context.Context, email, password string) (model.Session, error)
	Signup(ctx context.Context, email, password string) (model.Session, error)
	GoogleLogin(ctx context.Context, credential string) (model.Session, error)
	ListCourses(ctx context.Context) ([]model.Course, error)
	CreateCourse(ctx context.Context, fields model.CourseFields) (model.Course, error)
	UpdateCourse(ctx context.Context, id string, fields model.CourseFields) error
	DeleteCourse(ctx context.Context, id string) error
	Enroll(ctx context.Context, id string) error
	Unenroll(ctx context.Context, id string) error
}

type client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
}

type Option func(*client)

// WithHTTPClient replaces the default http.Client, e.g. with an
// instrumented transport.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *client) {
		c.httpClient = httpClient
	}
}

func NewClient(baseURL string, tokens TokenSource, opts ...Option) (Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing api url %q: %w", baseURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("api url %q must be absolute", baseURL)
	}

	c := &client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type federatedRequest struct {
	Token string `json:"token"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *client) Login(ctx context.Context, email, password string) (model.Session, error) {
	return c.exchange(ctx, "/login", credentialsRequest{Email: email, Password: password})
}

func (c *client) Signup(ctx context.Context, email, password string) (model.Session, error) {
	return c.exchange(ctx, "/signup", credentialsRequest{Email: email, Password: password})
}

func (c *client) GoogleLogin(ctx context.Context, credential string) (model.Session, error) {
	return c.exchange(ctx, "/auth/google", federatedRequest{Token: credential})
}

func (c *client) exchange(ctx context.Context, path string, body any) (model.Session, error) {
	var session model.Session
	if err := c.do(ctx, http.MethodPost, path, false, body, &session); err != nil {
		return model.Session{}, err
	}

	if !session.Complete() {
		return model.Session{}, apperrors.Transport("the service returned an incomplete session", nil)
	}

	return session, nil
}

func (c *client) ListCourses(ctx context.Context) ([]model.Course, error) {
	var courses []model.Course
	if err := c.do(ctx, http.MethodGet, "/courses", true, nil, &courses); err != nil {
		return nil, err
	}

	return courses, nil
}

func (c *client) CreateCourse(ctx context.Context, fields model.CourseFields) (model.Course, error) {
	var course model.Course
	if err := c.do(ctx, http.MethodPost, "/courses", true, fields, &course); err != nil {
		return model.Course{}, err
	}

	return course, nil
}

func (c *client) UpdateCourse(ctx context.Context, id string, fields model.CourseFields) error {
	return c.do(ctx, http.MethodPut, coursePath(id), true, fields, nil)
}

func (c *client) DeleteCourse(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, coursePath(id), true, nil, nil)
}

func (c *client) Enroll(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, coursePath(id)+"/enroll", true, nil, nil)
}

func (c *client) Unenroll(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, coursePath(id)+"/unenroll", true, nil, nil)
}

func coursePath(id string) string {
	return "/courses/" + url.PathEscape(id)
}

// do sends one request. body is JSON-encoded when non-nil; out, when
// non-nil, receives the decoded 2xx response.
func (c *client) do(ctx context.Context, method, path string, authenticated bool, body, out any) error {
	var token string
	if authenticated {
		token = c.tokens.Token()
		if token == "" {
			return apperrors.Auth("not signed in")
		}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating %s %s request: %w", method, path, err)
	}

	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authenticated {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	logger := log.WithFields(log.Fields{
		"method":     method,
		"path":       path,
		"request_id": requestID,
	})
	logger.Debug("sending request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.WithError(err).Debug("request failed")
		return apperrors.Transport("could not reach the course service", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.Transport("reading the course service response", err)
	}

	logger.WithField("status", resp.StatusCode).Debug("received response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperrors.FromStatus(resp.StatusCode, errorMessage(payload))
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return apperrors.Transport("the course service returned a malformed response", err)
	}

	return nil
}

// errorMessage pulls the service's message out of an error body, which may
// be JSON ({"error": ...} or {"message": ...}) or plain text.
func errorMessage(payload []byte) string {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return ""
	}

	if !json.Valid(trimmed) {
		return string(trimmed)
	}

	var parsed errorResponse
	if err := json.Unmarshal(trimmed, &parsed); err != nil {
		return ""
	}
	if parsed.Error != "" {
		return parsed.Error
	}
	return parsed.Message
}
