// Package realtorapi is the HTTP client of the listing backend.
//
// Every call is a single round trip: nothing is retried or cached. Failures
// are reported as *errors.AppError classified as network-unreachable, HTTP
// status or malformed response.
package realtorapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/realtorspace/realtor-space/internal/domain/entities"
	"github.com/realtorspace/realtor-space/internal/domain/providers"
	"github.com/realtorspace/realtor-space/internal/infrastructure/observability"
	apperrors "github.com/realtorspace/realtor-space/pkg/errors"
)

// DefaultTimeout bounds every request.
const DefaultTimeout = 10 * time.Second

const maxResponseBytes = 10 << 20

var _ providers.BackendAPI = (*HTTPClient)(nil)

// UnauthorizedHandler is called when the backend rejects the token of an
// authenticated call.
type UnauthorizedHandler func(ctx context.Context)

// HTTPClient talks to the listing backend REST API
type HTTPClient struct {
	baseURL        string
	httpClient     *http.Client
	metrics        *observability.Metrics
	onUnauthorized UnauthorizedHandler
}

// Option configures an HTTPClient
type Option func(*HTTPClient)

// WithTimeout overrides DefaultTimeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *HTTPClient) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *HTTPClient) {
		c.httpClient = httpClient
	}
}

// WithMetrics records the duration of every call
func WithMetrics(metrics *observability.Metrics) Option {
	return func(c *HTTPClient) {
		c.metrics = metrics
	}
}

// WithUnauthorizedHandler registers the session invalidation hook
func WithUnauthorizedHandler(fn UnauthorizedHandler) Option {
	return func(c *HTTPClient) {
		c.onUnauthorized = fn
	}
}

// NewClient creates a client for the API rooted at baseURL, e.g.
// https://api.realtorspace.co.ke/api/v1
func NewClient(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetUnauthorizedHandler registers the session invalidation hook. It must be
// called before the client is shared between goroutines.
func (c *HTTPClient) SetUnauthorizedHandler(fn UnauthorizedHandler) {
	c.onUnauthorized = fn
}

// FetchProperties returns one page of public listings
func (c *HTTPClient) FetchProperties(ctx context.Context, query providers.PropertyQuery) ([]entities.Property, error) {
	params := url.Values{}
	if query.Page > 0 {
		params.Set("page", fmt.Sprintf("%d", query.Page))
	}
	if query.Limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", query.Limit))
	}
	if s := strings.TrimSpace(query.Search); s != "" {
		params.Set("search", s)
	}

	var out struct {
		Properties *[]entities.Property `json:"properties"`
	}
	if err := c.do(ctx, request{method: http.MethodGet, route: "/properties", path: "/properties", query: params}, &out); err != nil {
		return nil, err
	}
	if out.Properties == nil {
		return nil, apperrors.NewMalformedResponseError("response is missing properties", nil)
	}
	return validateProperties(*out.Properties)
}

// FetchProperty returns a single listing
func (c *HTTPClient) FetchProperty(ctx context.Context, id string) (*entities.Property, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.NewValidationError("id", "property id is required")
	}
	return c.propertyCall(ctx, request{
		method: http.MethodGet,
		route:  "/properties/{id}",
		path:   "/properties/" + url.PathEscape(id),
	})
}

// FetchCounties returns every county
func (c *HTTPClient) FetchCounties(ctx context.Context) ([]entities.County, error) {
	var out struct {
		Counties *[]entities.County `json:"counties"`
	}
	if err := c.do(ctx, request{method: http.MethodGet, route: "/counties", path: "/counties"}, &out); err != nil {
		return nil, err
	}
	if out.Counties == nil {
		return nil, apperrors.NewMalformedResponseError("response is missing counties", nil)
	}
	return *out.Counties, nil
}

// FetchSubCounties returns the sub-counties of a county
func (c *HTTPClient) FetchSubCounties(ctx context.Context, countyID int) ([]entities.SubCounty, error) {
	var out struct {
		SubCounties *[]entities.SubCounty `json:"sub_counties"`
	}
	req := request{
		method: http.MethodGet,
		route:  "/counties/{id}/sub-counties",
		path:   fmt.Sprintf("/counties/%d/sub-counties", countyID),
	}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	if out.SubCounties == nil {
		return nil, apperrors.NewMalformedResponseError("response is missing sub_counties", nil)
	}
	return *out.SubCounties, nil
}

// FetchMyProperties returns the listings owned by the agent behind token
func (c *HTTPClient) FetchMyProperties(ctx context.Context, token string) ([]entities.Property, error) {
	var out struct {
		Properties *[]entities.Property `json:"properties"`
	}
	req := request{method: http.MethodGet, route: "/my-properties", path: "/my-properties", token: token}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	if out.Properties == nil {
		return nil, apperrors.NewMalformedResponseError("response is missing properties", nil)
	}
	return validateProperties(*out.Properties)
}

// CreateProperty creates a listing
func (c *HTTPClient) CreateProperty(ctx context.Context, input *entities.PropertyInput, token string) (*entities.Property, error) {
	return c.propertyCall(ctx, request{
		method: http.MethodPost,
		route:  "/properties",
		path:   "/properties",
		body:   input,
		token:  token,
	})
}

// UpdateProperty replaces the editable fields of a listing
func (c *HTTPClient) UpdateProperty(ctx context.Context, id string, input *entities.PropertyInput, token string) (*entities.Property, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.NewValidationError("id", "property id is required")
	}
	return c.propertyCall(ctx, request{
		method: http.MethodPut,
		route:  "/properties/{id}",
		path:   "/properties/" + url.PathEscape(id),
		body:   input,
		token:  token,
	})
}

// DeleteProperty removes a listing
func (c *HTTPClient) DeleteProperty(ctx context.Context, id string, token string) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.NewValidationError("id", "property id is required")
	}
	return c.do(ctx, request{
		method: http.MethodDelete,
		route:  "/properties/{id}",
		path:   "/properties/" + url.PathEscape(id),
		token:  token,
	}, nil)
}

// UploadImages sends files as one multipart request under the "images" field
func (c *HTTPClient) UploadImages(ctx context.Context, id string, files []entities.ImageUpload, token string) ([]entities.PropertyImage, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.NewValidationError("id", "property id is required")
	}
	body, contentType, err := encodeImages(files)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to encode images", err)
	}

	var out struct {
		Images []entities.PropertyImage `json:"images"`
		Image  *entities.PropertyImage  `json:"image"`
	}
	req := request{
		method:      http.MethodPost,
		route:       "/properties/{id}/images",
		path:        "/properties/" + url.PathEscape(id) + "/images",
		rawBody:     body,
		contentType: contentType,
		token:       token,
	}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}

	images := out.Images
	if out.Image != nil {
		images = append(images, *out.Image)
	}
	if len(images) == 0 {
		return nil, apperrors.NewMalformedResponseError("response is missing images", nil)
	}
	return images, nil
}

// Login exchanges credentials for a token. A 401 here means bad credentials
// and is reported as a plain HTTP error.
func (c *HTTPClient) Login(ctx context.Context, req entities.LoginRequest) (*entities.AuthResponse, error) {
	return c.authCall(ctx, request{method: http.MethodPost, route: "/login", path: "/login", body: req})
}

// Register creates an account and returns its token
func (c *HTTPClient) Register(ctx context.Context, req entities.RegisterRequest) (*entities.AuthResponse, error) {
	return c.authCall(ctx, request{method: http.MethodPost, route: "/register", path: "/register", body: req})
}

// Logout tells the backend the token is no longer in use
func (c *HTTPClient) Logout(ctx context.Context, token string) error {
	return c.do(ctx, request{method: http.MethodPost, route: "/logout", path: "/logout", token: token}, nil)
}

// FetchProfile returns the account behind token
func (c *HTTPClient) FetchProfile(ctx context.Context, token string) (*entities.User, error) {
	var out struct {
		User *entities.User `json:"user"`
	}
	if err := c.do(ctx, request{method: http.MethodGet, route: "/profile", path: "/profile", token: token}, &out); err != nil {
		return nil, err
	}
	if out.User == nil || out.User.ID == "" {
		return nil, apperrors.NewMalformedResponseError("response is missing user", nil)
	}
	return out.User, nil
}

// RequestPasswordReset asks the backend to email a reset link
func (c *HTTPClient) RequestPasswordReset(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return c.do(ctx, request{method: http.MethodPost, route: "/auth/forgot-password", path: "/auth/forgot-password", body: body}, nil)
}

// ConfirmPasswordReset sets a new password using a reset token
func (c *HTTPClient) ConfirmPasswordReset(ctx context.Context, token, password string) error {
	body := entities.PasswordResetRequest{Token: token, Password: password}
	return c.do(ctx, request{method: http.MethodPost, route: "/auth/reset-password", path: "/auth/reset-password", body: body}, nil)
}

// PendingAgents lists agents waiting for approval
func (c *HTTPClient) PendingAgents(ctx context.Context, token string) ([]entities.User, error) {
	return c.agentsCall(ctx, "/admin/pending-agents", token)
}

// Agents lists every agent
func (c *HTTPClient) Agents(ctx context.Context, token string) ([]entities.User, error) {
	return c.agentsCall(ctx, "/admin/agents", token)
}

// ApproveAgent approves an agent and returns the backend confirmation message
func (c *HTTPClient) ApproveAgent(ctx context.Context, agentID string, token string) (string, error) {
	if strings.TrimSpace(agentID) == "" {
		return "", apperrors.NewValidationError("agent_id", "agent id is required")
	}
	var out struct {
		Message string `json:"message"`
	}
	req := request{
		method: http.MethodPost,
		route:  "/admin/approve-agent/{id}",
		path:   "/admin/approve-agent/" + url.PathEscape(agentID),
		token:  token,
	}
	if err := c.do(ctx, req, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// propertyCall accepts both {"property": {...}} and a bare property body
func (c *HTTPClient) propertyCall(ctx context.Context, req request) (*entities.Property, error) {
	var raw json.RawMessage
	if err := c.do(ctx, req, &raw); err != nil {
		return nil, err
	}
	var wrapped struct {
		Property *entities.Property `json:"property"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, apperrors.NewMalformedResponseError("failed to decode response", err)
	}
	property := wrapped.Property
	if property == nil {
		bare := &entities.Property{}
		if err := json.Unmarshal(raw, bare); err != nil {
			return nil, apperrors.NewMalformedResponseError("failed to decode response", err)
		}
		if bare.ID == "" {
			return nil, apperrors.NewMalformedResponseError("response is missing property", nil)
		}
		property = bare
	}
	if err := property.Validate(); err != nil {
		return nil, apperrors.NewMalformedResponseError("invalid property", err)
	}
	return property, nil
}

func (c *HTTPClient) authCall(ctx context.Context, req request) (*entities.AuthResponse, error) {
	out := &entities.AuthResponse{}
	if err := c.do(ctx, req, out); err != nil {
		return nil, err
	}
	if out.Token == "" || out.User == nil || out.User.ID == "" {
		return nil, apperrors.NewMalformedResponseError("response is missing token or user", nil)
	}
	return out, nil
}

func (c *HTTPClient) agentsCall(ctx context.Context, path, token string) ([]entities.User, error) {
	var out struct {
		Agents []entities.User `json:"agents"`
	}
	if err := c.do(ctx, request{method: http.MethodGet, route: path, path: path, token: token}, &out); err != nil {
		return nil, err
	}
	if out.Agents == nil {
		return []entities.User{}, nil
	}
	return out.Agents, nil
}

func validateProperties(properties []entities.Property) ([]entities.Property, error) {
	for i := range properties {
		if err := properties[i].Validate(); err != nil {
			return nil, apperrors.NewMalformedResponseError("invalid property", err)
		}
	}
	return properties, nil
}

type request struct {
	method      string
	route       string
	path        string
	query       url.Values
	body        any
	rawBody     io.Reader
	contentType string
	token       string
}

func (c *HTTPClient) do(ctx context.Context, req request, out any) (err error) {
	ctx, span := observability.StartSpan(ctx, "realtorapi "+req.method+" "+req.route)
	defer span.End()
	observability.SetSpanAttributes(span,
		attribute.String("http.method", req.method),
		attribute.String("http.route", req.route),
	)

	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = string(apperrors.TypeOf(err))
			observability.RecordError(span, err)
			observability.LoggerFromContext(ctx).Warn().
				Err(err).
				Str("method", req.method).
				Str("route", req.route).
				Int("status", apperrors.StatusOf(err)).
				Str("error_type", outcome).
				Msg("listing backend call failed")
		}
		observability.RecordUpstreamMetric(ctx, c.metrics, req.method, req.route, outcome, time.Since(start))
	}()

	endpoint := c.baseURL + req.path
	if len(req.query) > 0 {
		endpoint += "?" + req.query.Encode()
	}

	body := req.rawBody
	contentType := req.contentType
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return apperrors.NewInternalError("failed to encode request", err)
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint, body)
	if err != nil {
		return apperrors.NewInternalError("failed to build request", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}
	requestID := observability.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	httpReq.Header.Set("X-Request-ID", requestID)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return apperrors.NewNetworkError("listing backend unreachable", err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return apperrors.NewNetworkError("failed to read response", err)
	}

	if resp.StatusCode == http.StatusUnauthorized && req.token != "" {
		if c.onUnauthorized != nil {
			c.onUnauthorized(ctx)
		}
		return apperrors.NewUnauthorizedError(serverMessage(payload))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apperrors.NewHTTPError(resp.StatusCode, serverMessage(payload))
	}

	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(payload)) == 0 {
		return apperrors.NewMalformedResponseError("empty response body", nil)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return apperrors.NewMalformedResponseError("failed to decode response", err)
	}
	return nil
}

// serverMessage extracts the backend's explanation from an error body
func serverMessage(payload []byte) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	if body.Error != "" {
		return body.Error
	}
	return body.Message
}
