package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"storefront/internal/category"
	"storefront/internal/feedback"
	"storefront/internal/logger"
	"storefront/internal/product"
	"storefront/internal/user"

	"go.uber.org/zap"
)

const DefaultBaseURL = "http://localhost:5000/api"

// Gateway is the read side of the catalog the storefront depends on.
type Gateway interface {
	ListProducts(ctx context.Context) ([]product.Product, error)
	GetProduct(ctx context.Context, id string) (*product.Product, error)
	ListCategories(ctx context.Context) ([]category.Category, error)
}

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Upload is one image file attached to a product create or update.
type Upload struct {
	Filename string
	Content  io.Reader
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type ClientOption func(*Client)

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ----------------- Catalog reads -----------------

func (c *Client) ListProducts(ctx context.Context) ([]product.Product, error) {
	var out []product.Product
	if err := c.do(ctx, http.MethodGet, "/products", nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (*product.Product, error) {
	var out product.Product
	if err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(id), nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]category.Category, error) {
	var out []category.Category
	if err := c.do(ctx, http.MethodGet, "/categories", nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ----------------- Admin -----------------

func (c *Client) CreateProduct(ctx context.Context, in product.CreateProductInput, images []Upload) (*product.Product, error) {
	fields := map[string]string{
		"name":        in.Name,
		"description": in.Description,
		"price":       strconv.FormatFloat(in.Price, 'f', -1, 64),
		"category":    in.CategoryID,
	}
	if in.Stock != nil {
		fields["stock"] = strconv.Itoa(*in.Stock)
	}
	if in.IsActive != nil {
		fields["isActive"] = strconv.FormatBool(*in.IsActive)
	}

	body, contentType, err := multipartBody(fields, images)
	if err != nil {
		return nil, err
	}

	var out product.Product
	if err := c.do(ctx, http.MethodPost, "/products", body, contentType, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id string, in product.UpdateProductInput, images []Upload) (*product.Product, error) {
	fields := map[string]string{}
	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.Price != nil {
		fields["price"] = strconv.FormatFloat(*in.Price, 'f', -1, 64)
	}
	if in.CategoryID != nil {
		fields["category"] = *in.CategoryID
	}
	if in.Stock != nil {
		fields["stock"] = strconv.Itoa(*in.Stock)
	}
	if in.IsActive != nil {
		fields["isActive"] = strconv.FormatBool(*in.IsActive)
	}
	if in.KeepExistingImages {
		fields["keepExistingImages"] = "true"
	}

	body, contentType, err := multipartBody(fields, images)
	if err != nil {
		return nil, err
	}

	var out product.Product
	if err := c.do(ctx, http.MethodPut, "/products/"+url.PathEscape(id), body, contentType, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/products/"+url.PathEscape(id), nil, "", nil)
}

func (c *Client) CreateCategory(ctx context.Context, in category.CreateCategoryInput) (*category.Category, error) {
	var out category.Category
	if err := c.doJSON(ctx, http.MethodPost, "/categories", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCategory(ctx context.Context, id string, in category.UpdateCategoryInput) (*category.Category, error) {
	var out category.Category
	if err := c.doJSON(ctx, http.MethodPut, "/categories/"+url.PathEscape(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/categories/"+url.PathEscape(id), nil, "", nil)
}

// ----------------- Side flows -----------------

func (c *Client) SubmitFeedback(ctx context.Context, f feedback.Feedback) (*feedback.Feedback, error) {
	var out feedback.Feedback
	if err := c.doJSON(ctx, http.MethodPost, "/feedback/create", f, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, in user.RegisterInput) (*user.User, error) {
	var out struct {
		User user.User `json:"user"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", in, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// ----------------- Plumbing -----------------

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	return c.do(ctx, method, path, bytes.NewReader(payload), "application/json", out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	log := logger.FromCtx(ctx).With(
		zap.String("method", method),
		zap.String("path", path),
	)

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("catalog request failed", zap.Error(err))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: errorMessage(respBody)}
		log.Warn("catalog returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message),
		)
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		log.Error("failed to decode catalog response", zap.Error(err))
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return strings.TrimSpace(string(body))
}

func multipartBody(fields map[string]string, images []Upload) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", k, err)
		}
	}
	for _, img := range images {
		part, err := w.CreateFormFile("images", img.Filename)
		if err != nil {
			return nil, "", fmt.Errorf("create image part: %w", err)
		}
		if _, err := io.Copy(part, img.Content); err != nil {
			return nil, "", fmt.Errorf("copy image %s: %w", img.Filename, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
