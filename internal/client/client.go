// Package client talks to the employee REST API and holds the client-side
// state that drives it: the listing cache and the employee form.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Algoraver22/employee-hr-platform/internal/shared/response"

	"go.uber.org/zap"
)

const DefaultTimeout = 15 * time.Second

type Employee struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Department   string    `json:"department"`
	Salary       string    `json:"salary"`
	ProfileImage string    `json:"profileImage,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type ListParams struct {
	Search string
	Page   int
	Limit  int
}

type ListPage struct {
	Employees  []Employee              `json:"employees"`
	Pagination response.PaginationMeta `json:"pagination"`
}

type Stats struct {
	TotalEmployees  int64            `json:"totalEmployees"`
	Departments     map[string]int64 `json:"departments"`
	DepartmentCount int              `json:"departmentCount"`
	AverageSalary   string           `json:"averageSalary"`
	TotalSalary     string           `json:"totalSalary"`
}

// EmployeeInput is the payload of Create and Update. ProfileImage is
// optional; when set the request is sent as multipart/form-data.
type EmployeeInput struct {
	Name         string
	Email        string
	Phone        string
	Department   string
	Salary       string
	ProfileImage io.Reader
	ImageName    string
}

type envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorBody `json:"error"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger.Named("client")
		}
	}
}

// New returns a client for the API rooted at baseURL, e.g.
// "http://localhost:8080/api".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     zap.L().Named("client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) List(ctx context.Context, params ListParams) (ListPage, error) {
	q := url.Values{}
	if params.Search != "" {
		q.Set("search", params.Search)
	}
	if params.Page > 0 {
		q.Set("page", strconv.Itoa(params.Page))
	}
	if params.Limit > 0 {
		q.Set("limit", strconv.Itoa(params.Limit))
	}

	path := "/employees"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var raw struct {
		Employees  *[]Employee             `json:"employees"`
		Pagination response.PaginationMeta `json:"pagination"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, "", &raw); err != nil {
		return ListPage{}, err
	}

	// A body without an employees array is treated as no records.
	if raw.Employees == nil {
		return ListPage{Employees: []Employee{}}, nil
	}
	return ListPage{Employees: *raw.Employees, Pagination: raw.Pagination}, nil
}

func (c *Client) Get(ctx context.Context, id string) (Employee, error) {
	var emp Employee
	err := c.do(ctx, http.MethodGet, "/employees/"+url.PathEscape(id), nil, "", &emp)
	return emp, err
}

func (c *Client) Create(ctx context.Context, input EmployeeInput) (Employee, error) {
	body, contentType, err := encodeInput(input)
	if err != nil {
		return Employee{}, err
	}

	var emp Employee
	err = c.do(ctx, http.MethodPost, "/employees", body, contentType, &emp)
	return emp, err
}

func (c *Client) Update(ctx context.Context, id string, input EmployeeInput) (Employee, error) {
	body, contentType, err := encodeInput(input)
	if err != nil {
		return Employee{}, err
	}

	var emp Employee
	err = c.do(ctx, http.MethodPut, "/employees/"+url.PathEscape(id), body, contentType, &emp)
	return emp, err
}

// Delete reports whether a record was removed. Deleting an absent record is
// not an error.
func (c *Client) Delete(ctx context.Context, id string) (bool, error) {
	var out struct {
		Deleted bool `json:"deleted"`
	}
	err := c.do(ctx, http.MethodDelete, "/employees/"+url.PathEscape(id), nil, "", &out)
	return out.Deleted, err
}

func (c *Client) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	err := c.do(ctx, http.MethodGet, "/employees/stats", nil, "", &stats)
	return stats, err
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	op := method + " " + path

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed", zap.String("op", op), zap.Error(err))
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}

	c.logger.Debug("request done",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	var env envelope
	decodeErr := json.Unmarshal(payload, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		if decodeErr == nil && env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return apiErr
	}

	if decodeErr != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", decodeErr)}
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("decode data: %w", err)}
	}
	return nil
}

func encodeInput(input EmployeeInput) (io.Reader, string, error) {
	fields := map[string]string{
		"name":       input.Name,
		"email":      input.Email,
		"phone":      input.Phone,
		"department": input.Department,
		"salary":     input.Salary,
	}

	if input.ProfileImage == nil {
		data, err := json.Marshal(fields)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), "application/json", nil
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, key := range []string{"name", "email", "phone", "department", "salary"} {
		if err := w.WriteField(key, fields[key]); err != nil {
			return nil, "", err
		}
	}

	name := input.ImageName
	if name == "" {
		name = "profile-image"
	}
	part, err := w.CreateFormFile("profileImage", name)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, input.ProfileImage); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
