package client_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Algoraver22/employee-hr-platform/internal/client"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *client.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return client.New(srv.URL+"/api", client.WithLogger(zap.NewNop()))
}

func TestClient_List(t *testing.T) {
	t.Run("decodes page and sends query", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/employees", r.URL.Path)
			assert.Equal(t, "ali", r.URL.Query().Get("search"))
			assert.Equal(t, "2", r.URL.Query().Get("page"))
			assert.Equal(t, "5", r.URL.Query().Get("limit"))
			_, _ = io.WriteString(w, `{"success":true,"data":{"employees":[{"_id":"e-1","name":"Alice"}],"pagination":{"currentPage":2,"pageSize":5,"totalEmployees":6,"totalPages":2}}}`)
		})

		page, err := c.List(context.Background(), client.ListParams{Search: "ali", Page: 2, Limit: 5})

		require.NoError(t, err)
		require.Len(t, page.Employees, 1)
		assert.Equal(t, "e-1", page.Employees[0].ID)
		assert.Equal(t, 2, page.Pagination.TotalPages)
	})

	t.Run("missing employees array is an empty page", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"success":true,"data":{"pagination":{"currentPage":1,"pageSize":10,"totalEmployees":4,"totalPages":1}}}`)
		})

		page, err := c.List(context.Background(), client.ListParams{})

		require.NoError(t, err)
		assert.NotNil(t, page.Employees)
		assert.Empty(t, page.Employees)
		assert.Zero(t, page.Pagination.TotalEmployees)
	})

	t.Run("server error is an APIError", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = io.WriteString(w, `{"success":false,"message":"Record store is unavailable","error":{"code":"SERVICE_UNAVAILABLE","message":"Record store is unavailable"}}`)
		})

		_, err := c.List(context.Background(), client.ListParams{})

		var apiErr *client.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "SERVICE_UNAVAILABLE", apiErr.Code)
		assert.True(t, client.IsUnavailable(err))
	})
}

func TestClient_GetNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"success":false,"error":{"code":"NOT_FOUND","message":"Employee not found"}}`)
	})

	_, err := c.Get(context.Background(), "missing")

	assert.True(t, client.IsNotFound(err))
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := client.New(url, client.WithLogger(zap.NewNop()))
	_, err := c.Delete(context.Background(), "e-1")

	var transportErr *client.TransportError
	assert.ErrorAs(t, err, &transportErr)
	assert.True(t, client.IsUnavailable(err))
	assert.False(t, client.IsNotFound(err))
}

func TestClient_CreateJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Alice", body["name"])
		assert.Equal(t, "5000", body["salary"])

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"success":true,"data":{"_id":"e-1","name":"Alice","salary":"5000.00"}}`)
	})

	emp, err := c.Create(context.Background(), client.EmployeeInput{
		Name: "Alice", Email: "alice@example.com", Phone: "1", Department: "Eng", Salary: "5000",
	})

	require.NoError(t, err)
	assert.Equal(t, "e-1", emp.ID)
	assert.Equal(t, "5000.00", emp.Salary)
}

func TestClient_UpdateMultipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/employees/e-1", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Bob", r.FormValue("name"))

		file, header, err := r.FormFile("profileImage")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "bob.png", header.Filename)

		_, _ = io.WriteString(w, `{"success":true,"data":{"_id":"e-1","name":"Bob","profileImage":"e-1/x.png"}}`)
	})

	emp, err := c.Update(context.Background(), "e-1", client.EmployeeInput{
		Name: "Bob", Email: "bob@example.com", Phone: "2", Department: "Ops", Salary: "10",
		ProfileImage: strings.NewReader("png-bytes"), ImageName: "bob.png",
	})

	require.NoError(t, err)
	assert.Equal(t, "e-1/x.png", emp.ProfileImage)
}

func TestClient_DeleteAndStats(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodDelete:
			_, _ = io.WriteString(w, `{"success":true,"data":{"deleted":false}}`)
		case r.URL.Path == "/api/employees/stats":
			_, _ = io.WriteString(w, `{"success":true,"data":{"totalEmployees":2,"departments":{"Eng":2},"departmentCount":1,"averageSalary":"10.00","totalSalary":"20.00"}}`)
		default:
			w.WriteHeader(http.StatusTeapot)
		}
	})

	deleted, err := c.Delete(context.Background(), "gone")
	require.NoError(t, err)
	assert.False(t, deleted)

	stats, err := c.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalEmployees)
	assert.Equal(t, "10.00", stats.AverageSalary)
}
