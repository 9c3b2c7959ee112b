package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestListCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "eng", r.URL.Query().Get("search"))
		_, _ = io.WriteString(w, `{"success":true,"data":{"employees":[{"_id":"e-1","name":"Alice","department":"Engineering","salary":"10.00"}],"pagination":{"currentPage":1,"pageSize":10,"totalEmployees":1,"totalPages":1}}}`)
	}))
	defer srv.Close()

	out, err := runCmd(t, "list", "--base-url", srv.URL, "--search", "eng")

	require.NoError(t, err)
	assert.Contains(t, out, "Alice")
	assert.Contains(t, out, "page 1/1, 1 employees")
}

func TestAddCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "Alice", body["name"])
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, `{"success":true,"data":{"_id":"e-9","name":"Alice"}}`)
		default:
			_, _ = io.WriteString(w, `{"success":true,"data":{"employees":[{"_id":"e-9","name":"Alice"}],"pagination":{"currentPage":1,"pageSize":10,"totalEmployees":1,"totalPages":1}}}`)
		}
	}))
	defer srv.Close()

	out, err := runCmd(t, "add", "--base-url", srv.URL,
		"--name", "Alice", "--email", "alice@example.com", "--phone", "1",
		"--department", "Engineering", "--salary", "5000")

	require.NoError(t, err)
	assert.Contains(t, out, "created employee e-9")
}

func TestAddCommandMissingFields(t *testing.T) {
	_, err := runCmd(t, "add", "--base-url", "http://127.0.0.1:1", "--name", "Alice")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required fields")
}

func TestDeleteCommandAbsent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		_, _ = io.WriteString(w, `{"success":true,"data":{"deleted":false}}`)
	}))
	defer srv.Close()

	out, err := runCmd(t, "delete", "e-1", "--base-url", srv.URL)

	require.NoError(t, err)
	assert.Contains(t, out, "already absent")
}
