package employee_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Algoraver22/employee-hr-platform/internal/employee"
	employeeerrors "github.com/Algoraver22/employee-hr-platform/internal/employee/errors"
	employeeMock "github.com/Algoraver22/employee-hr-platform/internal/employee/mock"
	"github.com/Algoraver22/employee-hr-platform/internal/shared/apperror"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

type fakeEmployeeService struct {
	ListFn             func(ctx context.Context, q employee.ListQuery) (employee.EmployeeListResponse, error)
	GetByIDFn          func(ctx context.Context, id string) (employee.EmployeeResponse, error)
	CreateFn           func(ctx context.Context, req employee.EmployeeRequest) (employee.EmployeeResponse, error)
	UpdateFn           func(ctx context.Context, id string, req employee.EmployeeRequest) (employee.EmployeeResponse, error)
	DeleteFn           func(ctx context.Context, id string) (bool, error)
	OpenProfileImageFn func(ctx context.Context, id string) (io.ReadCloser, string, error)
}

func (f *fakeEmployeeService) List(ctx context.Context, q employee.ListQuery) (employee.EmployeeListResponse, error) {
	return f.ListFn(ctx, q)
}
func (f *fakeEmployeeService) GetByID(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	return f.GetByIDFn(ctx, id)
}
func (f *fakeEmployeeService) Create(ctx context.Context, req employee.EmployeeRequest) (employee.EmployeeResponse, error) {
	return f.CreateFn(ctx, req)
}
func (f *fakeEmployeeService) Update(ctx context.Context, id string, req employee.EmployeeRequest) (employee.EmployeeResponse, error) {
	return f.UpdateFn(ctx, id, req)
}
func (f *fakeEmployeeService) Delete(ctx context.Context, id string) (bool, error) {
	return f.DeleteFn(ctx, id)
}
func (f *fakeEmployeeService) OpenProfileImage(ctx context.Context, id string) (io.ReadCloser, string, error) {
	return f.OpenProfileImageFn(ctx, id)
}

func setupRouter(h *employee.Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	employee.RegisterRoutes(r.Group("/api"), h, employee.RouteOptions{MutationRPS: 1000, MutationBurst: 1000})
	return r
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, body *bytes.Buffer) envelope {
	t.Helper()
	var env envelope
	assert.NoError(t, json.Unmarshal(body.Bytes(), &env))
	return env
}

func TestEmployeeHandler_GetAll(t *testing.T) {
	t.Run("parses query and returns list envelope", func(t *testing.T) {
		svc := &fakeEmployeeService{
			ListFn: func(_ context.Context, q employee.ListQuery) (employee.EmployeeListResponse, error) {
				assert.Equal(t, employee.ListQuery{Search: "eng", Page: 2, Limit: 5}, q)
				resp := employee.EmployeeListResponse{
					Employees: []employee.EmployeeResponse{{ID: "emp-1", Name: "Jane"}},
				}
				resp.Pagination.CurrentPage = 2
				resp.Pagination.PageSize = 5
				resp.Pagination.TotalEmployees = 6
				resp.Pagination.TotalPages = 2
				return resp, nil
			},
		}
		r := setupRouter(employee.NewHandler(svc))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/employees?search=eng&page=2&limit=5", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w.Body)
		assert.True(t, env.Success)

		var data struct {
			Employees  []map[string]any `json:"employees"`
			Pagination map[string]any   `json:"pagination"`
		}
		assert.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, "emp-1", data.Employees[0]["_id"])
		assert.Equal(t, float64(2), data.Pagination["totalPages"])
		assert.Equal(t, float64(6), data.Pagination["totalEmployees"])
	})

	t.Run("invalid paging falls back to defaults", func(t *testing.T) {
		svc := &fakeEmployeeService{
			ListFn: func(_ context.Context, q employee.ListQuery) (employee.EmployeeListResponse, error) {
				assert.Equal(t, 1, q.Page)
				assert.Equal(t, 10, q.Limit)
				return employee.EmployeeListResponse{Employees: []employee.EmployeeResponse{}}, nil
			},
		}
		r := setupRouter(employee.NewHandler(svc))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/employees?page=abc&limit=-4", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("store unavailable -> 503", func(t *testing.T) {
		svc := &fakeEmployeeService{
			ListFn: func(context.Context, employee.ListQuery) (employee.EmployeeListResponse, error) {
				return employee.EmployeeListResponse{}, employeeerrors.ErrStoreUnavailable
			},
		}
		r := setupRouter(employee.NewHandler(svc))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/employees", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		env := decodeEnvelope(t, w.Body)
		assert.False(t, env.Success)
		assert.Equal(t, apperror.CodeServiceUnavailable, env.Error.Code)
	})
}

func TestEmployeeHandler_GetByID(t *testing.T) {
	svc := &fakeEmployeeService{
		GetByIDFn: func(_ context.Context, id string) (employee.EmployeeResponse, error) {
			if id == "emp-1" {
				return employee.EmployeeResponse{ID: id, Name: "Jane"}, nil
			}
			return employee.EmployeeResponse{}, employeeerrors.ErrEmployeeNotFound
		},
	}
	r := setupRouter(employee.NewHandler(svc))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/employees/emp-1", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"_id":"emp-1"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/employees/emp-x", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperror.CodeNotFound, decodeEnvelope(t, w.Body).Error.Code)
}

func TestEmployeeHandler_Create(t *testing.T) {
	t.Run("json body", func(t *testing.T) {
		svc := &fakeEmployeeService{
			CreateFn: func(_ context.Context, req employee.EmployeeRequest) (employee.EmployeeResponse, error) {
				assert.Equal(t, "John Doe", req.Name)
				assert.Equal(t, employee.SalaryValue("4200.5"), req.Salary)
				assert.Nil(t, req.ProfileImage)
				return employee.EmployeeResponse{ID: "emp-1", Name: req.Name, Salary: "4200.50"}, nil
			},
		}
		r := setupRouter(employee.NewHandler(svc))

		body := `{"name":"John Doe","email":"john@example.com","phone":"555","department":"Ops","salary":4200.5}`
		req := httptest.NewRequest(http.MethodPost, "/api/employees", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), "John Doe")
	})

	t.Run("multipart body with profile image", func(t *testing.T) {
		svc := &fakeEmployeeService{
			CreateFn: func(_ context.Context, req employee.EmployeeRequest) (employee.EmployeeResponse, error) {
				assert.Equal(t, "Ana", req.Name)
				if assert.NotNil(t, req.ProfileImage) {
					data, _ := io.ReadAll(req.ProfileImage)
					assert.Equal(t, "fake-png", string(data))
				}
				return employee.EmployeeResponse{ID: "emp-2", Name: req.Name, ProfileImage: "emp-2/a.png"}, nil
			},
		}
		r := setupRouter(employee.NewHandler(svc))

		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		for k, v := range map[string]string{
			"name": "Ana", "email": "ana@example.com", "phone": "555", "department": "HR", "salary": "3100",
		} {
			_ = mw.WriteField(k, v)
		}
		fw, _ := mw.CreateFormFile("profileImage", "ana.png")
		_, _ = fw.Write([]byte("fake-png"))
		_ = mw.Close()

		req := httptest.NewRequest(http.MethodPost, "/api/employees", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), "emp-2/a.png")
	})

	t.Run("validation error", func(t *testing.T) {
		svc := &fakeEmployeeService{}
		r := setupRouter(employee.NewHandler(svc))

		req := httptest.NewRequest(http.MethodPost, "/api/employees", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, apperror.CodeInvalidInput, decodeEnvelope(t, w.Body).Error.Code)
	})

	t.Run("duplicate email -> 409", func(t *testing.T) {
		svc := &fakeEmployeeService{
			CreateFn: func(context.Context, employee.EmployeeRequest) (employee.EmployeeResponse, error) {
				return employee.EmployeeResponse{}, employeeerrors.ErrEmployeeAlreadyExists
			},
		}
		r := setupRouter(employee.NewHandler(svc))

		body := `{"name":"John","email":"john@example.com","phone":"555","department":"Ops","salary":"1"}`
		req := httptest.NewRequest(http.MethodPost, "/api/employees", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("unexpected error -> 500 without leaking detail", func(t *testing.T) {
		svc := &fakeEmployeeService{
			CreateFn: func(context.Context, employee.EmployeeRequest) (employee.EmployeeResponse, error) {
				return employee.EmployeeResponse{}, errors.New("pq: secret detail")
			},
		}
		r := setupRouter(employee.NewHandler(svc))

		body := `{"name":"John","email":"john@example.com","phone":"555","department":"Ops","salary":"1"}`
		req := httptest.NewRequest(http.MethodPost, "/api/employees", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "secret")
	})
}

func TestEmployeeHandler_Update(t *testing.T) {
	svc := &fakeEmployeeService{
		UpdateFn: func(_ context.Context, id string, req employee.EmployeeRequest) (employee.EmployeeResponse, error) {
			if id != "emp-1" {
				return employee.EmployeeResponse{}, employeeerrors.ErrEmployeeNotFound
			}
			return employee.EmployeeResponse{ID: id, Name: req.Name}, nil
		},
	}
	r := setupRouter(employee.NewHandler(svc))
	body := `{"name":"New","email":"new@example.com","phone":"555","department":"Ops","salary":"10"}`

	req := httptest.NewRequest(http.MethodPut, "/api/employees/emp-1", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"New"`)

	req = httptest.NewRequest(http.MethodPut, "/api/employees/missing", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEmployeeHandler_Delete(t *testing.T) {
	calls := 0
	svc := &fakeEmployeeService{
		DeleteFn: func(_ context.Context, id string) (bool, error) {
			calls++
			return calls == 1, nil
		},
	}
	r := setupRouter(employee.NewHandler(svc))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/employees/emp-1", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"deleted":true}`, string(decodeEnvelope(t, w.Body).Data))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/employees/emp-1", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"deleted":false}`, string(decodeEnvelope(t, w.Body).Data))
}

func TestEmployeeHandler_ProfileImage(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := employeeMock.NewMockService(ctrl)
	r := setupRouter(employee.NewHandler(svc))

	svc.EXPECT().
		OpenProfileImage(gomock.Any(), "emp-1").
		Return(io.NopCloser(strings.NewReader("png-data")), "image/png", nil)
	svc.EXPECT().
		OpenProfileImage(gomock.Any(), "emp-2").
		Return(nil, "", employeeerrors.ErrNoProfileImage)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/employees/emp-1/profile-image", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "png-data", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/employees/emp-2/profile-image", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
