package payroll_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-workforce/internal/access"
	"go-workforce/internal/middleware"
	"go-workforce/internal/payroll"
	payrollerrors "go-workforce/internal/payroll/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakePayrollService struct {
	UpsertFn  func(ctx context.Context, caller access.Caller, req payroll.UpsertPayrollRequest) (payroll.PayrollResponse, error)
	UpdateFn  func(ctx context.Context, caller access.Caller, id string, req payroll.UpdatePayrollRequest) (payroll.PayrollResponse, error)
	ListFn    func(ctx context.Context, caller access.Caller, q payroll.ListPayrollQuery) ([]payroll.PayrollResponse, error)
	GetByIDFn func(ctx context.Context, caller access.Caller, id string) (payroll.PayrollResponse, error)
	ExportFn  func(ctx context.Context, caller access.Caller, q payroll.ListPayrollQuery) ([]byte, error)
}

func (f *fakePayrollService) Upsert(ctx context.Context, caller access.Caller, req payroll.UpsertPayrollRequest) (payroll.PayrollResponse, error) {
	return f.UpsertFn(ctx, caller, req)
}
func (f *fakePayrollService) Update(ctx context.Context, caller access.Caller, id string, req payroll.UpdatePayrollRequest) (payroll.PayrollResponse, error) {
	return f.UpdateFn(ctx, caller, id, req)
}
func (f *fakePayrollService) List(ctx context.Context, caller access.Caller, q payroll.ListPayrollQuery) ([]payroll.PayrollResponse, error) {
	return f.ListFn(ctx, caller, q)
}
func (f *fakePayrollService) GetByID(ctx context.Context, caller access.Caller, id string) (payroll.PayrollResponse, error) {
	return f.GetByIDFn(ctx, caller, id)
}
func (f *fakePayrollService) Export(ctx context.Context, caller access.Caller, q payroll.ListPayrollQuery) ([]byte, error) {
	return f.ExportFn(ctx, caller, q)
}

type envelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newTestContext(method, target, body string, caller *access.Caller) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	c.Request = req

	if caller != nil {
		c.Set(string(middleware.ContextEmployeeID), caller.EmployeeID.String())
		c.Set(string(middleware.ContextRole), string(caller.Role))
	}
	return c, w
}

func TestPayrollHandler_Upsert(t *testing.T) {
	caller := hrCaller()
	employeeID := uuid.New().String()

	t.Run("month as name and amounts as numbers", func(t *testing.T) {
		svc := &fakePayrollService{
			UpsertFn: func(ctx context.Context, got access.Caller, req payroll.UpsertPayrollRequest) (payroll.PayrollResponse, error) {
				assert.Equal(t, caller, got)
				assert.Equal(t, payroll.MonthValue("March"), req.Month)
				assert.Equal(t, "50000", req.BasicSalary.String())
				assert.Nil(t, req.IncomeTax)
				return payroll.PayrollResponse{ID: uuid.New().String(), NetSalary: "50000.00"}, nil
			},
		}
		h := payroll.NewHandler(svc)
		body := `{"employee_id":"` + employeeID + `","month":"March","year":2024,"basic_salary":50000}`
		c, w := newTestContext(http.MethodPost, "/api/v1/payrolls", body, &caller)

		h.Upsert(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("malformed amount", func(t *testing.T) {
		h := payroll.NewHandler(&fakePayrollService{})
		c, w := newTestContext(http.MethodPost, "/api/v1/payrolls", `{"basic_salary":"lots"}`, &caller)

		h.Upsert(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("forbidden", func(t *testing.T) {
		svc := &fakePayrollService{
			UpsertFn: func(ctx context.Context, got access.Caller, req payroll.UpsertPayrollRequest) (payroll.PayrollResponse, error) {
				return payroll.PayrollResponse{}, payrollerrors.ErrForbidden
			},
		}
		h := payroll.NewHandler(svc)
		employee := employeeCaller()
		c, w := newTestContext(http.MethodPost, "/api/v1/payrolls", `{"month":3}`, &employee)

		h.Upsert(c)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestPayrollHandler_Update(t *testing.T) {
	caller := hrCaller()
	id := uuid.New().String()
	svc := &fakePayrollService{
		UpdateFn: func(ctx context.Context, got access.Caller, gotID string, req payroll.UpdatePayrollRequest) (payroll.PayrollResponse, error) {
			assert.Equal(t, id, gotID)
			assert.Equal(t, "2000", req.IncomeTax.String())
			assert.Nil(t, req.BasicSalary)
			assert.Nil(t, req.Remarks)
			return payroll.PayrollResponse{ID: id, NetSalary: "55000.00"}, nil
		},
	}
	h := payroll.NewHandler(svc)
	c, w := newTestContext(http.MethodPut, "/api/v1/payrolls/"+id, `{"income_tax":2000}`, &caller)
	c.Params = gin.Params{{Key: "id", Value: id}}

	h.Update(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var env envelope
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var resp payroll.PayrollResponse
	assert.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, "55000.00", resp.NetSalary)
}

func TestPayrollHandler_GetById(t *testing.T) {
	caller := employeeCaller()
	svc := &fakePayrollService{
		GetByIDFn: func(ctx context.Context, got access.Caller, id string) (payroll.PayrollResponse, error) {
			return payroll.PayrollResponse{}, payrollerrors.ErrPayrollNotFound
		},
	}
	h := payroll.NewHandler(svc)
	c, w := newTestContext(http.MethodGet, "/api/v1/payrolls/x", "", &caller)
	c.Params = gin.Params{{Key: "id", Value: "x"}}

	h.GetById(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPayrollHandler_GetAll(t *testing.T) {
	caller := employeeCaller()
	svc := &fakePayrollService{
		ListFn: func(ctx context.Context, got access.Caller, q payroll.ListPayrollQuery) ([]payroll.PayrollResponse, error) {
			assert.Equal(t, "March", q.Month)
			assert.Equal(t, "2024", q.Year)
			return []payroll.PayrollResponse{{ID: "a"}}, nil
		},
	}
	h := payroll.NewHandler(svc)
	c, w := newTestContext(http.MethodGet, "/api/v1/payrolls?month=March&year=2024", "", &caller)

	h.GetAll(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPayrollHandler_Export(t *testing.T) {
	caller := hrCaller()
	svc := &fakePayrollService{
		ExportFn: func(ctx context.Context, got access.Caller, q payroll.ListPayrollQuery) ([]byte, error) {
			return []byte("PK"), nil
		},
	}
	h := payroll.NewHandler(svc)
	c, w := newTestContext(http.MethodGet, "/api/v1/payrolls/export", "", &caller)

	h.Export(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	assert.Equal(t, "PK", w.Body.String())
}
