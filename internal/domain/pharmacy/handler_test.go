package pharmacy

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medisphere/portal/internal/platform/auth"
)

func newTestHandler() (*Handler, *echo.Echo, *mockOrderRepo) {
	svc, orders, _ := newTestService()
	return NewHandler(svc), echo.New(), orders
}

func orderRequest(e *echo.Echo, method, target string, actor auth.Actor, id uuid.UUID) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, nil)
	req = req.WithContext(auth.WithActor(req.Context(), actor))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id.String())
	return c, rec
}

func TestHandler_Claim(t *testing.T) {
	h, e, orders := newTestHandler()
	order := &PrescriptionOrder{ID: uuid.New(), PrescriptionID: uuid.New(), PatientID: uuid.New(), Status: StatusPending}
	orders.data[order.ID] = order
	pharmacist := auth.Actor{ID: uuid.New(), Role: auth.RolePharmacist}

	c, rec := orderRequest(e, http.MethodPut, "/orders/"+order.ID.String()+"/claim", pharmacist, order.ID)
	if err := h.Claim(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var o PrescriptionOrder
	if err := json.Unmarshal(rec.Body.Bytes(), &o); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if o.PharmacistID == nil || *o.PharmacistID != pharmacist.ID {
		t.Error("expected order claimed by the pharmacist")
	}
}

func TestHandler_Claim_AlreadyClaimed(t *testing.T) {
	h, e, orders := newTestHandler()
	other := uuid.New()
	order := &PrescriptionOrder{ID: uuid.New(), PrescriptionID: uuid.New(), PatientID: uuid.New(), PharmacistID: &other, Status: StatusPending}
	orders.data[order.ID] = order

	c, _ := orderRequest(e, http.MethodPut, "/orders/"+order.ID.String()+"/claim", auth.Actor{ID: uuid.New(), Role: auth.RolePharmacist}, order.ID)
	err := h.Claim(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
}

func TestHandler_Process_BeforeClaim(t *testing.T) {
	h, e, orders := newTestHandler()
	order := &PrescriptionOrder{ID: uuid.New(), PrescriptionID: uuid.New(), PatientID: uuid.New(), Status: StatusPending}
	orders.data[order.ID] = order

	c, _ := orderRequest(e, http.MethodPut, "/orders/"+order.ID.String()+"/process", auth.Actor{ID: uuid.New(), Role: auth.RolePharmacist}, order.ID)
	err := h.Process(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusConflict {
		t.Fatalf("expected 409 for an unclaimed order, got %v", err)
	}
}

func TestHandler_Complete_UnknownOrder(t *testing.T) {
	h, e, _ := newTestHandler()

	c, _ := orderRequest(e, http.MethodPut, "/orders/x/complete", auth.Actor{ID: uuid.New(), Role: auth.RolePharmacist}, uuid.New())
	err := h.Complete(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestHandler_List_PatientSeesOwnOrders(t *testing.T) {
	h, e, orders := newTestHandler()
	patient := auth.Actor{ID: uuid.New(), Role: auth.RolePatient}
	mine := &PrescriptionOrder{ID: uuid.New(), PrescriptionID: uuid.New(), PatientID: patient.ID, Status: StatusPending}
	other := &PrescriptionOrder{ID: uuid.New(), PrescriptionID: uuid.New(), PatientID: uuid.New(), Status: StatusPending}
	orders.data[mine.ID] = mine
	orders.data[other.ID] = other

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req = req.WithContext(auth.WithActor(req.Context(), patient))
	rec := httptest.NewRecorder()
	if err := h.List(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var resp struct {
		Data  []*PrescriptionOrder `json:"data"`
		Total int                  `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Total != 1 || len(resp.Data) != 1 || resp.Data[0].ID != mine.ID {
		t.Fatalf("expected only the patient's order, got total=%d", resp.Total)
	}
}
