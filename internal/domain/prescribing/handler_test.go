package prescribing

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medisphere/portal/internal/platform/auth"
)

func actorContext(e *echo.Echo, method, target, body string, actor auth.Actor) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req = req.WithContext(auth.WithActor(req.Context(), actor))
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestHandler_Create(t *testing.T) {
	f := newFixture()
	h, e := NewHandler(f.svc), echo.New()
	doctor := auth.Actor{ID: uuid.New(), Role: auth.RoleDoctor}
	consult := f.inProgressConsultation(doctor.ID)

	body := `{"consultation_id":"` + consult.ID.String() + `","diagnosis":"Acute bronchitis","date":"2026-08-18",` +
		`"medications":[{"name":"Amoxicillin","dosage":"500mg","frequency":"three times daily","duration":"7 days"}]}`
	c, rec := actorContext(e, http.MethodPost, "/prescriptions", body, doctor)

	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var rx Prescription
	if err := json.Unmarshal(rec.Body.Bytes(), &rx); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if rx.Status != StatusActive {
		t.Errorf("expected active prescription, got %s", rx.Status)
	}
	if rx.PatientID != consult.PatientID {
		t.Error("expected patient taken from the consultation")
	}
	if len(f.orders.data) != 1 {
		t.Errorf("expected a pharmacy order spawned, got %d", len(f.orders.data))
	}
	if len(f.records.data) != 1 {
		t.Errorf("expected a consultation record written, got %d", len(f.records.data))
	}
}

func TestHandler_Create_NoMedications(t *testing.T) {
	f := newFixture()
	h, e := NewHandler(f.svc), echo.New()
	doctor := auth.Actor{ID: uuid.New(), Role: auth.RoleDoctor}
	consult := f.inProgressConsultation(doctor.ID)

	body := `{"consultation_id":"` + consult.ID.String() + `","diagnosis":"Acute bronchitis","medications":[]}`
	c, _ := actorContext(e, http.MethodPost, "/prescriptions", body, doctor)

	err := h.Create(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
	if len(f.orders.data) != 0 {
		t.Error("no order should be created for a rejected prescription")
	}
}

func TestHandler_Create_UnknownConsultation(t *testing.T) {
	f := newFixture()
	h, e := NewHandler(f.svc), echo.New()

	body := `{"consultation_id":"` + uuid.NewString() + `","diagnosis":"x","medications":[{"name":"Amoxicillin"}]}`
	c, _ := actorContext(e, http.MethodPost, "/prescriptions", body, auth.Actor{ID: uuid.New(), Role: auth.RoleDoctor})

	err := h.Create(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestHandler_Get_PharmacistAllowed(t *testing.T) {
	f := newFixture()
	h, e := NewHandler(f.svc), echo.New()
	rx := &Prescription{ID: uuid.New(), PatientID: uuid.New(), DoctorID: uuid.New(), Status: StatusActive}
	f.rx.data[rx.ID] = rx

	c, rec := actorContext(e, http.MethodGet, "/prescriptions/"+rx.ID.String(), "", auth.Actor{ID: uuid.New(), Role: auth.RolePharmacist})
	c.SetParamNames("id")
	c.SetParamValues(rx.ID.String())

	if err := h.Get(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
