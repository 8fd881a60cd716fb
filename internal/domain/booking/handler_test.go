package booking

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sanatorium/sanatorium/internal/platform/apierr"
	"github.com/sanatorium/sanatorium/internal/platform/auth"
)

func newTestServer(f *fixture) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = apierr.HTTPErrorHandler(zerolog.Nop())
	NewHandler(f.svc).RegisterRoutes(e.Group(""))
	return e
}

func doRequest(t *testing.T, e *echo.Echo, method, target, body string, p auth.Principal) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	req = req.WithContext(auth.ContextWithPrincipal(req.Context(), p))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func patientPrincipal(userID string) auth.Principal {
	return auth.Principal{UserID: userID, Role: auth.RolePatient}
}

func doctorPrincipal() auth.Principal {
	return auth.Principal{UserID: "doc", Role: auth.RoleDoctor}
}

func TestHandlerCreateRecord(t *testing.T) {
	f := newFixture()
	patientID := f.addPatient("u1")
	e := newTestServer(f)

	rec := doRequest(t, e, http.MethodPost, "/records", `{"name":"checkup"}`, patientPrincipal("u1"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body %s", rec.Code, rec.Body)
	}
	var got Record
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.PatientID != patientID {
		t.Errorf("patient_id = %s, want %s", got.PatientID, patientID)
	}
	if got.Done {
		t.Error("new record should not be done")
	}
}

func TestHandlerCreateRecordForbiddenForStaff(t *testing.T) {
	f := newFixture()
	e := newTestServer(f)

	rec := doRequest(t, e, http.MethodPost, "/records", `{"name":"x"}`, doctorPrincipal())
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403; body %s", rec.Code, rec.Body)
	}
}

func TestHandlerGetRecordInvalidID(t *testing.T) {
	f := newFixture()
	f.addPatient("u1")
	e := newTestServer(f)

	rec := doRequest(t, e, http.MethodGet, "/records/not-a-uuid", "", patientPrincipal("u1"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandlerGetRecordCrossPatient(t *testing.T) {
	f := newFixture()
	ownerID := f.addPatient("owner")
	f.addPatient("other")
	r := &Record{ID: uuid.New(), PatientID: ownerID}
	f.store.records[r.ID] = r
	e := newTestServer(f)

	rec := doRequest(t, e, http.MethodGet, "/records/"+r.ID.String(), "", patientPrincipal("other"))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404; body %s", rec.Code, rec.Body)
	}
	if !strings.Contains(rec.Body.String(), "Not found.") {
		t.Errorf("body = %s, want not-found detail", rec.Body)
	}
}

func TestHandlerUpdateRecordRoles(t *testing.T) {
	f := newFixture()
	patientID := f.addPatient("u1")
	r := &Record{ID: uuid.New(), PatientID: patientID}
	f.store.records[r.ID] = r
	e := newTestServer(f)

	rec := doRequest(t, e, http.MethodPatch, "/records/"+r.ID.String(), `{"done":true}`, patientPrincipal("u1"))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("patient patch: status = %d, want 403", rec.Code)
	}

	rec = doRequest(t, e, http.MethodPatch, "/records/"+r.ID.String(), `{"done":true}`, doctorPrincipal())
	if rec.Code != http.StatusOK {
		t.Fatalf("doctor patch: status = %d, want 200; body %s", rec.Code, rec.Body)
	}
	var got Record
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !got.Done {
		t.Error("record should be marked done")
	}
}

func TestHandlerDeleteRecord(t *testing.T) {
	f := newFixture()
	patientID := f.addPatient("u1")
	r := &Record{ID: uuid.New(), PatientID: patientID}
	f.store.records[r.ID] = r
	e := newTestServer(f)

	rec := doRequest(t, e, http.MethodDelete, "/records/"+r.ID.String(), "", doctorPrincipal())
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if len(f.store.records) != 0 {
		t.Error("record should be deleted")
	}
}

func TestHandlerCreateServiceRecordValidation(t *testing.T) {
	f := newFixture()
	f.addPatient("u1")
	e := newTestServer(f)

	rec := doRequest(t, e, http.MethodPost, "/service_records", `{"name":"x"}`, patientPrincipal("u1"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body %s", rec.Code, rec.Body)
	}
	var body struct {
		Errors map[string]string `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Errors["service_id"] != "this field is required" {
		t.Errorf("errors = %v, want required service_id", body.Errors)
	}
}

func TestHandlerCreateServiceRecordUnknownService(t *testing.T) {
	f := newFixture()
	f.addPatient("u1")
	e := newTestServer(f)

	missing := uuid.New()
	rec := doRequest(t, e, http.MethodPost, "/service_records",
		`{"name":"x","service_id":"`+missing.String()+`"}`, patientPrincipal("u1"))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404; body %s", rec.Code, rec.Body)
	}
}

func TestHandlerCreateStaffRecordUnqualified(t *testing.T) {
	f := newFixture()
	f.addPatient("u1")
	serviceID := f.addService()
	personaID := f.addMedPersona()
	e := newTestServer(f)

	rec := doRequest(t, e, http.MethodPost, "/medpersona_service_records",
		`{"name":"x","service_id":"`+serviceID.String()+`","medpersona_id":"`+personaID.String()+`"}`,
		patientPrincipal("u1"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body %s", rec.Code, rec.Body)
	}
	var body struct {
		Errors map[string]string `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.Contains(body.Errors["medpersona_id"], "does not have service") {
		t.Errorf("errors = %v, want qualification error on medpersona_id", body.Errors)
	}
	if len(f.store.records)+len(f.store.services)+len(f.store.links) != 0 {
		t.Error("rejected booking must leave nothing behind")
	}
}

func TestHandlerCreateStaffRecordFullChain(t *testing.T) {
	f := newFixture()
	f.addPatient("u1")
	serviceID := f.addService()
	personaID := f.addMedPersona()
	f.qualify(serviceID, personaID)
	e := newTestServer(f)

	rec := doRequest(t, e, http.MethodPost, "/medpersona_service_records",
		`{"name":"ultrasound","service_id":"`+serviceID.String()+`","medpersona_id":"`+personaID.String()+`"}`,
		patientPrincipal("u1"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body %s", rec.Code, rec.Body)
	}
	var got StaffRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.StaffLink == nil || got.StaffLink.MedPersonaID != personaID {
		t.Errorf("staff link = %+v, want medpersona %s", got.StaffLink, personaID)
	}
}

func TestHandlerListRecordsBadFilter(t *testing.T) {
	f := newFixture()
	f.addPatient("u1")
	e := newTestServer(f)

	rec := doRequest(t, e, http.MethodGet, "/records?date_start=yesterday", "", patientPrincipal("u1"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body %s", rec.Code, rec.Body)
	}
}

func TestHandlerListRecordsPagination(t *testing.T) {
	f := newFixture()
	patientID := f.addPatient("u1")
	for i := 0; i < 3; i++ {
		r := &Record{ID: uuid.New(), PatientID: patientID}
		f.store.records[r.ID] = r
	}
	e := newTestServer(f)

	rec := doRequest(t, e, http.MethodGet, "/records?limit=2", "", patientPrincipal("u1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body %s", rec.Code, rec.Body)
	}
	var body struct {
		Data  []json.RawMessage `json:"data"`
		Total int               `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Total != 3 || len(body.Data) != 2 {
		t.Errorf("got %d items (total %d), want 2 of 3", len(body.Data), body.Total)
	}
}
