package crm

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"contratos_backend/internal/sales/domain"
	"contratos_backend/platform/apperr"
	"contratos_backend/platform/logger"
)

type testCRMConfig struct {
	baseURL string
}

func (c testCRMConfig) GetCRMBaseURL() string               { return c.baseURL }
func (c testCRMConfig) GetCRMAPIKey() string                { return "test-key" }
func (c testCRMConfig) GetCRMFetchTimeout() time.Duration   { return 2 * time.Second }
func (c testCRMConfig) GetCRMActionTimeout() time.Duration  { return 2 * time.Second }
func (c testCRMConfig) GetCRMDeleteTimeout() time.Duration  { return time.Second }

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(testCRMConfig{baseURL: server.URL}, logger.New("test")), server
}

func TestFetchSales_ParsesEnvelope(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sales" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("auth header = %q", got)
		}
		if got := r.URL.Query().Get("dateStart"); got != "2025-03-01" {
			t.Errorf("dateStart = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"records":[{"id":"S-1","name":"Carolina"},{"id":"S-2"}]}`))
	}))

	records, err := client.FetchSales(context.Background(), "2025-03-01", "2025-03-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 || records[0].ID != "S-1" {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestFetchSales_FailureEnvelopeIsUnavailable(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"error":"base de datos fuera de línea"}`))
	}))

	_, err := client.FetchSales(context.Background(), "", "")
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}

func TestFetchSales_TransportErrorIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()
	client := NewClient(testCRMConfig{baseURL: server.URL}, logger.New("test"))

	_, err := client.FetchSales(context.Background(), "", "")
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}

func TestCreateContract_ConflictStatusIsDuplicate(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))

	err := client.CreateContract(context.Background(), CreateContractParams{SaleID: "S-1", ContractNumber: "2025-001"})
	if !errors.Is(err, ErrDuplicateNumber) {
		t.Fatalf("expected ErrDuplicateNumber, got %v", err)
	}
}

func TestCreateContract_DuplicateMessageIsDuplicate(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"error":"el número de contrato ya existe"}`))
	}))

	err := client.CreateContract(context.Background(), CreateContractParams{SaleID: "S-1", ContractNumber: "2025-001"})
	if !errors.Is(err, ErrDuplicateNumber) {
		t.Fatalf("expected ErrDuplicateNumber, got %v", err)
	}
}

func TestDeleteSale_RemoteNotFoundIsSuccess(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	if err := client.DeleteSale(context.Background(), "S-1"); err != nil {
		t.Fatalf("404 on delete must be success, got %v", err)
	}
}

func TestUpdateSale_SendsFullRecord(t *testing.T) {
	var gotBody string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		_, _ = w.Write([]byte(`{"success":true}`))
	}))

	record := domain.SaleRecord{ID: "S-1", Name: "Carolina Muñoz"}
	if err := client.UpdateSale(context.Background(), record); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(gotBody, `"action":"update"`) || !strings.Contains(gotBody, `"Carolina Muñoz"`) {
		t.Fatalf("unexpected payload: %s", gotBody)
	}
}
