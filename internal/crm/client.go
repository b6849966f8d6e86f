// Package crm is the outbound client for the external CRM, the system of
// record for sales. Every call is bounded by a per-operation timeout after
// which it is treated as failed, not hung. A success:false envelope and a
// transport error surface identically to callers.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"contratos_backend/internal/sales/domain"
	"contratos_backend/platform/apperr"
	"contratos_backend/platform/config"
	"contratos_backend/platform/logger"
)

// ErrDuplicateNumber is returned when the CRM rejects a contract creation
// because the number is already taken. Callers treat it as recoverable:
// recompute and retry once.
var ErrDuplicateNumber = errors.New("contract number already exists")

// Client talks to the CRM over HTTP.
type Client struct {
	baseURL       string
	apiKey        string
	http          *http.Client
	fetchTimeout  time.Duration
	actionTimeout time.Duration
	deleteTimeout time.Duration
	log           *logger.Logger
}

// NewClient creates a CRM client from configuration.
func NewClient(cfg config.CRMConfig, log *logger.Logger) *Client {
	return &Client{
		baseURL:       strings.TrimRight(cfg.GetCRMBaseURL(), "/"),
		apiKey:        cfg.GetCRMAPIKey(),
		http:          &http.Client{},
		fetchTimeout:  orDefault(cfg.GetCRMFetchTimeout(), 180*time.Second),
		actionTimeout: orDefault(cfg.GetCRMActionTimeout(), 15*time.Second),
		deleteTimeout: orDefault(cfg.GetCRMDeleteTimeout(), 5*time.Second),
		log:           log,
	}
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}

type feedResponse struct {
	Success bool                `json:"success"`
	Records []domain.SaleRecord `json:"records"`
	Error   string              `json:"error,omitempty"`
}

type actionResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// FetchSales retrieves the sale records for the given date window. Empty
// bounds fetch the full dataset. The call is bounded by the bulk fetch
// timeout; the dataset can be large.
func (c *Client) FetchSales(ctx context.Context, dateStart, dateEnd string) ([]domain.SaleRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	query := url.Values{}
	if dateStart != "" {
		query.Set("dateStart", dateStart)
	}
	if dateEnd != "" {
		query.Set("dateEnd", dateEnd)
	}

	endpoint := c.baseURL + "/sales"
	if encoded := query.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "CRM no disponible", err).WithOp("crm.FetchSales")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, c.statusError("crm.FetchSales", resp)
	}

	var envelope feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "respuesta CRM inválida", err).WithOp("crm.FetchSales")
	}
	if !envelope.Success {
		return nil, apperr.Unavailable(nonEmpty(envelope.Error, "el CRM rechazó la consulta")).WithOp("crm.FetchSales")
	}

	c.log.CRMEvent("fetch_sales", "", true, "")
	return envelope.Records, nil
}

// CreateContractParams is the payload for the remote contract creation call.
type CreateContractParams struct {
	SaleID         string            `json:"saleId"`
	ContractNumber string            `json:"contractNumber"`
	ClientData     domain.SaleRecord `json:"clientData"`
	ContractData   map[string]string `json:"contractData,omitempty"`
}

// CreateContract registers the contract in the CRM. A duplicate-number
// rejection maps to ErrDuplicateNumber.
func (c *Client) CreateContract(ctx context.Context, params CreateContractParams) error {
	err := c.postAction(ctx, "/contracts", params, c.actionTimeout, "crm.CreateContract")
	if err != nil {
		c.log.CRMEvent("create_contract", params.SaleID, false, err.Error())
		return err
	}
	c.log.CRMEvent("create_contract", params.SaleID, true, "")
	return nil
}

// DeleteSale removes the sale remotely. Best-effort: the caller's tombstone
// already stands, so a failure here only means the sync worker retries.
func (c *Client) DeleteSale(ctx context.Context, saleID string) error {
	ctx, cancel := context.WithTimeout(ctx, c.deleteTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/sales/"+url.PathEscape(saleID), nil)
	if err != nil {
		return err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("crm delete sale: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// A sale already gone remotely is a success for a delete sync.
	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return c.statusError("crm.DeleteSale", resp)
	}

	c.log.CRMEvent("delete_sale", saleID, true, "")
	return nil
}

type updateSaleRequest struct {
	Action string            `json:"action"`
	SaleID string            `json:"saleId"`
	Record domain.SaleRecord `json:"record"`
}

// UpdateSale pushes a locally edited record downstream. The CRM exposes no
// per-field PATCH, so the full merged record travels.
func (c *Client) UpdateSale(ctx context.Context, record domain.SaleRecord) error {
	payload := updateSaleRequest{Action: "update", SaleID: record.ID, Record: record}
	err := c.postAction(ctx, "/sales", payload, c.actionTimeout, "crm.UpdateSale")
	if err != nil {
		c.log.CRMEvent("update_sale", record.ID, false, err.Error())
		return err
	}
	c.log.CRMEvent("update_sale", record.ID, true, "")
	return nil
}

type validateSaleRequest struct {
	Action string `json:"action"`
	SaleID string `json:"saleId"`
	Notes  string `json:"notes,omitempty"`
}

// ValidateSale moves the sale's canonical stage forward in the CRM. There is
// no optimistic local change for this action: on failure local state stays
// untouched and the next fetch reflects whatever the CRM decided.
func (c *Client) ValidateSale(ctx context.Context, saleID, notes string) error {
	payload := validateSaleRequest{Action: "validate", SaleID: saleID, Notes: notes}
	err := c.postAction(ctx, "/sales", payload, c.actionTimeout, "crm.ValidateSale")
	if err != nil {
		c.log.CRMEvent("validate_sale", saleID, false, err.Error())
		return err
	}
	c.log.CRMEvent("validate_sale", saleID, true, "")
	return nil
}

func (c *Client) postAction(ctx context.Context, path string, payload any, timeout time.Duration, op string) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "CRM no disponible", err).WithOp(op)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusConflict {
		return ErrDuplicateNumber
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return c.statusError(op, resp)
	}

	var envelope actionResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "respuesta CRM inválida", err).WithOp(op)
	}
	if !envelope.Success {
		if isDuplicateMessage(envelope.Error) {
			return ErrDuplicateNumber
		}
		return apperr.Unavailable(nonEmpty(envelope.Error, "el CRM rechazó la operación")).WithOp(op)
	}

	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")
}

func (c *Client) statusError(op string, resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := strings.TrimSpace(string(data))
	if isDuplicateMessage(msg) {
		return ErrDuplicateNumber
	}
	return apperr.Unavailable(fmt.Sprintf("el CRM respondió %d: %s", resp.StatusCode, nonEmpty(msg, resp.Status))).WithOp(op)
}

func isDuplicateMessage(msg string) bool {
	lowered := strings.ToLower(msg)
	return strings.Contains(lowered, "duplic") || strings.Contains(lowered, "ya existe")
}

func nonEmpty(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}
