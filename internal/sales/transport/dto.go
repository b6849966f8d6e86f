package transport

// ListSalesRequest carries the dashboard filters. dateStart/dateEnd select
// the CRM fetch window; executive, status and q are secondary filters applied
// locally to the reconciled set.
type ListSalesRequest struct {
	DateStart string `form:"dateStart" validate:"omitempty,datetime=2006-01-02"`
	DateEnd   string `form:"dateEnd" validate:"omitempty,datetime=2006-01-02"`
	Executive string `form:"executive" validate:"omitempty,max=120"`
	Status    string `form:"status" validate:"omitempty,oneof=PreEntry Validation Contract DeliveryConfirmation Production DeliveredOK"`
	Query     string `form:"q" validate:"omitempty,max=200"`
	Refresh   bool   `form:"refresh"`
}

// SaleResponse is one reconciled sale as the dashboard sees it.
type SaleResponse struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	NationalID      string   `json:"nationalId"`
	Phone           string   `json:"phone"`
	Email           string   `json:"email,omitempty"`
	DeliveryAddress string   `json:"deliveryAddress"`
	HouseModel      string   `json:"houseModel"`
	TotalValue      int64    `json:"totalValue"`
	SaleDate        string   `json:"saleDate"`
	DeliveryDate    string   `json:"deliveryDate,omitempty"`
	ExecutiveName   string   `json:"executiveName"`
	RawStatus       string   `json:"rawStatus"`
	CanonicalStage  string   `json:"canonicalStage"`
	ContractNumber  string   `json:"contractNumber,omitempty"`
	Complete        bool     `json:"complete"`
	MissingFields   []string `json:"missingFields,omitempty"`
	HasLocalEdit    bool     `json:"hasLocalEdit"`
}

// SalesListResponse wraps the reconciled, filtered record list. When the CRM
// fetch failed, Items still holds the previous reconciled set, Stale is true
// and Error explains why. A failed refresh never clears stale data.
type SalesListResponse struct {
	Items      []SaleResponse `json:"items"`
	Total      int            `json:"total"`
	Generation uint64         `json:"generation"`
	FetchedAt  string         `json:"fetchedAt,omitempty"`
	Stale      bool           `json:"stale"`
	Error      string         `json:"error,omitempty"`
}

// UpdateSaleRequest is a partial local edit overlay. Absent fields leave the
// CRM value untouched.
type UpdateSaleRequest struct {
	Name            *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	NationalID      *string `json:"nationalId,omitempty" validate:"omitempty,rut"`
	Phone           *string `json:"phone,omitempty" validate:"omitempty,max=30"`
	Email           *string `json:"email,omitempty" validate:"omitempty,email"`
	DeliveryAddress *string `json:"deliveryAddress,omitempty" validate:"omitempty,max=400"`
	HouseModel      *string `json:"houseModel,omitempty" validate:"omitempty,max=120"`
	TotalValue      *int64  `json:"totalValue,omitempty" validate:"omitempty,gt=0"`
	SaleDate        *string `json:"saleDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DeliveryDate    *string `json:"deliveryDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ExecutiveName   *string `json:"executiveName,omitempty" validate:"omitempty,max=120"`
	RawStatus       *string `json:"rawStatus,omitempty" validate:"omitempty,max=120"`
}

// ValidateSaleRequest advances the sale's stage in the CRM.
type ValidateSaleRequest struct {
	Notes string `json:"notes" validate:"omitempty,max=1000"`
}

// ExecutivesResponse lists the executive names derived from the current
// reconciled set.
type ExecutivesResponse struct {
	Items []string `json:"items"`
	Total int      `json:"total"`
}
