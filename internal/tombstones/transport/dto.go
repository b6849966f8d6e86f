package transport

// DeleteSaleRequest optionally records why the sale was removed.
type DeleteSaleRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

// TombstoneResponse is one deleted sale in the trash listing.
type TombstoneResponse struct {
	SaleID        string `json:"saleId"`
	ClientName    string `json:"clientName"`
	ExecutiveName string `json:"executiveName,omitempty"`
	Reason        string `json:"reason,omitempty"`
	DeletedAt     string `json:"deletedAt"`
}

// TrashResponse lists deleted sales.
type TrashResponse struct {
	Items []TombstoneResponse `json:"items"`
	Total int                 `json:"total"`
}
