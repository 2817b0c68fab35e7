package dto

type ErrorResponse struct {
	Error string `json:"error"`
}

type ReportResponse struct {
	Report string `json:"report"`
}

type RenewResponse struct {
	Message          string `json:"message"`
	ReportsRemaining int    `json:"reports_remaining"`
}

type SweepResponse struct {
	Message  string `json:"message"`
	Notified int    `json:"notified"`
}

type ProvisionRequest struct {
	ProviderToken string `json:"provider_token"`
}

type ProvisionResponse struct {
	SheetID string `json:"sheet_id"`
	Message string `json:"message"`
}

type QuotaResponse struct {
	Plan             string `json:"plan"`
	ReportsRemaining int    `json:"reports_remaining"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}
