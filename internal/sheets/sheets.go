// Package sheets provisions the per-user patient CRM spreadsheet.
package sheets

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	sheetsv4 "google.golang.org/api/sheets/v4"
)

const (
	crmTitle      = "[iNFORiA] CRM de Pacientes"
	crmSheetTitle = "Pacientes"
)

var crmHeaders = []string{
	"Nombre", "Apellidos", "Email", "Teléfono", "Fecha de Nacimiento",
	"Género", "Dirección", "Motivo de la Consulta", "ID de Carpeta de Drive",
}

// Client creates CRM spreadsheets in the user's Google account.
type Client struct {
	svc *sheetsv4.Service
}

// NewClient builds a Sheets client from the user's OAuth access token.
func NewClient(ctx context.Context, accessToken string) (*Client, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	svc, err := sheetsv4.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("failed to create Sheets service: %w", err)
	}
	return NewClientWithService(svc), nil
}

// NewClientWithService wires an already-built Sheets service.
func NewClientWithService(svc *sheetsv4.Service) *Client {
	return &Client{svc: svc}
}

// CreateCRM creates the patient CRM spreadsheet with its header row and
// returns the new spreadsheet id.
func (c *Client) CreateCRM(ctx context.Context) (string, error) {
	values := make([]*sheetsv4.CellData, 0, len(crmHeaders))
	for _, h := range crmHeaders {
		header := h
		values = append(values, &sheetsv4.CellData{
			UserEnteredValue: &sheetsv4.ExtendedValue{StringValue: &header},
		})
	}

	spreadsheet, err := c.svc.Spreadsheets.Create(&sheetsv4.Spreadsheet{
		Properties: &sheetsv4.SpreadsheetProperties{Title: crmTitle},
		Sheets: []*sheetsv4.Sheet{
			{
				Properties: &sheetsv4.SheetProperties{Title: crmSheetTitle},
				Data: []*sheetsv4.GridData{
					{RowData: []*sheetsv4.RowData{{Values: values}}},
				},
			},
		},
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create CRM spreadsheet: %w", err)
	}
	if spreadsheet.SpreadsheetId == "" {
		return "", errors.New("Google Sheet ID not found after creation")
	}
	return spreadsheet.SpreadsheetId, nil
}
