package dashboard

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// CFDIType filters invoices by direction
type CFDIType string

const (
	CFDIIngreso CFDIType = "ingreso"
	CFDIEgreso  CFDIType = "egreso"
)

// IsValid accepts the empty type, which means no filter
func (t CFDIType) IsValid() bool {
	return t == "" || t == CFDIIngreso || t == CFDIEgreso
}

// CFDI is a digital invoice record; the dashboard treats it as opaque
type CFDI struct {
	ID              int64           `json:"id"`
	UUID            string          `json:"uuid"`
	Folio           *string         `json:"folio"`
	Serie           *string         `json:"serie"`
	TipoComprobante CFDIType        `json:"tipo_comprobante"`
	Estado          string          `json:"estado"`
	EmisorRFC       string          `json:"emisor_rfc"`
	EmisorNombre    *string         `json:"emisor_nombre"`
	ReceptorRFC     string          `json:"receptor_rfc"`
	ReceptorNombre  *string         `json:"receptor_nombre"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Total           decimal.Decimal `json:"total"`
	IVA             decimal.Decimal `json:"iva"`
	Moneda          string          `json:"moneda"`
	FechaEmision    string          `json:"fecha_emision"`
	FechaTimbrado   *string         `json:"fecha_timbrado"`
	UsoCFDI         *string         `json:"uso_cfdi"`
	CreatedAt       string          `json:"created_at"`
}

// CFDIPage is one page of a company's invoices
type CFDIPage struct {
	Total   int    `json:"total"`
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
	CFDIs   []CFDI `json:"cfdis"`
}

// ChatReply is the virtual CFO answer to a chat message
type ChatReply struct {
	Response   string   `json:"response"`
	Sources    []string `json:"sources"`
	Disclaimer string   `json:"disclaimer"`
}

// Predictions and CreditInfo are rendered by views that own their layout;
// the controller only relays them for the current company.
type (
	Predictions json.RawMessage
	CreditInfo  json.RawMessage
)

// MarshalJSON keeps the payload verbatim
func (p Predictions) MarshalJSON() ([]byte, error) {
	return rawOrNull(p), nil
}

// MarshalJSON keeps the payload verbatim
func (c CreditInfo) MarshalJSON() ([]byte, error) {
	return rawOrNull(c), nil
}

// UnmarshalJSON stores the payload verbatim
func (p *Predictions) UnmarshalJSON(b []byte) error {
	*p = append((*p)[0:0], b...)
	return nil
}

// UnmarshalJSON stores the payload verbatim
func (c *CreditInfo) UnmarshalJSON(b []byte) error {
	*c = append((*c)[0:0], b...)
	return nil
}

func rawOrNull(b []byte) []byte {
	if len(b) == 0 {
		return []byte("null")
	}
	return b
}
