package loader

import (
	"context"
	"fmt"
	"strings"

	"github.com/MarxCha/poa-dashboard/internal/domain/dashboard"
	"github.com/MarxCha/poa-dashboard/internal/domain/shared"
)

// MaxPerPage is the largest CFDI page the backend serves
const MaxPerPage = 100

// CFDIs lists invoices of the current company
func (l *Loader) CFDIs(ctx context.Context, page, perPage int, tipo dashboard.CFDIType) (*dashboard.CFDIPage, error) {
	if page < 1 || perPage < 1 || perPage > MaxPerPage {
		return nil, shared.Wrap(shared.ErrInvalidInput, fmt.Sprintf("page must be >= 1 and per_page within 1..%d", MaxPerPage))
	}
	if !tipo.IsValid() {
		return nil, shared.Wrap(shared.ErrInvalidInput, fmt.Sprintf("unknown tipo %q", tipo))
	}
	id, err := l.currentCompanyID()
	if err != nil {
		return nil, err
	}
	out, err := l.api.CFDIs(ctx, id, page, perPage, tipo)
	if err != nil {
		return nil, classify(shared.ErrLoadError, err)
	}
	return out, nil
}

// Predictions returns projections for the current company
func (l *Loader) Predictions(ctx context.Context) (dashboard.Predictions, error) {
	id, err := l.currentCompanyID()
	if err != nil {
		return nil, err
	}
	out, err := l.api.Predictions(ctx, id)
	if err != nil {
		return nil, classify(shared.ErrLoadError, err)
	}
	return out, nil
}

// Credit returns credit eligibility for the current company
func (l *Loader) Credit(ctx context.Context) (dashboard.CreditInfo, error) {
	id, err := l.currentCompanyID()
	if err != nil {
		return nil, err
	}
	out, err := l.api.Credit(ctx, id)
	if err != nil {
		return nil, classify(shared.ErrLoadError, err)
	}
	return out, nil
}

// SendChatMessage asks the virtual CFO about the current company
func (l *Loader) SendChatMessage(ctx context.Context, message string) (*dashboard.ChatReply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, shared.Wrap(shared.ErrInvalidInput, "message is empty")
	}
	id, err := l.currentCompanyID()
	if err != nil {
		return nil, err
	}
	out, err := l.api.Chat(ctx, id, message)
	if err != nil {
		return nil, classify(shared.ErrLoadError, err)
	}
	return out, nil
}
