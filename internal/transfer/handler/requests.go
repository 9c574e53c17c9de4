package handler

import (
	"surety/internal/transfer"
	id "surety/pkg/domain"
	dErrors "surety/pkg/domain-errors"
)

// AuthorizeTransferRequest is the body of POST /transfer/authorize.
type AuthorizeTransferRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Amount  int64  `json:"amount"`
	Subject string `json:"subject"`

	from    id.AccountID
	to      id.AccountID
	subject id.PolicyID
}

// Validate parses the identifiers and checks the amount.
func (r *AuthorizeTransferRequest) Validate() error {
	var err error
	if r.from, err = id.ParseAccountID(r.From); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid from account")
	}
	if r.to, err = id.ParseAccountID(r.To); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid to account")
	}
	if r.Amount <= 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "amount must be positive")
	}
	if r.subject, err = id.ParsePolicyID(r.Subject); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid subject")
	}
	return nil
}

// ToServiceRequest converts the validated body into the service request.
func (r *AuthorizeTransferRequest) ToServiceRequest() transfer.AuthorizeRequest {
	return transfer.AuthorizeRequest{
		From:    r.from,
		To:      r.to,
		Amount:  r.Amount,
		Subject: r.subject,
	}
}
