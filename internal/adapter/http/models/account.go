package models

import "github.com/shopspring/decimal"

type AccountView struct {
	ID            string          `json:"id"`
	UserID        string          `json:"userId"`
	AccountNumber string          `json:"accountNumber"`
	Balance       decimal.Decimal `json:"balance"`
	Status        string          `json:"status"`
	CreatedAt     string          `json:"createdAt"`
}

type GetAccountResponse struct {
	Account AccountView `json:"account"`
}
