package models

import (
	"errors"
	"strings"
)

type UpdateAccountStatusRequest struct {
	Status string `json:"status"`
}

func (r UpdateAccountStatusRequest) Validate() error {
	switch strings.TrimSpace(r.Status) {
	case "active", "frozen", "closed":
		return nil
	}
	return errors.New("status must be one of active, frozen, closed")
}

type ListUsersResponse struct {
	Results int        `json:"results"`
	Users   []UserView `json:"users"`
}

type ListAccountsResponse struct {
	Results  int           `json:"results"`
	Accounts []AccountView `json:"accounts"`
}

type UpdateAccountStatusResponse struct {
	Account AccountView `json:"account"`
}
