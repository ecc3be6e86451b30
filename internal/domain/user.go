package domain

import "time"

type UserRole string

const (
	UserRoleCustomer UserRole = "customer"
	UserRoleAdmin    UserRole = "admin"
)

type User struct {
	ID           string
	Name         string
	Email        string
	Role         UserRole
	PasswordHash string
	PinHash      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
