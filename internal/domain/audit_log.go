package domain

import "time"

type AuditLog struct {
	ID        string
	UserID    string
	Action    string
	Details   string
	IPAddress string
	CreatedAt time.Time
}

const (
	AuditActionUserRegister        = "USER_REGISTER"
	AuditActionUserLogin           = "USER_LOGIN"
	AuditActionUpdateAccountStatus = "ADMIN_UPDATE_ACCOUNT_STATUS"
)
