package models

import (
	"database/sql"
	"time"
)

type Tenant struct {
	ID        string
	Name      string
	Subdomain sql.NullString
	Plan      string
	Timezone  string
	Currency  string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type User struct {
	ID          string
	TenantID    sql.NullString
	Email       string
	FirstName   sql.NullString
	LastName    sql.NullString
	IsSuperuser bool
	IsActive    bool
	Permissions []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type TenantMember struct {
	ID             string
	TenantID       string
	UserID         string
	ManagerID      sql.NullString
	Status         string
	IsTenantAdmin  bool
	HireDate       sql.NullTime
	QuotaAmount    string
	CommissionRate string
	Phone          sql.NullString
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
