package models

import (
	"database/sql"
	"time"
)

type Account struct {
	ID            string
	TenantID      string
	OwnerID       sql.NullString
	Name          string
	Website       sql.NullString
	Industry      sql.NullString
	Country       sql.NullString
	AnnualRevenue sql.NullString
	Status        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Lead struct {
	ID        string
	TenantID  string
	OwnerID   sql.NullString
	FirstName sql.NullString
	LastName  sql.NullString
	Company   string
	Email     sql.NullString
	Phone     sql.NullString
	Source    sql.NullString
	Country   sql.NullString
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Case struct {
	ID          string
	TenantID    string
	OwnerID     sql.NullString
	AccountID   sql.NullString
	Subject     string
	Description sql.NullString
	Priority    string
	Status      string
	Country     sql.NullString
	SLADueAt    sql.NullTime
	SLABreached bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AssignmentRule keeps criteria, assignees and territories as JSONB
// documents; their shape is owned by the domain layer.
type AssignmentRule struct {
	ID          string
	TenantID    string
	Name        string
	RecordType  string
	RuleType    string
	Priority    int
	IsActive    bool
	Criteria    []byte
	Assignees   []byte
	Territories []byte
	Cursor      int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
