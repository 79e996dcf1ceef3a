// Package models defines the persisted entities and their presence rules.
package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Project is a named unit of work. Name is unique and case-sensitive.
type Project struct {
	bun.BaseModel `bun:"table:projects,alias:p"`

	ID          int64      `bun:"id,pk,autoincrement"`
	Name        string     `bun:"name,notnull" validate:"required,max=255"`
	Description *string    `bun:"description,type:text"`
	DueOn       *time.Time `bun:"due_on,type:date"`
	CreatedAt   time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt   time.Time  `bun:"updated_at,notnull,default:current_timestamp"`
}

// User is an account. Name is unique; email is unique ignoring case.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID          int64      `bun:"id,pk,autoincrement"`
	Name        string     `bun:"name,notnull" validate:"required,max=255"`
	Email       string     `bun:"email,notnull" validate:"required,max=255"`
	LastLoginAt *time.Time `bun:"last_login_at"`
	CreatedAt   time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt   time.Time  `bun:"updated_at,notnull,default:current_timestamp"`
}

// Membership links a user to a project. The pair is not unique.
type Membership struct {
	bun.BaseModel `bun:"table:memberships,alias:m"`

	ID        int64     `bun:"id,pk,autoincrement"`
	ProjectID int64     `bun:"project_id,notnull" validate:"required"`
	UserID    int64     `bun:"user_id,notnull" validate:"required"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`

	Project *Project `bun:"rel:belongs-to,join:project_id=id,on_delete:CASCADE"`
	User    *User    `bun:"rel:belongs-to,join:user_id=id,on_delete:CASCADE"`
}

// Transfer is one export or import run recorded in csv_transfers.
type Transfer struct {
	bun.BaseModel `bun:"table:csv_transfers,alias:t"`

	ID         string    `bun:"id,pk,type:varchar(36)"`
	Entity     string    `bun:"entity,notnull"`
	Direction  string    `bun:"direction,notnull"`
	Strategy   string    `bun:"strategy,notnull"`
	FileName   string    `bun:"file_name,notnull"`
	Rows       int64     `bun:"rows,notnull"`
	Error      string    `bun:"error,nullzero"`
	StartedAt  time.Time `bun:"started_at,notnull"`
	FinishedAt time.Time `bun:"finished_at,notnull"`
}

// touch sets both timestamps to now when they are unset.
func touch(created, updated *time.Time, now time.Time) {
	if created.IsZero() {
		*created = now
	}
	if updated.IsZero() {
		*updated = now
	}
}

// Touch fills unset timestamps with now.
func (p *Project) Touch(now time.Time) { touch(&p.CreatedAt, &p.UpdatedAt, now) }
func (u *User) Touch(now time.Time) { touch(&u.CreatedAt, &u.UpdatedAt, now) }
func (m *Membership) Touch(now time.Time) { touch(&m.CreatedAt, &m.UpdatedAt, now) }
