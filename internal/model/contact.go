// internal/model/contact.go
package model

import "time"

type Contact struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"-"`
	FirstName string    `db:"first_name" json:"firstName"`
	LastName  string    `db:"last_name" json:"lastName"`
	Email     string    `db:"email" json:"email"`
	Phone     *string   `db:"phone" json:"phone"`
	Company   *string   `db:"company" json:"company"`
	Notes     *string   `db:"notes" json:"notes"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

type CreateContactParams struct {
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Email     string  `json:"email"`
	Phone     *string `json:"phone"`
	Company   *string `json:"company"`
	Notes     *string `json:"notes"`
}

// UpdateContactParams only touches the fields that are present.
type UpdateContactParams struct {
	FirstName Optional[string] `json:"firstName"`
	LastName  Optional[string] `json:"lastName"`
	Email     Optional[string] `json:"email"`
	Phone     Optional[string] `json:"phone"`
	Company   Optional[string] `json:"company"`
	Notes     Optional[string] `json:"notes"`
}
