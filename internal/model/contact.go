package model

import (
	"time"
)

type Contact struct {
	ID            string    `db:"id" json:"id"`
	OwnerID       string    `db:"owner_id" json:"-"`
	FirstName     string    `db:"first_name" json:"firstName"`
	LastName      string    `db:"last_name" json:"lastName"`
	Title         *string   `db:"title" json:"title,omitempty"`
	EmailWork     *string   `db:"email_work" json:"emailWork,omitempty"`
	EmailPersonal *string   `db:"email_personal" json:"emailPersonal,omitempty"`
	PhoneWork     *string   `db:"phone_work" json:"phoneWork,omitempty"`
	PhoneHome     *string   `db:"phone_home" json:"phoneHome,omitempty"`
	PhonePersonal *string   `db:"phone_personal" json:"phonePersonal,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}

// ContactFields holds the client-editable part of a contact.
type ContactFields struct {
	FirstName     string
	LastName      string
	Title         *string
	EmailWork     *string
	EmailPersonal *string
	PhoneWork     *string
	PhoneHome     *string
	PhonePersonal *string
}

// CreateContactParams carries the owner separately from the fields; it is
// always taken from the authenticated principal.
type CreateContactParams struct {
	OwnerID string
	ContactFields
}

type UpdateContactParams struct {
	ContactFields
}

type ContactPage struct {
	Contacts []Contact `json:"contacts"`
	Page     int       `json:"page"`
	Size     int       `json:"size"`
	Total    int       `json:"total"`
}
