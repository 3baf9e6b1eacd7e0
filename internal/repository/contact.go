package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/contactdir/contact-server-go/internal/model"
)

// ContactRepository stores contacts. It does not check ownership; callers
// authorize before reading or mutating a contact by id.
type ContactRepository interface {
	FindByID(ctx context.Context, id string) (*model.Contact, error)
	FindByOwner(ctx context.Context, ownerID string, limit, offset int) ([]model.Contact, error)
	CountByOwner(ctx context.Context, ownerID string) (int, error)
	SearchByOwner(ctx context.Context, ownerID, query string) ([]model.Contact, error)
	Create(ctx context.Context, params model.CreateContactParams) (*model.Contact, error)
	Update(ctx context.Context, id string, params model.UpdateContactParams) (*model.Contact, error)
	Delete(ctx context.Context, id string) error
}

type contactRepo struct {
	db *sqlx.DB
}

func NewContactRepository(db *sqlx.DB) ContactRepository {
	return &contactRepo{db: db}
}

func (r *contactRepo) FindByID(ctx context.Context, id string) (*model.Contact, error) {
	var contact model.Contact
	err := r.db.GetContext(ctx, &contact, `SELECT * FROM contacts WHERE id = $1`, id)
	return HandleNotFound(&contact, err)
}

func (r *contactRepo) FindByOwner(ctx context.Context, ownerID string, limit, offset int) ([]model.Contact, error) {
	contacts := []model.Contact{}
	err := r.db.SelectContext(ctx, &contacts, `
		SELECT * FROM contacts
		WHERE owner_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	return contacts, nil
}

func (r *contactRepo) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM contacts WHERE owner_id = $1`, ownerID)
	return count, err
}

func (r *contactRepo) SearchByOwner(ctx context.Context, ownerID, query string) ([]model.Contact, error) {
	contacts := []model.Contact{}
	err := r.db.SelectContext(ctx, &contacts, `
		SELECT * FROM contacts
		WHERE owner_id = $1
		  AND (first_name ILIKE '%' || $2 || '%' OR last_name ILIKE '%' || $2 || '%')
		ORDER BY last_name, first_name
	`, ownerID, escapeLike(query))
	if err != nil {
		return nil, err
	}
	return contacts, nil
}

func (r *contactRepo) Create(ctx context.Context, params model.CreateContactParams) (*model.Contact, error) {
	var contact model.Contact
	err := r.db.GetContext(ctx, &contact, `
		INSERT INTO contacts (
			owner_id, first_name, last_name, title,
			email_work, email_personal, phone_work, phone_home, phone_personal
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING *
	`, params.OwnerID, params.FirstName, params.LastName, params.Title,
		params.EmailWork, params.EmailPersonal, params.PhoneWork, params.PhoneHome, params.PhonePersonal)
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

func (r *contactRepo) Update(ctx context.Context, id string, params model.UpdateContactParams) (*model.Contact, error) {
	var contact model.Contact
	err := r.db.GetContext(ctx, &contact, `
		UPDATE contacts SET
			first_name = $2,
			last_name = $3,
			title = $4,
			email_work = $5,
			email_personal = $6,
			phone_work = $7,
			phone_home = $8,
			phone_personal = $9,
			updated_at = $10
		WHERE id = $1
		RETURNING *
	`, id, params.FirstName, params.LastName, params.Title,
		params.EmailWork, params.EmailPersonal, params.PhoneWork, params.PhoneHome, params.PhonePersonal,
		time.Now())
	return HandleNotFound(&contact, err)
}

func (r *contactRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	return err
}
