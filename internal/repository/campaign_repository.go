package repository

import (
	"context"
	"time"

	"github.com/unclebandit/campaignhub-backend/internal/db"
	"github.com/unclebandit/campaignhub-backend/internal/model"
)

type CampaignRepositoryInterface interface {
	// Campaign CRUD
	List(ctx context.Context, ownerID int64, status string) ([]model.Campaign, error)
	Get(ctx context.Context, id, ownerID int64) (*model.Campaign, error)
	GetWithContacts(ctx context.Context, id, ownerID int64) (*model.CampaignWithContacts, error)
	Create(ctx context.Context, ownerID int64, params model.CreateCampaignParams) (*model.Campaign, error)
	Update(ctx context.Context, id, ownerID int64, params model.UpdateCampaignParams) (*model.Campaign, error)
	Delete(ctx context.Context, id, ownerID int64) (bool, error)
	VerifyOwnership(ctx context.Context, id, ownerID int64) (bool, error)

	// Campaign contacts
	ListContacts(ctx context.Context, campaignID, ownerID int64) ([]model.CampaignContactDetail, error)
	AddContacts(ctx context.Context, campaignID int64, contactIDs []int64) error
	RemoveContact(ctx context.Context, campaignID, contactID int64) (bool, error)
}

type CampaignRepository struct {
	DB *db.DB
	// Now stamps created_at, updated_at, added_at and sent_at.
	Now func() time.Time
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)

const (
	campaignColumns = `id, user_id, name, subject, message, status, scheduled_at, sent_at, created_at, updated_at`

	sqlAssignedContacts = `
		SELECT c.id, c.first_name, c.last_name, c.email, cc.added_at
		FROM   contacts c
		JOIN   campaign_contacts cc ON c.id = cc.contact_id
		WHERE  cc.campaign_id = $1
		ORDER  BY cc.id`

	sqlCampaignContacts = `
		SELECT c.id, c.first_name, c.last_name, c.email, c.phone, c.company, cc.added_at
		FROM   contacts c
		JOIN   campaign_contacts cc ON c.id = cc.contact_id
		WHERE  cc.campaign_id = $1
		ORDER  BY cc.added_at DESC, cc.id DESC`

	sqlInsertCampaignContact = `
		INSERT INTO campaign_contacts (campaign_id, contact_id, added_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (campaign_id, contact_id) DO NOTHING`

	sqlDeleteCampaignContact = `
		DELETE FROM campaign_contacts WHERE campaign_id = $1 AND contact_id = $2`
)

func scanCampaign(row scanner) (*model.Campaign, error) {
	c := &model.Campaign{}
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Subject, &c.Message, &c.Status,
		&c.ScheduledAt, &c.SentAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *CampaignRepository) table() ownedTable[model.Campaign] {
	return ownedTable[model.Campaign]{q: r.DB, table: "campaigns", columns: campaignColumns, scan: scanCampaign}
}

// ====================== Campaign CRUD ======================

// List returns the owner's campaigns, newest first. An empty status means
// no filter.
func (r *CampaignRepository) List(ctx context.Context, ownerID int64, status string) ([]model.Campaign, error) {
	if status == "" {
		return r.table().list(ctx, ownerID)
	}
	return r.table().list(ctx, ownerID, assignment{"status", status})
}

func (r *CampaignRepository) Get(ctx context.Context, id, ownerID int64) (*model.Campaign, error) {
	return r.table().get(ctx, id, ownerID)
}

// GetWithContacts embeds the assigned contacts in insertion order.
func (r *CampaignRepository) GetWithContacts(ctx context.Context, id, ownerID int64) (*model.CampaignWithContacts, error) {
	c, err := r.Get(ctx, id, ownerID)
	if err != nil || c == nil {
		return nil, err
	}

	rows, err := r.DB.Query(ctx, sqlAssignedContacts, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := &model.CampaignWithContacts{Campaign: *c, Contacts: []model.AssignedContact{}}
	for rows.Next() {
		var ac model.AssignedContact
		if err := rows.Scan(&ac.ID, &ac.FirstName, &ac.LastName, &ac.Email, &ac.AddedAt); err != nil {
			return nil, err
		}
		out.Contacts = append(out.Contacts, ac)
	}
	return out, rows.Err()
}

func (r *CampaignRepository) Create(ctx context.Context, ownerID int64, params model.CreateCampaignParams) (*model.Campaign, error) {
	status := params.Status
	if status == "" {
		status = model.CampaignStatusDraft
	}
	var scheduledAt any
	if params.ScheduledAt != nil {
		scheduledAt = params.ScheduledAt.UTC()
	}
	now := clock(r.Now)
	return r.table().insert(ctx, []assignment{
		{"user_id", ownerID},
		{"name", params.Name},
		{"subject", params.Subject},
		{"message", params.Message},
		{"status", status},
		{"scheduled_at", scheduledAt},
		{"created_at", now},
		{"updated_at", now},
	})
}

// Update applies a partial update. Moving to status "sent" stamps sent_at
// with the store clock; other statuses leave sent_at alone.
func (r *CampaignRepository) Update(ctx context.Context, id, ownerID int64, params model.UpdateCampaignParams) (*model.Campaign, error) {
	now := clock(r.Now)

	var sets []assignment
	sets = appendSet(sets, "name", params.Name)
	sets = appendSet(sets, "subject", params.Subject)
	sets = appendSet(sets, "message", params.Message)
	sets = appendSet(sets, "status", params.Status)
	if params.ScheduledAt.IsSet() {
		sets = append(sets, assignment{"scheduled_at", params.ScheduledAt.Value.UTC()})
	}
	if params.Status.IsSet() && params.Status.Value == model.CampaignStatusSent {
		sets = append(sets, assignment{"sent_at", now})
	}
	sets = append(sets, assignment{"updated_at", now})

	return r.table().update(ctx, id, ownerID, sets)
}

func (r *CampaignRepository) Delete(ctx context.Context, id, ownerID int64) (bool, error) {
	return r.table().delete(ctx, id, ownerID)
}

func (r *CampaignRepository) VerifyOwnership(ctx context.Context, id, ownerID int64) (bool, error) {
	return r.table().exists(ctx, id, ownerID)
}

// ====================== Campaign contacts ======================

// ListContacts returns (nil, nil) when the campaign is not the owner's and an
// empty slice when nothing is assigned.
func (r *CampaignRepository) ListContacts(ctx context.Context, campaignID, ownerID int64) ([]model.CampaignContactDetail, error) {
	ok, err := r.VerifyOwnership(ctx, campaignID, ownerID)
	if err != nil || !ok {
		return nil, err
	}

	rows, err := r.DB.Query(ctx, sqlCampaignContacts, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := []model.CampaignContactDetail{}
	for rows.Next() {
		var d model.CampaignContactDetail
		if err := rows.Scan(&d.ID, &d.FirstName, &d.LastName, &d.Email, &d.Phone, &d.Company, &d.AddedAt); err != nil {
			return nil, err
		}
		contacts = append(contacts, d)
	}
	return contacts, rows.Err()
}

// AddContacts inserts every join row in one transaction. Pairs that already
// exist are skipped.
func (r *CampaignRepository) AddContacts(ctx context.Context, campaignID int64, contactIDs []int64) error {
	now := clock(r.Now)
	return r.DB.ExecTx(ctx, func(tx *db.Tx) error {
		stmt, err := tx.Prepare(ctx, sqlInsertCampaignContact)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, contactID := range uniqueIDs(contactIDs) {
			if _, err := stmt.Exec(ctx, campaignID, contactID, now); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *CampaignRepository) RemoveContact(ctx context.Context, campaignID, contactID int64) (bool, error) {
	res, err := r.DB.Exec(ctx, sqlDeleteCampaignContact, campaignID, contactID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
