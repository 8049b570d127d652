package service_test

import (
	"context"
	"sync"
	"time"

	appErrors "github.com/unclebandit/campaignhub-backend/internal/errors"
	"github.com/unclebandit/campaignhub-backend/internal/model"
	"github.com/unclebandit/campaignhub-backend/internal/queue"
)

// Mock repositories

type MockUserRepo struct {
	users   map[string]*model.User
	nextID  int64
	creates int
}

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{users: map[string]*model.User{}, nextID: 1}
}

func (m *MockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, ok := m.users[email]
	return ok, nil
}

func (m *MockUserRepo) Create(ctx context.Context, p model.CreateUserParams) (*model.User, error) {
	m.creates++
	if _, ok := m.users[p.Email]; ok {
		return nil, appErrors.ErrEmailTaken
	}
	u := &model.User{
		ID: m.nextID, Email: p.Email, PasswordHash: p.PasswordHash,
		FirstName: p.FirstName, LastName: p.LastName,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	m.nextID++
	m.users[p.Email] = u
	return u, nil
}

func (m *MockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	u, ok := m.users[email]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *MockUserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			cp := *u
			cp.PasswordHash = ""
			return &cp, nil
		}
	}
	return nil, nil
}

type MockTokens struct{}

func (MockTokens) GenerateToken(userID int64, email string) (string, time.Time, error) {
	return "token-for-" + email, time.Now().Add(time.Hour), nil
}

type MockContactRepo struct {
	contacts map[int64]*model.Contact
	nextID   int64
	// VerifyFn overrides VerifyOwnership when set.
	VerifyFn func(ids []int64, ownerID int64) (bool, error)
	calls    []string
}

func NewMockContactRepo() *MockContactRepo {
	return &MockContactRepo{contacts: map[int64]*model.Contact{}, nextID: 1}
}

func (m *MockContactRepo) add(ownerID int64, first string) *model.Contact {
	c := &model.Contact{ID: m.nextID, UserID: ownerID, FirstName: first, LastName: "Lee", Email: first + "@x.com"}
	m.contacts[c.ID] = c
	m.nextID++
	return c
}

func (m *MockContactRepo) owned(id, ownerID int64) *model.Contact {
	c, ok := m.contacts[id]
	if !ok || c.UserID != ownerID {
		return nil
	}
	return c
}

func (m *MockContactRepo) List(ctx context.Context, ownerID int64) ([]model.Contact, error) {
	m.calls = append(m.calls, "List")
	out := []model.Contact{}
	for _, c := range m.contacts {
		if c.UserID == ownerID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *MockContactRepo) Get(ctx context.Context, id, ownerID int64) (*model.Contact, error) {
	m.calls = append(m.calls, "Get")
	if c := m.owned(id, ownerID); c != nil {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (m *MockContactRepo) Create(ctx context.Context, ownerID int64, p model.CreateContactParams) (*model.Contact, error) {
	m.calls = append(m.calls, "Create")
	c := m.add(ownerID, p.FirstName)
	c.LastName, c.Email = p.LastName, p.Email
	return c, nil
}

func (m *MockContactRepo) Update(ctx context.Context, id, ownerID int64, p model.UpdateContactParams) (*model.Contact, error) {
	m.calls = append(m.calls, "Update")
	c := m.owned(id, ownerID)
	if c == nil {
		return nil, nil
	}
	if p.FirstName.IsSet() {
		c.FirstName = p.FirstName.Value
	}
	if p.Email.IsSet() {
		c.Email = p.Email.Value
	}
	cp := *c
	return &cp, nil
}

func (m *MockContactRepo) Delete(ctx context.Context, id, ownerID int64) (bool, error) {
	m.calls = append(m.calls, "Delete")
	if m.owned(id, ownerID) == nil {
		return false, nil
	}
	delete(m.contacts, id)
	return true, nil
}

func (m *MockContactRepo) VerifyOwnership(ctx context.Context, ids []int64, ownerID int64) (bool, error) {
	m.calls = append(m.calls, "VerifyOwnership")
	if m.VerifyFn != nil {
		return m.VerifyFn(ids, ownerID)
	}
	if len(ids) == 0 {
		return false, nil
	}
	for _, id := range ids {
		if m.owned(id, ownerID) == nil {
			return false, nil
		}
	}
	return true, nil
}

type MockCampaignRepo struct {
	campaigns map[int64]*model.Campaign
	joins     map[int64]map[int64]bool
	nextID    int64
	// AddErr is returned by AddContacts when set.
	AddErr error
	calls  []string
}

func NewMockCampaignRepo() *MockCampaignRepo {
	return &MockCampaignRepo{
		campaigns: map[int64]*model.Campaign{},
		joins:     map[int64]map[int64]bool{},
		nextID:    1,
	}
}

func (m *MockCampaignRepo) owned(id, ownerID int64) *model.Campaign {
	c, ok := m.campaigns[id]
	if !ok || c.UserID != ownerID {
		return nil
	}
	return c
}

func (m *MockCampaignRepo) List(ctx context.Context, ownerID int64, status string) ([]model.Campaign, error) {
	out := []model.Campaign{}
	for _, c := range m.campaigns {
		if c.UserID == ownerID && (status == "" || c.Status == status) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *MockCampaignRepo) Get(ctx context.Context, id, ownerID int64) (*model.Campaign, error) {
	if c := m.owned(id, ownerID); c != nil {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (m *MockCampaignRepo) GetWithContacts(ctx context.Context, id, ownerID int64) (*model.CampaignWithContacts, error) {
	c := m.owned(id, ownerID)
	if c == nil {
		return nil, nil
	}
	out := &model.CampaignWithContacts{Campaign: *c, Contacts: []model.AssignedContact{}}
	for contactID := range m.joins[id] {
		out.Contacts = append(out.Contacts, model.AssignedContact{ID: contactID})
	}
	return out, nil
}

func (m *MockCampaignRepo) Create(ctx context.Context, ownerID int64, p model.CreateCampaignParams) (*model.Campaign, error) {
	m.calls = append(m.calls, "Create")
	status := p.Status
	if status == "" {
		status = model.CampaignStatusDraft
	}
	c := &model.Campaign{ID: m.nextID, UserID: ownerID, Name: p.Name, Subject: p.Subject, Message: p.Message, Status: status}
	m.campaigns[c.ID] = c
	m.nextID++
	cp := *c
	return &cp, nil
}

func (m *MockCampaignRepo) Update(ctx context.Context, id, ownerID int64, p model.UpdateCampaignParams) (*model.Campaign, error) {
	m.calls = append(m.calls, "Update")
	c := m.owned(id, ownerID)
	if c == nil {
		return nil, nil
	}
	if p.Status.IsSet() {
		c.Status = p.Status.Value
		if c.Status == model.CampaignStatusSent {
			now := time.Now()
			c.SentAt = &now
		}
	}
	cp := *c
	return &cp, nil
}

func (m *MockCampaignRepo) Delete(ctx context.Context, id, ownerID int64) (bool, error) {
	if m.owned(id, ownerID) == nil {
		return false, nil
	}
	delete(m.campaigns, id)
	delete(m.joins, id)
	return true, nil
}

func (m *MockCampaignRepo) VerifyOwnership(ctx context.Context, id, ownerID int64) (bool, error) {
	m.calls = append(m.calls, "VerifyOwnership")
	return m.owned(id, ownerID) != nil, nil
}

func (m *MockCampaignRepo) ListContacts(ctx context.Context, campaignID, ownerID int64) ([]model.CampaignContactDetail, error) {
	if m.owned(campaignID, ownerID) == nil {
		return nil, nil
	}
	out := []model.CampaignContactDetail{}
	for contactID := range m.joins[campaignID] {
		out = append(out, model.CampaignContactDetail{ID: contactID})
	}
	return out, nil
}

func (m *MockCampaignRepo) AddContacts(ctx context.Context, campaignID int64, contactIDs []int64) error {
	m.calls = append(m.calls, "AddContacts")
	if m.AddErr != nil {
		return m.AddErr
	}
	if m.joins[campaignID] == nil {
		m.joins[campaignID] = map[int64]bool{}
	}
	for _, id := range contactIDs {
		m.joins[campaignID][id] = true
	}
	return nil
}

func (m *MockCampaignRepo) RemoveContact(ctx context.Context, campaignID, contactID int64) (bool, error) {
	if !m.joins[campaignID][contactID] {
		return false, nil
	}
	delete(m.joins[campaignID], contactID)
	return true, nil
}

// MockPublisher records every event.
type MockPublisher struct {
	mu     sync.Mutex
	events []queue.Event
	Err    error
}

func (p *MockPublisher) Publish(ctx context.Context, e queue.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.Err
}

func (p *MockPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
