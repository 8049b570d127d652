package router_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/unclebandit/campaignhub-backend/internal/auth"
	"github.com/unclebandit/campaignhub-backend/internal/controller"
	"github.com/unclebandit/campaignhub-backend/internal/db/dbtest"
	"github.com/unclebandit/campaignhub-backend/internal/middleware"
	"github.com/unclebandit/campaignhub-backend/internal/queue"
	"github.com/unclebandit/campaignhub-backend/internal/repository"
	"github.com/unclebandit/campaignhub-backend/internal/router"
	"github.com/unclebandit/campaignhub-backend/internal/service"
)

type apiClient struct {
	t      *testing.T
	server *httptest.Server
}

func newAPI(t *testing.T, limiter *middleware.LimiterStore) *apiClient {
	t.Helper()
	d := dbtest.New(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	events := queue.NewInMemoryQueue(logger)
	t.Cleanup(func() { events.Close() })

	userRepo := &repository.UserRepository{DB: d}
	contactRepo := &repository.ContactRepository{DB: d}
	campaignRepo := &repository.CampaignRepository{DB: d}
	jwt := auth.NewJWTManager("test-secret", 7*24*time.Hour)

	h := router.New(router.Deps{
		Auth: &controller.AuthController{
			AuthService: &service.AuthService{UserRepo: userRepo, Tokens: jwt, Events: events},
		},
		Contacts: &controller.ContactController{
			ContactService: &service.ContactService{ContactRepo: contactRepo, Events: events},
		},
		Campaigns: &controller.CampaignController{
			CampaignService: &service.CampaignService{CampaignRepo: campaignRepo, ContactRepo: contactRepo, Events: events},
		},
		Tokens:  jwt,
		Limiter: limiter,
		Logger:  logger,
	})

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return &apiClient{t: t, server: srv}
}

func (c *apiClient) do(method, path, token string, body any) (int, map[string]any, []any) {
	c.t.Helper()

	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			c.t.Fatal(err)
		}
		rdr = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, c.server.URL+path, rdr)
	if err != nil {
		c.t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.server.Client().Do(req)
	if err != nil {
		c.t.Fatal(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.t.Fatal(err)
	}

	var obj map[string]any
	var list []any
	if len(raw) > 0 && raw[0] == '[' {
		if err := json.Unmarshal(raw, &list); err != nil {
			c.t.Fatalf("invalid JSON array %s: %v", raw, err)
		}
	} else if err := json.Unmarshal(raw, &obj); err != nil {
		c.t.Fatalf("invalid JSON %s: %v", raw, err)
	}
	return resp.StatusCode, obj, list
}

func (c *apiClient) register(email string) string {
	c.t.Helper()
	status, body, _ := c.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": email, "password": "secret1", "firstName": "Test", "lastName": "User",
	})
	if status != http.StatusCreated {
		c.t.Fatalf("register %s: expected 201, got %d %v", email, status, body)
	}
	return body["token"].(string)
}

func id(v any) int64 {
	return int64(v.(float64))
}

func TestEndToEndScenario(t *testing.T) {
	api := newAPI(t, nil)

	// register A
	status, body, _ := api.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "a@x.com", "password": "secret1", "firstName": "Ada", "lastName": "Lovelace",
	})
	if status != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d %v", status, body)
	}
	tokenA, _ := body["token"].(string)
	if tokenA == "" {
		t.Fatal("register: expected a token")
	}
	user := body["user"].(map[string]any)
	if user["email"] != "a@x.com" || user["firstName"] != "Ada" {
		t.Errorf("register: unexpected user %v", user)
	}
	if _, leaked := user["passwordHash"]; leaked {
		t.Error("register: password hash leaked")
	}

	// wrong password
	status, body, _ = api.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "a@x.com", "password": "wrong-password",
	})
	if status != http.StatusUnauthorized || body["error"] != "Invalid credentials" {
		t.Fatalf("login: expected 401 Invalid credentials, got %d %v", status, body)
	}

	// create contact
	status, body, _ = api.do(http.MethodPost, "/api/contacts", tokenA, map[string]string{
		"firstName": "Jo", "lastName": "Lee", "email": "jo@x.com",
	})
	if status != http.StatusCreated {
		t.Fatalf("create contact: expected 201, got %d %v", status, body)
	}
	joID := id(body["id"])
	if joID == 0 {
		t.Fatal("create contact: expected generated id")
	}
	if body["phone"] != nil {
		t.Errorf("create contact: expected null phone, got %v", body["phone"])
	}

	// create campaign
	status, body, _ = api.do(http.MethodPost, "/api/campaigns", tokenA, map[string]string{
		"name": "Launch", "subject": "Hi", "message": "Hello",
	})
	if status != http.StatusCreated || body["status"] != "draft" {
		t.Fatalf("create campaign: expected 201 draft, got %d %v", status, body)
	}
	campaignID := id(body["id"])

	// add contact
	status, body, _ = api.do(http.MethodPost, fmt.Sprintf("/api/campaigns/%d/contacts", campaignID), tokenA,
		map[string]any{"contactIds": []int64{joID}})
	if status != http.StatusCreated || body["message"] != "Contacts added to campaign successfully" {
		t.Fatalf("add contacts: expected 201, got %d %v", status, body)
	}

	// campaign detail lists Jo
	status, body, _ = api.do(http.MethodGet, fmt.Sprintf("/api/campaigns/%d", campaignID), tokenA, nil)
	if status != http.StatusOK {
		t.Fatalf("get campaign: expected 200, got %d %v", status, body)
	}
	contacts := body["contacts"].([]any)
	if len(contacts) != 1 || contacts[0].(map[string]any)["firstName"] != "Jo" {
		t.Fatalf("get campaign: expected Jo in contacts, got %v", contacts)
	}
	if body["sentAt"] != nil {
		t.Errorf("get campaign: expected null sentAt, got %v", body["sentAt"])
	}

	// mark sent
	status, body, _ = api.do(http.MethodPut, fmt.Sprintf("/api/campaigns/%d", campaignID), tokenA,
		map[string]string{"status": "sent"})
	if status != http.StatusOK || body["status"] != "sent" {
		t.Fatalf("update campaign: expected 200 sent, got %d %v", status, body)
	}
	if s, _ := body["sentAt"].(string); s == "" {
		t.Fatalf("update campaign: expected sentAt populated, got %v", body["sentAt"])
	}
	if body["name"] != "Launch" {
		t.Errorf("update campaign: absent fields must be kept, got %v", body["name"])
	}

	// user B cannot see Jo
	tokenB := api.register("b@x.com")
	status, body, _ = api.do(http.MethodGet, fmt.Sprintf("/api/contacts/%d", joID), tokenB, nil)
	if status != http.StatusNotFound || body["error"] != "Contact not found" {
		t.Fatalf("cross-tenant read: expected 404, got %d %v", status, body)
	}
}

func TestAuthRoutes(t *testing.T) {
	api := newAPI(t, nil)
	token := api.register("a@x.com")

	status, body, _ := api.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "a@x.com", "password": "secret1", "firstName": "A", "lastName": "B",
	})
	if status != http.StatusBadRequest || body["error"] != "User already exists with this email" {
		t.Fatalf("duplicate register: got %d %v", status, body)
	}

	status, body, _ = api.do(http.MethodPost, "/api/auth/register", "", map[string]string{"email": "bad"})
	if status != http.StatusBadRequest || body["error"] != "Validation failed" {
		t.Fatalf("invalid register: got %d %v", status, body)
	}
	if errs, _ := body["errors"].([]any); len(errs) != 4 {
		t.Errorf("expected every failed field reported, got %v", body["errors"])
	}

	status, body, _ = api.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "a@x.com", "password": "secret1",
	})
	if status != http.StatusOK || body["token"] == "" {
		t.Fatalf("login: got %d %v", status, body)
	}

	status, body, _ = api.do(http.MethodGet, "/api/auth/me", token, nil)
	if status != http.StatusOK || body["email"] != "a@x.com" || body["createdAt"] == nil {
		t.Fatalf("me: got %d %v", status, body)
	}

	status, body, _ = api.do(http.MethodGet, "/api/auth/me", "", nil)
	if status != http.StatusUnauthorized || body["error"] != "No token, authorization denied" {
		t.Fatalf("me without token: got %d %v", status, body)
	}

	status, body, _ = api.do(http.MethodGet, "/api/auth/me", "not-a-jwt", nil)
	if status != http.StatusUnauthorized || body["error"] != "Token is not valid" {
		t.Fatalf("me with bad token: got %d %v", status, body)
	}
}

func TestContactRoutes(t *testing.T) {
	api := newAPI(t, nil)
	token := api.register("a@x.com")

	status, body, _ := api.do(http.MethodPost, "/api/contacts", token, map[string]string{"email": "nope"})
	if status != http.StatusBadRequest || len(body["errors"].([]any)) != 3 {
		t.Fatalf("invalid contact: got %d %v", status, body)
	}

	status, body, _ = api.do(http.MethodPost, "/api/contacts", token, map[string]string{
		"firstName": "Jo", "lastName": "Lee", "email": "jo@x.com", "phone": "555",
	})
	if status != http.StatusCreated {
		t.Fatalf("create: got %d %v", status, body)
	}
	joID := id(body["id"])

	status, body, _ = api.do(http.MethodPut, fmt.Sprintf("/api/contacts/%d", joID), token, `{"company":"Acme","phone":null}`)
	if status != http.StatusOK || body["company"] != "Acme" || body["phone"] != "555" || body["firstName"] != "Jo" {
		t.Fatalf("update: got %d %v", status, body)
	}

	status, _, list := api.do(http.MethodGet, "/api/contacts", token, nil)
	if status != http.StatusOK || len(list) != 1 {
		t.Fatalf("list: got %d %v", status, list)
	}

	status, body, _ = api.do(http.MethodGet, "/api/contacts/abc", token, nil)
	if status != http.StatusNotFound || body["error"] != "Contact not found" {
		t.Fatalf("non-numeric id: got %d %v", status, body)
	}

	status, body, _ = api.do(http.MethodPost, "/api/contacts", token, `{"firstName":`)
	if status != http.StatusBadRequest || body["error"] != "Invalid request body" {
		t.Fatalf("malformed body: got %d %v", status, body)
	}

	status, body, _ = api.do(http.MethodDelete, fmt.Sprintf("/api/contacts/%d", joID), token, nil)
	if status != http.StatusOK || body["message"] != "Contact deleted successfully" {
		t.Fatalf("delete: got %d %v", status, body)
	}
	status, _, _ = api.do(http.MethodDelete, fmt.Sprintf("/api/contacts/%d", joID), token, nil)
	if status != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", status)
	}
}

func TestCampaignContactRoutes(t *testing.T) {
	api := newAPI(t, nil)
	tokenA := api.register("a@x.com")
	tokenB := api.register("b@x.com")

	_, body, _ := api.do(http.MethodPost, "/api/campaigns", tokenA, map[string]string{
		"name": "Launch", "subject": "Hi {first_name}", "message": "Hello {first_name} from {company}",
	})
	campaignID := id(body["id"])
	_, body, _ = api.do(http.MethodPost, "/api/contacts", tokenA, map[string]string{
		"firstName": "Jo", "lastName": "Lee", "email": "jo@x.com", "company": "Acme",
	})
	joID := id(body["id"])
	_, body, _ = api.do(http.MethodPost, "/api/contacts", tokenB, map[string]string{
		"firstName": "Bo", "lastName": "Kim", "email": "bo@x.com",
	})
	boID := id(body["id"])

	path := fmt.Sprintf("/api/campaigns/%d/contacts", campaignID)

	status, body, _ := api.do(http.MethodPost, path, tokenA, map[string]any{"contactIds": []int64{}})
	if status != http.StatusBadRequest || body["error"] != "contactIds array is required" {
		t.Fatalf("empty ids: got %d %v", status, body)
	}
	status, body, _ = api.do(http.MethodPost, path, tokenA, map[string]any{"contactIds": "1"})
	if status != http.StatusBadRequest || body["error"] != "contactIds array is required" {
		t.Fatalf("non-array ids: got %d %v", status, body)
	}
	status, body, _ = api.do(http.MethodPost, path, tokenA, map[string]any{"contactIds": []int64{joID, boID}})
	if status != http.StatusBadRequest || body["error"] != "One or more contacts not found" {
		t.Fatalf("foreign contact: got %d %v", status, body)
	}
	status, body, _ = api.do(http.MethodPost, path, tokenB, map[string]any{"contactIds": []int64{boID}})
	if status != http.StatusNotFound || body["error"] != "Campaign not found" {
		t.Fatalf("foreign campaign: got %d %v", status, body)
	}

	status, _, list := api.do(http.MethodGet, path, tokenA, nil)
	if status != http.StatusOK || len(list) != 0 {
		t.Fatalf("nothing should be assigned after failures, got %d %v", status, list)
	}

	for i := 0; i < 2; i++ {
		status, body, _ = api.do(http.MethodPost, path, tokenA, map[string]any{"contactIds": []int64{joID, joID}})
		if status != http.StatusCreated {
			t.Fatalf("add %d: got %d %v", i, status, body)
		}
	}
	status, _, list = api.do(http.MethodGet, path, tokenA, nil)
	if status != http.StatusOK || len(list) != 1 {
		t.Fatalf("add must be idempotent, got %d %v", status, list)
	}
	if list[0].(map[string]any)["company"] != "Acme" {
		t.Errorf("expected company in contact projection, got %v", list[0])
	}

	status, body, _ = api.do(http.MethodPost, fmt.Sprintf("/api/campaigns/%d/preview", campaignID), tokenA,
		map[string]any{"contactId": joID})
	if status != http.StatusOK || body["subject"] != "Hi Jo" || body["message"] != "Hello Jo from Acme" {
		t.Fatalf("preview: got %d %v", status, body)
	}

	remove := fmt.Sprintf("/api/campaigns/%d/contacts/%d", campaignID, joID)
	status, body, _ = api.do(http.MethodDelete, remove, tokenB, nil)
	if status != http.StatusNotFound || body["error"] != "Campaign not found" {
		t.Fatalf("foreign remove: got %d %v", status, body)
	}
	status, body, _ = api.do(http.MethodDelete, remove, tokenA, nil)
	if status != http.StatusOK || body["message"] != "Contact removed from campaign successfully" {
		t.Fatalf("remove: got %d %v", status, body)
	}
	status, body, _ = api.do(http.MethodDelete, remove, tokenA, nil)
	if status != http.StatusNotFound || body["error"] != "Contact not assigned to this campaign" {
		t.Fatalf("second remove: got %d %v", status, body)
	}

	status, _, list = api.do(http.MethodGet, "/api/campaigns?status=draft", tokenA, nil)
	if status != http.StatusOK || len(list) != 1 {
		t.Fatalf("status filter: got %d %v", status, list)
	}
	status, _, list = api.do(http.MethodGet, "/api/campaigns?status=sent", tokenA, nil)
	if status != http.StatusOK || len(list) != 0 {
		t.Fatalf("status filter: got %d %v", status, list)
	}

	status, body, _ = api.do(http.MethodDelete, fmt.Sprintf("/api/campaigns/%d", campaignID), tokenA, nil)
	if status != http.StatusOK || body["message"] != "Campaign deleted successfully" {
		t.Fatalf("delete campaign: got %d %v", status, body)
	}
	status, _, _ = api.do(http.MethodGet, path, tokenA, nil)
	if status != http.StatusNotFound {
		t.Fatalf("contacts of deleted campaign: expected 404, got %d", status)
	}
}

func TestFallbackRoutes(t *testing.T) {
	api := newAPI(t, nil)

	status, body, _ := api.do(http.MethodGet, "/api/health", "", nil)
	if status != http.StatusOK || body["status"] != "OK" || body["message"] != "CampaignHub API is running" {
		t.Fatalf("health: got %d %v", status, body)
	}

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/nope"},
		{http.MethodGet, "/"},
		{http.MethodPatch, "/api/health"},
	} {
		status, body, _ := api.do(tc.method, tc.path, "", nil)
		if status != http.StatusNotFound || body["error"] != "Route not found" {
			t.Errorf("%s %s: expected 404 Route not found, got %d %v", tc.method, tc.path, status, body)
		}
	}
}

func TestAuthRateLimit(t *testing.T) {
	limiter := middleware.NewLimiterStore(1, 2, time.Hour)
	t.Cleanup(limiter.Stop)
	api := newAPI(t, limiter)

	creds := map[string]string{"email": "a@x.com", "password": "whatever"}
	for i := 0; i < 2; i++ {
		if status, _, _ := api.do(http.MethodPost, "/api/auth/login", "", creds); status != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i, status)
		}
	}
	status, body, _ := api.do(http.MethodPost, "/api/auth/login", "", creds)
	if status != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d %v", status, body)
	}

	// health is not limited
	if status, _, _ := api.do(http.MethodGet, "/api/health", "", nil); status != http.StatusOK {
		t.Fatalf("health should not be limited, got %d", status)
	}
}

func TestAddContactsLargeList(t *testing.T) {
	api := newAPI(t, nil)
	token := api.register("a@x.com")

	_, body, _ := api.do(http.MethodPost, "/api/campaigns", token, map[string]string{
		"name": "Launch", "subject": "Hi", "message": "Hello",
	})
	campaignID := id(body["id"])

	ids := make([]int64, 40000)
	for i := range ids {
		ids[i] = int64(i + 1)
	}
	status, body, _ := api.do(http.MethodPost, fmt.Sprintf("/api/campaigns/%d/contacts", campaignID), token,
		map[string]any{"contactIds": ids})
	if status != http.StatusBadRequest || body["error"] != "One or more contacts not found" {
		t.Fatalf("expected 400 for unowned ids, got %d %v", status, body)
	}
}

func TestEmptyUpdateKeepsFields(t *testing.T) {
	api := newAPI(t, nil)
	token := api.register("a@x.com")

	_, contact, _ := api.do(http.MethodPost, "/api/contacts", token, map[string]string{
		"firstName": "Jo", "lastName": "Lee", "email": "jo@x.com", "phone": "555",
	})
	status, body, _ := api.do(http.MethodPut, fmt.Sprintf("/api/contacts/%d", id(contact["id"])), token, `{}`)
	if status != http.StatusOK {
		t.Fatalf("contact update: got %d %v", status, body)
	}
	for _, k := range []string{"firstName", "lastName", "email", "phone", "company", "notes", "createdAt"} {
		if body[k] != contact[k] {
			t.Errorf("contact %s changed: %v -> %v", k, contact[k], body[k])
		}
	}

	_, campaign, _ := api.do(http.MethodPost, "/api/campaigns", token, map[string]string{
		"name": "Launch", "subject": "Hi", "message": "Hello",
	})
	status, body, _ = api.do(http.MethodPut, fmt.Sprintf("/api/campaigns/%d", id(campaign["id"])), token, `{}`)
	if status != http.StatusOK {
		t.Fatalf("campaign update: got %d %v", status, body)
	}
	for _, k := range []string{"name", "subject", "message", "status", "scheduledAt", "sentAt", "createdAt"} {
		if body[k] != campaign[k] {
			t.Errorf("campaign %s changed: %v -> %v", k, campaign[k], body[k])
		}
	}
}

func TestCreateCampaignBlankScheduledAt(t *testing.T) {
	api := newAPI(t, nil)
	token := api.register("a@x.com")

	status, body, _ := api.do(http.MethodPost, "/api/campaigns", token,
		`{"name":"Launch","subject":"Hi","message":"Hello","scheduledAt":""}`)
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d %v", status, body)
	}
	if body["scheduledAt"] != nil {
		t.Errorf("expected null scheduledAt, got %v", body["scheduledAt"])
	}

	status, body, _ = api.do(http.MethodPut, fmt.Sprintf("/api/campaigns/%d", id(body["id"])), token,
		`{"scheduledAt":""}`)
	if status != http.StatusOK || body["scheduledAt"] != nil {
		t.Fatalf("blank scheduledAt on update: got %d %v", status, body)
	}
}
