// cmd/seeder/main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/unclebandit/campaignhub-backend/internal/auth"
	"github.com/unclebandit/campaignhub-backend/internal/config"
	"github.com/unclebandit/campaignhub-backend/internal/db"
	"github.com/unclebandit/campaignhub-backend/internal/model"
	"github.com/unclebandit/campaignhub-backend/internal/repository"
	"github.com/unclebandit/campaignhub-backend/internal/service"
	"github.com/unclebandit/campaignhub-backend/internal/validate"
)

const (
	demoEmail    = "demo@campaignhub.dev"
	demoPassword = "demo1234"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fatal(err)
	}
	logger := cfg.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	database, err := db.Open(cfg.DB(logger))
	if err != nil {
		fatal(err)
	}
	defer database.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := db.Migrate(ctx, database); err != nil {
		fatal(err)
	}

	s := newSeeder(database, auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL))
	seeded, err := s.Run(ctx)
	if err != nil {
		fatal(err)
	}
	if !seeded {
		fmt.Printf("Demo user %s already exists, nothing to seed\n", demoEmail)
		return
	}
	fmt.Println("Database seeding completed successfully!")
	fmt.Printf("Log in as %s / %s\n", demoEmail, demoPassword)
}

type seeder struct {
	users     repository.UserRepositoryInterface
	auth      *service.AuthService
	contacts  *service.ContactService
	campaigns *service.CampaignService
}

func newSeeder(database *db.DB, tokens service.TokenIssuer) *seeder {
	userRepo := &repository.UserRepository{DB: database}
	contactRepo := &repository.ContactRepository{DB: database}
	campaignRepo := &repository.CampaignRepository{DB: database}

	return &seeder{
		users:     userRepo,
		auth:      &service.AuthService{UserRepo: userRepo, Tokens: tokens},
		contacts:  &service.ContactService{ContactRepo: contactRepo},
		campaigns: &service.CampaignService{CampaignRepo: campaignRepo, ContactRepo: contactRepo},
	}
}

// Run creates the demo account with a few contacts and campaigns. It reports
// false without writing anything when the demo account already exists.
func (s *seeder) Run(ctx context.Context) (bool, error) {
	exists, err := s.users.ExistsByEmail(ctx, demoEmail)
	if err != nil || exists {
		return false, err
	}

	res, err := s.auth.Register(ctx, validate.RegisterInput{
		Email:     demoEmail,
		Password:  demoPassword,
		FirstName: "Demo",
		LastName:  "User",
	})
	if err != nil {
		return false, fmt.Errorf("seed user: %w", err)
	}
	ownerID := res.User.ID

	var contactIDs []int64
	for _, p := range demoContacts() {
		c, err := s.contacts.CreateContact(ctx, ownerID, p)
		if err != nil {
			return false, fmt.Errorf("seed contact %s: %w", p.Email, err)
		}
		slog.Info("Seeded contact", "email", c.Email)
		contactIDs = append(contactIDs, c.ID)
	}

	welcome, err := s.campaigns.CreateCampaign(ctx, ownerID, model.CreateCampaignParams{
		Name:    "Welcome series",
		Subject: "Welcome aboard, {first_name}!",
		Message: "Hi {first_name} {last_name}, thanks for joining us from {company}.",
	})
	if err != nil {
		return false, fmt.Errorf("seed campaign: %w", err)
	}
	if err := s.campaigns.AddContacts(ctx, welcome.ID, ownerID, contactIDs); err != nil {
		return false, fmt.Errorf("seed campaign contacts: %w", err)
	}

	launch := time.Now().UTC().Add(7 * 24 * time.Hour).Truncate(time.Hour)
	if _, err := s.campaigns.CreateCampaign(ctx, ownerID, model.CreateCampaignParams{
		Name:        "Spring launch",
		Subject:     "Something new is coming",
		Message:     "Hello {first_name}, our spring collection drops next week.",
		Status:      model.CampaignStatusScheduled,
		ScheduledAt: &launch,
	}); err != nil {
		return false, fmt.Errorf("seed campaign: %w", err)
	}

	return true, nil
}

func demoContacts() []model.CreateContactParams {
	str := func(s string) *string { return &s }
	return []model.CreateContactParams{
		{FirstName: "Alice", LastName: "Wanjiru", Email: "alice@example.com", Phone: str("+254700000001"), Company: str("Acme Ltd")},
		{FirstName: "Brian", LastName: "Otieno", Email: "brian@example.com", Company: str("Globex")},
		{FirstName: "Carol", LastName: "Mwangi", Email: "carol@example.com", Notes: str("Met at the spring expo")},
	}
}

func fatal(err error) {
	slog.Error("seeding failed", "error", err)
	os.Exit(1)
}
