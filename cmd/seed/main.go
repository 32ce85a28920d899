// Seeding tool for local development: creates a demo chapter with a
// leader, a few members, trades, and metric submissions so the stats and
// activity endpoints return something meaningful.
//
// Usage (env overrides):
//
//	SEED_LEADER_EMAIL=amina@example.com SEED_PASSWORD=Password123
//
// Reads DATABASE_URL and other core config via chapterlink/pkg/config
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"chapterlink/internal/domain"
	"chapterlink/internal/repository/postgres"
	"chapterlink/pkg/config"
	"chapterlink/pkg/logger"
)

func main() {
	log := logger.New("seed")

	cfg := config.Load()
	if err := cfg.ValidateCore(); err != nil {
		log.Fatal("Invalid configuration", map[string]interface{}{"error": err.Error()})
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatal("Failed to connect to database", map[string]interface{}{"error": err.Error()})
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)
	chapterRepo := postgres.NewChapterRepository(db)
	memberRepo := postgres.NewMemberRepository(db)
	tradeRepo := postgres.NewTradeRepository(db)
	metricRepo := postgres.NewMetricRepository(db)
	ctx := context.Background()

	password := getenv("SEED_PASSWORD", "Password123")

	leaderID := ensureUser(ctx, userRepo, log, getenv("SEED_LEADER_EMAIL", "amina@example.com"),
		password, "+254711000001", "Amina Wanjiru", "Wanjiru Textiles")
	memberIDs := []uuid.UUID{
		ensureUser(ctx, userRepo, log, "brian@example.com", password, "+254711000002", "Brian Otieno", "Otieno Agri Supplies"),
		ensureUser(ctx, userRepo, log, "cynthia@example.com", password, "+254711000003", "Cynthia Mwangi", "CM Catering"),
		ensureUser(ctx, userRepo, log, "david@example.com", password, "+254711000004", "David Kiprop", ""),
	}

	chapterID := ensureChapter(ctx, chapterRepo, log, getenv("SEED_CHAPTER", "Nairobi West"), "Nairobi", leaderID)

	leaderMemberID := ensureMember(ctx, memberRepo, log, chapterID, leaderID, domain.RoleLeader)
	chapterMemberIDs := []uuid.UUID{leaderMemberID}
	roles := []domain.MemberRole{domain.RoleTreasurer, domain.RoleMember, domain.RoleMember}
	for i, uid := range memberIDs {
		chapterMemberIDs = append(chapterMemberIDs, ensureMember(ctx, memberRepo, log, chapterID, uid, roles[i]))
	}

	now := time.Now()
	seedMetrics(ctx, metricRepo, log, chapterID, chapterMemberIDs, now)
	seedTrades(ctx, tradeRepo, log, chapterID, leaderID, memberIDs, now)

	fmt.Println("OK: demo chapter seeded")
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func ensureUser(ctx context.Context, repo *postgres.UserRepository, log logger.Logger, email, password, phone, fullName, businessName string) uuid.UUID {
	exists, err := repo.ExistsByEmail(ctx, email)
	if err != nil {
		log.Fatal("ExistsByEmail failed", map[string]interface{}{"error": err.Error()})
	}
	if exists {
		user, err := repo.FindByEmail(ctx, email)
		if err != nil {
			log.Fatal("FindByEmail failed", map[string]interface{}{"error": err.Error()})
		}
		return user.ID
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Hash failed", map[string]interface{}{"error": err.Error()})
	}
	now := time.Now()
	u := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		Phone:        phone,
		PasswordHash: string(hash),
		FullName:     fullName,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if businessName != "" {
		u.BusinessName = &businessName
	}
	if err := repo.Create(ctx, u); err != nil {
		log.Fatal("Create user failed", map[string]interface{}{"error": err.Error()})
	}
	log.Info("User created", map[string]interface{}{"email": email})
	return u.ID
}

func ensureChapter(ctx context.Context, repo *postgres.ChapterRepository, log logger.Logger, name, region string, leaderID uuid.UUID) uuid.UUID {
	chapters, err := repo.List(ctx, 100, 0)
	if err != nil {
		log.Fatal("List chapters failed", map[string]interface{}{"error": err.Error()})
	}
	for _, c := range chapters {
		if c.Name == name {
			return c.ID
		}
	}

	now := time.Now()
	c := &domain.Chapter{
		ID:        uuid.New(),
		Name:      name,
		Region:    region,
		LeaderID:  leaderID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.Create(ctx, c); err != nil {
		log.Fatal("Create chapter failed", map[string]interface{}{"error": err.Error()})
	}
	log.Info("Chapter created", map[string]interface{}{"name": name})
	return c.ID
}

func ensureMember(ctx context.Context, repo *postgres.MemberRepository, log logger.Logger, chapterID, userID uuid.UUID, role domain.MemberRole) uuid.UUID {
	existing, err := repo.FindByChapter(ctx, chapterID)
	if err != nil {
		log.Fatal("FindByChapter failed", map[string]interface{}{"error": err.Error()})
	}
	for _, m := range existing {
		if m.UserID == userID {
			return m.ID
		}
	}

	m := &domain.ChapterMember{
		ID:        uuid.New(),
		ChapterID: chapterID,
		UserID:    userID,
		Role:      role,
		CreatedAt: time.Now(),
	}
	if err := repo.Create(ctx, m); err != nil {
		log.Fatal("Create member failed", map[string]interface{}{"error": err.Error()})
	}
	return m.ID
}

func seedMetrics(ctx context.Context, repo *postgres.MetricRepository, log logger.Logger, chapterID uuid.UUID, memberIDs []uuid.UUID, now time.Time) {
	participation := []float64{95, 80, 70, 60}
	learning := []float64{6, 4, 3, 2}

	for i, mid := range memberIDs {
		for _, sub := range []struct {
			t domain.MetricType
			v float64
		}{
			{domain.MetricParticipation, participation[i%len(participation)]},
			{domain.MetricLearning, learning[i%len(learning)]},
			{domain.MetricActivity, float64(3 + i)},
			{domain.MetricNetworking, float64(2 + i)},
		} {
			s := &domain.MetricSubmission{
				ID:        uuid.New(),
				ChapterID: chapterID,
				MemberID:  mid,
				Type:      sub.t,
				Value:     sub.v,
				CreatedAt: now.Add(-time.Duration(i) * time.Hour),
			}
			if err := repo.Create(ctx, s); err != nil {
				log.Fatal("Create metric failed", map[string]interface{}{"error": err.Error()})
			}
		}
	}
	log.Info("Metrics seeded", map[string]interface{}{"members": len(memberIDs)})
}

func seedTrades(ctx context.Context, repo *postgres.TradeRepository, log logger.Logger, chapterID, leaderID uuid.UUID, userIDs []uuid.UUID, now time.Time) {
	amounts := []int64{45_000, 12_500, 8_000}
	ref := "SGH7KL2M9Q"

	for i, uid := range userIDs {
		t := &domain.Trade{
			ID:        uuid.New(),
			ChapterID: chapterID,
			UserID:    uid,
			Amount:    decimal.NewFromInt(amounts[i%len(amounts)]),
			Status:    domain.TradeStatusPending,
			CreatedAt: now.Add(-time.Duration(i*2) * time.Hour),
			UpdatedAt: now.Add(-time.Duration(i*2) * time.Hour),
		}
		if i == 0 {
			t.Status = domain.TradeStatusPaid
			t.MpesaReference = &ref
		}
		if err := repo.Create(ctx, t); err != nil {
			log.Fatal("Create trade failed", map[string]interface{}{"error": err.Error()})
		}
	}

	// One paid trade for the leader so the revenue figures include them.
	lt := &domain.Trade{
		ID:        uuid.New(),
		ChapterID: chapterID,
		UserID:    leaderID,
		Amount:    decimal.NewFromInt(30_000),
		Status:    domain.TradeStatusInvoiced,
		CreatedAt: now.Add(-26 * time.Hour),
		UpdatedAt: now.Add(-26 * time.Hour),
	}
	if err := repo.Create(ctx, lt); err != nil {
		log.Fatal("Create trade failed", map[string]interface{}{"error": err.Error()})
	}
	log.Info("Trades seeded", map[string]interface{}{"count": len(userIDs) + 1})
}
