//go:build db
// +build db

package analytics

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/colisdirect/colisdirect-backend/pkg/db/models"
	"github.com/colisdirect/colisdirect-backend/pkg/enums"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("COLISDIRECT_DB_DSN")
	if dsn == "" {
		t.Skip("COLISDIRECT_DB_DSN is not set")
	}

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	return conn
}

func seedStatsAgent(t *testing.T, tx *gorm.DB) *models.User {
	t.Helper()
	org := &models.Organization{
		ID:   uuid.New(),
		Name: "Stats Test Org",
		Slug: fmt.Sprintf("stats-test-%s", uuid.NewString()),
	}
	if err := tx.Create(org).Error; err != nil {
		t.Fatalf("create organization: %v", err)
	}
	agent := &models.User{
		ID:             uuid.New(),
		Email:          fmt.Sprintf("cd_test_%s@example.com", uuid.NewString()),
		PasswordHash:   "hash",
		Name:           "Stats Agent",
		Role:           enums.MemberRoleDelivery,
		OrganizationID: org.ID,
		Active:         true,
	}
	if err := tx.Create(agent).Error; err != nil {
		t.Fatalf("create agent: %v", err)
	}
	return agent
}

func seedDeliveredOrder(t *testing.T, tx *gorm.DB, agent *models.User, total int64, createdAt, deliveredAt time.Time) {
	t.Helper()
	order := &models.Order{
		ID:              uuid.New(),
		OrderNumber:     fmt.Sprintf("CMD-%s", uuid.NewString()[:8]),
		OrganizationID:  agent.OrganizationID,
		CustomerName:    "Client Test",
		CustomerPhone:   "+21620000000",
		CustomerAddress: "12 rue de Marseille",
		City:            "Tunis",
		Total:           decimal.NewFromInt(total),
		PaymentMethod:   enums.PaymentMethodCash,
		Status:          enums.OrderStatusDelivered,
		AssignedAgentID: &agent.ID,
	}
	if err := tx.Create(order).Error; err != nil {
		t.Fatalf("create order: %v", err)
	}
	// gorm stamps created_at itself, so force the historical values.
	if err := tx.Model(order).UpdateColumns(map[string]any{
		"created_at":   createdAt,
		"delivered_at": deliveredAt,
	}).Error; err != nil {
		t.Fatalf("backdate order: %v", err)
	}
}

func TestRepositoryPeriodColumns(t *testing.T) {
	tx := openTestDB(t).Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() {
		_ = tx.Rollback()
	})

	repo := NewRepository(tx)
	ctx := context.Background()
	agent := seedStatsAgent(t, tx)

	january := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	march := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	// Created in January, delivered in March: the counter belongs to January,
	// the cash belongs to March.
	seedDeliveredOrder(t, tx, agent, 200, january, march)
	// Fully inside March.
	seedDeliveredOrder(t, tx, agent, 300, march, march)

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC)
	period := Period{From: &from, To: &to}

	row, err := repo.AgentCounters(ctx, agent.ID, period)
	if err != nil {
		t.Fatalf("agent counters: %v", err)
	}
	if row.Delivered != 1 {
		t.Fatalf("counters bound by created_at: expected 1 March order, got %d", row.Delivered)
	}

	cash, err := repo.SumCashCollected(ctx, agent.ID, period)
	if err != nil {
		t.Fatalf("sum cash: %v", err)
	}
	if !cash.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("cash bound by delivered_at: expected 500, got %s", cash)
	}

	all, err := repo.SumCashCollected(ctx, agent.ID, Period{})
	if err != nil {
		t.Fatalf("sum cash all-time: %v", err)
	}
	if !all.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected 500 all-time, got %s", all)
	}
}
