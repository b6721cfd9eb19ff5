//go:build db
// +build db

package deposits

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
	"github.com/colisdirect/colisdirect-backend/pkg/pagination"
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

func seedLedgerAgent(t *testing.T, tx *gorm.DB) *models.User {
	t.Helper()
	org := &models.Organization{
		ID:   uuid.New(),
		Name: "Ledger Test Org",
		Slug: fmt.Sprintf("ledger-test-%s", uuid.NewString()),
	}
	if err := tx.Create(org).Error; err != nil {
		t.Fatalf("create organization: %v", err)
	}
	agent := &models.User{
		ID:             uuid.New(),
		Email:          fmt.Sprintf("cd_test_%s@example.com", uuid.NewString()),
		PasswordHash:   "hash",
		Name:           "Ledger Agent",
		Role:           enums.MemberRoleDelivery,
		OrganizationID: org.ID,
		Active:         true,
	}
	if err := tx.Create(agent).Error; err != nil {
		t.Fatalf("create agent: %v", err)
	}
	return agent
}

func TestRepositoryDepositLedgerFlow(t *testing.T) {
	conn := openTestDB(t)
	tx := conn.Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() {
		_ = tx.Rollback()
	})

	repo := NewRepository(tx)
	ctx := context.Background()
	agent := seedLedgerAgent(t, tx)
	admin := seedLedgerAgent(t, tx)

	deposit, err := repo.Create(ctx, &models.Deposit{
		DeliveryManID:  agent.ID,
		OrganizationID: agent.OrganizationID,
		Amount:         decimal.NewFromInt(600),
		Status:         enums.DepositStatusPending,
		Date:           time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("create deposit: %v", err)
	}

	pending, err := repo.SumDepositsByStatus(ctx, agent.OrganizationID, agent.ID, enums.DepositStatusPending)
	if err != nil {
		t.Fatalf("sum pending: %v", err)
	}
	if !pending.Equal(decimal.NewFromInt(600)) {
		t.Fatalf("expected 600 pending, got %s", pending)
	}

	// The admin seeded above belongs to a different organization; its scope
	// must not reach the agent's ledger.
	rows, err := repo.ResolvePending(ctx, admin.OrganizationID, deposit.ID, enums.DepositStatusConfirmed, admin.ID)
	if err != nil {
		t.Fatalf("cross-org resolve: %v", err)
	}
	if rows != 0 {
		t.Fatalf("a foreign organization must not resolve the deposit, got %d rows", rows)
	}
	if _, err := repo.FindByID(ctx, admin.OrganizationID, deposit.ID); err == nil {
		t.Fatalf("a foreign organization must not read the deposit")
	}

	rows, err = repo.ResolvePending(ctx, agent.OrganizationID, deposit.ID, enums.DepositStatusConfirmed, admin.ID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected one resolved row, got %d", rows)
	}

	rows, err = repo.ResolvePending(ctx, agent.OrganizationID, deposit.ID, enums.DepositStatusRejected, admin.ID)
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if rows != 0 {
		t.Fatalf("a deposit resolves exactly once, got %d rows", rows)
	}

	resolved, err := repo.FindByID(ctx, agent.OrganizationID, deposit.ID)
	if err != nil {
		t.Fatalf("reload deposit: %v", err)
	}
	if resolved.Status != enums.DepositStatusConfirmed {
		t.Fatalf("expected confirmed, got %s", resolved.Status)
	}
	if resolved.ResolvedBy == nil || *resolved.ResolvedBy != admin.ID {
		t.Fatalf("expected resolver recorded")
	}

	confirmed, err := repo.SumDepositsByStatus(ctx, agent.OrganizationID, agent.ID, enums.DepositStatusConfirmed)
	if err != nil {
		t.Fatalf("sum confirmed: %v", err)
	}
	if !confirmed.Equal(decimal.NewFromInt(600)) {
		t.Fatalf("expected 600 confirmed, got %s", confirmed)
	}

	status := enums.DepositStatusConfirmed
	list, err := repo.List(ctx, agent.OrganizationID, pagination.Params{}, ListFilters{
		DeliveryManID: &agent.ID,
		Status:        &status,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list.Deposits) != 1 || list.Deposits[0].ID != deposit.ID {
		t.Fatalf("expected the confirmed deposit in the list, got %+v", list.Deposits)
	}

	foreign, err := repo.List(ctx, admin.OrganizationID, pagination.Params{}, ListFilters{})
	if err != nil {
		t.Fatalf("foreign list: %v", err)
	}
	if len(foreign.Deposits) != 0 {
		t.Fatalf("a foreign organization must not see the ledger, got %+v", foreign.Deposits)
	}
}
