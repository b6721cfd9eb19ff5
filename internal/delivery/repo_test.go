//go:build db
// +build db

package delivery

import (
	"context"
	"fmt"
	"os"
	"testing"

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

func beginTestTx(t *testing.T) *gorm.DB {
	t.Helper()
	tx := openTestDB(t).Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() {
		_ = tx.Rollback()
	})
	return tx
}

func seedOrganization(t *testing.T, tx *gorm.DB) *models.Organization {
	t.Helper()
	org := &models.Organization{
		ID:   uuid.New(),
		Name: "Repo Test Org",
		Slug: fmt.Sprintf("repo-test-%s", uuid.NewString()),
	}
	if err := tx.Create(org).Error; err != nil {
		t.Fatalf("create organization: %v", err)
	}
	return org
}

func seedAgent(t *testing.T, tx *gorm.DB, orgID uuid.UUID) *models.User {
	t.Helper()
	agent := &models.User{
		ID:             uuid.New(),
		Email:          fmt.Sprintf("cd_test_%s@example.com", uuid.NewString()),
		PasswordHash:   "hash",
		Name:           "Repo Agent",
		Role:           enums.MemberRoleDelivery,
		OrganizationID: orgID,
		Active:         true,
	}
	if err := tx.Create(agent).Error; err != nil {
		t.Fatalf("create agent: %v", err)
	}
	return agent
}

func seedOrder(t *testing.T, tx *gorm.DB, orgID uuid.UUID, status enums.OrderStatus) *models.Order {
	t.Helper()
	order := &models.Order{
		ID:              uuid.New(),
		OrderNumber:     fmt.Sprintf("CMD-%s", uuid.NewString()[:8]),
		OrganizationID:  orgID,
		CustomerName:    "Client Test",
		CustomerPhone:   "+21620000000",
		CustomerAddress: "12 rue de Marseille",
		City:            "Tunis",
		Total:           decimal.NewFromInt(120),
		PaymentMethod:   enums.PaymentMethodCash,
		Status:          status,
	}
	if err := tx.Create(order).Error; err != nil {
		t.Fatalf("create order: %v", err)
	}
	return order
}

func TestRepositoryClaimFlow(t *testing.T) {
	tx := beginTestTx(t)
	repo := NewRepository(tx)
	ctx := context.Background()

	org := seedOrganization(t, tx)
	agent := seedAgent(t, tx, org.ID)
	rival := seedAgent(t, tx, org.ID)
	order := seedOrder(t, tx, org.ID, enums.OrderStatusShipped)

	found, err := repo.FindOrderByIdentifier(ctx, order.OrderNumber)
	if err != nil {
		t.Fatalf("find by order number: %v", err)
	}
	if found.ID != order.ID {
		t.Fatalf("lookup by number returned wrong order")
	}
	found, err = repo.FindOrderByIdentifier(ctx, order.ID.String())
	if err != nil {
		t.Fatalf("find by uuid: %v", err)
	}
	if found.ID != order.ID {
		t.Fatalf("lookup by uuid returned wrong order")
	}

	rows, err := repo.ClaimOrder(ctx, order.ID, agent.ID)
	if err != nil {
		t.Fatalf("claim order: %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected claim to touch one row, got %d", rows)
	}

	rows, err = repo.ClaimOrder(ctx, order.ID, rival.ID)
	if err != nil {
		t.Fatalf("rival claim: %v", err)
	}
	if rows != 0 {
		t.Fatalf("claimed order must not be claimable again, got %d rows", rows)
	}

	claimed, err := repo.FindOrderByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if claimed.Status != enums.OrderStatusAssigned {
		t.Fatalf("expected assigned status, got %s", claimed.Status)
	}
	if claimed.AssignedAgentID == nil || *claimed.AssignedAgentID != agent.ID {
		t.Fatalf("expected order held by first agent")
	}
}

func TestRepositoryTransitionGuardsPriorStatus(t *testing.T) {
	tx := beginTestTx(t)
	repo := NewRepository(tx)
	ctx := context.Background()

	org := seedOrganization(t, tx)
	agent := seedAgent(t, tx, org.ID)
	order := seedOrder(t, tx, org.ID, enums.OrderStatusShipped)

	if _, err := repo.ClaimOrder(ctx, order.ID, agent.ID); err != nil {
		t.Fatalf("claim order: %v", err)
	}

	rows, err := repo.TransitionOrder(ctx, order.ID, enums.OrderStatusAssigned, map[string]any{
		"status": enums.OrderStatusDelivered,
	})
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected transition to touch one row, got %d", rows)
	}

	rows, err = repo.TransitionOrder(ctx, order.ID, enums.OrderStatusAssigned, map[string]any{
		"status": enums.OrderStatusReturned,
	})
	if err != nil {
		t.Fatalf("stale transition: %v", err)
	}
	if rows != 0 {
		t.Fatalf("stale prior status must not match, got %d rows", rows)
	}
}

func TestRepositoryListsScopeToAgent(t *testing.T) {
	tx := beginTestTx(t)
	repo := NewRepository(tx)
	ctx := context.Background()

	org := seedOrganization(t, tx)
	agent := seedAgent(t, tx, org.ID)
	other := seedAgent(t, tx, org.ID)

	mine := seedOrder(t, tx, org.ID, enums.OrderStatusShipped)
	done := seedOrder(t, tx, org.ID, enums.OrderStatusShipped)
	theirs := seedOrder(t, tx, org.ID, enums.OrderStatusShipped)

	for _, claim := range []struct {
		orderID uuid.UUID
		agentID uuid.UUID
	}{
		{mine.ID, agent.ID},
		{done.ID, agent.ID},
		{theirs.ID, other.ID},
	} {
		if _, err := repo.ClaimOrder(ctx, claim.orderID, claim.agentID); err != nil {
			t.Fatalf("claim: %v", err)
		}
	}
	if _, err := repo.TransitionOrder(ctx, done.ID, enums.OrderStatusAssigned, map[string]any{
		"status": enums.OrderStatusDelivered,
	}); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	assigned, err := repo.ListAssignedOrders(ctx, agent.ID, pagination.Params{})
	if err != nil {
		t.Fatalf("list assigned: %v", err)
	}
	if len(assigned.Orders) != 1 || assigned.Orders[0].ID != mine.ID {
		t.Fatalf("expected only the active order for this agent, got %+v", assigned.Orders)
	}

	resolved, err := repo.ListResolvedOrders(ctx, agent.ID, pagination.Params{})
	if err != nil {
		t.Fatalf("list resolved: %v", err)
	}
	if len(resolved.Orders) != 1 || resolved.Orders[0].ID != done.ID {
		t.Fatalf("expected only the delivered order, got %+v", resolved.Orders)
	}
}

func TestRepositoryBordereauResolution(t *testing.T) {
	tx := beginTestTx(t)
	repo := NewRepository(tx)
	ctx := context.Background()

	org := seedOrganization(t, tx)
	agent := seedAgent(t, tx, org.ID)
	bordereau := &models.Bordereau{
		ID:             uuid.New(),
		Code:           fmt.Sprintf("BRD-%s", uuid.NewString()[:8]),
		OrganizationID: org.ID,
		Status:         enums.BordereauStatusAssigned,
		DeliveryManID:  &agent.ID,
		TotalAmount:    decimal.NewFromInt(240),
	}
	if err := tx.Create(bordereau).Error; err != nil {
		t.Fatalf("create bordereau: %v", err)
	}

	open := seedOrder(t, tx, org.ID, enums.OrderStatusAssigned)
	closed := seedOrder(t, tx, org.ID, enums.OrderStatusDelivered)
	for _, order := range []*models.Order{open, closed} {
		if err := tx.Model(order).UpdateColumn("bordereau_id", bordereau.ID).Error; err != nil {
			t.Fatalf("attach order: %v", err)
		}
	}

	count, err := repo.CountUnresolvedByBordereau(ctx, bordereau.ID)
	if err != nil {
		t.Fatalf("count unresolved: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one unresolved order, got %d", count)
	}

	if _, err := repo.TransitionOrder(ctx, open.ID, enums.OrderStatusAssigned, map[string]any{
		"status": enums.OrderStatusReturned,
	}); err != nil {
		t.Fatalf("return order: %v", err)
	}

	count, err = repo.CountUnresolvedByBordereau(ctx, bordereau.ID)
	if err != nil {
		t.Fatalf("recount unresolved: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected manifest exhausted, got %d open orders", count)
	}

	rows, err := repo.ResolveBordereau(ctx, bordereau.ID)
	if err != nil {
		t.Fatalf("resolve bordereau: %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected resolution to touch one row, got %d", rows)
	}
	rows, err = repo.ResolveBordereau(ctx, bordereau.ID)
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if rows != 0 {
		t.Fatalf("resolution must be one-shot, got %d rows", rows)
	}

	reloaded, err := repo.FindBordereauByIDForUpdate(ctx, bordereau.ID)
	if err != nil {
		t.Fatalf("reload bordereau: %v", err)
	}
	if reloaded.Status != enums.BordereauStatusResolved || reloaded.ResolvedAt == nil {
		t.Fatalf("expected resolved manifest, got %+v", reloaded)
	}
}
