package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/colisdirect/colisdirect-backend/pkg/db/models"
	"github.com/colisdirect/colisdirect-backend/pkg/enums"
	"github.com/colisdirect/colisdirect-backend/pkg/logger"
	"github.com/colisdirect/colisdirect-backend/pkg/outbox"
	"github.com/colisdirect/colisdirect-backend/pkg/outbox/idempotency"
	"github.com/colisdirect/colisdirect-backend/pkg/outbox/payloads"
)

const deliveryNotificationConsumer = "delivery-notifications"

type notificationWriter interface {
	CreateBatch(ctx context.Context, notifications []models.Notification) error
}

type userFinder interface {
	ListAdmins(ctx context.Context, organizationID uuid.UUID) ([]models.User, error)
}

// Consumer watches delivery domain events and fans them out into per-user
// notification rows.
type Consumer struct {
	repo         notificationWriter
	users        userFinder
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	logg         *logger.Logger
}

// NewConsumer builds a delivery notification consumer.
func NewConsumer(repo notificationWriter, users userFinder, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if users == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("delivery subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		users:        users,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	rawType := msg.Attributes["event_type"]
	fields := map[string]any{
		"message_id": msg.ID,
		"event_type": rawType,
	}
	logCtx := c.logg.WithFields(ctx, fields)

	eventType, err := enums.ParseOutboxEventType(rawType)
	if err != nil {
		c.logg.Info(logCtx, "skipping unknown event")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, deliveryNotificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	if err := c.handleEvent(ctx, eventType, envelope.Data, logCtx); err != nil {
		c.logg.Error(logCtx, "notification handling failed", err)
		_ = c.idempotency.Delete(ctx, deliveryNotificationConsumer, eventID)
		return processResult{nack: true}
	}

	return processResult{ack: true}
}

func (c *Consumer) handleEvent(ctx context.Context, eventType enums.OutboxEventType, data json.RawMessage, logCtx context.Context) error {
	switch eventType {
	case enums.EventOrderClaimed:
		var payload payloads.OrderClaimedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return err
		}
		return c.notifyOrderClaimed(ctx, payload, logCtx)
	case enums.EventBordereauClaimed:
		var payload payloads.BordereauClaimedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return err
		}
		return c.notifyBordereauClaimed(ctx, payload, logCtx)
	case enums.EventOrderStatusChanged:
		var payload payloads.OrderStatusChangedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return err
		}
		return c.notifyOrderStatusChanged(ctx, payload, logCtx)
	case enums.EventBordereauResolved:
		var payload payloads.BordereauResolvedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return err
		}
		return c.notifyBordereauResolved(ctx, payload, logCtx)
	case enums.EventDepositDeclared:
		var payload payloads.DepositDeclaredEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return err
		}
		return c.notifyDepositDeclared(ctx, payload, logCtx)
	case enums.EventDepositResolved:
		var payload payloads.DepositResolvedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return err
		}
		return c.notifyDepositResolved(ctx, payload, logCtx)
	default:
		c.logg.Info(logCtx, "event not handled")
		return nil
	}
}

func (c *Consumer) notifyOrderClaimed(ctx context.Context, payload payloads.OrderClaimedEvent, logCtx context.Context) error {
	link := fmt.Sprintf("/orders/%s", payload.OrderID)
	title := "Order claimed"
	message := fmt.Sprintf("%s picked up order %s.", payload.AgentName, payload.OrderNumber)

	rows, err := c.adminRows(ctx, payload.OrganizationID, enums.NotificationTypeOrderClaimed, title, message, link)
	if err != nil {
		return err
	}
	if payload.FournisseurID != nil {
		rows = append(rows, buildNotification(*payload.FournisseurID, enums.NotificationTypeOrderClaimed, title, message, link))
	}
	if err := c.repo.CreateBatch(ctx, rows); err != nil {
		return err
	}
	c.logg.Info(logCtx, "order claim notifications created")
	return nil
}

func (c *Consumer) notifyBordereauClaimed(ctx context.Context, payload payloads.BordereauClaimedEvent, logCtx context.Context) error {
	link := fmt.Sprintf("/bordereaux/%s", payload.BordereauID)
	title := "Bordereau claimed"
	message := fmt.Sprintf("%s picked up bordereau %s (%d orders, %s DT).",
		payload.AgentName, payload.Code, payload.OrderCount, payload.TotalAmount.StringFixed(2))

	rows, err := c.adminRows(ctx, payload.OrganizationID, enums.NotificationTypeBordereauClaimed, title, message, link)
	if err != nil {
		return err
	}
	if err := c.repo.CreateBatch(ctx, rows); err != nil {
		return err
	}
	c.logg.Info(logCtx, "bordereau claim notifications created")
	return nil
}

func (c *Consumer) notifyOrderStatusChanged(ctx context.Context, payload payloads.OrderStatusChangedEvent, logCtx context.Context) error {
	link := fmt.Sprintf("/orders/%s", payload.OrderID)
	title := "Order status changed"
	message := fmt.Sprintf("Order %s moved from %s to %s.", payload.OrderNumber, payload.OldStatus, payload.NewStatus)
	if payload.Note != nil && *payload.Note != "" {
		message = fmt.Sprintf("%s Note: %s", message, *payload.Note)
	}

	rows, err := c.adminRows(ctx, payload.OrganizationID, enums.NotificationTypeOrderStatusChanged, title, message, link)
	if err != nil {
		return err
	}
	if payload.FournisseurID != nil {
		rows = append(rows, buildNotification(*payload.FournisseurID, enums.NotificationTypeOrderStatusChanged, title, message, link))
	}
	if err := c.repo.CreateBatch(ctx, rows); err != nil {
		return err
	}
	c.logg.Info(logCtx, "order status notifications created")
	return nil
}

func (c *Consumer) notifyBordereauResolved(ctx context.Context, payload payloads.BordereauResolvedEvent, logCtx context.Context) error {
	link := fmt.Sprintf("/bordereaux/%s", payload.BordereauID)
	title := "Bordereau resolved"
	message := fmt.Sprintf("Every order on bordereau %s reached a final status.", payload.Code)

	rows, err := c.adminRows(ctx, payload.OrganizationID, enums.NotificationTypeOrderStatusChanged, title, message, link)
	if err != nil {
		return err
	}
	rows = append(rows, buildNotification(payload.AgentID, enums.NotificationTypeOrderStatusChanged, title, message, link))
	if err := c.repo.CreateBatch(ctx, rows); err != nil {
		return err
	}
	c.logg.Info(logCtx, "bordereau resolved notifications created")
	return nil
}

func (c *Consumer) notifyDepositDeclared(ctx context.Context, payload payloads.DepositDeclaredEvent, logCtx context.Context) error {
	link := fmt.Sprintf("/deposits/%s", payload.DepositID)
	title := "Deposit declared"
	message := fmt.Sprintf("%s declared a deposit of %s DT.", payload.AgentName, payload.Amount.StringFixed(2))

	rows, err := c.adminRows(ctx, payload.OrganizationID, enums.NotificationTypeDepositDeclared, title, message, link)
	if err != nil {
		return err
	}
	if err := c.repo.CreateBatch(ctx, rows); err != nil {
		return err
	}
	c.logg.Info(logCtx, "deposit declared notifications created")
	return nil
}

func (c *Consumer) notifyDepositResolved(ctx context.Context, payload payloads.DepositResolvedEvent, logCtx context.Context) error {
	link := fmt.Sprintf("/deposits/%s", payload.DepositID)
	title := "Deposit confirmed"
	if payload.Status == enums.DepositStatusRejected {
		title = "Deposit rejected"
	}
	message := fmt.Sprintf("Your deposit of %s DT was %s.", payload.Amount.StringFixed(2), payload.Status)

	rows := []models.Notification{
		buildNotification(payload.AgentID, enums.NotificationTypeDepositResolved, title, message, link),
	}
	if err := c.repo.CreateBatch(ctx, rows); err != nil {
		return err
	}
	c.logg.Info(logCtx, "deposit resolved notification created")
	return nil
}

// adminRows builds one notification per admin or manager of the organization.
func (c *Consumer) adminRows(ctx context.Context, organizationID uuid.UUID, notificationType enums.NotificationType, title, message, link string) ([]models.Notification, error) {
	if organizationID == uuid.Nil {
		return nil, fmt.Errorf("organization id missing")
	}
	admins, err := c.users.ListAdmins(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	rows := make([]models.Notification, 0, len(admins))
	for _, admin := range admins {
		rows = append(rows, buildNotification(admin.ID, notificationType, title, message, link))
	}
	return rows, nil
}

func buildNotification(userID uuid.UUID, notificationType enums.NotificationType, title, message, link string) models.Notification {
	return models.Notification{
		UserID:  userID,
		Type:    notificationType,
		Title:   title,
		Message: message,
		Link:    stringPtr(link),
	}
}

func stringPtr(value string) *string {
	return &value
}
