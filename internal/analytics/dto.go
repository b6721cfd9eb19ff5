package analytics

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Period bounds an analytics query; nil bounds mean all time.
type Period struct {
	From *time.Time
	To   *time.Time
}

// AgentStats is the per-agent performance snapshot.
type AgentStats struct {
	AgentID               uuid.UUID       `json:"agentId"`
	AgentName             string          `json:"agentName,omitempty"`
	Delivered             int64           `json:"delivered"`
	Pending               int64           `json:"pending"`
	Returned              int64           `json:"returned"`
	TotalAssigned         int64           `json:"totalAssigned"`
	TotalShippingEarnings decimal.Decimal `json:"totalShippingEarnings"`
	TotalCashCollected    decimal.Decimal `json:"totalCashCollected"`
	SuccessRate           decimal.Decimal `json:"successRate"`
}

// FleetStats aggregates every delivery agent's stats.
type FleetStats struct {
	Agents []AgentStats `json:"agents"`
}

// counters is the raw aggregate row scanned from the orders table.
type counters struct {
	Delivered     int64
	Pending       int64
	Returned      int64
	TotalAssigned int64
}
