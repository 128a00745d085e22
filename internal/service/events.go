package service

import (
	"time"

	"go-stock-ledger/internal/model"

	"github.com/google/uuid"
)

// EventPublisher fans stock changes out to live clients. ws.Hub implements it.
type EventPublisher interface {
	Publish(event interface{})
}

type nopPublisher struct{}

func (nopPublisher) Publish(interface{}) {}

const eventStockUpdate = "stock_update"

const (
	ActionMovementCreated    = "movement_created"
	ActionMovementDeleted    = "movement_deleted"
	ActionProductCreated     = "product_created"
	ActionProductUpdated     = "product_updated"
	ActionProductDeactivated = "product_deactivated"
	ActionProductActivated   = "product_activated"
)

type EventUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type EventStock struct {
	ProductID    uuid.UUID         `json:"product_id"`
	ProductCode  string            `json:"product_code"`
	CurrentStock int64             `json:"current_stock"`
	Status       model.StockStatus `json:"status"`
}

// StockEvent is the payload pushed to websocket clients.
type StockEvent struct {
	Type            string                `json:"type"`
	Action          string                `json:"action"`
	TransactionID   string                `json:"transaction_id,omitempty"`
	TransactionType model.TransactionType `json:"transaction_type,omitempty"`
	Products        []EventStock          `json:"products,omitempty"`
	User            EventUser             `json:"user"`
	Message         string                `json:"message"`
	At              time.Time             `json:"at"`
}

// Actor is the authenticated operator behind a request.
type Actor struct {
	UserID string
	Name   string
	Email  string
}

// Identifier is what gets stored as created_by.
func (a Actor) Identifier() string {
	if a.Email != "" {
		return a.Email
	}
	return a.Name
}

func (a Actor) eventUser() EventUser {
	return EventUser{ID: a.UserID, Name: a.Name, Email: a.Email}
}

func newStockEvent(action string, actor Actor, msg string) StockEvent {
	return StockEvent{
		Type:    eventStockUpdate,
		Action:  action,
		User:    actor.eventUser(),
		Message: msg,
		At:      time.Now().UTC(),
	}
}
