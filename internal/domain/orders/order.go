package orders

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	StatusPending   = "pending"
	StatusWIP       = "wip"
	StatusCompleted = "completed"
	StatusHold      = "hold"
	StatusCanceled  = "canceled"
)

// Statuses lists every order status in workflow order.
var Statuses = []string{StatusPending, StatusWIP, StatusCompleted, StatusHold, StatusCanceled}

type Order struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id" yaml:"id"`
	Number    string         `gorm:"uniqueIndex;not null" json:"number" yaml:"number"`
	Status    string         `gorm:"index;not null;default:pending" json:"status" yaml:"status"`
	Customer  string         `gorm:"column:customer" json:"customer" yaml:"customer"`
	DueAt     *time.Time     `gorm:"column:due_at;index" json:"due_at,omitempty" yaml:"due_at,omitempty"`
	Hidden    bool           `gorm:"not null;default:false" json:"hidden" yaml:"hidden"`
	Source    datatypes.JSON `gorm:"column:source" json:"source,omitempty" yaml:"-"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at" yaml:"updated_at"`
}

func (Order) TableName() string { return "orders" }

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// Overdue reports whether an open order is past its due date at now.
func (o *Order) Overdue(now time.Time) bool {
	if o == nil || o.DueAt == nil {
		return false
	}
	if o.Status == StatusCompleted || o.Status == StatusCanceled {
		return false
	}
	return o.DueAt.Before(now)
}
