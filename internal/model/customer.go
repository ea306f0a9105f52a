package model

import (
	"time"

	"github.com/google/uuid"

	"retailpos/internal/cart"
)

// Customer is a directory record; the cart stores only a reference snapshot.
// A sale without a customer is a walk-in.
type Customer struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"index;not null"`
	Phone     string    `gorm:"uniqueIndex"`
	Email     *string
	Address   *string
	Active    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Ref returns the lightweight reference the cart carries.
func (c *Customer) Ref() cart.CustomerRef {
	return cart.CustomerRef{ID: c.ID, Name: c.Name, Phone: c.Phone}
}
