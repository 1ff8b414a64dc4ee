package forms

import (
	"strings"

	"github.com/quickdesk/helpdesk-client/internal/core/domain"
	"github.com/quickdesk/helpdesk-client/internal/core/ports"
)

type Login struct {
	Username string `label:"username" validate:"required"`
	Password string `label:"password" validate:"required"`
}

// Register is the sign-up form. Confirm must repeat Password.
type Register struct {
	Username string `label:"username" validate:"required,min=3,max=80,username"`
	Email    string `label:"email" validate:"required,email"`
	FullName string `label:"full name" validate:"required,notblank,max=120"`
	Password string `label:"password" validate:"required,min=8,complexity"`
	Confirm  string `label:"password confirmation" validate:"required,eqfield=Password"`
}

func (f Register) Input() ports.RegisterInput {
	return ports.RegisterInput{
		Username: strings.TrimSpace(f.Username),
		Email:    strings.TrimSpace(f.Email),
		Password: f.Password,
		FullName: strings.TrimSpace(f.FullName),
	}
}

type Ticket struct {
	Subject     string `label:"subject" validate:"required,notblank,max=200"`
	Description string `label:"description" validate:"required,notblank"`
	CategoryID  int64  `label:"category" validate:"gt=0"`
	Priority    string `label:"priority" validate:"omitempty,oneof=low medium high urgent"`
}

func (f Ticket) Input() ports.CreateTicketInput {
	return ports.CreateTicketInput{
		Subject:     strings.TrimSpace(f.Subject),
		Description: strings.TrimSpace(f.Description),
		CategoryID:  f.CategoryID,
		Priority:    domain.TicketPriority(f.Priority),
	}
}

type Comment struct {
	Content  string `label:"comment" validate:"required,notblank,max=5000"`
	Internal bool
}

type Status struct {
	Status string `label:"status" validate:"required,oneof=open in_progress resolved closed"`
}

// Category is the admin create-category form. Color is optional; the
// backend defaults it.
type Category struct {
	Name        string `label:"name" validate:"required,notblank,max=100"`
	Description string `label:"description" validate:"max=500"`
	Color       string `label:"color" validate:"omitempty,hexcolor"`
}

func (f Category) Input() ports.CreateCategoryInput {
	return ports.CreateCategoryInput{
		Name:        strings.TrimSpace(f.Name),
		Description: strings.TrimSpace(f.Description),
		Color:       f.Color,
	}
}
