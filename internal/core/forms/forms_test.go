package forms

import (
	"errors"
	"strings"
	"testing"

	"github.com/quickdesk/helpdesk-client/internal/core/domain"
	"github.com/quickdesk/helpdesk-client/internal/core/ports"
)

func validationError(t *testing.T, err error) *domain.ValidationError {
	t.Helper()
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *domain.ValidationError, got %T (%v)", err, err)
	}
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected errors.Is(ErrValidation)")
	}
	return ve
}

func TestValidate_LoginRequired(t *testing.T) {
	ve := validationError(t, Validate(Login{}))
	if ve.Fields["username"] != "username is required" || ve.Fields["password"] != "password is required" {
		t.Fatalf("unexpected fields: %+v", ve.Fields)
	}
	if ve.Error() != "username is required; password is required" {
		t.Fatalf("unexpected message: %q", ve.Error())
	}
}

func TestValidate_RegisterOK(t *testing.T) {
	form := Register{Username: "dana.q", Email: "dana@example.com", FullName: "Dana Q", Password: "Secret123", Confirm: "Secret123"}
	if err := Validate(form); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	in := form.Input()
	if in != (ports.RegisterInput{Username: "dana.q", Email: "dana@example.com", Password: "Secret123", FullName: "Dana Q"}) {
		t.Fatalf("unexpected input: %+v", in)
	}
}

func TestValidate_RegisterRules(t *testing.T) {
	cases := []struct {
		name  string
		form  Register
		field string
		want  string
	}{
		{"short username", Register{Username: "ab", Email: "a@b.co", FullName: "A", Password: "Secret123", Confirm: "Secret123"}, "username", "username must be at least 3 characters"},
		{"bad username chars", Register{Username: "dana q", Email: "a@b.co", FullName: "A", Password: "Secret123", Confirm: "Secret123"}, "username", "username may only contain letters, digits, '.', '_' and '-'"},
		{"bad email", Register{Username: "dana", Email: "nope", FullName: "A", Password: "Secret123", Confirm: "Secret123"}, "email", "email must be a valid email"},
		{"weak password", Register{Username: "dana", Email: "a@b.co", FullName: "A", Password: "secret123", Confirm: "secret123"}, "password", "password must contain an uppercase letter, a lowercase letter and a digit"},
		{"mismatch", Register{Username: "dana", Email: "a@b.co", FullName: "A", Password: "Secret123", Confirm: "Secret124"}, "password confirmation", "password confirmation does not match"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ve := validationError(t, Validate(tc.form))
			if ve.Fields[tc.field] != tc.want {
				t.Fatalf("expected %q for %s, got %+v", tc.want, tc.field, ve.Fields)
			}
		})
	}
}

func TestValidate_Ticket(t *testing.T) {
	ve := validationError(t, Validate(Ticket{Subject: strings.Repeat("x", 201), Priority: "critical"}))
	want := map[string]string{
		"subject":     "subject must be at most 200 characters",
		"description": "description is required",
		"category":    "category must be greater than 0",
		"priority":    "priority must be one of: low medium high urgent",
	}
	for field, msg := range want {
		if ve.Fields[field] != msg {
			t.Fatalf("expected %q for %s, got %q", msg, field, ve.Fields[field])
		}
	}

	ok := Ticket{Subject: " VPN ", Description: "down", CategoryID: 1}
	if err := Validate(ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in := ok.Input(); in.Subject != "VPN" || in.Priority != "" {
		t.Fatalf("unexpected input: %+v", in)
	}
}

func TestValidate_BlankText(t *testing.T) {
	ve := validationError(t, Validate(Ticket{Subject: "   ", Description: "\t\n", CategoryID: 1}))
	if ve.Fields["subject"] != "subject must not be blank" || ve.Fields["description"] != "description must not be blank" {
		t.Fatalf("unexpected fields: %+v", ve.Fields)
	}

	ve = validationError(t, Validate(Comment{Content: "  "}))
	if ve.Fields["comment"] != "comment must not be blank" {
		t.Fatalf("unexpected fields: %+v", ve.Fields)
	}
	validationError(t, Validate(Category{Name: " "}))
	validationError(t, Validate(Register{Username: "dana", Email: "dana@example.com", FullName: "  ", Password: "Secret123", Confirm: "Secret123"}))
}

func TestValidate_CategoryColor(t *testing.T) {
	if err := Validate(Category{Name: "Hardware"}); err != nil {
		t.Fatalf("color should be optional: %v", err)
	}
	if err := Validate(Category{Name: "Hardware", Color: "#12ab9f"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ve := validationError(t, Validate(Category{Name: "Hardware", Color: "blue"}))
	if ve.Fields["color"] != "color must be a hex color such as #007bff" {
		t.Fatalf("unexpected fields: %+v", ve.Fields)
	}
}

func TestValidate_StatusAndComment(t *testing.T) {
	if err := Validate(Status{Status: "resolved"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	validationError(t, Validate(Status{Status: "done"}))
	validationError(t, Validate(Comment{}))
}

func TestValidate_TicketFilter(t *testing.T) {
	if err := Validate(ports.TicketFilter{Status: "open", SortBy: "votes", Limit: 20}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ve := validationError(t, Validate(ports.TicketFilter{SortBy: "name", Limit: 500}))
	if ve.Fields["sortby"] == "" || ve.Fields["limit"] != "limit must be at most 100" {
		t.Fatalf("unexpected fields: %+v", ve.Fields)
	}
}
