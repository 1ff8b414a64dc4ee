package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/quickdesk/helpdesk-client/internal/core/domain"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func row(w io.Writer, cols ...any) {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprint(c)
	}
	fmt.Fprintln(w, strings.Join(parts, "\t"))
}

func roleLabel(r domain.Role) string {
	switch r {
	case domain.RoleEndUser:
		return "End User"
	case domain.RoleSupportAgent:
		return "Support Agent"
	case domain.RoleAdmin:
		return "Admin"
	}
	return string(r)
}

func statusLabel(s domain.TicketStatus) string {
	return strings.ReplaceAll(string(s), "_", " ")
}

func ago(ts domain.Timestamp) string {
	if ts.IsZero() {
		return "-"
	}
	return humanize.Time(ts.Time)
}

func when(ts domain.Timestamp) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Local().Format(time.DateTime)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func printTickets(w io.Writer, tickets []domain.Ticket) error {
	t := newTable(w)
	row(t, "ID", "SUBJECT", "STATUS", "PRIORITY", "CATEGORY", "ASSIGNEE", "VOTES", "REPLIES", "UPDATED")
	for _, tk := range tickets {
		row(t, tk.ID, truncate(tk.Subject, 40), statusLabel(tk.Status), tk.Priority, orDash(tk.CategoryLabel()),
			orDash(tk.AssigneeLabel()), tk.VoteScore, tk.CommentCount, ago(tk.UpdatedAt))
	}
	return t.Flush()
}
