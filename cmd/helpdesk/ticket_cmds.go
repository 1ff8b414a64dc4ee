package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/quickdesk/helpdesk-client/internal/core/forms"
	"github.com/quickdesk/helpdesk-client/internal/core/ports"
)

func parseID(what, s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, usagef("%s must be a positive number, got %q", what, s)
	}
	return id, nil
}

func runTickets(ctx context.Context, a *app, args []string) error {
	fs := a.flags("tickets")
	var filter ports.TicketFilter
	fs.StringVar(&filter.Status, "status", "", "open, in_progress, resolved or closed")
	fs.Int64Var(&filter.CategoryID, "category", 0, "category id")
	fs.StringVar(&filter.Search, "search", "", "match subject or description")
	fs.StringVar(&filter.SortBy, "sort", "", "updated_at, created_at, votes or replies")
	fs.StringVar(&filter.SortOrder, "order", "", "asc or desc")
	fs.IntVar(&filter.Limit, "limit", 20, "page size (max 100)")
	fs.IntVar(&filter.Offset, "offset", 0, "skip this many tickets")
	if err := parse(fs, args); err != nil {
		return err
	}

	session, err := a.requireSession()
	if err != nil {
		return err
	}
	page, err := a.tickets.List(ctx, session.Token, filter)
	if err != nil {
		return err
	}
	if len(page.Tickets) == 0 {
		fmt.Fprintln(a.io.out, "No tickets found")
		return nil
	}
	if err := printTickets(a.io.out, page.Tickets); err != nil {
		return err
	}
	fmt.Fprintf(a.io.out, "\nShowing %d-%d of %d\n", page.Offset+1, page.Offset+len(page.Tickets), page.TotalCount)
	if page.HasMore {
		fmt.Fprintf(a.io.out, "More: --offset %d\n", page.Offset+len(page.Tickets))
	}
	return nil
}

func runTicket(ctx context.Context, a *app, args []string) error {
	fs := a.flags("ticket")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return usagef("ticket <id>")
	}
	id, err := parseID("ticket id", fs.Arg(0))
	if err != nil {
		return err
	}
	session, err := a.requireSession()
	if err != nil {
		return err
	}

	tk, err := a.tickets.Get(ctx, session.Token, id)
	if err != nil {
		return err
	}

	out := a.io.out
	fmt.Fprintf(out, "#%d %s\n\n", tk.ID, tk.Subject)
	w := newTable(out)
	row(w, "Status", statusLabel(tk.Status))
	row(w, "Priority", tk.Priority)
	row(w, "Category", orDash(tk.CategoryLabel()))
	row(w, "Created by", orDash(tk.CreatorLabel()))
	row(w, "Assigned to", orDash(tk.AssigneeLabel()))
	row(w, "Votes", fmt.Sprintf("%d (+%d/-%d)", tk.VoteScore, tk.Upvotes, tk.Downvotes))
	row(w, "Created", when(tk.CreatedAt))
	row(w, "Updated", when(tk.UpdatedAt))
	if !tk.ResolvedAt.IsZero() {
		row(w, "Resolved", when(tk.ResolvedAt))
	}
	if !tk.ClosedAt.IsZero() {
		row(w, "Closed", when(tk.ClosedAt))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%s\n", tk.Description)

	if len(tk.Attachments) > 0 {
		fmt.Fprintln(out, "\nAttachments:")
		w = newTable(out)
		for _, att := range tk.Attachments {
			row(w, "  "+strconv.FormatInt(att.ID, 10), att.Filename, humanize.Bytes(uint64(att.FileSize)), orDash(att.UploadedBy))
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "\nComments (%d):\n", len(tk.Comments))
	for _, c := range tk.Comments {
		tag := ""
		if c.IsInternal {
			tag = " [internal]"
		}
		fmt.Fprintf(out, "\n  %s (%s), %s%s\n", c.AuthorName, roleLabel(c.AuthorRole), ago(c.CreatedAt), tag)
		for _, line := range strings.Split(c.Content, "\n") {
			fmt.Fprintf(out, "    %s\n", line)
		}
	}
	return nil
}

func runCreate(ctx context.Context, a *app, args []string) error {
	fs := a.flags("create")
	var form forms.Ticket
	fs.StringVar(&form.Subject, "subject", "", "short summary")
	fs.StringVar(&form.Description, "description", "", "full description")
	fs.Int64Var(&form.CategoryID, "category", 0, "category id (see 'helpdesk categories')")
	fs.StringVar(&form.Priority, "priority", "", "low, medium, high or urgent (default medium)")
	if err := parse(fs, args); err != nil {
		return err
	}
	session, err := a.requireSession()
	if err != nil {
		return err
	}

	created, page, err := a.tickets.CreateAndRefresh(ctx, session.Token, form, ports.TicketFilter{Limit: 10})
	if created == nil {
		return err
	}
	fmt.Fprintf(a.io.out, "Created ticket #%d: %s\n", created.ID, created.Subject)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.io.out, "\nYou have %d ticket(s). Most recent:\n", page.TotalCount)
	return printTickets(a.io.out, page.Tickets)
}

func runStatus(ctx context.Context, a *app, args []string) error {
	fs := a.flags("status")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return usagef("status <ticket-id> <open|in_progress|resolved|closed>")
	}
	id, err := parseID("ticket id", fs.Arg(0))
	if err != nil {
		return err
	}
	session, err := a.requireStaff("changing ticket status")
	if err != nil {
		return err
	}

	tk, err := a.tickets.UpdateStatus(ctx, session.Token, id, forms.Status{Status: fs.Arg(1)})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.io.out, "Ticket #%d is now %s\n", tk.ID, statusLabel(tk.Status))
	return nil
}

func runAssign(ctx context.Context, a *app, args []string) error {
	fs := a.flags("assign")
	unassign := fs.Bool("none", false, "remove the assignee")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() < 1 || fs.NArg() > 2 || (*unassign == (fs.NArg() == 2)) {
		return usagef("assign <ticket-id> <user-id> | assign <ticket-id> --none")
	}
	id, err := parseID("ticket id", fs.Arg(0))
	if err != nil {
		return err
	}
	var assignee *int64
	if !*unassign {
		userID, err := parseID("user id", fs.Arg(1))
		if err != nil {
			return err
		}
		assignee = &userID
	}
	session, err := a.requireStaff("assigning tickets")
	if err != nil {
		return err
	}

	tk, err := a.tickets.Assign(ctx, session.Token, id, assignee)
	if err != nil {
		return err
	}
	if assignee == nil {
		fmt.Fprintf(a.io.out, "Ticket #%d is unassigned\n", tk.ID)
		return nil
	}
	fmt.Fprintf(a.io.out, "Ticket #%d assigned to %s (%s)\n", tk.ID, orDash(tk.AssigneeLabel()), statusLabel(tk.Status))
	return nil
}

func runComment(ctx context.Context, a *app, args []string) error {
	fs := a.flags("comment")
	var form forms.Comment
	fs.BoolVar(&form.Internal, "internal", false, "visible to agents and admins only")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return usagef("comment <ticket-id> <text...> [--internal]")
	}
	id, err := parseID("ticket id", fs.Arg(0))
	if err != nil {
		return err
	}
	session, err := a.requireSession()
	if err != nil {
		return err
	}
	if form.Internal && !session.Role().IsStaff() {
		fmt.Fprintln(a.io.err, "note: internal comments are for agents and admins; posting as a public reply")
		form.Internal = false
	}
	form.Content = strings.Join(fs.Args()[1:], " ")

	c, err := a.tickets.Comment(ctx, session.Token, id, form)
	if err != nil {
		return err
	}
	kind := "Reply"
	if c.IsInternal {
		kind = "Internal note"
	}
	fmt.Fprintf(a.io.out, "%s added to ticket #%d\n", kind, id)
	return nil
}

func runVote(ctx context.Context, a *app, args []string) error {
	fs := a.flags("vote")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 2 || (fs.Arg(1) != "up" && fs.Arg(1) != "down") {
		return usagef("vote <ticket-id> <up|down>")
	}
	id, err := parseID("ticket id", fs.Arg(0))
	if err != nil {
		return err
	}
	session, err := a.requireSession()
	if err != nil {
		return err
	}

	res, err := a.tickets.Vote(ctx, session.Token, id, fs.Arg(1) == "up")
	if err != nil {
		return err
	}
	fmt.Fprintf(a.io.out, "Vote %s. Score %d (+%d/-%d)\n", res.Action, res.VoteScore, res.Upvotes, res.Downvotes)
	return nil
}

func runAttach(ctx context.Context, a *app, args []string) error {
	fs := a.flags("attach")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return usagef("attach <ticket-id> <file>")
	}
	id, err := parseID("ticket id", fs.Arg(0))
	if err != nil {
		return err
	}
	session, err := a.requireSession()
	if err != nil {
		return err
	}

	f, err := os.Open(fs.Arg(1))
	if err != nil {
		return err
	}
	defer f.Close()

	att, err := a.tickets.Attach(ctx, session.Token, id, filepath.Base(f.Name()), f)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.io.out, "Uploaded %s (%s) as attachment %d\n", att.Filename, humanize.Bytes(uint64(att.FileSize)), att.ID)
	return nil
}

func runDownload(ctx context.Context, a *app, args []string) error {
	fs := a.flags("download")
	out := fs.StringP("output", "o", "", "write to this file instead of stdout")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return usagef("download <attachment-id> [-o file]")
	}
	id, err := parseID("attachment id", fs.Arg(0))
	if err != nil {
		return err
	}
	session, err := a.requireSession()
	if err != nil {
		return err
	}

	if *out == "" {
		_, err = a.tickets.Download(ctx, session.Token, id, a.io.out)
		return err
	}

	n, err := downloadTo(*out, func(w io.Writer) (int64, error) {
		return a.tickets.Download(ctx, session.Token, id, w)
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.io.err, "Saved %s to %s\n", humanize.Bytes(uint64(n)), *out)
	return nil
}

// downloadTo streams into a temporary file beside path and renames it over
// path once fetch succeeds. A failed download leaves an existing file at
// path untouched.
func downloadTo(path string, fetch func(io.Writer) (int64, error)) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.part")
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmp.Name())

	n, err := fetch(tmp)
	if err != nil {
		_ = tmp.Close()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return 0, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, err
	}
	return n, nil
}
