package testbackend

import "time"

// isoTime renders times the way the backend does: naive UTC ISO-8601, or
// null for the zero time.
func isoTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format("2006-01-02T15:04:05.000000")
}

// Views are built with mu held.

func (b *Backend) userView(u *user) map[string]any {
	if u == nil {
		return nil
	}
	return map[string]any{
		"id":         u.ID,
		"username":   u.Username,
		"email":      u.Email,
		"full_name":  u.FullName,
		"role":       u.Role,
		"is_active":  u.IsActive,
		"created_at": isoTime(u.createdAt),
	}
}

func (b *Backend) categoryView(c *category) map[string]any {
	if c == nil {
		return nil
	}
	return map[string]any{
		"id":          c.ID,
		"name":        c.Name,
		"description": c.Description,
		"color":       c.Color,
		"is_active":   c.IsActive,
	}
}

func (b *Backend) commentCount(ticketID int64) int {
	n := 0
	for _, c := range b.comments {
		if c.ticketID == ticketID {
			n++
		}
	}
	return n
}

func (b *Backend) ticketView(t *ticket, detail bool) map[string]any {
	view := map[string]any{
		"id":            t.id,
		"subject":       t.subject,
		"description":   t.description,
		"status":        t.status,
		"priority":      t.priority,
		"created_at":    isoTime(t.createdAt),
		"updated_at":    isoTime(t.updatedAt),
		"resolved_at":   isoTime(t.resolvedAt),
		"closed_at":     isoTime(t.closedAt),
		"upvotes":       t.upvotes,
		"downvotes":     t.downvotes,
		"vote_score":    t.upvotes - t.downvotes,
		"comment_count": b.commentCount(t.id),
	}

	creator := b.users[t.creatorID]
	var assignee *user
	if t.assigneeID != nil {
		assignee = b.users[*t.assigneeID]
	}
	cat := b.categories[t.categoryID]

	if detail {
		comments := []map[string]any{}
		for _, c := range b.comments {
			if c.ticketID == t.id {
				comments = append(comments, b.commentView(c))
			}
		}
		attachments := []map[string]any{}
		for _, a := range b.attachments {
			if a.ticketID == t.id {
				attachments = append(attachments, b.attachmentView(a))
			}
		}
		view["creator"] = b.userView(creator)
		view["assignee"] = b.userView(assignee)
		view["category"] = b.categoryView(cat)
		view["comments"] = comments
		view["attachments"] = attachments
		return view
	}

	view["created_by_id"] = t.creatorID
	view["assigned_to_id"] = t.assigneeID
	view["category_id"] = t.categoryID
	view["creator_name"] = nameOf(creator)
	view["assignee_name"] = nameOf(assignee)
	if cat != nil {
		view["category_name"] = cat.Name
	}
	return view
}

func nameOf(u *user) any {
	if u == nil {
		return nil
	}
	return u.FullName
}

func (b *Backend) commentView(c *comment) map[string]any {
	author := b.users[c.authorID]
	view := map[string]any{
		"id":          c.id,
		"content":     c.content,
		"is_internal": c.isInternal,
		"ticket_id":   c.ticketID,
		"author_id":   c.authorID,
		"created_at":  isoTime(c.createdAt),
		"updated_at":  isoTime(c.createdAt),
	}
	if author != nil {
		view["author_name"] = author.FullName
		view["author_role"] = author.Role
	}
	return view
}

func (b *Backend) attachmentView(a *attachment) map[string]any {
	return map[string]any{
		"id":                a.id,
		"filename":          a.filename,
		"original_filename": a.filename,
		"file_size":         len(a.data),
		"mime_type":         a.mimeType,
		"ticket_id":         a.ticketID,
		"uploaded_by":       nameOf(b.users[a.uploaderID]),
		"created_at":        isoTime(a.createdAt),
	}
}

func (b *Backend) notificationView(n *notification) map[string]any {
	return map[string]any{
		"id":                n.id,
		"title":             n.title,
		"message":           n.message,
		"notification_type": n.kind,
		"is_read":           n.isRead,
		"ticket_id":         n.ticketID,
		"created_at":        isoTime(n.createdAt),
	}
}
