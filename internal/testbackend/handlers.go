package testbackend

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/quickdesk/helpdesk-client/internal/core/domain"
)

const (
	tokenTTL      = 24 * time.Hour
	maxUploadSize = 10 << 20
)

func (b *Backend) signToken(u *user) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": u.ID,
		"role":    string(u.Role),
		"exp":     b.clock().Add(tokenTTL).Unix(),
	}).SignedString([]byte(jwtSecret))
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.ErrNotFound
	}
	return id, nil
}

func queryInt(c echo.Context, key string, def int) int {
	if v, err := strconv.Atoi(c.QueryParam(key)); err == nil {
		return v
	}
	return def
}

// --- System ---

func (b *Backend) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": b.clock().Format("2006-01-02T15:04:05.000000"),
		"version":   "1.0.0",
	})
}

func (b *Backend) dbInfo(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return c.JSON(http.StatusOK, map[string]any{
		"database": "memory",
		"tables": map[string]int{
			"users":         len(b.users),
			"categories":    len(b.categories),
			"tickets":       len(b.tickets),
			"comments":      len(b.comments),
			"attachments":   len(b.attachments),
			"notifications": len(b.notifications),
		},
	})
}

// --- Auth ---

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

func (b *Backend) login(c echo.Context) error {
	var req credentials
	if err := c.Bind(&req); err != nil || req.Username == "" || req.Password == "" {
		return fail(http.StatusBadRequest, "Username and password required")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, u := range b.users {
		if u.Username != req.Username || !u.IsActive {
			continue
		}
		if bcrypt.CompareHashAndPassword(u.passwordHash, []byte(req.Password)) != nil {
			break
		}
		token, err := b.signToken(u)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, map[string]any{
			"message": "Login successful",
			"user":    b.userView(u),
			"token":   token,
		})
	}
	return fail(http.StatusUnauthorized, "Invalid credentials")
}

func (b *Backend) register(c echo.Context) error {
	var req credentials
	if err := c.Bind(&req); err != nil || req.Username == "" || req.Email == "" || req.Password == "" || req.FullName == "" {
		return fail(http.StatusBadRequest, "Missing required fields")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, u := range b.users {
		if u.Username == req.Username {
			return fail(http.StatusBadRequest, fmt.Sprintf("Username '%s' already exists", req.Username))
		}
		if u.Email == req.Email {
			return fail(http.StatusBadRequest, fmt.Sprintf("Email '%s' already exists", req.Email))
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		return err
	}
	id := b.newID()
	u := &user{
		User: domain.User{
			ID: id, Username: req.Username, Email: req.Email, FullName: req.FullName,
			Role: domain.RoleEndUser, IsActive: true,
		},
		passwordHash: hash,
		createdAt:    b.clock(),
	}
	b.users[id] = u

	token, err := b.signToken(u)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"message": "User registered successfully",
		"user":    b.userView(u),
		"token":   token,
	})
}

func (b *Backend) me(c echo.Context) error {
	id, _ := currentUser(c)
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.users[id]
	if !ok || !u.IsActive {
		return fail(http.StatusNotFound, "User not found")
	}
	return c.JSON(http.StatusOK, map[string]any{"user": b.userView(u)})
}

// --- Users & categories ---

func (b *Backend) listUsers(c echo.Context) error {
	role := domain.Role(c.QueryParam("role"))
	if role != "" && !role.Valid() {
		return fail(http.StatusBadRequest, "Invalid role")
	}
	search := strings.ToLower(c.QueryParam("search"))
	limit := queryInt(c, "limit", 50)
	offset := queryInt(c, "offset", 0)

	b.mu.Lock()
	defer b.mu.Unlock()
	ids := make([]int64, 0, len(b.users))
	for id := range b.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	matched := []map[string]any{}
	for _, id := range ids {
		u := b.users[id]
		if !u.IsActive || (role != "" && u.Role != role) {
			continue
		}
		if search != "" && !containsFold(search, u.Username, u.Email, u.FullName) {
			continue
		}
		matched = append(matched, b.userView(u))
	}
	return c.JSON(http.StatusOK, map[string]any{
		"users":  paginate(matched, offset, limit),
		"limit":  limit,
		"offset": offset,
	})
}

func (b *Backend) listCategories(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	ids := make([]int64, 0, len(b.categories))
	for id := range b.categories {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := []map[string]any{}
	for _, id := range ids {
		if cat := b.categories[id]; cat.IsActive {
			out = append(out, b.categoryView(cat))
		}
	}
	return c.JSON(http.StatusOK, map[string]any{"categories": out})
}

func (b *Backend) createCategory(c echo.Context) error {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Color       string `json:"color"`
	}
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return fail(http.StatusBadRequest, "Category name is required")
	}
	if req.Color == "" {
		req.Color = "#007bff"
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, cat := range b.categories {
		if cat.Name == req.Name {
			return fail(http.StatusBadRequest, fmt.Sprintf("Category '%s' already exists", req.Name))
		}
	}
	id := b.newID()
	cat := &category{domain.Category{ID: id, Name: req.Name, Description: req.Description, Color: req.Color, IsActive: true}}
	b.categories[id] = cat
	return c.JSON(http.StatusCreated, map[string]any{
		"message":  "Category created successfully",
		"category": b.categoryView(cat),
	})
}

// --- Tickets ---

func (b *Backend) listTickets(c echo.Context) error {
	userID, role := currentUser(c)
	status := domain.TicketStatus(c.QueryParam("status"))
	if status != "" && !status.Valid() {
		return fail(http.StatusBadRequest, "Invalid status")
	}
	categoryID, _ := strconv.ParseInt(c.QueryParam("category_id"), 10, 64)
	search := strings.ToLower(c.QueryParam("search"))
	sortBy := c.QueryParam("sort_by")
	if sortBy == "" {
		sortBy = "updated_at"
	}
	desc := c.QueryParam("sort_order") != "asc"
	limit := queryInt(c, "limit", 20)
	offset := queryInt(c, "offset", 0)

	b.mu.Lock()
	defer b.mu.Unlock()

	var matched []*ticket
	for _, t := range sortedTickets(b.tickets) {
		if role == domain.RoleEndUser && t.creatorID != userID {
			continue
		}
		if status != "" && t.status != status {
			continue
		}
		if categoryID > 0 && t.categoryID != categoryID {
			continue
		}
		if search != "" && !containsFold(search, t.subject, t.description) {
			continue
		}
		matched = append(matched, t)
	}

	key := func(t *ticket) float64 {
		switch sortBy {
		case "votes":
			return float64(t.upvotes - t.downvotes)
		case "replies":
			return float64(b.commentCount(t.id))
		case "created_at":
			return float64(t.createdAt.UnixNano())
		default:
			return float64(t.updatedAt.UnixNano())
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		ki, kj := key(matched[i]), key(matched[j])
		if ki == kj {
			return matched[i].id < matched[j].id
		}
		if desc {
			return ki > kj
		}
		return ki < kj
	})

	views := make([]map[string]any, 0, len(matched))
	for _, t := range matched {
		views = append(views, b.ticketView(t, false))
	}
	return c.JSON(http.StatusOK, map[string]any{
		"tickets":     paginate(views, offset, limit),
		"total_count": len(matched),
		"limit":       limit,
		"offset":      offset,
		"has_more":    offset+limit < len(matched),
	})
}

func (b *Backend) createTicket(c echo.Context) error {
	var req struct {
		Subject     *string `json:"subject"`
		Description *string `json:"description"`
		CategoryID  *int64  `json:"category_id"`
		Priority    string  `json:"priority"`
	}
	if err := c.Bind(&req); err != nil || req.Subject == nil || req.Description == nil || req.CategoryID == nil {
		return fail(http.StatusBadRequest, "Missing required fields")
	}
	priority := domain.PriorityMedium
	if req.Priority != "" {
		switch p := domain.TicketPriority(req.Priority); p {
		case domain.PriorityLow, domain.PriorityMedium, domain.PriorityHigh, domain.PriorityUrgent:
			priority = p
		default:
			return fail(http.StatusBadRequest, "Invalid priority")
		}
	}
	userID, _ := currentUser(c)

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.categories[*req.CategoryID]; !ok {
		return fail(http.StatusBadRequest, "Category not found")
	}
	now := b.clock()
	t := &ticket{
		id:          b.newID(),
		subject:     *req.Subject,
		description: *req.Description,
		status:      domain.StatusOpen,
		priority:    priority,
		creatorID:   userID,
		categoryID:  *req.CategoryID,
		createdAt:   now,
		updatedAt:   now,
		votes:       make(map[int64]bool),
	}
	b.tickets[t.id] = t
	b.notify(userID, &t.id, "Ticket Created", fmt.Sprintf("Your ticket '%s' has been created", t.subject), "ticket_created")

	return c.JSON(http.StatusCreated, map[string]any{
		"message": "Ticket created successfully",
		"ticket":  b.ticketView(t, true),
	})
}

// visibleTicket applies the end-user ownership rule. Call with mu held.
func (b *Backend) visibleTicket(c echo.Context, id int64) (*ticket, bool) {
	t, ok := b.tickets[id]
	if !ok {
		return nil, false
	}
	userID, role := currentUser(c)
	if role == domain.RoleEndUser && t.creatorID != userID {
		return nil, false
	}
	return t, true
}

func (b *Backend) getTicket(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.visibleTicket(c, id)
	if !ok {
		return fail(http.StatusNotFound, "Ticket not found or access denied")
	}
	return c.JSON(http.StatusOK, map[string]any{"ticket": b.ticketView(t, true)})
}

func (b *Backend) updateStatus(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil || req.Status == "" {
		return fail(http.StatusBadRequest, "Status is required")
	}
	status := domain.TicketStatus(req.Status)
	if !status.Valid() {
		return fail(http.StatusBadRequest, "Invalid status")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.tickets[id]
	if !ok {
		return fail(http.StatusNotFound, "Ticket not found")
	}
	old := t.status
	now := b.clock()
	t.status = status
	t.updatedAt = now
	switch status {
	case domain.StatusResolved:
		t.resolvedAt = now
	case domain.StatusClosed:
		t.closedAt = now
	}
	if old != status {
		b.notify(t.creatorID, &t.id, "Ticket Status Updated",
			fmt.Sprintf("Your ticket '%s' status changed from %s to %s", t.subject, old, status), "status_changed")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message": "Ticket status updated successfully",
		"ticket":  b.ticketView(t, false),
	})
}

func (b *Backend) assignTicket(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req struct {
		AssignedToID *int64 `json:"assigned_to_id"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(http.StatusBadRequest, "Invalid payload")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.tickets[id]
	if !ok {
		return fail(http.StatusNotFound, "Ticket not found")
	}
	t.assigneeID = req.AssignedToID
	t.updatedAt = b.clock()
	if t.status == domain.StatusOpen && req.AssignedToID != nil {
		t.status = domain.StatusInProgress
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message": "Ticket assigned successfully",
		"ticket":  b.ticketView(t, false),
	})
}

func (b *Backend) addComment(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req struct {
		Content    string `json:"content"`
		IsInternal bool   `json:"is_internal"`
	}
	if err := c.Bind(&req); err != nil || req.Content == "" {
		return fail(http.StatusBadRequest, "Comment content is required")
	}
	userID, role := currentUser(c)

	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.visibleTicket(c, id)
	if !ok {
		return fail(http.StatusNotFound, "Ticket not found or access denied")
	}
	now := b.clock()
	cm := &comment{
		id:         b.newID(),
		ticketID:   t.id,
		authorID:   userID,
		content:    req.Content,
		isInternal: req.IsInternal && role.IsStaff(),
		createdAt:  now,
	}
	b.comments = append(b.comments, cm)
	t.updatedAt = now
	if t.creatorID != userID && !cm.isInternal {
		b.notify(t.creatorID, &t.id, "New Comment", fmt.Sprintf("New comment on your ticket '%s'", t.subject), "comment_added")
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"message": "Comment added successfully",
		"comment": b.commentView(cm),
	})
}

func (b *Backend) vote(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req struct {
		IsUpvote *bool `json:"is_upvote"`
	}
	if err := c.Bind(&req); err != nil || req.IsUpvote == nil {
		return fail(http.StatusBadRequest, "Vote type (is_upvote) is required")
	}
	up := *req.IsUpvote
	userID, _ := currentUser(c)

	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.tickets[id]
	if !ok {
		return fail(http.StatusNotFound, "Ticket not found")
	}

	var action string
	prev, voted := t.votes[userID]
	switch {
	case voted && prev == up:
		delete(t.votes, userID)
		if up {
			t.upvotes = max(0, t.upvotes-1)
		} else {
			t.downvotes = max(0, t.downvotes-1)
		}
		action = "removed"
	case voted:
		t.votes[userID] = up
		if up {
			t.upvotes++
			t.downvotes = max(0, t.downvotes-1)
		} else {
			t.downvotes++
			t.upvotes = max(0, t.upvotes-1)
		}
		action = "changed"
	default:
		t.votes[userID] = up
		if up {
			t.upvotes++
		} else {
			t.downvotes++
		}
		action = "added"
	}

	voteType := "downvote"
	if up {
		voteType = "upvote"
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message": fmt.Sprintf("Vote %s successfully", action),
		"vote_result": map[string]any{
			"action":     action,
			"vote_type":  voteType,
			"upvotes":    t.upvotes,
			"downvotes":  t.downvotes,
			"vote_score": t.upvotes - t.downvotes,
		},
	})
}

func (b *Backend) uploadAttachment(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return fail(http.StatusBadRequest, "No file provided")
	}
	if fh.Size > maxUploadSize {
		return fail(http.StatusRequestEntityTooLarge, "File too large. Maximum size is 10MB.")
	}
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return err
	}
	mimeType := fh.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	userID, _ := currentUser(c)

	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.visibleTicket(c, id)
	if !ok {
		return fail(http.StatusNotFound, "Ticket not found or access denied")
	}
	a := &attachment{
		id:         b.newID(),
		ticketID:   t.id,
		uploaderID: userID,
		filename:   fh.Filename,
		mimeType:   mimeType,
		data:       data,
		createdAt:  b.clock(),
	}
	b.attachments[a.id] = a
	return c.JSON(http.StatusCreated, map[string]any{
		"message":    "File uploaded successfully",
		"attachment": b.attachmentView(a),
	})
}

func (b *Backend) downloadAttachment(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	a, ok := b.attachments[id]
	if !ok {
		return fail(http.StatusNotFound, "Attachment not found")
	}
	if _, ok := b.visibleTicket(c, a.ticketID); !ok {
		return fail(http.StatusForbidden, "Access denied")
	}
	c.Response().Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", a.filename))
	return c.Blob(http.StatusOK, a.mimeType, a.data)
}

// --- Notifications & dashboard ---

// notify must be called with mu held.
func (b *Backend) notify(userID int64, ticketID *int64, title, message, kind string) {
	b.notifications = append(b.notifications, &notification{
		id:        b.newID(),
		userID:    userID,
		ticketID:  ticketID,
		title:     title,
		message:   message,
		kind:      kind,
		createdAt: b.clock(),
	})
}

func (b *Backend) listNotifications(c echo.Context) error {
	userID, _ := currentUser(c)
	unreadOnly := strings.EqualFold(c.QueryParam("unread_only"), "true")
	limit := queryInt(c, "limit", 20)
	offset := queryInt(c, "offset", 0)

	b.mu.Lock()
	defer b.mu.Unlock()
	out := []map[string]any{}
	for i := len(b.notifications) - 1; i >= 0; i-- {
		n := b.notifications[i]
		if n.userID != userID || (unreadOnly && n.isRead) {
			continue
		}
		out = append(out, b.notificationView(n))
	}
	return c.JSON(http.StatusOK, map[string]any{
		"notifications": paginate(out, offset, limit),
		"limit":         limit,
		"offset":        offset,
	})
}

func (b *Backend) markRead(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	userID, _ := currentUser(c)

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, n := range b.notifications {
		if n.id == id && n.userID == userID {
			n.isRead = true
			return c.JSON(http.StatusOK, map[string]string{"message": "Notification marked as read"})
		}
	}
	return fail(http.StatusNotFound, "Notification not found")
}

func (b *Backend) dashboard(c echo.Context) error {
	userID, role := currentUser(c)

	b.mu.Lock()
	defer b.mu.Unlock()

	var scoped []*ticket
	for _, t := range sortedTickets(b.tickets) {
		if role == domain.RoleEndUser && t.creatorID != userID {
			continue
		}
		scoped = append(scoped, t)
	}

	counts := map[string]int{"open": 0, "in_progress": 0, "resolved": 0, "closed": 0, "total": len(scoped)}
	for _, t := range scoped {
		counts[string(t.status)]++
	}

	recent := append([]*ticket(nil), scoped...)
	sort.SliceStable(recent, func(i, j int) bool { return recent[i].createdAt.After(recent[j].createdAt) })
	recentViews := []map[string]any{}
	for i, t := range recent {
		if i == 10 {
			break
		}
		recentViews = append(recentViews, b.ticketView(t, false))
	}

	perCategory := map[string]int{}
	for _, t := range sortedTickets(b.tickets) {
		if cat := b.categories[t.categoryID]; cat != nil {
			perCategory[cat.Name]++
		}
	}
	names := make([]string, 0, len(perCategory))
	for name := range perCategory {
		names = append(names, name)
	}
	sort.Strings(names)
	distribution := []map[string]any{}
	for _, name := range names {
		distribution = append(distribution, map[string]any{"category": name, "count": perCategory[name]})
	}

	stats := map[string]any{
		"ticket_counts":         counts,
		"recent_tickets":        recentViews,
		"category_distribution": distribution,
	}

	if role.IsStaff() {
		all := sortedTickets(b.tickets)
		sort.SliceStable(all, func(i, j int) bool {
			return all[i].upvotes-all[i].downvotes > all[j].upvotes-all[j].downvotes
		})
		top := []map[string]any{}
		for i, t := range all {
			if i == 5 {
				break
			}
			top = append(top, b.ticketView(t, false))
		}

		perUser := map[int64]int{}
		for _, t := range b.tickets {
			perUser[t.creatorID]++
		}
		userIDs := make([]int64, 0, len(perUser))
		for id := range perUser {
			userIDs = append(userIDs, id)
		}
		sort.Slice(userIDs, func(i, j int) bool {
			if perUser[userIDs[i]] == perUser[userIDs[j]] {
				return userIDs[i] < userIDs[j]
			}
			return perUser[userIDs[i]] > perUser[userIDs[j]]
		})
		active := []map[string]any{}
		for i, id := range userIDs {
			if i == 5 {
				break
			}
			active = append(active, map[string]any{"user": nameOf(b.users[id]), "ticket_count": perUser[id]})
		}
		stats["top_voted_tickets"] = top
		stats["most_active_users"] = active
	}

	return c.JSON(http.StatusOK, stats)
}

// --- helpers ---

func containsFold(needle string, haystacks ...string) bool {
	for _, h := range haystacks {
		if strings.Contains(strings.ToLower(h), needle) {
			return true
		}
	}
	return false
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit >= 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
