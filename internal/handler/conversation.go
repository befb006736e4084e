package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kasistays/kasistays/internal/middleware"
	"github.com/kasistays/kasistays/internal/repository"
)

// ConversationHandler serves the messaging inbox: deduplicated
// conversation identity, the append-only message log, and the
// last-message projection. Clients observe new messages by refetching
// after their own actions; there is no push channel.
type ConversationHandler struct {
	Convos *repository.ConversationRepo
}

func NewConversationHandler(cr *repository.ConversationRepo) *ConversationHandler {
	if cr == nil {
		panic("nil repository passed to NewConversationHandler")
	}
	return &ConversationHandler{Convos: cr}
}

type startConversationReq struct {
	RecipientID string `json:"recipientId"`
	ListingID   string `json:"listingId"` // optional; empty means no listing scope
}

// StartConversation handles POST /api/conversations. Safe to call
// repeatedly for the same recipient+listing: the existing conversation id
// comes back with 200, a newly created one with 201.
func (h *ConversationHandler) StartConversation(c echo.Context) error {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Authentication required"})
	}
	var req startConversationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body."})
	}
	if strings.TrimSpace(req.RecipientID) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Recipient ID is required"})
	}
	recipientID, err := strconv.ParseUint(req.RecipientID, 10, 64)
	if err != nil || recipientID == 0 || recipientID == claims.UserID {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid recipient."})
	}
	var listingID *uint64
	if s := strings.TrimSpace(req.ListingID); s != "" {
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil || n == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid listing id."})
		}
		listingID = &n
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	id, created, err := h.Convos.StartOrGet(ctx, claims.UserID, recipientID, listingID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to start conversation"})
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return c.JSON(status, echo.Map{"id": fmtID(id)})
}

type conversationResp struct {
	ID                   string     `json:"id"`
	ListingID            *string    `json:"listingId"`
	ListingTitle         *string    `json:"listingTitle"`
	ParticipantID        string     `json:"participantId"`
	ParticipantEmail     string     `json:"participantEmail"`
	ParticipantImageURL  *string    `json:"participantImageUrl"`
	LastMessage          *string    `json:"lastMessage"`
	LastMessageTimestamp *time.Time `json:"lastMessageTimestamp"`
}

// GetConversations handles GET /api/conversations: the caller's inbox,
// most recently active first, conversations without messages last.
func (h *ConversationHandler) GetConversations(c echo.Context) error {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Authentication required"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	rows, err := h.Convos.ListForUser(ctx, claims.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to fetch conversations"})
	}
	out := make([]conversationResp, 0, len(rows))
	for _, r := range rows {
		cr := conversationResp{
			ID:                   fmtID(r.ID),
			ListingTitle:         r.ListingTitle,
			ParticipantID:        fmtID(r.ParticipantID),
			ParticipantEmail:     r.ParticipantEmail,
			ParticipantImageURL:  r.ParticipantImageURL,
			LastMessage:          r.LastMessage,
			LastMessageTimestamp: r.LastMessageAt,
		}
		if r.ListingID != nil {
			s := fmtID(*r.ListingID)
			cr.ListingID = &s
		}
		out = append(out, cr)
	}
	return c.JSON(http.StatusOK, out)
}

type messageResp struct {
	ID        string    `json:"id"`
	SenderID  string    `json:"senderId"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// GetMessages handles GET /api/conversations/:id/messages. Participants
// only; messages come back ascending by creation time.
func (h *ConversationHandler) GetMessages(c echo.Context) error {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Authentication required"})
	}
	convID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid conversation id."})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	member, err := h.Convos.IsParticipant(ctx, convID, claims.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to fetch messages"})
	}
	if !member {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "Access denied"})
	}

	msgs, err := h.Convos.Messages(ctx, convID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to fetch messages"})
	}
	out := make([]messageResp, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, messageResp{ID: fmtID(m.ID), SenderID: fmtID(m.SenderID), Content: m.Content, Timestamp: m.CreatedAt})
	}
	return c.JSON(http.StatusOK, out)
}

type sendMessageReq struct {
	Content string `json:"content"`
}

// SendMessage handles POST /api/conversations/:id/messages. Participants
// only; the stored row (with the database timestamp) is returned. No
// denormalized last-message field is maintained; the inbox recomputes it.
func (h *ConversationHandler) SendMessage(c echo.Context) error {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Authentication required"})
	}
	convID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid conversation id."})
	}
	var req sendMessageReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body."})
	}
	if strings.TrimSpace(req.Content) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Message content is required."})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	member, err := h.Convos.IsParticipant(ctx, convID, claims.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to send message"})
	}
	if !member {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "Access denied"})
	}

	m, err := h.Convos.AppendMessage(ctx, convID, claims.UserID, req.Content)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to send message"})
	}
	return c.JSON(http.StatusCreated, messageResp{ID: fmtID(m.ID), SenderID: fmtID(m.SenderID), Content: m.Content, Timestamp: m.CreatedAt})
}
