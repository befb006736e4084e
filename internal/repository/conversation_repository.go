package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kasistays/kasistays/internal/model"
)

// ConversationRepo owns conversation identity and the append-only message
// log. A conversation is unique per unordered participant pair and
// optional listing; that uniqueness is enforced by a stored pair_key
// column with a UNIQUE index rather than by the read-then-write sequence,
// which is not safe under concurrent access.
type ConversationRepo struct {
	db *sql.DB
}

// NewConversationRepo returns a new ConversationRepo bound to the given database.
func NewConversationRepo(db *sql.DB) *ConversationRepo { return &ConversationRepo{db: db} }

// PairKey normalizes an unordered user pair plus optional listing into the
// canonical "lo:hi:listing" form stored in conversations.pair_key. The
// no-listing case uses "-" so it can never collide with a real listing id
// (null-aware equality per the lookup contract).
func PairKey(a, b uint64, listingID *uint64) string {
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	if listingID == nil {
		return fmt.Sprintf("%d:%d:-", lo, hi)
	}
	return fmt.Sprintf("%d:%d:%d", lo, hi, *listingID)
}

// StartOrGet returns the id of the conversation for {selfID, otherID} and
// the given listing, creating it if absent. The create path inserts the
// conversation row and both participant links in one transaction; a
// conversation with only one participant linked must never be externally
// visible. Two simultaneous creators both reach the INSERT; the UNIQUE
// pair_key index lets exactly one through, and the loser re-reads the
// winner's row. created reports whether this call performed the insert.
func (r *ConversationRepo) StartOrGet(ctx context.Context, selfID, otherID uint64, listingID *uint64) (id uint64, created bool, err error) {
	key := PairKey(selfID, otherID, listingID)

	// Fast path: the idempotent repeat call ("message landlord" clicked twice).
	err = r.db.QueryRowContext(ctx,
		`SELECT id FROM conversations WHERE pair_key = ?`, key).Scan(&id)
	if err == nil {
		return id, false, nil
	}
	if err != sql.ErrNoRows {
		return 0, false, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO conversations (listing_id, pair_key) VALUES (?, ?)`,
		listingID, key)
	if err != nil {
		if isDupKey(err) {
			// Concurrent creator won; the deferred rollback discards our
			// transaction and we return the winner's row.
			if err2 := r.db.QueryRowContext(ctx,
				`SELECT id FROM conversations WHERE pair_key = ?`, key).Scan(&id); err2 != nil {
				return 0, false, err2
			}
			return id, false, nil
		}
		return 0, false, err
	}
	newID, err := res.LastInsertId()
	if err != nil {
		return 0, false, err
	}
	id = uint64(newID)

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO conversation_participants (conversation_id, user_id) VALUES (?, ?), (?, ?)`,
		id, selfID, id, otherID); err != nil {
		return 0, false, err
	}
	if err := tx.Commit(); err != nil {
		return 0, false, err
	}
	committed = true
	return id, true, nil
}

// InboxRow is one conversation as shown in the inbox: the other
// participant's identity plus the most recent message, recomputed live by
// aggregation rather than kept as a denormalized column.
type InboxRow struct {
	ID                  uint64
	ListingID           *uint64
	ListingTitle        *string
	ParticipantID       uint64
	ParticipantEmail    string
	ParticipantImageURL *string
	LastMessage         *string
	LastMessageAt       *time.Time
}

// ListForUser returns every conversation containing userID, sorted by last
// message time descending. Conversations with no messages yet have a NULL
// aggregate timestamp and sort last; the IS NULL key makes that policy
// explicit instead of leaning on engine-specific NULL ordering.
func (r *ConversationRepo) ListForUser(ctx context.Context, userID uint64) ([]InboxRow, error) {
	const q = `SELECT c.id, c.listing_id, l.title,
       other_user.id, other_user.email, other_user.profile_image_url,
       last_message.content, last_message.created_at
FROM conversations c
JOIN conversation_participants cp_self ON c.id = cp_self.conversation_id AND cp_self.user_id = ?
JOIN conversation_participants cp_other ON c.id = cp_other.conversation_id AND cp_other.user_id != ?
JOIN users other_user ON cp_other.user_id = other_user.id
LEFT JOIN listings l ON c.listing_id = l.id
LEFT JOIN (
    SELECT m.* FROM messages m
    INNER JOIN (
        SELECT conversation_id, MAX(created_at) AS max_created_at
        FROM messages
        GROUP BY conversation_id
    ) AS latest ON m.conversation_id = latest.conversation_id AND m.created_at = latest.max_created_at
) AS last_message ON c.id = last_message.conversation_id
ORDER BY (last_message.created_at IS NULL) ASC, last_message.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]InboxRow, 0)
	for rows.Next() {
		var row InboxRow
		if err := rows.Scan(&row.ID, &row.ListingID, &row.ListingTitle,
			&row.ParticipantID, &row.ParticipantEmail, &row.ParticipantImageURL,
			&row.LastMessage, &row.LastMessageAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// IsParticipant reports whether userID belongs to the conversation.
func (r *ConversationRepo) IsParticipant(ctx context.Context, conversationID, userID uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM conversation_participants WHERE conversation_id = ? AND user_id = ? LIMIT 1`,
		conversationID, userID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Messages returns the conversation's full log ascending by creation time.
func (r *ConversationRepo) Messages(ctx context.Context, conversationID uint64) ([]model.Message, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, conversation_id, sender_id, content, created_at
		 FROM messages WHERE conversation_id = ? ORDER BY created_at ASC`,
		conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Message, 0)
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// AppendMessage inserts a message and reads the stored row back so the
// caller returns the database-assigned timestamp, not a client clock.
// The log is append-only; no update or delete exists.
func (r *ConversationRepo) AppendMessage(ctx context.Context, conversationID, senderID uint64, content string) (model.Message, error) {
	var m model.Message
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO messages (conversation_id, sender_id, content) VALUES (?,?,?)`,
		conversationID, senderID, content)
	if err != nil {
		return m, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return m, err
	}
	err = r.db.QueryRowContext(ctx,
		`SELECT id, conversation_id, sender_id, content, created_at FROM messages WHERE id = ?`,
		uint64(id)).Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &m.CreatedAt)
	return m, err
}
