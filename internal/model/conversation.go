package model

import "time"

// Conversation is a private two-party thread, optionally scoped to one
// listing.  PairKey is a stored normalization of "lower user id : higher
// user id : listing id (or '-')" with a UNIQUE index; it is what makes
// concurrent create attempts for the same pair+listing collapse into a
// single row instead of producing duplicates.
type Conversation struct {
    ID        uint64    // conversations.id
    ListingID *uint64   // conversations.listing_id (nullable)
    PairKey   string    // conversations.pair_key
    CreatedAt time.Time // conversations.created_at
}

// Message is one entry in a conversation's append-only log.  There is no
// edit or delete operation; ordering is by CreatedAt ascending.
type Message struct {
    ID             uint64    // messages.id
    ConversationID uint64    // messages.conversation_id
    SenderID       uint64    // messages.sender_id
    Content        string    // messages.content
    CreatedAt      time.Time // messages.created_at
}
