package models

import "time"

// Message represents a single mail message fetched from the source mailbox.
// The (StoreID, EntryID) pair is globally unique per source instance and is
// the upsert key in the relational store; ID is the durable row id assigned
// on first insert.
type Message struct {
	ID            int64     `db:"id" json:"id"`
	StoreID       string    `db:"store_id" json:"store_id"`
	EntryID       string    `db:"entry_id" json:"entry_id"`
	Folder        string    `db:"folder" json:"folder"`
	Subject       string    `db:"subject" json:"subject"`
	Sender        string    `db:"sender" json:"sender"`
	To            string    `db:"to_addr" json:"to"`
	Cc            *string   `db:"cc_addr" json:"cc,omitempty"`
	SentAt        time.Time `db:"sent_at" json:"sent_at"`
	ReceivedAt    time.Time `db:"received_at" json:"received_at"`
	BodyText      string    `db:"body_text" json:"body_text"`
	BodyHTML      *string   `db:"body_html" json:"body_html,omitempty"`
	ContentHash   string    `db:"content_hash" json:"content_hash"`
	LastIndexedAt time.Time `db:"last_indexed_at" json:"last_indexed_at"`
}
