package model

import "time"

// BookingLock is an advisory lock document serializing booking creation for
// one local calendar day. Expired documents are reaped by a TTL index.
type BookingLock struct {
	ID        string    `bson:"_id" json:"id"`
	Owner     string    `bson:"owner" json:"owner"`
	ExpiresAt time.Time `bson:"expires_at" json:"expiresAt"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
