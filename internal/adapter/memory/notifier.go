package memory

import "context"

// Subscribe returns a channel signalled after every write for userID.
func (db *DB) Subscribe(ctx context.Context, userID int64) (<-chan struct{}, func()) {
	return db.hub.Subscribe(ctx, userID)
}

// Subscribers returns the number of live subscriptions for userID.
func (db *DB) Subscribers(userID int64) int {
	return db.hub.Subscribers(userID)
}

func (db *DB) notify(userID int64) {
	db.hub.Publish(userID)
}
