package session

// Session is one administrator login. The token doubles as the storage key;
// it is carried on the struct for convenience and never serialized into the
// value blob. Instances are immutable except for ExpiresAt, which moves
// forward on refresh.
type Session struct {
	Token   string
	AdminID string

	IssuedAt  int64
	ExpiresAt int64
}
