package services

// Identity is the authenticated caller as resolved by the HTTP layer.
type Identity struct {
	UserID   uint
	Username string
}
