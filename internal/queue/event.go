// Package queue carries password-reset email delivery over RabbitMQ: the
// auth service publishes a message per reset request and a background
// consumer performs the delivery, keeping broker hiccups out of the request
// path.
package queue

// passwordResetQueue is declared durable by both publisher and consumer, so
// whichever side starts first creates it.
const passwordResetQueue = "auth.password_reset"

// PasswordResetEmail is the payload published when a user requests a
// password reset. It contains everything a delivery worker needs; the raw
// token only ever appears embedded in the link.
type PasswordResetEmail struct {
	To          string `json:"to"`
	ResetLink   string `json:"reset_link"`
	ExpiresAt   string `json:"expires_at"`
	RequestedAt string `json:"requested_at"`
}
