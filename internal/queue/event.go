// Package queue defines message payloads exchanged over the message broker
// and the background consumer that delivers queued verification emails.
package queue

// VerificationQueueName is the durable queue carrying verification email
// requests.
const VerificationQueueName = "email.verification"

// VerificationEmailEvent is published when an account requests email
// verification and delivery is handled out of process. It carries everything
// the consumer needs to send the message without querying the database.
type VerificationEmailEvent struct {
	UserID      uint64 `json:"user_id"`
	Email       string `json:"email"`
	FullName    string `json:"full_name"`
	Token       string `json:"token"`
	RequestedAt string `json:"requested_at"`
}
