// Package mail sends the out-of-band notifications carrying recovery codes.
package mail

import "context"

// Mailer is the outbound mail capability. Send is fire-and-forget from the
// caller's perspective; failures are reported but never roll anything back.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}
