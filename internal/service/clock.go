package service

import "time"

// Clock yields the current instant. Every service derives "now" from one
// injected clock so expiry comparisons across tokens, audit timestamps and
// rate windows can never disagree about the timezone.
type Clock func() time.Time

// UTCNow is the production clock.
func UTCNow() time.Time { return time.Now().UTC() }
