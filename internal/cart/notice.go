package cart

import "time"

type NoticeKind string

const (
	NoticeLimitReached  NoticeKind = "limit_reached"
	NoticeSyncFailed    NoticeKind = "sync_failed"
	NoticeDeleteFailed  NoticeKind = "delete_failed"
	NoticePricingFailed NoticeKind = "pricing_failed"
	NoticeLoadFailed    NoticeKind = "load_failed"
)

// Notice is a transient, dismissable message for the shopper.
type Notice struct {
	Kind       NoticeKind
	ProductIDs []ProductID
	Message    string
	Err        error
	At         time.Time
}
