package rushx

// Severity classifies a user-facing notice.
type Severity string

const (
	SeverityInfo        Severity = "info"
	SeverityDestructive Severity = "destructive"
)

// Notice is a non-blocking user-visible notification, the SDK equivalent of
// the portals' toast. Every failed REST call produces exactly one Notice in
// addition to the returned error, so callers that swallow the error still
// surface it to the user.
type Notice struct {
	Title       string
	Description string
	Severity    Severity
}

// Notifier receives user-visible notices.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(Notice)

// Notify implements Notifier.
func (f NotifierFunc) Notify(n Notice) { f(n) }

// nopNotifier discards notices; configure a real Notifier with WithNotifier.
type nopNotifier struct{}

func (nopNotifier) Notify(Notice) {}
