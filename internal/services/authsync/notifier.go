package authsync

import "log/slog"

// SlogNotifier records the user-visible notifications in the service log.
// The UI collaborator renders them from the API responses; the log is the
// service-side trace.
type SlogNotifier struct {
	Log *slog.Logger
}

// PermissionsSynced records the one-time convergence toast.
func (n SlogNotifier) PermissionsSynced(userUID string) {
	n.Log.Info("permissions synced", slog.String("user_uid", userUID))
}

// AccountSuspended records the terminal suspension notice.
func (n SlogNotifier) AccountSuspended(userUID string) {
	n.Log.Warn("account suspended", slog.String("user_uid", userUID))
}
