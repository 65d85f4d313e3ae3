package watchlist

import (
	"time"

	"github.com/google/uuid"
)

const (
	PlatformAndroid = "android"
	PlatformIOS     = "ios"
)

// TrackedApp is one entry of a group's watch-list. Rows are never updated.
type TrackedApp struct {
	ID            uuid.UUID `db:"id" json:"id"`
	GroupID       uuid.UUID `db:"group_id" json:"group_id"`
	AppIdentifier string    `db:"app_identifier" json:"app_identifier"`
	AppName       string    `db:"app_name" json:"app_name"`
	Platform      string    `db:"platform" json:"platform"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

func (a *TrackedApp) Validate() error {
	if a.GroupID == uuid.Nil {
		return ErrInvalidGroupID
	}
	if a.AppIdentifier == "" {
		return ErrInvalidAppIdentifier
	}
	return nil
}

// DisplayName prefers the stored name and falls back to the catalog.
func (a *TrackedApp) DisplayName() string {
	if a.AppName != "" {
		return a.AppName
	}
	return DisplayName(a.AppIdentifier)
}

// WatchList is an immutable, ordered snapshot of a group's tracked apps.
type WatchList struct {
	groupID uuid.UUID
	apps    []TrackedApp
	index   map[string]int
}

// NewWatchList keeps the first occurrence of every identifier, in input order.
func NewWatchList(groupID uuid.UUID, apps []TrackedApp) *WatchList {
	wl := &WatchList{
		groupID: groupID,
		apps:    make([]TrackedApp, 0, len(apps)),
		index:   make(map[string]int, len(apps)),
	}
	for _, app := range apps {
		if app.AppIdentifier == "" {
			continue
		}
		if _, ok := wl.index[app.AppIdentifier]; ok {
			continue
		}
		wl.index[app.AppIdentifier] = len(wl.apps)
		wl.apps = append(wl.apps, app)
	}
	return wl
}

func (w *WatchList) GroupID() uuid.UUID {
	return w.groupID
}

func (w *WatchList) Len() int {
	if w == nil {
		return 0
	}
	return len(w.apps)
}

func (w *WatchList) Empty() bool {
	return w.Len() == 0
}

func (w *WatchList) Contains(appIdentifier string) bool {
	if w == nil {
		return false
	}
	_, ok := w.index[appIdentifier]
	return ok
}

func (w *WatchList) Lookup(appIdentifier string) (TrackedApp, bool) {
	if w == nil {
		return TrackedApp{}, false
	}
	i, ok := w.index[appIdentifier]
	if !ok {
		return TrackedApp{}, false
	}
	return w.apps[i], true
}

// Apps returns a copy; the snapshot itself is never mutated.
func (w *WatchList) Apps() []TrackedApp {
	if w == nil {
		return nil
	}
	out := make([]TrackedApp, len(w.apps))
	copy(out, w.apps)
	return out
}
