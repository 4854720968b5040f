package storage

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/seasonal/internal/constants"
)

var (
	ErrNotFound            = errors.New("document not found")
	ErrNotInitialized      = errors.New("storage not initialized")
	ErrEmbeddedCredentials = errors.New("connection string must not contain a password")
	ErrClosed              = errors.New("storage closed")
	ErrInvalidDocRef       = errors.New("invalid document reference")
)

// DocRef addresses one document as collection/id.
type DocRef struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
}

func (r DocRef) String() string {
	return r.Collection + "/" + r.ID
}

// ParseDocRef parses the "collection/id" form produced by DocRef.String.
func ParseDocRef(s string) (DocRef, error) {
	collection, id, ok := strings.Cut(s, "/")
	if !ok || collection == "" || id == "" || strings.Contains(id, "/") {
		return DocRef{}, fmt.Errorf("%w: %q", ErrInvalidDocRef, s)
	}
	return DocRef{Collection: collection, ID: id}, nil
}

// SeasonRef is the document holding every entry of a season.
func SeasonRef(seasonNumber int) DocRef {
	return DocRef{
		Collection: constants.ScheduleCollection,
		ID:         constants.SeasonDocumentPrefix + strconv.Itoa(seasonNumber),
	}
}

// NavigationRef is the single navigation preferences document.
func NavigationRef() DocRef {
	return DocRef{Collection: constants.NavigationCollection, ID: constants.DefaultUserID}
}

// SettingsRef is the single user settings document.
func SettingsRef() DocRef {
	return DocRef{Collection: constants.SettingsCollection, ID: constants.DefaultUserID}
}

// SeasonNumber reports the season a schedule document belongs to.
func (r DocRef) SeasonNumber() (int, bool) {
	if r.Collection != constants.ScheduleCollection {
		return 0, false
	}
	raw, ok := strings.CutPrefix(r.ID, constants.SeasonDocumentPrefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > constants.TotalSeasons {
		return 0, false
	}
	return n, true
}

// Document is a raw stored document.
type Document struct {
	Ref       DocRef
	Data      []byte
	Revision  int64
	UpdatedAt time.Time
}

// EventType describes the nature of a change notification.
type EventType int

const (
	// EventDocumentChanged indicates the document named by Ref was written.
	EventDocumentChanged EventType = iota

	// EventInvalidated signals that the backend cannot tell what changed and
	// callers should reload everything they hold.
	EventInvalidated
)

func (t EventType) String() string {
	switch t {
	case EventDocumentChanged:
		return "changed"
	case EventInvalidated:
		return "invalidated"
	default:
		return "unknown"
	}
}

// Event is emitted by Watch when stored documents change.
type Event struct {
	Type EventType
	Ref  DocRef
}
