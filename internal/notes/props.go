package notes

import (
	"context"
	"fmt"
	"sync"

	"github.com/eliasvk/tracksync/internal/frontmatter"
	"github.com/eliasvk/tracksync/internal/storage"
)

// Editor is the property-editing surface of a note: read the current
// value of a named property, create a new one, or update an existing one.
// Implementations must guarantee that two mutations of the same note are
// never in flight concurrently.
type Editor interface {
	PropertyValue(ctx context.Context, notePath, name string) (any, bool, error)
	CreateProperty(ctx context.Context, notePath, name string, value any) error
	UpdateProperty(ctx context.Context, notePath, name string, value any) error
}

// FileEditor edits frontmatter properties on vault notes. Every mutation
// is a full read-modify-rewrite of the note, serialized per note path by
// a keyed lock: interleaved rewrites of one file are what corrupt
// frontmatter.
type FileEditor struct {
	store storage.Provider

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewFileEditor creates an editor over the given vault storage.
func NewFileEditor(store storage.Provider) *FileEditor {
	return &FileEditor{
		store: store,
		locks: make(map[string]*sync.Mutex),
	}
}

var _ Editor = (*FileEditor)(nil)

// noteLock returns the mutex guarding notePath, creating it on first use.
func (e *FileEditor) noteLock(notePath string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[notePath]
	if !ok {
		l = &sync.Mutex{}
		e.locks[notePath] = l
	}
	return l
}

// PropertyValue returns the current value of the named property, or
// ok=false when the note has no such property.
func (e *FileEditor) PropertyValue(_ context.Context, notePath, name string) (any, bool, error) {
	l := e.noteLock(notePath)
	l.Lock()
	defer l.Unlock()

	doc, err := e.parse(notePath)
	if err != nil {
		return nil, false, err
	}
	v, ok := doc.Value(name)
	return v, ok, nil
}

// CreateProperty adds a new property to the note.
func (e *FileEditor) CreateProperty(_ context.Context, notePath, name string, value any) error {
	return e.setProperty(notePath, name, value)
}

// UpdateProperty overwrites an existing property's value.
func (e *FileEditor) UpdateProperty(_ context.Context, notePath, name string, value any) error {
	return e.setProperty(notePath, name, value)
}

// setProperty performs the locked read-modify-rewrite cycle shared by
// create and update.
func (e *FileEditor) setProperty(notePath, name string, value any) error {
	l := e.noteLock(notePath)
	l.Lock()
	defer l.Unlock()

	doc, err := e.parse(notePath)
	if err != nil {
		return err
	}
	if err := doc.Set(name, value); err != nil {
		return err
	}
	out, err := doc.Render()
	if err != nil {
		return err
	}
	return e.store.Write(notePath, out)
}

func (e *FileEditor) parse(notePath string) (*frontmatter.Doc, error) {
	data, err := e.store.Read(notePath)
	if err != nil {
		return nil, err
	}
	doc, err := frontmatter.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("notes: %s: %w", notePath, err)
	}
	return doc, nil
}
