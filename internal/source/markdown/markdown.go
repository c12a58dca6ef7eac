package markdown

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/chris-regnier/contentcal/internal/item"
	"github.com/chris-regnier/contentcal/internal/source"
)

// Store implements source.Store using one Markdown file with YAML
// front-matter per item, laid out as items/<kind>/<id>.md.
type Store struct {
	baseDir string // e.g. ~/.contentcal/items/
	mu      sync.Mutex
}

// New creates a new Markdown file store rooted at dataDir.
func New(dataDir string) (*Store, error) {
	itemsDir := filepath.Join(dataDir, "items")
	if err := os.MkdirAll(itemsDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: creating items directory: %v", source.ErrStorage, err)
	}
	return &Store{baseDir: itemsDir}, nil
}

// Close is a no-op for the Markdown backend.
func (s *Store) Close() error {
	return nil
}

type frontMatter struct {
	ID          string   `yaml:"id"`
	Kind        string   `yaml:"kind"`
	Title       string   `yaml:"title"`
	Status      string   `yaml:"status,omitempty"`
	Platforms   []string `yaml:"platforms,omitempty"`
	ScheduledAt string   `yaml:"scheduled_at,omitempty"`
	PublishedAt string   `yaml:"published_at,omitempty"`
	CreatedAt   string   `yaml:"created_at,omitempty"`
	UpdatedAt   string   `yaml:"updated_at,omitempty"`
}

func (s *Store) itemPath(ref item.Ref) string {
	return filepath.Join(s.baseDir, string(ref.Kind), ref.ID+".md")
}

func marshal(it item.Item) ([]byte, error) {
	fm := frontMatter{
		ID:          it.ID,
		Kind:        string(it.Kind),
		Title:       it.Title,
		Status:      string(it.Status),
		Platforms:   it.Platforms,
		ScheduledAt: it.ScheduledAt,
		PublishedAt: it.PublishedAt,
		CreatedAt:   it.CreatedAt,
		UpdatedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	head, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding front-matter: %v", source.ErrStorage, err)
	}

	var b bytes.Buffer
	b.WriteString("---\n")
	b.Write(head)
	b.WriteString("---\n\n")
	b.WriteString(it.Body)
	return b.Bytes(), nil
}

func unmarshal(data []byte) (item.Item, error) {
	var fm frontMatter
	body, err := frontmatter.Parse(bytes.NewReader(data), &fm)
	if err != nil {
		return item.Item{}, fmt.Errorf("%w: parsing front-matter: %v", source.ErrStorage, err)
	}
	return item.Item{
		ID:          fm.ID,
		Kind:        item.Kind(fm.Kind),
		Title:       fm.Title,
		Status:      item.Status(fm.Status),
		Platforms:   fm.Platforms,
		Body:        strings.TrimSpace(string(body)),
		ScheduledAt: fm.ScheduledAt,
		PublishedAt: fm.PublishedAt,
		CreatedAt:   fm.CreatedAt,
	}, nil
}

// atomicWrite writes data to a temp file then renames it to the target path.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: creating directory: %v", source.ErrStorage, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %v", source.ErrStorage, err)
	}
	tmpName := tmp.Name()

	// Lock the temp file during write
	if err := syscall.Flock(int(tmp.Fd()), syscall.LOCK_EX); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: acquiring lock: %v", source.ErrStorage, err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: writing temp file: %v", source.ErrStorage, err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: closing temp file: %v", source.ErrStorage, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: renaming file: %v", source.ErrStorage, err)
	}
	return nil
}

// Create persists a new item as a Markdown file.
func (s *Store) Create(_ context.Context, it item.Item) error {
	if err := it.Validate(); err != nil {
		return fmt.Errorf("%w: %v", source.ErrValidation, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.itemPath(it.Ref())
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s already exists", source.ErrStorage, it.Ref())
	}
	data, err := marshal(it)
	if err != nil {
		return err
	}
	return atomicWrite(path, data)
}

// Get reads one item.
func (s *Store) Get(_ context.Context, ref item.Ref) (item.Item, error) {
	return s.read(ref)
}

func (s *Store) read(ref item.Ref) (item.Item, error) {
	data, err := os.ReadFile(s.itemPath(ref))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return item.Item{}, fmt.Errorf("%w: %s", source.ErrNotFound, ref)
		}
		return item.Item{}, fmt.Errorf("%w: reading file: %v", source.ErrStorage, err)
	}
	return unmarshal(data)
}

// List walks every item file. Files are visited in kind then id order and
// the result is sorted by effective date, matching the SQLite backend.
func (s *Store) List(ctx context.Context, opts source.ListOptions) ([]item.Item, error) {
	var items []item.Item
	err := filepath.WalkDir(s.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".md") || strings.HasPrefix(d.Name(), ".tmp-") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		it, err := unmarshal(data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		items = append(items, it)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: walking items: %v", source.ErrStorage, err)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return effectiveDate(items[i]) < effectiveDate(items[j])
	})
	return source.Filter(items, opts), nil
}

func effectiveDate(it item.Item) string {
	for _, v := range []string{it.PublishedAt, it.ScheduledAt, it.CreatedAt} {
		if v != "" {
			return v
		}
	}
	return ""
}

// Reschedule moves a mutable item to newDate.
func (s *Store) Reschedule(_ context.Context, ref item.Ref, newDate time.Time) (item.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, err := s.read(ref)
	if err != nil {
		return item.Item{}, err
	}
	if err := source.CheckMutable(it); err != nil {
		return item.Item{}, err
	}

	it.ScheduledAt = item.FormatTimestamp(newDate)
	data, err := marshal(it)
	if err != nil {
		return item.Item{}, err
	}
	if err := atomicWrite(s.itemPath(ref), data); err != nil {
		return item.Item{}, err
	}
	return it, nil
}

// Delete removes an item file.
func (s *Store) Delete(_ context.Context, ref item.Ref) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.itemPath(ref)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", source.ErrNotFound, ref)
		}
		return fmt.Errorf("%w: removing file: %v", source.ErrStorage, err)
	}
	return nil
}
