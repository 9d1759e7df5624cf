package manager

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Documents are stored as YAML unless the path ends in ".json", in which case
// the JSON layout of earlier releases is used (comments and trailing commas are
// tolerated on read).

type docFormat int

const (
	formatYAML docFormat = iota
	formatJSON
)

func formatForPath(path string) docFormat {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return formatJSON
	}
	return formatYAML
}

// LoadDocument reads the document at path.
//
// It always returns a usable document: when the file is missing or cannot be
// parsed, an empty document is returned together with the error explaining why.
// Callers that only need the document may ignore the error.
func LoadDocument(path string) (*Document, error) {
	path = expandPath(strings.TrimSpace(path))
	if path == "" {
		return NewDocument(), ErrConfigNotFound
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return NewDocument(), fmt.Errorf("read config %s: %w", path, err)
	}
	doc, err := decodeDocument(data, formatForPath(path))
	if err != nil {
		return NewDocument(), fmt.Errorf("parse config %s: %w", path, err)
	}
	return doc, nil
}

// SaveDocument writes doc to path atomically, creating the parent directory
// with 0700 permissions if missing.
func SaveDocument(path string, doc *Document) error {
	if doc == nil {
		return errors.New("nil document")
	}
	path = expandPath(strings.TrimSpace(path))
	if path == "" {
		return ErrConfigNotFound
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config dir %s: %w", dir, err)
	}

	payload, err := encodeDocument(doc, formatForPath(path))
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmp := path + fmt.Sprintf(".tmp-%d-%d", os.Getpid(), time.Now().UnixNano())
	if err := os.WriteFile(tmp, payload, 0o600); err != nil {
		return fmt.Errorf("write temp config %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("atomic rename to %s: %w", path, err)
	}
	return nil
}

func decodeDocument(data []byte, format docFormat) (*Document, error) {
	doc := &Document{}
	switch format {
	case formatJSON:
		data = jsonc.ToJSON(data)
		if len(strings.TrimSpace(string(data))) == 0 {
			break
		}
		if err := json.Unmarshal(data, doc); err != nil {
			return nil, err
		}
		if len(doc.Groups) == 0 {
			var legacy legacyDocument
			if err := json.Unmarshal(data, &legacy); err == nil && legacy.SessionGroups != nil {
				doc = legacy.toDocument()
			}
		}
	default:
		if err := yaml.Unmarshal(data, doc); err != nil {
			return nil, err
		}
	}
	normalizeDocument(doc)
	return doc, nil
}

func encodeDocument(doc *Document, format docFormat) ([]byte, error) {
	out := *doc
	normalizeDocument(&out)
	switch format {
	case formatJSON:
		payload, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(payload, '\n'), nil
	default:
		return yaml.Marshal(out)
	}
}

// normalizeDocument replaces nil slices with empty ones so that saved files
// always carry "groups"/"profiles" lists and loaded documents compare equal.
func normalizeDocument(doc *Document) {
	if strings.TrimSpace(doc.Version) == "" {
		doc.Version = DocumentVersion
	}
	if doc.Groups == nil {
		doc.Groups = []Group{}
	}
	for i := range doc.Groups {
		if doc.Groups[i].Profiles == nil {
			doc.Groups[i].Profiles = []Profile{}
		}
	}
}

// legacyDocument is the JSON layout written by the first releases
// ("session_groups" / "sessions" / "data" / "connection_type").
type legacyDocument struct {
	Version       string               `json:"version"`
	Colors        *legacyColors        `json:"colors"`
	SessionGroups []legacySessionGroup `json:"session_groups"`
}

type legacySessionGroup struct {
	Name     string          `json:"name"`
	Sessions []legacySession `json:"sessions"`
}

type legacySession struct {
	Name           string   `json:"name"`
	Data           string   `json:"data"`
	ConnectionType Protocol `json:"connection_type"`
}

type legacyRGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

func (c *legacyRGB) hex() string {
	if c == nil {
		return ""
	}
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

type legacyColors struct {
	Primary   *legacyRGB `json:"primary_color"`
	Success   *legacyRGB `json:"success_color"`
	Error     *legacyRGB `json:"error_color"`
	Highlight *legacyRGB `json:"highlight_color"`
}

func (l legacyDocument) toDocument() *Document {
	doc := &Document{Version: l.Version, Groups: make([]Group, 0, len(l.SessionGroups))}
	for _, sg := range l.SessionGroups {
		g := Group{Name: sg.Name, Profiles: make([]Profile, 0, len(sg.Sessions))}
		for _, s := range sg.Sessions {
			g.Profiles = append(g.Profiles, Profile{Name: s.Name, Endpoint: s.Data, Protocol: s.ConnectionType})
		}
		doc.Groups = append(doc.Groups, g)
	}
	if l.Colors != nil {
		doc.Colors = &Colors{
			Primary:   l.Colors.Primary.hex(),
			Success:   l.Colors.Success.hex(),
			Error:     l.Colors.Error.hex(),
			Highlight: l.Colors.Highlight.hex(),
		}
	}
	return doc
}

// Store binds a document path to load/save and remembers whether the file on
// disk was unreadable, in which case the first save keeps a ".bak" copy.
type Store struct {
	path   string
	logger *log.Logger

	backupOnSave bool
}

// NewStore returns a Store for path. A nil logger discards log output.
func NewStore(path string, logger *log.Logger) *Store {
	if logger == nil {
		logger = NewDiscardLogger()
	}
	return &Store{path: expandPath(strings.TrimSpace(path)), logger: logger}
}

// Path returns the document path.
func (s *Store) Path() string { return s.path }

// Load reads the document. It never fails: missing or broken files yield an
// empty document.
func (s *Store) Load() *Document {
	doc, err := LoadDocument(s.path)
	switch {
	case err == nil:
		s.backupOnSave = false
		s.logger.Debug("config loaded", "path", s.path, "groups", doc.GroupCount(), "profiles", doc.ProfileCount())
	case errors.Is(err, os.ErrNotExist):
		s.backupOnSave = false
		s.logger.Info("config not found, starting empty", "path", s.path)
	default:
		s.backupOnSave = true
		s.logger.Warn("config unreadable, starting empty", "path", s.path, "err", err)
	}
	return doc
}

// Save writes doc to the store's path.
func (s *Store) Save(doc *Document) error {
	if s.backupOnSave {
		backup := s.path + ".bak"
		if data, err := os.ReadFile(s.path); err == nil {
			if werr := os.WriteFile(backup, data, 0o600); werr != nil {
				s.logger.Warn("backup of unreadable config failed", "path", backup, "err", werr)
			} else {
				s.logger.Info("kept unreadable config", "backup", backup)
			}
		}
	}
	if err := SaveDocument(s.path, doc); err != nil {
		s.logger.Error("config save failed", "path", s.path, "err", err)
		return err
	}
	s.backupOnSave = false
	s.logger.Debug("config saved", "path", s.path, "groups", doc.GroupCount())
	return nil
}
