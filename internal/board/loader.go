package board

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/jason-s-yu/monopoly/internal/apperror"
	"github.com/sirupsen/logrus"
)

const genericChance = "generic-chance.json"

// formats are tried in order when a board is requested by name.
var formats = []string{".board", ".json", ".toml"}

// fileDefinition is the shared shape of the JSON and TOML board formats.
type fileDefinition struct {
	Spaces map[string]map[string]interface{} `json:"spaces" toml:"spaces"`
	Start  string                            `json:"start" toml:"start"`
	Left   string                            `json:"left" toml:"left"`
	Top    string                            `json:"top" toml:"top"`
	Right  string                            `json:"right" toml:"right"`
}

// Catalog loads board definitions from a directory and caches them by name.
type Catalog struct {
	fsys   fs.FS
	logger *logrus.Entry

	mu   sync.RWMutex
	defs map[string]*Definition
}

func NewCatalog(fsys fs.FS, logger *logrus.Entry) *Catalog {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Catalog{fsys: fsys, logger: logger, defs: make(map[string]*Definition)}
}

// Names lists the boards available in the catalog, sorted.
func (c *Catalog) Names() ([]string, error) {
	entries, err := fs.ReadDir(c.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	seen := make(map[string]bool)
	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasSuffix(e.Name(), "-chance.json") {
			continue
		}
		ext := path.Ext(e.Name())
		for _, f := range formats {
			if ext == f {
				n := strings.TrimSuffix(e.Name(), ext)
				if !seen[n] {
					seen[n] = true
					names = append(names, n)
				}
			}
		}
	}
	sort.Strings(names)
	return names, nil
}

// Load returns the named definition, parsing it on first use.
func (c *Catalog) Load(name string) (*Definition, error) {
	c.mu.RLock()
	def, ok := c.defs[name]
	c.mu.RUnlock()
	if ok {
		return def, nil
	}
	if name == "" || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return nil, fmt.Errorf("board %q: %w", name, apperror.ErrUnknownBoard)
	}

	def, err := c.parse(name)
	if err != nil {
		return nil, err
	}
	if def.Chance, err = c.loadChance(name); err != nil {
		return nil, err
	}
	if def.Script, err = c.loadScript(name); err != nil {
		return nil, err
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.defs[name] = def
	c.mu.Unlock()
	c.logger.WithFields(logrus.Fields{"board": name, "spaces": len(def.Spaces), "cards": len(def.Chance)}).Info("loaded board")
	return def, nil
}

// NewBoard builds a fresh board instance for one game.
func (c *Catalog) NewBoard(name string, logger *logrus.Entry) (*Board, error) {
	def, err := c.Load(name)
	if err != nil {
		return nil, err
	}
	return def.Build(logger)
}

func (c *Catalog) parse(name string) (*Definition, error) {
	for _, ext := range formats {
		data, err := fs.ReadFile(c.fsys, name+ext)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read board %s: %w", name, err)
		}
		switch ext {
		case ".board":
			return ParseDSL(name, string(data))
		case ".json":
			return ParseJSON(name, data)
		case ".toml":
			return ParseTOML(name, data)
		}
	}
	return nil, fmt.Errorf("board %q: %w", name, apperror.ErrUnknownBoard)
}

// ParseJSON reads {"spaces": {name: {attr: value}}, "start": "a -> b", ...}.
func ParseJSON(name string, data []byte) (*Definition, error) {
	var fd fileDefinition
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&fd); err != nil {
		return nil, fmt.Errorf("board %s: %w", name, err)
	}
	return fd.definition(name)
}

// ParseTOML reads the same shape as ParseJSON, with spaces as tables.
func ParseTOML(name string, data []byte) (*Definition, error) {
	var fd fileDefinition
	if _, err := toml.Decode(string(data), &fd); err != nil {
		return nil, fmt.Errorf("board %s: %w", name, err)
	}
	return fd.definition(name)
}

func (fd fileDefinition) definition(name string) (*Definition, error) {
	def := newDefinition(name)
	for spaceName, raw := range fd.Spaces {
		attrs := make(map[string]string, len(raw))
		for k, v := range raw {
			attrs[strings.ToLower(k)] = attrString(v)
		}
		if err := def.AddSpace(spaceName, attrs); err != nil {
			return nil, fmt.Errorf("board %s: %w", name, err)
		}
	}
	for side, order := range map[string]string{"start": fd.Start, "left": fd.Left, "top": fd.Top, "right": fd.Right} {
		if order != "" {
			def.Sides[side] = SplitOrder(order)
		}
	}
	return def, nil
}

func attrString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []interface{}:
		parts := make([]string, len(t))
		for i, item := range t {
			parts[i] = attrString(item)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(t)
	}
}

func (c *Catalog) loadChance(name string) ([]ChanceCard, error) {
	for _, file := range []string{name + "-chance.json", genericChance} {
		data, err := fs.ReadFile(c.fsys, file)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		var cards []ChanceCard
		if err := json.Unmarshal(data, &cards); err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		return cards, nil
	}
	c.logger.WithField("board", name).Warn("no chance cards found, draws will gain nothing")
	return nil, nil
}

func (c *Catalog) loadScript(name string) (*Script, error) {
	data, err := fs.ReadFile(c.fsys, name+".lua")
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s.lua: %w", name, err)
	}
	return CompileScript(name+".lua", bytes.NewReader(data))
}
