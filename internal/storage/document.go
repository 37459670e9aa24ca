/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"pagelayout/internal/scene"
	"pagelayout/internal/snap"
	"pagelayout/internal/vector"
)

const (
	ManifestFileName = "layout.json"
	BackupsDirName   = "backups"

	// FormatVersion is the manifest format written by Save.
	FormatVersion = 1
	// DefaultPageGap separates pages laid out side by side.
	DefaultPageGap = 40
)

var standardSubDirs = []string{
	"assets",
	"exports",
	BackupsDirName,
}

// PageSize is the page format in canvas units.
type PageSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Document is the manifest. Pages are the workspace objects among Objects,
// discovered by their clip / clip-page-<n> names.
type Document struct {
	Name     string         `json:"name"`
	Version  int            `json:"version"`
	PageSize PageSize       `json:"pageSize"`
	Objects  []scene.Object `json:"objects"`
	Snapping snap.Options   `json:"snapping"`
	Created  time.Time      `json:"created"`
	Modified time.Time      `json:"modified"`
}

// NewDocument lays out pages of the given size left to right.
func NewDocument(name string, pages int, size PageSize) Document {
	if pages < 1 {
		pages = 1
	}
	now := time.Now().UTC()
	doc := Document{
		Name:     name,
		Version:  FormatVersion,
		PageSize: size,
		Snapping: snap.Defaults(),
		Objects:  make([]scene.Object, 0, pages),
		Created:  now,
		Modified: now,
	}
	for i := 1; i <= pages; i++ {
		x := float64(i-1) * (size.Width + DefaultPageGap)
		ws := scene.NewWorkspace(i, pages, vector.R(x, 0, size.Width, size.Height))
		ws.ID = uuid.NewString()
		doc.Objects = append(doc.Objects, *ws)
	}
	return doc
}

// Handle keeps track of a layout loaded from or saved to disk.
type Handle struct {
	Root         string
	ManifestPath string
	Doc          Document
}

// InitLayout creates root (if needed), scaffolds the standard subfolders and
// writes doc transactionally.
func InitLayout(root string, doc Document) (*Handle, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("root path is required")
	}
	if err := scaffold(root); err != nil {
		return nil, err
	}
	h := &Handle{
		Root:         root,
		ManifestPath: filepath.Join(root, ManifestFileName),
		Doc:          doc,
	}
	if err := Save(h); err != nil {
		return nil, err
	}
	return h, nil
}

func scaffold(root string) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("create layout root: %w", err)
	}
	for _, d := range standardSubDirs {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			return fmt.Errorf("create subdir %s: %w", d, err)
		}
	}
	return nil
}

// Open loads a layout from root. If the manifest cannot be read or parsed,
// the latest backup is used instead.
func Open(root string) (*Handle, error) {
	mpath := filepath.Join(root, ManifestFileName)
	b, err := os.ReadFile(mpath)
	if err != nil {
		doc, berr := openFromLatestBackup(root)
		if berr != nil {
			return nil, fmt.Errorf("open manifest: %w; backup attempt: %v", err, berr)
		}
		return &Handle{Root: root, ManifestPath: mpath, Doc: *doc}, nil
	}
	var doc Document
	if uerr := json.Unmarshal(b, &doc); uerr != nil {
		d, berr := openFromLatestBackup(root)
		if berr != nil {
			return nil, fmt.Errorf("parse manifest: %w; backup attempt: %v", uerr, berr)
		}
		return &Handle{Root: root, ManifestPath: mpath, Doc: *d}, nil
	}
	return &Handle{Root: root, ManifestPath: mpath, Doc: doc}, nil
}

// Canvas materializes the document objects.
func (h *Handle) Canvas() (*scene.Canvas, error) {
	return scene.Load(h.Doc.Objects)
}

// SaveCanvas copies the canvas state and snapping options into the document
// and saves it.
func (h *Handle) SaveCanvas(c *scene.Canvas, opts snap.Options) error {
	if !c.Alive() {
		return scene.ErrDisposed
	}
	h.Doc.Objects = c.Export()
	h.Doc.Snapping = opts
	return Save(h)
}

// Save writes the document with transactional semantics and a timestamped
// backup of the previous manifest (if present).
func Save(h *Handle) error {
	if h == nil {
		return errors.New("nil Handle")
	}
	if h.Root == "" || h.ManifestPath == "" {
		return errors.New("invalid Handle: missing paths")
	}
	if h.Doc.Version == 0 {
		h.Doc.Version = FormatVersion
	}
	if h.Doc.Objects == nil {
		h.Doc.Objects = []scene.Object{}
	}
	h.Doc.Modified = time.Now().UTC()
	data, err := json.MarshalIndent(h.Doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	data = append(data, '\n')

	bdir := filepath.Join(h.Root, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return fmt.Errorf("ensure backups dir: %w", err)
	}
	if _, statErr := os.Stat(h.ManifestPath); statErr == nil {
		stamp := time.Now().Format("20060102-150405.000")
		bpath := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", ManifestFileName, stamp))
		if cerr := copyFile(h.ManifestPath, bpath); cerr != nil {
			return fmt.Errorf("backup current manifest: %w", cerr)
		}
	}

	// write to a temp file in the same directory, then rename over the target
	dir := filepath.Dir(h.ManifestPath)
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", ManifestFileName, os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		return fmt.Errorf("write temp manifest: %w", werr)
	}
	// Windows cannot rename over an existing file
	if _, err := os.Stat(h.ManifestPath); err == nil {
		_ = os.Remove(h.ManifestPath)
	}
	if rerr := os.Rename(temp, h.ManifestPath); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace manifest: %w", rerr)
	}
	return nil
}

// SaveAs writes the manifest under a new root and moves the handle there.
func SaveAs(h *Handle, newRoot string) error {
	if h == nil {
		return errors.New("nil Handle")
	}
	if newRoot == "" {
		return errors.New("new root is empty")
	}
	if err := scaffold(newRoot); err != nil {
		return err
	}
	h.Root = newRoot
	h.ManifestPath = filepath.Join(newRoot, ManifestFileName)
	return Save(h)
}

// PruneBackups keeps the newest keep manifest backups and returns how many
// were removed.
func PruneBackups(root string, keep int) (int, error) {
	names, err := backupNames(root)
	if err != nil || len(names) <= keep {
		return 0, err
	}
	removed := 0
	for _, p := range names[:len(names)-keep] {
		if err := os.Remove(p); err != nil {
			return removed, fmt.Errorf("remove backup: %w", err)
		}
		removed++
	}
	return removed, nil
}

func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}

// backupNames lists manifest backups oldest first.
func backupNames(root string) ([]string, error) {
	bdir := filepath.Join(root, BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	var out []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, ManifestFileName+".") && strings.HasSuffix(name, ".bak") {
			out = append(out, filepath.Join(bdir, name))
		}
	}
	sort.Strings(out) // timestamp in name yields lexicographic order
	return out, nil
}

func openFromLatestBackup(root string) (*Document, error) {
	names, err := backupNames(root)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, errors.New("no backups found")
	}
	b, err := os.ReadFile(names[len(names)-1])
	if err != nil {
		return nil, fmt.Errorf("read latest backup: %w", err)
	}
	var d Document
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("parse latest backup: %w", err)
	}
	return &d, nil
}

// AutosaveCrashSnapshot writes the live canvas (or, without one, the loaded
// document) to backups/crash-<stamp>.json and returns the path. The manifest
// is left untouched.
func AutosaveCrashSnapshot(h *Handle, c *scene.Canvas, opts snap.Options) (string, error) {
	if h == nil {
		return "", errors.New("nil Handle")
	}
	if h.Root == "" {
		return "", errors.New("invalid Handle: missing root")
	}
	stamp := time.Now().Format("20060102-150405.000")
	path := filepath.Join(h.Root, BackupsDirName, fmt.Sprintf("crash-%s.json", stamp))
	for i := 1; ; i++ {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			break
		}
		path = filepath.Join(h.Root, BackupsDirName, fmt.Sprintf("crash-%s-%d.json", stamp, i))
	}
	ch := &Handle{Root: h.Root, ManifestPath: path, Doc: h.Doc}
	var err error
	if c.Alive() {
		err = ch.SaveCanvas(c, opts)
	} else {
		err = Save(ch)
	}
	if err != nil {
		return "", fmt.Errorf("write crash snapshot: %w", err)
	}
	return path, nil
}
