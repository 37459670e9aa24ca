/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"pagelayout/internal/config"
	"pagelayout/internal/crash"
	"pagelayout/internal/export"
	applog "pagelayout/internal/log"
	"pagelayout/internal/storage"
	"pagelayout/internal/vector"
	"pagelayout/internal/version"
	"pagelayout/internal/viewport"
)

func usage() {
	fmt.Println("Page Layout geometry core")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  pagelayout version|-v|--version                  Show version")
	fmt.Println("  pagelayout init <dir> <name> [pages]             Create a layout with <pages> blank pages")
	fmt.Println("  pagelayout open <dir>                            Open layout at <dir> and print summary")
	fmt.Println("  pagelayout fit <dir> <width> <height>            Fit all pages into a container and store the viewport")
	fmt.Println("  pagelayout add <dir> <kind> <x> <y> <w> <h>      Add an object and print its id")
	fmt.Println("  pagelayout snap <dir> <id> <x> <y>               Drag an object towards <x>,<y> with snapping")
	fmt.Println("  pagelayout history <dir> [page]                  List persisted snapshots of a page")
	fmt.Println("  pagelayout validate <dir>                        Validate the manifest against the layout schema")
	fmt.Println("  pagelayout proof <dir> <out.pdf|outdir> [--grid] Export a wireframe proof (PDF, or one SVG per page)")
}

// guard autosaves the open layout and its live canvas on panic.
var guard = crash.NewGuard()

func fail(l *slog.Logger, msg string, err error) {
	l.Error(msg, slog.Any("err", err))
	fmt.Println("Error:", err)
	os.Exit(1)
}

func need(args []string, n int, msg string) {
	if len(args) < n {
		fmt.Println(msg)
		usage()
		os.Exit(2)
	}
}

func number(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		fmt.Printf("Error: %q is not a number\n", s)
		os.Exit(2)
	}
	return f
}

func main() {
	defer guard.Recover()

	cfg, cfgErr := config.Load()
	applog.Init(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
	})
	defer func() { _ = applog.Close() }()
	l := applog.WithComponent("cli")
	if cfgErr != nil {
		l.Warn("config load failed, using defaults", slog.Any("err", cfgErr))
	}

	ctx := context.Background()
	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) < 2 {
		usage()
		return
	}
	switch args[1] {
	case "version", "--version", "-v":
		fmt.Println("Page Layout geometry core")
		fmt.Println(version.String())
	case "init":
		need(args, 4, "init requires <dir> and <name>")
		pages := 1
		if len(args) > 4 {
			n, err := strconv.Atoi(args[4])
			if err != nil || n < 1 {
				fmt.Println("Error: pages must be a positive integer")
				os.Exit(2)
			}
			pages = n
		}
		abs, _ := filepath.Abs(args[2])
		l.Info("init layout", slog.String("root", abs), slog.String("name", args[3]), slog.Int("pages", pages))
		doc := storage.NewDocument(args[3], pages, storage.PageSize{Width: cfg.General.PageWidth, Height: cfg.General.PageHeight})
		doc.Snapping = cfg.SnapOptions()
		h, err := storage.InitLayout(abs, doc)
		if err != nil {
			fail(l, "init failed", err)
		}
		guard.Attach(h)
		db, err := storage.InitOrOpenIndex(abs)
		if err != nil {
			fail(l, "index init failed", err)
		}
		_ = db.Close()
		fmt.Println("Created layout at", abs)
	case "open":
		need(args, 3, "open requires <dir>")
		abs, _ := filepath.Abs(args[2])
		l.Info("open layout", slog.String("root", abs))
		h, err := storage.Open(abs)
		if err != nil {
			fail(l, "open failed", err)
		}
		guard.Attach(h)
		if rebuilt, err := storage.DetectAndRebuildIndex(ctx, abs); err != nil {
			l.Warn("index check failed", slog.Any("err", err))
		} else if rebuilt {
			fmt.Println("Rebuilt corrupted index")
		}
		c, err := h.Canvas()
		if err != nil {
			fail(l, "load objects failed", err)
		}
		fmt.Printf("Opened layout: %s\n", h.Doc.Name)
		for _, ws := range c.Workspaces() {
			fmt.Printf("Page %d: %s at %.1f,%.1f size %.1fx%.1f\n", ws.PageNumber, ws.Name, ws.Bounds.X, ws.Bounds.Y, ws.Bounds.W, ws.Bounds.H)
		}
		fmt.Printf("Objects: %d\n", len(c.Objects()))
		fmt.Println("Root:", h.Root)
	case "fit":
		need(args, 5, "fit requires <dir>, <width> and <height>")
		abs, _ := filepath.Abs(args[2])
		w, hgt := number(args[3]), number(args[4])
		h, err := storage.Open(abs)
		if err != nil {
			fail(l, "open failed", err)
		}
		guard.Attach(h)
		c, err := h.Canvas()
		if err != nil {
			fail(l, "load objects failed", err)
		}
		eng := viewport.NewEngine(cfg.ViewportOptions(), c.WorkspaceRects)
		if !eng.Resize(w, hgt) {
			fmt.Println("Nothing to fit")
			return
		}
		st := eng.State()
		if err := storage.SaveViewportState(ctx, h, viewAllPages, st); err != nil {
			fail(l, "save viewport failed", err)
		}
		fmt.Printf("Zoom: %.4f\n", st.Zoom())
		fmt.Printf("Translate: %.2f,%.2f\n", st.Matrix.E, st.Matrix.F)
		if st.Clip != nil {
			fmt.Printf("Clip: %.1f,%.1f %.1fx%.1f\n", st.Clip.X, st.Clip.Y, st.Clip.W, st.Clip.H)
		}
	case "add":
		need(args, 8, "add requires <dir>, <kind>, <x>, <y>, <w> and <h>")
		abs, _ := filepath.Abs(args[2])
		s, err := openSession(ctx, abs, cfg, "add")
		if err != nil {
			fail(l, "open failed", err)
		}
		o := newObject(args[3], number(args[4]), number(args[5]), number(args[6]), number(args[7]))
		if err := s.add(o); err != nil {
			fail(l, "add failed", err)
		}
		if err := s.finish(); err != nil {
			fail(l, "save failed", err)
		}
		fmt.Println(o.ID)
	case "snap":
		need(args, 6, "snap requires <dir>, <id>, <x> and <y>")
		abs, _ := filepath.Abs(args[2])
		s, err := openSession(ctx, abs, cfg, "move")
		if err != nil {
			fail(l, "open failed", err)
		}
		b, err := s.drag(args[3], vector.Pt{X: number(args[4]), Y: number(args[5])})
		if err != nil {
			fail(l, "snap failed", err)
		}
		if err := s.finish(); err != nil {
			fail(l, "save failed", err)
		}
		fmt.Printf("Bounds: %.2f,%.2f %.2fx%.2f\n", b.X, b.Y, b.W, b.H)
	case "history":
		need(args, 3, "history requires <dir>")
		abs, _ := filepath.Abs(args[2])
		page := 1
		if len(args) > 3 {
			page = int(number(args[3]))
		}
		h, err := storage.Open(abs)
		if err != nil {
			fail(l, "open failed", err)
		}
		snaps, err := storage.ListSnapshots(ctx, h, page, 50)
		if err != nil {
			fail(l, "list snapshots failed", err)
		}
		for _, sn := range snaps {
			fmt.Printf("%s  %-8s %d bytes\n", sn.TS.Local().Format("2006-01-02 15:04:05"), sn.Label, len(sn.Blob))
		}
		fmt.Printf("Snapshots: %d\n", len(snaps))
	case "validate":
		need(args, 3, "validate requires <dir>")
		abs, _ := filepath.Abs(args[2])
		if err := storage.ValidateLayout(abs); err != nil {
			fail(l, "validation failed", err)
		}
		fmt.Println("Layout is valid")
	case "proof":
		need(args, 4, "proof requires <dir> and <out.pdf> or an output folder")
		abs, _ := filepath.Abs(args[2])
		h, err := storage.Open(abs)
		if err != nil {
			fail(l, "open failed", err)
		}
		opt := export.ProofOptions{Labels: true}
		for _, a := range args[4:] {
			if strings.EqualFold(a, "--grid") {
				opt.IncludeGrid = true
			}
		}
		guard.Attach(h)
		if !strings.EqualFold(filepath.Ext(args[3]), ".pdf") {
			paths, err := export.ExportProofSVG(h, args[3], opt)
			if err != nil {
				fail(l, "proof export failed", err)
			}
			for _, p := range paths {
				fmt.Println("Wrote proof", p)
			}
			return
		}
		if err := export.ExportProofPDF(h, args[3], opt); err != nil {
			fail(l, "proof export failed", err)
		}
		fmt.Println("Wrote proof", args[3])
	default:
		usage()
		os.Exit(2)
	}
}
