/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	applog "pagelayout/internal/log"
	"pagelayout/internal/scene"
	"pagelayout/internal/snap"
	"pagelayout/internal/storage"
	"pagelayout/internal/vector"
)

// ExportProofSVG writes the wireframe proof as one SVG file per page, named
// page-<n>.svg under outDir (or the layout's exports folder when outDir is
// relative). It returns the written paths.
func ExportProofSVG(h *storage.Handle, outDir string, opt ProofOptions) ([]string, error) {
	if h == nil {
		return nil, fmt.Errorf("layout handle is nil")
	}
	c, err := h.Canvas()
	if err != nil {
		return nil, fmt.Errorf("load canvas: %w", err)
	}
	opt = opt.withDefaults()
	l := applog.WithOperation(applog.WithComponent("export"), "proof_svg")

	pages := selectPages(c.Workspaces(), opt.Pages)
	if len(pages) == 0 {
		return nil, fmt.Errorf("layout has no pages to export")
	}
	if !filepath.IsAbs(outDir) {
		outDir = filepath.Join(h.Root, "exports", outDir)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure out dir: %w", err)
	}

	var written []string
	for _, ws := range pages {
		b := ws.Bounds
		var buf bytes.Buffer
		var werr error
		wf := func(format string, args ...any) {
			if werr != nil {
				return
			}
			_, werr = fmt.Fprintf(&buf, format, args...)
		}

		wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
		wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%gpt\" height=\"%gpt\" viewBox=\"0 0 %g %g\">\n", b.W, b.H, b.W, b.H)
		wf("  <rect x=\"0\" y=\"0\" width=\"%g\" height=\"%g\" fill=\"#ffffff\"/>\n", b.W, b.H)
		if opt.IncludeGrid {
			xs, ys := snap.GridLines(b, h.Doc.Snapping)
			gc := svgColor(opt.GridColor)
			for _, x := range xs {
				wf("  <line x1=\"%g\" y1=\"0\" x2=\"%g\" y2=\"%g\" stroke=\"%s\" stroke-width=\"0.1\"/>\n", x-b.X, x-b.X, b.H, gc)
			}
			for _, y := range ys {
				wf("  <line x1=\"0\" y1=\"%g\" x2=\"%g\" y2=\"%g\" stroke=\"%s\" stroke-width=\"0.1\"/>\n", y-b.Y, b.W, y-b.Y, gc)
			}
		}
		for _, o := range c.Objects() {
			if o.Kind == scene.KindGroup || scene.IsWorkspace(o) {
				continue
			}
			ab, ok := c.AbsoluteBounds(o.ID)
			if !ok || !overlaps(ab, b) {
				continue
			}
			writeSVGObject(wf, c, o, b, opt)
		}
		wf("</svg>\n")
		if werr != nil {
			return written, fmt.Errorf("build svg: %w", werr)
		}

		name := filepath.Join(outDir, fmt.Sprintf("page-%d.svg", ws.PageNumber))
		if err := os.WriteFile(name, buf.Bytes(), 0o644); err != nil {
			return written, fmt.Errorf("write svg: %w", err)
		}
		written = append(written, name)
	}
	l.Info("proof written", slog.String("dir", outDir), slog.Int("pages", len(written)))
	return written, nil
}

func writeSVGObject(wf func(string, ...any), c *scene.Canvas, o *scene.Object, page vector.Rect, opt ProofOptions) {
	m := vector.ChainMatrix(o.Transform(), c.Ancestors(o))
	corners := []vector.Pt{{X: 0, Y: 0}, {X: o.Width, Y: 0}, {X: o.Width, Y: o.Height}, {X: 0, Y: o.Height}}
	pts := make([]string, 0, len(corners))
	var first vector.Pt
	for i, p := range corners {
		q := m.Apply(p)
		q.X -= page.X
		q.Y -= page.Y
		if i == 0 {
			first = q
		}
		pts = append(pts, fmt.Sprintf("%g,%g", q.X, q.Y))
	}

	col := svgColor(opt.ObjectColor)
	dash := ""
	if scene.IsFrameType(o) {
		col = svgColor(opt.FrameColor)
		dash = " stroke-dasharray=\"3 2\""
	}
	if o.Clip != nil {
		wf("  <clipPath id=\"clip-%s\"><rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\"/></clipPath>\n",
			escAttr(o.ID), o.Clip.X-page.X, o.Clip.Y-page.Y, o.Clip.W, o.Clip.H)
		wf("  <g clip-path=\"url(#clip-%s)\">\n", escAttr(o.ID))
		defer wf("  </g>\n")
	}
	wf("  <polygon points=\"%s\" fill=\"none\" stroke=\"%s\" stroke-width=\"%g\"%s/>\n", strings.Join(pts, " "), col, opt.LineWidth, dash)
	if o.Kind == scene.KindImage || o.Kind == scene.KindFramedImage {
		wf("  <polyline points=\"%s %s\" stroke=\"%s\" stroke-width=\"%g\"/>\n", pts[0], pts[2], col, opt.LineWidth)
		wf("  <polyline points=\"%s %s\" stroke=\"%s\" stroke-width=\"%g\"/>\n", pts[1], pts[3], col, opt.LineWidth)
	}
	if opt.Labels {
		label := o.Name
		if label == "" {
			label = string(o.Kind)
		}
		wf("  <text x=\"%g\" y=\"%g\" font-family=\"Helvetica, Arial, sans-serif\" font-size=\"7\" fill=\"%s\">%s</text>\n", first.X+2, first.Y+8, col, escText(label))
	}
}

func svgColor(c RGB) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func escAttr(s string) string {
	// naive escaping sufficient for ids and font names
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '"':
			out = append(out, '&', 'q', 'u', 'o', 't', ';')
		case '\n':
			out = append(out, ' ')
		case '\r':
			// skip
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}

func escText(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '&':
			out = append(out, '&', 'a', 'm', 'p', ';')
		case '<':
			out = append(out, '&', 'l', 't', ';')
		case '>':
			out = append(out, '&', 'g', 't', ';')
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}
