/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders layouts to print proofs.
package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	applog "pagelayout/internal/log"
	"pagelayout/internal/scene"
	"pagelayout/internal/snap"
	"pagelayout/internal/storage"
	"pagelayout/internal/vector"
)

// RGB is an 8-bit colour.
type RGB struct{ R, G, B uint8 }

// ProofOptions controls the wireframe proof. Units are points; one canvas
// unit maps to one point.
type ProofOptions struct {
	// IncludeGrid draws the visual grid behind the objects.
	IncludeGrid bool
	// Labels prints object names (or kinds) in the top-left corner.
	Labels      bool
	GridColor   RGB
	ObjectColor RGB
	FrameColor  RGB
	LineWidth   float64
	// Pages limits the export to these page numbers; empty exports all.
	Pages []int
}

func (o ProofOptions) withDefaults() ProofOptions {
	if o.GridColor == (RGB{}) {
		o.GridColor = RGB{R: 200, G: 200, B: 200}
	}
	if o.FrameColor == (RGB{}) {
		o.FrameColor = RGB{R: 220, G: 0, B: 0}
	}
	if o.LineWidth <= 0 {
		o.LineWidth = 0.5
	}
	return o
}

// ExportProofPDF writes one PDF page per workspace showing every object
// that overlaps it as its transformed outline. Relative paths land in the
// layout's exports folder.
func ExportProofPDF(h *storage.Handle, outPath string, opt ProofOptions) error {
	if h == nil {
		return fmt.Errorf("layout handle is nil")
	}
	c, err := h.Canvas()
	if err != nil {
		return fmt.Errorf("load canvas: %w", err)
	}
	opt = opt.withDefaults()
	l := applog.WithOperation(applog.WithComponent("export"), "proof_pdf")

	pages := selectPages(c.Workspaces(), opt.Pages)
	if len(pages) == 0 {
		return fmt.Errorf("layout has no pages to export")
	}
	first := pages[0].Bounds
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: first.W, Ht: first.H},
	})
	pdf.SetTitle(fmt.Sprintf("%s proof", h.Doc.Name), true)
	pdf.SetAuthor("pagelayout", false)
	pdf.SetFont("Helvetica", "", 7)
	pdf.SetAutoPageBreak(false, 0)

	grid := h.Doc.Snapping
	for _, ws := range pages {
		b := ws.Bounds
		pdf.AddPageFormat("", gofpdf.SizeType{Wd: b.W, Ht: b.H})
		if opt.IncludeGrid {
			drawGrid(pdf, b, grid, opt)
		}
		for _, o := range c.Objects() {
			if o.Kind == scene.KindGroup || scene.IsWorkspace(o) {
				continue
			}
			ab, ok := c.AbsoluteBounds(o.ID)
			if !ok || !overlaps(ab, b) {
				continue
			}
			drawObject(pdf, c, o, b, opt)
		}
	}

	if !filepath.IsAbs(outPath) {
		outPath = filepath.Join(h.Root, "exports", outPath)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	l.Info("proof written", slog.String("path", outPath), slog.Int("pages", len(pages)))
	return nil
}

func selectPages(all []scene.Workspace, only []int) []scene.Workspace {
	var out []scene.Workspace
	for _, ws := range all {
		if ws.Bounds.IsEmpty() {
			continue
		}
		if len(only) == 0 || contains(only, ws.PageNumber) {
			out = append(out, ws)
		}
	}
	return out
}

func contains(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

func overlaps(a, b vector.Rect) bool {
	return a.X < b.Right() && b.X < a.Right() && a.Y < b.Bottom() && b.Y < a.Bottom()
}

func drawGrid(pdf *gofpdf.Fpdf, page vector.Rect, o snap.Options, opt ProofOptions) {
	xs, ys := snap.GridLines(page, o)
	setDrawColor(pdf, opt.GridColor)
	pdf.SetLineWidth(0.1)
	for _, x := range xs {
		pdf.Line(x-page.X, 0, x-page.X, page.H)
	}
	for _, y := range ys {
		pdf.Line(0, y-page.Y, page.W, y-page.Y)
	}
}

// drawObject outlines o's transformed box clipped to the page. Frames are
// drawn in the frame colour; framed images are clipped to their frame.
func drawObject(pdf *gofpdf.Fpdf, c *scene.Canvas, o *scene.Object, page vector.Rect, opt ProofOptions) {
	m := vector.ChainMatrix(o.Transform(), c.Ancestors(o))
	corners := []vector.Pt{{X: 0, Y: 0}, {X: o.Width, Y: 0}, {X: o.Width, Y: o.Height}, {X: 0, Y: o.Height}}
	pts := make([]gofpdf.PointType, 0, len(corners))
	for _, p := range corners {
		q := m.Apply(p)
		pts = append(pts, gofpdf.PointType{X: q.X - page.X, Y: q.Y - page.Y})
	}

	pdf.ClipRect(0, 0, page.W, page.H, false)
	defer pdf.ClipEnd()
	if o.Clip != nil {
		pdf.ClipRect(o.Clip.X-page.X, o.Clip.Y-page.Y, o.Clip.W, o.Clip.H, false)
		defer pdf.ClipEnd()
	}

	col := opt.ObjectColor
	if scene.IsFrameType(o) {
		col = opt.FrameColor
		pdf.SetDashPattern([]float64{3, 2}, 0)
		defer pdf.SetDashPattern(nil, 0)
	}
	setDrawColor(pdf, col)
	pdf.SetLineWidth(opt.LineWidth)
	pdf.Polygon(pts, "D")
	if o.Kind == scene.KindImage || o.Kind == scene.KindFramedImage {
		// image placeholder cross
		pdf.Line(pts[0].X, pts[0].Y, pts[2].X, pts[2].Y)
		pdf.Line(pts[1].X, pts[1].Y, pts[3].X, pts[3].Y)
	}
	if opt.Labels {
		label := o.Name
		if label == "" {
			label = string(o.Kind)
		}
		pdf.SetTextColor(int(col.R), int(col.G), int(col.B))
		pdf.Text(pts[0].X+2, pts[0].Y+8, label)
	}
}

func setDrawColor(pdf *gofpdf.Fpdf, c RGB) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}
