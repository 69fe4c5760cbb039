// Package swatch renders a design's material selections as an SVG swatch sheet.
package swatch

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/stsysd/livery/model"
)

// Swatch is one material cell.
type Swatch struct {
	Key       string
	Label     string
	ColorHex  string
	Finish    string
	PatternID string
}

// Options configures rendering parameters.
type Options struct {
	CellSize    int    // size of each swatch cell (px)
	CellPadding int    // padding between cells (px)
	Columns     int    // cells per row
	FontSize    int    // font size for labels (px)
	FontFamily  string // font family for labels
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() *Options {
	return &Options{
		CellSize:    64,
		CellPadding: 8,
		Columns:     4,
		FontSize:    10,
		FontFamily:  "sans-serif",
	}
}

// Renderer draws swatch sheets. Pattern definitions are cached per
// (pattern, color) since they depend on nothing else.
type Renderer struct {
	opts *Options
	defs *cache.Cache
}

// NewRenderer creates a renderer. nil opts uses DefaultOptions.
func NewRenderer(opts *Options) *Renderer {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.Columns <= 0 {
		opts.Columns = 1
	}
	return &Renderer{
		opts: opts,
		defs: cache.New(time.Hour, 2*time.Hour),
	}
}

// FromSelections builds swatches in key order, labeled with catalog names.
func FromSelections(catalog *model.Catalog, selections model.DesignSelections) []Swatch {
	swatches := make([]Swatch, 0, len(selections))
	for _, key := range selections.Keys() {
		sel := selections[key]
		label := key
		if m, ok := catalog.Material(key); ok && m.Name != "" {
			label = m.Name
		}
		swatches = append(swatches, Swatch{
			Key:       key,
			Label:     label,
			ColorHex:  sel.ColorHex,
			Finish:    string(sel.Finish),
			PatternID: string(sel.PatternID),
		})
	}
	return swatches
}

func (r *Renderer) patternDef(patternID, colorHex string) (string, string) {
	key := strings.ToUpper(patternID) + "|" + strings.ToUpper(colorHex)
	if v, ok := r.defs.Get(key); ok {
		pair := v.([2]string)
		return pair[0], pair[1]
	}
	id, def := PatternDef(patternID, colorHex)
	r.defs.Set(key, [2]string{id, def}, cache.DefaultExpiration)
	return id, def
}

// Render returns the SVG sheet, or "" when there is nothing to draw.
func (r *Renderer) Render(title string, swatches []Swatch) string {
	if len(swatches) == 0 {
		return ""
	}
	opts := r.opts

	// compute dimensions
	titleHeight := 0
	if title != "" {
		titleHeight = opts.FontSize + 8 // title text + padding
	}
	columns := min(opts.Columns, len(swatches))
	rows := (len(swatches) + opts.Columns - 1) / opts.Columns
	labelHeight := opts.FontSize + 4
	rowHeight := opts.CellSize + labelHeight + opts.CellPadding
	width := columns*(opts.CellSize+opts.CellPadding) + opts.CellPadding
	height := rows*rowHeight + opts.CellPadding + titleHeight

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">`+"\n", width, height))
	sb.WriteString(fmt.Sprintf(`  <style>.label{font-family:%s;font-size:%dpx;fill:#666}.title{font-family:%s;font-size:%dpx;fill:#333;font-weight:bold}</style>`+"\n",
		opts.FontFamily, opts.FontSize, opts.FontFamily, opts.FontSize))

	// パターン定義（同じものは1回だけ）
	seen := make(map[string]bool)
	var defs []string
	patternIDs := make([]string, len(swatches))
	for i, s := range swatches {
		id, def := r.patternDef(s.PatternID, s.ColorHex)
		patternIDs[i] = id
		if id != "" && !seen[id] {
			seen[id] = true
			defs = append(defs, def)
		}
	}
	sb.WriteString(`  <defs>` + "\n")
	sb.WriteString(`    <linearGradient id="gloss" x1="0" y1="0" x2="0" y2="1"><stop offset="0" stop-color="#FFFFFF" stop-opacity="0.55"/><stop offset="0.5" stop-color="#FFFFFF" stop-opacity="0"/></linearGradient>` + "\n")
	for _, def := range defs {
		sb.WriteString("    " + def + "\n")
	}
	sb.WriteString(`  </defs>` + "\n")

	if title != "" {
		sb.WriteString(fmt.Sprintf(`  <text x="%d" y="%d" class="title">%s</text>`+"\n",
			opts.CellPadding, opts.FontSize, html.EscapeString(title)))
	}

	for i, s := range swatches {
		col := i % opts.Columns
		row := i / opts.Columns
		x := opts.CellPadding + col*(opts.CellSize+opts.CellPadding)
		y := opts.CellPadding + titleHeight + row*rowHeight
		color := html.EscapeString(s.ColorHex)
		finish := strings.ToUpper(strings.TrimSpace(s.Finish))

		// 各セルに矩形と、その中にtitle要素（ツールチップ）を追加
		sb.WriteString(fmt.Sprintf(`  <g data-key="%s" data-finish="%s" data-pattern="%s">`+"\n",
			html.EscapeString(s.Key), html.EscapeString(finish), html.EscapeString(strings.ToUpper(s.PatternID))))
		sb.WriteString(fmt.Sprintf(`    <title>%s: %s %s %s</title>`+"\n",
			html.EscapeString(s.Label), color, html.EscapeString(finish), html.EscapeString(s.PatternID)))
		sb.WriteString(fmt.Sprintf(`    <rect x="%d" y="%d" width="%d" height="%d" rx="6" fill="%s"/>`+"\n",
			x, y, opts.CellSize, opts.CellSize, color))
		if patternIDs[i] != "" {
			sb.WriteString(fmt.Sprintf(`    <rect x="%d" y="%d" width="%d" height="%d" rx="6" fill="url(#%s)"/>`+"\n",
				x, y, opts.CellSize, opts.CellSize, patternIDs[i]))
		}
		if finish == string(model.FinishGloss) {
			sb.WriteString(fmt.Sprintf(`    <rect x="%d" y="%d" width="%d" height="%d" rx="6" fill="url(#gloss)"/>`+"\n",
				x, y, opts.CellSize, opts.CellSize))
		}
		sb.WriteString(fmt.Sprintf(`    <text x="%d" y="%d" class="label">%s</text>`+"\n",
			x, y+opts.CellSize+opts.FontSize+2, html.EscapeString(s.Label)))
		sb.WriteString(`  </g>` + "\n")
	}

	sb.WriteString(`</svg>`)
	return sb.String()
}
