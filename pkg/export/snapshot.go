// Package export renders static lineage snapshots (SVG or PNG) of the
// project canvas, using the same world coordinates the interactive view
// shows.
package export

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"git.sr.ht/~sbinet/gg"
	svg "github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/lineweave/pkg/layout"
	"github.com/vanderheijden86/lineweave/pkg/model"
	"github.com/vanderheijden86/lineweave/pkg/store"
)

// SnapshotOptions controls lineage snapshot export behaviour.
type SnapshotOptions struct {
	Path     string                   // Output path; format inferred from extension when Format empty
	Format   string                   // "svg" or "png" (case-insensitive). If empty, inferred from Path.
	Title    string                   // Optional title rendered in summary block
	Doc      model.GraphDoc           // Graph document with node positions and edges
	Projects map[string]model.Project // Project records keyed by node id, for labels
	Stats    *store.Stats             // Graph stats used for the summary block
}

// SaveSnapshot renders a static lineage snapshot with a summary block. The
// visual language is deliberately plain so snapshots read well in docs and
// review threads.
func SaveSnapshot(opts SnapshotOptions) error {
	if len(opts.Doc.Nodes) == 0 {
		return fmt.Errorf("no nodes to export")
	}

	format := strings.ToLower(strings.TrimPrefix(opts.Format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(opts.Path)) {
		case ".svg":
			format = "svg"
		case ".png":
			format = "png"
		default:
			format = "svg" // safe default
			if opts.Path != "" && filepath.Ext(opts.Path) == "" {
				opts.Path = opts.Path + ".svg"
			}
		}
	}
	if format != "svg" && format != "png" {
		return fmt.Errorf("unsupported format %q (want svg or png)", format)
	}
	if opts.Path == "" {
		return fmt.Errorf("output path is required")
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	scene := buildScene(opts)

	switch format {
	case "svg":
		return renderSVG(opts.Path, scene)
	case "png":
		return renderPNG(opts.Path, scene)
	default:
		return fmt.Errorf("unhandled format %q", format)
	}
}

// --- scene computation -------------------------------------------------------

type sceneNode struct {
	ID     string
	Label  string
	Merged bool // has incoming provenance edges
	X, Y   float64
	W, H   float64
}

type sceneEdge struct {
	From string
	To   string
}

type scene struct {
	Nodes   []sceneNode
	Edges   []sceneEdge
	Width   int
	Height  int
	Header  float64
	Summary summaryInfo
}

type summaryInfo struct {
	Title     string
	NodeCount int
	EdgeCount int
	TopNode   string
	Ordered   bool
}

func buildScene(opts SnapshotOptions) scene {
	const (
		padding      = 36.0
		headerHeight = 110.0
		scale        = 0.9 // world units to pixels
	)

	// Normalize world coordinates so the top-left node lands at the padding.
	minX, minY := math.Inf(1), math.Inf(1)
	for _, n := range opts.Doc.Nodes {
		minX = math.Min(minX, n.X)
		minY = math.Min(minY, n.Y)
	}

	inDegree := make(map[string]int, len(opts.Doc.Nodes))
	outDegree := make(map[string]int, len(opts.Doc.Nodes))
	for _, e := range opts.Doc.Edges {
		outDegree[e.From]++
		inDegree[e.To]++
	}

	nodes := make([]sceneNode, 0, len(opts.Doc.Nodes))
	maxX, maxY := 0.0, 0.0
	for _, n := range opts.Doc.Nodes {
		label := n.ID
		if p, ok := opts.Projects[n.ID]; ok {
			label = p.Name
		}
		sn := sceneNode{
			ID:     n.ID,
			Label:  truncate(label, 24),
			Merged: inDegree[n.ID] > 0,
			X:      padding + (n.X-minX)*scale,
			Y:      padding + headerHeight + (n.Y-minY)*scale,
			W:      layout.NodeWidth * scale,
			H:      layout.NodeHeight * scale,
		}
		maxX = math.Max(maxX, sn.X+sn.W)
		maxY = math.Max(maxY, sn.Y+sn.H)
		nodes = append(nodes, sn)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	edges := make([]sceneEdge, 0, len(opts.Doc.Edges))
	for _, e := range opts.Doc.Edges {
		edges = append(edges, sceneEdge{From: e.From, To: e.To})
	}

	width := int(maxX + padding)
	if width < 640 {
		width = 640
	}
	height := int(maxY + padding)
	if height < 480 {
		height = 480
	}

	title := opts.Title
	if strings.TrimSpace(title) == "" {
		title = "Lineage Snapshot"
	}
	summary := summaryInfo{
		Title:     title,
		NodeCount: len(nodes),
		EdgeCount: len(edges),
		TopNode:   topByDegree(outDegree, nodes, opts.Projects),
		Ordered:   opts.Stats != nil && len(opts.Stats.TopologicalOrder) > 0,
	}

	return scene{
		Nodes:   nodes,
		Edges:   edges,
		Width:   width,
		Height:  height,
		Header:  headerHeight,
		Summary: summary,
	}
}

// topByDegree names the node that feeds the most merges. Ties break on id so
// repeated exports of the same graph produce identical summaries.
func topByDegree(outDegree map[string]int, nodes []sceneNode, projects map[string]model.Project) string {
	var bestID string
	bestVal := -1
	for _, n := range nodes {
		v := outDegree[n.ID]
		if v > bestVal || (v == bestVal && n.ID < bestID) {
			bestID = n.ID
			bestVal = v
		}
	}
	if bestID == "" {
		return "n/a"
	}
	label := bestID
	if p, ok := projects[bestID]; ok {
		label = p.Name
	}
	return fmt.Sprintf("%s (%d)", label, bestVal)
}

// --- rendering -------------------------------------------------------------

var (
	colorSource   = color.RGBA{0xc8, 0xe6, 0xc9, 0xff}
	colorMerged   = color.RGBA{0xbb, 0xde, 0xfb, 0xff}
	colorStroke   = color.RGBA{0x22, 0x22, 0x22, 0xff}
	colorEdge     = color.RGBA{0x6b, 0x80, 0xbf, 0xff}
	colorText     = color.RGBA{0x11, 0x11, 0x11, 0xff}
	colorSubtle   = color.RGBA{0x66, 0x66, 0x66, 0xff}
	colorBackdrop = color.RGBA{0xf9, 0xfa, 0xfb, 0xff}
	colorHeaderBG = color.RGBA{0xf3, 0xf4, 0xf6, 0xff}
	colorLegendBG = color.RGBA{0xee, 0xee, 0xee, 0xff}
)

func nodeColor(n sceneNode) color.RGBA {
	if n.Merged {
		return colorMerged
	}
	return colorSource
}

func renderPNG(path string, sc scene) error {
	dc := gg.NewContext(sc.Width, sc.Height)
	dc.SetColor(colorBackdrop)
	dc.Clear()

	// header
	dc.SetColor(colorHeaderBG)
	dc.DrawRoundedRectangle(16, 16, float64(sc.Width)-32, sc.Header-24, 10)
	dc.Fill()

	dc.SetFontFace(basicfont.Face7x13)

	drawSummaryBlock(dc, sc)
	drawLegend(dc, sc)

	// edges
	nodePos := make(map[string]sceneNode, len(sc.Nodes))
	for _, n := range sc.Nodes {
		nodePos[n.ID] = n
	}
	dc.SetColor(colorEdge)
	dc.SetLineWidth(2)
	for _, e := range sc.Edges {
		from := nodePos[e.From]
		to := nodePos[e.To]
		x1 := from.X + from.W
		y1 := from.Y + from.H/2
		x2 := to.X
		y2 := to.Y + to.H/2
		dc.DrawLine(x1, y1, x2, y2)
		dc.Stroke()
		drawArrow(dc, x2, y2)
	}

	// nodes
	for _, n := range sc.Nodes {
		drawNode(dc, n)
	}

	return dc.SavePNG(path)
}

func renderSVG(path string, sc scene) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return renderSVGToWriter(file, sc)
}

func renderSVGToWriter(w io.Writer, sc scene) error {
	canvas := svg.New(w)
	canvas.Start(sc.Width, sc.Height)
	canvas.Rect(0, 0, sc.Width, sc.Height, fmt.Sprintf("fill:%s", css(colorBackdrop)))
	canvas.Roundrect(16, 16, sc.Width-32, int(sc.Header-24), 10, 10, fmt.Sprintf("fill:%s", css(colorHeaderBG)))

	drawSummaryBlockSVG(canvas, sc)
	drawLegendSVG(canvas, sc)

	nodePos := make(map[string]sceneNode, len(sc.Nodes))
	for _, n := range sc.Nodes {
		nodePos[n.ID] = n
	}

	for _, e := range sc.Edges {
		from := nodePos[e.From]
		to := nodePos[e.To]
		x1 := int(from.X + from.W)
		y1 := int(from.Y + from.H/2)
		x2 := int(to.X)
		y2 := int(to.Y + to.H/2)
		canvas.Line(x1, y1, x2, y2, fmt.Sprintf("stroke:%s;stroke-width:2", css(colorEdge)))
		// simple arrow head
		canvas.Polygon(
			[]int{x2, x2 - 8, x2 - 8},
			[]int{y2, y2 + 4, y2 - 4},
			fmt.Sprintf("fill:%s", css(colorEdge)),
		)
	}

	for _, n := range sc.Nodes {
		x := int(n.X)
		y := int(n.Y)
		canvas.Roundrect(x, y, int(n.W), int(n.H), 8, 8,
			fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1.2", css(nodeColor(n)), css(colorStroke)))
		canvas.Text(x+10, y+22, n.Label, fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace;font-weight:bold", css(colorText)))
		canvas.Text(x+10, y+42, truncate(n.ID, 28), fmt.Sprintf("fill:%s;font-size:11px;font-family:monospace", css(colorSubtle)))
	}

	canvas.End()
	return nil
}

func drawNode(dc *gg.Context, n sceneNode) {
	dc.SetColor(nodeColor(n))
	dc.DrawRoundedRectangle(n.X, n.Y, n.W, n.H, 8)
	dc.Fill()
	dc.SetColor(colorStroke)
	dc.SetLineWidth(1.2)
	dc.DrawRoundedRectangle(n.X, n.Y, n.W, n.H, 8)
	dc.Stroke()

	dc.SetColor(colorText)
	dc.DrawStringAnchored(n.Label, n.X+10, n.Y+18, 0, 0.5)
	dc.SetColor(colorSubtle)
	dc.DrawStringAnchored(truncate(n.ID, 28), n.X+10, n.Y+36, 0, 0.5)
}

func drawArrow(dc *gg.Context, x, y float64) {
	dc.SetColor(colorEdge)
	dc.NewSubPath()
	dc.MoveTo(x, y)
	dc.LineTo(x-8, y+4)
	dc.LineTo(x-8, y-4)
	dc.ClosePath()
	dc.Fill()
}

func drawSummaryBlock(dc *gg.Context, sc scene) {
	dc.SetColor(colorText)
	dc.DrawStringAnchored(sc.Summary.Title, 32, 44, 0, 0.5)
	dc.SetColor(colorSubtle)
	dc.DrawStringAnchored(fmt.Sprintf("projects: %d  lineage edges: %d", sc.Summary.NodeCount, sc.Summary.EdgeCount), 32, 64, 0, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("most merged-from: %s", sc.Summary.TopNode), 32, 84, 0, 0.5)
	if !sc.Summary.Ordered {
		dc.DrawStringAnchored("warning: lineage contains a cycle", 32, 100, 0, 0.5)
	}
}

func drawLegend(dc *gg.Context, sc scene) {
	boxW := 180.0
	boxH := 64.0
	x := float64(sc.Width) - boxW - 20
	y := 24.0
	dc.SetColor(colorLegendBG)
	dc.DrawRoundedRectangle(x, y, boxW, boxH, 10)
	dc.Fill()
	dc.SetColor(colorStroke)
	dc.DrawRoundedRectangle(x, y, boxW, boxH, 10)
	dc.Stroke()

	dc.SetColor(colorText)
	dc.DrawStringAnchored("Legend", x+12, y+18, 0, 0.5)
	drawLegendRow(dc, x+12, y+36, colorSource, "Source project")
	drawLegendRow(dc, x+12, y+52, colorMerged, "Merged project")
}

func drawLegendRow(dc *gg.Context, x, y float64, c color.RGBA, label string) {
	dc.SetColor(c)
	dc.DrawRoundedRectangle(x, y-8, 14, 14, 3)
	dc.Fill()
	dc.SetColor(colorStroke)
	dc.DrawRoundedRectangle(x, y-8, 14, 14, 3)
	dc.Stroke()
	dc.SetColor(colorSubtle)
	dc.DrawStringAnchored(label, x+20, y, 0, 0.5)
}

func drawSummaryBlockSVG(canvas *svg.SVG, sc scene) {
	canvas.Text(32, 44, sc.Summary.Title, fmt.Sprintf("fill:%s;font-size:16px;font-family:monospace;font-weight:bold", css(colorText)))
	canvas.Text(32, 64, fmt.Sprintf("projects: %d  lineage edges: %d", sc.Summary.NodeCount, sc.Summary.EdgeCount), fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(colorSubtle)))
	canvas.Text(32, 84, fmt.Sprintf("most merged-from: %s", sc.Summary.TopNode), fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(colorSubtle)))
	if !sc.Summary.Ordered {
		canvas.Text(32, 100, "warning: lineage contains a cycle", fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(colorSubtle)))
	}
}

func drawLegendSVG(canvas *svg.SVG, sc scene) {
	boxW := 180
	boxH := 64
	x := sc.Width - boxW - 20
	y := 24
	canvas.Roundrect(x, y, boxW, boxH, 10, 10, fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", css(colorLegendBG), css(colorStroke)))
	canvas.Text(x+12, y+18, "Legend", fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace;font-weight:bold", css(colorText)))
	drawLegendRowSVG(canvas, x+12, y+36, colorSource, "Source project")
	drawLegendRowSVG(canvas, x+12, y+52, colorMerged, "Merged project")
}

func drawLegendRowSVG(canvas *svg.SVG, x, y int, c color.RGBA, label string) {
	canvas.Roundrect(x, y-8, 14, 14, 3, 3, fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", css(c), css(colorStroke)))
	canvas.Text(x+20, y, label, fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(colorSubtle)))
}

// --- helpers ---------------------------------------------------------------

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
