// Package ui implements the interactive lineage canvas: a two-level
// bubbletea view over the project graph with pointer gestures for dragging,
// panning, edge drawing, and merging.
//
// All state mutation happens inside Update. Async work runs as tea.Cmd
// goroutines whose result messages carry the node id and generation they
// were requested for; Update drops any result that no longer matches
// current state, so stale responses cannot clobber newer ones.
package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vanderheijden86/lineweave/pkg/config"
	"github.com/vanderheijden86/lineweave/pkg/export"
	"github.com/vanderheijden86/lineweave/pkg/layout"
	"github.com/vanderheijden86/lineweave/pkg/merge"
	"github.com/vanderheijden86/lineweave/pkg/model"
	"github.com/vanderheijden86/lineweave/pkg/preview"
	"github.com/vanderheijden86/lineweave/pkg/repo"
	"github.com/vanderheijden86/lineweave/pkg/store"
	"github.com/vanderheijden86/lineweave/pkg/watcher"
)

// viewScope is the navigation level: the project canvas or one project's
// commit history.
type viewScope int

const (
	scopeProjects viewScope = iota
	scopeCommits
)

// inputMode says what the text input modal is collecting.
type inputMode int

const (
	inputNone inputMode = iota
	inputCreate
	inputRename
	inputSearch
)

// confirmKind says what a pending confirm dialog will do.
type confirmKind int

const (
	confirmNone confirmKind = iota
	confirmDeleteProject
	confirmDeleteCommit
)

const statusTTL = 4 * time.Second

// Model is the bubbletea model for the lineage canvas.
type Model struct {
	theme  Theme
	logger *log.Logger
	cfg    config.Config

	svc       *repo.Service
	graph     *store.GraphStore
	persister *store.Persister
	previews  *preview.Cache
	fsw       *watcher.Watcher

	width        int
	height       int
	canvasTop    int // rows consumed by the header
	canvasBottom int // rows consumed by the status bar

	scope       viewScope
	openProject model.Project
	commitGraph *store.GraphStore
	commits     map[string]model.Commit // commit id -> commit, for the open project
	commitGen   uint64

	projects map[string]model.Project

	camera     Camera
	savedCam   Camera // projects-scope camera, restored on return
	gesture    Gesture
	selection  map[string]bool
	hoverID    string
	hoverGen   uint64
	previewTxt string
	previewSrc preview.Source
	mdRenderer *glamour.TermRenderer

	menu        contextMenu
	confirmForm *huh.Form
	confirm     confirmKind
	confirmID   string
	confirmYes  bool

	input     textinput.Model
	inputFor  inputMode
	inputErr  string // inline validation message, blocks submit
	renameID  string
	searchStr string

	showStats bool
	stats     store.Stats

	statusMsg string
	statusSeq int
	quitting  bool
}

// Options carries the collaborators New needs.
type Options struct {
	Service   *repo.Service
	Graph     *store.GraphStore
	Persister *store.Persister
	Previews  *preview.Cache
	Watcher   *watcher.Watcher
	Config    config.Config
	Logger    *log.Logger
}

// New builds the model. The graph store must already hold the loaded
// project document.
func New(opts Options) *Model {
	r := lipgloss.DefaultRenderer()

	ti := textinput.New()
	ti.CharLimit = 120
	ti.Width = 40

	previewWidth := opts.Config.UI.PreviewWidth
	if previewWidth <= 0 {
		previewWidth = 48
	}
	md, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(previewWidth-4),
	)

	return &Model{
		theme:        DefaultTheme(r),
		logger:       opts.Logger,
		cfg:          opts.Config,
		svc:          opts.Service,
		graph:        opts.Graph,
		persister:    opts.Persister,
		previews:     opts.Previews,
		fsw:          opts.Watcher,
		camera:       NewCamera(),
		selection:    make(map[string]bool),
		projects:     make(map[string]model.Project),
		input:        ti,
		mdRenderer:   md,
		canvasTop:    1,
		canvasBottom: 1,
	}
}

// Init loads the project list and subscribes to file change events.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadProjectsCmd()}
	if m.fsw != nil {
		cmds = append(cmds, watchChangesCmd(m.fsw.Changed()))
	}
	return tea.Batch(cmds...)
}

// activeGraph returns the store for the current scope.
func (m *Model) activeGraph() *store.GraphStore {
	if m.scope == scopeCommits && m.commitGraph != nil {
		return m.commitGraph
	}
	return m.graph
}

// schedulePersist queues a debounced save of the project graph. Commit-scope
// layouts are transient and never persisted.
func (m *Model) schedulePersist() {
	if m.persister != nil {
		m.persister.Schedule(m.graph.Document())
	}
}

func (m *Model) setStatus(s string) tea.Cmd {
	m.statusMsg = s
	m.statusSeq++
	return statusExpireCmd(m.statusSeq, statusTTL)
}

func (m *Model) setError(err error) tea.Cmd {
	if m.logger != nil {
		m.logger.Error("operation failed", "err", err)
	}
	return m.setStatus("error: " + err.Error())
}

// Update is the single mutation point for all UI state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Confirm dialog gets every message type while open: huh.Form needs
	// non-key messages for internal navigation.
	if m.confirm != confirmNone {
		return m.updateConfirm(msg)
	}
	if m.inputFor != inputNone {
		return m.updateInput(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case projectsLoadedMsg:
		return m.onProjectsLoaded(msg)

	case commitsLoadedMsg:
		return m.onCommitsLoaded(msg)

	case previewLoadedMsg:
		return m.onPreviewLoaded(msg)

	case projectCreatedMsg:
		return m.onProjectCreated(msg)

	case projectDeletedMsg:
		return m.onProjectDeleted(msg)

	case projectRenamedMsg:
		return m.onProjectRenamed(msg)

	case contentSavedMsg:
		if msg.err != nil {
			return m, m.setError(msg.err)
		}
		m.projects[msg.project.ID] = msg.project
		m.previews.Invalidate(msg.project.ID)
		return m, m.setStatus("content updated")

	case commitCreatedMsg:
		if msg.err != nil {
			return m, m.setError(msg.err)
		}
		if p, ok := m.projects[msg.nodeID]; ok {
			m.previews.Invalidate(p.ID)
		}
		return m, m.setStatus(fmt.Sprintf("commit #%d created", msg.commit.CommitNumber))

	case commitDeletedMsg:
		if msg.err != nil {
			return m, m.setError(msg.err)
		}
		if m.scope == scopeCommits && m.commitGraph != nil {
			m.commitGraph.RemoveNode(msg.commitID)
			delete(m.commits, msg.commitID)
		}
		return m, m.setStatus("commit deleted")

	case fileChangedMsg:
		return m.onFileChanged(msg)

	case exportDoneMsg:
		if msg.err != nil {
			return m, m.setError(msg.err)
		}
		return m, m.setStatus("exported " + msg.path)

	case clipboardMsg:
		if msg.err != nil {
			return m, m.setError(msg.err)
		}
		return m, m.setStatus("copied to clipboard")

	case statusExpiredMsg:
		if msg.seq == m.statusSeq {
			m.statusMsg = ""
		}
		return m, nil

	case errMsg:
		return m, m.setError(msg.err)
	}

	return m, nil
}

// --- async result handlers ---------------------------------------------------

func (m *Model) onProjectsLoaded(msg projectsLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m, m.setError(msg.err)
	}
	m.projects = make(map[string]model.Project, len(msg.projects))
	for _, p := range msg.projects {
		m.projects[p.ID] = p
	}
	report := m.graph.LoadProjects(m.graph.Document(), msg.projects)
	m.stats = store.ComputeStats(m.graph.Nodes(), m.graph.Edges())
	if report.PrunedNodes > 0 || report.PrunedEdges > 0 {
		m.schedulePersist()
		if m.logger != nil {
			m.logger.Info("pruned stale graph refs",
				"nodes", report.PrunedNodes, "edges", report.PrunedEdges)
		}
	}
	if report.PlacedNodes > 0 {
		m.schedulePersist()
	}
	return m, nil
}

func (m *Model) onCommitsLoaded(msg commitsLoadedMsg) (tea.Model, tea.Cmd) {
	// A stale load for a project we already navigated away from.
	if m.scope != scopeCommits || msg.nodeID != m.openProject.ID || msg.generation != m.commitGen {
		return m, nil
	}
	if msg.err != nil {
		return m, m.setError(msg.err)
	}
	m.commits = make(map[string]model.Commit, len(msg.commits))
	for _, c := range msg.commits {
		m.commits[c.ID] = c
	}
	m.commitGraph = store.New(layout.Engine{})
	m.commitGraph.LoadCommits(msg.commits)
	return m, nil
}

func (m *Model) onPreviewLoaded(msg previewLoadedMsg) (tea.Model, tea.Cmd) {
	// Only the response for the current hover generation may touch the
	// cache or the pane.
	if msg.nodeID != m.hoverID || msg.generation != m.hoverGen {
		return m, nil
	}
	if msg.err != nil {
		return m, m.setError(msg.err)
	}
	m.previews.Put(msg.nodeID, msg.fingerprint, msg.preview)
	m.previewTxt = msg.preview.Content
	m.previewSrc = msg.preview.Source
	return m, nil
}

func (m *Model) onProjectCreated(msg projectCreatedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		// A failed merge create leaves the selection intact for retry.
		return m, m.setError(msg.err)
	}
	m.projects[msg.project.ID] = msg.project

	if len(msg.mergeSources) > 0 {
		if err := m.graph.AddNode(model.GraphNode{
			ID: msg.project.ID, X: msg.mergedX, Y: msg.mergedY,
			EntityType: model.EntityProject,
		}); err != nil {
			return m, m.setError(err)
		}
		for _, e := range merge.ProvenanceEdges(msg.mergeSources, msg.project.ID) {
			if err := m.graph.AddEdge(e.From, e.To); err != nil {
				return m, m.setError(err)
			}
		}
		m.selection = make(map[string]bool)
	} else {
		if _, err := m.graph.AddPlaced(msg.project.ID, model.EntityProject); err != nil {
			return m, m.setError(err)
		}
	}
	m.stats = store.ComputeStats(m.graph.Nodes(), m.graph.Edges())
	m.schedulePersist()
	return m, m.setStatus("created " + msg.project.Name)
}

func (m *Model) onProjectDeleted(msg projectDeletedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m, m.setError(msg.err)
	}
	m.graph.RemoveNode(msg.nodeID)
	delete(m.projects, msg.nodeID)
	delete(m.selection, msg.nodeID)
	m.previews.Invalidate(msg.nodeID)
	if m.hoverID == msg.nodeID {
		m.clearHover()
	}
	m.stats = store.ComputeStats(m.graph.Nodes(), m.graph.Edges())
	m.schedulePersist()
	return m, m.setStatus("project deleted")
}

func (m *Model) onProjectRenamed(msg projectRenamedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m, m.setError(msg.err)
	}
	if msg.oldID != msg.project.ID {
		// Defensive: ids are stable today, but graph refs follow a rename
		// that does change the id.
		if err := m.graph.RenameID(msg.oldID, msg.project.ID); err != nil {
			return m, m.setError(err)
		}
		delete(m.projects, msg.oldID)
		m.previews.Invalidate(msg.oldID)
	}
	m.projects[msg.project.ID] = msg.project
	m.previews.Invalidate(msg.project.ID)
	m.schedulePersist()
	return m, m.setStatus("renamed to " + msg.project.Name)
}

func (m *Model) onFileChanged(msg fileChangedMsg) (tea.Model, tea.Cmd) {
	rel := msg.path
	if r, err := filepath.Rel(m.svc.Dir(), msg.path); err == nil {
		rel = r
	}
	for id, p := range m.projects {
		if p.Path != "" && (p.Path == msg.path || p.Path == rel) {
			m.previews.Invalidate(id)
			if m.hoverID == id {
				m.clearHover()
			}
		}
	}
	cmds := []tea.Cmd{m.loadProjectsCmd()}
	if m.fsw != nil {
		cmds = append(cmds, watchChangesCmd(m.fsw.Changed()))
	}
	return m, tea.Batch(cmds...)
}

// --- navigation ---------------------------------------------------------------

// drillInto switches to the commits scope for a project. The projects-scope
// camera is saved so returning restores pan and zoom exactly.
func (m *Model) drillInto(id string) tea.Cmd {
	p, ok := m.projects[id]
	if !ok {
		return nil
	}
	m.savedCam = m.camera
	m.camera = NewCamera()
	m.scope = scopeCommits
	m.openProject = p
	m.commitGraph = nil
	m.commits = nil
	m.commitGen++
	m.clearHover()
	m.menu.dismiss()
	m.gesture.Reset()
	return m.loadCommitsCmd(p, m.commitGen)
}

// returnToProjects leaves the commits scope.
func (m *Model) returnToProjects() {
	if m.scope != scopeCommits {
		return
	}
	m.scope = scopeProjects
	m.camera = m.savedCam
	m.openProject = model.Project{}
	m.commitGraph = nil
	m.commits = nil
	m.clearHover()
	m.menu.dismiss()
	m.gesture.Reset()
}

func (m *Model) clearHover() {
	m.hoverID = ""
	m.hoverGen++
	m.previewTxt = ""
	m.previewSrc = ""
}

// --- merge orchestration -------------------------------------------------------

// mergeSelection validates and runs the merge, then creates the merged
// project asynchronously. Validation or cycle failure mutates nothing:
// selection and graph stay exactly as they were.
func (m *Model) mergeSelection() tea.Cmd {
	if m.scope != scopeProjects {
		return m.setStatus("merging works on the project canvas")
	}
	selected := make([]string, 0, len(m.selection))
	for _, id := range m.graph.NodeIDs() {
		if m.selection[id] {
			selected = append(selected, id)
		}
	}
	res, err := merge.MergeSelected(selected, m.graph.Edges(), m.projects)
	if err != nil {
		return m.setError(err)
	}

	sources := make([]model.GraphNode, 0, len(res.OrderedSourceIDs))
	for _, id := range res.OrderedSourceIDs {
		if n, ok := m.graph.Node(id); ok {
			sources = append(sources, n)
		}
	}
	x, y := merge.Placement(sources)
	x, y = m.graph.ResolveCollision(x, y, "")

	name := res.ProvisionalName
	content := res.MergedContent
	ordered := res.OrderedSourceIDs
	svc := m.svc
	return func() tea.Msg {
		p, err := svc.CreateProject(context.Background(), name, content)
		return projectCreatedMsg{
			project:      p,
			mergeSources: ordered,
			mergedX:      x,
			mergedY:      y,
			err:          err,
		}
	}
}

// --- small command constructors -----------------------------------------------

func (m *Model) createProjectCmd(name string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		p, err := svc.CreateProject(context.Background(), name, "")
		return projectCreatedMsg{project: p, err: err}
	}
}

func (m *Model) renameProjectCmd(id, name string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		p, err := svc.RenameProject(context.Background(), id, name)
		return projectRenamedMsg{oldID: id, project: p, err: err}
	}
}

func (m *Model) deleteProjectCmd(id string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		err := svc.DeleteProject(context.Background(), id)
		return projectDeletedMsg{nodeID: id, err: err}
	}
}

func (m *Model) deleteCommitCmd(id string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		err := svc.DeleteCommit(context.Background(), id)
		return commitDeletedMsg{commitID: id, err: err}
	}
}

func (m *Model) commitProjectCmd(id string) tea.Cmd {
	p, ok := m.projects[id]
	if !ok {
		return nil
	}
	svc := m.svc
	return func() tea.Msg {
		c, err := svc.CommitProject(context.Background(), p.ID)
		return commitCreatedMsg{nodeID: p.ID, commit: c, err: err}
	}
}

func (m *Model) exportCmd() tea.Cmd {
	doc := m.graph.Document()
	projects := make(map[string]model.Project, len(m.projects))
	for id, p := range m.projects {
		projects[id] = p
	}
	stats := m.stats
	path := filepath.Join(m.svc.Dir(), "lineage-snapshot.svg")
	title := filepath.Base(m.svc.Dir())
	return func() tea.Msg {
		err := export.SaveSnapshot(export.SnapshotOptions{
			Path:     path,
			Title:    title,
			Doc:      doc,
			Projects: projects,
			Stats:    &stats,
		})
		return exportDoneMsg{path: path, err: err}
	}
}

func (m *Model) copyContentCmd(id string) tea.Cmd {
	var content string
	if m.scope == scopeCommits {
		c, ok := m.commits[id]
		if !ok {
			return nil
		}
		content = c.Content
	} else {
		p, ok := m.projects[id]
		if !ok {
			return nil
		}
		pv, _ := m.previews.Fetch(context.Background(), p)
		content = pv.Content
	}
	return func() tea.Msg {
		return clipboardMsg{err: clipboard.WriteAll(content)}
	}
}

// pasteContentCmd replaces a project's draft content with the clipboard text.
func (m *Model) pasteContentCmd(id string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		text, err := clipboard.ReadAll()
		if err != nil {
			return contentSavedMsg{err: err}
		}
		p, err := svc.UpdateContent(context.Background(), id, text)
		return contentSavedMsg{project: p, err: err}
	}
}

// --- modal handling -------------------------------------------------------------

func (m *Model) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		m.confirm = confirmNone
		m.confirmForm = nil
		return m, nil
	}
	form, cmd := m.confirmForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.confirmForm = f
	}
	if m.confirmForm.State != huh.StateCompleted {
		return m, cmd
	}

	kind, id, yes := m.confirm, m.confirmID, m.confirmYes
	m.confirm = confirmNone
	m.confirmForm = nil
	if !yes {
		return m, cmd
	}
	switch kind {
	case confirmDeleteProject:
		return m, tea.Batch(cmd, m.deleteProjectCmd(id))
	case confirmDeleteCommit:
		return m, tea.Batch(cmd, m.deleteCommitCmd(id))
	}
	return m, cmd
}

func (m *Model) askConfirm(kind confirmKind, id, prompt string) tea.Cmd {
	m.confirm = kind
	m.confirmID = id
	m.confirmYes = false
	m.confirmForm = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(prompt).
				Affirmative("Delete").
				Negative("Keep").
				Value(&m.confirmYes),
		),
	).WithTheme(huh.ThemeDracula())
	return m.confirmForm.Init()
}

func (m *Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, isKey := msg.(tea.KeyMsg)
	if isKey {
		switch key.String() {
		case "esc":
			if m.inputFor == inputSearch {
				m.searchStr = ""
			}
			m.inputFor = inputNone
			m.inputErr = ""
			m.input.Blur()
			return m, nil
		case "enter":
			value := strings.TrimSpace(m.input.Value())
			if value == "" && m.inputFor != inputSearch {
				// The modal stays open until a name is given or escaped.
				m.inputErr = "name cannot be empty"
				return m, nil
			}
			mode := m.inputFor
			m.inputFor = inputNone
			m.inputErr = ""
			m.input.Blur()
			switch mode {
			case inputCreate:
				return m, m.createProjectCmd(value)
			case inputRename:
				return m, m.renameProjectCmd(m.renameID, value)
			case inputSearch:
				m.searchStr = value
				return m, nil
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if isKey {
		m.inputErr = ""
	}
	if m.inputFor == inputSearch {
		m.searchStr = strings.TrimSpace(m.input.Value())
	}
	return m, cmd
}

func (m *Model) openInput(mode inputMode, prompt, initial string) tea.Cmd {
	m.inputFor = mode
	m.inputErr = ""
	m.input.Prompt = prompt
	m.input.SetValue(initial)
	m.input.CursorEnd()
	return m.input.Focus()
}
