package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/aretw0/mbtassist/internal/export"
	"github.com/aretw0/mbtassist/internal/presentation/graph"
	"github.com/aretw0/mbtassist/internal/sanitize"
	"github.com/aretw0/mbtassist/internal/validator"
	"github.com/aretw0/mbtassist/pkg/domain"
	"github.com/aretw0/mbtassist/pkg/generator"
	"github.com/aretw0/mbtassist/pkg/project"
	"github.com/go-chi/chi/v5"
)

type nodeCreate struct {
	Name string  `json:"name"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

type nodeUpdate struct {
	Name *string `json:"name"`
	// A null value removes the property.
	Properties map[string]*domain.Value `json:"properties"`
	X          *float64                 `json:"x"`
	Y          *float64                 `json:"y"`
}

type link struct {
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
	Action   string `json:"action"`
}

type transitionUpdate struct {
	Action     *string                  `json:"action"`
	Properties map[string]*domain.Value `json:"properties"`
	Anchor     *project.Point           `json:"anchor"`
}

type generation struct {
	StartNode string            `json:"start_node,omitempty"`
	NoStart   bool              `json:"no_start"`
	Truncated bool              `json:"truncated"`
	TestCases []domain.TestCase `json:"test_cases"`
}

// getHealth handles the GET /health request.
func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// getGraph handles the GET /graph request.
func (s *Server) getGraph(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Workspace.Document())
}

// clearGraph handles the DELETE /graph request.
func (s *Server) clearGraph(w http.ResponseWriter, r *http.Request) {
	s.edit(w, "graph_cleared", "", func(g *domain.Graph, l *project.Layout) error {
		g.Clear()
		clear(l.Nodes)
		clear(l.Transitions)
		return nil
	})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) createNode(w http.ResponseWriter, r *http.Request) {
	var body nodeCreate
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	name, err := cleanText(body.Name)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	var doc project.NodeDoc
	s.edit(w, "node_created", "", func(g *domain.Graph, l *project.Layout) error {
		n := g.AddNode(name)
		l.Nodes[n.ID] = project.Point{X: body.X, Y: body.Y}
		doc = nodeDoc(n, l)
		return nil
	})
	s.writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) updateNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body nodeUpdate
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	if err := cleanUpdate(body.Name, body.Properties); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	var doc project.NodeDoc
	err := s.edit(w, "node_updated", id, func(g *domain.Graph, l *project.Layout) error {
		n, ok := g.Node(id)
		if !ok {
			return fmt.Errorf("node %q: %w", id, domain.ErrUnknownNode)
		}
		if body.Name != nil {
			n.Name = *body.Name
			if n.Name == "" {
				n.Name = domain.DefaultNodeName
			}
		}
		for k, v := range body.Properties {
			switch {
			case v == nil:
				n.Properties.Delete(k)
			case k == domain.KeyIsInitial && isTrue(*v):
				if err := g.SetInitial(id); err != nil {
					return err
				}
			default:
				n.Properties.Set(k, *v)
			}
		}
		p := l.Nodes[id]
		if body.X != nil {
			p.X = *body.X
		}
		if body.Y != nil {
			p.Y = *body.Y
		}
		l.Nodes[id] = p
		doc = nodeDoc(n, l)
		return nil
	})
	if err != nil {
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

func (s *Server) deleteNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.edit(w, "node_deleted", id, func(g *domain.Graph, l *project.Layout) error {
		for _, t := range g.Transitions() {
			if t.Touches(id) {
				delete(l.Transitions, t.ID)
			}
		}
		delete(l.Nodes, id)
		g.DeleteNode(id)
		return nil
	})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) setInitial(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.edit(w, "initial_changed", id, func(g *domain.Graph, l *project.Layout) error {
		return g.SetInitial(id)
	})
	if err != nil {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) createTransition(w http.ResponseWriter, r *http.Request) {
	var body link
	if err := decodeLink(r, &body); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	var doc project.TransitionDoc
	err := s.edit(w, "transition_created", "", func(g *domain.Graph, l *project.Layout) error {
		src, tgt, err := endpoints(g, body)
		if err != nil {
			return err
		}
		doc = transitionDoc(g.AddTransition(src, tgt, body.Action), l)
		return nil
	})
	if err != nil {
		return
	}
	s.writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) toggleTransition(w http.ResponseWriter, r *http.Request) {
	var body link
	if err := decodeLink(r, &body); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	var (
		doc     project.TransitionDoc
		created bool
	)
	err := s.edit(w, "transition_toggled", "", func(g *domain.Graph, l *project.Layout) error {
		src, tgt, err := endpoints(g, body)
		if err != nil {
			return err
		}
		if existing, ok := g.FindTransition(src, tgt); ok {
			delete(l.Transitions, existing.ID)
		}
		var t *domain.Transition
		t, created = g.ToggleTransition(src, tgt, body.Action)
		if created {
			doc = transitionDoc(t, l)
		}
		return nil
	})
	if err != nil {
		return
	}
	if !created {
		s.writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
		return
	}
	s.writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) updateTransition(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body transitionUpdate
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	if err := cleanUpdate(body.Action, body.Properties); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	var doc project.TransitionDoc
	err := s.edit(w, "transition_updated", id, func(g *domain.Graph, l *project.Layout) error {
		t, ok := g.Transition(id)
		if !ok {
			return fmt.Errorf("transition %q: %w", id, errUnknownTransition)
		}
		if body.Action != nil {
			t.Action = *body.Action
		}
		for k, v := range body.Properties {
			if v == nil {
				t.Properties.Delete(k)
				continue
			}
			t.Properties.Set(k, *v)
		}
		if body.Anchor != nil {
			l.Transitions[id] = *body.Anchor
		}
		doc = transitionDoc(t, l)
		return nil
	})
	if err != nil {
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

func (s *Server) deleteTransition(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.edit(w, "transition_deleted", id, func(g *domain.Graph, l *project.Layout) error {
		delete(l.Transitions, id)
		g.DeleteTransition(id)
		return nil
	})
	w.WriteHeader(http.StatusNoContent)
}

// generate handles the POST /generate request. The traversal runs under the
// workspace read lock, so edits wait until it finishes.
func (s *Server) generate(w http.ResponseWriter, r *http.Request) {
	opts := s.genOpts
	if raw := r.URL.Query().Get("max_paths"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("%w: max_paths must be a non-negative integer", errBadRequest))
			return
		}
		opts = append(opts[:len(opts):len(opts)], generator.WithMaxPaths(n))
	}

	var res generator.Result
	s.Workspace.View(func(g *domain.Graph, _ *project.Layout) {
		res = generator.New(g, opts...).Generate()
	})

	resp := generation{
		NoStart:   res.NoStart,
		Truncated: res.Truncated,
		TestCases: res.TestCases,
	}
	if res.StartNode != nil {
		resp.StartNode = res.StartNode.ID
	}
	if resp.TestCases == nil {
		resp.TestCases = []domain.TestCase{}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) validate(w http.ResponseWriter, r *http.Request) {
	var report validator.Report
	s.Workspace.View(func(g *domain.Graph, _ *project.Layout) {
		report = validator.Validate(g)
	})
	if report.Issues == nil {
		report.Issues = []validator.Issue{}
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) exportCSV(w http.ResponseWriter, r *http.Request) {
	var res generator.Result
	s.Workspace.View(func(g *domain.Graph, _ *project.Layout) {
		res = generator.New(g, s.genOpts...).Generate()
	})

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="test-cases.csv"`)
	if err := export.WriteCSV(w, res.TestCases); err != nil {
		s.logger.Error("csv export failed", "error", err)
	}
}

// mermaid handles the GET /mermaid request. With ?case=N the path of test
// case N is highlighted.
func (s *Server) mermaid(w http.ResponseWriter, r *http.Request) {
	caseID := 0
	if raw := r.URL.Query().Get("case"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("%w: case must be a positive integer", errBadRequest))
			return
		}
		caseID = n
	}

	var (
		out   string
		found = true
	)
	s.Workspace.View(func(g *domain.Graph, _ *project.Layout) {
		var overlay *graph.Overlay
		if caseID > 0 {
			paths := generator.New(g, s.genOpts...).GenerateAllPaths()
			if caseID > len(paths) {
				found = false
				return
			}
			overlay = graph.OverlayFor(paths[caseID-1])
		}
		out = graph.GenerateMermaid(g, overlay)
	})
	if !found {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("test case %d does not exist", caseID))
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte(out))
}

// subscribeEvents handles the GET /events request (SSE).
func (s *Server) subscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("streaming not supported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: %d\n\n", s.Workspace.Revision())
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE client disconnected")
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
			flusher.Flush()
		}
	}
}

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	names, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	if names == nil {
		names = []string{}
	}
	s.writeJSON(w, http.StatusOK, names)
}

// openProject loads a stored project into the workspace, replacing it.
func (s *Server) openProject(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	name := chi.URLParam(r, "name")

	var doc *project.Document
	err := s.withLock(r.Context(), name, func(ctx context.Context) error {
		var err error
		doc, err = s.store.Load(ctx, name)
		if err != nil {
			return err
		}
		rev, err := s.Workspace.Replace(doc)
		if err != nil {
			// Not %w: a dangling reference inside the file is not a missing resource.
			return fmt.Errorf("%w: %q: %v", errCorruptProject, name, err)
		}
		s.Streams.Broadcast(Event{Type: "project_opened", Revision: rev, ID: name})
		return nil
	})
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.Workspace.Document())
}

func (s *Server) saveProject(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	name := chi.URLParam(r, "name")

	err := s.withLock(r.Context(), name, func(ctx context.Context) error {
		doc := s.Workspace.Document()
		doc.Name = name
		return s.store.Save(ctx, name, doc)
	})
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.logger.Info("project saved", "project", name)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteProject(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	name := chi.URLParam(r, "name")
	err := s.withLock(r.Context(), name, func(ctx context.Context) error {
		return s.store.Delete(ctx, name)
	})
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// -- Helpers --

// edit applies fn to the workspace and announces the change. On failure
// the error response is already written when edit returns.
func (s *Server) edit(w http.ResponseWriter, event, id string, fn func(*domain.Graph, *project.Layout) error) error {
	rev, err := s.Workspace.Update(fn)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return err
	}
	s.Streams.Broadcast(Event{Type: event, Revision: rev, ID: id})
	return nil
}

func (s *Server) requireStore(w http.ResponseWriter) bool {
	if s.store == nil {
		s.writeError(w, http.StatusNotImplemented, errNoStore)
		return false
	}
	return true
}

func (s *Server) withLock(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	if s.locker == nil {
		return fn(ctx)
	}
	unlock, err := s.locker.Lock(ctx, "project:"+name, DefaultLockTTL)
	if err != nil {
		return fmt.Errorf("failed to lock project %q: %w", name, err)
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("failed to release project lock", "project", name, "error", err)
		}
	}()
	return fn(ctx)
}

func cleanText(in string) (string, error) {
	out, err := sanitize.Text(in)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return out, nil
}

// cleanUpdate sanitizes a patched label and the string values of patched
// properties in place.
func cleanUpdate(label *string, props map[string]*domain.Value) error {
	if label != nil {
		clean, err := cleanText(*label)
		if err != nil {
			return err
		}
		*label = clean
	}
	for k, v := range props {
		if v == nil {
			continue
		}
		str, ok := v.AsString()
		if !ok {
			continue
		}
		clean, err := cleanText(str)
		if err != nil {
			return fmt.Errorf("property %q: %w", k, err)
		}
		props[k] = ptr(domain.String(clean))
	}
	return nil
}

func decodeLink(r *http.Request, l *link) error {
	if err := decodeBody(r, l); err != nil {
		return err
	}
	action, err := cleanText(l.Action)
	if err != nil {
		return err
	}
	l.Action = action
	return nil
}

func ptr[T any](v T) *T {
	return &v
}

func isTrue(v domain.Value) bool {
	b, ok := v.AsBool()
	return ok && b
}

func endpoints(g *domain.Graph, l link) (*domain.Node, *domain.Node, error) {
	if l.SourceID == "" || l.TargetID == "" {
		return nil, nil, fmt.Errorf("%w: source_id and target_id are required", errBadRequest)
	}
	src, ok := g.Node(l.SourceID)
	if !ok {
		return nil, nil, fmt.Errorf("source %q: %w", l.SourceID, domain.ErrUnknownNode)
	}
	tgt, ok := g.Node(l.TargetID)
	if !ok {
		return nil, nil, fmt.Errorf("target %q: %w", l.TargetID, domain.ErrUnknownNode)
	}
	return src, tgt, nil
}

func nodeDoc(n *domain.Node, l *project.Layout) project.NodeDoc {
	p := l.Nodes[n.ID]
	return project.NodeDoc{ID: n.ID, Name: n.Name, Properties: n.Properties.Clone(), X: p.X, Y: p.Y}
}

func transitionDoc(t *domain.Transition, l *project.Layout) project.TransitionDoc {
	d := project.TransitionDoc{
		ID:         t.ID,
		SourceID:   t.SourceID,
		TargetID:   t.TargetID,
		Action:     t.Action,
		Properties: t.Properties.Clone(),
	}
	if p, ok := l.Transitions[t.ID]; ok {
		d.Anchor = &p
	}
	return d
}
