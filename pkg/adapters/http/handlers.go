package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/tapestry"
	"github.com/aretw0/tapestry/pkg/codec"
	"github.com/aretw0/tapestry/pkg/domain"
)

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"app":      "tapestry-http",
		"version":  strings.TrimSpace(tapestry.Version),
		"sessions": s.Sessions.Len(),
	})
}

// --- Sessions ---

// CreateSession handles POST /sessions.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	id, err := s.Sessions.Create(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/sessions/"+id)
	s.writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string][]string{"sessions": s.Sessions.List(r.Context())})
}

// DeleteSession handles DELETE /sessions/{sessionID}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Documents ---

// GetDocument handles GET /sessions/{sessionID}/document?format=json|yaml.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	format := codec.JSON
	if q := r.URL.Query().Get("format"); q != "" {
		f, err := codec.ParseFormat(q)
		if err != nil {
			s.writeError(w, r, errBadRequestf("format: %v", err))
			return
		}
		format = f
	}

	var data []byte
	err := s.Sessions.WithEditor(r.Context(), chi.URLParam(r, "sessionID"), func(_ context.Context, ed *tapestry.Editor) error {
		var err error
		data, err = ed.Export(format)
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if format == codec.YAML {
		w.Header().Set("Content-Type", "application/yaml")
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	_, _ = w.Write(data)
}

// PutDocument handles PUT /sessions/{sessionID}/document (replace-import).
func (s *Server) PutDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.decodeDocument(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.withEditor(w, r, func(ed *tapestry.Editor) (int, any, error) {
		if err := ed.LoadDocument(doc); err != nil {
			return 0, nil, err
		}
		return http.StatusOK, ed.Document(), nil
	})
}

// MergeDocument handles POST /sessions/{sessionID}/merge?x=&y= (merge-import).
func (s *Server) MergeDocument(w http.ResponseWriter, r *http.Request) {
	at, err := positionQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	doc, err := s.decodeDocument(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.withEditor(w, r, func(ed *tapestry.Editor) (int, any, error) {
		rep, err := ed.MergeDocument(doc, at)
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, rep, nil
	})
}

func (s *Server) decodeDocument(w http.ResponseWriter, r *http.Request) (*domain.Document, error) {
	data, err := readBody(w, r)
	if err != nil {
		return nil, err
	}
	var format codec.Format
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		format = codec.YAML
	}
	return codec.Decode(data, format)
}

// --- Nodes ---

type addNodeRequest struct {
	Kind     string          `json:"kind"`
	Position domain.Position `json:"position"`
}

// AddNode handles POST /sessions/{sessionID}/nodes.
func (s *Server) AddNode(w http.ResponseWriter, r *http.Request) {
	var req addNodeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Kind == "" {
		s.writeError(w, r, errBadRequestf("kind is required"))
		return
	}
	s.withEditor(w, r, func(ed *tapestry.Editor) (int, any, error) {
		n, err := ed.AddNode(req.Kind, req.Position)
		if err != nil {
			return 0, nil, err
		}
		return http.StatusCreated, n, nil
	})
}

// UpdateNode handles PATCH /sessions/{sessionID}/nodes/{nodeID}. The body is
// a partial property bag; ?record=true records history afterwards.
func (s *Server) UpdateNode(w http.ResponseWriter, r *http.Request) {
	var partial domain.PropertyBag
	if err := decodeJSON(w, r, &partial); err != nil {
		s.writeError(w, r, err)
		return
	}
	nodeID := chi.URLParam(r, "nodeID")
	record := r.URL.Query().Get("record") == "true"
	s.withEditor(w, r, func(ed *tapestry.Editor) (int, any, error) {
		if err := ed.UpdateNodeData(nodeID, partial); err != nil {
			return 0, nil, err
		}
		if record {
			ed.Record()
		}
		n, _ := ed.Node(nodeID)
		return http.StatusOK, n, nil
	})
}

// MoveNode handles PUT /sessions/{sessionID}/nodes/{nodeID}/position.
func (s *Server) MoveNode(w http.ResponseWriter, r *http.Request) {
	var pos domain.Position
	if err := decodeJSON(w, r, &pos); err != nil {
		s.writeError(w, r, err)
		return
	}
	nodeID := chi.URLParam(r, "nodeID")
	record := r.URL.Query().Get("record") == "true"
	s.withEditor(w, r, func(ed *tapestry.Editor) (int, any, error) {
		if err := ed.MoveNode(nodeID, pos); err != nil {
			return 0, nil, err
		}
		if record {
			ed.Record()
		}
		n, _ := ed.Node(nodeID)
		return http.StatusOK, n, nil
	})
}

// DeleteNode handles DELETE /sessions/{sessionID}/nodes/{nodeID}.
func (s *Server) DeleteNode(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeID")
	s.withEditor(w, r, func(ed *tapestry.Editor) (int, any, error) {
		return http.StatusNoContent, nil, ed.DeleteNode(nodeID)
	})
}

// --- Edges ---

type connectRequest struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Connect handles POST /sessions/{sessionID}/edges. Self-loops yield 422.
func (s *Server) Connect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.withEditor(w, r, func(ed *tapestry.Editor) (int, any, error) {
		e, err := ed.Connect(req.Source, req.Target)
		if err != nil {
			return 0, nil, err
		}
		return http.StatusCreated, e, nil
	})
}

// Disconnect handles DELETE /sessions/{sessionID}/edges/{edgeID}.
func (s *Server) Disconnect(w http.ResponseWriter, r *http.Request) {
	edgeID := chi.URLParam(r, "edgeID")
	s.withEditor(w, r, func(ed *tapestry.Editor) (int, any, error) {
		return http.StatusNoContent, nil, ed.Disconnect(edgeID)
	})
}

// --- Selection and clipboard ---

type idsRequest struct {
	IDs []string `json:"ids"`
}

// Select handles PUT /sessions/{sessionID}/selection.
func (s *Server) Select(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.withEditor(w, r, func(ed *tapestry.Editor) (int, any, error) {
		ed.Select(req.IDs...)
		return http.StatusOK, idsRequest{IDs: ed.Selected()}, nil
	})
}

type copyRequest struct {
	IDs    []string `json:"ids"`
	Shared bool     `json:"shared"`
}

// Copy handles POST /sessions/{sessionID}/copy. Without ids the current
// selection is copied; shared also publishes the payload to the clipboard store.
func (s *Server) Copy(w http.ResponseWriter, r *http.Request) {
	var req copyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.withEditor(w, r, func(ed *tapestry.Editor) (int, any, error) {
		ids := req.IDs
		if len(ids) == 0 {
			ids = ed.Selected()
		}
		p := ed.Copy(ids)
		if p == nil {
			return 0, nil, domain.ErrClipboardEmpty
		}
		if req.Shared {
			if err := ed.ShareClipboard(r.Context()); err != nil {
				return 0, nil, err
			}
		}
		return http.StatusOK, p, nil
	})
}

type pasteRequest struct {
	At     *domain.Position `json:"at,omitempty"`
	Shared bool             `json:"shared"`
}

// Paste handles POST /sessions/{sessionID}/paste.
func (s *Server) Paste(w http.ResponseWriter, r *http.Request) {
	var req pasteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.withEditor(w, r, func(ed *tapestry.Editor) (int, any, error) {
		var ids []string
		if req.Shared {
			var err error
			if ids, err = ed.PasteShared(r.Context(), req.At); err != nil {
				return 0, nil, err
			}
		} else if ids = ed.Paste(req.At); ids == nil {
			return 0, nil, domain.ErrClipboardEmpty
		}
		return http.StatusOK, idsRequest{IDs: ids}, nil
	})
}

// --- Variables ---

// ListVariables handles GET /sessions/{sessionID}/variables.
func (s *Server) ListVariables(w http.ResponseWriter, r *http.Request) {
	s.withEditor(w, r, func(ed *tapestry.Editor) (int, any, error) {
		return http.StatusOK, ed.Variables(), nil
	})
}

// SetVariable handles PUT /sessions/{sessionID}/variables/{name}.
func (s *Server) SetVariable(w http.ResponseWriter, r *http.Request) {
	var v domain.Variable
	if err := decodeJSON(w, r, &v); err != nil {
		s.writeError(w, r, err)
		return
	}
	v.Name = chi.URLParam(r, "name")
	s.withEditor(w, r, func(ed *tapestry.Editor) (int, any, error) {
		if err := ed.SetVariable(v); err != nil {
			return 0, nil, err
		}
		return http.StatusOK, ed.Variables(), nil
	})
}

// DeleteVariable handles DELETE /sessions/{sessionID}/variables/{name}.
func (s *Server) DeleteVariable(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	s.withEditor(w, r, func(ed *tapestry.Editor) (int, any, error) {
		return http.StatusNoContent, nil, ed.DeleteVariable(name)
	})
}

// FindUsages handles GET /sessions/{sessionID}/variables/{name}/usages.
func (s *Server) FindUsages(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	s.withEditor(w, r, func(ed *tapestry.Editor) (int, any, error) {
		usages := ed.FindUsages(name)
		if usages == nil {
			usages = []tapestry.Usage{}
		}
		return http.StatusOK, usages, nil
	})
}

type renameRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// RenameVariable handles POST /sessions/{sessionID}/variables/rename.
func (s *Server) RenameVariable(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.withEditor(w, r, func(ed *tapestry.Editor) (int, any, error) {
		fields, err := ed.RenameVariable(req.From, req.To)
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, map[string]int{"fields": fields}, nil
	})
}

// --- History ---

type historyResponse struct {
	Changed  bool `json:"changed"`
	CanUndo  bool `json:"can_undo"`
	CanRedo  bool `json:"can_redo"`
	Cursor   int  `json:"cursor"`
	Length   int  `json:"length"`
	Capacity int  `json:"capacity"`
}

func historyState(ed *tapestry.Editor, changed bool) historyResponse {
	return historyResponse{
		Changed:  changed,
		CanUndo:  ed.CanUndo(),
		CanRedo:  ed.CanRedo(),
		Cursor:   ed.HistoryCursor(),
		Length:   ed.HistoryLen(),
		Capacity: ed.HistoryCapacity(),
	}
}

// Record handles POST /sessions/{sessionID}/record.
func (s *Server) Record(w http.ResponseWriter, r *http.Request) {
	s.withEditor(w, r, func(ed *tapestry.Editor) (int, any, error) {
		return http.StatusOK, historyState(ed, ed.Record()), nil
	})
}

// Undo handles POST /sessions/{sessionID}/undo.
func (s *Server) Undo(w http.ResponseWriter, r *http.Request) {
	s.withEditor(w, r, func(ed *tapestry.Editor) (int, any, error) {
		return http.StatusOK, historyState(ed, ed.Undo()), nil
	})
}

// Redo handles POST /sessions/{sessionID}/redo.
func (s *Server) Redo(w http.ResponseWriter, r *http.Request) {
	s.withEditor(w, r, func(ed *tapestry.Editor) (int, any, error) {
		return http.StatusOK, historyState(ed, ed.Redo()), nil
	})
}

// --- Telemetry ---

// AddLogs handles POST /sessions/{sessionID}/logs with a list of entries.
func (s *Server) AddLogs(w http.ResponseWriter, r *http.Request) {
	var entries []domain.LogEntry
	if err := decodeJSON(w, r, &entries); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.withEditor(w, r, func(ed *tapestry.Editor) (int, any, error) {
		ed.AddLogs(entries)
		return http.StatusAccepted, map[string]int{"accepted": len(entries)}, nil
	})
}

// GetLogs handles GET /sessions/{sessionID}/logs.
func (s *Server) GetLogs(w http.ResponseWriter, r *http.Request) {
	s.withEditor(w, r, func(ed *tapestry.Editor) (int, any, error) {
		return http.StatusOK, ed.Logs(), nil
	})
}

// AddRows handles POST /sessions/{sessionID}/rows with a list of rows.
// Rows beyond the preview size are refused, not queued.
func (s *Server) AddRows(w http.ResponseWriter, r *http.Request) {
	var rows []domain.DataRow
	if err := decodeJSON(w, r, &rows); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.withEditor(w, r, func(ed *tapestry.Editor) (int, any, error) {
		accepted := ed.AddDataRows(rows)
		return http.StatusAccepted, map[string]int{"accepted": accepted, "dropped": len(rows) - accepted}, nil
	})
}

// GetRows handles GET /sessions/{sessionID}/rows.
func (s *Server) GetRows(w http.ResponseWriter, r *http.Request) {
	s.withEditor(w, r, func(ed *tapestry.Editor) (int, any, error) {
		return http.StatusOK, ed.DataRows(), nil
	})
}

// GetTelemetry handles GET /sessions/{sessionID}/telemetry.
func (s *Server) GetTelemetry(w http.ResponseWriter, r *http.Request) {
	s.withEditor(w, r, func(ed *tapestry.Editor) (int, any, error) {
		return http.StatusOK, ed.TelemetryStats(), nil
	})
}

// ClearTelemetry handles DELETE /sessions/{sessionID}/telemetry.
func (s *Server) ClearTelemetry(w http.ResponseWriter, r *http.Request) {
	s.withEditor(w, r, func(ed *tapestry.Editor) (int, any, error) {
		ed.ClearTelemetry()
		return http.StatusNoContent, nil, nil
	})
}
