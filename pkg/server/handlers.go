package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/roadnet/pkg/buildinfo"
	"github.com/matzehuels/roadnet/pkg/errors"
	rio "github.com/matzehuels/roadnet/pkg/io"
	"github.com/matzehuels/roadnet/pkg/pipeline"
	"github.com/matzehuels/roadnet/pkg/store"
)

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// simplifyResponse is the body returned by POST /v1/simplify.
type simplifyResponse struct {
	GraphHash   string          `json:"graph_hash"`
	MaxDistance float64         `json:"max_distance"`
	Summary     store.Summary   `json:"summary"`
	Cached      bool            `json:"cached"`
	Graph       json.RawMessage `json:"graph"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: buildinfo.Version})
}

// handleSimplify reads a JSON graph and returns it weighted and collapsed.
// Transform options come from the query string.
func (s *Server) handleSimplify(w http.ResponseWriter, r *http.Request) {
	g, err := rio.ReadJSON(http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	opts := pipeline.Options{
		Component: q.Get("component"),
		Root:      q.Get("root"),
		Parallel:  q.Get("parallel"),
	}
	if v := q.Get("workers"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "workers: %q is not a number", v))
			return
		}
		opts.Workers = n
	}
	opts = s.withDefaults(opts)

	ctx, cancel := context.WithTimeout(r.Context(), s.opts.Timeout)
	defer cancel()

	res, err := s.opts.Runner.ExecuteGraph(ctx, g, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := rio.MarshalJSON(res.Graph)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, simplifyResponse{
		GraphHash:   res.GraphHash,
		MaxDistance: res.MaxDistance,
		Summary:     summarize(res),
		Cached:      res.CacheInfo.SimplifyHit,
		Graph:       data,
	})
}

// handleCreateRun fetches the requested bbox, simplifies it and stores
// the outcome.
func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&opts); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request"))
		return
	}
	opts.Formats = nil
	opts = s.withDefaults(opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.opts.Timeout)
	defer cancel()

	res, err := s.opts.Runner.Execute(ctx, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := rio.MarshalJSON(res.Graph)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	run := store.NewRun(opts.Bounds)
	run.GraphHash = res.GraphHash
	run.Component = opts.Component
	run.Root = opts.Root
	run.Parallel = opts.Parallel
	run.MaxDistance = res.MaxDistance
	run.Summary = summarize(res)
	run.Graph = data

	if err := s.opts.Store.Save(r.Context(), run); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.opts.Logger.Info("stored run",
		"id", run.ID,
		"bbox", opts.Bounds,
		"nodes", run.Summary.FinalNodes)

	w.Header().Set("Location", "/v1/runs/"+run.ID.String())
	writeJSON(w, http.StatusCreated, run)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := DefaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "limit must be a positive number"))
			return
		}
		limit = n
	}

	runs, err := s.opts.Store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id, err := store.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	run, err := s.opts.Store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// withDefaults fills options the request left empty from the server
// defaults.
func (s *Server) withDefaults(opts pipeline.Options) pipeline.Options {
	d := s.opts.Defaults
	if opts.OnlyRoads == nil {
		opts.OnlyRoads = d.OnlyRoads
	}
	if opts.Component == "" {
		opts.Component = d.Component
	}
	if opts.Parallel == "" {
		opts.Parallel = d.Parallel
	}
	if opts.Workers == 0 {
		opts.Workers = d.Workers
	}
	return opts
}

func summarize(res *pipeline.Result) store.Summary {
	return store.Summary{
		FetchedNodes:   res.Stats.FetchedNodes,
		FetchedEdges:   res.Stats.FetchedEdges,
		KeptNodes:      res.Stats.KeptNodes,
		KeptEdges:      res.Stats.KeptEdges,
		FinalNodes:     res.Stats.FinalNodes,
		FinalEdges:     res.Stats.FinalEdges,
		Collapsed:      res.Collapse.Collapsed,
		Passes:         res.Collapse.Passes,
		MergedParallel: res.Collapse.MergedParallel,
		SkippedLoops:   res.Collapse.SkippedLoops,
	}
}
