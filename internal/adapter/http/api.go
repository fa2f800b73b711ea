package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/couchcryptid/modis-choropleth/internal/adapter/chart"
	"github.com/couchcryptid/modis-choropleth/internal/domain"
	"github.com/couchcryptid/modis-choropleth/internal/session"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

const maxBodyBytes = 1 << 16

// Controller is the session surface the API drives.
type Controller interface {
	sharedobs.ReadinessChecker
	Current() (session.View, error)
	SelectVariable(ctx context.Context, id string) (session.View, error)
	Scrub(ctx context.Context, index int) (session.View, error)
	Step(ctx context.Context) (session.View, error)
	TogglePlay(ctx context.Context) (session.View, error)
	Click(ctx context.Context, region string) (session.View, error)
	ClickAt(ctx context.Context, lon, lat float64) (session.View, error)
	Hover(ctx context.Context, region string) (domain.HoverInfo, error)
}

// ChartRenderer draws a trajectory chart.
type ChartRenderer interface {
	Render(w io.Writer, format chart.Format, labels chart.Labels, points []domain.Point, tracked *domain.Point) error
}

var errBadRequest = errors.New("bad request")

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNotReady):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrUnknownRegion), errors.Is(err, chart.ErrNoData):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, domain.ErrUnknownVariable),
		errors.Is(err, domain.ErrIndexOutOfRange),
		errors.Is(err, domain.ErrEmptyAxis),
		errors.Is(err, session.ErrNoLocator):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	view, err := s.controller.Current()
	s.writeView(w, r, view, err)
}

func (s *Server) handleVariables(w http.ResponseWriter, r *http.Request) {
	view, err := s.controller.Current()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, view.Variables)
}

func (s *Server) handleSelectVariable(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Variable string `json:"variable"`
	}
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	view, err := s.controller.SelectVariable(r.Context(), req.Variable)
	s.writeView(w, r, view, err)
}

func (s *Server) handleScrub(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Index *int `json:"index"`
	}
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Index == nil {
		s.writeError(w, r, fmt.Errorf("%w: index is required", errBadRequest))
		return
	}
	view, err := s.controller.Scrub(r.Context(), *req.Index)
	s.writeView(w, r, view, err)
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	view, err := s.controller.Step(r.Context())
	s.writeView(w, r, view, err)
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	view, err := s.controller.TogglePlay(r.Context())
	s.writeView(w, r, view, err)
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Region string   `json:"region"`
		Lon    *float64 `json:"lon"`
		Lat    *float64 `json:"lat"`
	}
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	var (
		view session.View
		err  error
	)
	switch {
	case req.Region != "":
		view, err = s.controller.Click(r.Context(), req.Region)
	case req.Lon != nil && req.Lat != nil:
		view, err = s.controller.ClickAt(r.Context(), *req.Lon, *req.Lat)
	default:
		err = fmt.Errorf("%w: region or lon/lat is required", errBadRequest)
	}
	s.writeView(w, r, view, err)
}

func (s *Server) handleHover(w http.ResponseWriter, r *http.Request) {
	region := r.URL.Query().Get("region")
	if region == "" {
		s.writeError(w, r, fmt.Errorf("%w: region is required", errBadRequest))
		return
	}
	info, err := s.controller.Hover(r.Context(), region)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, info)
}

func (s *Server) handleChart(format chart.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := s.controller.Current()
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if !view.Selection.HasPin() {
			s.writeError(w, r, fmt.Errorf("%w: no region pinned", domain.ErrUnknownRegion))
			return
		}

		labels := chart.Labels{
			Title: view.Selection.Pinned + " " + view.Selection.Variable,
			YAxis: view.Selection.Variable,
		}
		for _, d := range view.Variables {
			if d.ID == view.Selection.Variable {
				labels.Title = view.Selection.Pinned + " " + d.Name
				if d.Unit != "" {
					labels.YAxis = d.Unit
				}
			}
		}

		// Render into memory first so a failure can still produce a JSON error.
		var buf bytes.Buffer
		if err := s.charts.Render(&buf, format, labels, view.Frame.Trajectory, view.Frame.Tracked); err != nil {
			s.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", format.ContentType())
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes()) //nolint:errcheck // client went away
	}
}
