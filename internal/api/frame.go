package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/smazurov/everloopd/internal/api/models"
	"github.com/smazurov/everloopd/internal/device"
	"github.com/smazurov/everloopd/internal/metrics"
)

func (s *Server) registerFrameRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-frame",
		Method:      http.MethodGet,
		Path:        "/api/frame",
		Summary:     "LED frame",
		Description: "The frame last written to the LED ring",
		Tags:        []string{"device"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, _ *struct{}) (*models.FrameResponse, error) {
		data := models.FrameData{Driver: s.options.DriverName}
		if s.options.Frames != nil {
			f := s.options.Frames.Frame()
			data.Count = f.Len()
			data.Elements = f
			if err := s.options.Frames.Err(); err != nil {
				data.Error = err.Error()
			}
		}
		return &models.FrameResponse{Body: data}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-status",
		Method:      http.MethodGet,
		Path:        "/api/status",
		Summary:     "Loop status",
		Description: "Control loop counters and applied feature flags",
		Tags:        []string{"device"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, _ *struct{}) (*models.StatusResponse, error) {
		data := models.StatusData{Metrics: metrics.Current()}
		var features device.Features
		if s.options.Features != nil {
			features = s.options.Features()
		}
		data.IdleAnimation = features.IdleAnimation
		data.GPIOMirroring = features.GPIOMirroring
		if s.options.NATSConnected != nil {
			data.NATSConnected = s.options.NATSConnected()
		}
		return &models.StatusResponse{Body: data}, nil
	})
}
