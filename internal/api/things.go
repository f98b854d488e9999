package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/smazurov/everloopd/internal/api/models"
	"github.com/smazurov/everloopd/internal/things"
)

func (s *Server) registerThingRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-things",
		Method:      http.MethodGet,
		Path:        "/things",
		Summary:     "List things",
		Description: "Web Thing descriptions of every exposed device",
		Tags:        []string{"things"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, _ *struct{}) (*models.ThingListResponse, error) {
		return &models.ThingListResponse{
			Body: []things.Description{s.options.Store.Device().Describe()},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-thing",
		Method:      http.MethodGet,
		Path:        "/things/{thing}",
		Summary:     "Get thing",
		Description: "Web Thing description of one device",
		Tags:        []string{"things"},
		Security:    withAuth(),
		Errors:      []int{401, 404},
	}, func(_ context.Context, input *models.ThingPath) (*models.ThingResponse, error) {
		device, err := s.thing(input.Thing)
		if err != nil {
			return nil, err
		}
		return &models.ThingResponse{Body: device.Describe()}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-properties",
		Method:      http.MethodGet,
		Path:        "/things/{thing}/properties",
		Summary:     "Get properties",
		Description: "Current value of every property",
		Tags:        []string{"things"},
		Security:    withAuth(),
		Errors:      []int{401, 404},
	}, func(_ context.Context, input *models.ThingPath) (*models.PropertiesResponse, error) {
		if _, err := s.thing(input.Thing); err != nil {
			return nil, err
		}
		return &models.PropertiesResponse{Body: s.options.Store.Snapshot()}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-property",
		Method:      http.MethodGet,
		Path:        "/things/{thing}/properties/{property}",
		Summary:     "Get property",
		Description: "Current value of one property",
		Tags:        []string{"things"},
		Security:    withAuth(),
		Errors:      []int{401, 404},
	}, func(_ context.Context, input *models.PropertyPath) (*models.PropertyResponse, error) {
		if _, err := s.thing(input.Thing); err != nil {
			return nil, err
		}
		v, err := s.options.Store.Get(input.Property)
		if err != nil {
			return nil, propertyError(err)
		}
		return &models.PropertyResponse{Body: map[string]any{input.Property: v.Interface()}}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "set-property",
		Method:      http.MethodPut,
		Path:        "/things/{thing}/properties/{property}",
		Summary:     "Set property",
		Description: "Queue a property write. The control loop applies it on its next iteration; " +
			"the response carries the value after clamping to the declared bounds.",
		Tags:     []string{"things"},
		Security: withAuth(),
		Errors:   []int{400, 401, 404},
	}, func(_ context.Context, input *models.PropertyRequest) (*models.PropertyResponse, error) {
		device, err := s.thing(input.Thing)
		if err != nil {
			return nil, err
		}
		prop, ok := device.Property(input.Property)
		if !ok {
			return nil, huma.Error404NotFound("unknown property " + input.Property)
		}
		raw, ok := input.Body[input.Property]
		if !ok {
			return nil, huma.Error400BadRequest("body must contain key " + input.Property)
		}
		value, err := things.ValueFrom(prop.Type, raw)
		if err != nil {
			return nil, huma.Error400BadRequest(err.Error())
		}
		applied, err := s.options.Store.Enqueue(input.Property, value)
		if err != nil {
			return nil, propertyError(err)
		}
		return &models.PropertyResponse{Body: map[string]any{input.Property: applied.Interface()}}, nil
	})
}

// thing resolves the addressed device. The daemon exposes exactly one.
func (s *Server) thing(id string) (*things.Device, error) {
	device := s.options.Store.Device()
	if device.ID != id {
		return nil, huma.Error404NotFound("unknown thing " + id)
	}
	return device, nil
}

// propertyError maps store errors to HTTP statuses.
func propertyError(err error) error {
	var perr *things.PropertyError
	if !errors.As(err, &perr) {
		return huma.Error500InternalServerError("property access failed", err)
	}
	switch perr.Code {
	case things.CodeNotFound:
		return huma.Error404NotFound(perr.Error())
	default:
		return huma.Error400BadRequest(perr.Error())
	}
}
