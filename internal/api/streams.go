package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/profilenode/internal/api/models"
	"github.com/smazurov/profilenode/pkg/dds"
)

func (s *Server) registerStreamRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-streams",
		Method:      http.MethodGet,
		Path:        "/api/streams",
		Summary:     "List streams",
		Description: "Streams of the local catalog, or those received over NATS with source=remote",
		Tags:        []string{"streams"},
		Security:    withAuth(),
		Errors:      []int{401, 503},
	}, func(_ context.Context, input *models.StreamsRequest) (*models.StreamsResponse, error) {
		var src StreamSource = s.options.Catalog
		if input.Source == "remote" {
			if s.options.Remote == nil {
				return nil, huma.Error503ServiceUnavailable("NATS bridge is not running")
			}
			src = s.options.Remote
		}

		var list []*dds.Stream
		if src != nil {
			list = src.Streams()
		}

		resp := &models.StreamsResponse{Body: models.StreamsData{
			Streams: make([]models.StreamData, 0, len(list)),
			Count:   len(list),
		}}
		for _, st := range list {
			resp.Body.Streams = append(resp.Body.Streams, streamData(st))
		}
		return resp, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "request-republish",
		Method:      http.MethodPost,
		Path:        "/api/streams/republish",
		Summary:     "Request republish",
		Description: "Ask every publisher on NATS to resend its profile lists",
		Tags:        []string{"streams"},
		Security:    withAuth(),
		Errors:      []int{401, 503},
	}, func(_ context.Context, input *models.RepublishRequest) (*models.RepublishResponse, error) {
		if s.options.Remote == nil {
			return nil, huma.Error503ServiceUnavailable("NATS bridge is not running")
		}
		reason := input.Body.Reason
		if reason == "" {
			reason = "api_request"
		}
		if err := s.options.Remote.RequestRepublish(input.Body.Stream, reason); err != nil {
			return nil, huma.Error503ServiceUnavailable("failed to send republish request", err)
		}
		return &models.RepublishResponse{Body: models.RepublishData{Status: "requested"}}, nil
	})
}

func streamData(st *dds.Stream) models.StreamData {
	profiles := st.Profiles()
	d := models.StreamData{
		Name:         st.Name(),
		Sensor:       st.SensorName(),
		Kind:         string(st.Kind()),
		DefaultIndex: st.DefaultProfileIndex(),
		Profiles:     make([]models.ProfileData, 0, len(profiles)),
	}
	for _, p := range profiles {
		d.Profiles = append(d.Profiles, profileData(p))
	}
	return d
}
