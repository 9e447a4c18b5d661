package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/profilenode/internal/api/models"
	"github.com/smazurov/profilenode/internal/metrics"
	"github.com/smazurov/profilenode/pkg/dds"
)

func (s *Server) registerProfileRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "decode-profile",
		Method:      http.MethodPost,
		Path:        "/api/profiles/decode",
		Summary:     "Decode profile",
		Description: "Decode a positional wire array into a stream profile for the given stream kind",
		Tags:        []string{"profiles"},
		Security:    withAuth(),
		Errors:      []int{400, 401, 422},
	}, func(_ context.Context, input *models.DecodeRequest) (*models.DecodeResponse, error) {
		kind, err := dds.ParseStreamKind(input.Body.Kind)
		if err != nil {
			return nil, huma.Error400BadRequest(err.Error(), err)
		}

		p, err := dds.ParseProfile(kind, dds.Message(input.Body.Profile))
		metrics.RecordDecode(kind, err)
		if err != nil {
			return nil, mapDDSError(err)
		}
		return &models.DecodeResponse{Body: profileData(p)}, nil
	})
}

func profileData(p dds.Profile) models.ProfileData {
	d := models.ProfileData{
		Description: p.String(),
		Variant:     "base",
		Format:      p.Format().String(),
		Frequency:   p.Frequency(),
		Encoded:     []any(p.Encode()),
	}
	switch v := p.(type) {
	case *dds.VideoStreamProfile:
		d.Variant = "video"
		d.Width = v.Width()
		d.Height = v.Height()
	case *dds.MotionStreamProfile:
		d.Variant = "motion"
	}
	if dev, err := p.Format().ToRS2(); err == nil {
		d.RS2 = dev.String()
	}
	return d
}
