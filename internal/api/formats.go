package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/profilenode/internal/api/models"
	"github.com/smazurov/profilenode/internal/metrics"
	"github.com/smazurov/profilenode/pkg/dds"
	"github.com/smazurov/profilenode/pkg/rs2"
)

func (s *Server) registerFormatRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-formats",
		Method:      http.MethodGet,
		Path:        "/api/formats",
		Summary:     "List formats",
		Description: "Every wire format code and the driver format it translates to",
		Tags:        []string{"formats"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, _ *struct{}) (*models.FormatsResponse, error) {
		known := dds.KnownStreamFormats()
		resp := &models.FormatsResponse{Body: models.FormatsData{
			Formats: make([]models.FormatData, 0, len(known)),
			Count:   len(known),
		}}
		for _, m := range known {
			resp.Body.Formats = append(resp.Body.Formats, formatData(m.Format, m.RS2))
		}
		return resp, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-format",
		Method:      http.MethodGet,
		Path:        "/api/formats/{fourcc}",
		Summary:     "Translate format code",
		Description: "Translate a wire format code to the driver format",
		Tags:        []string{"formats"},
		Security:    withAuth(),
		Errors:      []int{401, 404, 422},
	}, func(_ context.Context, input *models.FormatRequest) (*models.FormatResponse, error) {
		f, err := dds.NewStreamFormat(input.FourCC)
		if err != nil {
			return nil, huma.Error422UnprocessableEntity(err.Error(), err)
		}
		dev, err := f.ToRS2()
		metrics.RecordTranslation(metrics.DirectionToRS2, err)
		if err != nil {
			return nil, huma.Error404NotFound(err.Error(), err)
		}
		return &models.FormatResponse{Body: formatData(f, dev)}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-rs2-format",
		Method:      http.MethodGet,
		Path:        "/api/rs2/{name}",
		Summary:     "Translate driver format",
		Description: "Translate a driver format name to its canonical wire code",
		Tags:        []string{"formats"},
		Security:    withAuth(),
		Errors:      []int{401, 404},
	}, func(_ context.Context, input *models.RS2Request) (*models.FormatResponse, error) {
		dev, err := rs2.ParseFormat(input.Name)
		if err != nil {
			return nil, huma.Error404NotFound(err.Error(), err)
		}
		f, err := dds.StreamFormatFromRS2(dev)
		metrics.RecordTranslation(metrics.DirectionFromRS2, err)
		if err != nil {
			return nil, huma.Error404NotFound(err.Error(), err)
		}
		return &models.FormatResponse{Body: formatData(f, dev)}, nil
	})
}

func formatData(f dds.StreamFormat, dev rs2.Format) models.FormatData {
	canonical, err := dds.StreamFormatFromRS2(dev)
	return models.FormatData{
		FourCC:      f.String(),
		Code:        f.FourCC(),
		V4L2:        f.V4L2(),
		RS2:         dev.String(),
		RS2Value:    int(dev),
		Provisional: dds.IsProvisional(dev),
		Canonical:   err == nil && canonical.Equal(f),
	}
}

// mapDDSError maps core errors to HTTP errors.
func mapDDSError(err error) error {
	switch {
	case errors.Is(err, dds.ErrDecode), errors.Is(err, dds.ErrFormat):
		return huma.Error422UnprocessableEntity(err.Error(), err)
	case errors.Is(err, dds.ErrBind):
		return huma.Error409Conflict(err.Error(), err)
	default:
		return huma.Error500InternalServerError("internal server error", err)
	}
}
