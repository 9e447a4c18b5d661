package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"
	"github.com/smazurov/profilenode/internal/events"
)

func (s *Server) registerSSERoutes() {
	sse.Register(s.api, huma.Operation{
		OperationID: "events-stream",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Server-Sent Events Stream",
		Description: "Real-time stream of published, received and rejected profile lists and catalog reloads",
		Tags:        []string{"events"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, map[string]any{
		"profiles-published": events.ProfilesPublishedEvent{},
		"profiles-received":  events.ProfilesReceivedEvent{},
		"profile-rejected":   events.ProfileRejectedEvent{},
		"catalog-reloaded":   events.CatalogReloadedEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		eventCh := make(chan any, 10)

		unsubscribers := []func(){
			events.SubscribeToChannel[events.ProfilesPublishedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.ProfilesReceivedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.ProfileRejectedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.CatalogReloadedEvent](s.eventBus, eventCh),
		}
		defer func() {
			for _, unsub := range unsubscribers {
				unsub()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case event := <-eventCh:
				if err := send.Data(event); err != nil {
					return
				}
			}
		}
	})
}
