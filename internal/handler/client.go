package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"sortrash/internal/dto"
	"sortrash/internal/logger"
	"sortrash/internal/service"
)

// Upgrader upgrades HTTP connections to WebSocket; CheckOrigin allows all origins.
var Upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ViewWebsocketHandler registers dashboard viewers in the hub so they
// receive journal events.
func ViewWebsocketHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		connection, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("WebSocket upgrade error: %v", err)
			return
		}

		manager.GetWebsocketService().Register(connection)
		defer manager.GetWebsocketService().Unregister(connection)

		for {
			if _, _, err := connection.ReadMessage(); err != nil {
				logDisconnect(logger, "Viewer", err)
				break
			}
		}
	}
}

// LiveWebsocketHandler runs a live tracking session: every message is a
// dto.LiveFrame and is answered with a dto.LiveResult.
func LiveWebsocketHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		connection, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("WebSocket upgrade error: %v", err)
			return
		}
		defer connection.Close()

		session := manager.NewLiveSession()
		defer manager.EndLiveSession(session)

		for {
			var frame dto.LiveFrame
			if err := connection.ReadJSON(&frame); err != nil {
				logDisconnect(logger, "Live client", err)
				return
			}

			result := manager.HandleLiveFrame(r.Context(), session, frame)
			if err := connection.WriteJSON(result); err != nil {
				logger.Error("Failed to send live result: %v", err)
				return
			}
		}
	}
}

func logDisconnect(logger *logger.Logger, who string, err error) {
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		logger.Info("%s disconnected normally", who)
	} else {
		logger.Error("%s disconnected with error: %v", who, err)
	}
}
