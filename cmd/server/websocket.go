package main

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/tecu23/lobby-server/pkg/server"
	"github.com/tecu23/lobby-server/pkg/wire"
)

// handleWebSocket upgrades the HTTP connection and serves it with the same
// line protocol as the TCP listener.
func (app *application) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		app.Logger.Error("Failed to upgrade to WebSocket", zap.Error(err))
		return
	}

	conn := server.NewConnection(wire.NewWebsocketConn(ws), app.Config.SendTimeout, app.Logger)

	app.Logger.Info("WebSocket connection established",
		zap.String("remote_addr", r.RemoteAddr))

	go app.Handler.Handle(conn)
}
