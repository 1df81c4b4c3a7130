package handler

import (
	"context"
	"encoding/json"

	"quizform/internal/logger"
	"quizform/internal/service"
	"quizform/internal/ws"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// WSHandler owns the websocket side of the QR login relay. Each connected
// display gets a pairing id and a stream of INITIALIZATION / NEWTOKEN /
// LOGIN / ERROR messages.
type WSHandler struct {
	pairingService service.PairingService
	registry       ws.Registry
}

func NewWSHandler(pairingService service.PairingService, registry ws.Registry) *WSHandler {
	return &WSHandler{pairingService: pairingService, registry: registry}
}

// Upgrade gates the route to genuine websocket upgrade requests.
func (h *WSHandler) Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// QRLogin handles one display connection for its whole lifetime: register,
// send the first token, then serve rotation requests until the peer goes
// away. Redemption notifications arrive through the registry from the HTTP
// side, not from this loop.
func (h *WSHandler) QRLogin() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		appLogger := logger.Get()
		ctx := context.Background()

		remoteAddr := conn.RemoteAddr().String()
		pcID, token, err := h.pairingService.Connect(ctx, remoteAddr)
		if err != nil {
			appLogger.Error("Pairing connect failed",
				zap.String("remoteAddr", remoteAddr),
				zap.Error(err))
			_ = conn.Close()
			return
		}

		h.registry.Register(pcID, conn)
		defer h.registry.Remove(pcID)

		if err := h.registry.Send(pcID, ws.Message{
			Type:  ws.MessageTypeInitialization,
			Token: token,
			PcID:  pcID,
		}); err != nil {
			appLogger.Warn("Initialization send failed",
				zap.String("pcID", pcID),
				zap.Error(err))
			return
		}

		appLogger.Info("Display connected",
			zap.String("pcID", pcID),
			zap.String("remoteAddr", remoteAddr))

		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				appLogger.Debug("Display disconnected",
					zap.String("pcID", pcID),
					zap.Error(err))
				return
			}

			var msg ws.Message
			if err := json.Unmarshal(raw, &msg); err != nil {
				_ = h.registry.Send(pcID, ws.Message{
					Type:    ws.MessageTypeError,
					Message: "Invalid message",
				})
				continue
			}

			switch msg.Type {
			case ws.InboundTypeNewToken:
				newToken, err := h.pairingService.Rotate(ctx, pcID)
				if err != nil {
					_ = h.registry.Send(pcID, ws.Message{
						Type:    ws.MessageTypeError,
						Message: "Token issue failed",
					})
					continue
				}
				_ = h.registry.Send(pcID, ws.Message{
					Type:  ws.MessageTypeNewToken,
					Token: newToken,
				})
			default:
				_ = h.registry.Send(pcID, ws.Message{
					Type:    ws.MessageTypeError,
					Message: "Unknown message type",
				})
			}
		}
	})
}
