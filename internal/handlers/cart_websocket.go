package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"phoneshop_back_end/internal/cache"
	"phoneshop_back_end/internal/middleware"
	"phoneshop_back_end/internal/models"
)

const (
	wsPingInterval = 30 * time.Second
	wsWriteTimeout = 10 * time.Second
)

type cartEvent struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
	models.CartView
}

// NewUpgrader n'accepte que les origines listées ; une liste vide les
// accepte toutes.
func NewUpgrader(origins []string) websocket.Upgrader {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return len(allowed) == 0 || origin == "" || allowed[origin]
		},
	}
}

// WebSocket pousse le panier au client à chaque événement publié sur
// cart:<userID>.
func (h *CartHandler) WebSocket(upgrader websocket.Upgrader) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.UserID(c)
		ctx := c.Request.Context()

		pubsub := h.carts.Subscribe(ctx, userID)
		defer pubsub.Close()
		// Attend la confirmation d'abonnement avant d'annoncer la connexion.
		if _, err := pubsub.Receive(ctx); err != nil {
			fail(c, h.log, err)
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			h.log.Warn("❌ Erreur upgrade WebSocket", "user_id", userID, "error", err)
			return
		}
		defer conn.Close()

		// Les lectures détectent la fermeture côté client.
		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		send := func(ev cartEvent) bool {
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				h.log.Debug("❌ Erreur envoi WebSocket", "user_id", userID, "error", err)
				return false
			}
			return true
		}

		current, err := h.carts.Get(ctx, userID)
		if err != nil {
			h.log.Error("❌ Lecture panier impossible", "user_id", userID, "error", err)
			return
		}
		if !send(cartEvent{Type: "connected", Message: "Synchronisation panier activée", CartView: models.NewCartView(current)}) {
			return
		}

		ticker := time.NewTicker(wsPingInterval)
		defer ticker.Stop()
		ch := pubsub.Channel()

		for {
			select {
			case <-closed:
				return
			case <-ctx.Done():
				return
			case msg, open := <-ch:
				if !open {
					return
				}
				if msg.Payload != cache.CartEventUpdated && msg.Payload != cache.CartEventCleared {
					continue
				}
				current, err := h.carts.Get(ctx, userID)
				if err != nil {
					h.log.Error("❌ Lecture panier impossible", "user_id", userID, "error", err)
					return
				}
				if !send(cartEvent{Type: "cart_updated", CartView: models.NewCartView(current)}) {
					return
				}
			case <-ticker.C:
				deadline := time.Now().Add(wsWriteTimeout)
				if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
					return
				}
			}
		}
	}
}
