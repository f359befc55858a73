package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/dineflow/kds"
	"github.com/yeremiapane/dineflow/utils"
)

type KDSController struct {
	Hub         *kds.Hub
	ReplayLimit int
	upgrader    websocket.Upgrader
}

// NewKDSController accepts WebSocket handshakes from the listed origins ("*"
// for any). Requests without an Origin header, such as native display apps,
// are always accepted.
func NewKDSController(hub *kds.Hub, replayLimit int, origins []string) *KDSController {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	_, allowAll := allowed["*"]

	return &KDSController{
		Hub:         hub,
		ReplayLimit: replayLimit,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || allowAll {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
	}
}

func parseSince(c *gin.Context) (*uint64, error) {
	raw := c.Query("since")
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, errors.New("since must be a non-negative sequence number")
	}
	return &v, nil
}

// Stream upgrades to a WebSocket and streams kitchen events until the display
// disconnects.
func (kc *KDSController) Stream(c *gin.Context) {
	since, err := parseSince(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	p, _ := utils.CurrentPrincipal(c)

	conn, err := kc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.WithError(err).Error("websocket upgrade failed")
		return
	}
	kc.Hub.ServeClient(c.Request.Context(), conn, p.Role, since)
}

// Events returns logged events after ?since= for clients that poll.
func (kc *KDSController) Events(c *gin.Context) {
	since, err := parseSince(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	var after uint64
	if since != nil {
		after = *since
	}

	events := []kds.Message{}
	if log := kc.Hub.Log(); log != nil {
		if events, err = log.Since(after, kc.ReplayLimit); err != nil {
			utils.RespondAppError(c, err)
			return
		}
	}
	utils.RespondJSON(c, http.StatusOK, "Kitchen events", events)
}
