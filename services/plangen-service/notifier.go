package main

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/MacroPath/macro-path-backend/services/plangen-service/models"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const planGeneratedAction = "plan_generated"

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketMessage is the envelope pushed to clients.
type WebSocketMessage struct {
	Action string      `json:"action"`
	Data   interface{} `json:"data"`
	Source string      `json:"source"`
}

type PlanGeneratedEvent struct {
	PlanID  string          `json:"plan_id"`
	Kind    models.PlanKind `json:"kind"`
	Date    string          `json:"date"`
	Version int64           `json:"version"`
}

// ConnectionManager keeps the open websocket connections of each user.
type ConnectionManager struct {
	connections map[string][]*websocket.Conn
	mu          sync.Mutex
	logger      *zap.Logger
}

func NewConnectionManager(logger *zap.Logger) *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[string][]*websocket.Conn),
		logger:      logger,
	}
}

func (cm *ConnectionManager) Add(userID string, conn *websocket.Conn) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.connections[userID] = append(cm.connections[userID], conn)
	cm.logger.Debug("WebSocket connection added",
		zap.String("user_id", userID),
		zap.Int("connections", len(cm.connections[userID])),
	)
}

func (cm *ConnectionManager) Remove(userID string, conn *websocket.Conn) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.removeLocked(userID, conn)
}

func (cm *ConnectionManager) removeLocked(userID string, conn *websocket.Conn) {
	conns := cm.connections[userID]
	for i, c := range conns {
		if c == conn {
			cm.connections[userID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(cm.connections[userID]) == 0 {
		delete(cm.connections, userID)
	}
}

// SendMessage writes message to every connection of the user, dropping the ones that fail.
func (cm *ConnectionManager) SendMessage(userID string, message WebSocketMessage) {
	jsonData, err := json.Marshal(message)
	if err != nil {
		cm.logger.Error("Failed to marshal WebSocket message", zap.String("user_id", userID), zap.Error(err))
		return
	}

	cm.mu.Lock()
	defer cm.mu.Unlock()

	conns := append([]*websocket.Conn(nil), cm.connections[userID]...)
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, jsonData); err != nil {
			cm.logger.Warn("Failed to send WebSocket message", zap.String("user_id", userID), zap.Error(err))
			conn.Close()
			cm.removeLocked(userID, conn)
		}
	}
}

// PlanSaved notifies the plan owner that a new snapshot is available.
func (cm *ConnectionManager) PlanSaved(plan *models.StoredPlan) {
	cm.SendMessage(plan.UserID, WebSocketMessage{
		Action: planGeneratedAction,
		Data: PlanGeneratedEvent{
			PlanID:  plan.ID,
			Kind:    plan.Kind,
			Date:    plan.Date,
			Version: plan.Version,
		},
		Source: "plangen-service",
	})
}
