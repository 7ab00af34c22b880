// internal/socket/broadcaster.go
package socket

import (
	"github.com/orgchart-app/orgchart-backend/internal/models"
)

// Broadcaster provides high-level methods for broadcasting org chart events
type Broadcaster struct {
	hub *Hub
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hub *Hub) *Broadcaster {
	return &Broadcaster{hub: hub}
}

// ============================================
// Position Broadcasting
// ============================================

func (b *Broadcaster) BroadcastPositionCreated(position models.Position) {
	b.hub.Broadcast(MessagePositionCreated, map[string]interface{}{
		"position": position,
	})
}

func (b *Broadcaster) BroadcastPositionUpdated(position models.Position) {
	b.hub.Broadcast(MessagePositionUpdated, map[string]interface{}{
		"position": position,
	})
}

func (b *Broadcaster) BroadcastPositionDeleted(positionID string) {
	b.hub.Broadcast(MessagePositionDeleted, map[string]interface{}{
		"positionId": positionID,
	})
}

// ============================================
// Employee Broadcasting
// ============================================

func (b *Broadcaster) BroadcastEmployeeCreated(positionID string, employee models.Employee) {
	b.hub.Broadcast(MessageEmployeeCreated, map[string]interface{}{
		"positionId": positionID,
		"employee":   employee,
	})
}

func (b *Broadcaster) BroadcastEmployeeUpdated(positionID string, employee models.Employee) {
	b.hub.Broadcast(MessageEmployeeUpdated, map[string]interface{}{
		"positionId": positionID,
		"employee":   employee,
	})
}

func (b *Broadcaster) BroadcastEmployeeDeleted(positionID, employeeID string) {
	b.hub.Broadcast(MessageEmployeeDeleted, map[string]interface{}{
		"positionId": positionID,
		"employeeId": employeeID,
	})
}
