package signal

import (
	"encoding/json"
	"errors"

	"github.com/dkeye/Karaoke/internal/app"
	"github.com/dkeye/Karaoke/internal/core"
	"github.com/dkeye/Karaoke/internal/domain"
)

type addToQueuePayload struct {
	Code string           `json:"code"`
	Item domain.QueueItem `json:"item"`
}

type removeFromQueuePayload struct {
	Code  string `json:"code"`
	Index int    `json:"index"`
}

type reorderQueuePayload struct {
	Code     string             `json:"code"`
	NewQueue []domain.QueueItem `json:"newQueue"`
}

type updatePlaybackPayload struct {
	Code  string               `json:"code"`
	State domain.PlaybackPatch `json:"state"`
}

type playerCommandPayload struct {
	Code    string          `json:"code"`
	Command string          `json:"command"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Unknown sessions are dropped without a reply; the orchestrator logs them.

func (ctl *SignalWSController) handleAddToQueue(id domain.ConnID, data json.RawMessage) {
	var p addToQueuePayload
	if !decodePayload(id, core.EventAddToQueue, data, &p) {
		return
	}
	_ = ctl.Orch.AddToQueue(id, p.Code, p.Item)
}

func (ctl *SignalWSController) handleRemoveFromQueue(id domain.ConnID, data json.RawMessage) {
	var p removeFromQueuePayload
	if !decodePayload(id, core.EventRemoveFromQueue, data, &p) {
		return
	}
	_ = ctl.Orch.RemoveFromQueue(id, p.Code, p.Index)
}

func (ctl *SignalWSController) handleReorderQueue(id domain.ConnID, c *WsSignalConn, data json.RawMessage) {
	var p reorderQueuePayload
	if !decodePayload(id, core.EventReorderQueue, data, &p) {
		return
	}
	if p.NewQueue == nil {
		p.NewQueue = []domain.QueueItem{}
	}
	err := ctl.Orch.ReorderQueue(id, p.Code, p.NewQueue)
	if errors.Is(err, app.ErrNotPermutation) {
		ctl.sendError(c, msgNotPermutation)
	}
}

func (ctl *SignalWSController) handleUpdatePlayback(id domain.ConnID, data json.RawMessage) {
	var p updatePlaybackPayload
	if !decodePayload(id, core.EventUpdatePlayback, data, &p) {
		return
	}
	_ = ctl.Orch.UpdatePlayback(id, p.Code, p.State)
}

func (ctl *SignalWSController) handlePlayerCommand(id domain.ConnID, data json.RawMessage) {
	var p playerCommandPayload
	if !decodePayload(id, core.EventPlayerCommand, data, &p) {
		return
	}
	_ = ctl.Orch.PlayerCommand(id, p.Code, p.Command, p.Data)
}
