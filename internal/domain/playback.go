package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// PlaybackState is the display's player snapshot.
type PlaybackState struct {
	CurrentVideo *QueueItem `json:"currentVideo"`
	IsPlaying    bool       `json:"isPlaying"`
	CurrentTime  float64    `json:"currentTime"`
	Duration     *float64   `json:"duration,omitempty"`
}

func DefaultPlayback() PlaybackState {
	return PlaybackState{}
}

func (p PlaybackState) Clone() PlaybackState {
	c := p
	if p.CurrentVideo != nil {
		v := *p.CurrentVideo
		c.CurrentVideo = &v
	}
	if p.Duration != nil {
		d := *p.Duration
		c.Duration = &d
	}
	return c
}

// Merge overwrites the fields present in patch and keeps the rest.
func (p PlaybackState) Merge(patch PlaybackPatch) PlaybackState {
	out := p.Clone()
	if patch.SetCurrentVideo {
		out.CurrentVideo = nil
		if patch.CurrentVideo != nil {
			v := *patch.CurrentVideo
			out.CurrentVideo = &v
		}
	}
	if patch.IsPlaying != nil {
		out.IsPlaying = *patch.IsPlaying
	}
	if patch.CurrentTime != nil {
		out.CurrentTime = *patch.CurrentTime
	}
	if patch.SetDuration {
		out.Duration = nil
		if patch.Duration != nil {
			d := *patch.Duration
			out.Duration = &d
		}
	}
	return out
}

// PlaybackPatch is a partial PlaybackState. currentVideo and duration
// may be sent as an explicit null, which clears them; the Set flags
// tell that apart from an absent key.
type PlaybackPatch struct {
	CurrentVideo    *QueueItem
	SetCurrentVideo bool
	IsPlaying       *bool
	CurrentTime     *float64
	Duration        *float64
	SetDuration     bool
}

var jsonNull = []byte("null")

func (p *PlaybackPatch) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("playback patch: %w", err)
	}
	*p = PlaybackPatch{}

	if v, ok := raw["currentVideo"]; ok {
		p.SetCurrentVideo = true
		if !bytes.Equal(bytes.TrimSpace(v), jsonNull) {
			var item QueueItem
			if err := json.Unmarshal(v, &item); err != nil {
				return fmt.Errorf("playback patch currentVideo: %w", err)
			}
			p.CurrentVideo = &item
		}
	}
	if v, ok := raw["isPlaying"]; ok && !bytes.Equal(bytes.TrimSpace(v), jsonNull) {
		var b bool
		if err := json.Unmarshal(v, &b); err != nil {
			return fmt.Errorf("playback patch isPlaying: %w", err)
		}
		p.IsPlaying = &b
	}
	if v, ok := raw["currentTime"]; ok && !bytes.Equal(bytes.TrimSpace(v), jsonNull) {
		var t float64
		if err := json.Unmarshal(v, &t); err != nil {
			return fmt.Errorf("playback patch currentTime: %w", err)
		}
		p.CurrentTime = &t
	}
	if v, ok := raw["duration"]; ok {
		p.SetDuration = true
		if !bytes.Equal(bytes.TrimSpace(v), jsonNull) {
			var d float64
			if err := json.Unmarshal(v, &d); err != nil {
				return fmt.Errorf("playback patch duration: %w", err)
			}
			p.Duration = &d
		}
	}
	return nil
}
