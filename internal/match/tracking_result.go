package match

import (
	"encoding/json"
	"fmt"
	"os"
)

// TrackingResult is the JSON contract produced by the upstream ml-inference
// service: accumulated player tracks, the ball detection series and run
// metadata.
type TrackingResult struct {
	Tracks   []TrackData     `json:"tracks"`
	Ball     []BallDetection `json:"ball"`
	Metadata TrackMetadata   `json:"metadata"`
}

// TrackData is one track's serialised frame history.
type TrackData struct {
	TrackID string       `json:"trackId"`
	Frames  []TrackFrame `json:"frames"`
}

// TrackMetadata carries the upstream run parameters needed downstream.
type TrackMetadata struct {
	VideoPath       string  `json:"videoPath,omitempty"`
	TotalFrames     int     `json:"totalFrames"`
	ProcessedFrames int     `json:"processedFrames"`
	FPS             float64 `json:"fps"`
	Width           int     `json:"width,omitempty"`
	Height          int     `json:"height,omitempty"`
}

// LoadTrackingResult reads and validates a tracking-result JSON file.
func LoadTrackingResult(path string) (*TrackingResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tracking result: %w", err)
	}
	var result TrackingResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parse tracking result %s: %w", path, err)
	}
	if result.Metadata.FPS <= 0 {
		result.Metadata.FPS = 30
	}
	return &result, nil
}

// TrackMap converts the serialised track list into frame-keyed tracks.
func (r *TrackingResult) TrackMap() map[string]*Track {
	tracks := make(map[string]*Track, len(r.Tracks))
	for _, td := range r.Tracks {
		tr := NewTrack(td.TrackID)
		for i := range td.Frames {
			tf := td.Frames[i]
			tr.Frames[tf.FrameNumber] = &tf
		}
		tracks[td.TrackID] = tr
	}
	return tracks
}
