package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/finchley-labs/autodj/internal/core/domain"
)

// Devices lists the playback devices currently registered with the
// user's account.
func (c *Client) Devices(ctx context.Context) ([]domain.Device, error) {
	var body devicesResponse
	if err := c.getJSON(ctx, c.baseURL+"/me/player/devices", &body); err != nil {
		return nil, fmt.Errorf("spotify adapter: list devices: %w", err)
	}

	devices := make([]domain.Device, 0, len(body.Devices))
	for _, d := range body.Devices {
		devices = append(devices, domain.Device{ID: d.ID, Name: d.Name, IsActive: d.IsActive})
	}
	return devices, nil
}

// StartPlayback replaces the queue on the device with the given URIs
// and starts playing.
func (c *Client) StartPlayback(ctx context.Context, deviceID string, uris []string) error {
	payload, err := json.Marshal(startPlaybackRequest{URIs: uris})
	if err != nil {
		return fmt.Errorf("spotify adapter: marshal play request: %w", err)
	}

	u := c.baseURL + "/me/player/play"
	if deviceID != "" {
		u += "?device_id=" + deviceID
	}
	return c.command(ctx, http.MethodPut, u, payload)
}

// CurrentlyPlaying returns the current track. ok is false when nothing
// is playing (the endpoint answers 204, or the item is absent).
func (c *Client) CurrentlyPlaying(ctx context.Context) (domain.Track, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/me/player/currently-playing", nil)
	if err != nil {
		return domain.Track{}, false, fmt.Errorf("spotify adapter: build request: %w", err)
	}

	resp, err := c.doRequestWithRetry(req)
	if err != nil {
		return domain.Track{}, false, fmt.Errorf("spotify adapter: currently playing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return domain.Track{}, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return domain.Track{}, false, fmt.Errorf("spotify adapter: currently playing status %d", resp.StatusCode)
	}

	var body currentlyPlayingResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.Track{}, false, fmt.Errorf("spotify adapter: decode currently playing: %w", err)
	}
	if body.Item == nil {
		return domain.Track{}, false, nil
	}
	return mapTrackToDomain(*body.Item), true, nil
}

// SkipNext advances playback to the next queued track.
func (c *Client) SkipNext(ctx context.Context) error {
	return c.command(ctx, http.MethodPost, c.baseURL+"/me/player/next", nil)
}

// SkipPrevious returns playback to the previous track.
func (c *Client) SkipPrevious(ctx context.Context) error {
	return c.command(ctx, http.MethodPost, c.baseURL+"/me/player/previous", nil)
}

// SaveTrack adds a track to the user's library.
func (c *Client) SaveTrack(ctx context.Context, trackID string) error {
	return c.command(ctx, http.MethodPut, c.baseURL+"/me/tracks?ids="+trackID, nil)
}

// RemoveSavedTrack removes a track from the user's library.
func (c *Client) RemoveSavedTrack(ctx context.Context, trackID string) error {
	return c.command(ctx, http.MethodDelete, c.baseURL+"/me/tracks?ids="+trackID, nil)
}

// command issues a body-less (or small-bodied) player mutation and
// accepts any 2xx answer.
func (c *Client) command(ctx context.Context, method, url string, payload []byte) error {
	var body *bytes.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("spotify adapter: build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.doRequestWithRetry(req)
	if err != nil {
		return fmt.Errorf("spotify adapter: %s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("spotify adapter: %s %s: status %d", method, url, resp.StatusCode)
	}
	return nil
}
