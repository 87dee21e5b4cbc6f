package spotify

import (
	"context"
	"fmt"
	"log"
	"os/exec"
	"runtime"

	"github.com/finchley-labs/autodj/internal/core/ports"
)

// AppLauncher starts the native Spotify application so a playback
// device can register with the account. Launch commands are tried in
// order; the first one that starts wins.
type AppLauncher struct {
	goos string
}

var _ ports.Launcher = (*AppLauncher)(nil)

// NewAppLauncher builds a launcher for the current platform.
func NewAppLauncher() *AppLauncher {
	return &AppLauncher{goos: runtime.GOOS}
}

func (l *AppLauncher) commands() [][]string {
	switch l.goos {
	case "darwin":
		return [][]string{{"open", "-a", "Spotify"}}
	case "windows":
		return [][]string{{"cmd", "/c", "start", "spotify:"}}
	default:
		return [][]string{
			{"spotify"},
			{"flatpak", "run", "com.spotify.Client"},
		}
	}
}

// Launch starts the player in the background. The process is not
// waited on; the caller polls the device list to learn when it has
// registered.
func (l *AppLauncher) Launch(_ context.Context) error {
	var lastErr error
	for _, argv := range l.commands() {
		// Deliberately not bound to ctx: the player must outlive the call.
		cmd := exec.Command(argv[0], argv[1:]...)
		if err := cmd.Start(); err != nil {
			lastErr = err
			continue
		}
		log.Printf("DEBUG spotify adapter: launched player via %q", argv[0])
		// Detach; the player outlives this process.
		go func() { _ = cmd.Wait() }()
		return nil
	}
	return fmt.Errorf("spotify adapter: could not launch player: %w", lastErr)
}
