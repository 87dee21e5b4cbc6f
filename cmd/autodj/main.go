// Command autodj plays music from a natural-language request:
//
//	autodj "dark techno for late night coding"
//	autodj --continue
//	autodj --playlist 37i9dQZF1DX0XUsuxWHRQd "more like this"
//	autodj --set-key YOUR_GEMINI_API_KEY
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/finchley-labs/autodj/internal/adapters/embedding"
	"github.com/finchley-labs/autodj/internal/adapters/gemini"
	"github.com/finchley-labs/autodj/internal/adapters/localllm"
	"github.com/finchley-labs/autodj/internal/adapters/spotify"
	"github.com/finchley-labs/autodj/internal/adapters/sqlite"
	"github.com/finchley-labs/autodj/internal/config"
	"github.com/finchley-labs/autodj/internal/core/domain"
	"github.com/finchley-labs/autodj/internal/core/ports"
	"github.com/finchley-labs/autodj/internal/core/services"
	"github.com/finchley-labs/autodj/internal/prefs"
	"github.com/finchley-labs/autodj/internal/worker"
)

func main() {
	// Best effort: a missing .env just means the shell environment is
	// the only source of credentials.
	_ = godotenv.Load()

	var (
		continueFlag bool
		localOnly    bool
		watch        bool
		playlistID   string
		mixRatio     float64
		setKey       string
	)

	root := &cobra.Command{
		Use:           "autodj [request]",
		Short:         "AI DJ for Spotify: natural language in, a queue of tracks out",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()

			if setKey != "" {
				return runSetKey(cfg, setKey)
			}

			request := ""
			if len(args) == 1 {
				request = args[0]
			}
			if request == "" && !continueFlag {
				return cmd.Help()
			}

			return runPlay(cmd.Context(), cfg, playOptions{
				request:      request,
				continuation: continueFlag,
				localOnly:    localOnly,
				watch:        watch,
				playlistID:   playlistID,
				mixRatio:     mixRatio,
			})
		},
	}

	root.Flags().BoolVar(&continueFlag, "continue", false, "queue fresh tracks in the same vein as the previous request")
	root.Flags().BoolVar(&localOnly, "local", false, "skip the cloud AI tier and use only the local model")
	root.Flags().BoolVar(&watch, "watch", false, "stay running and learn from skips until interrupted")
	root.Flags().StringVar(&playlistID, "playlist", "", "mix discovered tracks with tracks from this playlist")
	root.Flags().Float64Var(&mixRatio, "ratio", services.DefaultMixRatio, "playlist share of a mixed queue (0..1)")
	root.Flags().StringVar(&setKey, "set-key", "", "save a Gemini API key and exit")

	if err := root.ExecuteContext(context.Background()); err != nil {
		cliError(err.Error())
		os.Exit(1)
	}
}

type playOptions struct {
	request      string
	continuation bool
	localOnly    bool
	watch        bool
	playlistID   string
	mixRatio     float64
}

func runPlay(ctx context.Context, cfg *config.Config, opts playOptions) error {
	if !cfg.HasSpotifyCredentials() {
		return errors.New("SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET are required.\n" +
			"    Get credentials at https://developer.spotify.com/dashboard and put them\n" +
			"    in a .env file or the environment, with redirect URI http://127.0.0.1:8888/callback")
	}
	if !cfg.IsConfigured() && !opts.localOnly && !cfg.HasLocalLLM() {
		cliWarn("No Gemini API key configured; falling back to keyword search.")
		cliWarn("Set one with:  autodj --set-key YOUR_KEY_HERE")
	}

	// Spotify client, prompting for login on first run.
	auth := spotify.NewAuthenticator(cfg.SpotifyClientID, cfg.SpotifyClientSecret, cfg.SpotifyRedirectURI, cfg.TokenCachePath())
	httpClient, err := auth.Client(ctx)
	if errors.Is(err, spotify.ErrLoginRequired) {
		cliInfo("First run: authorizing with Spotify (check your browser)...")
		if err := auth.Authorize(ctx, openBrowser); err != nil {
			return fmt.Errorf("spotify login failed: %w", err)
		}
		httpClient, err = auth.Client(ctx)
	}
	if err != nil {
		return fmt.Errorf("spotify auth: %w", err)
	}
	client := spotify.NewClient(httpClient, "")

	// Preference learning stack. The embedding cache is an optimization;
	// losing it only costs repeat embedding calls.
	var cache ports.EmbeddingCache
	if sqliteCache, err := sqlite.NewEmbeddingCache(cfg.EmbedCachePath()); err != nil {
		log.Printf("WARN main: embedding cache unavailable: %v", err)
	} else {
		cache = sqliteCache
		defer sqliteCache.Close()
	}
	embedder := embedding.NewClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModel, cache)

	store := prefs.NewStore(cfg.PreferencesPath(), embedder)
	store.SetEnabledCheck(func() bool { return cfg.LearningEnabled })

	tastePool := worker.NewPool(store.UpdateCentroid, 16)
	tastePool.Start(2)
	defer tastePool.Stop()
	store.SetAsyncUpdater(func(description string, positive bool) {
		tastePool.Submit(worker.Job{Description: description, Positive: positive})
	})

	// AI tiers.
	var cloud []ports.DirectiveModel
	if cfg.IsConfigured() && !opts.localOnly {
		geminiClient, err := gemini.NewClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			log.Printf("WARN main: gemini unavailable: %v", err)
		} else {
			cloud = gemini.Models(geminiClient, gemini.CandidateModels)
		}
	}
	var local ports.DirectiveModel
	if cfg.HasLocalLLM() {
		local = localllm.NewClient(cfg.LocalLLMBaseURL, cfg.LocalLLMAPIKey, cfg.LocalLLMModel)
	}

	planner := services.NewPlanner(cloud, local)
	builder := services.NewPoolBuilder(client, store, embedder)
	orch := services.NewOrchestrator(client, spotify.NewAppLauncher(), builder, store)

	detector := prefs.NewSkipDetector(client, store)
	orch.SetTrackStartedHook(detector.NotifyTrackStarted)

	result := dispatch(ctx, cfg, opts, planner, orch, client, store)
	if !result.Success {
		return errors.New(result.Message)
	}
	cliSuccess("Now playing: " + result.FirstTrack)
	cliInfo(fmt.Sprintf("%d tracks queued from %d searches", result.TrackCount, len(result.QueriesRun)))

	if opts.watch && cfg.LearningEnabled {
		watchForSkips(detector)
	}
	return nil
}

func dispatch(
	ctx context.Context,
	cfg *config.Config,
	opts playOptions,
	planner *services.Planner,
	orch *services.Orchestrator,
	catalog ports.Catalog,
	store *prefs.Store,
) domain.PlayResult {
	switch {
	case opts.continuation:
		if orch.LastRequest() == "" {
			return domain.Failure("Nothing playing yet. Run a normal request first.", nil)
		}
		cliInfo(fmt.Sprintf("Continuing: %q", orch.LastRequest()))
		d := planner.PlanContinuation(ctx, orch.LastRequest(), orch.LastQueries(), opts.localOnly)
		announcePlan(d)
		return orch.Play(ctx, orch.LastRequest(), d)

	case opts.playlistID != "":
		tracks, err := catalog.PlaylistTracks(ctx, opts.playlistID)
		if err != nil {
			return domain.Failure(fmt.Sprintf("Could not read playlist %s: %v", opts.playlistID, err), nil)
		}
		if len(tracks) == 0 {
			return domain.Failure("That playlist has no playable tracks.", nil)
		}
		cliInfo(fmt.Sprintf("Seeding from %d playlist tracks", len(tracks)))
		d := planner.PlanFromPlaylist(ctx, tracks, opts.request, opts.localOnly)
		announcePlan(d)
		return orch.PlayMixed(ctx, opts.request, tracks, d, opts.mixRatio)

	default:
		cliInfo(fmt.Sprintf("Request: %q", opts.request))
		var profile *prefs.Profile
		if cfg.LearningEnabled {
			profile = store.Load()
		}
		d := planner.PlanFresh(ctx, opts.request, profile, opts.localOnly)
		announcePlan(d)
		return orch.Play(ctx, opts.request, d)
	}
}

func announcePlan(d domain.Directives) {
	cliInfo("AI: " + d.Reasoning)
	cliInfo(fmt.Sprintf("Queries (%d): %v", len(d.Queries), d.Queries))
	cliInfo(fmt.Sprintf("Target queue: %d tracks", d.QueueSize))
}

// watchForSkips keeps the process alive polling playback so that
// early track changes feed the skip history. Ctrl-C exits.
func watchForSkips(detector *prefs.SkipDetector) {
	detector.Start()
	defer detector.Stop()

	cliInfo("Watching playback for skips (Ctrl-C to stop)...")
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
}

func runSetKey(cfg *config.Config, key string) error {
	if len(key) < 20 {
		return errors.New("That doesn't look like a valid key.")
	}
	if err := cfg.SaveGeminiKey(key); err != nil {
		return err
	}
	cliSuccess("Gemini API key saved.")
	cliInfo(`You can now play music:  autodj "your request"`)
	return nil
}

// openBrowser hands the authorization URL to the platform opener, or
// prints it when none works.
func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		cliInfo("Open this URL to authorize: " + url)
	}
	return nil
}
