// Package bootstrap assembles repositories, providers, the renderer and HTTP handlers from config.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	googleauth "mathgen-backend/internal/auth"
	"mathgen-backend/internal/generatedsets"
	"mathgen-backend/internal/generation"
	"mathgen-backend/internal/janitor"
	"mathgen-backend/internal/llm"
	"mathgen-backend/internal/llm/anthropic"
	"mathgen-backend/internal/llm/gemini"
	"mathgen-backend/internal/problemsets"
	"mathgen-backend/internal/progress"
	"mathgen-backend/internal/render"
	"mathgen-backend/internal/shared/config"
	"mathgen-backend/internal/shared/server"
	"mathgen-backend/internal/shared/server/middleware"
	"mathgen-backend/internal/shared/storage/db"
	"mathgen-backend/internal/shared/storage/object"
	localstore "mathgen-backend/internal/shared/storage/object/local"
	s3store "mathgen-backend/internal/shared/storage/object/s3"
	"mathgen-backend/internal/users"
)

// App holds shared dependencies and the HTTP router.
type App struct {
	Config              config.Config
	Router              *gin.Engine
	DB                  *sql.DB
	Store               object.ObjectStore
	Providers           *llm.Registry
	Renderer            generation.DocumentRenderer
	Hub                 *progress.Hub
	Pipeline            *generation.Pipeline
	Janitor             *janitor.Janitor
	UsersService        *users.Service
	ProblemSetsService  *problemsets.Service
	GeneratedSetsRepo   generatedsets.Repo
	GeneratedSetService *generatedsets.Service
	GoogleAuth          *googleauth.GoogleService
}

// Option overrides a dependency Build would otherwise construct from config.
type Option func(*options)

type options struct {
	providers []llm.Provider
	renderer  generation.DocumentRenderer
	store     object.ObjectStore
}

// WithProvider registers p in place of the SDK-backed adapter of the same name.
func WithProvider(p llm.Provider) Option {
	return func(o *options) { o.providers = append(o.providers, p) }
}

// WithRenderer replaces the tectonic renderer.
func WithRenderer(r generation.DocumentRenderer) Option {
	return func(o *options) { o.renderer = r }
}

// WithStore replaces the configured object store.
func WithStore(s object.ObjectStore) Option {
	return func(o *options) { o.store = s }
}

// Build prepares dependencies and wires routes.
func Build(cfg config.Config, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store := o.store
	if store == nil {
		store, err = buildStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}

	renderer := o.renderer
	if renderer == nil {
		renderer, err = buildRenderer(cfg)
		if err != nil {
			return nil, err
		}
	}

	app := &App{
		Config:    cfg,
		DB:        sqlDB,
		Store:     store,
		Providers: NewProviders(cfg),
		Renderer:  renderer,
		Hub:       progress.NewHub(),
	}
	for _, p := range o.providers {
		app.Providers.Set(p)
	}

	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:              cfg,
		UserHandler:         users.NewHandler(app.UsersService),
		GoogleAuth:          app.GoogleAuth,
		ProblemSetHandler:   problemsets.NewHandler(app.ProblemSetsService, cfg.MaxUploadBytes),
		GeneratedSetHandler: generatedsets.NewHandler(app.GeneratedSetService),
		ProgressHandler:     progress.NewHandler(app.Hub, cfg.ProgressWait),
		RateLimits:          generateRateLimit(cfg.GenerateRatePerMin),
		Health:              app.health,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

// buildRenderer fails outside dev when tectonic is missing. In dev the server still
// starts and generation requests report the missing compiler.
func buildRenderer(cfg config.Config) (generation.DocumentRenderer, error) {
	r, err := render.New(cfg.TectonicPath)
	if err == nil {
		return r, nil
	}
	if isDevLike(cfg.Env) {
		log.Printf("bootstrap: %v; generation will fail until it is installed", err)
		return missingRenderer{err: err}, nil
	}
	return nil, err
}

type missingRenderer struct{ err error }

func (m missingRenderer) Render(context.Context, string, string) (string, error) {
	return "", m.err
}

// NewProviders registers a lazy factory for every backend with credentials.
func NewProviders(cfg config.Config) *llm.Registry {
	reg := llm.NewRegistry()
	if strings.TrimSpace(cfg.AnthropicAPIKey) != "" {
		reg.Register(llm.NameClaude, func(context.Context) (llm.Provider, error) {
			p, err := anthropic.New(anthropic.Config{APIKey: cfg.AnthropicAPIKey, Model: cfg.AnthropicModel})
			if err != nil {
				return nil, err
			}
			return p, nil
		})
	}
	if strings.TrimSpace(cfg.GoogleAPIKey) != "" {
		reg.Register(llm.NameGemini, func(ctx context.Context) (llm.Provider, error) {
			p, err := gemini.New(ctx, gemini.Config{APIKey: cfg.GoogleAPIKey, Model: cfg.GeminiModel})
			if err != nil {
				return nil, err
			}
			return p, nil
		})
	}
	return reg
}

func buildServices(app *App) {
	var userRepo users.Repo
	var problemSetRepo problemsets.Repo
	var generatedRepo generatedsets.Repo
	if app.DB != nil {
		userRepo = &users.PGRepo{DB: app.DB}
		problemSetRepo = &problemsets.PGRepo{DB: app.DB}
		generatedRepo = &generatedsets.PGRepo{DB: app.DB}
	} else {
		userRepo = users.NewMemoryRepo()
		problemSetRepo = problemsets.NewMemoryRepo()
		generatedRepo = generatedsets.NewMemoryRepo()
	}

	cfg := app.Config
	userSvc := users.NewService(userRepo)
	if isDevLike(cfg.Env) {
		userSvc.Cost = bcrypt.MinCost
	}

	var transcriber problemsets.Transcriber
	if name, err := llm.ParseName(cfg.TemplateProvider); err == nil {
		transcriber = &problemsets.ProviderTranscriber{Providers: app.Providers, Provider: name}
	} else {
		log.Printf("bootstrap: TEMPLATE_PROVIDER %q ignored; PDF uploads use text extraction", cfg.TemplateProvider)
	}

	problemSetSvc := &problemsets.Service{
		Repo:        problemSetRepo,
		Store:       app.Store,
		Counts:      generatedRepo,
		Transcriber: transcriber,
		UploadDir:   filepath.Join(cfg.UploadDir, "incoming"),
	}

	app.Pipeline = &generation.Pipeline{
		Providers: app.Providers,
		Renderer:  app.Renderer,
		Progress:  app.Hub,
		WorkRoot:  cfg.UploadDir,
	}
	app.Janitor = janitor.New(cfg.UploadDir, cfg.JanitorSchedule, cfg.JanitorMaxAge)

	app.UsersService = userSvc
	app.ProblemSetsService = problemSetSvc
	app.GeneratedSetsRepo = generatedRepo
	app.GeneratedSetService = &generatedsets.Service{
		Repo:        generatedRepo,
		ProblemSets: problemSetSvc,
		Pipeline:    app.Pipeline,
		Store:       app.Store,
		Progress:    app.Hub,
	}
	app.GoogleAuth = googleauth.NewGoogleService(
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.GoogleRedirectURL,
		cfg.UIRedirectURL,
		userSvc,
	)
}

func generateRateLimit(perMinute int) map[string]middleware.RateLimitRule {
	if perMinute <= 0 {
		return nil
	}
	return map[string]middleware.RateLimitRule{
		generatedsets.GeneratePath: {Rate: float64(perMinute) / 60, Burst: perMinute},
	}
}

func (a *App) health() gin.H {
	providers := make([]string, 0, 2)
	for _, n := range a.Providers.Configured() {
		providers = append(providers, string(n))
	}
	_, missing := a.Renderer.(missingRenderer)
	return gin.H{
		"providers": providers,
		"database":  a.DB != nil,
		"renderer":  !missing,
	}
}

// Close releases the database pool.
func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

// EnsureDirs creates the local directories the app writes into.
func (a *App) EnsureDirs() error {
	for _, dir := range []string{a.Config.UploadDir, a.Config.LocalStoreDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}
