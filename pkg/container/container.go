package container

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"karwan-auliya/internal/config"
	infraCache "karwan-auliya/internal/infrastructure/cache"
	"karwan-auliya/internal/infrastructure/database"
	"karwan-auliya/internal/infrastructure/queue"
	"karwan-auliya/internal/infrastructure/storage"
	"karwan-auliya/internal/offline"
	"karwan-auliya/internal/realtime"
	"karwan-auliya/internal/transfer"
	"karwan-auliya/pkg/cache"
	"karwan-auliya/pkg/jwt"
	"karwan-auliya/pkg/query"

	bookHandler "karwan-auliya/internal/domains/book/handler"
	bookRepo "karwan-auliya/internal/domains/book/repository"
	bookService "karwan-auliya/internal/domains/book/service"
	categoryHandler "karwan-auliya/internal/domains/category/handler"
	categoryRepo "karwan-auliya/internal/domains/category/repository"
	categoryService "karwan-auliya/internal/domains/category/service"
	libraryHandler "karwan-auliya/internal/domains/library/handler"
	libraryRepo "karwan-auliya/internal/domains/library/repository"
	libraryService "karwan-auliya/internal/domains/library/service"
	profileHandler "karwan-auliya/internal/domains/profile/handler"
	profileRepo "karwan-auliya/internal/domains/profile/repository"
	profileService "karwan-auliya/internal/domains/profile/service"
	reviewHandler "karwan-auliya/internal/domains/review/handler"
	reviewRepo "karwan-auliya/internal/domains/review/repository"
	reviewService "karwan-auliya/internal/domains/review/service"
	searchHandler "karwan-auliya/internal/domains/search/handler"
	searchRepo "karwan-auliya/internal/domains/search/repository"
	searchService "karwan-auliya/internal/domains/search/service"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container is the root of the dependency graph shared by the API and the
// worker binaries.
type Container struct {
	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================
	Config     *config.Config
	DB         *database.PostgresDB
	Redis      *infraCache.RedisClient
	Queries    *query.Client
	Storage    *storage.MinIOStorage
	Files      *transfer.Helper
	Uploads    *transfer.Tracker
	Publisher  *realtime.Publisher
	Hub        *realtime.Hub
	JWTManager *jwt.Manager
	Tasks      *queue.TaskClient

	// Shell is nil when no origin is configured.
	Shell *offline.Worker

	// ========================================
	// REPOSITORY LAYER
	// ========================================
	CategoryRepo categoryRepo.Repository
	BookRepo     bookRepo.Repository
	ReviewRepo   reviewRepo.Repository
	LibraryRepo  libraryRepo.Repository
	SearchRepo   searchRepo.Repository
	ProfileRepo  profileRepo.Repository

	// ========================================
	// SERVICE LAYER
	// ========================================
	CategoryService *categoryService.Service
	BookService     *bookService.Service
	ReviewService   *reviewService.Service
	LibraryService  *libraryService.Service
	SearchService   *searchService.Service
	ProfileService  *profileService.Service

	// ========================================
	// HANDLER LAYER
	// ========================================
	CategoryHandler *categoryHandler.CategoryHandler
	BookHandler     *bookHandler.BookHandler
	UploadHandler   *bookHandler.UploadHandler
	ReviewHandler   *reviewHandler.ReviewHandler
	LibraryHandler  *libraryHandler.LibraryHandler
	SearchHandler   *searchHandler.SearchHandler
	ProfileHandler  *profileHandler.ProfileHandler
	OfflineHandler  *offline.Handler
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

// NewContainer builds the dependency graph in order: config, infrastructure,
// repositories, services, handlers.
func NewContainer() (*Container, error) {
	log.Info().Msg("🔧 Initializing DI Container...")

	c := &Container{}

	// ========================================
	// STEP 1: LOAD CONFIGURATION
	// ========================================
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Info().Str("environment", cfg.App.Environment).Msg("✅ Config loaded")

	// ========================================
	// STEP 2: INITIALIZE DATABASE
	// ========================================
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(ctx); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}
	c.DB = db
	log.Info().Msg("✅ Database connected")

	// ========================================
	// STEP 3: INITIALIZE REDIS, CACHE AND STORAGE
	// ========================================
	if err := c.initInfrastructure(ctx); err != nil {
		return nil, err
	}

	// ========================================
	// STEP 4: REPOSITORIES
	// ========================================
	c.initRepositories()
	log.Info().Msg("✅ Repositories initialized")

	// ========================================
	// STEP 5: SERVICES
	// ========================================
	c.initServices()
	log.Info().Msg("✅ Services initialized")

	// ========================================
	// STEP 6: HANDLERS
	// ========================================
	if err := c.initHandlers(); err != nil {
		return nil, fmt.Errorf("failed to init handlers: %w", err)
	}
	log.Info().Msg("✅ Handlers initialized")

	log.Info().Msg("🎉 DI Container initialized successfully")
	return c, nil
}

// ========================================
// PRIVATE INITIALIZATION METHODS
// ========================================

func (c *Container) initInfrastructure(ctx context.Context) error {
	cfg := c.Config

	c.Redis = infraCache.NewRedisClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := c.Redis.Connect(ctx); err != nil {
		// realtime and the task queue both live on Redis
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	var store cache.Cache
	switch cfg.Query.Backend {
	case "memory":
		store = cache.NewMemoryCache()
	default:
		store = infraCache.NewRedisCache(c.Redis)
	}
	c.Queries = query.NewClient(store, cfg.Query.TTL)
	log.Info().Str("backend", cfg.Query.Backend).Dur("ttl", cfg.Query.TTL).Msg("✅ Query cache ready")

	c.Publisher = realtime.NewPublisher(c.Redis.Client)
	c.Hub = realtime.NewHub(c.Redis.Client, c.Queries)

	minio, err := storage.NewMinIOStorage(ctx, cfg.MinIO)
	if err != nil {
		return fmt.Errorf("failed to init object storage: %w", err)
	}
	c.Storage = minio
	c.Files = transfer.NewHelper(minio, transfer.Config{
		CoverBucket:  cfg.MinIO.CoverBucket,
		FileBucket:   cfg.MinIO.FileBucket,
		SignedURLTTL: cfg.MinIO.SignedURLTTL,
	})
	c.Uploads = transfer.NewTracker()
	log.Info().Str("endpoint", cfg.MinIO.Endpoint).Msg("✅ Object storage ready")

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer)
	c.Tasks = queue.NewTaskClient(c.RedisOpt())

	if cfg.Shell.OriginURL != "" {
		shell, err := offline.NewWorker(offline.Config{
			Origin:      cfg.Shell.OriginURL,
			Version:     cfg.Shell.CacheVersion,
			GatewayHost: cfg.Shell.GatewayHost,
			Assets:      cfg.Shell.Assets,
		}, offline.NewMemoryStorage())
		if err != nil {
			return fmt.Errorf("failed to init offline shell: %w", err)
		}
		c.Shell = shell
	}

	return nil
}

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.CategoryRepo = categoryRepo.NewPostgresRepository(pool)
	c.BookRepo = bookRepo.NewPostgresRepository(pool)
	c.ReviewRepo = reviewRepo.NewPostgresRepository(pool)
	c.LibraryRepo = libraryRepo.NewPostgresRepository(pool)
	c.SearchRepo = searchRepo.NewPostgresRepository(pool)
	c.ProfileRepo = profileRepo.NewPostgresRepository(pool)
}

func (c *Container) initServices() {
	c.CategoryService = categoryService.NewService(c.CategoryRepo, c.Queries, c.Publisher)
	c.BookService = bookService.NewService(c.BookRepo, c.Queries, c.Publisher, c.Tasks, c.Files)
	c.ReviewService = reviewService.NewService(c.ReviewRepo, c.Queries, c.Publisher)
	c.LibraryService = libraryService.NewService(c.LibraryRepo, c.BookRepo, c.Files, c.Queries, c.Publisher)
	c.SearchService = searchService.NewService(c.SearchRepo, c.Queries)
	c.ProfileService = profileService.NewService(c.ProfileRepo, c.Queries, c.Publisher)
}

func (c *Container) initHandlers() error {
	c.CategoryHandler = categoryHandler.NewCategoryHandler(c.CategoryService)
	c.BookHandler = bookHandler.NewBookHandler(c.BookService)
	c.UploadHandler = bookHandler.NewUploadHandler(c.BookService, c.Files, c.Uploads)
	c.ReviewHandler = reviewHandler.NewReviewHandler(c.ReviewService)
	c.LibraryHandler = libraryHandler.NewLibraryHandler(c.LibraryService)
	c.SearchHandler = searchHandler.NewSearchHandler(c.SearchService)
	c.ProfileHandler = profileHandler.NewProfileHandler(c.ProfileService)
	c.OfflineHandler = offline.NewHandler(offline.NewPromptPolicy(offline.NewRedisPromptStore(c.Redis.Client)))
	return nil
}

// ========================================
// HELPER METHODS
// ========================================

// RedisOpt is the asynq view of the Redis settings.
func (c *Container) RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     c.Config.Redis.Host,
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	}
}

// Cleanup releases every resource in reverse order of creation.
func (c *Container) Cleanup() {
	log.Info().Msg("🧹 Cleaning up container resources...")

	if c.Shell != nil {
		c.Shell.Terminate()
	}

	if c.Tasks != nil {
		if err := c.Tasks.Close(); err != nil {
			log.Warn().Err(err).Msg("⚠️  Failed to close task client")
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Warn().Err(err).Msg("⚠️  Failed to close Redis")
		} else {
			log.Info().Msg("✅ Redis connections closed")
		}
	}

	if c.DB != nil {
		c.DB.Close()
		log.Info().Msg("✅ Database connections closed")
	}

	log.Info().Msg("✅ Container cleanup completed")
}
