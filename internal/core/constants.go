package core

// Upstream API defaults
const (
	DefaultUpstreamBaseURL = "https://api.openai.com/v1"
	DefaultFineTunesPath   = "fine_tunes"
	ModelsPath             = "models"
	FineTunedModelPrefix   = "ft:"
	ErrorPayloadKey        = "error"
	FieldID                = "id"
	FieldFineTunedModel    = "fine_tuned_model"
)

// Resource names used in logs and metrics labels
const (
	ResourceModels         = "models"
	ResourceFineTunes      = "fine_tunes"
	ResourceModelDetail    = "model_detail"
	ResourceFineTuneDetail = "fine_tune_detail"
)

// Server defaults
const (
	DefaultPort      = "5000"
	DefaultGinMode   = "release"
	DefaultStatsFile = "stats.json"
	CORSMaxAge       = "86400"
)

// Environment variable names
const (
	EnvAPIKey          = "OPENAI_API_KEY"
	EnvBaseURL         = "OPENAI_BASE_URL"
	EnvFineTunesPath   = "FINE_TUNES_PATH"
	EnvHTTPTimeout     = "HTTP_TIMEOUT"
	EnvPort            = "PORT"
	EnvGinMode         = "GIN_MODE"
	EnvDebugFile       = "DEBUG_FILE"
	EnvRedisURL        = "REDIS_URL"
	EnvStatsFile       = "STATS_FILE"
	EnvCORSAllowOrigin = "CORS_ALLOW_ORIGIN"
)

// HTTP headers and values
const (
	HeaderAuthorization = "Authorization"
	HeaderAccept        = "Accept"
	HeaderContentType   = "Content-Type"
	HeaderRequestID     = "X-Request-ID"
	AuthBearerPrefix    = "Bearer "
	ContentTypeJSON     = "application/json"
)

// Stats query windows in hours
const (
	StatsWindowDay   = 24
	StatsWindowWeek  = 24 * 7
	StatsWindowMonth = 24 * 30
)

// Time format constants
const (
	TimeFormatDateTime = "2006-01-02 15:04:05"
)
