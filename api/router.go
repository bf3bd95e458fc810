// Package api contains all endpoints available
package api

import (
	"airdropweb/files-api/db"
	"airdropweb/files-api/internal/lifecycle"
	"airdropweb/files-api/middleware"
	"airdropweb/files-api/storage"
	"fmt"
	"time"

	ginzap "github.com/gin-contrib/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

type API struct {
	DB     *gorm.DB
	Router *gin.Engine
	Store  storage.ObjectStore
	Files  *lifecycle.Coordinator
}

func NewRouter() (*API, error) {
	a := &API{}

	d, err := db.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}
	a.DB = d

	makeLogger()

	router := gin.New()
	a.Router = router

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:5173"},
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true
	a.Router.MaxMultipartMemory = 5 << 20

	store, err := storage.NewS3()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize S3 client, %w", err)
	}
	a.Store = store

	a.Files = lifecycle.New(d, store, time.Duration(viper.GetInt("share.url_ttl"))*time.Second)

	a.registerRoutes()

	return a, nil
}

// registerRoutes wires the HTTP surface onto the engine. Split out so
// tests can mount the same routes over a fake store.
func (a *API) registerRoutes() {
	jwt := middleware.NewJWTMiddleware()
	maxUploadSize := viper.GetInt64("upload.max_size")
	maxPhotoSize := viper.GetInt64("upload.photo_max_size")

	main := a.Router.Group("/api")
	{
		// HEAD /api/heartbeat		-> Used to check if the server is alive
		main.HEAD("/heartbeat", a.Heartbeat)

		// GET /api/share		-> Public read of one shared record
		main.GET("/share", middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
			RequestsPerSecond: 5,
			Burst:             10,
		}), a.ShareFetch)
	}

	files := main.Group("/files", jwt)
	{
		// GET /api/files		-> Lists a user's files with signed URLs
		files.GET("", a.FileList)

		// POST /api/files		-> Uploads one or more files
		files.POST("", middleware.BodySizeLimiter(maxUploadSize+(1<<20)), a.FileUpload)

		// POST /api/files/register	-> Attaches metadata to a pre-uploaded blob
		files.POST("/register", middleware.BodySizeLimiter(1<<20), a.FileRegister)

		// POST /api/files/upload-url	-> Hands out a presigned direct-upload URL
		files.POST("/upload-url", middleware.BodySizeLimiter(1<<20), a.FileUploadURL)

		// PATCH /api/files		-> Mutates favorite/tags/share token
		files.PATCH("", middleware.BodySizeLimiter(1<<20), a.FileUpdate)

		// DELETE /api/files?id=	-> Removes blob and record
		files.DELETE("", a.FileDelete)
	}

	// POST /api/photos			-> Image-only upload with a tighter ceiling
	main.POST("/photos", jwt, middleware.BodySizeLimiter(maxPhotoSize+(1<<20)), a.PhotoUpload)
}

func makeLogger() {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	if lvl, err := zapcore.ParseLevel(viper.GetString("app.log_level")); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	cfg.DisableStacktrace = true

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}
