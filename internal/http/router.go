package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"watch-catalog/internal/repository"
)

const providerSessionName = "leecois-provider"

// RouterConfig agrupa lo que el router necesita de la configuración.
type RouterConfig struct {
	AllowedOrigins []string
	SessionSecret  string
	SecureCookies  bool
}

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	cfg RouterConfig,
	memberRepo repository.MemberRepository,
	authH *AuthHandler,
	brandH *BrandHandler,
	watchH *WatchHandler,
	memberH *MemberHandler,
) *gin.Engine {
	r := gin.New()

	r.Use(zapLoggerMiddleware(logger), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowOrigins = []string{"http://localhost:5173"}
	}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	corsConfig.ExposeHeaders = []string{"X-Total-Count"}
	r.Use(cors.New(corsConfig))

	// Sesión del proveedor OAuth; el token propio viaja en LEECOIS-AUTH.
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   federatedCookieMaxAge,
		HttpOnly: true,
		Secure:   cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(providerSessionName, store))

	authenticate := Authenticate(logger, memberRepo)
	requireAdmin := RequireAdmin(logger, memberRepo)

	auth := r.Group("/auth")
	auth.POST("/register", authH.Register)
	auth.POST("/login", authH.Login)
	auth.POST("/reset-password", authenticate, RequireAccountOwner(logger, memberRepo), authH.ResetPassword)
	auth.POST("/change-password/:id", authenticate, RequireOwner("id"), authH.ChangePassword)
	auth.GET("/google", authH.GoogleLogin)
	auth.GET("/google/callback", authH.GoogleCallback)
	r.GET("/logout", authH.Logout)

	members := r.Group("/members", authenticate)
	members.GET("", requireAdmin, memberH.ListMembers)
	members.GET("/:id", RequireOwner("id"), memberH.GetMember)
	members.PATCH("/:id", RequireOwner("id"), memberH.UpdateMember)
	members.DELETE("/:id", requireAdmin, memberH.DeleteMember)

	watches := r.Group("/watches")
	watches.GET("", watchH.ListWatches)
	watches.GET("/:id", watchH.GetWatch)
	watches.POST("", authenticate, watchH.CreateWatch)
	watches.PATCH("/:id", authenticate, watchH.UpdateWatch)
	watches.DELETE("/:id", authenticate, watchH.DeleteWatch)
	watches.POST("/:id/comments", authenticate, watchH.AddComment)
	watches.PATCH("/:id/comments/:commentId", authenticate, watchH.UpdateComment)
	watches.DELETE("/:id/comments/:commentId", authenticate, watchH.DeleteComment)

	brands := r.Group("/brands")
	brands.GET("", brandH.ListBrands)
	brands.GET("/:id", authenticate, brandH.GetBrand)
	brands.GET("/:id/watches", brandH.ListBrandWatches)
	brands.POST("", authenticate, requireAdmin, brandH.CreateBrand)
	brands.PATCH("/:id", authenticate, requireAdmin, brandH.UpdateBrand)
	brands.DELETE("/:id", authenticate, requireAdmin, brandH.DeleteBrand)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
