// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/vidshare/internal/apperr"
	"github.com/tomtom215/vidshare/internal/auth"
	"github.com/tomtom215/vidshare/internal/authz"
	"github.com/tomtom215/vidshare/internal/middleware"
)

// Router owns the HTTP route table.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	auth          *auth.Middleware
	admin         *authz.Middleware
}

// NewRouter creates a router. With a nil admin middleware the admin routes
// fall back to checking the account role.
func NewRouter(handler *Handler, chiMw *ChiMiddleware, authMw *auth.Middleware, admin *authz.Middleware) *Router {
	if chiMw == nil {
		chiMw = NewChiMiddleware(DefaultChiMiddlewareConfig())
	}
	return &Router{
		handler:       handler,
		chiMiddleware: chiMw,
		auth:          authMw,
		admin:         admin,
	}
}

// SetupChi builds the chi route tree.
func (router *Router) SetupChi() http.Handler {
	h := router.handler
	rl := router.chiMiddleware
	authMw := router.auth

	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.SecurityHeaders)
	r.Use(rl.CORS()) // global so OPTIONS preflight is answered everywhere
	r.Use(middleware.PrometheusMetrics)
	r.Use(h.PerformanceMonitor().Middleware)
	r.Use(RecoverJSON)
	r.Use(chimiddleware.Compress(5, "application/json"))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).Error(http.StatusNotFound, ErrCodeNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).Error(http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed")
	})

	r.Handle("/metrics", promhttp.Handler())

	// ========================
	// Health Endpoints
	// ========================
	r.Route("/api/v1/healthcheck", func(r chi.Router) {
		r.Use(rl.RateLimitCustom(RateLimitHealth))
		r.Get("/", h.Health)
		r.Get("/readiness", h.HealthReady)
	})

	// ========================
	// Users and Sessions
	// ========================
	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(rl.RateLimit())
		r.Use(middleware.NoStore)

		r.Group(func(r chi.Router) {
			r.Use(rl.RateLimitCustom(RateLimitAuth))
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Post("/refresh-token", h.RefreshToken)
			r.Post("/reset-password/{token}", h.ResetPassword)
		})
		r.With(rl.RateLimitCustom(RateLimitEmail)).Post("/forgot-password", h.ForgotPassword)

		r.With(authMw.OptionalAuth).Get("/c/{username}", h.ChannelProfile)

		r.Group(func(r chi.Router) {
			r.Use(authMw.RequireAuth)
			r.Use(rl.writeMethods(RateLimitWrite))
			r.Post("/logout", h.Logout)
			r.Post("/change-password", h.ChangePassword)
			r.Get("/current-user", h.CurrentUser)
			r.Patch("/update-account", h.UpdateAccount)
			r.With(rl.RateLimitCustom(RateLimitUpload)).Patch("/avatar", h.UpdateAvatar)
			r.With(rl.RateLimitCustom(RateLimitUpload)).Patch("/cover-image", h.UpdateCoverImage)
		})
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(rl.RateLimitCustom(RateLimitAuth))
		r.Use(middleware.NoStore)
		r.Get("/oauth", h.OAuthStart)
		r.Get("/oauth/callback", h.OAuthCallback)
	})

	// ========================
	// Email Verification
	// ========================
	r.Route("/api/v1/email", func(r chi.Router) {
		r.Use(rl.RateLimitCustom(RateLimitEmail))
		r.Use(middleware.NoStore)
		r.Post("/send-verification", h.SendVerification)
		r.Post("/resend-verification", h.ResendVerification)
		r.Post("/verify", h.VerifyEmail)
		r.Get("/verify-link/{token}", h.VerifyLink)
	})

	// ========================
	// Videos
	// ========================
	r.Route("/api/v1/videos", func(r chi.Router) {
		r.Use(rl.RateLimit())

		r.Group(func(r chi.Router) {
			r.Use(authMw.OptionalAuth)
			r.Get("/", h.ListVideos)
			r.Get("/trending", h.TrendingVideos)
			r.Get("/channel/{channelId}/{order}", h.ChannelVideos)
			r.Get("/{videoId}", h.GetVideo)
			r.Post("/{videoId}/view", h.RecordView)
		})

		r.Group(func(r chi.Router) {
			r.Use(authMw.RequireAuth)
			r.Use(rl.writeMethods(RateLimitWrite))
			r.With(authMw.RequireVerified, rl.RateLimitCustom(RateLimitUpload)).Post("/", h.PublishVideo)
			r.Patch("/{videoId}", h.UpdateVideo)
			r.Delete("/{videoId}", h.DeleteVideo)
			r.Patch("/toggle/publish/{videoId}", h.TogglePublish)
		})
	})

	// ========================
	// Comments
	// ========================
	r.Route("/api/v1/comments/{kind}/{parentId}", func(r chi.Router) {
		r.Use(rl.RateLimit())
		r.Get("/", h.ListComments)

		r.Group(func(r chi.Router) {
			r.Use(authMw.RequireAuth)
			r.Use(rl.writeMethods(RateLimitWrite))
			r.With(authMw.RequireVerified).Post("/", h.AddComment)
			r.Patch("/{commentId}", h.UpdateComment)
			r.Delete("/{commentId}", h.DeleteComment)
		})
	})

	// ========================
	// Likes
	// ========================
	r.Route("/api/v1/likes", func(r chi.Router) {
		r.Use(rl.RateLimit())
		r.Use(authMw.RequireAuth)
		r.Use(rl.writeMethods(RateLimitWrite))

		r.Group(func(r chi.Router) {
			r.Use(authMw.RequireVerified)
			r.Post("/toggle/v/{videoId}", h.ToggleVideoLike)
			r.Post("/toggle/c/{commentId}", h.ToggleCommentLike)
			r.Post("/toggle/t/{tweetId}", h.ToggleTweetLike)
		})
		r.Get("/videos", h.LikedVideos)
	})

	// ========================
	// Playlists
	// ========================
	r.Route("/api/v1/playlists", func(r chi.Router) {
		r.Use(rl.RateLimit())
		r.Get("/user/{userId}", h.UserPlaylists)
		r.Get("/{playlistId}", h.GetPlaylist)

		r.Group(func(r chi.Router) {
			r.Use(authMw.RequireAuth)
			r.Use(rl.writeMethods(RateLimitWrite))
			r.Post("/", h.CreatePlaylist)
			r.Patch("/{playlistId}", h.UpdatePlaylist)
			r.Delete("/{playlistId}", h.DeletePlaylist)
			r.Patch("/add/{videoId}/{playlistId}", h.AddVideoToPlaylist)
			r.Patch("/remove/{videoId}/{playlistId}", h.RemoveVideoFromPlaylist)
		})
	})

	// ========================
	// Subscriptions
	// ========================
	r.Route("/api/v1/subscriptions", func(r chi.Router) {
		r.Use(rl.RateLimit())
		r.Get("/c/{channelId}", h.ChannelSubscribers)
		r.Get("/u/{subscriberId}", h.SubscribedChannels)
		r.With(authMw.RequireAuth, authMw.RequireVerified, rl.writeMethods(RateLimitWrite)).
			Post("/c/{channelId}", h.ToggleSubscription)
	})

	// ========================
	// Tweets
	// ========================
	r.Route("/api/v1/tweets", func(r chi.Router) {
		r.Use(rl.RateLimit())
		r.Get("/user/{userId}", h.UserTweets)

		r.Group(func(r chi.Router) {
			r.Use(authMw.RequireAuth)
			r.Use(rl.writeMethods(RateLimitWrite))
			r.With(authMw.RequireVerified).Post("/", h.CreateTweet)
			r.Patch("/{tweetId}", h.UpdateTweet)
			r.Delete("/{tweetId}", h.DeleteTweet)
		})
	})

	// ========================
	// Watch History
	// ========================
	r.Route("/api/v1/history", func(r chi.Router) {
		r.Use(rl.RateLimit())
		r.Use(authMw.RequireAuth)
		r.Use(middleware.NoStore)
		r.Use(rl.writeMethods(RateLimitWrite))
		r.Get("/", h.WatchHistory)
		r.Delete("/", h.ClearHistory)
		r.Get("/stats", h.HistoryStats)
		r.Post("/{videoId}", h.AddToHistory)
		r.Patch("/{videoId}/progress", h.UpdateWatchProgress)
		r.Delete("/{videoId}", h.RemoveFromHistory)
	})

	// ========================
	// Channel Dashboard
	// ========================
	r.Route("/api/v1/dashboard", func(r chi.Router) {
		r.Use(rl.RateLimit())
		r.Use(authMw.RequireAuth)
		r.Get("/stats", h.ChannelStats)
		r.Get("/videos", h.DashboardVideos)
	})

	// ========================
	// Administration
	// ========================
	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(rl.RateLimit())
		r.Use(authMw.RequireAuth)
		r.Use(router.requireAdmin)
		r.Use(middleware.NoStore)

		adminResource(r, "/users", h.AdminListUsers(), h.AdminDeleteUser())
		adminResource(r, "/videos", h.AdminListVideos(), h.AdminDeleteVideo())
		adminResource(r, "/comments", h.AdminListComments(), h.AdminDeleteComment())
		adminResource(r, "/playlists", h.AdminListPlaylists(), h.AdminDeletePlaylist())
		adminResource(r, "/likes", h.AdminListLikes(), h.AdminDeleteLike())
		adminResource(r, "/subscriptions", h.AdminListSubscriptions(), h.AdminDeleteSubscription())
		adminResource(r, "/tweets", h.AdminListTweets(), h.AdminDeleteTweet())
		adminResource(r, "/history", h.AdminListHistory(), h.AdminDeleteHistory())
		r.Get("/performance", h.AdminPerformance)
	})

	return r
}

func adminResource(r chi.Router, prefix string, list, del http.HandlerFunc) {
	r.Get(prefix, list)
	r.Delete(prefix+"/{id}", del)
}

// requireAdmin applies the policy enforcer when one is configured and
// falls back to the role stored on the account otherwise.
func (router *Router) requireAdmin(next http.Handler) http.Handler {
	if router.admin != nil {
		return router.admin.Authorize(next)
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := auth.UserFromContext(r.Context())
		if !ok || !u.IsAdmin() {
			router.handler.fail(w, r, apperr.Forbidden(apperr.CodeForbidden, "Admin access required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
