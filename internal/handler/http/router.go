package http

import (
	"log/slog"
	"net/http"

	"github.com/absensigeo/absensi-backend-go/internal/domain/user"
	"github.com/absensigeo/absensi-backend-go/internal/handler/http/middleware"
	"github.com/absensigeo/absensi-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// Handlers groups every resource handler mounted by NewRouter.
type Handlers struct {
	Auth       AuthHandler
	User       UserHandler
	Attendance AttendanceHandler
	Schedule   ScheduleHandler
	Evidence   EvidenceHandler
	Letter     LetterHandler
	Stream     StreamHandler
}

type RouterOptions struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	UploadsDir     string // served read-only under /uploads
}

func NewRouter(JWTService jwt.Service, h Handlers, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	if opts.Logger != nil {
		r.Use(httplog.RequestLogger(opts.Logger, &httplog.Options{
			Level:  slog.LevelInfo,
			Schema: httplog.SchemaECS,
		}))
	}

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	if opts.UploadsDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(opts.UploadsDir))))
	}

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Auth.Login)
			r.Post("/refresh", h.Auth.RefreshToken)
			r.Post("/logout", h.Auth.Logout)
		})

		// EventSource cannot send headers, so the stream authenticates by query token
		r.Get("/stream", h.Stream.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService))

			r.Put("/auth/password", h.Auth.ChangePassword)
			r.Get("/stream/token", h.Stream.Token)

			r.Route("/users", func(r chi.Router) {
				r.Get("/me", h.User.Me)
				r.Put("/me", h.User.UpdateMe)
				r.Put("/me/photo", h.User.UploadPhoto)
				r.Get("/{id}/photo", h.User.GetPhoto)
				r.With(middleware.RequirePermission(user.PermissionEvidenceViewAll)).Get("/{id}/evidence", h.Evidence.ListForUser)

				r.With(middleware.RequirePermission(user.PermissionUserList)).Get("/", h.User.List)
				r.With(middleware.RequirePermission(user.PermissionScheduleManage)).Get("/teachers", h.User.TeacherNames)
				r.With(middleware.RequirePermission(user.PermissionUserChangeRole)).Put("/{id}/role", h.User.ChangeRole)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionUserManage))
					r.Post("/", h.User.Register)
					r.Delete("/{id}", h.User.Delete)
				})
			})

			r.Route("/attendance", func(r chi.Router) {
				r.Get("/today", h.Attendance.Today)
				r.With(middleware.RequireAnyPermission(
					user.PermissionAttendanceViewOwn,
					user.PermissionAttendanceViewAll,
				)).Get("/{id}", h.Attendance.Get)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceCreate))
					r.Post("/check-in", h.Attendance.CheckIn)
					r.Post("/check-out", h.Attendance.CheckOut)
					r.Post("/leave", h.Attendance.RequestLeave)
					r.Post("/{id}/photo", h.Attendance.AttachPhoto)
				})

				r.With(middleware.RequirePermission(user.PermissionAttendanceViewOwn)).Get("/my", h.Attendance.GetMyAttendance)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceViewAll))
					r.Get("/", h.Attendance.List)
					r.Get("/summary", h.Attendance.Summary)
				})
				r.With(middleware.RequirePermission(user.PermissionAttendanceExport)).Get("/export", h.Attendance.Export)
			})

			r.Route("/schedules", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionScheduleView))
					r.Get("/", h.Schedule.List)
					r.Get("/{id}", h.Schedule.Get)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionScheduleManage))
					r.Post("/", h.Schedule.Create)
					r.Put("/{id}", h.Schedule.Update)
					r.Delete("/{id}", h.Schedule.Delete)
				})
			})

			r.Route("/evidence", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionEvidenceCreate))
				r.Post("/", h.Evidence.Upload)
				r.Get("/my", h.Evidence.My)
			})

			r.Route("/letter-templates", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionLetterView)).Get("/", h.Letter.List)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionLetterManage))
					r.Post("/", h.Letter.Upload)
					r.Delete("/{id}", h.Letter.Delete)
				})
			})
		})
	})
	return r
}
