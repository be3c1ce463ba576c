package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pribylovaa/go-library-catalog/internal/http/handlers"
	"github.com/pribylovaa/go-library-catalog/internal/http/middleware"
	"github.com/pribylovaa/go-library-catalog/internal/service"
)

// Options - параметры сборки HTTP-роутера.
type Options struct {
	Logger         *slog.Logger
	Timeout        time.Duration
	BasePath       string   // например, "/api"; если пустой - роуты регистрируются на корне.
	AllowedOrigins []string // CORS; пустой список - любой источник.
	// Registerer - куда регистрировать HTTP-метрики; nil - метрики не собираются.
	Registerer prometheus.Registerer
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(svc *service.Service, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),                 // безопасно ловим паники
		middleware.RequestID(),               // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger),      // кладём request-scoped логгер в контекст и логируем
		middleware.CORS(opts.AllowedOrigins), // preflight отвечаем до маршрутизации
		middleware.Metrics(opts.Registerer),  // счётчики и латентность по шаблону маршрута
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	h := handlers.New(svc)
	auth := middleware.AuthBearer(svc)

	if opts.BasePath != "" {
		sub := chi.NewRouter()
		registerRoutes(sub, h, auth)
		root.Mount(opts.BasePath, sub)
		return root
	}

	registerRoutes(root, h, auth)
	return root
}

// registerRoutes - единая точка регистрации всех REST-эндпойнтов.
func registerRoutes(r chi.Router, h *handlers.Handlers, auth middleware.Middleware) {
	// auth
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)

	r.Group(func(r chi.Router) {
		r.Use(auth)

		r.Get("/profile", h.Profile)
		r.Post("/logout", h.Logout)

		// books
		r.Post("/add_book", h.AddBook)
		r.Get("/books", h.ListBooks)
		r.Get("/book/{id}", h.GetBook)
		r.Put("/update_book/{id}", h.UpdateBook)
		r.Delete("/delete_book/{id}", h.DeleteBook)
	})
}
