package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"chatcord-backend/internal/hub"
	"chatcord-backend/internal/models"
	"chatcord-backend/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var sugar *zap.SugaredLogger
var db *sql.DB
var messageStore *store.Store
var liveHub *hub.Hub
var validate *validator.Validate

func Setup(isHttps bool, cfg *models.ConfigFile, _sugar *zap.SugaredLogger, _db *sql.DB, _messageStore *store.Store, _liveHub *hub.Hub) error {
	sugar = _sugar
	db = _db
	messageStore = _messageStore
	liveHub = _liveHub
	validate = validator.New(validator.WithRequiredStructEnabled())

	r := chi.NewRouter()

	if cfg.Cors {
		r.Use(AllowCors)
	}
	if cfg.PrintHttpRequests {
		r.Use(middleware.Logger)
	}

	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", func(r chi.Router) {
			r.Post("/login", Login)
			r.Post("/register", Register)
			r.With(UserVerifier).Get("/newSession", NewSession)
			r.With(UserVerifier).Get("/isLoggedIn", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
		})

		api.Route("/user", func(r chi.Router) {
			r.Use(UserVerifier)
			r.Get("/fetch", GetUserInfo)
			r.Post("/update", UpdateUserInfo)
		})

		api.Route("/server", func(r chi.Router) {
			r.Use(UserVerifier)
			r.Post("/create", CreateServer)
			r.With(SessionVerifier).Get("/fetch", GetServerList)
			r.Post("/delete", DeleteServer)
			r.Post("/rename", RenameServer)
			r.Post("/leave", LeaveServer)
		})

		api.Route("/channel", func(r chi.Router) {
			r.Use(UserVerifier)
			r.Post("/create", CreateChannel)
			r.With(SessionVerifier).Get("/fetch", GetChannelList)
			r.Patch("/{channelID}", RenameChannel)
			r.Delete("/{channelID}", DeleteChannel)
		})

		api.Route("/message", func(r chi.Router) {
			r.Use(UserVerifier)
			r.Post("/create", CreateMessage)
			r.With(SessionVerifier).Get("/fetch", GetMessageList)
			r.Patch("/{messageID}", UpdateMessage)
			r.Delete("/{messageID}", DeleteMessage)
		})

		api.Route("/dm", func(r chi.Router) {
			r.Use(UserVerifier)
			r.Post("/start", StartConversation)
			r.Post("/create", CreateDirectMessage)
			r.With(SessionVerifier).Get("/fetch", GetDirectMessageList)
			r.Patch("/{messageID}", UpdateDirectMessage)
			r.Delete("/{messageID}", DeleteDirectMessage)
		})

		api.Route("/members", func(r chi.Router) {
			r.Use(UserVerifier)
			r.With(SessionVerifier).Get("/fetch", GetMemberList)
		})

		api.Route("/attachment", func(r chi.Router) {
			r.Use(UserVerifier)
			r.Post("/upload", UploadAttachment)
		})

		api.Route("/email", func(r chi.Router) {
			r.Get("/confirm", ConfirmEmail)
		})
	})

	var websocketPath string

	if cfg.BehindNginx {
		websocketPath = "/ws/"
	} else {
		websocketPath = "/ws"
		r.Handle("/cdn/*", http.StripPrefix("/cdn/", http.FileServer(http.Dir("./public"))))
		r.Handle("/*", http.FileServer(http.Dir("./public/static")))
	}

	r.With(UserVerifier).Get(websocketPath, HandleWebSocket)

	address := fmt.Sprintf("%s:%s", cfg.Address, cfg.Port)

	if isHttps {
		return http.ListenAndServeTLS(address, cfg.TlsCert, cfg.TlsKey, r)
	}
	return http.ListenAndServe(address, r)
}
