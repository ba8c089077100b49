package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/estatepulse/crm-cli/internal/crm"
	"github.com/estatepulse/crm-cli/internal/importer"
	"github.com/estatepulse/crm-cli/internal/model"
	"github.com/estatepulse/crm-cli/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("serve"); err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		impOpts := []importer.Option{
			importer.WithPriceConfig(importer.PriceConfig{
				Narrow: importer.PriceRange{Min: cfg.Import.PriceNarrowMin, Max: cfg.Import.PriceNarrowMax},
				Wide:   importer.PriceRange{Min: cfg.Import.PriceWideMin, Max: cfg.Import.PriceWideMax},
			}),
		}
		if ai := newAssist(); ai != nil {
			impOpts = append(impOpts, importer.WithRemapper(ai))
		}
		api := &apiServer{
			store: st,
			svc:   newService(st),
			imp:   importer.New(impOpts...),
		}

		srv := &http.Server{
			Addr:              ":" + strconv.Itoa(cfg.Server.Port),
			Handler:           api.routes(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			zap.L().Info("http server listening", zap.Int("port", cfg.Server.Port))
			errCh <- srv.ListenAndServe()
		}()

		select {
		case <-ctx.Done():
			zap.L().Info("shutting down")
			shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutCtx)
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return eris.Wrap(err, "http server")
		}
	},
}

type apiServer struct {
	store store.Store
	svc   *crm.Service
	imp   *importer.Importer
}

func (a *apiServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-User-Email", "X-Agency-ID"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Post("/api/login", a.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(a.withScope)

		r.Get("/api/contacts", a.handleListContacts)
		r.Post("/api/contacts", a.handleSaveContact)
		r.Delete("/api/contacts", a.handleDeleteContacts)

		r.Get("/api/listings", a.handleListListings)
		r.Post("/api/listings", a.handleCreateListing)
		r.Post("/api/listings/{id}/advance", a.handleAdvanceListing)
		r.Get("/api/listings/{id}/score", a.handleScoreDeal)

		r.Get("/api/offers", a.handleListOffers)
		r.Post("/api/offers", a.handleCreateOffer)
		r.Post("/api/offers/{id}/status", a.handleOfferStatus)
		r.Get("/api/offers/{id}/summary", a.handleOfferSummary)

		r.Get("/api/tasks", a.handleListTasks)
		r.Post("/api/tasks", a.handleCreateTask)
		r.Post("/api/tasks/{id}/toggle", a.handleToggleTask)

		r.Get("/api/threads", a.handleListThreads)
		r.Post("/api/threads", a.handleOpenThread)
		r.Get("/api/threads/{id}/messages", a.handleListMessages)
		r.Post("/api/threads/{id}/messages", a.handlePostMessage)
		r.Get("/api/threads/{id}/draft", a.handleDraftReply)

		r.Get("/api/activity", a.handleActivity)
		r.Get("/api/notifications", a.handleNotifications)
		r.Post("/api/notifications/read", a.handleMarkRead)

		r.Post("/api/import/preview", a.handleImportPreview)
		r.Post("/api/import/commit", a.handleImportCommit)
	})
	return r
}

type scopeKey struct{}

// withScope resolves the caller from the X-User-Email / X-Agency-ID
// headers. Same trust model as the CLI's --as flag.
func (a *apiServer) withScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email := r.Header.Get("X-User-Email")
		if email == "" {
			writeErr(w, http.StatusUnauthorized, eris.New("X-User-Email header is required"))
			return
		}
		u, err := a.svc.Login(r.Context(), email, r.Header.Get("X-Agency-ID"))
		if err != nil {
			writeErr(w, http.StatusUnauthorized, err)
			return
		}
		scope := store.Scope{AgencyID: u.AgencyID, Role: u.Role, UserID: u.ID}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), scopeKey{}, scope)))
	})
}

func requestScope(r *http.Request) store.Scope {
	scope, _ := r.Context().Value(scopeKey{}).(store.Scope)
	return scope
}

func (a *apiServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		AgencyID string `json:"agency_id"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	u, err := a.svc.Login(r.Context(), req.Email, req.AgencyID)
	if err != nil {
		writeErr(w, http.StatusUnauthorized, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (a *apiServer) handleListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := a.store.ListContacts(r.Context(), requestScope(r))
	respondList(w, contacts, err)
}

func (a *apiServer) handleSaveContact(w http.ResponseWriter, r *http.Request) {
	var c model.Contact
	if !readJSON(w, r, &c) {
		return
	}
	scope := requestScope(r)

	// No id means a new record: route through the service so it gets
	// an id, a timestamp, and an audit entry like every other create.
	if c.ID == "" {
		created, err := a.svc.CreateContact(r.Context(), scope, c)
		if err != nil {
			writeErr(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, created)
		return
	}

	c.AgencyID = scope.AgencyID
	if c.AssignedTo == "" {
		c.AssignedTo = scope.UserID
	}
	if err := a.store.SaveContact(r.Context(), c); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (a *apiServer) handleDeleteContacts(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	if err := a.store.DeleteContacts(r.Context(), requestScope(r).AgencyID, req.IDs); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": len(req.IDs)})
}

func (a *apiServer) handleListListings(w http.ResponseWriter, r *http.Request) {
	listings, err := a.store.ListListings(r.Context(), requestScope(r))
	respondList(w, listings, err)
}

func (a *apiServer) handleCreateListing(w http.ResponseWriter, r *http.Request) {
	var l model.Listing
	if !readJSON(w, r, &l) {
		return
	}
	created, err := a.svc.CreateListing(r.Context(), requestScope(r), l)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

func (a *apiServer) handleAdvanceListing(w http.ResponseWriter, r *http.Request) {
	l, err := a.svc.AdvanceListing(r.Context(), requestScope(r), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (a *apiServer) handleScoreDeal(w http.ResponseWriter, r *http.Request) {
	score, err := a.svc.ScoreDeal(r.Context(), requestScope(r), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, statusFor(err), err)
		return
	}
	if score == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, score)
}

func (a *apiServer) handleListOffers(w http.ResponseWriter, r *http.Request) {
	offers, err := a.store.ListOffers(r.Context(), requestScope(r))
	respondList(w, offers, err)
}

func (a *apiServer) handleCreateOffer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		model.Offer
		Address string `json:"address"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	created, err := a.svc.CreateOffer(r.Context(), requestScope(r), req.Offer, req.Address)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

func (a *apiServer) handleOfferStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status model.OfferStatus `json:"status"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	o, err := a.svc.SetOfferStatus(r.Context(), requestScope(r), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeErr(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (a *apiServer) handleOfferSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := a.svc.SummarizeOffer(r.Context(), requestScope(r), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"summary": summary})
}

func (a *apiServer) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := a.store.ListTasks(r.Context(), requestScope(r))
	respondList(w, tasks, err)
}

func (a *apiServer) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var t model.Task
	if !readJSON(w, r, &t) {
		return
	}
	created, err := a.svc.CreateTask(r.Context(), requestScope(r), t)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

func (a *apiServer) handleToggleTask(w http.ResponseWriter, r *http.Request) {
	t, err := a.svc.ToggleTask(r.Context(), requestScope(r), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (a *apiServer) handleListThreads(w http.ResponseWriter, r *http.Request) {
	threads, err := a.store.ListThreads(r.Context(), requestScope(r).AgencyID)
	respondList(w, threads, err)
}

func (a *apiServer) handleOpenThread(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title     string           `json:"title"`
		Type      model.ThreadType `json:"type"`
		RelatedID string           `json:"related_id"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	t, err := a.svc.OpenThread(r.Context(), requestScope(r), req.Title, req.Type, req.RelatedID)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (a *apiServer) handleListMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := a.store.ListMessages(r.Context(), chi.URLParam(r, "id"))
	respondList(w, msgs, err)
}

func (a *apiServer) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	m, err := a.svc.PostMessage(r.Context(), requestScope(r), chi.URLParam(r, "id"), req.Text)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (a *apiServer) handleDraftReply(w http.ResponseWriter, r *http.Request) {
	reply, err := a.svc.DraftReply(r.Context(), requestScope(r), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"draft": reply})
}

func (a *apiServer) handleActivity(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 50
	}
	feed, err := a.svc.ActivityFeed(r.Context(), requestScope(r), limit)
	respondList(w, feed, err)
}

func (a *apiServer) handleNotifications(w http.ResponseWriter, r *http.Request) {
	scope := requestScope(r)
	notes, err := a.store.ListNotifications(r.Context(), scope.AgencyID, scope.UserID)
	respondList(w, notes, err)
}

func (a *apiServer) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	scope := requestScope(r)
	if err := a.store.MarkNotificationsRead(r.Context(), scope.AgencyID, scope.UserID); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *apiServer) handleImportPreview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Entity string `json:"entity"`
		Text   string `json:"text"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	preview, err := a.imp.ParseText(r.Context(), req.Text, importer.EntityType(req.Entity))
	if err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

func (a *apiServer) handleImportCommit(w http.ResponseWriter, r *http.Request) {
	var preview importer.Preview
	if !readJSON(w, r, &preview) {
		return
	}
	scope := requestScope(r)
	report := a.imp.Commit(r.Context(), a.store, importer.Context{
		AgencyID:    scope.AgencyID,
		ActorUserID: scope.UserID,
	}, &preview)
	writeJSON(w, http.StatusOK, report)
}

func statusFor(err error) int {
	if eris.Is(err, store.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

func respondList(w http.ResponseWriter, v any, err error) {
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("response encode failed", zap.Error(err))
	}
}

func writeErr(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": fmt.Sprint(err)})
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeErr(w, http.StatusBadRequest, eris.Wrap(err, "decode request body"))
		return false
	}
	return true
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
