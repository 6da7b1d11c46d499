package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leonali030/policyengine-app/internal/compare"
	"github.com/leonali030/policyengine-app/internal/model"
	"github.com/leonali030/policyengine-app/internal/reform"
	"github.com/leonali030/policyengine-app/internal/render"
	"github.com/leonali030/policyengine-app/pkg/policyengine"
)

var serveCountry string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the comparison state and diff engine over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		country := serveCountry
		if country == "" {
			country = cfg.API.CountryID
		}

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		// One snapshot per server session; the metadata is immutable for
		// the lifetime of every comparison served from it.
		meta, err := e.loadMetadata(ctx, country)
		if err != nil {
			return err
		}

		deps := serveDeps{
			meta: meta,
			loadPolicy: func(ctx context.Context, policyID string) (*model.Policy, error) {
				return e.loadPolicy(ctx, country, policyID)
			},
			rename: func(ctx context.Context, data model.ReformData, name string) (*policyengine.NamingResult, error) {
				return e.client.GetNewPolicyID(ctx, country, data, name)
			},
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
			Handler: newRouter(deps),
		}

		errCh := make(chan error, 1)
		go func() {
			zap.L().Info("server listening", zap.Int("port", cfg.Server.Port))
			errCh <- srv.ListenAndServe()
		}()

		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		}
	},
}

type serveDeps struct {
	meta       *model.Metadata
	loadPolicy func(ctx context.Context, policyID string) (*model.Policy, error)
	rename     func(ctx context.Context, data model.ReformData, name string) (*policyengine.NamingResult, error)
}

func newRouter(deps serveDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/v1/compare", func(w http.ResponseWriter, r *http.Request) {
		result := compare.Repair(r.URL.Query(), deps.meta)
		state := compare.FromParams(result.Params)
		writeJSON(w, http.StatusOK, map[string]any{
			"complete": result.Complete,
			"changed":  result.Changed,
			"params":   result.Params.Encode(),
			"view":     compare.NewMachine(result.Params).Current(),
			"state": map[string]any{
				"region":      state.Region,
				"time_period": state.TimePeriod,
				"baseline":    state.BaselineID,
				"reform":      state.ReformID,
				"focus":       state.Focus,
				"household":   state.HouseholdPresent,
			},
			"actions": render.Actions(state, deps.meta.CountryID),
		})
	})

	r.Post("/v1/compare/swap", func(w http.ResponseWriter, r *http.Request) {
		swapped := compare.SwapBaselineAndReform(r.URL.Query(), deps.meta)
		writeJSON(w, http.StatusOK, map[string]string{"params": swapped.Encode()})
	})

	r.Get("/v1/policies/{policyID}/diff", func(w http.ResponseWriter, r *http.Request) {
		policy, err := deps.loadPolicy(r.Context(), chi.URLParam(r, "policyID"))
		if err != nil {
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
			return
		}

		entries, err := reform.ComputeDiffs(policy.Data, deps.meta.Index())
		if err != nil {
			var unknownParam *reform.UnknownParameterError
			var badPeriod *reform.MalformedTimePeriodError
			if errors.As(err, &unknownParam) || errors.As(err, &badPeriod) {
				writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
				return
			}
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		if entries == nil {
			entries = []reform.DiffEntry{}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"policy":  policy.ID,
			"label":   policy.DisplayLabel(),
			"entries": entries,
		})
	})

	r.Post("/v1/policies/rename", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			PolicyID string `json:"policy_id"`
			Label    string `json:"label"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if req.PolicyID == "" || req.Label == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "policy_id and label are required"})
			return
		}

		policy, err := deps.loadPolicy(r.Context(), req.PolicyID)
		if err != nil {
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
			return
		}
		result, err := deps.rename(r.Context(), policy.Data, req.Label)
		if err != nil {
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
			return
		}
		if result.Conflict {
			writeJSON(w, http.StatusConflict, map[string]string{"message": result.Message})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"policy_id": result.PolicyID, "renamed": true})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Warn("write response", zap.Error(err))
	}
}

func init() {
	serveCmd.Flags().StringVar(&serveCountry, "country", "", "country id (defaults to api.country_id)")
	rootCmd.AddCommand(serveCmd)
}
