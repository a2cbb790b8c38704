package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	app "github.com/okian/scout/internal/app"
	"github.com/okian/scout/internal/config"
	"github.com/okian/scout/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("SCOUT_DB_PATH", ":memory:")
	t.Setenv("SCOUT_IMPORT_WORKERS", "2")
	t.Setenv("SCOUT_CHART_TOP_N", "5")
	cfg, err := config.Load(context.Background())
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return cfg
}

func TestNewMux(t *testing.T) {
	convey.Convey("Given a started service built from configuration", t, func() {
		cfg := testConfig(t)
		convey.So(cfg.ImportWorkers, convey.ShouldEqual, 2)

		svc := newService(cfg)
		convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
		defer svc.Stop()
		mux := newMux(cfg, svc)

		convey.Convey("Then API, docs and metrics routes are mounted", func() {
			for _, target := range []string{"/healthz", "/metrics", "/openapi.yaml", "/api-docs", "/api/stats", "/stats"} {
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, http.NoBody))
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			}
		})

		convey.Convey("And service metrics refresh without panicking", func() {
			convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})
	})
}

func TestMetricsUpdaters(t *testing.T) {
	convey.Convey("Given updaters bound to a short-lived context", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		convey.Convey("Then they return when the context ends", func() {
			done := make(chan struct{})
			go func() {
				startSystemMetricsUpdater(ctx)
				startServiceMetricsUpdater(ctx, app.New())
				close(done)
			}()
			select {
			case <-done:
			case <-time.After(2 * time.Second):
				t.Fatal("metrics updaters did not stop")
			}
		})
	})
}

func TestRun(t *testing.T) {
	convey.Convey("Given a configuration on an ephemeral port", t, func() {
		t.Setenv("SCOUT_DB_PATH", ":memory:")
		t.Setenv("SCOUT_ADDR", "127.0.0.1:0")

		convey.Convey("Then run serves until the context ends and shuts down cleanly", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
			defer cancel()
			convey.So(run(ctx), convey.ShouldBeNil)
		})
	})

	convey.Convey("Given an invalid configuration", t, func() {
		t.Setenv("SCOUT_LOG_FORMAT", "xml")

		convey.Convey("Then run refuses to start", func() {
			convey.So(run(context.Background()), convey.ShouldNotBeNil)
		})
	})
}
