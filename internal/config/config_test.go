package config_test

import (
	"context"
	"errors"
	"runtime"
	"testing"

	"github.com/okian/scout/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given the default config", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then the defaults are set and valid", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.DBPath, convey.ShouldEqual, "scouting.db")
			convey.So(cfg.ImportWorkers, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.DefaultRankingsLimit, convey.ShouldBeLessThanOrEqualTo, cfg.MaxRankingsLimit)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then broken values fail validation", func() {
			cfg.LogLevel = "chatty"
			err := cfg.Validate()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "LogLevel")
		})

		convey.Convey("Then a default limit above the cap fails validation", func() {
			cfg.DefaultRankingsLimit = cfg.MaxRankingsLimit + 1
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}
