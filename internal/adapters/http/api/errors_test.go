package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	service "github.com/okian/scout/internal/app"
	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/internal/domain/normalize"
	"github.com/okian/scout/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestError(t *testing.T) {
	Convey("Given op-tagged errors", t, func() {
		cause := errors.New("boom")

		Convey("Messages carry op, kind and cause", func() {
			So(NewKind("api.x", ErrBadRequest).Error(), ShouldEqual, "api.x: bad request")
			So(Wrap("api.x", cause).Error(), ShouldEqual, "api.x: boom")
			So(WrapKind("api.x", ErrBadRequest, cause).Error(), ShouldEqual, "api.x: bad request: boom")
		})

		Convey("Kind and cause both match under errors.Is", func() {
			err := WrapKind("api.x", ErrBadRequest, cause)
			So(errors.Is(err, ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(Wrap("api.x", nil), ShouldBeNil)
		})
	})
}

func TestStatusFor(t *testing.T) {
	Convey("Given errors from every layer", t, func() {
		cases := []struct {
			err    error
			status int
			code   string
		}{
			{&model.ValidationError{Fields: []string{"teamNumber"}}, http.StatusBadRequest, "validation_error"},
			{fmt.Errorf("%w: eof", normalize.ErrMalformedPayload), http.StatusBadRequest, "malformed_payload"},
			{fmt.Errorf("%w: %q", scoring.ErrUnknownBase, "x"), http.StatusBadRequest, "unknown_base"},
			{NewKind("api.x", ErrBadRequest), http.StatusBadRequest, "bad_request"},
			{&model.DuplicateError{Key: model.NaturalKey{Match: 1, Team: 2}}, http.StatusConflict, "duplicate"},
			{fmt.Errorf("team 9: %w", model.ErrNotFound), http.StatusNotFound, "not_found"},
			{service.ErrTooManyItems, http.StatusRequestEntityTooLarge, "too_many_items"},
			{&http.MaxBytesError{Limit: 1}, http.StatusRequestEntityTooLarge, "payload_too_large"},
			{service.ErrNotStarted, http.StatusServiceUnavailable, "unavailable"},
			{errors.New("disk"), http.StatusInternalServerError, "internal_error"},
		}

		Convey("Each maps to its status and code, wrapped or not", func() {
			for _, c := range cases {
				status, code := statusFor(Wrap("api.x", c.err))
				So(status, ShouldEqual, c.status)
				So(code, ShouldEqual, c.code)
			}
		})
	})
}
