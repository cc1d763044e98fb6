package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/relabs-tech/target_navigator/internal/geo"
	"github.com/relabs-tech/target_navigator/internal/nav"
)

func fullSnapshot() nav.Data {
	loc := geo.Coordinate{Latitude: 13.0443132, Longitude: 77.5733936}
	dist := 111.2
	bearing := 0.0
	heading := 190.0
	relative := 170.0
	return nav.Data{
		UserLocation:     &loc,
		TargetLocation:   geo.Coordinate{Latitude: 13.0453132, Longitude: 77.5733936},
		DistanceMeters:   &dist,
		BearingDeg:       &bearing,
		DeviceHeadingDeg: &heading,
		RelativeAngleDeg: &relative,
	}
}

func TestFormatSnapshotEmpty(t *testing.T) {
	got := formatSnapshot(nav.Data{}, 10)
	if !strings.Contains(got, "dist=--") {
		t.Fatalf("got=%q want dashes for missing distance", got)
	}
}

func TestFormatSnapshotFull(t *testing.T) {
	got := formatSnapshot(fullSnapshot(), 10)
	if !strings.Contains(got, "111 m") {
		t.Fatalf("got=%q want formatted distance", got)
	}
	if !strings.Contains(got, "turn left") {
		t.Fatalf("got=%q want turn hint", got)
	}
}

func TestHandleNavigationBeforeFirstSnapshot(t *testing.T) {
	s := newWebState(func(calibrateRequest) error { return nil })

	rec := httptest.NewRecorder()
	s.handleNavigation(rec, httptest.NewRequest(http.MethodGet, "/api/navigation", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status got=%d want=%d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestHandleNavigationServesLatest(t *testing.T) {
	s := newWebState(func(calibrateRequest) error { return nil })
	s.update(fullSnapshot())

	rec := httptest.NewRecorder()
	s.handleNavigation(rec, httptest.NewRequest(http.MethodGet, "/api/navigation", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status got=%d want=%d", rec.Code, http.StatusOK)
	}
	var d nav.Data
	if err := json.Unmarshal(rec.Body.Bytes(), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.RelativeAngleDeg == nil || *d.RelativeAngleDeg != 170 {
		t.Fatalf("relative got=%v want=170", d.RelativeAngleDeg)
	}
}

func TestHandleCalibratePublishes(t *testing.T) {
	var published []calibrateRequest
	s := newWebState(func(req calibrateRequest) error {
		published = append(published, req)
		return nil
	})

	body := strings.NewReader(`{"heading": 123.5}`)
	rec := httptest.NewRecorder()
	s.handleCalibrate(rec, httptest.NewRequest(http.MethodPost, "/api/calibrate", body))

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status got=%d want=%d", rec.Code, http.StatusAccepted)
	}
	if len(published) != 1 || published[0].Action != "set" || published[0].Heading != 123.5 {
		t.Fatalf("published=%+v", published)
	}
}

func TestHandleCalibrateRejectsGet(t *testing.T) {
	s := newWebState(func(calibrateRequest) error { return nil })

	rec := httptest.NewRecorder()
	s.handleCalibrate(rec, httptest.NewRequest(http.MethodGet, "/api/calibrate", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status got=%d want=%d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestHandleCalibrateResetPublishes(t *testing.T) {
	var published []calibrateRequest
	s := newWebState(func(req calibrateRequest) error {
		published = append(published, req)
		return nil
	})

	rec := httptest.NewRecorder()
	s.handleCalibrateReset(rec, httptest.NewRequest(http.MethodPost, "/api/calibrate/reset", nil))

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status got=%d want=%d", rec.Code, http.StatusAccepted)
	}
	if len(published) != 1 || published[0].Action != "reset" {
		t.Fatalf("published=%+v", published)
	}
}
