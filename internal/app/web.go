package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"

	"github.com/relabs-tech/target_navigator/internal/config"
	"github.com/relabs-tech/target_navigator/internal/nav"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// webState holds the latest snapshot and the live websocket connections.
type webState struct {
	mu       sync.RWMutex
	last     nav.Data
	haveData bool

	connMu sync.Mutex
	conns  map[*websocket.Conn]bool

	publishCalibrate func(calibrateRequest) error
}

func newWebState(publish func(calibrateRequest) error) *webState {
	return &webState{
		conns:            make(map[*websocket.Conn]bool),
		publishCalibrate: publish,
	}
}

// update stores the snapshot and pushes it to every websocket client.
// Clients that fail to take the write are dropped.
func (s *webState) update(d nav.Data) {
	s.mu.Lock()
	s.last = d
	s.haveData = true
	s.mu.Unlock()

	s.connMu.Lock()
	defer s.connMu.Unlock()
	for conn := range s.conns {
		if err := conn.WriteJSON(d); err != nil {
			log.Printf("web: websocket write error: %v", err)
			conn.Close()
			delete(s.conns, conn)
		}
	}
}

// handleNavigation serves the latest snapshot as JSON.
func (s *webState) handleNavigation(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.haveData {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.last); err != nil {
		log.Printf("web: json encode error: %v", err)
	}
}

// handleNavigationWS upgrades to a websocket and registers the client for
// pushed snapshots. The latest snapshot is sent immediately so the page is
// never blank while waiting for the next update.
func (s *webState) handleNavigationWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade error: %v", err)
		return
	}

	s.mu.RLock()
	last, have := s.last, s.haveData
	s.mu.RUnlock()
	if have {
		if err := conn.WriteJSON(last); err != nil {
			log.Printf("web: websocket initial write error: %v", err)
			conn.Close()
			return
		}
	}

	s.connMu.Lock()
	s.conns[conn] = true
	s.connMu.Unlock()

	// Drain reads so pings and close frames are processed; drop the client
	// once the read side fails.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.connMu.Lock()
				delete(s.conns, conn)
				s.connMu.Unlock()
				conn.Close()
				return
			}
		}
	}()
}

// handleCalibrate accepts POST {"heading": <deg>} and forwards a calibration
// request to the navigator.
func (s *webState) handleCalibrate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		Heading float64 `json:"heading"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	if err := s.publishCalibrate(calibrateRequest{Action: "set", Heading: body.Heading}); err != nil {
		log.Printf("web: calibrate publish error: %v", err)
		http.Error(w, "publish failed", http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// handleCalibrateReset accepts POST and clears the calibration offset.
func (s *webState) handleCalibrateReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := s.publishCalibrate(calibrateRequest{Action: "reset"}); err != nil {
		log.Printf("web: calibrate reset publish error: %v", err)
		http.Error(w, "publish failed", http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// RunWeb subscribes to the navigation topic and serves the latest snapshot
// over HTTP and websocket, plus the calibration endpoints.
func RunWeb() error {
	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDWeb)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: connected to MQTT broker at %s", cfg.MQTTBroker)

	state := newWebState(func(req calibrateRequest) error {
		payload, err := json.Marshal(req)
		if err != nil {
			return err
		}
		token := client.Publish(cfg.TopicCalibrate, 0, false, payload)
		token.Wait()
		return token.Error()
	})

	navToken := client.Subscribe(cfg.TopicNavigation, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var d nav.Data
		if err := json.Unmarshal(msg.Payload(), &d); err != nil {
			log.Printf("web: snapshot unmarshal error: %v", err)
			return
		}
		state.update(d)
	})
	navToken.Wait()
	if navToken.Error() != nil {
		return navToken.Error()
	}
	log.Printf("web: subscribed to %s", cfg.TopicNavigation)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/navigation", state.handleNavigation)
	mux.HandleFunc("/ws/navigation", state.handleNavigationWS)
	mux.HandleFunc("/api/calibrate", state.handleCalibrate)
	mux.HandleFunc("/api/calibrate/reset", state.handleCalibrateReset)
	mux.Handle("/", http.FileServer(http.Dir("web")))

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web: server listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}
