package main

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/lonng/tempo"
	"github.com/lonng/tempo/internal/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// timerState 推送给监控端的定时器快照
type timerState struct {
	ID              string `json:"id"`
	UID             int64  `json:"uid"`
	IntervalSeconds int64  `json:"intervalSeconds"`
	ElapsedSeconds  int64  `json:"elapsedSeconds"`
	Active          bool   `json:"active"`
	Complete        bool   `json:"complete"`
	BlockTimer      bool   `json:"blockTimer"`
	InactivityTimer bool   `json:"inactivityTimer"`
}

// snapshot 采集默认管理器上全部定时器的状态
func snapshot() []timerState {
	var states []timerState
	tempo.Default.Walk(func(t *tempo.Timer) bool {
		states = append(states, timerState{
			ID:              t.ID(),
			UID:             t.UID(),
			IntervalSeconds: t.IntervalSeconds(),
			ElapsedSeconds:  t.ElapsedSeconds(),
			Active:          t.IsActive(),
			Complete:        t.IsComplete(),
			BlockTimer:      t.IsBlockTimer(),
			InactivityTimer: t.IsInactivityTimer(),
		})
		return true
	})
	return states
}

// serveWS 每秒向连接推送一次定时器快照
func serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("Upgrade monitor connection error.", err)
		return
	}
	connID := uuid.NewString()
	log.Info("Monitor connected, ID=%s.", connID)

	defer func() {
		_ = conn.Close()
		log.Info("Monitor disconnected, ID=%s.", connID)
	}()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for range ticker.C {
		if err := conn.WriteJSON(snapshot()); err != nil {
			return
		}
	}
}

func main() {
	tempo.Start()
	defer tempo.Close()

	tempo.AddTimer("save", func(*tempo.Timer) bool { return true }, false, 15, tempo.Indefinite, false, nil)
	tempo.AddTimer("intro", func(*tempo.Timer) bool { return true }, true, 10, 10, false, nil)
	tempo.AddTimer("idle", func(*tempo.Timer) bool { return true }, false, 30, tempo.Indefinite, true, nil)

	// 任意请求都视为用户活动
	http.HandleFunc("/activity", func(w http.ResponseWriter, _ *http.Request) {
		tempo.ResetInactivityTimers()
		w.WriteHeader(http.StatusNoContent)
	})
	http.HandleFunc("/ws", serveWS)

	log.Info("Timer monitor listening on :12345.")
	if err := http.ListenAndServe(":12345", nil); err != nil {
		log.Fatal("Monitor server error.", err)
	}
}
