package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/pipeline"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// wsFrame is one server-to-client progress message. Status moves through
// received, preprocessing, recognizing and matching before finishing with
// completed or error.
type wsFrame struct {
	Status string                     `json:"status"`
	Result *pipeline.StructuredResult `json:"result,omitempty"`
	Error  string                     `json:"error,omitempty"`
}

// handleWebSocket runs OCR over a WebSocket connection with live stage
// updates. Clients send one document per message: binary frames carry raw
// image bytes, text frames carry the same JSON body as POST /ocr.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("WebSocket upgrade failed", "error", err, "client", getClientIP(r))
		return
	}
	defer func() { _ = conn.Close() }()

	wsConnections.Inc()
	defer wsConnections.Dec()
	slog.Info("WebSocket connected", "client", getClientIP(r))

	conn.SetReadLimit(int64(s.cfg.MaxUploadMB) * 1024 * 1024)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	done := make(chan struct{})
	defer close(done)
	go pingLoop(conn, done)

	for {
		messageType, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("WebSocket read failed", "error", err)
			}
			return
		}
		wsMessages.WithLabelValues("received").Inc()

		s.processWSMessage(r.Context(), conn, messageType, payload)
	}
}

func (s *Server) processWSMessage(ctx context.Context, conn *websocket.Conn, messageType int, payload []byte) {
	var data []byte
	var opts pipeline.Options

	switch messageType {
	case websocket.BinaryMessage:
		data = payload
	case websocket.TextMessage:
		var req OCRRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			sendFrame(conn, wsFrame{Status: "error", Error: "invalid JSON message: " + err.Error()})
			return
		}
		upload, err := readJSONUploadRequest(req)
		if err != nil {
			sendFrame(conn, wsFrame{Status: "error", Error: err.Error()})
			return
		}
		data = upload.data
		opts.DocumentType = upload.documentType
	default:
		return
	}

	if len(data) == 0 {
		sendFrame(conn, wsFrame{Status: "error", Error: "empty document"})
		return
	}
	if isPDFUpload(&ocrUpload{data: data}) {
		sendFrame(conn, wsFrame{Status: "error", Error: "PDF uploads are not supported here, use POST /ocr"})
		return
	}

	sendFrame(conn, wsFrame{Status: "received"})
	opts.OnStage = func(stage string) {
		sendFrame(conn, wsFrame{Status: stage})
	}

	if s.cfg.TimeoutSec > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(s.cfg.TimeoutSec)*time.Second)
		defer cancel()
	}

	res, err := s.pipeline.ProcessBytesContext(ctx, data, opts)
	if err != nil {
		ocrRequests.WithLabelValues("websocket", "error").Inc()
		sendFrame(conn, wsFrame{Status: "error", Error: err.Error()})
		return
	}
	ocrRequests.WithLabelValues("websocket", "success").Inc()
	sendFrame(conn, wsFrame{Status: "completed", Result: res})
}

func sendFrame(conn *websocket.Conn, frame wsFrame) {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := conn.WriteJSON(frame); err != nil {
		slog.Warn("WebSocket write failed", "error", err)
		return
	}
	wsMessages.WithLabelValues("sent").Inc()
}

func pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			deadline := time.Now().Add(wsWriteWait)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
