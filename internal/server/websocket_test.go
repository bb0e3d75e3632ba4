package server

import (
	"encoding/base64"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/pipeline"
)

func dialWebSocket(t *testing.T, sp *stubProcessor) *websocket.Conn {
	t.Helper()
	s := New(sp, testServerConfig(), "test")
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntilDone collects frames until a completed or error status arrives.
func readUntilDone(t *testing.T, conn *websocket.Conn) []wsFrame {
	t.Helper()
	var frames []wsFrame
	for {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var frame wsFrame
		require.NoError(t, conn.ReadJSON(&frame))
		frames = append(frames, frame)
		if frame.Status == "completed" || frame.Status == "error" {
			return frames
		}
	}
}

func statuses(frames []wsFrame) []string {
	out := make([]string, len(frames))
	for i, f := range frames {
		out[i] = f.Status
	}
	return out
}

func TestWebSocket_BinaryImage(t *testing.T) {
	conn := dialWebSocket(t, &stubProcessor{result: prescriptionResult()})

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte("fake-png-bytes")))
	frames := readUntilDone(t, conn)

	assert.Equal(t, []string{
		"received",
		pipeline.StagePreprocessing,
		pipeline.StageRecognizing,
		pipeline.StageMatching,
		"completed",
	}, statuses(frames))

	final := frames[len(frames)-1]
	require.NotNil(t, final.Result)
	assert.Equal(t, pipeline.DocTypePrescription, final.Result.DocumentType)
	assert.Len(t, final.Result.Entities, 2)
}

func TestWebSocket_JSONMessage(t *testing.T) {
	sp := &stubProcessor{result: prescriptionResult()}
	conn := dialWebSocket(t, sp)

	payload, err := json.Marshal(OCRRequest{
		Image:        base64.StdEncoding.EncodeToString([]byte("fake-png-bytes")),
		DocumentType: pipeline.DocTypeLabReport,
	})
	require.NoError(t, err)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, payload))
	frames := readUntilDone(t, conn)

	assert.Equal(t, "completed", frames[len(frames)-1].Status)
	assert.Equal(t, pipeline.DocTypeLabReport, sp.documentType())
}

func TestWebSocket_ProcessingError(t *testing.T) {
	conn := dialWebSocket(t, &stubProcessor{err: assert.AnError})

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte("fake-png-bytes")))
	frames := readUntilDone(t, conn)

	final := frames[len(frames)-1]
	assert.Equal(t, "error", final.Status)
	assert.Contains(t, final.Error, assert.AnError.Error())
	assert.Nil(t, final.Result)
}

func TestWebSocket_RejectsPDF(t *testing.T) {
	conn := dialWebSocket(t, &stubProcessor{})

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte("%PDF-1.7 fake")))
	frames := readUntilDone(t, conn)

	require.Len(t, frames, 1)
	assert.Equal(t, "error", frames[0].Status)
	assert.Contains(t, frames[0].Error, "POST /ocr")
}

func TestWebSocket_InvalidJSON(t *testing.T) {
	conn := dialWebSocket(t, &stubProcessor{})

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{broken")))
	frames := readUntilDone(t, conn)

	require.Len(t, frames, 1)
	assert.Equal(t, "error", frames[0].Status)
	assert.Contains(t, frames[0].Error, "invalid JSON")
}

func TestWebSocket_EmptyBinaryMessage(t *testing.T) {
	conn := dialWebSocket(t, &stubProcessor{})

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, nil))
	frames := readUntilDone(t, conn)

	require.Len(t, frames, 1)
	assert.Equal(t, "error", frames[0].Status)
	assert.Contains(t, frames[0].Error, "empty document")
}

func TestWebSocket_SequentialDocuments(t *testing.T) {
	conn := dialWebSocket(t, &stubProcessor{result: prescriptionResult()})

	for i := 0; i < 2; i++ {
		require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte("fake-png-bytes")))
	}

	first := readUntilDone(t, conn)
	second := readUntilDone(t, conn)
	assert.Equal(t, "completed", first[len(first)-1].Status)
	assert.Equal(t, "completed", second[len(second)-1].Status)
}
