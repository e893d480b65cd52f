package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/marcohq/marco-backend/internal/proctoring"
	"github.com/marcohq/marco-backend/internal/services"
	"github.com/marcohq/marco-backend/internal/utils"
)

// WSHandler is the realtime leg of a session: the client streams pose samples,
// tab switches, and recorded answer audio in; proctoring verdicts and
// transcripts flow back out over the session's Redis channels.
type WSHandler struct {
	mgr      *services.SessionManager
	redis    *redis.Client
	upgrader websocket.Upgrader
}

func NewWSHandler(mgr *services.SessionManager, rdb *redis.Client) *WSHandler {
	return &WSHandler{
		mgr:   mgr,
		redis: rdb,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict origin in prod
		},
	}
}

type wsClientMsg struct {
	Type string `json:"type"`

	// pose_sample
	FaceDetected  bool    `json:"face_detected"`
	MultipleFaces bool    `json:"multiple_faces"`
	Pitch         float64 `json:"pitch"`
	Yaw           float64 `json:"yaw"`
	Roll          float64 `json:"roll"`
	Confidence    float64 `json:"confidence"`
	Timestamp     string  `json:"timestamp"`

	// audio_chunk
	ChunkIndex  int64  `json:"chunk_index"`
	AudioBase64 string `json:"audio_base64"`
	Language    string `json:"language"`

	// end_session
	Reason string `json:"reason"`
}

type wsConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (w *wsConn) writeText(b []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.c.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.c.WriteMessage(websocket.TextMessage, b)
}

func (w *wsConn) writeJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return w.writeText(b)
}

func (h *WSHandler) SessionWS(c *gin.Context) {
	sessionID := c.Param("session_id")
	if sessionID == "" {
		writeError(c, utils.E(utils.CodeInvalidArgument, "WSHandler.SessionWS", "missing session_id", nil))
		return
	}

	// confirm the session exists and belongs to the caller before upgrading
	sess, err := h.mgr.Get(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return
	}
	if !requireOwner(c, sess.CandidateID) {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// upgrade already wrote response in most cases
		return
	}
	defer conn.Close()

	wc := &wsConn{c: conn}
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	proctorCh := "session:" + sessionID + ":proctor"
	transcriptCh := "session:" + sessionID + ":transcript"

	pubsub := h.redis.Subscribe(ctx, proctorCh, transcriptCh)
	defer pubsub.Close()

	// reader: WS -> session manager / Redis stream
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		conn.SetPongHandler(func(string) error {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			return nil
		})

		for {
			_, data, rerr := conn.ReadMessage()
			if rerr != nil {
				return
			}

			var msg wsClientMsg
			if err := json.Unmarshal(data, &msg); err != nil {
				_ = wc.writeText([]byte(`{"type":"error","code":"INVALID_ARGUMENT","message":"invalid json"}`))
				continue
			}

			switch msg.Type {
			case "pose_sample":
				var at time.Time
				if msg.Timestamp != "" {
					parsed, perr := time.Parse(time.RFC3339Nano, msg.Timestamp)
					if perr != nil {
						_ = wc.writeText([]byte(`{"type":"error","code":"INVALID_ARGUMENT","message":"invalid timestamp"}`))
						continue
					}
					at = parsed
				}
				verdict, verr := h.mgr.RecordPoseSample(ctx, sessionID, proctoring.PoseSample{
					FaceDetected:  msg.FaceDetected,
					MultipleFaces: msg.MultipleFaces,
					Pitch:         msg.Pitch,
					Yaw:           msg.Yaw,
					Roll:          msg.Roll,
					Confidence:    msg.Confidence,
				}, at)
				if verr != nil {
					_ = wc.writeJSON(gin.H{"type": "error", "code": utils.CodeInternal, "message": "failed to record pose sample"})
					continue
				}
				_ = wc.writeJSON(gin.H{"type": "pose_verdict", "verdict": verdict})

			case "tab_switch":
				verdict, verr := h.mgr.RecordTabSwitch(ctx, sessionID)
				if verr != nil {
					_ = wc.writeJSON(gin.H{"type": "error", "code": utils.CodeInternal, "message": "failed to record tab switch"})
					continue
				}
				_ = wc.writeJSON(gin.H{"type": "pose_verdict", "verdict": verdict})

			case "audio_chunk":
				if msg.ChunkIndex <= 0 {
					_ = wc.writeText([]byte(`{"type":"error","code":"INVALID_ARGUMENT","message":"chunk_index must be > 0"}`))
					continue
				}
				if msg.AudioBase64 == "" {
					_ = wc.writeText([]byte(`{"type":"error","code":"INVALID_ARGUMENT","message":"audio_base64 required"}`))
					continue
				}

				fields := map[string]any{
					"session_id":   sessionID,
					"chunk_index":  strconv.FormatInt(msg.ChunkIndex, 10),
					"audio_base64": msg.AudioBase64,
					"language":     msg.Language,
					"ts_unix":      strconv.FormatInt(time.Now().UTC().Unix(), 10),
				}
				if err := h.redis.XAdd(ctx, &redis.XAddArgs{
					Stream: "answers:audio",
					Values: fields,
				}).Err(); err != nil {
					_ = wc.writeText([]byte(`{"type":"error","code":"UNAVAILABLE","message":"failed to enqueue audio"}`))
					continue
				}
				_ = wc.writeJSON(gin.H{"type": "audio_queued", "chunk_index": msg.ChunkIndex})

			case "end_session":
				sess, eerr := h.mgr.End(ctx, sessionID, msg.Reason)
				if eerr != nil {
					_ = wc.writeJSON(gin.H{"type": "error", "code": utils.CodeInternal, "message": "failed to end session"})
					return
				}
				_ = wc.writeJSON(gin.H{"type": "session_ended", "status": sess.Status, "reason": sess.TerminationReason})
				return

			default:
				_ = wc.writeText([]byte(`{"type":"error","code":"INVALID_ARGUMENT","message":"unknown message type"}`))
			}
		}
	}()

	// writer: Redis Pub/Sub -> WS
	for {
		select {
		case <-readDone:
			return
		case <-ctx.Done():
			return
		default:
			m, err := pubsub.ReceiveMessage(ctx)
			if err != nil {
				return
			}
			// forward as-is (payload expected JSON string)
			if werr := wc.writeText([]byte(m.Payload)); werr != nil {
				return
			}
		}
	}
}
