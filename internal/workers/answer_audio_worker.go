package workers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/marcohq/marco-backend/internal/providers/stt"
)

// AnswerAudioWorkerPool drains recorded answer chunks from a Redis stream,
// transcribes them, and publishes the transcript on the session's transcript
// channel. The client assembles chunks and submits the final answer text over
// the interview API; workers never touch session state.
type AnswerAudioWorkerPool struct {
	Redis      *redis.Client
	STT        stt.Provider
	NumWorkers int

	Logger *logrus.Logger

	Stream         string
	Group          string
	ConsumerPrefix string
}

func (p *AnswerAudioWorkerPool) Start(ctx context.Context) error {
	if p.Redis == nil || p.STT == nil {
		return errors.New("AnswerAudioWorkerPool missing dependency: Redis/STT must be set")
	}
	if p.Stream == "" {
		p.Stream = "answers:audio"
	}
	if p.Group == "" {
		p.Group = "stt-workers"
	}
	if p.ConsumerPrefix == "" {
		p.ConsumerPrefix = "c"
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = 3
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}

	_ = p.Redis.XGroupCreateMkStream(ctx, p.Stream, p.Group, "0").Err() // ignore BUSYGROUP

	for i := 0; i < p.NumWorkers; i++ {
		consumer := p.ConsumerPrefix + "-" + strconv.Itoa(i+1)
		go p.runConsumer(ctx, consumer)
	}
	return nil
}

func (p *AnswerAudioWorkerPool) runConsumer(ctx context.Context, consumer string) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := p.Redis.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    p.Group,
			Consumer: consumer,
			Streams:  []string{p.Stream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()

		if err != nil {
			if err == redis.Nil {
				continue
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				p.handleMsg(ctx, msg)
				_ = p.Redis.XAck(ctx, p.Stream, p.Group, msg.ID).Err()
			}
		}
	}
}

func (p *AnswerAudioWorkerPool) handleMsg(ctx context.Context, msg redis.XMessage) {
	getStr := func(k string) string {
		v, ok := msg.Values[k]
		if !ok || v == nil {
			return ""
		}
		s, _ := v.(string)
		return s
	}

	sessionID := getStr("session_id")
	chunkIndexStr := getStr("chunk_index")
	if sessionID == "" || chunkIndexStr == "" {
		return
	}
	chunkIndex, _ := strconv.ParseInt(chunkIndexStr, 10, 64)

	log := p.Logger.WithFields(logrus.Fields{
		"redis_id":    msg.ID,
		"session_id":  sessionID,
		"chunk_index": chunkIndex,
	})

	transcriptCh := "session:" + sessionID + ":transcript"

	language := getStr("language")
	if language == "" {
		language = "en-US"
	}

	b64 := getStr("audio_base64")
	if b64 == "" {
		return
	}
	if i := strings.Index(b64, ","); i >= 0 {
		b64 = b64[i+1:] // strip data:...;base64,
	}
	audioBytes, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		log.WithError(err).Warn("base64 decode failed")
		p.publishFailure(ctx, transcriptCh, chunkIndex, "invalid audio_base64")
		return
	}

	text, conf, err := p.STT.Transcribe(ctx, audioBytes, language)
	if err != nil {
		log.WithError(err).Error("stt failed")
		p.publishFailure(ctx, transcriptCh, chunkIndex, "transcription failed")
		return
	}

	payload, _ := json.Marshal(map[string]any{
		"type":        "transcript",
		"chunk_index": chunkIndex,
		"text":        text,
		"confidence":  conf,
		"is_final":    true,
	})
	_ = p.Redis.Publish(ctx, transcriptCh, string(payload)).Err()
}

func (p *AnswerAudioWorkerPool) publishFailure(ctx context.Context, channel string, chunkIndex int64, message string) {
	payload, _ := json.Marshal(map[string]any{
		"type":        "transcript_error",
		"chunk_index": chunkIndex,
		"message":     message,
	})
	_ = p.Redis.Publish(ctx, channel, string(payload)).Err()
}
