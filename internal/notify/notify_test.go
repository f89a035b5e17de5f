package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asteroid-belt/vidtally/internal/testutil"
)

type failingSink struct{}

func (failingSink) Publish(context.Context, Notice) error { return errors.New("offline") }

func TestBuffer_KeepsNewest(t *testing.T) {
	b := NewBuffer(2)
	ctx := context.Background()

	for _, title := range []string{"a", "b", "c"} {
		require.NoError(t, b.Publish(ctx, Notice{Title: title}))
	}

	got := b.Drain()
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Title)
	assert.Empty(t, b.Drain())
}

func TestMulti_DeliversToAllAndJoinsErrors(t *testing.T) {
	b := NewBuffer(5)
	m := Multi{failingSink{}, b}

	err := m.Publish(context.Background(), Notice{Kind: KindWarning, Title: "sync"})
	assert.ErrorContains(t, err, "offline")
	assert.Len(t, b.Drain(), 1)
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	s := LogSink{Logger: zerolog.New(&buf)}

	require.NoError(t, s.Publish(context.Background(), Notice{
		Kind:    KindAchievement,
		Title:   "First Video",
		Message: "Finished watching your first video",
	}))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "info", rec["level"])
	assert.Equal(t, "First Video", rec["title"])
}

func TestNATSSink(t *testing.T) {
	url := testutil.SkipNATSTests(t)

	sink, err := ConnectNATS(url, "vidtally.test")
	require.NoError(t, err)
	defer func() { _ = sink.Close() }()

	sub, err := nats.Connect(url)
	require.NoError(t, err)
	defer sub.Close()

	msgs := make(chan *nats.Msg, 1)
	s, err := sub.ChanSubscribe("vidtally.test.>", msgs)
	require.NoError(t, err)
	defer func() { _ = s.Unsubscribe() }()
	require.NoError(t, sub.Flush())

	require.NoError(t, sink.Publish(context.Background(), Notice{Kind: KindWarning, Title: "sync failed"}))

	select {
	case msg := <-msgs:
		assert.Equal(t, "vidtally.test.warning", msg.Subject)
		var n Notice
		require.NoError(t, json.Unmarshal(msg.Data, &n))
		assert.Equal(t, "sync failed", n.Title)
	case <-time.After(5 * time.Second):
		t.Fatal("notice not received")
	}
}
