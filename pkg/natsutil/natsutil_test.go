package natsutil

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

func startTestNATS(t *testing.T) *nats.Conn {
	t.Helper()
	srv, err := natsserver.NewServer(&natsserver.Options{Port: -1})
	if err != nil {
		t.Fatal(err)
	}
	srv.Start()
	if !srv.ReadyForConnections(3 * time.Second) {
		t.Fatal("nats not ready")
	}
	nc, err := nats.Connect(srv.ClientURL())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		nc.Close()
		srv.Shutdown()
	})
	return nc
}

type event struct {
	User  string `json:"user"`
	Query string `json:"query"`
}

func TestPublish(t *testing.T) {
	nc := startTestNATS(t)

	ch := make(chan *nats.Msg, 1)
	sub, err := nc.ChanSubscribe("activity.search", ch)
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Unsubscribe()

	if err := Publish(context.Background(), nc, "activity.search", event{User: "u1", Query: "lamp"}); err != nil {
		t.Fatal(err)
	}

	select {
	case msg := <-ch:
		var e event
		if err := json.Unmarshal(msg.Data, &e); err != nil {
			t.Fatal(err)
		}
		if e.User != "u1" || e.Query != "lamp" {
			t.Fatalf("unexpected payload: %+v", e)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestSubscribe(t *testing.T) {
	nc := startTestNATS(t)

	ch := make(chan event, 1)
	sub, err := Subscribe(nc, "activity.view", func(ctx context.Context, e event) {
		ch <- e
	})
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Unsubscribe()

	if err := Publish(context.Background(), nc, "activity.view", event{User: "u2"}); err != nil {
		t.Fatal(err)
	}

	select {
	case e := <-ch:
		if e.User != "u2" {
			t.Fatalf("unexpected: %+v", e)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout")
	}
}

func TestSubscribeDropsMalformed(t *testing.T) {
	nc := startTestNATS(t)

	called := make(chan struct{}, 1)
	sub, err := Subscribe(nc, "activity.bad", func(ctx context.Context, e event) {
		called <- struct{}{}
	})
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Unsubscribe()

	nc.Publish("activity.bad", []byte("{bad"))
	nc.Flush()

	select {
	case <-called:
		t.Fatal("handler should not run for malformed data")
	case <-time.After(100 * time.Millisecond):
	}
}
