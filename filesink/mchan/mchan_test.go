package mchan_test

import (
	"testing"
	"time"

	"github.com/iotmesh/datasink/filesink/mchan"
)

func TestSendRecvOrder(t *testing.T) {
	c := mchan.New(4)
	snd, rcv := c.Split()
	want := [][]byte{[]byte("a"), []byte("b"), []byte("c")}
	for _, w := range want {
		if err := snd.Send(w); err != nil {
			t.Fatalf("send: %v", err)
		}
	}
	for i, w := range want {
		got, ok := rcv.Recv()
		if !ok {
			t.Fatalf("recv %d: channel closed early", i)
		}
		if string(got) != string(w) {
			t.Fatalf("recv %d: got %q want %q", i, got, w)
		}
	}
}

func TestCloseSignalsEOF(t *testing.T) {
	c := mchan.New(1)
	snd, rcv := c.Split()
	snd.Close()
	if _, ok := rcv.Recv(); ok {
		t.Fatalf("expected ok=false after Close with no pending messages")
	}
}

func TestSendAfterCloseReturnsErr(t *testing.T) {
	c := mchan.New(1)
	snd, _ := c.Split()
	snd.Close()
	if err := snd.Send([]byte("x")); err == nil {
		t.Fatalf("expected ErrChannelClosed sending after Close")
	}
}

func TestSendBlocksWhenFull(t *testing.T) {
	c := mchan.New(1)
	snd, rcv := c.Split()
	if err := snd.Send([]byte("1")); err != nil {
		t.Fatal(err)
	}
	done := make(chan struct{})
	go func() {
		_ = snd.Send([]byte("2"))
		close(done)
	}()
	select {
	case <-done:
		t.Fatalf("send on a full channel should block for back-pressure")
	case <-time.After(30 * time.Millisecond):
	}
	if _, ok := rcv.Recv(); !ok {
		t.Fatal("recv 1 failed")
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("send did not unblock after receiver drained one message")
	}
}
