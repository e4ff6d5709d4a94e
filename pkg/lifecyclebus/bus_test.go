package lifecyclebus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribe_ReceivesEmittedEvents(t *testing.T) {
	b := NewBus()
	ch, unsubscribe := b.Subscribe()
	defer unsubscribe()

	b.Emit(Event{Type: ModuleStarted, Module: "widgets"})

	select {
	case evt := <-ch:
		assert.Equal(t, ModuleStarted, evt.Type)
		assert.Equal(t, "widgets", evt.Module)
	case <-time.After(time.Second):
		t.Fatal("subscriber never received the event")
	}
}

func TestUnsubscribe_ClosesChannelAndStopsDelivery(t *testing.T) {
	b := NewBus()
	ch, unsubscribe := b.Subscribe()
	unsubscribe()

	b.Emit(Event{Type: ModuleStopped, Module: "widgets"})

	_, ok := <-ch
	assert.False(t, ok, "channel should be closed after unsubscribe")
}

func TestEmit_FansOutToEverySubscriber(t *testing.T) {
	b := NewBus()
	ch1, unsub1 := b.Subscribe()
	defer unsub1()
	ch2, unsub2 := b.Subscribe()
	defer unsub2()

	b.Emit(Event{Type: ModuleInitialized, Module: "directory"})

	for _, ch := range []<-chan Event{ch1, ch2} {
		select {
		case evt := <-ch:
			require.Equal(t, "directory", evt.Module)
		case <-time.After(time.Second):
			t.Fatal("a subscriber missed the fan-out")
		}
	}
}

func TestEmit_FullBufferDropsRatherThanBlocks(t *testing.T) {
	b := NewBus()
	_, unsubscribe := b.Subscribe()
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			b.Emit(Event{Type: ModuleTimeout, Module: "backup"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("emit blocked on a full subscriber buffer")
	}
}
