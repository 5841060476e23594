package core

import (
	"sync"
	"testing"
	"time"
)

func TestGetOrCreateReturnsSameRoom(t *testing.T) {
	rg := NewRegistry(time.Minute)
	a := rg.GetOrCreate("m1", "H")
	b := rg.GetOrCreate("m1", "H")
	if a != b {
		t.Fatal("two rooms created for one meeting id")
	}
	if rg.Len() != 1 {
		t.Fatalf("registry has %d rooms, want 1", rg.Len())
	}
}

func TestConcurrentFirstCreate(t *testing.T) {
	rg := NewRegistry(time.Minute)

	const n = 32
	rooms := make([]*Room, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			rooms[i] = rg.GetOrCreate("m1", "H")
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		if rooms[i] != rooms[0] {
			t.Fatal("concurrent first connections produced distinct rooms")
		}
	}
	if rg.Len() != 1 {
		t.Fatalf("registry has %d rooms, want 1", rg.Len())
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached before deadline")
}

func TestEmptyRoomEvictedAfterGrace(t *testing.T) {
	rg := NewRegistry(20 * time.Millisecond)
	room := rg.GetOrCreate("m1", "H")

	host, _ := newTestParticipant("H", "Host")
	room.Admit(host)
	room.Leave(host)

	waitFor(t, 2*time.Second, func() bool { return rg.Len() == 0 })
}

func TestReentryCancelsEviction(t *testing.T) {
	rg := NewRegistry(50 * time.Millisecond)
	room := rg.GetOrCreate("m1", "H")

	host, _ := newTestParticipant("H", "Host")
	room.Admit(host)
	room.Leave(host)

	// Come back before the grace period runs out.
	again := rg.GetOrCreate("m1", "H")
	if again != room {
		t.Fatal("re-entry within grace produced a fresh room")
	}
	host2, _ := newTestParticipant("H", "Host")
	again.Admit(host2)

	time.Sleep(150 * time.Millisecond)
	if rg.Len() != 1 {
		t.Fatalf("occupied room evicted, registry has %d rooms", rg.Len())
	}
}

func TestListSnapshotsOccupancy(t *testing.T) {
	rg := NewRegistry(time.Minute)
	room := rg.GetOrCreate("m1", "H")
	host, _ := newTestParticipant("H", "Host")
	guest, _ := newTestParticipant("G", "Guest")
	room.Admit(host)
	room.Admit(guest)

	infos := rg.List()
	if len(infos) != 1 {
		t.Fatalf("List returned %d entries, want 1", len(infos))
	}
	if infos[0].MeetingID != "m1" || infos[0].Active != 1 || infos[0].Waiting != 1 {
		t.Fatalf("info = %+v", infos[0])
	}
}
