package input

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/kidspot/internal/hardware"
	"github.com/desertthunder/kidspot/internal/services"
	"github.com/desertthunder/kidspot/internal/shared"
	mocks "github.com/desertthunder/kidspot/internal/testing"
)

func TestButtonsFromConfig(t *testing.T) {
	t.Run("Stable Order", func(t *testing.T) {
		buttons, err := ButtonsFromConfig(map[string]int{
			"volume_down": 26,
			"play":        5,
			"prev":        13,
			"next":        6,
			"volume_up":   20,
		})
		if err != nil {
			t.Fatalf("failed to resolve buttons: %v", err)
		}

		expected := []string{"play", "next", "prev", "volume_up", "volume_down"}
		if len(buttons) != len(expected) {
			t.Fatalf("expected %d buttons, got %d", len(expected), len(buttons))
		}
		for i, name := range expected {
			if buttons[i].Name != name {
				t.Errorf("expected %s at position %d, got %s", name, i, buttons[i].Name)
			}
		}
	})

	t.Run("Partial Config", func(t *testing.T) {
		buttons, err := ButtonsFromConfig(map[string]int{"play": 5})
		if err != nil {
			t.Fatalf("failed to resolve buttons: %v", err)
		}
		if len(buttons) != 1 || buttons[0].Action != ActionPlayPause {
			t.Errorf("expected single play button, got %+v", buttons)
		}
	})

	t.Run("Unknown Name", func(t *testing.T) {
		_, err := ButtonsFromConfig(map[string]int{"eject": 9})
		if !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func testDispatcher(session Player) *ButtonDispatcher {
	return NewButtonDispatcher(ButtonDispatcherOpts{
		Reader:  hardware.NewMemoryDriver(),
		Session: session,
	})
}

func TestTogglePlay(t *testing.T) {
	ctx := context.Background()

	t.Run("Pauses When Playing", func(t *testing.T) {
		session := mocks.NewMockPlayer()
		session.Snapshot = &services.PlaybackSnapshot{
			IsPlaying: true,
			Item:      &services.PlaybackItem{URI: "spotify:track:xyz789"},
		}

		testDispatcher(session).togglePlay(ctx)

		if session.PauseCalls != 1 {
			t.Errorf("expected 1 pause, got %d", session.PauseCalls)
		}
		if len(session.Plays()) != 0 {
			t.Errorf("expected no play calls, got %v", session.Plays())
		}
	})

	t.Run("Resumes Current Item", func(t *testing.T) {
		session := mocks.NewMockPlayer()
		session.Snapshot = &services.PlaybackSnapshot{
			IsPlaying: false,
			Item:      &services.PlaybackItem{URI: "spotify:track:xyz789"},
		}

		testDispatcher(session).togglePlay(ctx)

		plays := session.Plays()
		if len(plays) != 1 || plays[0] != "spotify:track:xyz789" {
			t.Errorf("expected play of current item, got %v", plays)
		}
	})

	t.Run("Falls Back To Last Target", func(t *testing.T) {
		session := mocks.NewMockPlayer()
		session.Last = "spotify:album:abc123"

		testDispatcher(session).togglePlay(ctx)

		plays := session.Plays()
		if len(plays) != 1 || plays[0] != "spotify:album:abc123" {
			t.Errorf("expected play of last target, got %v", plays)
		}
	})

	t.Run("Nothing To Play", func(t *testing.T) {
		session := mocks.NewMockPlayer()

		testDispatcher(session).togglePlay(ctx)

		if len(session.Plays()) != 0 || session.PauseCalls != 0 {
			t.Error("expected no playback calls with no known item")
		}
	})
}

func TestPrevOrRestart(t *testing.T) {
	ctx := context.Background()

	t.Run("Lone Press Restarts", func(t *testing.T) {
		session := mocks.NewMockPlayer()
		session.Snapshot = &services.PlaybackSnapshot{
			Item: &services.PlaybackItem{URI: "spotify:track:xyz789"},
		}
		dispatcher := testDispatcher(session)

		dispatcher.prevOrRestart(ctx)

		if session.PreviousCalls != 0 {
			t.Errorf("expected no skip on lone press, got %d", session.PreviousCalls)
		}
		plays := session.Plays()
		if len(plays) != 1 || plays[0] != "spotify:track:xyz789" {
			t.Errorf("expected restart of current track, got %v", plays)
		}
	})

	t.Run("Double Press Skips Back", func(t *testing.T) {
		session := mocks.NewMockPlayer()
		session.Snapshot = &services.PlaybackSnapshot{
			Item: &services.PlaybackItem{URI: "spotify:track:xyz789"},
		}
		dispatcher := testDispatcher(session)

		dispatcher.prevOrRestart(ctx)
		dispatcher.prevOrRestart(ctx)

		if session.PreviousCalls != 1 {
			t.Errorf("expected 1 skip back, got %d", session.PreviousCalls)
		}
		if len(session.Plays()) != 1 {
			t.Errorf("expected only the first press to restart, got %v", session.Plays())
		}
	})
}

func TestStepVolume(t *testing.T) {
	ctx := context.Background()

	t.Run("From Reported Volume", func(t *testing.T) {
		session := mocks.NewMockPlayer()
		session.Snapshot = &services.PlaybackSnapshot{
			Device: services.Device{ID: "d1", VolumePercent: 40},
		}

		dispatcher := testDispatcher(session)
		dispatcher.stepVolume(ctx, dispatcher.volumeStep)

		if len(session.VolumeCalls) != 1 || session.VolumeCalls[0] != 45 {
			t.Errorf("expected volume 45, got %v", session.VolumeCalls)
		}
	})

	t.Run("Assumes Default When Unknown", func(t *testing.T) {
		session := mocks.NewMockPlayer()

		dispatcher := testDispatcher(session)
		dispatcher.stepVolume(ctx, -dispatcher.volumeStep)

		if len(session.VolumeCalls) != 1 || session.VolumeCalls[0] != 45 {
			t.Errorf("expected volume 45 from default 50, got %v", session.VolumeCalls)
		}
	})

	t.Run("Assumes Default When Device Missing", func(t *testing.T) {
		session := mocks.NewMockPlayer()
		session.Snapshot = &services.PlaybackSnapshot{
			Item: &services.PlaybackItem{URI: "spotify:track:xyz789"},
		}

		dispatcher := testDispatcher(session)
		dispatcher.stepVolume(ctx, dispatcher.volumeStep)

		if len(session.VolumeCalls) != 1 || session.VolumeCalls[0] != 55 {
			t.Errorf("expected volume 55 from default 50, got %v", session.VolumeCalls)
		}
	})

	t.Run("Clamped At Bounds", func(t *testing.T) {
		session := mocks.NewMockPlayer()
		session.Snapshot = &services.PlaybackSnapshot{
			Device: services.Device{ID: "d1", VolumePercent: 98},
		}

		dispatcher := testDispatcher(session)
		dispatcher.stepVolume(ctx, dispatcher.volumeStep)

		session.Snapshot.Device.VolumePercent = 2
		dispatcher.stepVolume(ctx, -dispatcher.volumeStep)

		if len(session.VolumeCalls) != 2 || session.VolumeCalls[0] != 100 || session.VolumeCalls[1] != 0 {
			t.Errorf("expected clamped volumes [100 0], got %v", session.VolumeCalls)
		}
	})
}

func TestButtonDispatcherRun(t *testing.T) {
	driver := hardware.NewMemoryDriver()
	session := mocks.NewMockPlayer()

	dispatcher := NewButtonDispatcher(ButtonDispatcherOpts{
		Reader:     driver,
		Session:    session,
		Buttons:    []Button{{Name: "next", Pin: 6, Action: ActionNext}},
		ScanPeriod: time.Millisecond,
		Debounce:   time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		dispatcher.Run(ctx)
	}()

	driver.SetLevel(6, hardware.Low)

	deadline := time.Now().Add(time.Second)
	for {
		if session.Nexts() > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("button press never dispatched")
		}
		time.Sleep(time.Millisecond)
	}

	cancel()
	wg.Wait()
}
