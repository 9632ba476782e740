package feedback

import (
	"testing"
	"time"

	"github.com/desertthunder/kidspot/internal/hardware"
)

var testPins = map[string]int{"red": 17, "green": 27, "blue": 22}

func TestPanel(t *testing.T) {
	t.Run("Starts All Off", func(t *testing.T) {
		driver := hardware.NewMemoryDriver()
		panel := NewPanel(driver, testPins, nil)
		defer panel.Shutdown()

		for name, pin := range testPins {
			if panel.State(name) != Off {
				t.Errorf("expected %s off initially", name)
			}
			if driver.Output(pin) != hardware.Low {
				t.Errorf("expected pin %d driven low initially", pin)
			}
		}
	})

	t.Run("On And Off", func(t *testing.T) {
		driver := hardware.NewMemoryDriver()
		panel := NewPanel(driver, testPins, nil)
		defer panel.Shutdown()

		panel.On("green")
		if panel.State("green") != On {
			t.Error("expected green on")
		}
		if driver.Output(testPins["green"]) != hardware.High {
			t.Error("expected green pin high")
		}

		panel.Off("green")
		if panel.State("green") != Off {
			t.Error("expected green off")
		}
		if driver.Output(testPins["green"]) != hardware.Low {
			t.Error("expected green pin low")
		}
	})

	t.Run("Unknown Indicator Ignored", func(t *testing.T) {
		driver := hardware.NewMemoryDriver()
		panel := NewPanel(driver, testPins, nil)
		defer panel.Shutdown()

		panel.On("purple")
		panel.Blink("purple", time.Second)
		if panel.State("purple") != Off {
			t.Error("expected unknown indicator to stay off")
		}
	})

	t.Run("Blink Settles Off", func(t *testing.T) {
		driver := hardware.NewMemoryDriver()
		panel := NewPanel(driver, testPins, nil)
		defer panel.Shutdown()

		panel.Blink("red", 20*time.Millisecond)
		if panel.State("red") != Blinking {
			t.Error("expected red blinking")
		}

		deadline := time.Now().Add(time.Second)
		for panel.State("red") != Off {
			if time.Now().After(deadline) {
				t.Fatal("blink never settled off")
			}
			time.Sleep(5 * time.Millisecond)
		}
		if driver.Output(testPins["red"]) != hardware.Low {
			t.Error("expected red pin low after blink")
		}
	})

	t.Run("SignalError Uses Error Indicator", func(t *testing.T) {
		driver := hardware.NewMemoryDriver()
		panel := NewPanel(driver, testPins, nil)
		defer panel.Shutdown()

		panel.SignalError()
		if panel.State(ErrorIndicator) != Blinking {
			t.Errorf("expected %s blinking after error signal", ErrorIndicator)
		}
	})

	t.Run("SelfTest", func(t *testing.T) {
		driver := hardware.NewMemoryDriver()
		panel := NewPanel(driver, testPins, nil)
		defer panel.Shutdown()

		panel.SelfTest(time.Millisecond)
		for name, pin := range testPins {
			if panel.State(name) != Off {
				t.Errorf("expected %s off after self test", name)
			}
			if driver.Output(pin) != hardware.Low {
				t.Errorf("expected pin %d low after self test", pin)
			}
		}
	})

	t.Run("Shutdown", func(t *testing.T) {
		driver := hardware.NewMemoryDriver()
		panel := NewPanel(driver, testPins, nil)

		panel.On("blue")
		panel.Blink("red", time.Minute)
		panel.Shutdown()
		panel.Shutdown()

		if driver.Closes() != 1 {
			t.Errorf("expected 1 close, got %d", driver.Closes())
		}
		for name := range testPins {
			if panel.State(name) != Off {
				t.Errorf("expected %s off after shutdown", name)
			}
		}
	})
}
