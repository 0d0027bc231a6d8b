package retry_test

import (
	"testing"
	"time"

	"baseline-cli/internal/retry"
)

func TestNeverSleep(t *testing.T) {
	_, exceeded := retry.NewNever().Sleep(0)
	if !exceeded {
		t.Error("Expected Never to be exceeded immediately")
	}
}

func TestExponentialBackOffSleep(t *testing.T) {
	// fixed entropy so delays are deterministic
	identity := func(i int64) int64 { return i }

	t.Run("DoublesPerRetry", func(t *testing.T) {
		backOff := retry.NewExponentialBackOff(10*time.Millisecond, 1*time.Second, 3, identity)

		for retryCount, want := range map[uint]time.Duration{
			0: 10 * time.Millisecond,
			1: 20 * time.Millisecond,
			2: 40 * time.Millisecond,
		} {
			sleep, exceeded := backOff.Sleep(retryCount)
			if exceeded {
				t.Errorf("Sleep(%d) reported exceeded before maxRetryCount", retryCount)
			}
			if sleep != want {
				t.Errorf("Sleep(%d) = %v, want %v", retryCount, sleep, want)
			}
		}
	})

	t.Run("CappedAtMax", func(t *testing.T) {
		backOff := retry.NewExponentialBackOff(10*time.Millisecond, 1*time.Second, 20, identity)

		sleep, exceeded := backOff.Sleep(10)
		if exceeded {
			t.Error("Sleep reported exceeded before maxRetryCount")
		}
		if sleep != 1*time.Second {
			t.Errorf("Expected delay capped at 1s, got %v", sleep)
		}
	})

	t.Run("ExceededAtMaxRetryCount", func(t *testing.T) {
		backOff := retry.NewExponentialBackOff(10*time.Millisecond, 1*time.Second, 3, identity)

		if _, exceeded := backOff.Sleep(3); !exceeded {
			t.Error("Expected Sleep(3) with maxRetryCount 3 to be exceeded")
		}
	})
}
