package main

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestProcessStats_Self(t *testing.T) {
	stats, err := processStats(context.Background(), int32(os.Getpid()))
	if err != nil {
		t.Fatalf("processStats() error = %v", err)
	}
	if stats.RSS == 0 {
		t.Error("RSS = 0")
	}
	if stats.Started.After(time.Now()) {
		t.Errorf("Started = %v is in the future", stats.Started)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := map[uint64]string{
		0:                "0 B",
		1023:             "1023 B",
		1024:             "1.0 KiB",
		1536:             "1.5 KiB",
		32 * 1024 * 1024: "32.0 MiB",
		3 << 30:          "3.0 GiB",
	}
	for n, want := range tests {
		if got := formatBytes(n); got != want {
			t.Errorf("formatBytes(%d) = %q; want %q", n, got, want)
		}
	}
}
