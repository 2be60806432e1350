package logging

import "testing"

func TestNewProgressSamplerDefaults(t *testing.T) {
	tests := []struct {
		name       string
		bucketSize int
		want       int
	}{
		{"zero uses default", 0, 10},
		{"negative uses default", -5, 10},
		{"custom", 25, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewProgressSampler(tt.bucketSize)
			if s.bucketSize != tt.want {
				t.Errorf("bucketSize = %d, want %d", s.bucketSize, tt.want)
			}
			if s.lastBucket != -1 {
				t.Errorf("lastBucket = %d, want -1", s.lastBucket)
			}
		})
	}
}

func TestProgressSamplerNil(t *testing.T) {
	var s *ProgressSampler
	if !s.ShouldLog(50, "clip") {
		t.Error("nil sampler should always log")
	}
	s.Reset()
}

func TestProgressSamplerBuckets(t *testing.T) {
	s := NewProgressSampler(10)

	if !s.ShouldLog(0, "clip") {
		t.Error("first event should log")
	}
	if s.ShouldLog(7, "clip") {
		t.Error("7% is in the same bucket")
	}
	if !s.ShouldLog(12, "clip") {
		t.Error("12% crosses into a new bucket")
	}
	if !s.ShouldLog(100, "clip") {
		t.Error("100% should log")
	}
	if s.ShouldLog(140, "clip") {
		t.Error("values above 100 share the final bucket")
	}
}

func TestProgressSamplerLabelChangeResetsBucket(t *testing.T) {
	s := NewProgressSampler(10)
	s.ShouldLog(80, "thumbnail")

	if !s.ShouldLog(0, "clip") {
		t.Error("label change should log")
	}
	if !s.ShouldLog(10, "clip") {
		t.Error("bucket should restart after label change")
	}
}

func TestProgressSamplerUnknownPercent(t *testing.T) {
	s := NewProgressSampler(10)
	if !s.ShouldLog(-1, "clip") {
		t.Error("first label should log")
	}
	if s.ShouldLog(-1, "clip") {
		t.Error("unknown percent should not log again")
	}
	s.Reset()
	if !s.ShouldLog(-1, "clip") {
		t.Error("should log after reset")
	}
}
