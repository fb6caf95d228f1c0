package mood

import (
	"context"
	"errors"
	"testing"

	"github.com/shelfdex/shelfdex/internal/domain"
)

type mockClassifier struct {
	mood   domain.Mood
	err    error
	called bool
}

func (m *mockClassifier) Classify(_ context.Context, _ string) (domain.Mood, error) {
	m.called = true
	return m.mood, m.err
}

func TestDetect_Keywords(t *testing.T) {
	tests := []struct {
		text string
		want domain.Mood
	}{
		{"", domain.MoodNeutral},
		{"   ", domain.MoodNeutral},
		{"I feel so lonely tonight", domain.MoodSad},
		{"feeling anxious about everything", domain.MoodSad},
		{"I'm delighted, recommend something!", domain.MoodHappy},
		{"so excited for the weekend", domain.MoodHappy},
		{"SAD and tired", domain.MoodSad},
	}

	d := New(nil, nil)
	for _, tt := range tests {
		if got := d.Detect(context.Background(), tt.text); got != tt.want {
			t.Errorf("Detect(%q) = %s, want %s", tt.text, got, tt.want)
		}
	}
}

func TestDetect_KeywordBeatsClassifier(t *testing.T) {
	cls := &mockClassifier{mood: domain.MoodHappy}
	d := New(cls, nil)

	if got := d.Detect(context.Background(), "feeling down"); got != domain.MoodSad {
		t.Errorf("got %s, want sad", got)
	}
	if cls.called {
		t.Error("classifier must not run when a keyword matches")
	}
}

func TestDetect_ClassifierFallback(t *testing.T) {
	cls := &mockClassifier{mood: domain.MoodHappy}
	d := New(cls, nil)

	if got := d.Detect(context.Background(), "recommend me a space opera"); got != domain.MoodHappy {
		t.Errorf("got %s, want happy", got)
	}
	if !cls.called {
		t.Error("expected classifier fallback for non-keyword text")
	}
}

func TestDetect_ClassifierErrorDegradesToNeutral(t *testing.T) {
	cls := &mockClassifier{err: errors.New("backend down")}
	d := New(cls, nil)

	if got := d.Detect(context.Background(), "recommend a book"); got != domain.MoodNeutral {
		t.Errorf("got %s, want neutral", got)
	}
}

func TestDetect_UnknownClassifierLabelIsNeutral(t *testing.T) {
	cls := &mockClassifier{mood: domain.Mood("confused")}
	d := New(cls, nil)

	if got := d.Detect(context.Background(), "recommend a book"); got != domain.MoodNeutral {
		t.Errorf("got %s, want neutral", got)
	}
}
