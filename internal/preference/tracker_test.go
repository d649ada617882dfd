package preference

import (
	"bufio"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/nvandessel/acsim/internal/config"
	"github.com/nvandessel/acsim/internal/logging"
	"github.com/nvandessel/acsim/internal/models"
)

func newTracker() *Tracker {
	cfg := config.Default()
	return New(cfg.Preference, cfg.Comfort, nil)
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestFeedback(t *testing.T) {
	tr := newTracker()
	tests := []struct {
		temp float64
		want models.FeedbackLabel
	}{
		{30, models.FeedbackTooHot},
		{25.01, models.FeedbackTooHot},
		{25, models.FeedbackJustRight},
		{23, models.FeedbackJustRight},
		{22, models.FeedbackJustRight},
		{21.99, models.FeedbackTooCold},
		{15, models.FeedbackTooCold},
	}
	for _, tt := range tests {
		if got := tr.Feedback(tt.temp); got != tt.want {
			t.Errorf("Feedback(%g) = %q, want %q", tt.temp, got, tt.want)
		}
	}
	if len(tr.History()) != 0 {
		t.Error("Feedback must not record history")
	}
}

func TestUpdate_TooHotSingleStep(t *testing.T) {
	tr := newTracker()
	got := tr.Update(30, models.FeedbackTooHot)
	if !approx(got, 23.4) {
		t.Errorf("expected 23.4, got %g", got)
	}
	if !approx(tr.Preferred(), 23.4) {
		t.Errorf("Preferred() = %g, want 23.4", tr.Preferred())
	}
}

func TestUpdate_TooCold(t *testing.T) {
	tr := newTracker()
	got := tr.Update(20, models.FeedbackTooCold)
	if !approx(got, 23.6) {
		t.Errorf("expected 23.6, got %g", got)
	}
}

func TestUpdate_JustRightIsNoOp(t *testing.T) {
	tr := newTracker()
	got := tr.Update(23, models.FeedbackJustRight)
	if got != 24 {
		t.Errorf("expected 24 unchanged, got %g", got)
	}
	h := tr.History()
	if len(h) != 1 || h[0].Feedback != models.FeedbackJustRight || h[0].Preferred != 24 {
		t.Errorf("expected one just-right entry, got %+v", h)
	}
}

func TestRecommend(t *testing.T) {
	tr := newTracker()
	pref, fb := tr.Recommend(30)
	if fb != models.FeedbackTooHot || !approx(pref, 23.4) {
		t.Errorf("Recommend(30) = (%g, %q), want (23.4, too hot)", pref, fb)
	}
	pref, fb = tr.Recommend(23)
	if fb != models.FeedbackJustRight || !approx(pref, 23.4) {
		t.Errorf("Recommend(23) = (%g, %q), want (23.4, just right)", pref, fb)
	}
	if n := len(tr.History()); n != 2 {
		t.Errorf("expected 2 history entries, got %d", n)
	}
}

func TestRecommend_ConvergesMonotonically(t *testing.T) {
	// Hot readings above the preference always lower it.
	tr := newTracker()
	prev := tr.Preferred()
	for i := 0; i < 20; i++ {
		pref, fb := tr.Recommend(26)
		if fb != models.FeedbackTooHot {
			t.Fatalf("step %d: expected too hot, got %q", i, fb)
		}
		if pref >= prev {
			t.Fatalf("step %d: preference did not decrease (%g -> %g)", i, prev, pref)
		}
		prev = pref
	}

	tr = newTracker()
	prev = tr.Preferred()
	for i := 0; i < 20; i++ {
		pref, _ := tr.Recommend(21)
		if pref >= prev {
			t.Fatalf("cold step %d: expected preference to move toward 21 (%g -> %g)", i, prev, pref)
		}
		if pref < 21 {
			t.Fatalf("cold step %d: overshot 21: %g", i, pref)
		}
		prev = pref
	}
}

func TestHistory_Limit(t *testing.T) {
	cfg := config.Default()
	cfg.Preference.HistoryLimit = 3
	tr := New(cfg.Preference, cfg.Comfort, nil)

	temps := []float64{30, 29, 28, 27, 26}
	for _, temp := range temps {
		tr.Recommend(temp)
	}

	h := tr.History()
	if len(h) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(h))
	}
	if h[0].ObservedTemp != 28 || h[2].ObservedTemp != 26 {
		t.Errorf("expected the last three updates, got %+v", h)
	}
	if h[2].Preferred != tr.Preferred() {
		t.Errorf("last entry %g should match current preference %g", h[2].Preferred, tr.Preferred())
	}
}

func TestHistory_IsCopy(t *testing.T) {
	tr := newTracker()
	tr.Recommend(30)
	h := tr.History()
	h[0].Preferred = 99
	if tr.History()[0].Preferred == 99 {
		t.Error("History must return a copy")
	}
}

func TestUpdate_LogsDecisions(t *testing.T) {
	dir := t.TempDir()
	dl := logging.NewDecisionLogger(dir, "debug")
	if dl == nil {
		t.Fatal("expected decision logger at debug level")
	}
	cfg := config.Default()
	tr := New(cfg.Preference, cfg.Comfort, dl)
	tr.Recommend(30)
	tr.Recommend(20)
	dl.Close()

	f, err := os.Open(filepath.Join(dir, "decisions.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var events []map[string]any
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("bad line %q: %v", scanner.Text(), err)
		}
		events = append(events, e)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0]["event"] != "preference_update" || events[0]["feedback"] != "too hot" {
		t.Errorf("unexpected first event %v", events[0])
	}
}
