package decision

import (
	"math"
	"strings"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestDetect_EmptyInput(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t"} {
		got := Detect(text, nil, 0)
		if got.Confidence != 0 || got.IsDecision || got.ExtractedTitle != "" {
			t.Errorf("Detect(%q) = %+v, want zero detection", text, got)
		}
	}
}

func TestDetect_TwoKeywordsBelowThreshold(t *testing.T) {
	got := Detect("We decided and agreed", nil, 0)

	if !almostEqual(got.Confidence, 0.8) {
		t.Errorf("Confidence = %v, want 0.8 for two keywords", got.Confidence)
	}
	if got.IsDecision {
		t.Error("0.8 is below the 0.85 threshold")
	}
	if len(got.Signals) != 2 {
		t.Errorf("Signals = %v, want two keyword signals", got.Signals)
	}
}

func TestDetect_KoreanKeywordWithReaction(t *testing.T) {
	got := Detect("확정", []string{"white_check_mark"}, 0)

	if !almostEqual(got.Confidence, 0.9) {
		t.Errorf("Confidence = %v, want 0.9", got.Confidence)
	}
	if !got.IsDecision {
		t.Error("0.9 crosses the threshold")
	}
}

func TestDetect_ThreadAgreement(t *testing.T) {
	without := Detect("we will ship it", nil, 1)
	with := Detect("we will ship it", nil, 2)

	if !almostEqual(with.Confidence-without.Confidence, DefaultThreadWeight) {
		t.Errorf("thread bonus = %v, want %v", with.Confidence-without.Confidence, DefaultThreadWeight)
	}
	if len(without.Signals) != 1 || len(with.Signals) != 2 {
		t.Errorf("signals: without=%v with=%v", without.Signals, with.Signals)
	}
}

func TestDetect_UnknownReactionIgnored(t *testing.T) {
	got := Detect("just chatting", []string{"eyes", "tada"}, 0)
	if got.Confidence != 0 {
		t.Errorf("Confidence = %v, unknown reactions must not score", got.Confidence)
	}
}

func TestDetect_ConfidenceClamped(t *testing.T) {
	got := Detect(
		"decided, agreed, confirmed: let's go with plan A",
		[]string{"white_check_mark", "thumbsup"},
		5,
	)
	if got.Confidence != 1 {
		t.Errorf("Confidence = %v, want clamp to 1", got.Confidence)
	}
	if !got.IsDecision {
		t.Error("clamped maximum is a decision")
	}
}

func TestDetect_Monotonic(t *testing.T) {
	base := Detect("agreed", nil, 0)
	more := Detect("agreed and decided", nil, 0)
	withReaction := Detect("agreed and decided", []string{"thumbsup"}, 0)
	withThread := Detect("agreed and decided", []string{"thumbsup"}, 3)

	if base.Confidence > more.Confidence ||
		more.Confidence > withReaction.Confidence ||
		withReaction.Confidence > withThread.Confidence {
		t.Errorf("confidence must be non-decreasing: %v %v %v %v",
			base.Confidence, more.Confidence, withReaction.Confidence, withThread.Confidence)
	}
}

func TestExtractTitle_SentenceTerminator(t *testing.T) {
	got := Detect("Ship v2 next week. Details to follow in the doc.", nil, 0)
	if got.ExtractedTitle != "Ship v2 next week." {
		t.Errorf("title = %q", got.ExtractedTitle)
	}
}

func TestExtractTitle_DotInsideTokenKept(t *testing.T) {
	got := Detect("upgrade to v3.5 for the launch", nil, 0)
	if got.ExtractedTitle != "upgrade to v3.5 for the launch" {
		t.Errorf("title = %q, version dots must not terminate", got.ExtractedTitle)
	}
}

func TestExtractTitle_ShortTextAsIs(t *testing.T) {
	got := Detect("ship it", nil, 0)
	if got.ExtractedTitle != "ship it" {
		t.Errorf("title = %q", got.ExtractedTitle)
	}
}

func TestExtractTitle_LongTextTruncated(t *testing.T) {
	long := strings.Repeat("a", 150)
	got := Detect(long, nil, 0)

	runes := []rune(got.ExtractedTitle)
	if len(runes) != DefaultTitleMaxLen+1 {
		t.Fatalf("title length = %d runes, want %d plus ellipsis", len(runes), DefaultTitleMaxLen+1)
	}
	if runes[len(runes)-1] != '…' {
		t.Errorf("title must end with ellipsis, got %q", got.ExtractedTitle)
	}
}

func TestExtractTitle_FullWidthPeriod(t *testing.T) {
	got := Detect("출시를 확정했습니다。 자세한 내용은 문서 참고", nil, 0)
	if got.ExtractedTitle != "출시를 확정했습니다。" {
		t.Errorf("title = %q", got.ExtractedTitle)
	}
}

func TestConfig_CustomThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Threshold = 0.4

	got := cfg.Detect("we agreed", nil, 0)
	if !got.IsDecision {
		t.Errorf("one keyword (%v) meets a lowered threshold of 0.4", got.Confidence)
	}
}
