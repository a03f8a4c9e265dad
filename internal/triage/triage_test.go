package triage

import (
	"testing"

	"github.com/existflow/bizflow/internal/model"
)

func TestClassifyLabels(t *testing.T) {
	cases := []struct {
		name string
		msg  model.Message
		want model.Priority
	}{
		{"empty", model.Message{}, model.PriorityLow},
		{"plain", model.Message{Sender: "Sato", Subject: "lunch", BodyPreview: "any time next week"}, model.PriorityLow},
		{"keyword in subject", model.Message{Subject: "ASAP: invoice"}, model.PriorityHigh},
		{"keyword in body", model.Message{BodyPreview: "the deadline moved"}, model.PriorityHigh},
		{"japanese keyword", model.Message{Subject: "【緊急】明日のプレゼン資料について"}, model.PriorityHigh},
		{"keyword is case sensitive", model.Message{Subject: "asap please"}, model.PriorityLow},
		{"sender marker", model.Message{Sender: "Yamada (Client Corp)"}, model.PriorityMedium},
		{"sender marker any case", model.Message{Sender: "the CUSTOMER desk"}, model.PriorityMedium},
		{"japanese sender", model.Message{Sender: "顧客サポート"}, model.PriorityMedium},
		{"same day marker", model.Message{BodyPreview: "Can we talk TODAY?"}, model.PriorityHigh},
		{"same day japanese", model.Message{BodyPreview: "今日の会議"}, model.PriorityHigh},
		{"same day only in body", model.Message{Subject: "today"}, model.PriorityLow},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.msg); got != tc.want {
				t.Fatalf("Classify(%+v) = %s, want %s", tc.msg, got, tc.want)
			}
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	msg := model.Message{Sender: "CEO office", Subject: "budget", BodyPreview: "numbers attached"}
	first := Classify(msg)
	for i := 0; i < 50; i++ {
		if got := Classify(msg); got != first {
			t.Fatalf("call %d returned %s, first call returned %s", i, got, first)
		}
	}
}

func TestClassifyMonotonic(t *testing.T) {
	base := model.Message{Sender: "Client Corp", Subject: "contract", BodyPreview: "please review"}
	if got := Classify(base); got != model.PriorityMedium {
		t.Fatalf("expected Medium baseline, got %s", got)
	}

	for _, kw := range urgencyKeywords {
		msg := base
		msg.BodyPreview += " " + kw
		got := Classify(msg)
		if got.Rank() < model.PriorityMedium.Rank() {
			t.Fatalf("adding %q lowered label to %s", kw, got)
		}
		if got != model.PriorityHigh {
			t.Fatalf("adding %q gave %s, want High", kw, got)
		}
	}
}

func TestAdviseTimingCardinalityAndOrder(t *testing.T) {
	for _, p := range model.Priorities {
		got := AdviseTiming(p)
		if len(got) != 3 {
			t.Fatalf("%s: expected 3 suggestions, got %d", p, len(got))
		}
		for i := 1; i < len(got); i++ {
			if got[i].Window < got[i-1].Window {
				t.Fatalf("%s: suggestion %d (%s) more urgent than %d (%s)",
					p, i, got[i].Window, i-1, got[i-1].Window)
			}
		}
		for _, s := range got {
			if s.Timing == "" || s.Reason == "" {
				t.Fatalf("%s: empty suggestion %+v", p, s)
			}
		}
	}
}

func TestAdviseTimingTable(t *testing.T) {
	want := map[model.Priority][]string{
		model.PriorityHigh:   {"immediately", "within 30 minutes", "within 1 hour"},
		model.PriorityMedium: {"immediately (brief ack)", "today", "tomorrow morning"},
		model.PriorityLow:    {"today", "tomorrow", "within 3 days"},
	}
	for p, timings := range want {
		got := AdviseTiming(p)
		for i, timing := range timings {
			if got[i].Timing != timing {
				t.Fatalf("%s[%d] = %q, want %q", p, i, got[i].Timing, timing)
			}
		}
	}
}

func TestAdviseTimingUnknownLabel(t *testing.T) {
	got := AdviseTiming(model.Priority("whatever"))
	if got[0].Timing != "today" {
		t.Fatalf("unknown label should degrade to Low, got %+v", got)
	}
}

func TestAdviseTimingReturnsCopy(t *testing.T) {
	got := AdviseTiming(model.PriorityHigh)
	got[0].Timing = "never"
	if again := AdviseTiming(model.PriorityHigh); again[0].Timing != "immediately" {
		t.Fatalf("table was mutated through returned slice: %+v", again)
	}
}

func TestAdviseTimingForMessage(t *testing.T) {
	msg := model.Message{
		Subject:     "Urgent: contract review",
		Sender:      "Client Corp",
		BodyPreview: "Need this today",
	}
	p, got := AdviseTimingFor(msg)
	if p != model.PriorityHigh {
		t.Fatalf("expected High, got %s", p)
	}
	if got[0].Timing != "immediately" {
		t.Fatalf("expected immediately first, got %q", got[0].Timing)
	}
}
