package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ContentActivation/internal/domain"
	"ContentActivation/internal/ports"
)

func notice() ports.ReviewNotice {
	return ports.ReviewNotice{
		ActivationID:    "act-1",
		ContentID:       "entry-1",
		Title:           "Lead Scoring Playbook",
		Status:          domain.VoiceFail,
		Score:           0.31,
		Failing:         []domain.VoiceCategory{domain.CategoryProfessionalism},
		Recommendations: []string{"Replace casual language with professional phrasing"},
	}
}

func TestNotifyReviewPostsMessage(t *testing.T) {
	t.Parallel()

	var gotPath, gotText, gotChat string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotText = r.PostForm.Get("text")
		gotChat = r.PostForm.Get("chat_id")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL+"/", "TOKEN", "42")
	if err := n.NotifyReview(context.Background(), notice()); err != nil {
		t.Fatalf("NotifyReview returned error: %v", err)
	}
	if gotPath != "/botTOKEN/sendMessage" {
		t.Fatalf("unexpected path %s", gotPath)
	}
	if gotChat != "42" {
		t.Fatalf("unexpected chat id %s", gotChat)
	}
	if !strings.Contains(gotText, "Activation blocked") || !strings.Contains(gotText, "professionalism") {
		t.Fatalf("unexpected message: %s", gotText)
	}
}

func TestNotifyReviewErrors(t *testing.T) {
	t.Parallel()

	if err := NewNotifier("", "", "").NotifyReview(context.Background(), notice()); err == nil {
		t.Fatalf("expected misconfiguration error")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	err := NewNotifier(srv.URL, "TOKEN", "42").NotifyReview(context.Background(), notice())
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestFormatNoticeAdvisory(t *testing.T) {
	t.Parallel()

	n := notice()
	n.Status = domain.VoiceAdvisory
	n.Failing = nil
	msg := FormatNotice(n)
	if !strings.HasPrefix(msg, "*Review suggested*") {
		t.Fatalf("unexpected heading: %s", msg)
	}
	if strings.Contains(msg, "Failing:") {
		t.Fatalf("advisory without failing categories should not list any: %s", msg)
	}
}

func TestFormatNoticeEscapesMarkdown(t *testing.T) {
	t.Parallel()

	n := notice()
	n.Title = "Lead_scoring *2.0* [beta]"
	n.ContentID = "entry`1"
	n.Failing = []domain.VoiceCategory{domain.CategoryActionOrientation}
	n.Recommendations = []string{"Use a *clear* call_to_action"}
	msg := FormatNotice(n)

	for _, want := range []string{
		`Lead\_scoring \*2.0\* \[beta]`,
		"(`entry'1`)",
		`action\_orientation`,
		`Use a \*clear\* call\_to\_action`,
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected %q in message: %s", want, msg)
		}
	}
	if !strings.HasPrefix(msg, "*Activation blocked*") {
		t.Fatalf("heading must stay bold: %s", msg)
	}
}
