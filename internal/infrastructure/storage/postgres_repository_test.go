package storage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lib/pq"

	"ContentActivation/internal/audit"
	"ContentActivation/internal/domain"
)

func TestInsertQuery(t *testing.T) {
	t.Parallel()

	rec := audit.Record{
		ActivationID: "act-1",
		Timestamp:    "2026-03-01T09:00:01Z",
		Success:      true,
		ContentInput: audit.ContentInput{EntryID: "entry-1", ListID: "L1", Tags: []string{"webinar", "marketer"}},
		Errors:       []string{},
		ProcessingMetadata: audit.Metadata{
			ProviderUsed: "openai",
			FinalState:   domain.StateLogged,
		},
	}

	query, args, err := insertQuery(rec)
	if err != nil {
		t.Fatalf("insertQuery returned error: %v", err)
	}
	if !strings.HasPrefix(query, "INSERT INTO activation_history") {
		t.Fatalf("unexpected query: %s", query)
	}
	if !strings.Contains(query, "$9") || strings.Contains(query, "?") {
		t.Fatalf("expected dollar placeholders, got %s", query)
	}
	if !strings.HasSuffix(query, "ON CONFLICT (activation_id) DO NOTHING") {
		t.Fatalf("insert must not overwrite history: %s", query)
	}
	if len(args) != 9 {
		t.Fatalf("expected 9 args, got %d", len(args))
	}
	if args[0] != "act-1" || args[1] != "entry-1" || args[4] != "logged" {
		t.Fatalf("unexpected args: %v", args)
	}
	tags, ok := args[5].(pq.StringArray)
	if !ok || len(tags) != 2 {
		t.Fatalf("tags should be a text array, got %T %v", args[5], args[5])
	}
	if payload, _ := args[8].(string); !strings.Contains(payload, `"activation_id":"act-1"`) {
		t.Fatalf("payload should carry the full record, got %v", args[8])
	}
}

func TestLatestQuery(t *testing.T) {
	t.Parallel()

	query, args, err := latestQuery("entry-1")
	if err != nil {
		t.Fatalf("latestQuery returned error: %v", err)
	}
	want := "SELECT payload FROM activation_history WHERE content_id = $1 ORDER BY recorded_at DESC LIMIT 1"
	if query != want {
		t.Fatalf("unexpected query:\n got %s\nwant %s", query, want)
	}
	if len(args) != 1 || args[0] != "entry-1" {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestNilDatabaseIsNoop(t *testing.T) {
	t.Parallel()

	repo := NewPostgresRepository(nil)
	if err := repo.Write(context.Background(), audit.Record{ActivationID: "x"}); err != nil {
		t.Fatalf("Write with nil db: %v", err)
	}
	if _, err := repo.Latest(context.Background(), "x"); !errors.Is(err, audit.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
