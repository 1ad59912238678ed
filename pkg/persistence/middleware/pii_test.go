package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/digest/pkg/adapters/memory"
	"github.com/aretw0/digest/pkg/domain"
	"github.com/aretw0/digest/pkg/persistence/middleware"
)

func TestPIIMiddleware_Masking(t *testing.T) {
	underlying := memory.NewStore()
	mw, err := middleware.NewPIIMiddleware(middleware.DefaultPIIPatterns)
	if err != nil {
		t.Fatal(err)
	}
	store := mw(underlying)
	ctx := context.Background()

	rec := sampleRecord("pii")
	rec.Summary = "Contact jane.doe@example.com for details."
	rec.SearchResults = []domain.SearchResult{{Title: "Press", URL: "https://example.com", Content: "Call +1 (555) 123-4567 today"}}
	rec.HumanInstructions = "cite the 2024 report"

	if err := store.Save(ctx, rec); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if rec.Summary != "Contact jane.doe@example.com for details." {
		t.Error("Middleware modified the in-memory record")
	}

	stored, err := underlying.Load(ctx, "pii")
	if err != nil {
		t.Fatalf("Underlying load failed: %v", err)
	}
	if stored.Summary != "Contact *** for details." {
		t.Errorf("Email should be masked, got: %q", stored.Summary)
	}
	if stored.SearchResults[0].Content != "Call *** today" {
		t.Errorf("Phone should be masked, got: %q", stored.SearchResults[0].Content)
	}
	if stored.SearchResults[0].URL != "https://example.com" {
		t.Errorf("URL should be kept, got: %q", stored.SearchResults[0].URL)
	}
	if stored.HumanInstructions != "cite the 2024 report" {
		t.Errorf("Short numbers should be kept, got: %q", stored.HumanInstructions)
	}
}

func TestPIIMiddleware_InvalidPattern(t *testing.T) {
	if _, err := middleware.NewPIIMiddleware([]string{"("}); err == nil {
		t.Error("Expected error for invalid pattern")
	}
}

func TestChain_EncryptsRedactedRecords(t *testing.T) {
	underlying := memory.NewStore()
	pii, err := middleware.NewPIIMiddleware(middleware.DefaultPIIPatterns)
	if err != nil {
		t.Fatal(err)
	}
	enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	if err != nil {
		t.Fatal(err)
	}
	store := middleware.Chain(underlying, pii, enc)
	ctx := context.Background()

	rec := sampleRecord("chain")
	rec.Summary = "mail me at a@b.io"
	if err := store.Save(ctx, rec); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.Load(ctx, "chain")
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Summary != "mail me at ***" {
		t.Errorf("Expected redacted then decrypted summary, got %q", loaded.Summary)
	}
}
