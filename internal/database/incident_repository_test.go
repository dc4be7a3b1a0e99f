package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/RESPONDR/respondr/internal/models"
)

func seedIncident(t *testing.T, repo *MemoryIncidentRepository, id string, status models.IncidentStatus, reportedAt time.Time) {
	t.Helper()
	err := repo.Create(context.Background(), models.IncidentReport{
		ID:           id,
		IncidentType: models.IncidentFire,
		CallerID:     "caller-1",
		CallerType:   models.CallerVerified,
		Status:       status,
		ReportedAt:   reportedAt,
	})
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
}

func TestMemoryIncidentRepository_CreateAndGet(t *testing.T) {
	repo := NewMemoryIncidentRepository()
	ctx := context.Background()

	seedIncident(t, repo, "inc-1", models.IncidentStatusActive, time.Now())

	report, err := repo.GetByID(ctx, "inc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report == nil || report.ID != "inc-1" {
		t.Fatalf("unexpected report: %+v", report)
	}

	missing, err := repo.GetByID(ctx, "ghost")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown id, got %+v", missing)
	}
}

func TestMemoryIncidentRepository_ListNewestFirst(t *testing.T) {
	repo := NewMemoryIncidentRepository()
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedIncident(t, repo, fmt.Sprintf("inc-%d", i), models.IncidentStatusActive, base.Add(time.Duration(i)*time.Minute))
	}

	reports, err := repo.List(ctx, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(reports) != 3 {
		t.Fatalf("len = %d, want 3", len(reports))
	}
	if reports[0].ID != "inc-4" || reports[2].ID != "inc-2" {
		t.Errorf("expected newest first, got %s..%s", reports[0].ID, reports[2].ID)
	}
}

func TestMemoryIncidentRepository_UpdateStatus(t *testing.T) {
	repo := NewMemoryIncidentRepository()
	ctx := context.Background()

	seedIncident(t, repo, "inc-1", models.IncidentStatusActive, time.Now())

	if err := repo.UpdateStatus(ctx, "inc-1", models.IncidentStatusResolved); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	active, err := repo.ListByStatus(ctx, models.IncidentStatusActive, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("expected no active incidents, got %d", len(active))
	}

	if err := repo.UpdateStatus(ctx, "ghost", models.IncidentStatusResolved); err == nil {
		t.Error("expected error for unknown incident")
	}
}

func TestMemoryIncidentRepository_Summary(t *testing.T) {
	repo := NewMemoryIncidentRepository()
	ctx := context.Background()

	now := time.Now()
	reports := []models.IncidentReport{
		{ID: "a", IncidentType: models.IncidentFire, Status: models.IncidentStatusActive, SeverityScore: 9.0, PrankConfidence: 0.1, ReportedAt: now},
		{ID: "b", IncidentType: models.IncidentFire, Status: models.IncidentStatusResolved, SeverityScore: 4.0, PrankConfidence: 0.2, ReportedAt: now},
		{ID: "c", IncidentType: models.IncidentFlood, Status: models.IncidentStatusActive, SeverityScore: 8.5, PrankConfidence: 0.9, ReportedAt: now},
	}
	for _, report := range reports {
		if err := repo.Create(ctx, report); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	summary, err := repo.Summary(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.Total != 3 {
		t.Errorf("total = %d, want 3", summary.Total)
	}
	if summary.Active != 2 {
		t.Errorf("active = %d, want 2", summary.Active)
	}
	// "c" is severe but almost certainly a prank, so only "a" is critical.
	if summary.Critical != 1 {
		t.Errorf("critical = %d, want 1", summary.Critical)
	}
	if summary.ByType[models.IncidentFire] != 2 || summary.ByType[models.IncidentFlood] != 1 {
		t.Errorf("by_type = %v", summary.ByType)
	}
}
