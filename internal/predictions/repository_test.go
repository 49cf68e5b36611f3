package predictions

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestInMemory_CreateAndList(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	first, err := repo.Create(ctx, &Prediction{UserID: "u1", ImageRef: "uploads/a.jpg", Label: "class_2", Probability: 0.61})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.ID == "" || first.CreatedAt.IsZero() {
		t.Error("expected id and created_at to be set")
	}

	if _, err := repo.Create(ctx, &Prediction{UserID: "u2", ImageRef: "uploads/b.jpg", Label: "cancerous", Probability: 0.82}); err != nil {
		t.Fatalf("create: %v", err)
	}

	mine, err := repo.ListByUser(ctx, "u1", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(mine) != 1 || mine[0].Label != "class_2" {
		t.Errorf("unexpected user listing: %+v", mine)
	}

	all, err := repo.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 rows, got %d", len(all))
	}
}

func TestInMemory_ListLimit(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if _, err := repo.Create(ctx, &Prediction{UserID: "u1", Label: "benign", Probability: 0.4}); err != nil {
			t.Fatal(err)
		}
	}
	rows, err := repo.ListByUser(ctx, "u1", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Errorf("expected limit 3, got %d", len(rows))
	}
}

func TestPostgres_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	createdAt := time.Now().UTC()
	mock.ExpectQuery("INSERT INTO predictions").
		WithArgs(pgxmock.AnyArg(), "u1", "uploads/a.jpg", "cancerous", 0.82).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(createdAt))

	repo := NewPostgresRepository(mock)
	p, err := repo.Create(context.Background(), &Prediction{
		UserID:      "u1",
		ImageRef:    "uploads/a.jpg",
		Label:       "cancerous",
		Probability: 0.82,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.CreatedAt != createdAt {
		t.Errorf("expected returned created_at, got %s", p.CreatedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPostgres_ListByUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	id := uuid.NewString()
	mock.ExpectQuery("SELECT (.+) FROM predictions").
		WithArgs("u1", 25).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "image_ref", "label", "probability", "created_at"}).
			AddRow(id, "u1", "uploads/a.jpg", "benign", 0.3, time.Now()))

	repo := NewPostgresRepository(mock)
	rows, err := repo.ListByUser(context.Background(), "u1", 25)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != id {
		t.Errorf("unexpected rows: %+v", rows)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
