package store

import (
	"context"
	"testing"
	"time"

	"github.com/roach88/refdata/value"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(DefaultConfig())
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func genreSchema() (value.Column, value.Schema) {
	pk := value.Column{Name: "id", Type: value.TypeInteger}
	schema := value.Schema{Columns: []value.Column{
		{Name: "name", Type: value.TypeString},
		{Name: "slug", Type: value.TypeString},
	}}
	return pk, schema
}

func TestCreateTableAndInsert(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	pk, schema := genreSchema()

	if err := s.CreateTable(ctx, "genres", pk, schema); err != nil {
		t.Fatalf("CreateTable() failed: %v", err)
	}
	// Idempotent second call.
	if err := s.CreateTable(ctx, "genres", pk, schema); err != nil {
		t.Fatalf("CreateTable() second call failed: %v", err)
	}

	exists, err := s.TableExists(ctx, "genres")
	if err != nil {
		t.Fatalf("TableExists() failed: %v", err)
	}
	if !exists {
		t.Fatal("TableExists() = false after CreateTable")
	}

	err = s.Insert(ctx, "genres", value.Mapping{
		"id":   value.Int(1),
		"name": value.String("Rock"),
		"slug": value.String("rock"),
	})
	if err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}

	m, ok, err := s.FindByPK(ctx, "genres", value.Int(1))
	if err != nil {
		t.Fatalf("FindByPK() failed: %v", err)
	}
	if !ok {
		t.Fatal("FindByPK() found nothing")
	}
	if got := m["name"]; !value.Equal(got, value.String("Rock")) {
		t.Errorf("name = %#v, want Rock", got)
	}
	// The identity value was assigned explicitly, not auto-generated.
	if got := m["id"]; !value.Equal(got, value.Int(1)) {
		t.Errorf("id = %#v, want 1", got)
	}
}

func TestFindByPK_Missing(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	pk, schema := genreSchema()
	if err := s.CreateTable(ctx, "genres", pk, schema); err != nil {
		t.Fatalf("CreateTable() failed: %v", err)
	}

	_, ok, err := s.FindByPK(ctx, "genres", value.Int(99))
	if err != nil {
		t.Fatalf("FindByPK() failed: %v", err)
	}
	if ok {
		t.Error("FindByPK() found a row in an empty table")
	}
}

func TestInsert_UnknownColumn(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	pk, schema := genreSchema()
	if err := s.CreateTable(ctx, "genres", pk, schema); err != nil {
		t.Fatalf("CreateTable() failed: %v", err)
	}

	err := s.Insert(ctx, "genres", value.Mapping{
		"id":      value.Int(1),
		"name":    value.String("Rock"),
		"country": value.String("US"),
	})
	if !IsUnknownColumn(err) {
		t.Errorf("Insert() with extra column = %v, want unknown-column", err)
	}
}

func TestQueries_MissingRelation(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, _, err := s.FindByPK(ctx, "nothing", value.Int(1)); !IsMissingRelation(err) {
		t.Errorf("FindByPK() = %v, want missing-relation", err)
	}
	if _, err := s.FindEq(ctx, "nothing", "x", value.Int(1)); !IsMissingRelation(err) {
		t.Errorf("FindEq() = %v, want missing-relation", err)
	}
	if _, err := s.Count(ctx, "nothing"); !IsMissingRelation(err) {
		t.Errorf("Count() = %v, want missing-relation", err)
	}
}

func TestFindEqAndFindIn(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	pk := value.Column{Name: "id", Type: value.TypeInteger}
	schema := value.Schema{Columns: []value.Column{
		{Name: "album_id", Type: value.TypeInteger},
		{Name: "genre_id", Type: value.TypeInteger},
	}}
	if err := s.CreateTable(ctx, "album_genres", pk, schema); err != nil {
		t.Fatalf("CreateTable() failed: %v", err)
	}
	rows := []value.Mapping{
		{"id": value.Int(1), "genre_id": value.Int(1), "album_id": value.Int(10)},
		{"id": value.Int(2), "genre_id": value.Int(1), "album_id": value.Int(11)},
		{"id": value.Int(3), "genre_id": value.Int(2), "album_id": value.Int(10)},
	}
	for _, m := range rows {
		if err := s.Insert(ctx, "album_genres", m); err != nil {
			t.Fatalf("Insert() failed: %v", err)
		}
	}

	got, err := s.FindEq(ctx, "album_genres", "genre_id", value.Int(1))
	if err != nil {
		t.Fatalf("FindEq() failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("FindEq() returned %d rows, want 2", len(got))
	}

	in, err := s.FindIn(ctx, "album_genres", "album_id", []value.Value{value.Int(10)})
	if err != nil {
		t.Fatalf("FindIn() failed: %v", err)
	}
	if len(in) != 2 {
		t.Fatalf("FindIn() returned %d rows, want 2", len(in))
	}

	if _, err := s.FindIn(ctx, "album_genres", "album_id", nil); err == nil {
		t.Error("FindIn() with empty key set should fail")
	}
}

func TestReset_ChangesHandleAndDiscardsState(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	pk, schema := genreSchema()
	if err := s.CreateTable(ctx, "genres", pk, schema); err != nil {
		t.Fatalf("CreateTable() failed: %v", err)
	}

	before := s.Handle()
	if err := s.Reset(); err != nil {
		t.Fatalf("Reset() failed: %v", err)
	}
	if s.Handle() == before {
		t.Error("Reset() did not change the handle identity")
	}

	exists, err := s.TableExists(ctx, "genres")
	if err != nil {
		t.Fatalf("TableExists() failed: %v", err)
	}
	if exists {
		t.Error("relation survived a Reset")
	}
	if _, err := s.Count(ctx, "genres"); !IsMissingRelation(err) {
		t.Errorf("Count() after Reset = %v, want missing-relation", err)
	}
}

func TestTypedColumns_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	pk := value.Column{Name: "id", Type: value.TypeInteger}
	schema := value.Schema{Columns: []value.Column{
		{Name: "released_on", Type: value.TypeDate},
		{Name: "recorded_at", Type: value.TypeDatetime},
		{Name: "rating", Type: value.TypeDecimal},
		{Name: "notes", Type: value.TypeString},
	}}
	if err := s.CreateTable(ctx, "albums", pk, schema); err != nil {
		t.Fatalf("CreateTable() failed: %v", err)
	}

	in := value.Mapping{
		"id":          value.Int(1),
		"released_on": value.Date{Year: 1999, Month: 9, Day: 14},
		"recorded_at": value.DateTime(time.Date(1999, 1, 2, 3, 4, 5, 0, time.UTC)),
		"rating":      value.Float(4.5),
		"notes":       value.Null{},
	}
	if err := s.Insert(ctx, "albums", in); err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}

	out, ok, err := s.FindByPK(ctx, "albums", value.Int(1))
	if err != nil || !ok {
		t.Fatalf("FindByPK() = ok=%v err=%v", ok, err)
	}
	for _, col := range []string{"released_on", "recorded_at", "rating", "notes"} {
		if !value.Equal(out[col], in[col]) {
			t.Errorf("%s = %#v, want %#v", col, out[col], in[col])
		}
	}
}
