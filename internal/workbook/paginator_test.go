package workbook

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/hyperjump/sheetserve/internal/models"
)

func TestReadPage_WorkedExample(t *testing.T) {
	dir := t.TempDir()
	path := fixturePath(t, dir, "people.xlsx")
	writeXLSX(t, path, []string{"Name", "Age"}, [][]string{
		{"Alice", "30"},
		nil, // blank row
		{"Bob", "25"},
	})
	f := openFixture(t, path)

	page1, err := ReadPage(context.Background(), f, "people.xlsx", "Sheet1", 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if page1.TotalRows != 3 {
		t.Errorf("total_rows = %d, want 3", page1.TotalRows)
	}
	if !page1.HasMore {
		t.Error("has_more = false, want true")
	}
	if page1.NextPage == nil || *page1.NextPage != 2 {
		t.Errorf("next_page = %v, want 2", page1.NextPage)
	}
	if len(page1.Data) != 1 {
		t.Fatalf("data = %v, want one record (blank row dropped)", page1.Data)
	}
	if page1.Data[0]["Name"] != "Alice" || page1.Data[0]["Age"] != "30" {
		t.Errorf("record = %v", page1.Data[0])
	}

	page2, err := ReadPage(context.Background(), f, "people.xlsx", "Sheet1", 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(page2.Data) != 1 || page2.Data[0]["Name"] != "Bob" {
		t.Fatalf("page 2 data = %v", page2.Data)
	}
	if page2.HasMore {
		t.Error("page 2 has_more = true, want false")
	}
	if page2.NextPage != nil {
		t.Errorf("page 2 next_page = %v, want absent", *page2.NextPage)
	}
	if page2.TotalRows != page1.TotalRows {
		t.Errorf("total_rows changed across pages: %d vs %d", page1.TotalRows, page2.TotalRows)
	}
}

func TestReadPage_BeyondLastPage(t *testing.T) {
	dir := t.TempDir()
	path := fixturePath(t, dir, "small.xlsx")
	writeXLSX(t, path, []string{"A"}, [][]string{{"1"}, {"2"}})
	f := openFixture(t, path)

	page, err := ReadPage(context.Background(), f, "small.xlsx", "Sheet1", 99, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Data) != 0 {
		t.Errorf("data = %v, want empty", page.Data)
	}
	if page.HasMore {
		t.Error("has_more = true, want false")
	}
	if page.NextPage != nil {
		t.Error("next_page should be absent")
	}
	if page.TotalRows != 2 {
		t.Errorf("total_rows = %d, want 2", page.TotalRows)
	}
}

// A page number large enough to overflow page*pageSize must behave
// like any other past-the-end page, not wrap negative and report more
// data.
func TestReadPage_HugePageNumber(t *testing.T) {
	dir := t.TempDir()
	path := fixturePath(t, dir, "huge.xlsx")
	writeXLSX(t, path, []string{"A"}, [][]string{{"1"}, {"2"}})
	f := openFixture(t, path)

	page, err := ReadPage(context.Background(), f, "huge.xlsx", "Sheet1", math.MaxInt/2, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Data) != 0 {
		t.Errorf("data = %v, want empty", page.Data)
	}
	if page.HasMore {
		t.Error("has_more = true, want false")
	}
	if page.NextPage != nil {
		t.Errorf("next_page = %v, want absent", *page.NextPage)
	}
	if page.TotalRows != 2 {
		t.Errorf("total_rows = %d, want 2", page.TotalRows)
	}
}

func TestPageWindow_ClampsOnOverflow(t *testing.T) {
	start, end := pageWindow(3, 10)
	if start != 20 || end != 30 {
		t.Errorf("window = [%d, %d), want [20, 30)", start, end)
	}
	start, end = pageWindow(math.MaxInt, 1000)
	if start < 0 || end < 0 {
		t.Fatalf("window wrapped negative: [%d, %d)", start, end)
	}
	if end != math.MaxInt {
		t.Errorf("end = %d, want clamp to MaxInt", end)
	}
}

func TestReadPage_ShortRowPadded(t *testing.T) {
	dir := t.TempDir()
	path := fixturePath(t, dir, "sparse.xlsx")
	writeXLSX(t, path, []string{"A", "B", "C"}, [][]string{{"x"}})
	f := openFixture(t, path)

	page, err := ReadPage(context.Background(), f, "sparse.xlsx", "Sheet1", 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Data) != 1 {
		t.Fatalf("data = %v", page.Data)
	}
	rec := page.Data[0]
	if len(rec) != 3 {
		t.Fatalf("record has %d fields, want all 3 header fields: %v", len(rec), rec)
	}
	if rec["A"] != "x" || rec["B"] != "" || rec["C"] != "" {
		t.Errorf("record = %v", rec)
	}
}

func TestReadPage_DuplicateHeaderLastWins(t *testing.T) {
	dir := t.TempDir()
	path := fixturePath(t, dir, "dup.xlsx")
	writeXLSX(t, path, []string{"X", "X"}, [][]string{{"first", "second"}})
	f := openFixture(t, path)

	page, err := ReadPage(context.Background(), f, "dup.xlsx", "Sheet1", 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if got := page.Data[0]["X"]; got != "second" {
		t.Errorf("X = %q, want %q", got, "second")
	}
}

func TestReadPage_EmptySheet(t *testing.T) {
	dir := t.TempDir()
	path := fixturePath(t, dir, "empty.xlsx")
	writeXLSX(t, path, nil, nil)
	f := openFixture(t, path)

	page, err := ReadPage(context.Background(), f, "empty.xlsx", "Sheet1", 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if page.TotalRows != 0 || page.TotalPages != 0 || page.HasMore || len(page.Data) != 0 {
		t.Errorf("page = %+v, want zero rows and no more pages", page)
	}
}

func TestReadPage_InvalidPage(t *testing.T) {
	dir := t.TempDir()
	path := fixturePath(t, dir, "p.xlsx")
	writeXLSX(t, path, []string{"A"}, [][]string{{"1"}})
	f := openFixture(t, path)

	for _, page := range []int{0, -1} {
		if _, err := ReadPage(context.Background(), f, "p.xlsx", "Sheet1", page, 10); !errors.Is(err, ErrInvalidPage) {
			t.Errorf("page %d: err = %v, want ErrInvalidPage", page, err)
		}
	}
}

func TestReadPage_AllBlankWindowKeepsHasMore(t *testing.T) {
	dir := t.TempDir()
	path := fixturePath(t, dir, "gaps.xlsx")
	writeXLSX(t, path, []string{"A"}, [][]string{
		{"1"},
		{"2"},
		nil,
		nil,
		{"5"},
	})
	f := openFixture(t, path)

	page, err := ReadPage(context.Background(), f, "gaps.xlsx", "Sheet1", 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Data) != 0 {
		t.Errorf("data = %v, want empty (both rows in window blank)", page.Data)
	}
	if !page.HasMore {
		t.Error("has_more = false, want true: a non-empty window exists past this page")
	}
	if page.NextPage == nil || *page.NextPage != 3 {
		t.Errorf("next_page = %v, want 3", page.NextPage)
	}
	if page.TotalRows != 5 {
		t.Errorf("total_rows = %d, want 5", page.TotalRows)
	}
}

// Walking all pages must reconstruct exactly the non-blank rows, in
// order, with no duplicates or omissions.
func TestReadPage_UnionReconstructsSheet(t *testing.T) {
	dir := t.TempDir()
	path := fixturePath(t, dir, "walk.xlsx")
	rows := [][]string{
		{"r1"},
		nil,
		{"r3"},
		{"r4"},
		nil,
		{"r6"},
		{"r7"},
	}
	writeXLSX(t, path, []string{"V"}, rows)
	f := openFixture(t, path)

	var got []models.Record
	page := 1
	for {
		p, err := ReadPage(context.Background(), f, "walk.xlsx", "Sheet1", page, 3)
		if err != nil {
			t.Fatal(err)
		}
		if p.TotalRows != len(rows) {
			t.Errorf("page %d: total_rows = %d, want %d", page, p.TotalRows, len(rows))
		}
		got = append(got, p.Data...)
		if !p.HasMore {
			break
		}
		page = *p.NextPage
	}

	want := []string{"r1", "r3", "r4", "r6", "r7"}
	if len(got) != len(want) {
		t.Fatalf("reconstructed %d records, want %d: %v", len(got), len(want), got)
	}
	for i, rec := range got {
		if rec["V"] != want[i] {
			t.Errorf("record %d = %v, want V=%q", i, rec, want[i])
		}
	}
}

func TestReadPage_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	path := fixturePath(t, dir, "c.xlsx")
	writeXLSX(t, path, []string{"A"}, [][]string{{"1"}, {"2"}})
	f := openFixture(t, path)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ReadPage(ctx, f, "c.xlsx", "Sheet1", 1, 10); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestReadPage_MissingSheet(t *testing.T) {
	dir := t.TempDir()
	path := fixturePath(t, dir, "s.xlsx")
	writeXLSX(t, path, []string{"A"}, nil)
	f := openFixture(t, path)

	if _, err := ReadPage(context.Background(), f, "s.xlsx", "Nope", 1, 10); !errors.Is(err, ErrReadFailure) {
		t.Fatalf("err = %v, want ErrReadFailure", err)
	}
}
