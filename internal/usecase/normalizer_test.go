package usecase

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestDetectHeaderRow(t *testing.T) {
	n := NewTabularNormalizer(NormalizerConfig{})

	t.Run("finds header past leading banner rows", func(t *testing.T) {
		grid := [][]string{
			{"ACME WHOLESALE"},
			{"Updated: 2026-08-01"},
			{"SKU", "Product Name", "Unit Price"},
			{"A-1", "Widget", "10.00"},
		}
		if got := n.detectHeaderRow(grid); got != 2 {
			t.Errorf("detectHeaderRow() = %d, want 2", got)
		}
	})

	t.Run("defaults to row zero when no header qualifies", func(t *testing.T) {
		grid := [][]string{
			{"Widget", "10.00"},
			{"Gadget", "20.00"},
		}
		if got := n.detectHeaderRow(grid); got != 0 {
			t.Errorf("detectHeaderRow() = %d, want 0", got)
		}
	})

	t.Run("matches spanish headers", func(t *testing.T) {
		grid := [][]string{
			{"Producto", "Marca", "Precio Lista"},
			{"Taladro", "Bosch", "1.234,56"},
		}
		if got := n.detectHeaderRow(grid); got != 0 {
			t.Errorf("detectHeaderRow() = %d, want 0", got)
		}
	})

	t.Run("scan window is bounded", func(t *testing.T) {
		n := NewTabularNormalizer(NormalizerConfig{HeaderScanRows: 2})
		grid := [][]string{
			{"banner"},
			{"banner"},
			{"Name", "Price"},
			{"Widget", "10"},
		}
		if got := n.detectHeaderRow(grid); got != 0 {
			t.Errorf("detectHeaderRow() = %d, want 0 when header lies past the scan window", got)
		}
	})
}

func TestClassifyHeaderCell(t *testing.T) {
	tests := []struct {
		cell string
		want ColumnRole
	}{
		{"Product Name", RoleName},
		{"Descripcion", RoleName},
		{"Unit Price", RolePrice},
		{"Precio", RolePrice},
		{"Marca", RoleBrand},
		{"SKU", RoleBrand},
		{"Qty", RoleUnknown},
		// A cell matching both tables counts as price, never name.
		{"Price Description", RolePrice},
	}

	for _, tt := range tests {
		t.Run(tt.cell, func(t *testing.T) {
			if got := classifyHeaderCell(tt.cell); got != tt.want {
				t.Errorf("classifyHeaderCell(%q) = %v, want %v", tt.cell, got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	n := NewTabularNormalizer(NormalizerConfig{})

	t.Run("extracts records using detected columns", func(t *testing.T) {
		grid := [][]string{
			{"Product Name", "Brand", "Unit Price"},
			{"Widget", "Acme", "10.00"},
			{"Gadget", "Globex", "1.234,56"},
		}

		records := n.Normalize(grid)
		if len(records) != 2 {
			t.Fatalf("Normalize() returned %d records, want 2", len(records))
		}
		if records[0].Name != "Widget" || records[0].OriginalPrice != 10 {
			t.Errorf("records[0] = %+v, want Widget at 10", records[0])
		}
		if records[0].Brand != "Acme" {
			t.Errorf("records[0].Brand = %q, want Acme", records[0].Brand)
		}
		if records[1].OriginalPrice != 1234.56 {
			t.Errorf("records[1].OriginalPrice = %v, want 1234.56", records[1].OriginalPrice)
		}
		if records[0].Currency != "$" {
			t.Errorf("records[0].Currency = %q, want $", records[0].Currency)
		}
	})

	t.Run("positional fallback when headers are unrecognizable", func(t *testing.T) {
		grid := [][]string{
			{"Widget", "10.00"},
			{"Gadget", "20.00"},
		}

		records := n.Normalize(grid)
		// Row zero is treated as the header, so only the second row survives.
		if len(records) != 1 {
			t.Fatalf("Normalize() returned %d records, want 1", len(records))
		}
		if records[0].Name != "Gadget" || records[0].OriginalPrice != 20 {
			t.Errorf("records[0] = %+v, want Gadget at 20", records[0])
		}
	})

	t.Run("drops rows with short names or non-positive prices", func(t *testing.T) {
		grid := [][]string{
			{"Name", "Price"},
			{"Widget", "10.00"},
			{"X", "5.00"},
			{"", "7.00"},
			{"Gadget", "0"},
			{"Doohickey", "free"},
			{"Gizmo", "3.50"},
		}

		records := n.Normalize(grid)
		if len(records) != 2 {
			t.Fatalf("Normalize() returned %d records, want 2", len(records))
		}
		if records[0].Name != "Widget" || records[1].Name != "Gizmo" {
			t.Errorf("surviving names = %q, %q; want Widget, Gizmo", records[0].Name, records[1].Name)
		}
	})

	t.Run("tolerates ragged rows", func(t *testing.T) {
		grid := [][]string{
			{"Name", "Brand", "Price"},
			{"Widget"},
			{"Gadget", "Acme", "12.00"},
		}

		records := n.Normalize(grid)
		if len(records) != 1 {
			t.Fatalf("Normalize() returned %d records, want 1", len(records))
		}
		if records[0].Name != "Gadget" {
			t.Errorf("records[0].Name = %q, want Gadget", records[0].Name)
		}
	})

	t.Run("empty grid yields nil", func(t *testing.T) {
		if records := n.Normalize(nil); records != nil {
			t.Errorf("Normalize(nil) = %v, want nil", records)
		}
	})
}

func TestDetectMessyColumn(t *testing.T) {
	messyCell := "Widget $10.00 and Gadget $20"

	buildGrid := func(messyRows, cleanRows int) [][]string {
		var grid [][]string
		for i := 0; i < messyRows; i++ {
			grid = append(grid, []string{messyCell})
		}
		for i := 0; i < cleanRows; i++ {
			grid = append(grid, []string{"ok"})
		}
		return grid
	}

	n := NewTabularNormalizer(NormalizerConfig{})

	t.Run("flags a column above the threshold", func(t *testing.T) {
		col, ok := n.DetectMessyColumn(buildGrid(5, 5))
		if !ok || col != 0 {
			t.Errorf("DetectMessyColumn() = (%d, %v), want (0, true)", col, ok)
		}
	})

	t.Run("does not flag below the threshold", func(t *testing.T) {
		if _, ok := n.DetectMessyColumn(buildGrid(3, 7)); ok {
			t.Error("DetectMessyColumn() = true, want false at 30%")
		}
	})

	t.Run("threshold is strict", func(t *testing.T) {
		// Exactly 40% must not trip a 0.4 threshold.
		if _, ok := n.DetectMessyColumn(buildGrid(4, 6)); ok {
			t.Error("DetectMessyColumn() = true, want false at exactly the threshold")
		}
	})

	t.Run("short cells with currency markers do not count", func(t *testing.T) {
		grid := [][]string{
			{"$10.00"}, {"$20.00"}, {"$30.00"}, {"$40.00"},
		}
		if _, ok := n.DetectMessyColumn(grid); ok {
			t.Error("DetectMessyColumn() = true, want false for plain price cells")
		}
	})

	t.Run("empty grid", func(t *testing.T) {
		if _, ok := n.DetectMessyColumn(nil); ok {
			t.Error("DetectMessyColumn(nil) = true, want false")
		}
	})
}

func TestBuildMessyBlock(t *testing.T) {
	t.Run("joins non-trivial cells with newlines", func(t *testing.T) {
		n := NewTabularNormalizer(NormalizerConfig{})
		grid := [][]string{
			{"Widget $10.00 each"},
			{"ok"},
			{"Gadget $20.00 each"},
		}

		block := n.BuildMessyBlock(grid, 0)
		want := "Widget $10.00 each\nGadget $20.00 each"
		if block != want {
			t.Errorf("BuildMessyBlock() = %q, want %q", block, want)
		}
	})

	t.Run("truncates to the character budget", func(t *testing.T) {
		n := NewTabularNormalizer(NormalizerConfig{MaxBlockChars: 50})
		grid := [][]string{
			{strings.Repeat("a", 40)},
			{strings.Repeat("b", 40)},
		}

		block := n.BuildMessyBlock(grid, 0)
		if len(block) != 50 {
			t.Errorf("len(block) = %d, want 50", len(block))
		}
	})

	t.Run("truncation never splits a multibyte character", func(t *testing.T) {
		// 51 bytes of two-byte runes against an odd budget: the cut must
		// back off to the rune boundary.
		n := NewTabularNormalizer(NormalizerConfig{MaxBlockChars: 51})
		grid := [][]string{
			{strings.Repeat("ñ", 40)},
		}

		block := n.BuildMessyBlock(grid, 0)
		if !utf8.ValidString(block) {
			t.Errorf("block is not valid UTF-8: %q", block)
		}
		if len(block) != 50 {
			t.Errorf("len(block) = %d, want 50 (51 lands mid-rune)", len(block))
		}
	})
}

func TestTruncateToRuneBoundary(t *testing.T) {
	tests := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{"shorter than max", "abc", 10, "abc"},
		{"exact max", "abc", 3, "abc"},
		{"ascii cut", "abcdef", 4, "abcd"},
		{"cut lands mid-rune", "añb", 2, "a"},
		{"cut on rune boundary", "añb", 3, "añ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncateToRuneBoundary(tt.input, tt.max); got != tt.want {
				t.Errorf("truncateToRuneBoundary(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.want)
			}
		})
	}
}
