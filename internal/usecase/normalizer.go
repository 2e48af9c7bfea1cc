package usecase

import (
	"log"
	"strings"
	"unicode/utf8"

	"github.com/pricemarkup/backend/internal/domain"
)

// Default limits for grid scanning and messy-column handling
const (
	defaultHeaderScanRows = 20
	defaultMessyThreshold = 0.4
	defaultMaxBlockChars  = 8000

	// minMessyCellLen is the length beyond which a cell carrying a currency
	// marker counts as unstructured text rather than a plain price.
	minMessyCellLen = 10

	// minBlockCellLen filters trivial cells out of the concatenated block
	// handed to the extraction collaborator.
	minBlockCellLen = 5
)

// nameKeywords mark a header cell as the product name column.
// Spanish terms are kept alongside English ones because supplier sheets
// come in both.
var nameKeywords = []string{
	"name", "nombre", "product", "producto", "item", "description",
	"descripcion", "articulo", "detalle", "title", "label",
}

// priceKeywords mark a header cell as the price column.
var priceKeywords = []string{
	"price", "precio", "cost", "costo", "unit", "rate", "amount", "total",
	"venta", "valor", "monto", "lista", "unitario", "p.u",
}

// brandKeywords mark a header cell as the brand/SKU column.
var brandKeywords = []string{"brand", "marca", "fabricante", "sku", "cod"}

// ColumnRole tags what a grid column holds, as decided from its header cell.
type ColumnRole int

const (
	RoleUnknown ColumnRole = iota
	RoleName
	RolePrice
	RoleBrand
)

// columnLayout holds the selected column indexes; -1 means not found.
type columnLayout struct {
	name  int
	price int
	brand int
}

// NormalizerConfig holds configuration for the tabular normalizer
type NormalizerConfig struct {
	HeaderScanRows     int
	MessyThreshold     float64
	MaxBlockChars      int
	EnableDebugLogging bool
}

// TabularNormalizer turns a 2-D grid of cell text into canonical product
// records. Header and column detection is keyword-table driven so the same
// logic covers spreadsheet, CSV, and AI-cleaned sources uniformly.
type TabularNormalizer struct {
	headerScanRows     int
	messyThreshold     float64
	maxBlockChars      int
	enableDebugLogging bool
}

// NewTabularNormalizer creates a normalizer with the given configuration,
// falling back to defaults for zero values.
func NewTabularNormalizer(config NormalizerConfig) *TabularNormalizer {
	scanRows := config.HeaderScanRows
	if scanRows <= 0 {
		scanRows = defaultHeaderScanRows
	}
	threshold := config.MessyThreshold
	if threshold <= 0 || threshold > 1 {
		threshold = defaultMessyThreshold
	}
	maxChars := config.MaxBlockChars
	if maxChars <= 0 {
		maxChars = defaultMaxBlockChars
	}

	return &TabularNormalizer{
		headerScanRows:     scanRows,
		messyThreshold:     threshold,
		maxBlockChars:      maxChars,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// Normalize converts a grid into product records, preserving row order.
// Rows with a blank or single-character name, or a price that does not
// parse above zero, are dropped silently; that is expected filtering, not
// an error.
func (n *TabularNormalizer) Normalize(grid [][]string) []domain.RawProductRecord {
	if len(grid) == 0 {
		return nil
	}

	headerIdx := n.detectHeaderRow(grid)
	layout := classifyColumns(grid[headerIdx])

	if layout.name < 0 || layout.price < 0 {
		// Best-effort positional fallback: column 0 as name, column 1 as price.
		layout = columnLayout{name: 0, price: 1, brand: -1}
		if n.enableDebugLogging {
			log.Printf("[NORMALIZE] no name+price header pair found, using positional fallback")
		}
	} else if n.enableDebugLogging {
		log.Printf("[NORMALIZE] header row %d, columns name=%d price=%d brand=%d",
			headerIdx, layout.name, layout.price, layout.brand)
	}

	var records []domain.RawProductRecord
	for _, row := range grid[headerIdx+1:] {
		name := strings.TrimSpace(cellAt(row, layout.name))
		price := ParsePrice(cellAt(row, layout.price))
		if len([]rune(name)) <= 1 || price <= 0 {
			continue
		}

		brand := ""
		if layout.brand >= 0 {
			brand = strings.TrimSpace(cellAt(row, layout.brand))
		}

		records = append(records, domain.RawProductRecord{
			Name:          name,
			Brand:         brand,
			OriginalPrice: price,
			Currency:      "$",
		})
	}

	return records
}

// detectHeaderRow scans the leading rows for the first one that carries
// both a name keyword and a price keyword. Row 0 is the header when none
// qualifies.
func (n *TabularNormalizer) detectHeaderRow(grid [][]string) int {
	limit := len(grid)
	if limit > n.headerScanRows {
		limit = n.headerScanRows
	}

	for i := 0; i < limit; i++ {
		hasName := false
		hasPrice := false
		for _, cell := range grid[i] {
			lower := strings.ToLower(cell)
			if containsAny(lower, nameKeywords) {
				hasName = true
			}
			if containsAny(lower, priceKeywords) {
				hasPrice = true
			}
		}
		if hasName && hasPrice {
			return i
		}
	}
	return 0
}

// classifyColumns assigns roles to header cells and picks the first column
// for each role. A cell matching both name and price keywords (e.g. "price
// description") counts as price, never name.
func classifyColumns(header []string) columnLayout {
	layout := columnLayout{name: -1, price: -1, brand: -1}

	for i, cell := range header {
		switch classifyHeaderCell(cell) {
		case RoleName:
			if layout.name < 0 {
				layout.name = i
			}
		case RolePrice:
			if layout.price < 0 {
				layout.price = i
			}
		case RoleBrand:
			if layout.brand < 0 {
				layout.brand = i
			}
		}
	}

	return layout
}

// classifyHeaderCell tags a single header cell with its column role.
func classifyHeaderCell(cell string) ColumnRole {
	lower := strings.ToLower(cell)
	switch {
	case containsAny(lower, priceKeywords):
		return RolePrice
	case containsAny(lower, nameKeywords):
		return RoleName
	case containsAny(lower, brandKeywords):
		return RoleBrand
	default:
		return RoleUnknown
	}
}

// DetectMessyColumn decides whether a column is unstructured free text with
// embedded prices. A column is messy when, across the sampled leading rows,
// the fraction of rows whose cell contains a currency marker and exceeds a
// short length passes the threshold. Returns the column index and true when
// one is found.
func (n *TabularNormalizer) DetectMessyColumn(grid [][]string) (int, bool) {
	if len(grid) == 0 {
		return -1, false
	}

	sample := grid
	if len(sample) > n.headerScanRows {
		sample = sample[:n.headerScanRows]
	}

	width := len(sample[0])
	for col := 0; col < width; col++ {
		matching := 0
		for _, row := range sample {
			cell := cellAt(row, col)
			if strings.Contains(cell, "$") && len(cell) > minMessyCellLen {
				matching++
			}
		}
		if float64(matching) > float64(len(sample))*n.messyThreshold {
			if n.enableDebugLogging {
				log.Printf("[NORMALIZE] column %d flagged as messy (%d/%d rows)", col, matching, len(sample))
			}
			return col, true
		}
	}

	return -1, false
}

// BuildMessyBlock concatenates the non-trivial cell values of a messy
// column with newline separators, truncated to the configured character
// budget, for hand-off to the extraction collaborator.
func (n *TabularNormalizer) BuildMessyBlock(grid [][]string, col int) string {
	var parts []string
	for _, row := range grid {
		cell := cellAt(row, col)
		if len(cell) > minBlockCellLen {
			parts = append(parts, cell)
		}
	}

	return truncateToRuneBoundary(strings.Join(parts, "\n"), n.maxBlockChars)
}

// truncateToRuneBoundary cuts s to at most max bytes without splitting a
// multibyte character.
func truncateToRuneBoundary(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// cellAt reads a cell tolerating short rows; dynamically-shaped input is
// the norm, not the exception.
func cellAt(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

// containsAny reports whether s contains any of the keywords as a substring.
func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
