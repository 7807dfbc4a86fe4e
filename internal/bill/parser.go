package bill

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/karteek/splitcard/internal/category"
)

// amountPattern matches a currency-prefixed monetary amount with optional
// thousands separators and an optional two-decimal fraction, e.g.
// "₹1,234.50", "₹ 450", "1200.00".
var amountPattern = regexp.MustCompile(`₹?\s*(\d+(?:,\d+)*(?:\.\d{2})?)`)

// MaxPlausibleAmount bounds a single statement line. Matches above the
// bound are treated as noise (account numbers, reference ids) and skipped.
const MaxPlausibleAmount = 100000.0

// ParsedTransaction is the parser's output shape before persistence.
type ParsedTransaction struct {
	Description string
	Amount      float64
	Category    string
	Date        time.Time
}

// ParseStatement scans free-form statement text line by line and extracts
// candidate transactions. It is a best-effort heuristic: statement layouts
// vary wildly between banks, and lines the pattern cannot make sense of
// are silently skipped rather than reported. Callers surface the parsed
// set for manual review before anything reaches the ledger.
func ParseStatement(text string, now time.Time) []ParsedTransaction {
	var transactions []ParsedTransaction

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		// Short lines are headers, separators, page furniture.
		if len(line) <= 10 {
			continue
		}

		match := amountPattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		amount, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", ""), 64)
		if err != nil {
			continue
		}
		if amount <= 0 || amount >= MaxPlausibleAmount {
			continue
		}

		description := strings.TrimSpace(strings.Replace(line, match[0], "", 1))
		description = strings.Trim(description, "-–|: \t")
		if description == "" {
			description = fmt.Sprintf("Transaction %d", len(transactions)+1)
		}

		transactions = append(transactions, ParsedTransaction{
			Description: description,
			Amount:      amount,
			Category:    category.GeneralCategory,
			Date:        now,
		})
	}

	return transactions
}
