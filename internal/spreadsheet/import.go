// internal/spreadsheet/import.go
package spreadsheet

import (
	"strconv"
	"strings"

	stderrors "fleet-backoffice/internal/common/errors"
	"fleet-backoffice/internal/common/validation"
	"fleet-backoffice/internal/models"

	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"
)

// Rider import template columns. Header matching is case-insensitive and
// whitespace-tolerant; the column order in the file does not matter.
var RiderTemplateColumns = []string{"fullName", "phone", "leaderId", "status", "walletAmount"}

var requiredRiderColumns = []string{"fullName", "phone"}

// riderRowSchema validates one header-keyed row before any type conversion.
const riderRowSchema = `{
	"type": "object",
	"properties": {
		"fullName":     {"type": "string", "minLength": 1},
		"phone":        {"type": "string", "minLength": 1},
		"leaderId":     {"type": "string"},
		"status":       {"type": "string", "enum": ["", "active", "inactive"]},
		"walletAmount": {"type": "string", "pattern": "^-?[0-9]*$"}
	},
	"required": ["fullName", "phone"]
}`

var riderSchemaLoader = gojsonschema.NewStringLoader(riderRowSchema)

// RowError records one rejected row: its spreadsheet row number (header is
// row 1), the offending field, and the reason shown to the operator.
type RowError struct {
	Row    int    `json:"row"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ImportReport summarizes one import batch. A bad row never aborts the
// batch; it lands in Errors and processing continues.
type ImportReport struct {
	BatchID   string     `json:"batchId"`
	Succeeded int        `json:"succeeded"`
	Failed    int        `json:"failed"`
	Errors    []RowError `json:"errors"`
}

// ImportRiders parses CSV records (header row first) into riders. Rows that
// fail schema or phone validation are collected per row number. The
// returned riders are in file order and carry no IDs; persistence assigns
// them.
func ImportRiders(records [][]string) (*ImportReport, []models.Rider, error) {
	report := &ImportReport{
		BatchID: uuid.NewString(),
		Errors:  []RowError{},
	}

	if len(records) == 0 {
		return report, nil, nil
	}

	headerIndex, missing := mapHeaders(records[0])
	if len(missing) > 0 {
		return nil, nil, stderrors.NewImportTemplateMismatchError(missing)
	}

	riders := make([]models.Rider, 0, len(records)-1)
	for i, record := range records[1:] {
		rowNum := i + 2 // header occupies row 1

		row := map[string]string{}
		for col, idx := range headerIndex {
			if idx < len(record) {
				row[col] = strings.TrimSpace(record[idx])
			}
		}

		if rowErr := validateRow(row, rowNum); rowErr != nil {
			report.Failed++
			report.Errors = append(report.Errors, *rowErr)
			continue
		}

		rider, rowErr := buildRider(row, rowNum)
		if rowErr != nil {
			report.Failed++
			report.Errors = append(report.Errors, *rowErr)
			continue
		}

		report.Succeeded++
		riders = append(riders, rider)
	}

	return report, riders, nil
}

// mapHeaders resolves template columns to record indexes.
func mapHeaders(header []string) (map[string]int, []string) {
	normalized := map[string]int{}
	for i, h := range header {
		normalized[strings.ToLower(strings.TrimSpace(h))] = i
	}

	index := map[string]int{}
	missing := []string{}
	for _, col := range RiderTemplateColumns {
		idx, ok := normalized[strings.ToLower(col)]
		if ok {
			index[col] = idx
			continue
		}
		if isRequiredColumn(col) {
			missing = append(missing, col)
		}
	}
	return index, missing
}

func isRequiredColumn(col string) bool {
	for _, r := range requiredRiderColumns {
		if r == col {
			return true
		}
	}
	return false
}

// validateRow runs the schema plus the phone format check.
func validateRow(row map[string]string, rowNum int) *RowError {
	doc := map[string]interface{}{}
	for k, v := range row {
		doc[k] = v
	}

	result, err := gojsonschema.Validate(riderSchemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return &RowError{Row: rowNum, Field: "", Reason: "row could not be validated: " + err.Error()}
	}
	if !result.Valid() {
		first := result.Errors()[0]
		return &RowError{Row: rowNum, Field: first.Field(), Reason: first.Description()}
	}

	if !validation.ValidatePhone(row["phone"]) {
		return &RowError{Row: rowNum, Field: "phone", Reason: "invalid phone number format"}
	}

	return nil
}

func buildRider(row map[string]string, rowNum int) (models.Rider, *RowError) {
	rider := models.Rider{
		FullName: row["fullName"],
		Phone:    row["phone"],
		Status:   models.RiderStatusActive,
	}

	if status := row["status"]; status != "" {
		rider.Status = models.RiderStatus(status)
	}

	if leaderID := row["leaderId"]; leaderID != "" {
		rider.LeaderID = &leaderID
	}

	if amount := row["walletAmount"]; amount != "" {
		parsed, err := strconv.ParseInt(amount, 10, 64)
		if err != nil {
			return models.Rider{}, &RowError{Row: rowNum, Field: "walletAmount", Reason: "not a whole number"}
		}
		rider.WalletAmount = parsed
	}

	return rider, nil
}
