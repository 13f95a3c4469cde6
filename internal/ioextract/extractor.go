// Package ioextract implements the reporting subsystem: CSV dashboard
// extracts against the configured reporting environment, applicant
// document downloads from blob storage and the feedback export.
package ioextract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/getyour/gyadmin/pkg/config"
	"github.com/getyour/gyadmin/pkg/db"
	"github.com/getyour/gyadmin/pkg/extract"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
	"github.com/google/uuid"
)

// field ties a query expression to the friendly column name used in the
// CSV header.
type field struct {
	expr     string
	friendly string
}

// rosterFields is the standard column set shared by every applicant
// extract. Addresses are always the mailing address.
var rosterFields = []field{
	{"u.id", "Primary ID"},
	{"u.first_name", "First Name"},
	{"u.last_name", "Last Name"},
	{"u.email", "Email Address"},
	{"u.phone_number", "Phone Number"},
	{"am.address1", "Mailing Address 1"},
	{"am.address2", "Mailing Address 2"},
	{"am.city", "City"},
	{"am.state", "State"},
	{"am.zip_code", "Zip Code"},
	{"m.household_info", "Individuals in Household"},
}

// rosterFrom is the join skeleton of the applicant extracts; callers
// append extra joins and where-conditions. Only non-archived users are
// ever reported.
const rosterFrom = `
FROM app_user u
LEFT JOIN (
	SELECT ia.user_id, ia.is_verified, iar.address1, iar.address2,
	       iar.city, iar.state, iar.zip_code
	FROM app_address ia
	JOIN app_addressrd iar ON iar.id = ia.mailing_address_id
) am ON am.user_id = u.id
LEFT JOIN app_household h ON h.user_id = u.id
LEFT JOIN app_householdmembers m ON m.user_id = u.id
%s
WHERE u.is_archived = FALSE %s
ORDER BY u.id ASC`

// updatedCheckTables are the live tables whose is_updated markers feed
// the updated-records extracts and are reset after a successful run.
var updatedCheckTables = []string{
	"app_user", "app_address", "app_household", "app_householdmembers",
}

// program is one active income-qualified program from the reference
// table.
type program struct {
	id       int64
	name     string
	friendly string
}

type extractor struct {
	cfg   *config.Config
	h     db.Handle
	blob  BlobStore
	runID string
	now   func() time.Time
}

// New creates the extractor over a reporting-store handle. blob may be
// nil, in which case document downloads are skipped with a warning.
func New(
	cfg *config.Config, h db.Handle, blob BlobStore,
) extract.Extractor {
	return &extractor{
		cfg:   cfg,
		h:     h,
		blob:  blob,
		runID: uuid.NewString(),
		now:   time.Now,
	}
}

func (e *extractor) ExportAll(
	ctx context.Context,
) (extract.Summary, error) {
	start := time.Now()
	var sum extract.Summary

	slog.Info("Extract run started", "runID", e.runID,
		"profile", e.h.ProfileName())

	steps := []func(context.Context) (extract.Summary, error){
		e.ExportGlobal,
		e.ExportIncome,
		e.ExportPrograms,
		e.ExportFeedback,
	}
	for _, step := range steps {
		s, err := step(ctx)
		if err != nil {
			return sum, err
		}
		sum.Merge(s)
	}

	gn.Info("Extracts finished in <em>%s</em>",
		gnfmt.TimeString(time.Since(start).Seconds()))
	return sum, nil
}

// ExportGlobal writes the roster of all non-archived applicants with
// one enrollment column per active program.
func (e *extractor) ExportGlobal(
	ctx context.Context,
) (extract.Summary, error) {
	var sum extract.Summary

	programs, err := e.activePrograms(ctx)
	if err != nil {
		return sum, err
	}

	query := fmt.Sprintf(
		"SELECT %s"+rosterFrom, fieldExprs(rosterFields), "", "")
	rows, err := e.h.Query(ctx, query)
	if err != nil {
		return sum, QueryError("global roster", err)
	}

	enrolled := make(map[string]map[int64]bool, len(programs))
	for _, p := range programs {
		ids, err := e.enrolledUsers(ctx, p.id)
		if err != nil {
			return sum, err
		}
		enrolled[p.name] = ids
	}

	header := fieldNames(rosterFields)
	for _, p := range programs {
		header = append(header, "Enrolled in "+p.friendly)
	}

	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		rec := e.renderRow(row)
		userID, _ := asInt64(row[0])
		for _, p := range programs {
			rec = append(rec, yesNo(enrolled[p.name][userID]))
		}
		records = append(records, rec)
	}

	path := e.outputPath("All")
	legend := fmt.Sprintf("All IQ applicants as of %s",
		e.now().Format("2006-01-02"))
	if err := writeCSV(path, legend, header, records); err != nil {
		return sum, err
	}

	sum.Rows = map[string]int{path: len(records)}
	sum.Files = []string{path}
	return sum, nil
}

// ExportIncome writes the income-verification queue: applicants with
// verified addresses, unverified income and a document uploaded for
// every active eligibility program. Their uploaded documents are then
// fetched from blob storage.
func (e *extractor) ExportIncome(
	ctx context.Context,
) (extract.Summary, error) {
	var sum extract.Summary

	extraJoin := `
	JOIN (
		SELECT ia.user_id, ia.is_verified AS addr_verified
		FROM app_address ia
		JOIN app_addressrd iar ON iar.id = ia.eligibility_address_id
	) ae ON ae.user_id = u.id
	JOIN (
		SELECT DISTINCT ie.user_id
		FROM app_eligibilityprogram ie
		JOIN app_eligibilityprogramrd ier ON ie.program_id = ier.id
		WHERE ier.is_active = TRUE
	) e ON e.user_id = u.id`
	extraWhere := `
	AND h.is_income_verified = FALSE
	AND am.is_verified = TRUE
	AND ae.addr_verified = TRUE
	AND u.id NOT IN (
		SELECT DISTINCT ie.user_id
		FROM app_eligibilityprogram ie
		JOIN app_eligibilityprogramrd ier ON ie.program_id = ier.id
		WHERE ier.is_active = TRUE AND ie.document_path = ''
	)`

	query := fmt.Sprintf("SELECT %s"+rosterFrom,
		fieldExprs(rosterFields), extraJoin, extraWhere)
	rows, err := e.h.Query(ctx, query)
	if err != nil {
		return sum, QueryError("income verification", err)
	}

	uploads, err := e.uploadedFiles(ctx)
	if err != nil {
		return sum, err
	}

	header := append(fieldNames(rosterFields),
		"Uploaded File(s)", "Income Verified")
	records := make([][]string, 0, len(rows))
	userIDs := make([]int64, 0, len(rows))
	for _, row := range rows {
		userID, err := asInt64(row[0])
		if err != nil {
			return sum, QueryError("income verification", err)
		}
		userIDs = append(userIDs, userID)
		// Everyone in the queue is unverified; the column is for the
		// verifiers to fill in.
		rec := append(e.renderRow(row),
			strings.Join(uploads[userID], ", "), yesNo(false))
		records = append(records, rec)
	}

	path := e.outputPath("Income Verification")
	legend := fmt.Sprintf("Income verification queue as of %s",
		e.now().Format("2006-01-02"))
	if err := writeCSV(path, legend, header, records); err != nil {
		return sum, err
	}
	sum.Rows = map[string]int{path: len(records)}
	sum.Files = []string{path}

	if len(userIDs) == 0 {
		return sum, nil
	}
	downloaded, bytes, err := e.downloadDocuments(ctx, userIDs)
	if err != nil {
		return sum, err
	}
	sum.Downloaded = downloaded
	sum.Bytes = bytes
	return sum, nil
}

// ExportPrograms writes one extract per active program covering
// renewals, new applicants and updated records, then resets the change
// markers of every included user.
func (e *extractor) ExportPrograms(
	ctx context.Context,
) (extract.Summary, error) {
	var sum extract.Summary
	sum.Rows = make(map[string]int)

	programs, err := e.activePrograms(ctx)
	if err != nil {
		return sum, err
	}

	touched := make(map[int64]bool)
	for _, p := range programs {
		path, n, users, err := e.exportProgram(ctx, p)
		if err != nil {
			return sum, err
		}
		sum.Rows[path] = n
		sum.Files = append(sum.Files, path)
		for _, id := range users {
			touched[id] = true
		}
	}

	// Markers are cleared only after every file is saved, so a failed
	// run can be repeated without losing rows.
	reset, err := e.resetUpdated(ctx, touched)
	if err != nil {
		return sum, err
	}
	sum.ResetUsers = reset
	return sum, nil
}

// exportProgram writes one program's extract and returns its path, row
// count and the included user ids.
func (e *extractor) exportProgram(
	ctx context.Context, p program,
) (string, int, []int64, error) {
	programJoin := fmt.Sprintf(`
	JOIN app_iqprogram i ON i.user_id = u.id AND i.program_id = %d`, p.id)

	type section struct {
		note  string
		where string
	}
	sections := []section{
		{"Renewal", `
	AND h.is_income_verified = TRUE
	AND i.is_enrolled = FALSE
	AND u.last_renewed_at IS NOT NULL
	AND i.applied_at > u.last_renewed_at`},
		{"New applicant", `
	AND h.is_income_verified = TRUE
	AND i.is_enrolled = FALSE
	AND u.last_renewed_at IS NULL`},
		{"Updated information", `
	AND i.is_enrolled = TRUE
	AND (u.is_updated = TRUE OR am.is_updated = TRUE
	     OR h.is_updated = TRUE OR m.is_updated = TRUE)`},
	}

	// The updated-information section needs is_updated columns from the
	// joined tables.
	fields := append([]field{}, rosterFields...)
	fromWithFlags := strings.Replace(rosterFrom,
		"ia.is_verified, iar.address1",
		"ia.is_verified, ia.is_updated, iar.address1", 1)

	header := append(fieldNames(fields), "Notes", "Enrolled in Program")
	var records [][]string
	var users []int64

	for _, s := range sections {
		query := fmt.Sprintf("SELECT %s, i.is_enrolled"+fromWithFlags,
			fieldExprs(fields), programJoin, s.where)
		rows, err := e.h.Query(ctx, query)
		if err != nil {
			return "", 0, nil, QueryError(p.friendly, err)
		}
		for _, row := range rows {
			userID, err := asInt64(row[0])
			if err != nil {
				return "", 0, nil, QueryError(p.friendly, err)
			}
			users = append(users, userID)
			isEnrolled := truthy(row[len(row)-1])
			rec := e.renderRow(row[:len(row)-1])
			rec = append(rec, s.note, yesNo(isEnrolled))
			records = append(records, rec)
		}
	}

	path := e.outputPath(p.friendly)
	legend := fmt.Sprintf("%s applicants as of %s",
		p.friendly, e.now().Format("2006-01-02"))
	if err := writeCSV(path, legend, header, records); err != nil {
		return "", 0, nil, err
	}
	return path, len(records), users, nil
}

// resetUpdated clears the change markers for the touched users on every
// check table and commits.
func (e *extractor) resetUpdated(
	ctx context.Context, touched map[int64]bool,
) (int, error) {
	if len(touched) == 0 {
		return 0, nil
	}

	for id := range touched {
		for _, table := range updatedCheckTables {
			field := "user_id"
			if table == "app_user" {
				field = "id"
			}
			err := e.h.Exec(ctx, fmt.Sprintf(
				`UPDATE "%s" SET is_updated = FALSE WHERE "%s" = %s`,
				table, field, e.h.Placeholder(1)), id)
			if err != nil {
				_ = e.h.Rollback(ctx)
				return 0, ResetError(table, err)
			}
		}
	}
	if err := e.h.Commit(ctx); err != nil {
		return 0, ResetError("commit", err)
	}
	return len(touched), nil
}

// ExportFeedback writes the dashboard feedback table. Feedback is not
// linked to a user.
func (e *extractor) ExportFeedback(
	ctx context.Context,
) (extract.Summary, error) {
	var sum extract.Summary

	rows, err := e.h.Query(ctx,
		`SELECT modified, star_rating, feedback_comments
		FROM app_feedback ORDER BY modified ASC`)
	if err != nil {
		return sum, QueryError("feedback", err)
	}

	header := []string{"Date", "Rating (of 5 stars)", "Comments"}
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, []string{
			denverTime(row[0]),
			valueString(row[1]),
			valueString(row[2]),
		})
	}

	path := e.feedbackPath()
	if err := writeCSV(path, "", header, records); err != nil {
		return sum, err
	}
	sum.Rows = map[string]int{path: len(records)}
	sum.Files = []string{path}
	return sum, nil
}

// activePrograms reads the active income-qualified programs from the
// reference table.
func (e *extractor) activePrograms(
	ctx context.Context,
) ([]program, error) {
	rows, err := e.h.Query(ctx,
		`SELECT id, program_name, friendly_name FROM app_iqprogramrd
		WHERE is_active = TRUE ORDER BY id ASC`)
	if err != nil {
		return nil, QueryError("active programs", err)
	}

	res := make([]program, 0, len(rows))
	for _, row := range rows {
		id, err := asInt64(row[0])
		if err != nil {
			return nil, QueryError("active programs", err)
		}
		res = append(res, program{
			id:       id,
			name:     valueString(row[1]),
			friendly: valueString(row[2]),
		})
	}
	return res, nil
}

// enrolledUsers returns the set of users enrolled in one program.
func (e *extractor) enrolledUsers(
	ctx context.Context, programID int64,
) (map[int64]bool, error) {
	rows, err := e.h.Query(ctx, fmt.Sprintf(
		`SELECT user_id FROM app_iqprogram
		WHERE program_id = %s AND is_enrolled = TRUE`,
		e.h.Placeholder(1)), programID)
	if err != nil {
		return nil, QueryError("enrollment", err)
	}

	res := make(map[int64]bool, len(rows))
	for _, row := range rows {
		id, err := asInt64(row[0])
		if err != nil {
			return nil, QueryError("enrollment", err)
		}
		res[id] = true
	}
	return res, nil
}

// uploadedFiles maps user ids to the friendly names of the programs
// they uploaded documents for.
func (e *extractor) uploadedFiles(
	ctx context.Context,
) (map[int64][]string, error) {
	rows, err := e.h.Query(ctx,
		`SELECT ie.user_id, ier.friendly_name
		FROM app_eligibilityprogram ie
		JOIN app_eligibilityprogramrd ier ON ie.program_id = ier.id
		WHERE ier.is_active = TRUE AND ie.document_path != ''
		ORDER BY ie.user_id ASC, ier.friendly_name ASC`)
	if err != nil {
		return nil, QueryError("uploaded files", err)
	}

	res := make(map[int64][]string)
	for _, row := range rows {
		id, err := asInt64(row[0])
		if err != nil {
			return nil, QueryError("uploaded files", err)
		}
		res[id] = append(res[id], valueString(row[1]))
	}
	return res, nil
}

// renderRow converts one roster query row into CSV cells, pretty
// printing phone numbers and household members.
func (e *extractor) renderRow(row []any) []string {
	rec := make([]string, len(row))
	for i, v := range row {
		switch rosterFields[i].friendly {
		case "Phone Number":
			rec[i] = formatPhone(valueString(v))
		case "Individuals in Household":
			rec[i] = formatHouseholdInfo(valueString(v))
		default:
			rec[i] = valueString(v)
		}
	}
	return rec
}

func fieldExprs(fields []field) string {
	exprs := make([]string, len(fields))
	for i, f := range fields {
		exprs[i] = f.expr
	}
	return strings.Join(exprs, ", ")
}

func fieldNames(fields []field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.friendly
	}
	return names
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func truthy(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case int64:
		return val != 0
	}
	return false
}
