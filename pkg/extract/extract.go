// Package extract defines the contract of the reporting subsystem:
// CSV dashboard extracts, applicant document downloads and the feedback
// export. Implementations live in internal/ioextract.
package extract

import "context"

// Summary reports what one export call produced.
type Summary struct {
	// Rows written, per output file path.
	Rows map[string]int

	// Files written, in creation order.
	Files []string

	// Downloaded counts applicant documents fetched from blob storage.
	Downloaded int

	// Bytes is the combined size of downloaded documents.
	Bytes int64

	// ResetUsers counts users whose change markers were cleared after the
	// extracts were saved.
	ResetUsers int
}

// Merge folds another summary into s.
func (s *Summary) Merge(other Summary) {
	if s.Rows == nil {
		s.Rows = make(map[string]int)
	}
	for k, v := range other.Rows {
		s.Rows[k] += v
	}
	s.Files = append(s.Files, other.Files...)
	s.Downloaded += other.Downloaded
	s.Bytes += other.Bytes
	s.ResetUsers += other.ResetUsers
}

// Extractor produces the periodic CSV extracts against the configured
// reporting environment.
type Extractor interface {
	// ExportAll runs every extract: global roster, income verification,
	// per-program extracts and the feedback export. Change markers are
	// reset only after the files they feed are saved.
	ExportAll(ctx context.Context) (Summary, error)

	// ExportGlobal writes the roster of all non-archived applicants with
	// one enrollment column per active program.
	ExportGlobal(ctx context.Context) (Summary, error)

	// ExportIncome writes the income-verification queue and downloads each
	// listed user's uploaded documents from blob storage.
	ExportIncome(ctx context.Context) (Summary, error)

	// ExportPrograms writes the per-program extracts: renewals, new
	// applicants and updated records.
	ExportPrograms(ctx context.Context) (Summary, error)

	// ExportFeedback writes the user feedback table to CSV.
	ExportFeedback(ctx context.Context) (Summary, error)
}
