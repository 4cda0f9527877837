package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"
	"time"

	"dao-governance/internal/core/domain"
	"dao-governance/internal/core/ports"
	"dao-governance/internal/core/state"
	"dao-governance/pkg/apperror"
)

// reportingService implements ports.ReportingService.
type reportingService struct {
	st *state.State
}

// NewReportingService creates a new reporting service.
func NewReportingService(st *state.State) ports.ReportingService {
	return &reportingService{st: st}
}

// LedgerStats returns supply totals for the token ledger.
func (s *reportingService) LedgerStats(ctx context.Context) (*domain.LedgerStats, error) {
	stats := s.st.Stats()
	return &stats, nil
}

// ExportProposalsCSV renders every proposal as one CSV row, ordered by id.
func (s *reportingService) ExportProposalsCSV(ctx context.Context) ([]byte, error) {
	proposals := s.st.Proposals()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"id", "submitted_at", "proposer", "target", "method", "state", "votes_yes", "votes_no", "voters", "failure_reason"}
	if err := w.Write(header); err != nil {
		return nil, apperror.InternalError(err)
	}

	for _, p := range proposals {
		row := []string{
			strconv.FormatUint(p.ID, 10),
			p.SubmittedAt.UTC().Format(time.RFC3339),
			p.Proposer.String(),
			p.Payload.Target.String(),
			p.Payload.Method,
			string(p.State),
			strconv.FormatUint(uint64(p.VotesYes), 10),
			strconv.FormatUint(uint64(p.VotesNo), 10),
			strconv.Itoa(len(p.Voters)),
			p.FailureReason,
		}
		if err := w.Write(row); err != nil {
			return nil, apperror.InternalError(err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, apperror.InternalError(err)
	}

	return buf.Bytes(), nil
}
