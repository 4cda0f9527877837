package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"dao-governance/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// SnapshotRepo implements ports.SnapshotStore. A snapshot is written as a
// full replace inside one transaction: readers either see the previous
// snapshot or the new one, never a mix.
type SnapshotRepo struct {
	pool Pool
}

// NewSnapshotRepo creates a new SnapshotRepo.
func NewSnapshotRepo(pool Pool) *SnapshotRepo {
	return &SnapshotRepo{pool: pool}
}

// Load reads the last saved snapshot. Returns (nil, nil) when no snapshot
// was ever saved, which tells the caller to boot from genesis.
func (r *SnapshotRepo) Load(ctx context.Context) (*domain.Snapshot, error) {
	var fee, threshold, deposit, supply, burned int64
	err := r.pool.QueryRow(ctx,
		`SELECT transfer_fee, vote_threshold, submission_deposit, initial_supply, burned
		 FROM gov_params WHERE id = 1`,
	).Scan(&fee, &threshold, &deposit, &supply, &burned)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load params: %w", err)
	}

	snap := &domain.Snapshot{
		Params: domain.SystemParams{
			TransferFee:               domain.Tokens(fee),
			ProposalVoteThreshold:     domain.Tokens(threshold),
			ProposalSubmissionDeposit: domain.Tokens(deposit),
		},
		InitialSupply: domain.Tokens(supply),
		Burned:        domain.Tokens(burned),
	}

	accounts, err := r.loadAccounts(ctx)
	if err != nil {
		return nil, err
	}
	snap.Accounts = accounts

	proposals, err := r.loadProposals(ctx)
	if err != nil {
		return nil, err
	}
	snap.Proposals = proposals

	return snap, nil
}

func (r *SnapshotRepo) loadAccounts(ctx context.Context) ([]domain.Account, error) {
	rows, err := r.pool.Query(ctx, `SELECT principal, tokens FROM gov_accounts ORDER BY principal`)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var principal string
		var tokens int64
		if err := rows.Scan(&principal, &tokens); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, domain.Account{
			Owner:  domain.Principal(principal),
			Tokens: domain.Tokens(tokens),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	return accounts, nil
}

func (r *SnapshotRepo) loadProposals(ctx context.Context) ([]domain.Proposal, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, submitted_at, proposer, target, method, message, state, failure_reason, votes_yes, votes_no, voters
		 FROM gov_proposals ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("load proposals: %w", err)
	}
	defer rows.Close()

	var proposals []domain.Proposal
	for rows.Next() {
		var (
			p          domain.Proposal
			id         int64
			proposer   string
			target     string
			state      string
			votesYes   int64
			votesNo    int64
			votersJSON []byte
		)
		if err := rows.Scan(&id, &p.SubmittedAt, &proposer, &target, &p.Payload.Method,
			&p.Payload.Message, &state, &p.FailureReason, &votesYes, &votesNo, &votersJSON); err != nil {
			return nil, fmt.Errorf("scan proposal: %w", err)
		}

		p.ID = uint64(id)
		p.Proposer = domain.Principal(proposer)
		p.Payload.Target = domain.Principal(target)
		p.State = domain.ProposalState(state)
		p.VotesYes = domain.Tokens(votesYes)
		p.VotesNo = domain.Tokens(votesNo)
		if err := json.Unmarshal(votersJSON, &p.Voters); err != nil {
			return nil, fmt.Errorf("decode voters for proposal %d: %w", id, err)
		}

		proposals = append(proposals, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate proposals: %w", err)
	}
	return proposals, nil
}

// Save replaces the stored snapshot atomically.
func (r *SnapshotRepo) Save(ctx context.Context, snap *domain.Snapshot) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM gov_accounts`); err != nil {
		return fmt.Errorf("clear accounts: %w", err)
	}
	for _, acc := range snap.Accounts {
		if _, err := tx.Exec(ctx,
			`INSERT INTO gov_accounts (principal, tokens) VALUES ($1, $2)`,
			acc.Owner.String(), int64(acc.Tokens),
		); err != nil {
			return fmt.Errorf("insert account %s: %w", acc.Owner, err)
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM gov_proposals`); err != nil {
		return fmt.Errorf("clear proposals: %w", err)
	}
	for _, p := range snap.Proposals {
		voters := p.Voters
		if voters == nil {
			voters = []domain.Principal{}
		}
		votersJSON, err := json.Marshal(voters)
		if err != nil {
			return fmt.Errorf("encode voters for proposal %d: %w", p.ID, err)
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO gov_proposals (id, submitted_at, proposer, target, method, message, state, failure_reason, votes_yes, votes_no, voters)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			int64(p.ID), p.SubmittedAt, p.Proposer.String(), p.Payload.Target.String(), p.Payload.Method,
			p.Payload.Message, string(p.State), p.FailureReason, int64(p.VotesYes), int64(p.VotesNo), votersJSON,
		); err != nil {
			return fmt.Errorf("insert proposal %d: %w", p.ID, err)
		}
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO gov_params (id, transfer_fee, vote_threshold, submission_deposit, initial_supply, burned, updated_at)
		 VALUES (1, $1, $2, $3, $4, $5, NOW())
		 ON CONFLICT (id) DO UPDATE SET
			transfer_fee = EXCLUDED.transfer_fee,
			vote_threshold = EXCLUDED.vote_threshold,
			submission_deposit = EXCLUDED.submission_deposit,
			initial_supply = EXCLUDED.initial_supply,
			burned = EXCLUDED.burned,
			updated_at = NOW()`,
		int64(snap.Params.TransferFee), int64(snap.Params.ProposalVoteThreshold), int64(snap.Params.ProposalSubmissionDeposit),
		int64(snap.InitialSupply), int64(snap.Burned),
	); err != nil {
		return fmt.Errorf("upsert params: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit snapshot tx: %w", err)
	}
	return nil
}
