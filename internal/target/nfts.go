package target

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// NFT is one minted token. Content holds the raw asset bytes and is omitted
// from listings.
type NFT struct {
	ID       int64  `json:"id"`
	Owner    string `json:"owner"`
	Name     string `json:"name"`
	Content  []byte `json:"content,omitempty"`
	Metadata string `json:"metadata,omitempty"`
}

// MintNFT inserts a new token and returns its id.
func (s *Store) MintNFT(ctx context.Context, owner, name string, content []byte, metadata string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO nfts (owner, name, content, metadata) VALUES (?, ?, ?, ?)`,
		owner, name, content, metadata,
	)
	if err != nil {
		return 0, fmt.Errorf("mint nft: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("mint nft: %w", err)
	}
	return id, nil
}

// GetNFT returns one token by id, content included.
func (s *Store) GetNFT(ctx context.Context, id int64) (NFT, error) {
	var nft NFT
	err := s.db.QueryRowContext(ctx,
		`SELECT id, owner, name, content, metadata FROM nfts WHERE id = ?`, id,
	).Scan(&nft.ID, &nft.Owner, &nft.Name, &nft.Content, &nft.Metadata)
	if errors.Is(err, sql.ErrNoRows) {
		return NFT{}, ErrNotFound
	}
	if err != nil {
		return NFT{}, fmt.Errorf("get nft: %w", err)
	}
	return nft, nil
}

// ListNFTs returns all tokens without their content bytes.
func (s *Store) ListNFTs(ctx context.Context) ([]NFT, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner, name, metadata FROM nfts ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list nfts: %w", err)
	}
	defer rows.Close()

	nfts := make([]NFT, 0)
	for rows.Next() {
		var nft NFT
		if err := rows.Scan(&nft.ID, &nft.Owner, &nft.Name, &nft.Metadata); err != nil {
			return nil, fmt.Errorf("list nfts: %w", err)
		}
		nfts = append(nfts, nft)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list nfts: %w", err)
	}
	return nfts, nil
}
