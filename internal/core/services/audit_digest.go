package services

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/cbergoon/merkletree"
	"github.com/vncsmyrnk/evote/internal/core/domain"
)

type auditLeaf struct {
	record domain.VoteRecord
}

func (l auditLeaf) CalculateHash() ([]byte, error) {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%d|%d|%s", l.record.VoterPseudonym, l.record.CandidateID, l.record.Timestamp.Unix(), l.record.VoteHash)
	return h.Sum(nil), nil
}

func (l auditLeaf) Equals(other merkletree.Content) (bool, error) {
	o, ok := other.(auditLeaf)
	if !ok {
		return false, fmt.Errorf("unexpected merkle content %T", other)
	}
	return l.record.VoterPseudonym == o.record.VoterPseudonym &&
		l.record.CandidateID == o.record.CandidateID &&
		l.record.Timestamp.Equal(o.record.Timestamp) &&
		l.record.VoteHash == o.record.VoteHash, nil
}

// AuditMerkleRoot hashes an ordered audit trail into a hex Merkle root so a
// third party holding the same records can check them. Empty trails have no root.
func AuditMerkleRoot(records []domain.VoteRecord) (string, error) {
	if len(records) == 0 {
		return "", nil
	}

	leaves := make([]merkletree.Content, 0, len(records))
	for _, r := range records {
		leaves = append(leaves, auditLeaf{record: r})
	}

	tree, err := merkletree.NewTree(leaves)
	if err != nil {
		return "", fmt.Errorf("failed to build audit tree: %w", err)
	}
	return hex.EncodeToString(tree.MerkleRoot()), nil
}
