package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/evote/internal/core/domain"
)

func TestAuditMerkleRoot(t *testing.T) {
	base := time.Unix(1_700_000_000, 0)
	records := []domain.VoteRecord{
		{VoterPseudonym: testPseudonym("a"), CandidateID: 0, Timestamp: base, VoteHash: "0x01"},
		{VoterPseudonym: testPseudonym("b"), CandidateID: 0, Timestamp: base.Add(time.Second), VoteHash: "0x02"},
		{VoterPseudonym: testPseudonym("c"), CandidateID: 0, Timestamp: base.Add(2 * time.Second), VoteHash: "0x03"},
	}

	root, err := AuditMerkleRoot(records)
	require.NoError(t, err)
	assert.Len(t, root, 64)

	again, err := AuditMerkleRoot(append([]domain.VoteRecord(nil), records...))
	require.NoError(t, err)
	assert.Equal(t, root, again)

	tampered := append([]domain.VoteRecord(nil), records...)
	tampered[1].CandidateID = 1
	changed, err := AuditMerkleRoot(tampered)
	require.NoError(t, err)
	assert.NotEqual(t, root, changed)

	empty, err := AuditMerkleRoot(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
