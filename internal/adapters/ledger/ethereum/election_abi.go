package ethereum

import "math/big"

// ElectionABI is the subset of the Election contract interface the service
// calls. Voters are identified by a bytes32 pseudonym, never an address.
const ElectionABI = `[
{"type":"function","name":"vote","stateMutability":"nonpayable","inputs":[{"name":"candidateId","type":"uint256"},{"name":"voterHash","type":"bytes32"}],"outputs":[]},
{"type":"function","name":"hasUserVoted","stateMutability":"view","inputs":[{"name":"voterHash","type":"bytes32"}],"outputs":[{"name":"","type":"bool"}]},
{"type":"function","name":"endElection","stateMutability":"nonpayable","inputs":[],"outputs":[]},
{"type":"function","name":"getTotalVotes","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"getVotesByCandidate","stateMutability":"view","inputs":[{"name":"candidateId","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"getVoteAudit","stateMutability":"view","inputs":[{"name":"candidateId","type":"uint256"}],"outputs":[{"name":"","type":"tuple[]","components":[{"name":"voterHash","type":"bytes32"},{"name":"candidateId","type":"uint256"},{"name":"timestamp","type":"uint256"},{"name":"voteHash","type":"bytes32"}]}]},
{"type":"function","name":"getAllCandidates","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"tuple[]","components":[{"name":"id","type":"uint256"},{"name":"name","type":"string"}]}]}
]`

const (
	methodVote             = "vote"
	methodHasUserVoted     = "hasUserVoted"
	methodEndElection      = "endElection"
	methodGetTotalVotes    = "getTotalVotes"
	methodGetVotesByCand   = "getVotesByCandidate"
	methodGetVoteAudit     = "getVoteAudit"
	methodGetAllCandidates = "getAllCandidates"
)

type voteAuditEntry struct {
	VoterHash   [32]byte
	CandidateId *big.Int
	Timestamp   *big.Int
	VoteHash    [32]byte
}

type candidateEntry struct {
	Id   *big.Int
	Name string
}
