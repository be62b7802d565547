// Package ethereum talks to Election contracts deployed on an EVM chain.
// Reads go through eth_call; writes are signed with the service wallet and
// awaited until mined. Without a wallet key the ledger is read-only.
package ethereum

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/vncsmyrnk/evote/internal/core/domain"
	"github.com/vncsmyrnk/evote/internal/core/ports"
)

type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
}

type Config struct {
	RPCURL     string
	PrivateKey string
	ChainID    int64
}

type Ledger struct {
	backend Backend
	abi     abi.ABI
	key     *ecdsa.PrivateKey
	chainID *big.Int
	// txMu keeps nonce assignment and broadcast of our own transactions in order.
	txMu sync.Mutex
}

var _ ports.Ledger = (*Ledger)(nil)

func Dial(ctx context.Context, cfg Config) (*Ledger, *ethclient.Client, error) {
	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to dial ledger rpc: %w", err)
	}

	var key *ecdsa.PrivateKey
	if cfg.PrivateKey != "" {
		key, err = crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
		if err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("invalid ledger private key: %w", err)
		}
	}

	chainID := big.NewInt(cfg.ChainID)
	if cfg.ChainID == 0 && key != nil {
		chainID, err = client.ChainID(ctx)
		if err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to get chain id: %w", err)
		}
	}

	l, err := New(client, key, chainID)
	if err != nil {
		client.Close()
		return nil, nil, err
	}
	return l, client, nil
}

func New(backend Backend, key *ecdsa.PrivateKey, chainID *big.Int) (*Ledger, error) {
	parsed, err := abi.JSON(strings.NewReader(ElectionABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse election abi: %w", err)
	}

	return &Ledger{
		backend: backend,
		abi:     parsed,
		key:     key,
		chainID: chainID,
	}, nil
}

func (l *Ledger) Vote(ctx context.Context, contract string, candidateID int64, voterPseudonym string) (string, error) {
	voter, err := pseudonymKey(voterPseudonym)
	if err != nil {
		return "", err
	}

	receipt, err := l.transact(ctx, contract, methodVote, big.NewInt(candidateID), voter)
	if err != nil {
		var rej *domain.LedgerRejectedError
		if errors.As(err, &rej) && rej.Code == domain.RejectOther {
			// A mined revert carries no reason; the usual cause is a concurrent
			// vote by the same pseudonym landing first.
			if voted, verr := l.HasVoted(ctx, contract, voterPseudonym); verr == nil && voted {
				rej.Code = domain.RejectAlreadyVoted
			}
		}
		return "", err
	}
	return receipt.TxHash.Hex(), nil
}

func (l *Ledger) EndElection(ctx context.Context, contract string) error {
	_, err := l.transact(ctx, contract, methodEndElection)
	return err
}

func (l *Ledger) HasVoted(ctx context.Context, contract string, voterPseudonym string) (bool, error) {
	voter, err := pseudonymKey(voterPseudonym)
	if err != nil {
		return false, err
	}

	out, err := l.call(ctx, contract, methodHasUserVoted, voter)
	if err != nil {
		return false, err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

func (l *Ledger) TotalVotes(ctx context.Context, contract string) (int64, error) {
	out, err := l.call(ctx, contract, methodGetTotalVotes)
	if err != nil {
		return 0, err
	}
	return toInt64(out[0])
}

func (l *Ledger) VotesByCandidate(ctx context.Context, contract string, candidateID int64) (int64, error) {
	out, err := l.call(ctx, contract, methodGetVotesByCand, big.NewInt(candidateID))
	if err != nil {
		return 0, err
	}
	return toInt64(out[0])
}

func (l *Ledger) VoteAudit(ctx context.Context, contract string, candidateID int64) ([]domain.VoteRecord, error) {
	out, err := l.call(ctx, contract, methodGetVoteAudit, big.NewInt(candidateID))
	if err != nil {
		return nil, err
	}

	entries := *abi.ConvertType(out[0], new([]voteAuditEntry)).(*[]voteAuditEntry)
	records := make([]domain.VoteRecord, 0, len(entries))
	for _, e := range entries {
		records = append(records, domain.VoteRecord{
			VoterPseudonym: hexutil.Encode(e.VoterHash[:]),
			CandidateID:    e.CandidateId.Int64(),
			Timestamp:      time.Unix(e.Timestamp.Int64(), 0).UTC(),
			VoteHash:       hexutil.Encode(e.VoteHash[:]),
		})
	}
	return records, nil
}

func (l *Ledger) Candidates(ctx context.Context, contract string) ([]domain.Candidate, error) {
	out, err := l.call(ctx, contract, methodGetAllCandidates)
	if err != nil {
		return nil, err
	}

	entries := *abi.ConvertType(out[0], new([]candidateEntry)).(*[]candidateEntry)
	candidates := make([]domain.Candidate, 0, len(entries))
	for _, e := range entries {
		candidates = append(candidates, domain.Candidate{ID: e.Id.Int64(), Name: e.Name})
	}
	return candidates, nil
}

func (l *Ledger) bound(contract string) (*bind.BoundContract, error) {
	if !common.IsHexAddress(contract) {
		return nil, fmt.Errorf("%w: invalid contract address %q", domain.ErrElectionNotConfigured, contract)
	}
	return bind.NewBoundContract(common.HexToAddress(contract), l.abi, l.backend, l.backend, l.backend), nil
}

func (l *Ledger) call(ctx context.Context, contract, method string, params ...interface{}) ([]interface{}, error) {
	c, err := l.bound(contract)
	if err != nil {
		return nil, err
	}

	var out []interface{}
	if err := c.Call(&bind.CallOpts{Context: ctx}, &out, method, params...); err != nil {
		return nil, translateError(method, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s returned no values", domain.ErrLedgerUnavailable, method)
	}
	return out, nil
}

// transact signs, broadcasts and waits for the transaction to be mined.
// Reverts caught during gas estimation are rejections; so are mined
// transactions with a failed status.
func (l *Ledger) transact(ctx context.Context, contract, method string, params ...interface{}) (*types.Receipt, error) {
	if l.key == nil {
		return nil, fmt.Errorf("%w: cannot send %s", domain.ErrLedgerReadOnly, method)
	}
	c, err := l.bound(contract)
	if err != nil {
		return nil, err
	}

	opts, err := bind.NewKeyedTransactorWithChainID(l.key, l.chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to build transactor: %w", err)
	}
	opts.Context = ctx

	l.txMu.Lock()
	tx, err := c.Transact(opts, method, params...)
	l.txMu.Unlock()
	if err != nil {
		return nil, translateError(method, err)
	}

	receipt, err := bind.WaitMined(ctx, l.backend, tx)
	if err != nil {
		return nil, fmt.Errorf("%w: waiting for %s tx %s: %w", domain.ErrLedgerUnavailable, method, tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, &domain.LedgerRejectedError{Code: domain.RejectOther, Reason: fmt.Sprintf("%s transaction %s reverted", method, tx.Hash().Hex())}
	}
	return receipt, nil
}

func translateError(method string, err error) error {
	if reason, ok := revertReason(err); ok {
		return &domain.LedgerRejectedError{Code: classifyReason(reason), Reason: reason}
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrLedgerUnavailable, method, err)
}

func revertReason(err error) (string, bool) {
	var de rpc.DataError
	if errors.As(err, &de) {
		if s, ok := de.ErrorData().(string); ok {
			if data, derr := hexutil.Decode(s); derr == nil {
				if reason, uerr := abi.UnpackRevert(data); uerr == nil {
					return reason, true
				}
			}
		}
	}

	msg := err.Error()
	if idx := strings.Index(msg, "execution reverted"); idx >= 0 {
		reason := strings.TrimPrefix(msg[idx+len("execution reverted"):], ":")
		return strings.TrimSpace(reason), true
	}
	return "", false
}

func classifyReason(reason string) domain.RejectionCode {
	r := strings.ToLower(reason)
	switch {
	case strings.Contains(r, "already voted"):
		return domain.RejectAlreadyVoted
	case strings.Contains(r, "ended"), strings.Contains(r, "not active"), strings.Contains(r, "closed"):
		return domain.RejectElectionEnded
	case strings.Contains(r, "candidate"):
		return domain.RejectUnknownCandidate
	default:
		return domain.RejectOther
	}
}

func pseudonymKey(voterPseudonym string) ([32]byte, error) {
	var key [32]byte
	b, err := hexutil.Decode(voterPseudonym)
	if err != nil || len(b) != len(key) {
		return key, fmt.Errorf("%w: malformed voter pseudonym", domain.ErrInvalidVoteRequest)
	}
	copy(key[:], b)
	return key, nil
}

func toInt64(v interface{}) (int64, error) {
	n, ok := v.(*big.Int)
	if !ok {
		return 0, fmt.Errorf("%w: unexpected value type %T", domain.ErrLedgerUnavailable, v)
	}
	if !n.IsInt64() {
		return 0, fmt.Errorf("%w: value %s overflows int64", domain.ErrLedgerUnavailable, n)
	}
	return n.Int64(), nil
}
