package ethereum

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"testing"

	goethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

const testContract = "0x5FbDB2315678afecb367f032d93F642f64180aa3"

// fakeChain answers contract calls from per-method handlers and records every
// transaction sent to it. Methods it does not override hit the nil Backend.
type fakeChain struct {
	Backend

	abi abi.ABI

	mu          sync.Mutex
	reads       map[string]func(args []interface{}) ([]interface{}, error)
	estimateErr error
	sendErr     error
	receiptErr  error
	status      uint64
	sent        []*types.Transaction
}

func newFakeChain(t *testing.T) *fakeChain {
	t.Helper()

	parsed, err := abi.JSON(strings.NewReader(ElectionABI))
	require.NoError(t, err)
	return &fakeChain{
		abi:    parsed,
		reads:  make(map[string]func([]interface{}) ([]interface{}, error)),
		status: types.ReceiptStatusSuccessful,
	}
}

func (f *fakeChain) onCall(method string, fn func(args []interface{}) ([]interface{}, error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads[method] = fn
}

// sentCall decodes the method and arguments of the i-th sent transaction.
func (f *fakeChain) sentCall(t *testing.T, i int) (string, []interface{}) {
	t.Helper()

	f.mu.Lock()
	defer f.mu.Unlock()
	require.Greater(t, len(f.sent), i)

	data := f.sent[i].Data()
	method, err := f.abi.MethodById(data[:4])
	require.NoError(t, err)
	args, err := method.Inputs.Unpack(data[4:])
	require.NoError(t, err)
	return method.Name, args
}

func (f *fakeChain) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeChain) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	return []byte{0x60}, nil
}

func (f *fakeChain) CallContract(ctx context.Context, call goethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if len(call.Data) < 4 {
		return nil, errors.New("call data too short")
	}
	method, err := f.abi.MethodById(call.Data[:4])
	if err != nil {
		return nil, err
	}
	args, err := method.Inputs.Unpack(call.Data[4:])
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	fn, ok := f.reads[method.Name]
	f.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("unexpected call to %s", method.Name)
	}

	out, err := fn(args)
	if err != nil {
		return nil, err
	}
	return method.Outputs.Pack(out...)
}

func (f *fakeChain) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	return &types.Header{Number: big.NewInt(1)}, nil
}

func (f *fakeChain) PendingCodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	return []byte{0x60}, nil
}

func (f *fakeChain) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return uint64(f.sentCount()), nil
}

func (f *fakeChain) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (f *fakeChain) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	return big.NewInt(1), nil
}

func (f *fakeChain) EstimateGas(ctx context.Context, call goethereum.CallMsg) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return 100_000, f.estimateErr
}

func (f *fakeChain) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, tx)
	return nil
}

func (f *fakeChain) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.receiptErr != nil {
		return nil, f.receiptErr
	}
	return &types.Receipt{Status: f.status, TxHash: txHash, BlockNumber: big.NewInt(1)}, nil
}
