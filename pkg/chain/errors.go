package chain

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// RPCError wraps a failed JSON-RPC interaction with the chain.
type RPCError struct {
	Op  string
	Err error
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc %s: %v", e.Op, e.Err)
}

func (e *RPCError) Unwrap() error { return e.Err }

// TxRevertedError means the transaction was included but its receipt
// reports failure.
type TxRevertedError struct {
	Hash common.Hash
}

func (e *TxRevertedError) Error() string {
	return fmt.Sprintf("transaction %s reverted", e.Hash.Hex())
}

// TxTimeoutError means the transaction was not included within the
// bounded confirmation window.
type TxTimeoutError struct {
	Hash common.Hash
	Wait time.Duration
}

func (e *TxTimeoutError) Error() string {
	return fmt.Sprintf("transaction %s not confirmed after %s", e.Hash.Hex(), e.Wait)
}
