package domain

import (
	"time"

	"github.com/google/uuid"
)

// TxType classifies an attempted on-chain action.
type TxType string

const (
	TxTypeSwap     TxType = "SWAP"
	TxTypeTransfer TxType = "TRANSFER"
	TxTypeStake    TxType = "STAKE"
)

// TxStatus is the lifecycle state of a transaction record.
type TxStatus string

const (
	TxStatusPending   TxStatus = "PENDING"
	TxStatusConfirmed TxStatus = "CONFIRMED"
	TxStatusFailed    TxStatus = "FAILED"
	TxStatusTimedOut  TxStatus = "TIMED_OUT"
)

// Transaction is an append-only audit entry of an attempted on-chain
// action. Created when a swap or transfer is submitted; status mutated
// as confirmation arrives; never deleted.
type Transaction struct {
	ID          string // UUID
	Hash        string // on-chain signature, empty until known
	Type        TxType
	Status      TxStatus
	Sender      string
	Receiver    string
	TokenMint   string // empty for plain transfers
	Dex         DexType // empty for non-swap transactions
	Amount      float64
	FeeLamports uint64
	RawData     string // base64 encoded transaction payload
	Timestamp   time.Time
	Error       string // relay/exchange error text, verbatim
}

// NewSwapTransaction creates a pending swap audit record.
func NewSwapTransaction(sender, receiver, tokenMint string, dex DexType, amount float64, feeLamports uint64, rawData string) *Transaction {
	return &Transaction{
		ID:          uuid.NewString(),
		Type:        TxTypeSwap,
		Status:      TxStatusPending,
		Sender:      sender,
		Receiver:    receiver,
		TokenMint:   tokenMint,
		Dex:         dex,
		Amount:      amount,
		FeeLamports: feeLamports,
		RawData:     rawData,
		Timestamp:   time.Now().UTC(),
	}
}
