package model

import (
	"time"

	"github.com/google/uuid"
)

const EnvelopeVersion = "v1"

type Envelope struct {
	Version  string       `json:"version"`
	Success  bool         `json:"success"`
	Data     any          `json:"data,omitempty"`
	Error    *ErrorBody   `json:"error"`
	Warnings []string     `json:"warnings,omitempty"`
	Meta     EnvelopeMeta `json:"meta"`
}

type ErrorBody struct {
	Code    int      `json:"code"`
	Type    string   `json:"type"`
	Message string   `json:"message"`
	Options []string `json:"options,omitempty"`
}

type EnvelopeMeta struct {
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
	Command   string    `json:"command"`
	Endpoint  string    `json:"endpoint,omitempty"`
}

func NewMeta(command string) EnvelopeMeta {
	return EnvelopeMeta{
		RequestID: uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Command:   command,
	}
}

// CommandResult is the data payload of balance, transfer and send.
type CommandResult struct {
	Status    string `json:"status"`
	Operation string `json:"operation,omitempty"`
	Chain     string `json:"chain,omitempty"`
	Token     string `json:"token,omitempty"`
	Amount    string `json:"amount,omitempty"`
	Recipient string `json:"recipient,omitempty"`
	Fee       string `json:"fee,omitempty"`
	FeeToken  string `json:"fee_token,omitempty"`
	URL       string `json:"url"`
	Text      string `json:"text"`
}

func (r CommandResult) PlainText() string { return r.Text }

type TokenInfo struct {
	Symbol   string `json:"symbol"`
	Address  string `json:"address,omitempty"`
	Decimals int32  `json:"decimals"`
}

type ChainInfo struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	NativeToken  string      `json:"native_token"`
	EVMChainID   int64       `json:"evm_chain_id,omitempty"`
	AddressRule  string      `json:"address_rule"`
	Tokens       []TokenInfo `json:"tokens"`
	TokenSymbols []string    `json:"token_symbols"`
}

// RouteQuote is one row of a route comparison. Rank orders quotes sharing a
// FeeToken and is zero for failed quotes, which carry Error instead of Fee.
type RouteQuote struct {
	Rank     int    `json:"rank,omitempty"`
	Chain    string `json:"chain"`
	Name     string `json:"name"`
	Token    string `json:"token"`
	Fee      string `json:"fee,omitempty"`
	FeeToken string `json:"fee_token"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
}
