package client

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

type EventListener interface {
	OnStarknetCall(method string, took time.Duration)
	OnStarknetCallFailed(method string, err error)
	OnTransactionSubmitted(hash common.Hash)
}

type SelectiveListener struct {
	OnStarknetCallCb         func(method string, took time.Duration)
	OnStarknetCallFailedCb   func(method string, err error)
	OnTransactionSubmittedCb func(hash common.Hash)
}

func (l *SelectiveListener) OnStarknetCall(method string, took time.Duration) {
	if l.OnStarknetCallCb != nil {
		l.OnStarknetCallCb(method, took)
	}
}

func (l *SelectiveListener) OnStarknetCallFailed(method string, err error) {
	if l.OnStarknetCallFailedCb != nil {
		l.OnStarknetCallFailedCb(method, err)
	}
}

func (l *SelectiveListener) OnTransactionSubmitted(hash common.Hash) {
	if l.OnTransactionSubmittedCb != nil {
		l.OnTransactionSubmittedCb(hash)
	}
}
