package marketdata

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/coinledger/internal/domain"
)

const systemProgram = "11111111111111111111111111111111"

func TestSolana_ValidateAddress(t *testing.T) {
	s := NewSolana("http://127.0.0.1:0", testOptions())

	assert.NoError(t, s.ValidateAddress(systemProgram))
	assert.ErrorIs(t, s.ValidateAddress("0OIl"), domain.ErrInvalidAddress)
	assert.ErrorIs(t, s.ValidateAddress("abc"), domain.ErrInvalidAddress)
}

func TestSolana_Activity(t *testing.T) {
	sig := solana.Signature{1, 2, 3, 4}
	srv := httptest.NewServer(rpcHandler(t, map[string]string{
		"getBalance": `{"context":{"slot":100},"value":2500000000}`,
		"getSignaturesForAddress": `[
			{"signature":"` + sig.String() + `","slot":99,"err":null,"memo":null,"blockTime":1700000000,"confirmationStatus":"finalized"}
		]`,
	}))
	defer srv.Close()

	s := NewSolana(srv.URL, testOptions())

	activity, err := s.Activity(context.Background(), systemProgram)
	require.NoError(t, err)

	assert.Equal(t, domain.ChainSolana, activity.Chain)
	assert.True(t, activity.Balance.Equal(dec(t, "2.5")))
	require.Len(t, activity.Transactions, 1)
	assert.Equal(t, sig.String(), activity.Transactions[0].Hash)
	assert.Equal(t, domain.TxDirectionUnknown, activity.Transactions[0].Direction)
	assert.Equal(t, int64(1700000000), activity.Transactions[0].Time.Unix())
}

func TestSolana_RPCError(t *testing.T) {
	srv := httptest.NewServer(rpcHandler(t, map[string]string{}))
	defer srv.Close()

	_, err := NewSolana(srv.URL, testOptions()).Activity(context.Background(), systemProgram)
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}
