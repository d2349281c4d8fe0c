package services

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CocDap/marketplace-polkavm-frontend/internal/config"
	"github.com/CocDap/marketplace-polkavm-frontend/internal/models"
	"github.com/CocDap/marketplace-polkavm-frontend/internal/wallet"
)

func testWalletService(t *testing.T, sessions *fakeSessions) *WalletService {
	t.Helper()
	ks := wallet.NewKeystore(t.TempDir(), 420420422)
	auth := config.AuthConfig{JWTSecret: "test-secret", JWTExpiration: 1}
	return NewWalletService(ks, sessions, auth, testLogger())
}

func TestConnectExternal(t *testing.T) {
	svc := testWalletService(t, &fakeSessions{})

	token, err := svc.ConnectExternal("0x000000000000000000000000000000000000dEaD")
	require.NoError(t, err)
	assert.NotEmpty(t, token.Token)
	assert.Equal(t, models.WalletExternal, token.Session.Mode)
	assert.Equal(t, common.HexToAddress("0xdead"), token.Session.Address)

	// Token round-trips back to the same address
	addr, ok := svc.VerifyToken(token.Token)
	require.True(t, ok)
	assert.Equal(t, token.Session.Address, addr)
}

func TestConnectExternalRejectsBadAddress(t *testing.T) {
	svc := testWalletService(t, &fakeSessions{})

	_, err := svc.ConnectExternal("not-an-address")
	require.Error(t, err)
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	svc := testWalletService(t, &fakeSessions{})

	_, ok := svc.VerifyToken("not.a.token")
	assert.False(t, ok)
}

func TestLocalWalletTakesPrecedence(t *testing.T) {
	sessions := &fakeSessions{}
	svc := testWalletService(t, sessions)

	external := common.HexToAddress("0xeeee")

	// No local wallet yet: external wins over disconnected
	session := svc.Session(&external)
	assert.Equal(t, models.WalletExternal, session.Mode)
	assert.Equal(t, external, session.Address)

	session = svc.Session(nil)
	assert.Equal(t, models.WalletDisconnected, session.Mode)
	assert.False(t, session.Connected())

	created, err := svc.CreateLocal("opensesame")
	require.NoError(t, err)
	assert.Equal(t, models.WalletLocal, created.Mode)

	// Local wallet now shadows the external session
	session = svc.Session(&external)
	assert.Equal(t, models.WalletLocal, session.Mode)
	assert.Equal(t, created.Address, session.Address)

	require.NoError(t, svc.DisconnectLocal())
	session = svc.Session(&external)
	assert.Equal(t, models.WalletExternal, session.Mode)
}

func TestCreateLocalRequiresPassphrase(t *testing.T) {
	svc := testWalletService(t, &fakeSessions{})

	_, err := svc.CreateLocal("")
	require.Error(t, err)
}

func TestSignerForSessions(t *testing.T) {
	sessions := &fakeSessions{}
	svc := testWalletService(t, sessions)

	// Disconnected sessions cannot sign
	_, err := svc.SignerFor(models.WalletSession{Mode: models.WalletDisconnected}, "")
	require.ErrorIs(t, err, wallet.ErrNoSigner)

	// External sessions have no key on this host
	external := models.WalletSession{Mode: models.WalletExternal, Address: common.HexToAddress("0xeeee")}
	_, err = svc.SignerFor(external, "")
	require.True(t, errors.Is(err, wallet.ErrNoSigner))

	// The local wallet signs for its own address
	created, err := svc.CreateLocal("opensesame")
	require.NoError(t, err)

	signer, err := svc.SignerFor(created, "opensesame")
	require.NoError(t, err)
	assert.Equal(t, created.Address, signer.Address())
}
