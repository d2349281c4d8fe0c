package services

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/CocDap/marketplace-polkavm-frontend/internal/config"
	"github.com/CocDap/marketplace-polkavm-frontend/internal/models"
	"github.com/CocDap/marketplace-polkavm-frontend/internal/wallet"
)

// SessionStore persists the local wallet selection across restarts
type SessionStore interface {
	SaveLocalAddress(address string) error
	LocalAddress() (string, bool, error)
	ClearLocalAddress() error
}

// Claims represents the JWT claims for an external wallet session
type Claims struct {
	Address string `json:"address"`
	jwt.RegisteredClaims
}

// WalletService resolves the wallet session for each request and hands
// out signers for write workflows. The local keystore wallet always
// wins over an external session token when both are present.
type WalletService struct {
	keystore *wallet.Keystore
	sessions SessionStore
	auth     config.AuthConfig
	logger   *zap.SugaredLogger
}

// NewWalletService creates a new WalletService
func NewWalletService(keystore *wallet.Keystore, sessions SessionStore, auth config.AuthConfig, logger *zap.SugaredLogger) *WalletService {
	return &WalletService{
		keystore: keystore,
		sessions: sessions,
		auth:     auth,
		logger:   logger,
	}
}

// ConnectExternal records an externally connected account and returns a
// session token for it. No key material is held for external accounts;
// they get read access only.
func (s *WalletService) ConnectExternal(address string) (*models.AuthToken, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid address: %s", address)
	}
	addr := common.HexToAddress(address)

	token, expiresAt, err := s.generateToken(addr)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	return &models.AuthToken{
		Token:     token,
		ExpiresAt: expiresAt,
		Session:   s.Session(&addr),
	}, nil
}

// CreateLocal generates a passphrase-protected keystore account and
// persists it as the local wallet
func (s *WalletService) CreateLocal(passphrase string) (models.WalletSession, error) {
	if passphrase == "" {
		return models.WalletSession{}, fmt.Errorf("a passphrase is required")
	}

	addr, err := s.keystore.Create(passphrase)
	if err != nil {
		return models.WalletSession{}, err
	}
	if err := s.sessions.SaveLocalAddress(addr.Hex()); err != nil {
		return models.WalletSession{}, err
	}

	s.logger.Infow("created local wallet", "address", addr.Hex())
	return models.WalletSession{Mode: models.WalletLocal, Address: addr}, nil
}

// DisconnectLocal forgets the local wallet selection. The key stays in
// the keystore directory; only the session pointer is cleared.
func (s *WalletService) DisconnectLocal() error {
	return s.sessions.ClearLocalAddress()
}

// Session resolves the session state for one request. external carries
// the address from a verified session token, if the request had one.
func (s *WalletService) Session(external *common.Address) models.WalletSession {
	stored, ok, err := s.sessions.LocalAddress()
	if err != nil {
		s.logger.Errorw("failed to load local wallet selection", "error", err)
	}
	if ok {
		return models.WalletSession{Mode: models.WalletLocal, Address: common.HexToAddress(stored)}
	}
	if external != nil {
		return models.WalletSession{Mode: models.WalletExternal, Address: *external}
	}
	return models.WalletSession{Mode: models.WalletDisconnected}
}

// VerifyToken validates a session token and returns the address it was
// issued for
func (s *WalletService) VerifyToken(tokenString string) (common.Address, bool) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.auth.JWTSecret), nil
	})
	if err != nil || !token.Valid || !common.IsHexAddress(claims.Address) {
		return common.Address{}, false
	}
	return common.HexToAddress(claims.Address), true
}

// SignerFor returns a signer for the session. External sessions have no
// key on this host, so writes require a keystore-resident account and
// everything else settles as ErrNoSigner.
func (s *WalletService) SignerFor(session models.WalletSession, passphrase string) (wallet.Signer, error) {
	if !session.Connected() {
		return nil, wallet.ErrNoSigner
	}
	return s.keystore.Signer(session.Address, passphrase)
}

func (s *WalletService) generateToken(addr common.Address) (string, time.Time, error) {
	expiresAt := time.Now().Add(time.Duration(s.auth.JWTExpiration) * time.Hour)

	claims := &Claims{
		Address: addr.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   addr.Hex(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.auth.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
