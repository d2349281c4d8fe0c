package config

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the application configuration
type Config struct {
	Server ServerConfig `json:"server"`
	Chain  ChainConfig  `json:"chain"`
	IPFS   IPFSConfig   `json:"ipfs"`
	Pinata PinataConfig `json:"pinata"`
	Auth   AuthConfig   `json:"auth"`
	Store  StoreConfig  `json:"store"`
}

// ServerConfig contains server related configurations
type ServerConfig struct {
	Port int `json:"port"`
}

// ChainConfig contains the JSON-RPC endpoints and the marketplace contract
type ChainConfig struct {
	RPCURL          string `json:"rpc_url"`
	WSURL           string `json:"ws_url"`
	ContractAddress string `json:"contract_address"`
	ChainID         int64  `json:"chain_id"`
}

// IPFSConfig contains the gateway used to resolve ipfs:// locators
type IPFSConfig struct {
	Gateway string `json:"gateway"`
}

// PinataConfig contains the pinning service endpoints and credential
type PinataConfig struct {
	FileEndpoint string `json:"file_endpoint"`
	JSONEndpoint string `json:"json_endpoint"`
	JWT          string `json:"jwt"`
}

// AuthConfig contains session token related configurations
type AuthConfig struct {
	JWTSecret     string `json:"jwt_secret"`
	JWTExpiration int    `json:"jwt_expiration"` // in hours
}

// StoreConfig contains local persistence settings
type StoreConfig struct {
	Path        string `json:"path"`
	KeystoreDir string `json:"keystore_dir"`
}

// Load loads the configuration from file and environment
func Load() (*Config, error) {
	// Default config
	cfg := &Config{
		Server: ServerConfig{
			Port: 8080,
		},
		Chain: ChainConfig{
			ChainID: 420420422, // Paseo Asset Hub
		},
		IPFS: IPFSConfig{
			Gateway: "https://ipfs.io/ipfs/",
		},
		Pinata: PinataConfig{
			FileEndpoint: "https://api.pinata.cloud/pinning/pinFileToIPFS",
			JSONEndpoint: "https://api.pinata.cloud/pinning/pinJSONToIPFS",
		},
		Auth: AuthConfig{
			JWTExpiration: 24,
		},
		Store: StoreConfig{
			Path:        filepath.Join("data", "marketplace.db"),
			KeystoreDir: filepath.Join("data", "keystore"),
		},
	}

	// Look for config file
	configFile := os.Getenv("CONFIG_FILE")
	if configFile == "" {
		// Use default config file path
		configFile = filepath.Join("configs", "config.json")
	}

	// Try to load config from file
	if _, err := os.Stat(configFile); err == nil {
		file, err := os.Open(configFile)
		if err != nil {
			return nil, err
		}
		defer file.Close()

		if err := json.NewDecoder(file).Decode(cfg); err != nil {
			return nil, err
		}
	}

	// Override with environment variables if present
	if port := os.Getenv("SERVER_PORT"); port != "" {
		var serverPort int
		if _, err := fmt.Sscanf(port, "%d", &serverPort); err == nil {
			cfg.Server.Port = serverPort
		}
	}

	if rpcURL := os.Getenv("CHAIN_RPC_URL"); rpcURL != "" {
		cfg.Chain.RPCURL = rpcURL
	}
	if wsURL := os.Getenv("CHAIN_WS_URL"); wsURL != "" {
		cfg.Chain.WSURL = wsURL
	}
	if contractAddr := os.Getenv("MARKETPLACE_CONTRACT_ADDRESS"); contractAddr != "" {
		cfg.Chain.ContractAddress = contractAddr
	}
	if chainID := os.Getenv("CHAIN_ID"); chainID != "" {
		var id int64
		if _, err := fmt.Sscanf(chainID, "%d", &id); err == nil {
			cfg.Chain.ChainID = id
		}
	}

	if gateway := os.Getenv("IPFS_GATEWAY"); gateway != "" {
		cfg.IPFS.Gateway = gateway
	}

	if pinataJWT := os.Getenv("PINATA_JWT"); pinataJWT != "" {
		cfg.Pinata.JWT = pinataJWT
	}

	if storePath := os.Getenv("STORE_PATH"); storePath != "" {
		cfg.Store.Path = storePath
	}
	if keystoreDir := os.Getenv("KEYSTORE_DIR"); keystoreDir != "" {
		cfg.Store.KeystoreDir = keystoreDir
	}

	if jwtSecret := os.Getenv("JWT_SECRET"); jwtSecret != "" {
		cfg.Auth.JWTSecret = jwtSecret
	} else if cfg.Auth.JWTSecret == "" {
		// Generate a random JWT secret if not provided
		randomBytes := make([]byte, 32)
		if _, err := rand.Read(randomBytes); err != nil {
			return nil, err
		}
		cfg.Auth.JWTSecret = base64.StdEncoding.EncodeToString(randomBytes)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the settings required to reach the chain are present
func (c *Config) Validate() error {
	missing := func(k string) error { return fmt.Errorf("missing %s", k) }
	if c.Chain.RPCURL == "" {
		return missing("CHAIN_RPC_URL")
	}
	if c.Chain.ContractAddress == "" {
		return missing("MARKETPLACE_CONTRACT_ADDRESS")
	}
	if c.IPFS.Gateway == "" {
		return missing("IPFS_GATEWAY")
	}
	return nil
}
